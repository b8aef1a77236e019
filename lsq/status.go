// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lsq

import "github.com/goki/ki/kit"

// Status is the reason a minimization stopped
type Status int32

//go:generate stringer -type=Status

var KiT_Status = kit.Enums.AddEnum(StatusN, kit.NotBitFlag, nil)

func (ev Status) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *Status) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// Running is the zero value, before termination
	Running Status = iota

	// FTolReached: the relative reduction in cost fell below FTol
	FTolReached

	// XTolReached: the step size fell below XTol relative to |x|
	XTolReached

	// GTolReached: the projected gradient fell below GTol
	GTolReached

	// MaxNFevReached: the evaluation budget was exhausted
	MaxNFevReached

	// Stalled: no damping produced a decrease in cost
	Stalled

	StatusN
)

// Converged returns true if one of the tolerances was reached
func (ev Status) Converged() bool {
	return ev == FTolReached || ev == XTolReached || ev == GTolReached
}
