// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cbnet

import (
	"fmt"
	"strings"

	"github.com/goki/ki/kit"
)

// PopKind enumerates the populations of the cerebellar network.
// The first NUnknown kinds are the populations whose rates are solved
// for in the mean-field fixed point, in solution vector order.
type PopKind int32

//go:generate stringer -type=PopKind

var KiT_PopKind = kit.Enums.AddEnum(PopKindN, kit.NotBitFlag, nil)

func (ev PopKind) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *PopKind) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

// The population kinds
const (
	// Granule cells receive mossy fiber excitation and Golgi inhibition,
	// and send parallel fibers to Golgi, interneurons and Purkinje cells.
	Granule PopKind = iota

	// Golgi cells receive mossy fiber and granule excitation and
	// recurrent Golgi inhibition, and inhibit granule cells.
	Golgi

	// Purkinje cells receive parallel fiber and climbing fiber excitation
	// and interneuron inhibition, and inhibit the deep cerebellar nuclei.
	Purkinje

	// Interneuron (basket / stellate) cells receive granule excitation
	// and recurrent interneuron inhibition, and inhibit Purkinje cells.
	Interneuron

	// MossyFiber is an exogenous Poisson input source.
	MossyFiber

	// ClimbingFiber is an exogenous Poisson input source onto Purkinje cells.
	ClimbingFiber

	// DCN are the deep cerebellar nuclei output cells, driven feed-forward
	// by mossy fibers and Purkinje cells.
	DCN

	PopKindN
)

// NUnknown is the number of populations in the self-consistent rate vector
const NUnknown = int(Interneuron) + 1

// IsFiber returns true for the exogenous rate sources, which have no neuron parameters
func (ev PopKind) IsFiber() bool {
	return ev == MossyFiber || ev == ClimbingFiber
}

// IsUnknown returns true if the rate of this population is solved for
func (ev PopKind) IsUnknown() bool {
	return ev >= 0 && int(ev) < NUnknown
}

// snake-case names used by the simulator-side configuration
var popNames = [PopKindN]string{"granule", "golgi", "purkinje", "interneurons", "mossy_fibers", "climbing_fibers", "dcn"}

// Name returns the configuration name of the population, e.g., "mossy_fibers"
func (ev PopKind) Name() string {
	if ev < 0 || ev >= PopKindN {
		return ev.String()
	}
	return popNames[ev]
}

// FromString sets the kind from either the Go name (MossyFiber) or the
// configuration name (mossy_fibers), case insensitive.
func (ev *PopKind) FromString(s string) error {
	for i := PopKind(0); i < PopKindN; i++ {
		if strings.EqualFold(s, i.String()) || strings.EqualFold(s, popNames[i]) {
			*ev = i
			return nil
		}
	}
	return fmt.Errorf("cbnet: unknown population: %q", s)
}

func (ev PopKind) MarshalText() ([]byte, error)  { return []byte(ev.Name()), nil }
func (ev *PopKind) UnmarshalText(b []byte) error { return ev.FromString(string(b)) }

// PopKindFromName returns the kind for a Go or configuration name
func PopKindFromName(s string) (PopKind, error) {
	var pk PopKind
	err := pk.FromString(s)
	return pk, err
}
