// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cbnet

import (
	"math"

	"github.com/goki/mat32"
)

// Box is the axis-aligned region of tissue that a population occupies,
// in arbitrary length units.  Populations are stacked in layers along Z.
type Box struct {
	Min mat32.Vec3 `desc:"minimum corner"`
	Max mat32.Vec3 `desc:"maximum corner"`
}

// SetZ sets a box spanning [-1,1] in X and Y, and [zmin, zmax] in Z
func (bx *Box) SetZ(zmin, zmax float32) {
	bx.Min = mat32.NewVec3(-1, -1, zmin)
	bx.Max = mat32.NewVec3(1, 1, zmax)
}

// Center returns the center point of the box
func (bx *Box) Center() mat32.Vec3 {
	return bx.Min.Add(bx.Max).MulScalar(0.5)
}

// IsZero returns true if the box has not been set
func (bx *Box) IsZero() bool {
	return bx.Min == (mat32.Vec3{}) && bx.Max == (mat32.Vec3{})
}

// DecayWt returns the weight after exponential decay with distance:
// wt * exp(-dist / space).  A non-positive space means no decay.
func DecayWt(wt, dist, space float64) float64 {
	if space <= 0 {
		return wt
	}
	return wt * math.Exp(-dist/space)
}

// Dist returns the distance between the centers of the two populations
func (nt *Network) Dist(send, recv PopKind) float64 {
	sb := nt.Pops[send].Box
	rb := nt.Pops[recv].Box
	return float64(sb.Center().DistTo(rb.Center()))
}

// EffWt returns the effective weight of the projection: the configured
// weight, decayed by the distance between population centers when the
// network is in spatial mode and the projection has a length constant.
func (nt *Network) EffWt(ps *PrjnSpec) float64 {
	if !nt.Spatial || ps.Space <= 0 {
		return ps.Wt
	}
	return DecayWt(ps.Wt, nt.Dist(ps.Send, ps.Recv), ps.Space)
}
