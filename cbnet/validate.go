// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cbnet

import (
	"errors"
	"fmt"
	"math"
)

// ErrImplausible is wrapped by every problem reported by Validate
var ErrImplausible = errors.New("cbnet: implausible parameter")

// MaxAbsWt is the largest plausible synaptic weight magnitude in mV
const MaxAbsWt = 100

// Validate checks the network for physiologically implausible or
// inconsistent parameters, returning all problems found joined together,
// or nil if there are none.
func (nt *Network) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrImplausible}, args...)...))
	}
	for k := PopKind(0); k < PopKindN; k++ {
		pp := &nt.Pops[k]
		if pp.Kind != k {
			bad("%v: population kind set to %v", k, pp.Kind)
		}
		if pp.N <= 0 {
			bad("%v: size %d must be positive", k, pp.N)
		}
		if k.IsFiber() {
			continue
		}
		np := &pp.Neuron
		if !(np.TauM > 0 && np.TauM <= 1000) {
			bad("%v: TauM %g must be in (0, 1000] msec", k, np.TauM)
		}
		if !(np.Vreset < np.Vth) {
			bad("%v: Vreset %g must be below Vth %g", k, np.Vreset, np.Vth)
		}
		if !(np.EL <= np.Vth) {
			bad("%v: EL %g must not be above Vth %g", k, np.EL, np.Vth)
		}
		if !(np.Tref >= 0) {
			bad("%v: Tref %g must not be negative", k, np.Tref)
		}
	}
	if nt.Prjns == nil {
		return errors.Join(errs...)
	}
	for _, ps := range nt.Prjns.Specs() {
		nm := ps.Name()
		if ps.Send < 0 || ps.Send >= PopKindN || ps.Recv < 0 || ps.Recv >= PopKindN {
			bad("%v: invalid population", nm)
			continue
		}
		if ps.Recv.IsFiber() {
			bad("%v: fibers cannot receive projections", nm)
		}
		if ps.Send == DCN {
			bad("%v: deep nuclei are the output and cannot send projections", nm)
		}
		if math.IsNaN(ps.Wt) || math.Abs(ps.Wt) > MaxAbsWt {
			bad("%v: weight %g exceeds %d mV in magnitude", nm, ps.Wt, MaxAbsWt)
		}
		if ps.Space < 0 {
			bad("%v: length constant %g must not be negative", nm, ps.Space)
		}
		switch ps.Rule {
		case FixedInDegree:
			if ps.K < 0 {
				bad("%v: in-degree %d must not be negative", nm, ps.K)
			}
		case PairwiseBernoulli:
			if !(ps.P >= 0 && ps.P <= 1) {
				bad("%v: probability %g must be in [0, 1]", nm, ps.P)
			}
		case FixedTotalNumber:
			if ps.Total < 0 {
				bad("%v: total number %d must not be negative", nm, ps.Total)
			}
		case AllToAll:
		default:
			bad("%v: unknown connection rule %d", nm, ps.Rule)
		}
	}
	return errors.Join(errs...)
}
