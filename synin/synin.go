// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package synin aggregates the synaptic input that one neuron of a target
population receives from a set of projections, in the diffusion (mean-field)
approximation: each projection contributes weight * count * rate to the mean,
and weight^2 * count * rate to the variance of the input.

Weights are signed (excitatory > 0, inhibitory < 0), so the mean can be negative,
while the variance is always non-negative.
*/
package synin

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is returned when a count or rate is negative (or not a number).
// A firing rate cannot be negative, so these always indicate a configuration
// or caller bug upstream of the aggregation.
var ErrInvalidInput = errors.New("synin: invalid input")

// Input is one presynaptic source of input to a target neuron.
type Input struct {
	Wt   float64 `desc:"synaptic weight (PSP amplitude, mV) -- negative for inhibitory"`
	N    int     `desc:"in-degree: number of connections from the source onto one target neuron"`
	Rate float64 `desc:"presynaptic firing rate in Hz"`
}

// In is a convenience constructor for an Input.
func In(wt float64, n int, rate float64) Input {
	return Input{Wt: wt, N: n, Rate: rate}
}

// Mean returns the contribution of this input to the mean: Wt * N * Rate
func (in Input) Mean() float64 {
	return in.Wt * float64(in.N) * in.Rate
}

// Var returns the contribution of this input to the variance: Wt^2 * N * Rate
func (in Input) Var() float64 {
	return in.Wt * in.Wt * float64(in.N) * in.Rate
}

// Validate returns ErrInvalidInput if the count or rate is negative.
func (in Input) Validate() error {
	if in.N < 0 {
		return fmt.Errorf("%w: negative count %d", ErrInvalidInput, in.N)
	}
	if in.Rate < 0 || math.IsNaN(in.Rate) {
		return fmt.Errorf("%w: rate %g", ErrInvalidInput, in.Rate)
	}
	return nil
}

// Stats are the aggregate statistics of the synaptic input.
type Stats struct {
	Mean float64 `desc:"mean input"`
	Var  float64 `desc:"variance of the input -- always >= 0"`
	Std  float64 `desc:"standard deviation = sqrt(Var)"`
}

// Scaled returns the stats scaled by the membrane time constant tau,
// converting summed input rates into membrane potential units as in the
// standard diffusion approximation: mean * tau, var * tau.
func (st Stats) Scaled(tau float64) Stats {
	vr := st.Var * tau
	return Stats{Mean: st.Mean * tau, Var: vr, Std: math.Sqrt(vr)}
}

// Aggregate returns the total mean, variance and standard deviation of the
// given inputs.  An empty list of inputs returns zero stats.
// Any negative count or rate returns ErrInvalidInput -- inputs are
// never clamped silently.
func Aggregate(ins ...Input) (Stats, error) {
	var st Stats
	for i, in := range ins {
		if err := in.Validate(); err != nil {
			return Stats{}, fmt.Errorf("input %d: %w", i, err)
		}
		st.Mean += in.Mean()
		st.Var += in.Var()
	}
	st.Std = math.Sqrt(st.Var)
	return st, nil
}
