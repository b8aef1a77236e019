// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package siegert provides the Siegert transfer function: the steady-state
firing rate of a leaky integrate-and-fire neuron driven by Gaussian white-noise
input with mean mu and standard deviation sigma (in membrane potential units).

The rate is the inverse of the mean first-passage time from reset to threshold:

	rate = 1 / (Tref + TauM * sqrt(pi) * Integral[(Vreset-mu)/sigma, (Vth-mu)/sigma] exp(x^2) (1 + erf(x)) dx)

The integrand grows as exp(x^2), so asymptotic forms are used outside of
the well-conditioned range, and the integral is computed with adaptive
Gauss-Legendre quadrature, split at zero when the range straddles it.
*/
package siegert

import (
	"errors"
	"fmt"
	"math"
)

// ErrNumericalDomain is returned when the input standard deviation is not positive.
// This happens for a population whose presynaptic rates are all zero, and the
// caller should treat it as an output rate of 0 rather than passing it here.
var ErrNumericalDomain = errors.New("siegert: input standard deviation must be positive")

const (
	sqrtPi = 1.7724538509055160272981674833411451827975494561223871282138077898

	// AsymLo is the bound below which the integrand uses its x -> -inf asymptote
	AsymLo = -10

	// AsymHi is the bound above which the integrand uses its x -> +inf asymptote
	AsymHi = 10

	// MaxArg is the largest upper bound for which the integral is finite in float64.
	// Beyond it the first-passage time overflows and the rate is 0.
	MaxArg = 26
)

// Params are the leaky integrate-and-fire neuron parameters and numerical
// integration controls for the Siegert transfer function.
// Potentials are absolute (mV), and must be in the same frame as the mean
// input mu passed to Rate.
type Params struct {
	TauM   float64 `def:"20" min:"0" desc:"membrane time constant in msec"`
	Vth    float64 `def:"-60" desc:"spike threshold potential in mV"`
	Vreset float64 `def:"-70" desc:"reset potential after a spike in mV"`
	Tref   float64 `def:"2" min:"0" desc:"absolute refractory period in msec"`

	Tol        float64 `def:"1e-10" view:"-" desc:"relative / absolute tolerance for the adaptive quadrature"`
	Limit      int     `def:"300" view:"-" desc:"maximum number of panels for the adaptive quadrature"`
	DegenTol   float64 `def:"1e-12" view:"-" desc:"integration ranges narrower than this are degenerate and give a rate of 0"`
	DenomFloor float64 `def:"1e-12" view:"-" desc:"first-passage times at or below this floor give a rate of 0 rather than dividing by ~0"`

	TauS  float64 `view:"-" json:"-" xml:"-" desc:"TauM in seconds"`
	TrefS float64 `view:"-" json:"-" xml:"-" desc:"Tref in seconds"`
}

func (sp *Params) Update() {
	sp.TauS = sp.TauM / 1000
	sp.TrefS = sp.Tref / 1000
}

func (sp *Params) Defaults() {
	sp.TauM = 20
	sp.Vth = -60
	sp.Vreset = -70
	sp.Tref = 2
	sp.Tol = 1e-10
	sp.Limit = 300
	sp.DegenTol = 1e-12
	sp.DenomFloor = 1e-12
	sp.Update()
}

// MaxRate returns the saturating firing rate 1 / Tref in Hz (+Inf if Tref is 0)
func (sp *Params) MaxRate() float64 {
	return 1 / sp.TrefS
}

// Bounds returns the normalized integration bounds for given input mean and std.
func (sp *Params) Bounds(mu, sigma float64) (lower, upper float64) {
	lower = (sp.Vreset - mu) / sigma
	upper = (sp.Vth - mu) / sigma
	return
}

// Rate returns the steady-state firing rate in Hz for Gaussian input with
// mean mu (mV) and standard deviation sigma (mV).  Returns ErrNumericalDomain
// if sigma is not positive.  Degenerate ranges (Vreset >= Vth, or bounds closer
// than DegenTol) give a rate of 0, as do first-passage times that overflow
// or fall below DenomFloor.
func (sp *Params) Rate(mu, sigma float64) (float64, error) {
	if !(sigma > 0) || math.IsInf(sigma, 1) {
		return 0, fmt.Errorf("%w: sigma = %g", ErrNumericalDomain, sigma)
	}
	if math.IsNaN(mu) || math.IsInf(mu, 0) {
		return 0, fmt.Errorf("%w: mu = %g", ErrNumericalDomain, mu)
	}
	lo, up := sp.Bounds(mu, sigma)
	if up <= lo || math.Abs(up-lo) < sp.DegenTol {
		return 0, nil
	}
	if up > MaxArg {
		return 0, nil
	}
	integ := sp.Integral(lo, up)
	denom := sp.TrefS + sp.TauS*sqrtPi*integ
	if math.IsNaN(denom) || math.IsInf(denom, 1) || denom <= sp.DenomFloor {
		return 0, nil
	}
	return 1 / denom, nil
}

// Integral returns the integral of Integrand from lower to upper,
// splitting at zero when the range straddles it.
func (sp *Params) Integral(lower, upper float64) float64 {
	if lower < 0 && upper > 0 {
		return Integrate(Integrand, lower, 0, sp.Tol, sp.Limit).Val +
			Integrate(Integrand, 0, upper, sp.Tol, sp.Limit).Val
	}
	return Integrate(Integrand, lower, upper, sp.Tol, sp.Limit).Val
}

// Integrand is exp(x^2) * (1 + erf(x)), evaluated with asymptotic forms
// beyond AsymLo and AsymHi.  In between it is computed as exp(x^2) * erfc(-x),
// which equals 1 + erf(x) without the cancellation for negative x.
// Below AsymLo the leading 1 / (sqrt(pi) |x|) term carries its first two
// series corrections so the integrand stays continuous and increasing at the switch.
func Integrand(x float64) float64 {
	switch {
	case x < AsymLo:
		ix2 := 1 / (x * x)
		return (1 - 0.5*ix2 + 0.75*ix2*ix2) / (sqrtPi * -x)
	case x > AsymHi:
		x2 := x * x
		return math.Exp(x2) * (2 - math.Exp(-x2)/(sqrtPi*x))
	default:
		return math.Exp(x*x) * math.Erfc(-x)
	}
}
