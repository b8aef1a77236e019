// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package siegert

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"
)

// number of points in the low and high order Gauss-Legendre rules
// used to estimate the error on each panel
const (
	loN = 10
	hiN = 21
)

// nodes and weights on [-1, 1], computed once and read-only after init
var (
	loX, loW = legendre(loN)
	hiX, hiW = legendre(hiN)
)

func legendre(n int) (x, w []float64) {
	x = make([]float64, n)
	w = make([]float64, n)
	quad.Legendre{}.FixedLocations(x, w, -1, 1)
	return
}

// Integral is the result of an adaptive integration
type Integral struct {
	Val       float64 `desc:"estimated value of the integral"`
	Err       float64 `desc:"estimated absolute error"`
	Panels    int     `desc:"number of panels the range was subdivided into"`
	Converged bool    `desc:"true if the error estimate reached tolerance within the panel budget"`
}

// panel is one subinterval with its integral estimate
type panel struct {
	a, b     float64
	val, err float64
}

func newPanel(f func(float64) float64, a, b float64) panel {
	h := 0.5 * (b - a)
	m := 0.5 * (a + b)
	var lo, hi float64
	for i, x := range loX {
		lo += loW[i] * f(m+h*x)
	}
	for i, x := range hiX {
		hi += hiW[i] * f(m+h*x)
	}
	lo *= h
	hi *= h
	return panel{a: a, b: b, val: hi, err: math.Abs(hi - lo)}
}

// Integrate computes the integral of f from a to b using globally adaptive
// Gauss-Legendre quadrature: the panel with the largest error estimate is
// bisected until the total error is below tol (relative to the integral,
// or absolute when the integral is small), or the number of panels reaches limit.
// If the budget is exhausted the best estimate is returned with Converged = false.
// If b < a the result is the negative of the integral from b to a.
func Integrate(f func(float64) float64, a, b, tol float64, limit int) Integral {
	if a == b {
		return Integral{Converged: true}
	}
	if b < a {
		r := Integrate(f, b, a, tol, limit)
		r.Val = -r.Val
		return r
	}
	if limit < 1 {
		limit = 1
	}
	pans := make([]panel, 1, limit)
	pans[0] = newPanel(f, a, b)
	for {
		var val, err float64
		worst := 0
		for i := range pans {
			val += pans[i].val
			err += pans[i].err
			if pans[i].err > pans[worst].err {
				worst = i
			}
		}
		if math.IsInf(val, 0) || math.IsNaN(val) {
			return Integral{Val: val, Err: math.Inf(1), Panels: len(pans)}
		}
		if err <= math.Max(tol, tol*math.Abs(val)) {
			return Integral{Val: val, Err: err, Panels: len(pans), Converged: true}
		}
		if len(pans) >= limit {
			return Integral{Val: val, Err: err, Panels: len(pans)}
		}
		p := pans[worst]
		m := 0.5 * (p.a + p.b)
		if m <= p.a || m >= p.b { // cannot subdivide further at float64 resolution
			return Integral{Val: val, Err: err, Panels: len(pans)}
		}
		pans[worst] = newPanel(f, p.a, m)
		pans = append(pans, newPanel(f, m, p.b))
	}
}
