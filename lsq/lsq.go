// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package lsq provides bound-constrained nonlinear least squares:
minimize 0.5 * |F(x)|^2 subject to Lo <= x <= Hi.

The method is a projected Levenberg-Marquardt trust region with Marquardt
diagonal scaling.  The Jacobian is approximated with central finite
differences, with steps scaled by the magnitude of each variable.
Variables at a bound whose gradient points out of the box are held fixed
for the step, and trial steps that leave the box are projected back onto it,
so variables pushed against a bound settle exactly on it.
Everything is deterministic: the same problem and start always produce the
same sequence of evaluations.
*/
package lsq

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Problem is a vector-valued residual function of N variables with M outputs
type Problem struct {

	// N is the number of variables
	N int

	// M is the number of residuals
	M int

	// Func computes the M residuals at x into dst.  An error aborts the minimization.
	Func func(dst, x []float64) error
}

// Settings control the minimization.  Zero values of the tolerances are
// replaced by defaults, as are nil bounds (unbounded).
type Settings struct {
	Lo       []float64 `desc:"lower bounds on each variable -- nil = unbounded"`
	Hi       []float64 `desc:"upper bounds on each variable -- nil = unbounded"`
	FTol     float64   `def:"1e-6" desc:"stop when the relative reduction in cost of an accepted step is below this"`
	XTol     float64   `def:"1e-6" desc:"stop when the accepted step is small relative to |x|"`
	GTol     float64   `def:"1e-8" desc:"stop when the max abs projected gradient is below this"`
	MaxNFev  int       `def:"1000" desc:"maximum number of residual evaluations, not counting those for the Jacobian"`
	InitDamp float64   `def:"0.001" desc:"initial Levenberg-Marquardt damping factor"`
	Step     float64   `def:"1e-6" desc:"finite difference step, relative to max(1, |x_j|)"`
}

func (ls *Settings) Defaults() {
	ls.FTol = 1e-6
	ls.XTol = 1e-6
	ls.GTol = 1e-8
	ls.MaxNFev = 1000
	ls.InitDamp = 1e-3
	ls.Step = 1e-6
}

// fill replaces zero settings with defaults
func (ls *Settings) fill() {
	var df Settings
	df.Defaults()
	if ls.FTol <= 0 {
		ls.FTol = df.FTol
	}
	if ls.XTol <= 0 {
		ls.XTol = df.XTol
	}
	if ls.GTol <= 0 {
		ls.GTol = df.GTol
	}
	if ls.MaxNFev <= 0 {
		ls.MaxNFev = df.MaxNFev
	}
	if ls.InitDamp <= 0 {
		ls.InitDamp = df.InitDamp
	}
	if ls.Step <= 0 {
		ls.Step = df.Step
	}
}

const (
	// minDiag floors the Marquardt scaling of variables with a zero Jacobian column
	minDiag = 1e-12

	// minDamp and maxDamp bound the damping factor; exceeding maxDamp means stalled
	minDamp = 1e-12
	maxDamp = 1e16
)

// Result is the outcome of a minimization
type Result struct {
	X      []float64 `desc:"final variables"`
	F      []float64 `desc:"residuals at X"`
	Cost   float64   `desc:"0.5 * |F|^2"`
	Norm   float64   `desc:"|F|, Euclidean norm of the residuals"`
	NFev   int       `desc:"number of residual evaluations, not counting those for the Jacobian"`
	NJev   int       `desc:"number of Jacobian evaluations"`
	Iters  int       `desc:"number of iterations (Jacobian updates)"`
	Status Status    `desc:"why the minimization stopped"`
}

// Minimize minimizes the squared residuals of p starting from x0, which is
// first projected into the bounds.  If s is nil, defaults are used.
// Errors from p.Func are returned wrapped; failing to converge is not an
// error and is reported in Result.Status.
func Minimize(p *Problem, x0 []float64, s *Settings) (*Result, error) {
	n, m := p.N, p.M
	if n <= 0 || m <= 0 || len(x0) != n {
		return nil, fmt.Errorf("lsq: invalid problem size: N = %d, M = %d, len(x0) = %d", n, m, len(x0))
	}
	var st Settings
	if s != nil {
		st = *s
	}
	st.fill()
	lo, hi, err := bounds(n, st.Lo, st.Hi)
	if err != nil {
		return nil, err
	}

	res := &Result{X: make([]float64, n), F: make([]float64, m)}
	for j := range res.X {
		res.X[j] = clamp(x0[j], lo[j], hi[j])
	}
	if err := p.Func(res.F, res.X); err != nil {
		return nil, fmt.Errorf("lsq: evaluating start: %w", err)
	}
	res.NFev = 1
	res.setCost()

	jac := mat.NewDense(m, n, nil)
	var jtj mat.Dense
	grad := mat.NewVecDense(n, nil)
	rhs := mat.NewVecDense(n, nil)
	step := mat.NewVecDense(n, nil)
	a := mat.NewSymDense(n, nil)
	act := make([]bool, n)
	xt := make([]float64, n)
	ft := make([]float64, m)
	damp := st.InitDamp

	for res.NFev < st.MaxNFev {
		res.Iters++
		if err := jacobian(jac, p, res.X, st.Step); err != nil {
			return res, err
		}
		res.NJev++
		grad.MulVec(jac.T(), mat.NewVecDense(m, res.F))
		if activeSet(act, grad, res.X, lo, hi) < st.GTol {
			res.Status = GTolReached
			return res, nil
		}
		jtj.Mul(jac.T(), jac)
		for {
			for i := 0; i < n; i++ {
				for j := i; j < n; j++ {
					a.SetSym(i, j, 0)
				}
				if act[i] {
					a.SetSym(i, i, 1)
					rhs.SetVec(i, 0)
					continue
				}
				for j := i; j < n; j++ {
					if !act[j] {
						a.SetSym(i, j, jtj.At(i, j))
					}
				}
				a.SetSym(i, i, jtj.At(i, i)+damp*math.Max(jtj.At(i, i), minDiag))
				rhs.SetVec(i, -grad.AtVec(i))
			}
			var chol mat.Cholesky
			solved := chol.Factorize(a) && chol.SolveVecTo(step, rhs) == nil
			if solved {
				for j := range xt {
					xt[j] = clamp(res.X[j]+step.AtVec(j), lo[j], hi[j])
				}
				if err := p.Func(ft, xt); err != nil {
					return res, fmt.Errorf("lsq: evaluating trial step: %w", err)
				}
				res.NFev++
				cost := 0.5 * floats.Dot(ft, ft)
				if cost < res.Cost {
					dx := floats.Distance(xt, res.X, 2)
					dc := res.Cost - cost
					prv := res.Cost
					copy(res.X, xt)
					copy(res.F, ft)
					res.setCost()
					damp = math.Max(damp/3, minDamp)
					switch {
					case dc < st.FTol*prv:
						res.Status = FTolReached
						return res, nil
					case dx < st.XTol*(st.XTol+floats.Norm(res.X, 2)):
						res.Status = XTolReached
						return res, nil
					}
					break
				}
			}
			damp *= 2
			if res.NFev >= st.MaxNFev {
				res.Status = MaxNFevReached
				return res, nil
			}
			if damp > maxDamp {
				res.Status = Stalled
				return res, nil
			}
		}
	}
	res.Status = MaxNFevReached
	return res, nil
}

func (res *Result) setCost() {
	res.Norm = floats.Norm(res.F, 2)
	res.Cost = 0.5 * res.Norm * res.Norm
}

// jacobian computes the central difference Jacobian of p at x into jac.
// Differences are taken in units of max(1, |x_j|) so the step is relative
// for large variables and absolute for small ones.
func jacobian(jac *mat.Dense, p *Problem, x []float64, step float64) error {
	n := len(x)
	sc := make([]float64, n)
	u := make([]float64, n)
	for j, v := range x {
		sc[j] = math.Max(1, math.Abs(v))
		u[j] = v / sc[j]
	}
	xs := make([]float64, n)
	var ferr error
	fu := func(y, uv []float64) {
		if ferr != nil {
			return
		}
		for j := range uv {
			xs[j] = uv[j] * sc[j]
		}
		ferr = p.Func(y, xs)
	}
	fd.Jacobian(jac, fu, u, &fd.JacobianSettings{Formula: fd.Central, Step: step})
	if ferr != nil {
		return fmt.Errorf("lsq: evaluating Jacobian: %w", ferr)
	}
	for j := 0; j < n; j++ {
		for i := 0; i < p.M; i++ {
			jac.Set(i, j, jac.At(i, j)/sc[j])
		}
	}
	return nil
}

// activeSet marks in act the variables at a bound whose gradient points
// out of the box, and returns the max abs gradient of the others.
func activeSet(act []bool, g *mat.VecDense, x, lo, hi []float64) float64 {
	mx := 0.0
	for j := range x {
		gj := g.AtVec(j)
		act[j] = (x[j] <= lo[j] && gj > 0) || (x[j] >= hi[j] && gj < 0)
		if !act[j] {
			mx = math.Max(mx, math.Abs(gj))
		}
	}
	return mx
}

// ErrBounds is returned for inconsistent bounds
var ErrBounds = errors.New("lsq: invalid bounds")

func bounds(n int, lo, hi []float64) ([]float64, []float64, error) {
	l := make([]float64, n)
	h := make([]float64, n)
	for j := 0; j < n; j++ {
		l[j] = math.Inf(-1)
		h[j] = math.Inf(1)
	}
	if lo != nil {
		if len(lo) != n {
			return nil, nil, fmt.Errorf("%w: %d lower bounds for %d variables", ErrBounds, len(lo), n)
		}
		copy(l, lo)
	}
	if hi != nil {
		if len(hi) != n {
			return nil, nil, fmt.Errorf("%w: %d upper bounds for %d variables", ErrBounds, len(hi), n)
		}
		copy(h, hi)
	}
	for j := 0; j < n; j++ {
		if !(l[j] < h[j]) {
			return nil, nil, fmt.Errorf("%w: variable %d: lo %g >= hi %g", ErrBounds, j, l[j], h[j])
		}
	}
	return l, h, nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
