// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package meanfield

import (
	"errors"
	"fmt"
	"math"

	"github.com/emer/cbmf/lsq"
	"github.com/emer/etable/v2/minmax"
)

// SolveParams are the bounds, tolerances and initial guess for the
// fixed-point solver.
type SolveParams struct {
	LoBound float64 `def:"0.001" min:"0" desc:"lower bound on all rates in Hz -- keeps rates positive"`
	HiGrC   float64 `def:"10000" desc:"upper bound on the granule rate in Hz"`
	HiGoC   float64 `def:"10000" desc:"upper bound on the Golgi rate in Hz"`
	HiPC    float64 `def:"1000" desc:"upper bound on the Purkinje rate in Hz"`
	HiMLI   float64 `def:"1000" desc:"upper bound on the interneuron rate in Hz"`
	FTol    float64 `def:"1e-6" desc:"relative cost reduction tolerance"`
	XTol    float64 `def:"1e-6" desc:"relative step size tolerance"`
	GTol    float64 `def:"1e-8" desc:"projected gradient tolerance"`
	MaxNFev int     `def:"1000" desc:"maximum number of residual evaluations"`

	SeedGrC   float64 `def:"0.1" desc:"initial granule rate as a fraction of the mossy fiber rate"`
	SeedGoC   float64 `def:"0.2" desc:"initial Golgi rate as a fraction of the mossy fiber rate"`
	SeedPC    float64 `def:"50" desc:"initial Purkinje rate in Hz"`
	SeedMLI   float64 `def:"20" desc:"initial interneuron rate in Hz"`
	SeedFloor float64 `def:"1" desc:"minimum initial rate in Hz"`
}

func (sp *SolveParams) Defaults() {
	sp.LoBound = 1e-3
	sp.HiGrC = 1e4
	sp.HiGoC = 1e4
	sp.HiPC = 1e3
	sp.HiMLI = 1e3
	sp.FTol = 1e-6
	sp.XTol = 1e-6
	sp.GTol = 1e-8
	sp.MaxNFev = 1000
	sp.SeedGrC = 0.1
	sp.SeedGoC = 0.2
	sp.SeedPC = 50
	sp.SeedMLI = 20
	sp.SeedFloor = 1
}

// Bounds returns the range of each rate
func (sp *SolveParams) Bounds() [N]minmax.F64 {
	var bs [N]minmax.F64
	hi := [N]float64{GrC: sp.HiGrC, GoC: sp.HiGoC, PC: sp.HiPC, MLI: sp.HiMLI}
	for i := range bs {
		bs[i] = minmax.F64{Min: sp.LoBound, Max: hi[i]}
	}
	return bs
}

// InitGuess returns the initial rates for given drive: granule and Golgi
// proportional to the mossy fiber rate, Purkinje and interneuron fixed,
// all at least SeedFloor.
func (sp *SolveParams) InitGuess(drive Drive) Rates {
	var x Rates
	x[GrC] = math.Max(sp.SeedGrC*drive.MF, sp.SeedFloor)
	x[GoC] = math.Max(sp.SeedGoC*drive.MF, sp.SeedFloor)
	x[PC] = math.Max(sp.SeedPC, sp.SeedFloor)
	x[MLI] = math.Max(sp.SeedMLI, sp.SeedFloor)
	return x
}

// Settings returns the least squares settings for these params
func (sp *SolveParams) Settings() *lsq.Settings {
	st := &lsq.Settings{}
	st.Defaults()
	bs := sp.Bounds()
	st.Lo = make([]float64, N)
	st.Hi = make([]float64, N)
	for i, b := range bs {
		st.Lo[i] = b.Min
		st.Hi[i] = b.Max
	}
	st.FTol = sp.FTol
	st.XTol = sp.XTol
	st.GTol = sp.GTol
	st.MaxNFev = sp.MaxNFev
	return st
}

// Result is the outcome of a fixed-point solve
type Result struct {
	Drive     Drive      `desc:"exogenous drive solved for"`
	Rates     Rates      `desc:"steady-state rates in Hz"`
	Resid     Rates      `desc:"residual rates - TF(rates) at the solution"`
	ResidNorm float64    `desc:"Euclidean norm of the residual"`
	DCN       float64    `desc:"feed-forward deep cerebellar nuclei rate in Hz"`
	NFev      int        `desc:"number of residual evaluations"`
	Iters     int        `desc:"number of solver iterations"`
	Status    lsq.Status `desc:"why the solver stopped"`
}

// Converged returns true if the solver reached one of its tolerances
func (rs *Result) Converged() bool {
	return rs.Status.Converged()
}

// ConvergenceWarning is returned along with the best available result
// when the solver stops without reaching a tolerance.  It is not fatal.
type ConvergenceWarning struct {
	Drive     Drive
	Status    lsq.Status
	ResidNorm float64
	NFev      int
}

func (cw *ConvergenceWarning) Error() string {
	return fmt.Sprintf("meanfield: not converged at MF: %g CF: %g: %v after %d evaluations, residual norm: %g", cw.Drive.MF, cw.Drive.CF, cw.Status, cw.NFev, cw.ResidNorm)
}

// IsWarning returns true if err is a ConvergenceWarning, i.e., the result
// returned with it is usable.
func IsWarning(err error) bool {
	var cw *ConvergenceWarning
	return errors.As(err, &cw)
}

// Solve finds the self-consistent rates for given drive, starting from
// InitGuess.  On failure to converge, the best result is returned together
// with a *ConvergenceWarning.  Any other error is fatal and the result is nil.
func (m *Model) Solve(sp *SolveParams, drive Drive) (*Result, error) {
	return m.SolveFrom(sp, drive, sp.InitGuess(drive))
}

// SolveFrom is Solve starting from given rates
func (m *Model) SolveFrom(sp *SolveParams, drive Drive, seed Rates) (*Result, error) {
	var x Rates
	prob := &lsq.Problem{N: N, M: N, Func: func(dst, xs []float64) error {
		// finite difference steps can dip just below the lower bound
		for i := range x {
			x[i] = math.Max(xs[i], 0)
		}
		res, err := m.Residual(x, drive)
		if err != nil {
			return err
		}
		for i := range res {
			dst[i] = xs[i] - x[i] + res[i]
		}
		return nil
	}}
	lr, err := lsq.Minimize(prob, seed[:], sp.Settings())
	if err != nil {
		return nil, fmt.Errorf("meanfield: MF: %g CF: %g: %w", drive.MF, drive.CF, err)
	}
	rs := &Result{Drive: drive, NFev: lr.NFev, Iters: lr.Iters, Status: lr.Status}
	copy(rs.Rates[:], lr.X)
	rs.Resid, err = m.Residual(rs.Rates, drive)
	if err != nil {
		return nil, err
	}
	rs.ResidNorm = rs.Resid.Norm()
	rs.DCN, err = m.DCNRate(rs.Rates, drive)
	if err != nil {
		return nil, err
	}
	if !rs.Converged() {
		return rs, &ConvergenceWarning{Drive: drive, Status: rs.Status, ResidNorm: rs.ResidNorm, NFev: rs.NFev}
	}
	return rs, nil
}
