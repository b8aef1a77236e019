// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package scan runs the mean-field solver over many operating points
(mossy and climbing fiber drive rates), in parallel across goroutines
within a process and across MPI processes, collecting the results in an
etable.Table with one row per point.
*/
package scan

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/emer/cbmf/cbnet"
	"github.com/emer/cbmf/meanfield"
	"github.com/emer/emergent/v2/timer"
	"github.com/emer/empi/v2/empi"
	"github.com/emer/empi/v2/mpi"
	"github.com/emer/etable/v2/etable"
	"github.com/emer/etable/v2/etensor"
)

// Columns are the names of the result table columns, in order
var Columns = []string{"MF", "CF", "GrC", "GoC", "PC", "MLI", "DCN", "ResidNorm", "NFev", "Converged"}

// per-row values exchanged across processes: the columns plus an error flag
const (
	nVals  = 11
	errCol = 10
)

// Scanner runs solves over a list of operating points
type Scanner struct {
	Net      *cbnet.Network        `desc:"network to solve -- each worker solves its own copy"`
	Solve    meanfield.SolveParams `desc:"solver params"`
	NThreads int                   `desc:"number of parallel goroutines in this process -- 0 = GOMAXPROCS"`
	Comm     *mpi.Comm             `view:"-" desc:"if non-nil, points are divided among the MPI processes of this communicator and gathered on all"`
	Timer    timer.Time            `view:"-" desc:"time taken by the last Run"`
	NWarn    int                   `inactive:"+" desc:"number of points that did not converge in the last Run"`
}

// NewScanner returns a scanner for the network with default solver params
func NewScanner(net *cbnet.Network) *Scanner {
	sc := &Scanner{Net: net}
	sc.Solve.Defaults()
	return sc
}

// Linspace returns n evenly spaced values from lo to hi inclusive
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	vs := make([]float64, n)
	for i := range vs {
		vs[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	vs[n-1] = hi
	return vs
}

// Grid returns all combinations of the mossy and climbing fiber rates,
// with mossy fiber varying fastest.
func Grid(mfs, cfs []float64) []meanfield.Drive {
	pts := make([]meanfield.Drive, 0, len(mfs)*len(cfs))
	for _, cf := range cfs {
		for _, mf := range mfs {
			pts = append(pts, meanfield.Drive{MF: mf, CF: cf})
		}
	}
	return pts
}

// nThreads returns the number of goroutines to use for n points
func (sc *Scanner) nThreads(n int) int {
	nt := sc.NThreads
	if nt <= 0 {
		nt = runtime.GOMAXPROCS(0)
	}
	if nt > n {
		nt = n
	}
	return max(nt, 1)
}

// Run solves at each point and returns the results, one row per point
// in the same order.  Points that do not converge are included, with
// Converged = 0, and counted in NWarn.  Any other error stops the scan.
func (sc *Scanner) Run(points []meanfield.Drive) (*etable.Table, error) {
	sc.Timer.Reset()
	sc.Timer.Start()
	defer sc.Timer.Stop()

	np := len(points)
	st, ed := 0, np
	if sc.Comm != nil {
		var err error
		st, ed, err = empi.AllocN(np)
		if err != nil {
			return nil, err
		}
	}

	nthr := sc.nThreads(ed - st)
	models := make([]*meanfield.Model, nthr)
	for th := range models {
		m, err := meanfield.NewModel(sc.Net)
		if err != nil {
			return nil, err
		}
		models[th] = m
	}

	vals := make([]float64, np*nVals)
	errs := make([]error, np)
	jobs := make(chan int)
	var wg sync.WaitGroup
	for _, m := range models {
		wg.Add(1)
		go func(m *meanfield.Model) {
			defer wg.Done()
			for pi := range jobs {
				errs[pi] = sc.solveRow(m, points[pi], vals[pi*nVals:(pi+1)*nVals])
			}
		}(m)
	}
	for pi := st; pi < ed; pi++ {
		jobs <- pi
	}
	close(jobs)
	wg.Wait()

	if sc.Comm != nil && mpi.WorldSize() > 1 {
		all := make([]float64, len(vals))
		if err := sc.Comm.AllReduceF64(mpi.OpSum, all, vals); err != nil {
			return nil, err
		}
		vals = all
	}

	var ferr error
	sc.NWarn = 0
	for pi := 0; pi < np; pi++ {
		rv := vals[pi*nVals : (pi+1)*nVals]
		if rv[errCol] != 0 {
			if errs[pi] == nil {
				errs[pi] = fmt.Errorf("scan: solve failed on another process")
			}
			ferr = errors.Join(ferr, fmt.Errorf("scan: point %d: %w", pi, errs[pi]))
			continue
		}
		if rv[9] == 0 {
			sc.NWarn++
		}
	}
	if ferr != nil {
		return nil, ferr
	}

	dt := &etable.Table{}
	ConfigTable(dt, np)
	for pi := 0; pi < np; pi++ {
		rv := vals[pi*nVals : (pi+1)*nVals]
		for ci, cn := range Columns {
			dt.SetCellFloat(cn, pi, rv[ci])
		}
	}
	return dt, nil
}

// solveRow solves one point, writing the row values into rv.
// Only errors that are not convergence warnings are returned, and flagged in rv.
func (sc *Scanner) solveRow(m *meanfield.Model, drive meanfield.Drive, rv []float64) error {
	rs, err := m.Solve(&sc.Solve, drive)
	if err != nil && !meanfield.IsWarning(err) {
		rv[errCol] = 1
		return err
	}
	rv[0] = drive.MF
	rv[1] = drive.CF
	for i := 0; i < meanfield.N; i++ {
		rv[2+i] = rs.Rates[i]
	}
	rv[6] = rs.DCN
	rv[7] = rs.ResidNorm
	rv[8] = float64(rs.NFev)
	if rs.Converged() {
		rv[9] = 1
	}
	return nil
}

// ConfigTable configures the result table with given number of rows
func ConfigTable(dt *etable.Table, rows int) {
	dt.SetMetaData("name", "MeanFieldScan")
	dt.SetMetaData("desc", "steady-state rates per operating point")
	dt.SetMetaData("precision", "6")
	sch := etable.Schema{}
	for _, cn := range Columns {
		sch = append(sch, etable.Column{Name: cn, Type: etensor.FLOAT64, CellShape: nil, DimNames: nil})
	}
	dt.SetFromSchema(sch, rows)
}

// WriteCSV writes the table as comma-separated values with a header row
func WriteCSV(dt *etable.Table, w io.Writer) error {
	return dt.WriteCSV(w, etable.Comma, etable.Headers)
}
