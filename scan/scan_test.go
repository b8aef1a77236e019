// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scan

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/emer/cbmf/cbnet"
	"github.com/emer/cbmf/meanfield"
	"github.com/emer/cbmf/synin"
	"github.com/emer/empi/v2/mpi"
)

func TestLinspace(t *testing.T) {
	vs := Linspace(0, 1, 5)
	cor := []float64{0, 0.25, 0.5, 0.75, 1}
	for i := range cor {
		if math.Abs(vs[i]-cor[i]) > 1e-15 {
			t.Errorf("Linspace err: idx: %v, v: %v, cor v: %v", i, vs[i], cor[i])
		}
	}
	if vs := Linspace(3, 9, 1); len(vs) != 1 || vs[0] != 3 {
		t.Errorf("Linspace n=1: %v", vs)
	}
	if vs := Linspace(3, 9, 0); len(vs) != 0 {
		t.Errorf("Linspace n=0: %v", vs)
	}
}

func TestGrid(t *testing.T) {
	pts := Grid([]float64{100, 200, 300}, []float64{1, 2})
	if len(pts) != 6 {
		t.Fatalf("grid size: %v", len(pts))
	}
	if pts[1] != (meanfield.Drive{MF: 200, CF: 1}) || pts[3] != (meanfield.Drive{MF: 100, CF: 2}) {
		t.Errorf("grid order: %v", pts)
	}
}

func TestRun(t *testing.T) {
	net := cbnet.NewNetwork()
	sc := NewScanner(net)
	sc.NThreads = 2
	pts := []meanfield.Drive{{MF: 100, CF: 1}, {MF: 550, CF: 3.5}, {MF: 800, CF: 1}}
	dt, err := sc.Run(pts)
	if err != nil {
		t.Fatal(err)
	}
	if dt.Rows != len(pts) || sc.NWarn != 0 {
		t.Fatalf("rows: %v warnings: %v", dt.Rows, sc.NWarn)
	}

	m, err := meanfield.NewModel(net)
	if err != nil {
		t.Fatal(err)
	}
	for pi, pt := range pts {
		rs, err := m.Solve(&sc.Solve, pt)
		if err != nil {
			t.Fatal(err)
		}
		if dt.CellFloat("MF", pi) != pt.MF || dt.CellFloat("CF", pi) != pt.CF {
			t.Errorf("row %d drive: %v %v", pi, dt.CellFloat("MF", pi), dt.CellFloat("CF", pi))
		}
		for i, cn := range []string{"GrC", "GoC", "PC", "MLI"} {
			if v := dt.CellFloat(cn, pi); v != rs.Rates[i] {
				t.Errorf("row %d %s: %v, serial solve: %v", pi, cn, v, rs.Rates[i])
			}
		}
		if dt.CellFloat("DCN", pi) != rs.DCN || dt.CellFloat("Converged", pi) != 1 {
			t.Errorf("row %d DCN: %v converged: %v", pi, dt.CellFloat("DCN", pi), dt.CellFloat("Converged", pi))
		}
	}
	if sc.Timer.TotalSecs() <= 0 {
		t.Errorf("timer not run")
	}

	var b bytes.Buffer
	if err := WriteCSV(dt, &b); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	if len(lines) != len(pts)+1 || !strings.Contains(lines[0], "ResidNorm") {
		t.Errorf("csv:\n%s", b.String())
	}
}

func TestRunComm(t *testing.T) {
	pts := []meanfield.Drive{{MF: 550, CF: 3.5}, {MF: 800, CF: 1}}
	sc := NewScanner(cbnet.NewNetwork())
	local, err := sc.Run(pts)
	if err != nil {
		t.Fatal(err)
	}
	sc.Comm, err = mpi.NewComm(nil)
	if err != nil {
		t.Fatal(err)
	}
	dt, err := sc.Run(pts)
	if err != nil {
		t.Fatal(err)
	}
	for pi := range pts {
		for _, cn := range Columns {
			if dt.CellFloat(cn, pi) != local.CellFloat(cn, pi) {
				t.Errorf("row %d %s: %v, without comm: %v", pi, cn, dt.CellFloat(cn, pi), local.CellFloat(cn, pi))
			}
		}
	}
}

func TestRunWarnings(t *testing.T) {
	sc := NewScanner(cbnet.NewNetwork())
	sc.Solve.MaxNFev = 3
	dt, err := sc.Run([]meanfield.Drive{{MF: 550, CF: 3.5}, {MF: 800, CF: 1}})
	if err != nil {
		t.Fatal(err)
	}
	if sc.NWarn != 2 || dt.CellFloat("Converged", 0) != 0 {
		t.Errorf("warnings: %v", sc.NWarn)
	}
}

func TestRunError(t *testing.T) {
	sc := NewScanner(cbnet.NewNetwork())
	_, err := sc.Run([]meanfield.Drive{{MF: 550, CF: 3.5}, {MF: -1, CF: 1}})
	if !errors.Is(err, synin.ErrInvalidInput) || !strings.Contains(err.Error(), "point 1") {
		t.Errorf("expected invalid input at point 1, got: %v", err)
	}

	nt := cbnet.NewNetwork()
	nt.Prjns.Remove(cbnet.MossyFiber, cbnet.Granule)
	sc = NewScanner(nt)
	if _, err := sc.Run([]meanfield.Drive{{MF: 550}}); !errors.Is(err, cbnet.ErrUndefinedProjection) {
		t.Errorf("expected ErrUndefinedProjection, got: %v", err)
	}
}
