// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cbnet

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/goki/mat32"
)

func TestPopKindNames(t *testing.T) {
	nms := []string{"granule", "Golgi", "PURKINJE", "interneurons", "mossy_fibers", "ClimbingFiber", "dcn"}
	for i, nm := range nms {
		pk, err := PopKindFromName(nm)
		if err != nil {
			t.Errorf("name: %s err: %v", nm, err)
		}
		if pk != PopKind(i) {
			t.Errorf("name: %s got: %v want: %v", nm, pk, PopKind(i))
		}
		tx, _ := pk.MarshalText()
		var rk PopKind
		if err := rk.UnmarshalText(tx); err != nil || rk != pk {
			t.Errorf("text round trip: %s -> %v err: %v", tx, rk, err)
		}
	}
	if _, err := PopKindFromName("climbing"); err == nil {
		t.Errorf("expected error for unknown name")
	}
	if Granule.String() != "Granule" || MossyFiber.Name() != "mossy_fibers" {
		t.Errorf("names: %v %v", Granule.String(), MossyFiber.Name())
	}
	for k := PopKind(0); k < PopKindN; k++ {
		if k.IsUnknown() == (k >= MossyFiber) {
			t.Errorf("%v IsUnknown: %v", k, k.IsUnknown())
		}
	}
}

func TestInDegree(t *testing.T) {
	tests := []struct {
		ps    PrjnSpec
		nSend int
		nRecv int
		k     int
	}{
		{PrjnSpec{Rule: FixedInDegree, K: 4}, 500, 500, 4},
		{PrjnSpec{Rule: PairwiseBernoulli, P: 0.1}, 500, 50, 50},
		{PrjnSpec{Rule: PairwiseBernoulli, P: 0.25}, 500, 100, 125},
		{PrjnSpec{Rule: PairwiseBernoulli, P: 0.5}, 5, 10, 3},
		{PrjnSpec{Rule: PairwiseBernoulli, P: 0.5}, 3, 10, 2},
		{PrjnSpec{Rule: PairwiseBernoulli, P: 0.01}, 30, 50, 0},
		{PrjnSpec{Rule: FixedTotalNumber, Total: 250}, 30, 100, 3},
		{PrjnSpec{Rule: FixedTotalNumber, Total: 240}, 30, 100, 2},
		{PrjnSpec{Rule: FixedTotalNumber, Total: 240}, 30, 0, 0},
		{PrjnSpec{Rule: AllToAll}, 50, 7, 50},
	}
	for i, ts := range tests {
		k := ts.ps.InDegree(ts.nSend, ts.nRecv)
		if k != ts.k {
			t.Errorf("InDegree err: idx: %v, rule: %v, k: %v, cor k: %v", i, ts.ps.Rule, k, ts.k)
		}
	}

	nt := NewNetwork()
	ps, _ := nt.Prjns.Prjn(ClimbingFiber, Purkinje)
	if k := nt.InDegree(&ps); k != 6 {
		t.Errorf("ClimbingFiber -> Purkinje in-degree: %v, want 6", k)
	}
}

func TestPrjnTable(t *testing.T) {
	nt := NewNetwork()
	if nt.Prjns.Len() != 12 {
		t.Fatalf("default projections: %v", nt.Prjns.Len())
	}
	ps, err := nt.Prjns.Prjn(Golgi, Granule)
	if err != nil || ps.Wt != -4 || ps.P != 0.3 {
		t.Errorf("Golgi -> Granule: %+v err: %v", ps, err)
	}
	_, err = nt.Prjns.Prjn(Purkinje, Granule)
	if !errors.Is(err, ErrUndefinedProjection) {
		t.Errorf("expected ErrUndefinedProjection, got: %v", err)
	}
	if !strings.Contains(err.Error(), "Purkinje") {
		t.Errorf("error should name the populations: %v", err)
	}

	// replacing keeps position
	first := nt.Prjns.Specs()[0]
	first.Wt = 2
	nt.Prjns.Add(first)
	if sp := nt.Prjns.Specs(); sp[0].Wt != 2 || nt.Prjns.Len() != 12 {
		t.Errorf("replace: %+v len: %v", sp[0], nt.Prjns.Len())
	}

	// removing keeps order of the rest
	before := nt.Prjns.Specs()
	if !nt.Prjns.Remove(Golgi, Granule) {
		t.Errorf("Remove returned false")
	}
	if nt.Prjns.Remove(Golgi, Granule) {
		t.Errorf("second Remove returned true")
	}
	after := nt.Prjns.Specs()
	j := 0
	for _, ps := range before {
		if ps.Key() == (PrjnKey{Golgi, Granule}) {
			continue
		}
		if after[j].Key() != ps.Key() {
			t.Errorf("order changed at %d: %v vs %v", j, after[j].Key(), ps.Key())
		}
		j++
	}

	rp := nt.Prjns.RecvPrjns(Purkinje)
	if len(rp) != 3 || rp[0].Send != Granule || rp[1].Send != ClimbingFiber || rp[2].Send != Interneuron {
		t.Errorf("Purkinje inputs: %+v", rp)
	}
	// parallel fibers are slower than the other projections
	for _, ps := range nt.Prjns.Specs() {
		dl := 1.0
		if ps.Send == Granule {
			dl = 1.5
		}
		if ps.Delay != dl {
			t.Errorf("%v delay: %v want: %v", ps.Name(), ps.Delay, dl)
		}
	}
}

func TestClone(t *testing.T) {
	nt := NewNetwork()
	cn := nt.Clone()
	cn.Pops[Granule].N = 10
	cn.Pops[Golgi].Neuron.TauM = 99
	ps, _ := cn.Prjns.Prjn(Granule, Purkinje)
	ps.Wt = 7
	cn.Prjns.Add(ps)
	cn.Prjns.Remove(MossyFiber, DCN)

	if nt.Pops[Granule].N != 500 || nt.Pops[Golgi].Neuron.TauM != 25 {
		t.Errorf("clone shares populations")
	}
	if ps, _ := nt.Prjns.Prjn(Granule, Purkinje); ps.Wt != 1 {
		t.Errorf("clone shares projections: %+v", ps)
	}
	if !nt.Prjns.Has(MossyFiber, DCN) {
		t.Errorf("clone removal affected original")
	}
}

func TestSpatial(t *testing.T) {
	nt := NewNetwork()
	ps, _ := nt.Prjns.Prjn(Granule, Purkinje)
	ps.Space = 2
	nt.Prjns.Add(ps)

	if w := nt.EffWt(&ps); w != ps.Wt {
		t.Errorf("non-spatial EffWt: %v want: %v", w, ps.Wt)
	}
	nt.Spatial = true
	if d := nt.Dist(Granule, Purkinje); d != 1 {
		t.Errorf("Granule - Purkinje distance: %v", d)
	}
	cor := ps.Wt * math.Exp(-0.5)
	w1 := nt.EffWt(&ps)
	w2 := nt.EffWt(&ps)
	if math.Abs(w1-cor) > 1e-12 || w1 != w2 {
		t.Errorf("spatial EffWt: %v %v want: %v", w1, w2, cor)
	}
	if ps2, _ := nt.Prjns.Prjn(Granule, Purkinje); ps2.Wt != 1 {
		t.Errorf("base weight modified: %v", ps2.Wt)
	}

	// no length constant: no decay even in spatial mode
	gg, _ := nt.Prjns.Prjn(Golgi, Granule)
	if w := nt.EffWt(&gg); w != gg.Wt {
		t.Errorf("EffWt without length constant: %v", w)
	}
	if w := DecayWt(-3, 5, 0); w != -3 {
		t.Errorf("DecayWt space 0: %v", w)
	}
	if w := DecayWt(-3, 0, 1); w != -3 {
		t.Errorf("DecayWt dist 0: %v", w)
	}

	var bx Box
	if !bx.IsZero() {
		t.Errorf("zero Box not IsZero")
	}
	bx.SetZ(2, 4)
	if c := bx.Center(); c != mat32.NewVec3(0, 0, 3) || bx.IsZero() {
		t.Errorf("Box center: %v", c)
	}
}

func TestValidate(t *testing.T) {
	nt := NewNetwork()
	if err := nt.Validate(); err != nil {
		t.Fatalf("defaults should be valid: %v", err)
	}
	nt.Pops[Purkinje].Neuron.Vreset = -40
	nt.Pops[Golgi].Neuron.TauM = 0
	nt.Pops[DCN].N = 0
	ps, _ := nt.Prjns.Prjn(Granule, Golgi)
	ps.P = 1.5
	nt.Prjns.Add(ps)
	nt.Prjns.Add(PrjnSpec{Send: Granule, Recv: MossyFiber, Wt: 200, Rule: AllToAll})
	nt.Prjns.Add(PrjnSpec{Send: DCN, Recv: Purkinje, Wt: -1, Rule: AllToAll})
	err := nt.Validate()
	if !errors.Is(err, ErrImplausible) {
		t.Fatalf("expected ErrImplausible, got: %v", err)
	}
	msg := err.Error()
	for _, s := range []string{"Purkinje: Vreset", "Golgi: TauM", "DCN: size", "GranuleToGolgi: probability", "GranuleToMossyFiber: fibers", "GranuleToMossyFiber: weight", "DCNToPurkinje: deep nuclei"} {
		if !strings.Contains(msg, s) {
			t.Errorf("missing problem %q in:\n%v", s, msg)
		}
	}
}

func TestDecode(t *testing.T) {
	src := `
Name = "test"
Spatial = true

[[Pops]]
Kind = "golgi"
TauM = 30
N = 80

[[Prjns]]
Send = "granule"
Recv = "purkinje"
P = 0.4
Space = 2.5

[[Prjns]]
Send = "mossy_fibers"
Recv = "dcn"
Remove = true

[[Prjns]]
Send = "climbing_fibers"
Recv = "interneurons"
Wt = 3
Rule = "fixed_total_number"
Total = 200
`
	nt, err := Decode(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if nt.Name != "test" || !nt.Spatial {
		t.Errorf("name / spatial: %v %v", nt.Name, nt.Spatial)
	}
	if gc := nt.Pops[Golgi]; gc.N != 80 || gc.Neuron.TauM != 30 || gc.Neuron.Vth != -50 {
		t.Errorf("golgi: %+v", gc)
	}
	if ps, _ := nt.Prjns.Prjn(Granule, Purkinje); ps.P != 0.4 || ps.Space != 2.5 || ps.Wt != 1 {
		t.Errorf("granule -> purkinje: %+v", ps)
	}
	if nt.Prjns.Has(MossyFiber, DCN) {
		t.Errorf("mossy fiber -> dcn should be removed")
	}
	ps, err := nt.Prjns.Prjn(ClimbingFiber, Interneuron)
	if err != nil || ps.Rule != FixedTotalNumber || nt.InDegree(&ps) != 2 || ps.Delay != 1 {
		t.Errorf("climbing fiber -> interneuron: %+v err: %v", ps, err)
	}

	if _, err := Decode(strings.NewReader("[[Pops]]\nKind = \"golgi\"\nTauMM = 3\n")); err == nil {
		t.Errorf("expected error for misspelled key")
	}
	if _, err := Decode(strings.NewReader("[[Pops]]\nKind = \"golgi\"\nVreset = -40\n")); !errors.Is(err, ErrImplausible) {
		t.Errorf("expected ErrImplausible, got: %v", err)
	}
	if _, err := Decode(strings.NewReader("[[Pops]]\nKind = \"astrocyte\"\n")); err == nil {
		t.Errorf("expected error for unknown population")
	}
}

func TestEncode(t *testing.T) {
	nt := NewNetwork()
	nt.Name = "saved"
	nt.Pops[Interneuron].Neuron.Tref = 1.5
	nt.Prjns.Remove(Golgi, Golgi)
	nt.Prjns.Add(PrjnSpec{Send: ClimbingFiber, Recv: Golgi, Wt: 0.5, Delay: 2, Rule: FixedInDegree, K: 2})

	var b bytes.Buffer
	if err := nt.Encode(&b); err != nil {
		t.Fatal(err)
	}
	rn, err := Decode(&b)
	if err != nil {
		t.Fatalf("decode: %v\n%s", err, b.String())
	}
	if rn.Name != nt.Name || rn.Spatial != nt.Spatial || rn.Pops != nt.Pops {
		t.Errorf("populations differ after round trip")
	}
	a, c := nt.Prjns.Specs(), rn.Prjns.Specs()
	if len(a) != len(c) {
		t.Fatalf("projections: %d vs %d", len(a), len(c))
	}
	for i := range a {
		if a[i] != c[i] {
			t.Errorf("projection %d: %+v vs %+v", i, a[i], c[i])
		}
	}
}

func TestSizeReport(t *testing.T) {
	nt := NewNetwork()
	rep := nt.SizeReport()
	for _, s := range []string{"Granule", "MossyFiber", "Syns:", "cerebellum"} {
		if !strings.Contains(rep, s) {
			t.Errorf("size report missing %q:\n%s", s, rep)
		}
	}
	if nt.NNeurons() != 750 {
		t.Errorf("NNeurons: %v", nt.NNeurons())
	}
}
