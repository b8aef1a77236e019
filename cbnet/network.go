// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cbnet

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/c2h5oh/datasize"
)

// Population is one homogeneous population of the network
type Population struct {
	Kind   PopKind      `desc:"which population this is"`
	N      int          `min:"1" desc:"number of neurons or fibers"`
	Neuron NeuronParams `desc:"neuron parameters -- unused for fibers"`
	Box    Box          `desc:"region of tissue occupied, for spatial weights"`
}

// Network is the static description of the cerebellar network: populations
// and the projections among them.  It is read-only once validated: the
// mean-field model clones it, so callers running solves in parallel never
// share mutable state.
type Network struct {
	Name    string               `desc:"name of the network"`
	Pops    [PopKindN]Population `desc:"populations, indexed by PopKind"`
	Prjns   *PrjnTable           `desc:"projections among populations"`
	Spatial bool                 `desc:"decay weights with the distance between population centers"`
}

// NewNetwork returns a new network with default parameters
func NewNetwork() *Network {
	nt := &Network{}
	nt.Defaults()
	return nt
}

// Defaults sets the standard cerebellar microcircuit
func (nt *Network) Defaults() {
	nt.Name = "cerebellum"
	nt.Spatial = false
	sizes := [PopKindN]int{Granule: 500, Golgi: 50, Purkinje: 50, Interneuron: 100, MossyFiber: 500, ClimbingFiber: 30, DCN: 50}
	for k := PopKind(0); k < PopKindN; k++ {
		pp := &nt.Pops[k]
		pp.Kind = k
		pp.N = sizes[k]
		pp.Neuron = NeuronParams{}
	}
	nt.Pops[Granule].Neuron.Set(20, -70, -60, -70, 2)
	nt.Pops[Golgi].Neuron.Set(25, -70, -50, -70, 2)
	nt.Pops[Purkinje].Neuron.Set(30, -70, -50, -65, 5)
	nt.Pops[Interneuron].Neuron.Set(10, -70, -55, -70, 2)
	nt.Pops[DCN].Neuron.Set(20, -70, -55, -70, 2)

	nt.Pops[MossyFiber].Box.SetZ(2, 3)
	nt.Pops[ClimbingFiber].Box.SetZ(0, 2)
	nt.Pops[Granule].Box.SetZ(3, 4)
	nt.Pops[Golgi].Box.SetZ(3, 4)
	nt.Pops[Purkinje].Box.SetZ(4, 5)
	nt.Pops[Interneuron].Box.SetZ(6, 7)
	nt.Pops[DCN].Box.SetZ(2, 3)

	nt.Prjns = NewPrjnTable()
	for _, ps := range DefaultPrjns() {
		nt.Prjns.Add(ps)
	}
}

// DefaultPrjns returns the standard projections, weights in mV.
// The mossy fiber in-degrees and the parallel fiber probability are set so
// that no population saturates or falls silent at 550 Hz MF, 3.5 Hz CF.
func DefaultPrjns() []PrjnSpec {
	return []PrjnSpec{
		{Send: MossyFiber, Recv: Granule, Wt: 1, Delay: 1, Rule: FixedInDegree, K: 4},
		{Send: MossyFiber, Recv: Golgi, Wt: 1, Delay: 1, Rule: FixedInDegree, K: 1},
		{Send: Granule, Recv: Golgi, Wt: 1.2, Delay: 1.5, Rule: PairwiseBernoulli, P: 0.1},
		{Send: Golgi, Recv: Granule, Wt: -4, Delay: 1, Rule: PairwiseBernoulli, P: 0.3},
		{Send: Golgi, Recv: Golgi, Wt: -0.5, Delay: 1, Rule: PairwiseBernoulli, P: 0.15},
		{Send: Granule, Recv: Interneuron, Wt: 0.8, Delay: 1.5, Rule: PairwiseBernoulli, P: 0.25},
		{Send: Interneuron, Recv: Interneuron, Wt: -0.8, Delay: 1, Rule: PairwiseBernoulli, P: 0.3},
		{Send: Granule, Recv: Purkinje, Wt: 1, Delay: 1.5, Rule: PairwiseBernoulli, P: 0.3},
		{Send: ClimbingFiber, Recv: Purkinje, Wt: 15, Delay: 1, Rule: PairwiseBernoulli, P: 0.2},
		{Send: Interneuron, Recv: Purkinje, Wt: -1.5, Delay: 1, Rule: PairwiseBernoulli, P: 0.3},
		{Send: Purkinje, Recv: DCN, Wt: -2, Delay: 1, Rule: AllToAll},
		{Send: MossyFiber, Recv: DCN, Wt: 1.5, Delay: 1, Rule: FixedInDegree, K: 8},
	}
}

// Pop returns the population of given kind
func (nt *Network) Pop(kind PopKind) *Population {
	return &nt.Pops[kind]
}

// Clone returns a deep copy of the network
func (nt *Network) Clone() *Network {
	cn := *nt
	if nt.Prjns != nil {
		cn.Prjns = nt.Prjns.Clone()
	}
	return &cn
}

// InDegree returns the expected number of inputs per receiving neuron for the projection
func (nt *Network) InDegree(ps *PrjnSpec) int {
	return ps.InDegree(nt.Pops[ps.Send].N, nt.Pops[ps.Recv].N)
}

// synapse is the per-connection state an explicit spiking instantiation would carry
type synapse struct {
	Wt    float64
	Delay float64
}

// SizeReport returns a string reporting, for an explicit spiking instantiation
// of the network, the neurons of each population and the synapses of each
// projection into it, with their memory footprint.
func (nt *Network) SizeReport() string {
	var b strings.Builder
	neurBytes := int(unsafe.Sizeof(NeuronParams{}))
	synBytes := int(unsafe.Sizeof(synapse{}))
	totNeur, totSyn := 0, 0
	memNeur, memSyn := 0, 0
	for k := PopKind(0); k < PopKindN; k++ {
		pp := &nt.Pops[k]
		if k.IsFiber() {
			fmt.Fprintf(&b, "%14s:\t Fibers: %d\n", k, pp.N)
			continue
		}
		nmem := pp.N * neurBytes
		totNeur += pp.N
		memNeur += nmem
		fmt.Fprintf(&b, "%14s:\t Neurons: %d\t NeurMem: %v \t Recv From:\n", k, pp.N, datasize.ByteSize(nmem).HumanReadable())
		if nt.Prjns == nil {
			continue
		}
		for _, ps := range nt.Prjns.RecvPrjns(k) {
			ns := pp.N * nt.InDegree(&ps)
			smem := ns * synBytes
			totSyn += ns
			memSyn += smem
			fmt.Fprintf(&b, "\t%14s:\t K: %d\t Syns: %d\t SynMem: %v\n", ps.Send, nt.InDegree(&ps), ns, datasize.ByteSize(smem).HumanReadable())
		}
	}
	fmt.Fprintf(&b, "\n%14s:\t Neurons: %d\t NeurMem: %v \t Syns: %d \t SynMem: %v\n", nt.Name, totNeur, datasize.ByteSize(memNeur).HumanReadable(), totSyn, datasize.ByteSize(memSyn).HumanReadable())
	return b.String()
}

// NNeurons returns the total number of neurons, not counting fibers
func (nt *Network) NNeurons() int {
	n := 0
	for k := PopKind(0); k < PopKindN; k++ {
		if !k.IsFiber() {
			n += nt.Pops[k].N
		}
	}
	return n
}
