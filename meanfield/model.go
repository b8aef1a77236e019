// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package meanfield

import (
	"errors"
	"fmt"

	"github.com/emer/cbmf/cbnet"
	"github.com/emer/cbmf/siegert"
	"github.com/emer/cbmf/synin"
	"gonum.org/v1/gonum/floats"
)

// Indexes of the populations in Rates
const (
	GrC = int(cbnet.Granule)
	GoC = int(cbnet.Golgi)
	PC  = int(cbnet.Purkinje)
	MLI = int(cbnet.Interneuron)

	// N is the number of unknown rates
	N = cbnet.NUnknown
)

// Rates are the firing rates in Hz of the recurrently coupled populations,
// in the order granule, Golgi, Purkinje, interneuron.
type Rates [N]float64

// Drive are the exogenous fiber rates in Hz
type Drive struct {
	MF float64 `desc:"mossy fiber rate in Hz"`
	CF float64 `desc:"climbing fiber rate in Hz"`
}

// RequiredInputs lists, for each receiving population, the sending
// populations that must have a projection onto it.
var RequiredInputs = map[cbnet.PopKind][]cbnet.PopKind{
	cbnet.Granule:     {cbnet.MossyFiber, cbnet.Golgi},
	cbnet.Golgi:       {cbnet.MossyFiber, cbnet.Granule, cbnet.Golgi},
	cbnet.Purkinje:    {cbnet.Granule, cbnet.Interneuron, cbnet.ClimbingFiber},
	cbnet.Interneuron: {cbnet.Granule, cbnet.Interneuron},
	cbnet.DCN:         {cbnet.MossyFiber, cbnet.Purkinje},
}

// ErrNotReceiver is returned for input queries on fiber populations
var ErrNotReceiver = errors.New("meanfield: population receives no input")

// Model computes the input statistics and transfer function outputs of
// each population for given rates.  It holds its own copy of the network,
// so it is unaffected by later changes to the network it was made from,
// and it is safe to use from one goroutine at a time.  Make one Model per
// goroutine to solve in parallel.
type Model struct {

	// private copy of the network, read-only once the model is made
	net *cbnet.Network

	// transfer function params per population -- zero for fibers
	tf [cbnet.PopKindN]siegert.Params
}

// Network returns a copy of the network the model was made from
func (m *Model) Network() *cbnet.Network {
	return m.net.Clone()
}

// NewModel returns a new model for a copy of the network.
// Returns cbnet.ErrUndefinedProjection if any required input is missing.
func NewModel(net *cbnet.Network) (*Model, error) {
	m := &Model{net: net.Clone()}
	if m.net.Prjns == nil {
		m.net.Prjns = cbnet.NewPrjnTable()
	}
	for k := cbnet.PopKind(0); k < cbnet.PopKindN; k++ {
		for _, snd := range RequiredInputs[k] {
			if _, err := m.net.Prjns.Prjn(snd, k); err != nil {
				return nil, err
			}
		}
	}
	for k := cbnet.PopKind(0); k < cbnet.PopKindN; k++ {
		if !k.IsFiber() {
			m.tf[k] = m.net.Pops[k].Neuron.Siegert()
		}
	}
	return m, nil
}

// TF returns the transfer function params of given population
func (m *Model) TF(kind cbnet.PopKind) *siegert.Params {
	return &m.tf[kind]
}

// rateOf returns the rate of the sending population
func (m *Model) rateOf(snd cbnet.PopKind, rates *Rates, drive Drive) (float64, error) {
	switch {
	case snd == cbnet.MossyFiber:
		return drive.MF, nil
	case snd == cbnet.ClimbingFiber:
		return drive.CF, nil
	case snd.IsUnknown():
		return rates[snd], nil
	}
	return 0, fmt.Errorf("meanfield: %v is a feed-forward readout and cannot send input", snd)
}

// Inputs returns the synaptic inputs to one neuron of the receiving
// population, one per projection in table order.
// Returns cbnet.ErrUndefinedProjection if a required projection is missing.
func (m *Model) Inputs(kind cbnet.PopKind, rates Rates, drive Drive) ([]synin.Input, error) {
	if kind.IsFiber() {
		return nil, fmt.Errorf("%w: %v", ErrNotReceiver, kind)
	}
	for _, snd := range RequiredInputs[kind] {
		if !m.net.Prjns.Has(snd, kind) {
			_, err := m.net.Prjns.Prjn(snd, kind)
			return nil, err
		}
	}
	pjs := m.net.Prjns.RecvPrjns(kind)
	ins := make([]synin.Input, 0, len(pjs))
	for _, ps := range pjs {
		r, err := m.rateOf(ps.Send, &rates, drive)
		if err != nil {
			return nil, err
		}
		ins = append(ins, synin.Input{Wt: m.net.EffWt(&ps), N: m.net.InDegree(&ps), Rate: r})
	}
	return ins, nil
}

// InputStats returns the mean mu and standard deviation sigma of the
// membrane potential of the receiving population in mV: the aggregated
// inputs scaled by the membrane time constant, with mu offset by the
// leak reversal potential.
func (m *Model) InputStats(kind cbnet.PopKind, rates Rates, drive Drive) (synin.Stats, error) {
	ins, err := m.Inputs(kind, rates, drive)
	if err != nil {
		return synin.Stats{}, err
	}
	st, err := synin.Aggregate(ins...)
	if err != nil {
		return synin.Stats{}, fmt.Errorf("meanfield: %v: %w", kind, err)
	}
	np := &m.net.Pops[kind].Neuron
	sc := st.Scaled(np.TauS())
	sc.Mean += np.EL
	return sc, nil
}

// Rate returns the transfer function output of the receiving population.
// Zero input variance, which happens when all presynaptic rates are zero,
// gives an output rate of 0.
func (m *Model) Rate(kind cbnet.PopKind, rates Rates, drive Drive) (float64, error) {
	st, err := m.InputStats(kind, rates, drive)
	if err != nil {
		return 0, err
	}
	if st.Std == 0 {
		return 0, nil
	}
	r, err := m.tf[kind].Rate(st.Mean, st.Std)
	if err != nil {
		return 0, fmt.Errorf("meanfield: %v: %w", kind, err)
	}
	return r, nil
}

// TransferRates returns the transfer function outputs of all the
// recurrent populations for given rates.
func (m *Model) TransferRates(rates Rates, drive Drive) (Rates, error) {
	var out Rates
	for i := 0; i < N; i++ {
		r, err := m.Rate(cbnet.PopKind(i), rates, drive)
		if err != nil {
			return out, err
		}
		out[i] = r
	}
	return out, nil
}

// Residual returns rates - TF(rates): zero at a self-consistent fixed point.
// It is pure: repeated calls with the same arguments give identical results.
func (m *Model) Residual(rates Rates, drive Drive) (Rates, error) {
	tr, err := m.TransferRates(rates, drive)
	if err != nil {
		return tr, err
	}
	var res Rates
	for i := range res {
		res[i] = rates[i] - tr[i]
	}
	return res, nil
}

// DCNRate returns the rate of the deep cerebellar nuclei, driven feed-forward
// by the mossy fibers and the Purkinje rate in given rates.
func (m *Model) DCNRate(rates Rates, drive Drive) (float64, error) {
	return m.Rate(cbnet.DCN, rates, drive)
}

// Norm returns the Euclidean norm of the rates
func (rt Rates) Norm() float64 {
	return floats.Norm(rt[:], 2)
}
