// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cbnet

import (
	"github.com/emer/cbmf/siegert"
)

// NeuronParams are the leaky integrate-and-fire parameters of one population.
// Potentials are absolute, in mV.
type NeuronParams struct {
	TauM   float64 `def:"20" min:"0" desc:"membrane time constant in msec"`
	EL     float64 `def:"-70" desc:"leak reversal (resting) potential in mV"`
	Vth    float64 `def:"-60" desc:"spike threshold in mV"`
	Vreset float64 `def:"-70" desc:"reset potential after a spike in mV"`
	Tref   float64 `def:"2" min:"0" desc:"absolute refractory period in msec"`
}

func (np *NeuronParams) Defaults() {
	np.TauM = 20
	np.EL = -70
	np.Vth = -60
	np.Vreset = -70
	np.Tref = 2
}

// Set sets all the parameters in one call, in the order tau_m, E_L, V_th, V_reset, t_ref
func (np *NeuronParams) Set(tauM, el, vth, vreset, tref float64) {
	np.TauM = tauM
	np.EL = el
	np.Vth = vth
	np.Vreset = vreset
	np.Tref = tref
}

// TauS returns the membrane time constant in seconds, which scales
// rates in Hz into potentials in mV.
func (np *NeuronParams) TauS() float64 {
	return np.TauM / 1000
}

// Siegert returns transfer function params for this neuron, with default
// quadrature controls.
func (np *NeuronParams) Siegert() siegert.Params {
	sp := siegert.Params{}
	sp.Defaults()
	sp.TauM = np.TauM
	sp.Vth = np.Vth
	sp.Vreset = np.Vreset
	sp.Tref = np.Tref
	sp.Update()
	return sp
}
