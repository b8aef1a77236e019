// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cbnet

import (
	"errors"
	"fmt"
	"math"

	"github.com/goki/ki/kit"
	"github.com/goki/kigen/ordmap"
)

// ErrUndefinedProjection is returned when looking up a projection that
// is not present in the table.
var ErrUndefinedProjection = errors.New("cbnet: undefined projection")

// ConnRule is the connectivity rule of a projection, which determines
// the expected number of inputs each receiving neuron gets.
type ConnRule int32

//go:generate stringer -type=ConnRule

var KiT_ConnRule = kit.Enums.AddEnum(ConnRuleN, kit.NotBitFlag, nil)

func (ev ConnRule) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *ConnRule) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

// The connectivity rules
const (
	// FixedInDegree gives each receiver exactly K inputs
	FixedInDegree ConnRule = iota

	// PairwiseBernoulli connects each sender-receiver pair with probability P
	PairwiseBernoulli

	// FixedTotalNumber draws Total connections in all, spread over receivers
	FixedTotalNumber

	// AllToAll connects every sender to every receiver
	AllToAll

	ConnRuleN
)

// names used by the simulator-side configuration
var connNames = [ConnRuleN]string{"fixed_indegree", "pairwise_bernoulli", "fixed_total_number", "all_to_all"}

// FromString sets the rule from the Go name or the configuration name
func (ev *ConnRule) FromString(s string) error {
	for i := ConnRule(0); i < ConnRuleN; i++ {
		if s == i.String() || s == connNames[i] {
			*ev = i
			return nil
		}
	}
	return fmt.Errorf("cbnet: unknown connection rule: %q", s)
}

func (ev ConnRule) MarshalText() ([]byte, error)  { return []byte(ev.String()), nil }
func (ev *ConnRule) UnmarshalText(b []byte) error { return ev.FromString(string(b)) }

// PrjnSpec specifies a projection from a sending to a receiving population
type PrjnSpec struct {
	Send  PopKind  `desc:"sending population"`
	Recv  PopKind  `desc:"receiving population"`
	Wt    float64  `desc:"synaptic weight in mV: positive is excitatory, negative inhibitory"`
	Delay float64  `def:"1" desc:"transmission delay in msec -- not used by the steady-state rates"`
	Rule  ConnRule `desc:"connectivity rule"`
	K     int      `viewif:"Rule=FixedInDegree" desc:"number of inputs per receiver for FixedInDegree"`
	P     float64  `viewif:"Rule=PairwiseBernoulli" min:"0" max:"1" desc:"connection probability for PairwiseBernoulli"`
	Total int      `viewif:"Rule=FixedTotalNumber" desc:"total number of connections for FixedTotalNumber"`
	Space float64  `min:"0" desc:"length constant of the exponential distance decay of the weight in spatial mode -- 0 = no decay"`
}

// Key returns the table key for this projection
func (ps *PrjnSpec) Key() PrjnKey {
	return PrjnKey{Send: ps.Send, Recv: ps.Recv}
}

// Name returns a descriptive name, e.g., "GolgiToGranule"
func (ps *PrjnSpec) Name() string {
	return ps.Send.String() + "To" + ps.Recv.String()
}

// InDegree returns the expected number of inputs per receiving neuron,
// for given sending and receiving population sizes.
// PairwiseBernoulli is round(P * nSend), FixedTotalNumber is round(Total / nRecv),
// rounding half away from zero.
func (ps *PrjnSpec) InDegree(nSend, nRecv int) int {
	switch ps.Rule {
	case FixedInDegree:
		return ps.K
	case PairwiseBernoulli:
		return int(math.Round(ps.P * float64(nSend)))
	case FixedTotalNumber:
		if nRecv <= 0 {
			return 0
		}
		return int(math.Round(float64(ps.Total) / float64(nRecv)))
	case AllToAll:
		return nSend
	}
	return 0
}

// PrjnKey identifies a projection by its sending and receiving populations.
// There is at most one projection per pair.
type PrjnKey struct {
	Send, Recv PopKind
}

func (pk PrjnKey) String() string {
	return pk.Send.String() + "To" + pk.Recv.String()
}

// PrjnTable is the ordered set of projections of a network, keyed by
// sender and receiver.  Iteration is in the order projections were added,
// so sums over inputs are computed in a fixed order.
type PrjnTable struct {
	om *ordmap.Map[PrjnKey, PrjnSpec]
}

// NewPrjnTable returns an empty table
func NewPrjnTable() *PrjnTable {
	return &PrjnTable{om: ordmap.New[PrjnKey, PrjnSpec]()}
}

// Add adds the projection, replacing any existing one for the same pair
// in its original position.
func (pt *PrjnTable) Add(ps PrjnSpec) {
	pt.om.Add(ps.Key(), ps)
}

// Prjn returns the projection from send to recv, or ErrUndefinedProjection
func (pt *PrjnTable) Prjn(send, recv PopKind) (PrjnSpec, error) {
	ps, ok := pt.om.ValByKey(PrjnKey{Send: send, Recv: recv})
	if !ok {
		return ps, fmt.Errorf("%w: %v -> %v", ErrUndefinedProjection, send, recv)
	}
	return ps, nil
}

// Has returns true if there is a projection from send to recv
func (pt *PrjnTable) Has(send, recv PopKind) bool {
	_, ok := pt.om.ValByKey(PrjnKey{Send: send, Recv: recv})
	return ok
}

// Len returns the number of projections
func (pt *PrjnTable) Len() int {
	return pt.om.Len()
}

// Specs returns a copy of all projections in table order
func (pt *PrjnTable) Specs() []PrjnSpec {
	sp := make([]PrjnSpec, pt.om.Len())
	for i, kv := range pt.om.Order {
		sp[i] = kv.Val
	}
	return sp
}

// RecvPrjns returns the projections into recv, in table order
func (pt *PrjnTable) RecvPrjns(recv PopKind) []PrjnSpec {
	var sp []PrjnSpec
	for _, kv := range pt.om.Order {
		if kv.Key.Recv == recv {
			sp = append(sp, kv.Val)
		}
	}
	return sp
}

// Remove returns true if there was a projection from send to recv, which is removed.
// Remaining projections keep their order.
func (pt *PrjnTable) Remove(send, recv PopKind) bool {
	return pt.om.DeleteKey(PrjnKey{Send: send, Recv: recv})
}

// Clone returns an independent copy of the table
func (pt *PrjnTable) Clone() *PrjnTable {
	nt := NewPrjnTable()
	for _, kv := range pt.om.Order {
		nt.om.Add(kv.Key, kv.Val)
	}
	return nt
}
