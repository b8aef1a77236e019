// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cbnet

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// PopFile is a population entry in a network file.
// Only the fields that are present override the defaults.
type PopFile struct {
	Kind   PopKind
	N      *int
	TauM   *float64
	EL     *float64
	Vth    *float64
	Vreset *float64
	Tref   *float64
}

// PrjnFile is a projection entry in a network file.  A projection not
// in the default table is added, starting from zero values.
type PrjnFile struct {
	Send   PopKind
	Recv   PopKind
	Remove bool
	Wt     *float64
	Delay  *float64
	Rule   *ConnRule
	K      *int
	P      *float64
	Total  *int
	Space  *float64
}

// NetFile is the layout of a TOML network file, e.g.:
//
//	Name = "test"
//	Spatial = true
//
//	[[Pops]]
//	Kind = "golgi"
//	TauM = 30
//
//	[[Prjns]]
//	Send = "granule"
//	Recv = "purkinje"
//	P = 0.4
//	Space = 2
type NetFile struct {
	Name    string
	Spatial *bool
	Pops    []PopFile
	Prjns   []PrjnFile
}

// Load loads the network from a TOML file, applying its entries on top of
// the defaults, and validates the result.
func Load(path string) (*Network, error) {
	var nf NetFile
	md, err := toml.DecodeFile(path, &nf)
	if err != nil {
		return nil, fmt.Errorf("cbnet: loading %s: %w", path, err)
	}
	if err := undecoded(md); err != nil {
		return nil, fmt.Errorf("cbnet: loading %s: %w", path, err)
	}
	return nf.Network()
}

// Decode reads the network in TOML format from r.  See Load.
func Decode(r io.Reader) (*Network, error) {
	var nf NetFile
	md, err := toml.NewDecoder(r).Decode(&nf)
	if err != nil {
		return nil, fmt.Errorf("cbnet: decoding: %w", err)
	}
	if err := undecoded(md); err != nil {
		return nil, fmt.Errorf("cbnet: decoding: %w", err)
	}
	return nf.Network()
}

// undecoded returns an error listing any keys that do not match a field,
// which are most likely misspelled parameters.
func undecoded(md toml.MetaData) error {
	ud := md.Undecoded()
	if len(ud) == 0 {
		return nil
	}
	keys := make([]string, len(ud))
	for i, k := range ud {
		keys[i] = k.String()
	}
	return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
}

// Network returns a validated network with the file entries applied to the defaults
func (nf *NetFile) Network() (*Network, error) {
	nt := NewNetwork()
	if err := nf.Apply(nt); err != nil {
		return nil, err
	}
	if err := nt.Validate(); err != nil {
		return nil, err
	}
	return nt, nil
}

// Apply applies the file entries to the network
func (nf *NetFile) Apply(nt *Network) error {
	if nf.Name != "" {
		nt.Name = nf.Name
	}
	if nf.Spatial != nil {
		nt.Spatial = *nf.Spatial
	}
	for _, pf := range nf.Pops {
		if pf.Kind < 0 || pf.Kind >= PopKindN {
			return fmt.Errorf("cbnet: invalid population: %v", pf.Kind)
		}
		pp := &nt.Pops[pf.Kind]
		setInt(&pp.N, pf.N)
		np := &pp.Neuron
		setFloat(&np.TauM, pf.TauM)
		setFloat(&np.EL, pf.EL)
		setFloat(&np.Vth, pf.Vth)
		setFloat(&np.Vreset, pf.Vreset)
		setFloat(&np.Tref, pf.Tref)
	}
	for _, jf := range nf.Prjns {
		if jf.Remove {
			nt.Prjns.Remove(jf.Send, jf.Recv)
			continue
		}
		ps, err := nt.Prjns.Prjn(jf.Send, jf.Recv)
		if err != nil {
			ps = PrjnSpec{Send: jf.Send, Recv: jf.Recv, Delay: 1}
		}
		setFloat(&ps.Wt, jf.Wt)
		setFloat(&ps.Delay, jf.Delay)
		if jf.Rule != nil {
			ps.Rule = *jf.Rule
		}
		setInt(&ps.K, jf.K)
		setFloat(&ps.P, jf.P)
		setInt(&ps.Total, jf.Total)
		setFloat(&ps.Space, jf.Space)
		nt.Prjns.Add(ps)
	}
	return nil
}

// Save writes the complete network to a TOML file
func (nt *Network) Save(path string) error {
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fp.Close()
	return nt.Encode(fp)
}

// Encode writes the complete network in TOML format, in the NetFile layout,
// so that Decode of the output reproduces the network.
func (nt *Network) Encode(w io.Writer) error {
	nf := NetFile{Name: nt.Name, Spatial: &nt.Spatial}
	for k := PopKind(0); k < PopKindN; k++ {
		pp := &nt.Pops[k]
		pf := PopFile{Kind: k, N: &pp.N}
		if !k.IsFiber() {
			np := &pp.Neuron
			pf.TauM, pf.EL, pf.Vth, pf.Vreset, pf.Tref = &np.TauM, &np.EL, &np.Vth, &np.Vreset, &np.Tref
		}
		nf.Pops = append(nf.Pops, pf)
	}
	for _, ps := range DefaultPrjns() {
		if !nt.Prjns.Has(ps.Send, ps.Recv) {
			nf.Prjns = append(nf.Prjns, PrjnFile{Send: ps.Send, Recv: ps.Recv, Remove: true})
		}
	}
	for _, ps := range nt.Prjns.Specs() {
		ps := ps
		nf.Prjns = append(nf.Prjns, PrjnFile{Send: ps.Send, Recv: ps.Recv, Wt: &ps.Wt, Delay: &ps.Delay, Rule: &ps.Rule, K: &ps.K, P: &ps.P, Total: &ps.Total, Space: &ps.Space})
	}
	return toml.NewEncoder(w).Encode(nf)
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
