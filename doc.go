// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package cbmf is the overall repository for the mean-field model of the
cerebellar cortex, which computes the steady-state firing rates of the
granule, Golgi, Purkinje and molecular layer interneuron populations as
the self-consistent fixed point of their Siegert transfer functions,
given the rates of the mossy and climbing fiber inputs.

This top-level of the repository has no functional code -- everything is organized
into the following sub-repositories:

* synin: Poisson synaptic input statistics (mean and variance of the summed input).

* siegert: the Siegert transfer function of the leaky integrate-and-fire neuron.

* cbnet: the cerebellar network description: populations, neuron parameters,
projections and their connection rules, with TOML loading and saving.

* lsq: a bounded Levenberg-Marquardt nonlinear least-squares solver.

* meanfield: the self-consistent rate model and fixed-point solve.

* scan: parallel (goroutine and MPI) scans over operating points, into an etable.

* examples/cbmf: the command-line program, configured through econfig.
*/
package cbmf
