// Package testutil provides testing utilities for cmem.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating reproducible float64 block data and
// for comparing decoded values against the originals.
//
// # Random Data Generation
//
//	rng := testutil.NewRNG(seed)
//	vals := make([]float64, 1024)
//	rng.FillUniform(vals)          // uniform [0, 1)
//	rng.FillGaussian(vals)         // standard normal
//	smooth := rng.Smooth(1024)     // slowly varying signal, compresses well
//	amps := rng.Amplitudes(1024)   // L2-normalized, like a state vector component
//
// # Error Measurement
//
//	maxErr := testutil.MaxAbsError(want, got)
package testutil
