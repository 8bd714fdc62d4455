// Package testutil provides testing utilities for ixcoll.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded random generator, random mutation scripts and a
// reference model to check collections against.
//
// # Random Mutation Scripts
//
//	rng := testutil.NewRNG(seed)
//	for _, op := range rng.Script(testutil.DefaultScriptConfig()) {
//	    apply(c, op)
//	}
//
// # Reference Model
//
//	m := testutil.NewModel()
//	m.Apply(op)
//	ids := m.IDs() // expected order
package testutil
