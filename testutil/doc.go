// Package testutil provides testing utilities for pathfiles.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded random generator and helpers that materialize
// directory trees with known content.
//
// # Random Trees
//
//	rng := testutil.NewRNG(seed)
//	want := rng.Tree(t, t.TempDir(), testutil.TreeSpec{Depth: 2, Dirs: 3, Files: 5})
//	// want maps absolute path -> content
//
// # Single Files
//
//	testutil.WriteFile(t, filepath.Join(dir, "a.txt"), []byte("hello"))
package testutil
