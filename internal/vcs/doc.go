// Package vcs is the version-control backend behind the record store.
//
// The store engine consumes the narrow Backend interface: read the
// working copy of a table file, read it as of an arbitrary revision,
// commit a replacement as one new revision, and walk per-file history.
// All durability and history semantics live here; the engine never
// touches the repository directly.
//
// Git is the production implementation, built on go-git. Open operates
// on a plain on-disk repository (initializing one on first use, the way
// the store has always bootstrapped a fresh data directory); OpenMemory
// backs the same implementation with an in-memory repository and is
// what the test suites run against.
package vcs
