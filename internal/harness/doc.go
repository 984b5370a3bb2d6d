// Package harness runs YAML-defined conformance scenarios against the
// record store.
//
// A scenario is a sequence of store operations with expected outcomes:
// expected error codes for rejected calls, expected values for reads,
// expected id sets for listings, and labeled revisions for
// point-in-time reads. Scenarios execute against an in-memory
// repository, so they are fast and hermetic.
//
// Each run produces a deterministic trace (revision hashes and
// timestamps are deliberately excluded), which can be compared against
// golden files with RunWithGolden:
//
//	go test ./internal/harness -update
//
// regenerates the golden files.
package harness
