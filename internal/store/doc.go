// Package store implements the transactional record-store engine.
//
// A Store binds one version-control backend to one table codec. Each
// table is a single codec-serialized file mapping record id to
// document; every mutation runs one read-mutate-persist cycle and
// records exactly one new revision, so a table's history is the linear
// sequence of its whole-table snapshots.
//
// Concurrency model:
//   - All mutating operations (create, update, delete) hold the store's
//     write lock for the full load-mutate-commit cycle, serializing
//     them within the process.
//   - Reads and listings take no lock. They observe either the working
//     copy or an explicitly named committed revision; because the
//     backend's commit is atomic, a reader never sees a torn write.
//   - Cross-process locking is not provided. Two processes mutating the
//     same table can race; deployments that need multi-process safety
//     must wrap the mutating path in an external advisory lock.
//
// Constraint violations (RecordExistsError, RecordNotFoundError) and
// backend failures abort the call before or during the single commit
// step, leaving the working copy and the history unchanged.
package store
