package store

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/chronicle/internal/codec"
	"github.com/roach88/chronicle/internal/document"
	"github.com/roach88/chronicle/internal/schema"
	"github.com/roach88/chronicle/internal/vcs"
)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	backend, err := vcs.OpenMemory()
	require.NoError(t, err)
	return New(backend, opts...)
}

func doc(kv ...any) document.Object {
	obj := document.Object{}
	for i := 0; i+1 < len(kv); i += 2 {
		v, err := document.FromGo(kv[i+1])
		if err != nil {
			panic(err)
		}
		obj[kv[i].(string)] = v
	}
	return obj
}

func TestStore_CreateAndRead(t *testing.T) {
	s := newTestStore(t)

	rev, err := s.CreateRecord("users", "user1", doc("name", "Alice", "age", 30))
	require.NoError(t, err)
	assert.Len(t, rev, 40)

	got, err := s.ReadRecord("users", "user1")
	require.NoError(t, err)
	assert.True(t, document.Equal(doc("name", "Alice", "age", 30), got))
}

func TestStore_CreateDuplicateRejected(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateRecord("users", "user1", doc("name", "Alice"))
	require.NoError(t, err)
	headBefore, err := s.Head()
	require.NoError(t, err)

	_, err = s.CreateRecord("users", "user1", doc("name", "Mallory"))
	require.Error(t, err)
	assert.True(t, IsRecordExists(err), "expected RecordExistsError, got %v", err)

	// The failed call must not have produced a new revision.
	headAfter, err := s.Head()
	require.NoError(t, err)
	assert.Equal(t, headBefore, headAfter)

	got, err := s.ReadRecord("users", "user1")
	require.NoError(t, err)
	assert.True(t, document.Equal(doc("name", "Alice"), got), "original value must be untouched")
}

func TestStore_UpdateRequiresExistence(t *testing.T) {
	s := newTestStore(t)

	_, err := s.UpdateRecord("users", "ghost", doc("name", "Nobody"))
	require.Error(t, err)
	assert.True(t, IsRecordNotFound(err), "expected RecordNotFoundError, got %v", err)

	_, err = s.Head()
	assert.ErrorIs(t, err, vcs.ErrNoHistory, "failed update must not commit")
}

func TestStore_DeleteRequiresExistence(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateRecord("users", "user1", doc("name", "Alice"))
	require.NoError(t, err)
	headBefore, err := s.Head()
	require.NoError(t, err)

	_, err = s.DeleteRecord("users", "ghost")
	require.Error(t, err)
	assert.True(t, IsRecordNotFound(err))

	headAfter, err := s.Head()
	require.NoError(t, err)
	assert.Equal(t, headBefore, headAfter)
}

func TestStore_UpdateIsFullReplace(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateRecord("users", "user1", doc("name", "Alice", "age", 30))
	require.NoError(t, err)

	_, err = s.UpdateRecord("users", "user1", doc("age", 31))
	require.NoError(t, err)

	got, err := s.ReadRecord("users", "user1")
	require.NoError(t, err)
	assert.True(t, document.Equal(doc("age", 31), got), "update replaces the whole value, no merge")
}

func TestStore_DeleteLeavesNoTombstone(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateRecord("users", "user1", doc("name", "Alice"))
	require.NoError(t, err)
	_, err = s.DeleteRecord("users", "user1")
	require.NoError(t, err)

	_, err = s.ReadRecord("users", "user1")
	assert.True(t, IsRecordNotFound(err))

	ids, err := s.ListRecords("users")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestStore_OneMutationOneRevision(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateRecord("users", "a", doc("n", 1))
	require.NoError(t, err)
	_, err = s.CreateRecord("users", "b", doc("n", 2))
	require.NoError(t, err)
	_, err = s.UpdateRecord("users", "a", doc("n", 10))
	require.NoError(t, err)
	_, err = s.DeleteRecord("users", "b")
	require.NoError(t, err)

	revs, err := s.History("users")
	require.NoError(t, err)
	require.Len(t, revs, 4, "four mutations must yield exactly four revisions")

	assert.Equal(t, "delete b in users", revs[0].Message)
	assert.Equal(t, "update a in users", revs[1].Message)
	assert.Equal(t, "create b in users", revs[2].Message)
	assert.Equal(t, "create a in users", revs[3].Message)

	// Each revision's mapping differs from its parent by at most one key.
	want := [][]string{{"a"}, {"a", "b"}, {"a", "b"}, {"a"}}
	for i, rev := range revs {
		ids, err := s.ListRecordsAt("users", rev.ID)
		require.NoError(t, err)
		assert.Equal(t, want[len(want)-1-i], ids, "revision %s", rev.ID)
	}
}

func TestStore_TimeTravel(t *testing.T) {
	s := newTestStore(t)

	revAfterCreate, err := s.CreateRecord("users", "a", doc("v", 1))
	require.NoError(t, err)
	_, err = s.UpdateRecord("users", "a", doc("v", 2))
	require.NoError(t, err)

	old, err := s.ReadRecordAt("users", "a", revAfterCreate)
	require.NoError(t, err)
	assert.True(t, document.Equal(doc("v", 1), old))

	current, err := s.ReadRecord("users", "a")
	require.NoError(t, err)
	assert.True(t, document.Equal(doc("v", 2), current))
}

func TestStore_ListAtRevision(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateRecord("users", "a", doc("n", 1))
	require.NoError(t, err)
	revAfterBoth, err := s.CreateRecord("users", "b", doc("n", 2))
	require.NoError(t, err)
	_, err = s.DeleteRecord("users", "a")
	require.NoError(t, err)

	ids, err := s.ListRecords("users")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids)

	ids, err = s.ListRecordsAt("users", revAfterBoth)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestStore_UnknownTableReadsAsEmpty(t *testing.T) {
	s := newTestStore(t)

	ids, err := s.ListRecords("nothing")
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = s.ReadRecord("nothing", "x")
	assert.True(t, IsRecordNotFound(err))
}

func TestStore_ReadAt_Errors(t *testing.T) {
	s := newTestStore(t)

	rev1, err := s.CreateRecord("users", "a", doc("n", 1))
	require.NoError(t, err)
	_, err = s.CreateRecord("orders", "o1", doc("n", 1))
	require.NoError(t, err)

	_, err = s.ReadRecordAt("users", "a", "deadbeefdeadbeefdeadbeefdeadbeefdeadbeef")
	assert.True(t, vcs.IsRevisionNotFound(err), "expected RevisionNotFoundError, got %v", err)

	// The orders table did not exist at rev1.
	_, err = s.ReadRecordAt("orders", "o1", rev1)
	assert.True(t, vcs.IsTableNotFound(err), "expected TableNotFoundError, got %v", err)

	_, err = s.ListRecordsAt("orders", rev1)
	assert.True(t, vcs.IsTableNotFound(err))
}

// failingBackend wraps a real backend and fails every Commit.
type failingBackend struct {
	vcs.Backend
}

func (f *failingBackend) Commit(path string, data []byte, message string) (string, error) {
	return "", &vcs.BackendError{Op: "commit", Err: errors.New("disk full")}
}

func TestStore_IsolationUnderFailure(t *testing.T) {
	backend, err := vcs.OpenMemory()
	require.NoError(t, err)

	s := New(backend)
	_, err = s.CreateRecord("users", "a", doc("n", 1))
	require.NoError(t, err)

	idsBefore, err := s.ListRecords("users")
	require.NoError(t, err)
	valueBefore, err := s.ReadRecord("users", "a")
	require.NoError(t, err)

	// Same backend, but every commit fails.
	broken := New(&failingBackend{Backend: backend})

	_, err = broken.CreateRecord("users", "b", doc("n", 2))
	assert.True(t, vcs.IsBackend(err), "expected BackendError, got %v", err)
	_, err = broken.UpdateRecord("users", "a", doc("n", 99))
	assert.True(t, vcs.IsBackend(err))
	_, err = broken.DeleteRecord("users", "a")
	assert.True(t, vcs.IsBackend(err))

	idsAfter, err := s.ListRecords("users")
	require.NoError(t, err)
	assert.Equal(t, idsBefore, idsAfter, "failed mutations must leave listings unchanged")

	valueAfter, err := s.ReadRecord("users", "a")
	require.NoError(t, err)
	assert.True(t, document.Equal(valueBefore, valueAfter), "failed mutations must leave values unchanged")

	revs, err := s.History("users")
	require.NoError(t, err)
	assert.Len(t, revs, 1, "failed mutations must not append revisions")
}

func TestStore_MalformedTableSurfaces(t *testing.T) {
	backend, err := vcs.OpenMemory()
	require.NoError(t, err)

	// Corrupt the table file behind the store's back.
	_, err = backend.Commit("users.json", []byte("not json at all"), "corrupt")
	require.NoError(t, err)

	s := New(backend)
	_, err = s.ReadRecord("users", "a")
	require.Error(t, err)
	assert.True(t, codec.IsMalformedTable(err), "expected MalformedTableError, got %v", err)

	_, err = s.CreateRecord("users", "a", doc("n", 1))
	require.Error(t, err)
	assert.True(t, codec.IsMalformedTable(err), "mutations must refuse to clobber a malformed table")
}

func TestStore_SchemaValidation(t *testing.T) {
	sch, err := schema.Compile("users", `{name: string, age: int & >=0, ...}`)
	require.NoError(t, err)
	reg := schema.NewRegistry()
	reg.Register("users", sch)

	s := newTestStore(t, WithSchemas(reg))

	_, err = s.CreateRecord("users", "bad", doc("name", "Alice", "age", -5))
	require.Error(t, err)
	assert.True(t, schema.IsViolation(err), "expected ViolationError, got %v", err)

	_, err = s.Head()
	assert.ErrorIs(t, err, vcs.ErrNoHistory, "rejected document must not commit")

	_, err = s.CreateRecord("users", "good", doc("name", "Alice", "age", 30))
	require.NoError(t, err)

	// Unschema'd tables accept anything.
	_, err = s.CreateRecord("orders", "o1", doc("whatever", true))
	require.NoError(t, err)
}

// recordingObserver captures mutations; failing makes it error on every call.
type recordingObserver struct {
	mu        sync.Mutex
	mutations []Mutation
	failing   bool
}

func (r *recordingObserver) ObserveMutation(m Mutation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mutations = append(r.mutations, m)
	if r.failing {
		return errors.New("observer down")
	}
	return nil
}

func TestStore_ObserverNotified(t *testing.T) {
	obs := &recordingObserver{}
	s := newTestStore(t, WithObserver(obs))

	rev, err := s.CreateRecord("users", "a", doc("n", 1))
	require.NoError(t, err)
	_, err = s.DeleteRecord("users", "a")
	require.NoError(t, err)

	require.Len(t, obs.mutations, 2)
	assert.Equal(t, OpCreate, obs.mutations[0].Op)
	assert.Equal(t, "users", obs.mutations[0].Table)
	assert.Equal(t, "a", obs.mutations[0].Record)
	assert.Equal(t, rev, obs.mutations[0].Revision)
	assert.NotEmpty(t, obs.mutations[0].ValueHash)
	assert.Equal(t, OpDelete, obs.mutations[1].Op)
	assert.Empty(t, obs.mutations[1].ValueHash, "deletes carry no value hash")
}

func TestStore_ObserverFailureDoesNotFailMutation(t *testing.T) {
	obs := &recordingObserver{failing: true}
	s := newTestStore(t, WithObserver(obs))

	_, err := s.CreateRecord("users", "a", doc("n", 1))
	require.NoError(t, err, "observer errors are derived-data only")
}

func TestStore_InvalidNames(t *testing.T) {
	s := newTestStore(t)

	for _, table := range []string{"", "a/b", `a\b`, "..", "."} {
		_, err := s.CreateRecord(table, "id", doc("n", 1))
		assert.True(t, IsInvalidName(err), "table %q should be rejected", table)
	}

	_, err := s.CreateRecord("users", "", doc("n", 1))
	assert.True(t, IsInvalidName(err), "empty record id should be rejected")
}

func TestStore_YAMLCodec(t *testing.T) {
	s := newTestStore(t, WithCodec(codec.YAML{}))

	_, err := s.CreateRecord("users", "user1", doc("name", "Alice", "age", 30))
	require.NoError(t, err)

	got, err := s.ReadRecord("users", "user1")
	require.NoError(t, err)
	assert.True(t, document.Equal(doc("name", "Alice", "age", 30), got))

	revs, err := s.History("users")
	require.NoError(t, err)
	require.Len(t, revs, 1)
}

func TestStore_ConcurrentMutationsSerialize(t *testing.T) {
	s := newTestStore(t)

	const n = 10
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.CreateRecord("users", fmt.Sprintf("user%02d", i), doc("n", i))
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "create %d", i)
	}

	ids, err := s.ListRecords("users")
	require.NoError(t, err)
	assert.Len(t, ids, n)

	revs, err := s.History("users")
	require.NoError(t, err)
	assert.Len(t, revs, n, "each mutation must have produced its own revision")
}
