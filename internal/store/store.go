package store

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/roach88/chronicle/internal/codec"
	"github.com/roach88/chronicle/internal/document"
	"github.com/roach88/chronicle/internal/schema"
	"github.com/roach88/chronicle/internal/vcs"
)

// Op identifies the kind of a mutation.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Mutation describes one committed change, as delivered to observers.
type Mutation struct {
	Op       Op
	Table    string
	Record   string
	Revision string // the new revision's ID
	Message  string // the revision's commit message
	// ValueHash is the content hash of the record's new document
	// (empty for deletes).
	ValueHash string
	Time      time.Time
}

// Observer receives committed mutations. Observers maintain derived
// data only: an observer error is logged and never fails the mutation,
// and the git history remains the single source of truth.
type Observer interface {
	ObserveMutation(m Mutation) error
}

// Store is the record store engine. One Store is bound to one backend
// and one codec; construct it once and pass it by reference.
type Store struct {
	backend   vcs.Backend
	codec     codec.Codec
	schemas   *schema.Registry
	observers []Observer
	logger    *slog.Logger

	// mu serializes mutating operations for the full
	// load-mutate-commit cycle. Reads do not take it.
	mu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithCodec sets the table codec. Default is codec.JSON.
func WithCodec(c codec.Codec) Option {
	return func(s *Store) {
		s.codec = c
	}
}

// WithSchemas sets the schema registry consulted on create and update.
// Tables without a registered schema accept any document.
func WithSchemas(r *schema.Registry) Option {
	return func(s *Store) {
		s.schemas = r
	}
}

// WithObserver appends an observer notified after each committed
// mutation.
func WithObserver(o Observer) Option {
	return func(s *Store) {
		s.observers = append(s.observers, o)
	}
}

// WithLogger sets the logger. Default discards all output.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// New creates a Store over the given backend.
func New(backend vcs.Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		codec:   codec.JSON{},
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateRecord adds a new record to a table and commits one revision.
// Fails with RecordExistsError if the id is already present; the first
// record of an unknown table creates the table file.
func (s *Store) CreateRecord(table, id string, doc document.Value) (string, error) {
	if err := checkNames(table, id); err != nil {
		return "", err
	}
	doc = normalize(doc)
	if err := s.checkSchema(table, doc); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	mapping, err := s.loadWorking(table)
	if err != nil {
		return "", err
	}
	if _, exists := mapping[id]; exists {
		return "", &RecordExistsError{Table: table, Record: id}
	}

	mapping[id] = doc
	return s.commit(OpCreate, table, id, doc, mapping)
}

// ReadRecord returns a record's current document.
// Fails with RecordNotFoundError if the id is absent.
func (s *Store) ReadRecord(table, id string) (document.Value, error) {
	return s.ReadRecordAt(table, id, "")
}

// ReadRecordAt returns a record's document as committed at a revision.
// An empty revision reads the working copy. The result is exactly the
// mapping committed at that revision; later or in-flight mutations are
// never reflected.
func (s *Store) ReadRecordAt(table, id, revision string) (document.Value, error) {
	if err := checkNames(table, id); err != nil {
		return nil, err
	}

	mapping, err := s.load(table, revision)
	if err != nil {
		return nil, err
	}

	doc, ok := mapping[id]
	if !ok {
		return nil, &RecordNotFoundError{Table: table, Record: id, Revision: revision}
	}
	return doc, nil
}

// UpdateRecord replaces a record's document in full (no merge) and
// commits one revision. Fails with RecordNotFoundError if the id is
// absent.
func (s *Store) UpdateRecord(table, id string, doc document.Value) (string, error) {
	if err := checkNames(table, id); err != nil {
		return "", err
	}
	doc = normalize(doc)
	if err := s.checkSchema(table, doc); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	mapping, err := s.loadWorking(table)
	if err != nil {
		return "", err
	}
	if _, exists := mapping[id]; !exists {
		return "", &RecordNotFoundError{Table: table, Record: id}
	}

	mapping[id] = doc
	return s.commit(OpUpdate, table, id, doc, mapping)
}

// DeleteRecord removes a record and commits one revision. The record
// leaves no tombstone; it remains recoverable only through history.
// Fails with RecordNotFoundError if the id is absent.
func (s *Store) DeleteRecord(table, id string) (string, error) {
	if err := checkNames(table, id); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	mapping, err := s.loadWorking(table)
	if err != nil {
		return "", err
	}
	if _, exists := mapping[id]; !exists {
		return "", &RecordNotFoundError{Table: table, Record: id}
	}

	delete(mapping, id)
	return s.commit(OpDelete, table, id, nil, mapping)
}

// ListRecords returns the sorted record ids currently in a table.
// An unknown table lists as empty.
func (s *Store) ListRecords(table string) ([]string, error) {
	return s.ListRecordsAt(table, "")
}

// ListRecordsAt returns the sorted record ids in a table as committed
// at a revision. An empty revision reads the working copy.
func (s *Store) ListRecordsAt(table, revision string) ([]string, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}

	mapping, err := s.load(table, revision)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(mapping))
	for id := range mapping {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// History returns the revisions that touched a table, newest first.
func (s *Store) History(table string) ([]vcs.Revision, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	return s.backend.Log(s.tablePath(table))
}

// Head returns the current head revision ID.
// Returns vcs.ErrNoHistory when nothing has been committed yet.
func (s *Store) Head() (string, error) {
	return s.backend.Head()
}

// tablePath maps a table name to its file in the backend's tree.
// The codec name is the extension, so "users" under the JSON codec is
// the file "users.json".
func (s *Store) tablePath(table string) string {
	return table + "." + s.codec.Name()
}

// load returns a table's mapping at a revision; empty revision means
// the working copy.
func (s *Store) load(table, revision string) (document.Object, error) {
	if revision == "" {
		return s.loadWorking(table)
	}

	raw, err := s.backend.ReadAt(s.tablePath(table), revision)
	if err != nil {
		return nil, err
	}
	return s.codec.Decode(raw)
}

// loadWorking returns the working-copy mapping. A table file that does
// not exist yet decodes as an empty mapping, which is what lets the
// first create of a table succeed and lets reads of unknown tables
// report record-not-found rather than erroring on the table.
func (s *Store) loadWorking(table string) (document.Object, error) {
	raw, err := s.backend.ReadWorking(s.tablePath(table))
	if err != nil {
		if vcs.IsTableNotFound(err) {
			return document.Object{}, nil
		}
		return nil, err
	}
	return s.codec.Decode(raw)
}

// commit persists the mutated mapping as exactly one new revision and
// notifies observers. Called with the write lock held.
func (s *Store) commit(op Op, table, id string, doc document.Value, mapping document.Object) (string, error) {
	data, err := s.codec.Encode(mapping)
	if err != nil {
		return "", err
	}

	message := fmt.Sprintf("%s %s in %s", op, id, table)
	rev, err := s.backend.Commit(s.tablePath(table), data, message)
	if err != nil {
		return "", err
	}

	s.logger.Debug("committed mutation",
		"op", string(op), "table", table, "record", id, "revision", rev)

	s.notify(Mutation{
		Op:        op,
		Table:     table,
		Record:    id,
		Revision:  rev,
		Message:   message,
		ValueHash: s.valueHash(doc),
		Time:      time.Now(),
	})
	return rev, nil
}

func (s *Store) notify(m Mutation) {
	for _, o := range s.observers {
		if err := o.ObserveMutation(m); err != nil {
			s.logger.Warn("mutation observer failed",
				"op", string(m.Op), "table", m.Table, "record", m.Record, "error", err)
		}
	}
}

func (s *Store) valueHash(doc document.Value) string {
	if doc == nil {
		return ""
	}
	h, err := document.HashValue(document.DomainRecord, doc)
	if err != nil {
		s.logger.Warn("value hash failed", "error", err)
		return ""
	}
	return h
}

func (s *Store) checkSchema(table string, doc document.Value) error {
	sch, ok := s.schemas.Lookup(table)
	if !ok {
		return nil
	}
	return sch.Validate(doc)
}

// normalize maps a nil document to an explicit Null so the codec and
// schema layers only ever see concrete variants.
func normalize(doc document.Value) document.Value {
	if doc == nil {
		return document.Null{}
	}
	return doc
}

func checkNames(table, id string) error {
	if err := checkTable(table); err != nil {
		return err
	}
	if id == "" {
		return &InvalidNameError{Kind: "record", Name: id, Reason: "must not be empty"}
	}
	return nil
}

func checkTable(table string) error {
	switch {
	case table == "":
		return &InvalidNameError{Kind: "table", Name: table, Reason: "must not be empty"}
	case strings.ContainsAny(table, `/\`):
		return &InvalidNameError{Kind: "table", Name: table, Reason: "must not contain path separators"}
	case table == "." || table == "..":
		return &InvalidNameError{Kind: "table", Name: table, Reason: "must not be a path traversal"}
	}
	return nil
}
