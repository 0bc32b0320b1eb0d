// Package memory keeps the catalog and share ledger in process memory.
// It backs STORE_DRIVER=memory and the service tests.
package memory

import (
	"context"
	"maps"
	"sync"

	"filehub/internal/domain/models/catalog"
	"filehub/internal/domain/models/sharing"
)

type shareKey struct {
	ref        catalog.ItemRef
	sharedWith string
}

// state is everything a transaction may roll back.
type state struct {
	folders    map[int64]catalog.Folder
	files      map[int64]catalog.File
	shares     map[shareKey]sharing.SharedItem
	lastFolder int64
	lastFile   int64
	lastShare  int64
}

func newState() *state {
	return &state{
		folders: make(map[int64]catalog.Folder),
		files:   make(map[int64]catalog.File),
		shares:  make(map[shareKey]sharing.SharedItem),
	}
}

// clone copies the maps; values are structs whose pointer fields are never
// mutated in place.
func (s *state) clone() *state {
	return &state{
		folders:    maps.Clone(s.folders),
		files:      maps.Clone(s.files),
		shares:     maps.Clone(s.shares),
		lastFolder: s.lastFolder,
		lastFile:   s.lastFile,
		lastShare:  s.lastShare,
	}
}

// Store is a single in-memory database shared by the memory repositories.
type Store struct {
	mu    sync.RWMutex
	state *state
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{state: newState()}
}

type txKey struct{}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

// read runs fn against the current state. Inside ExecTx the write lock is
// already held.
func (s *Store) read(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if inTx(ctx) {
		return fn(s.state)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.state)
}

func (s *Store) write(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if inTx(ctx) {
		return fn(s.state)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state)
}
