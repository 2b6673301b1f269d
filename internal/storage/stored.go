// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of rtherm.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package storage

import (
	"context"
	"encoding/json"
	"runtime"
	"sync"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
)

// Stored wraps a value of type T that is durably persisted under a fixed
// name in a Storage backend. It is constructed by attempting to deserialize
// the existing value; a read or decode failure is logged, and on such a
// failure or a missing key the supplied default is kept instead.
//
// Reads go through Read, which holds the value under a read lock for the
// duration of the callback. Writes go through Write, whose guard must be
// released with Commit so the mutation is serialized and persisted before
// the lock is released; a caller that drops the guard without committing
// gets a best-effort synchronous persist and a warning log, not a silent
// loss of the write.
type Stored[T any] struct {
	mu      sync.RWMutex
	name    string
	backend Storage
	value   T
}

// LoadOrDefault constructs a Stored[T], attempting to load and
// JSON-decode the named value from backend. On any error it logs and keeps
// def.
func LoadOrDefault[T any](ctx context.Context, name string, backend Storage, def T) *Stored[T] {
	value := def
	data, ok, err := backend.Load(ctx, name)
	switch {
	case err != nil:
		cclog.Errorf("[STORAGE]> reading %q failed: %s", name, err.Error())
	case !ok:
		// no prior value: keep the default
	default:
		if err := json.Unmarshal(data, &value); err != nil {
			cclog.Errorf("[STORAGE]> decoding %q failed: %s", name, err.Error())
			value = def
		}
	}
	return &Stored[T]{name: name, backend: backend, value: value}
}

// dump serializes and persists the current value. Errors are logged, never
// returned: callers cannot act on a failed background persist.
func (s *Stored[T]) dump(ctx context.Context) {
	data, err := json.Marshal(s.value)
	if err != nil {
		cclog.Errorf("[STORAGE]> encoding %q failed: %s", s.name, err.Error())
		return
	}
	if err := s.backend.Store(ctx, s.name, data); err != nil {
		cclog.Errorf("[STORAGE]> writing %q failed: %s", s.name, err.Error())
	}
}

// Read calls fn with a read-only view of the current value, held under a
// read lock.
func (s *Stored[T]) Read(fn func(value *T)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&s.value)
}

// WriteGuard is the write-lock handle returned by Write. The caller must
// call Commit exactly once to release it; failing to do so is a programmer
// error that is logged and recovered from with a best-effort synchronous
// persist via a runtime finalizer.
type WriteGuard[T any] struct {
	stored    *Stored[T]
	committed bool
}

// Write acquires the write lock and returns a guard exposing the mutable
// value via Value(). The returned guard must be released with Commit.
func (s *Stored[T]) Write() *WriteGuard[T] {
	s.mu.Lock()
	g := &WriteGuard[T]{stored: s}
	runtime.SetFinalizer(g, func(g *WriteGuard[T]) {
		if !g.committed {
			cclog.Warn("[STORAGE]> write guard dropped without Commit; persisting best-effort")
			g.Commit(context.Background())
		}
	})
	return g
}

// Value returns a pointer to the mutable value for in-place edits.
func (g *WriteGuard[T]) Value() *T { return &g.stored.value }

// Commit persists the value and releases the write lock. It is safe to call
// at most once; subsequent calls are no-ops.
func (g *WriteGuard[T]) Commit(ctx context.Context) {
	if g.committed {
		return
	}
	g.committed = true
	g.stored.dump(ctx)
	g.stored.mu.Unlock()
	runtime.SetFinalizer(g, nil)
}
