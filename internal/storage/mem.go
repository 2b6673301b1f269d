// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of rtherm.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package storage

import (
	"context"
	"sync"
)

// Mem is a non-persistent, in-process Storage backed by a map. It exists
// for tests and for configurations that accept memory-only retention.
type Mem struct {
	mu     sync.Mutex
	values map[string][]byte
}

// NewMem returns an empty Mem storage.
func NewMem() *Mem {
	return &Mem{values: make(map[string][]byte)}
}

func (m *Mem) Load(_ context.Context, name string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[name]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, true, nil
}

func (m *Mem) Store(_ context.Context, name string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	m.values[name] = cp
	return nil
}
