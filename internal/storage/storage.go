// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of rtherm.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package storage provides the minimal opaque key/value capability the
// server persists through: its Stored[T]-wrapped Settings go through a
// Storage implementation rather than talking to a backend directly. The
// client's stash (internal/stash) is in-memory and does not use it.
package storage

import "context"

// Storage is the minimal persistence capability: load a named blob, or
// store one. Implementations: Mem (in-process only), File (one file per
// key) and SQL (a "name"/"value" table).
type Storage interface {
	// Load returns the bytes stored under name, or ok=false if name has
	// never been stored.
	Load(ctx context.Context, name string) (value []byte, ok bool, err error)
	// Store persists value under name, overwriting any previous value.
	Store(ctx context.Context, name string, value []byte) error
}
