// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of rtherm.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package stash implements the client's local buffer of batches that have
// not yet been acknowledged by the server. It obeys one law regardless of
// backing implementation: store merges, remove takes-and-clears.
package stash

import (
	"sync"

	"github.com/ClusterCockpit/rtherm/pkg/model"
)

// Stash accumulates measurement batches in memory until a Guard's Remove
// clears them out, typically once the server has acknowledged delivery.
type Stash struct {
	mu           sync.Mutex
	measurements model.Measurements
}

// New returns an empty Stash.
func New() *Stash {
	return &Stash{measurements: make(model.Measurements)}
}

// Store merges batch into the accumulated measurements, concatenating point
// lists per channel on collision. The in-memory implementation never fails;
// the error return exists for future persistent backings, per the
// merge-on-store, take-on-remove law this type commits to.
func (s *Stash) Store(batch model.Measurements) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.measurements = model.Merge(s.measurements, batch)
	return nil
}

// Load returns a Guard over the currently accumulated measurements.
func (s *Stash) Load() (*Guard, error) {
	return &Guard{stash: s}, nil
}

// Guard gives read access to the stash's accumulated measurements and the
// ability to atomically take and clear them.
type Guard struct {
	stash *Stash
}

// Measurements returns the stash's currently accumulated batch.
func (g *Guard) Measurements() model.Measurements {
	g.stash.mu.Lock()
	defer g.stash.mu.Unlock()
	return g.stash.measurements
}

// Remove atomically takes the accumulated measurements out of the stash,
// emptying it, and returns what was taken.
func (g *Guard) Remove() model.Measurements {
	g.stash.mu.Lock()
	defer g.stash.mu.Unlock()
	taken := g.stash.measurements
	g.stash.measurements = make(model.Measurements)
	return taken
}
