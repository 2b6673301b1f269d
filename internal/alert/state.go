// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of rtherm.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package alert

import (
	"sync"
	"time"

	"github.com/ClusterCockpit/rtherm/internal/history"
	"github.com/ClusterCockpit/rtherm/pkg/model"
)

// ChannelState is the engine's runtime view of one channel: its bounded
// history, when it was last updated, and whether the monitor currently
// considers it online. Unlike Settings, this is never persisted; it is
// rebuilt from scratch as batches arrive after a restart.
type ChannelState struct {
	Values     history.ChannelHistory
	LastUpdate time.Time
	Online     bool
}

// state is the engine's in-memory map of channel id to ChannelState,
// guarded by its own read/write lock. Per the concurrency model, whenever
// both state and Settings are needed, state is locked first.
type state struct {
	mu       sync.RWMutex
	channels map[model.ChannelId]*ChannelState
}

func newState() *state {
	return &state{channels: make(map[model.ChannelId]*ChannelState)}
}

// entry returns the ChannelState for id, creating it on first sight.
// Callers must hold the write lock.
func (s *state) entry(id model.ChannelId) *ChannelState {
	cs, ok := s.channels[id]
	if !ok {
		cs = &ChannelState{}
		s.channels[id] = cs
	}
	return cs
}
