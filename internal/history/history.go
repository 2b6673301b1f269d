// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of rtherm.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package history holds the server's in-memory, per-channel sliding window
// of points and the derived summary statistics over it. It is the bounded,
// monitoring-only counterpart to the database recipient's unbounded archive
// (see internal/recipient): entries are created on first sight of a channel
// and never evicted for the life of the process, but each channel's own
// window is trimmed by both count and age.
package history

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/ClusterCockpit/rtherm/pkg/model"
)

const (
	// MaxLen bounds the number of points kept per channel.
	MaxLen = 20000
	// MaxDuration bounds the age span kept per channel.
	MaxDuration = 24 * 60 * 60 // seconds
)

// ChannelHistory is a bounded, strictly time-increasing window of points for
// a single channel.
type ChannelHistory struct {
	window []model.Point
}

// Update merges new points into the window: the batch is sorted by time,
// then only points strictly newer than a running last (seeded from the
// window's current last point) are kept. Points that don't advance past
// the existing window are dropped, and of several batch points sharing a
// timestamp only the first in batch order is kept; points that are merely
// out of order within the batch are kept in sorted order. The window is
// then trimmed to MaxLen entries spanning at most MaxDuration seconds.
func (h *ChannelHistory) Update(points []model.Point) {
	if len(points) == 0 {
		return
	}

	sorted := make([]model.Point, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})

	var lastTime int64 = math.MinInt64
	if n := len(h.window); n > 0 {
		lastTime = h.window[n-1].Time.Unix()
	}

	fresh := make([]model.Point, 0, len(sorted))
	for _, p := range sorted {
		t := p.Time.Unix()
		if t <= lastTime {
			continue
		}
		fresh = append(fresh, p)
		lastTime = t
	}
	if len(fresh) == 0 {
		return
	}

	h.window = append(h.window, fresh...)
	h.trim()
}

// trim drops a prefix of the window so that it spans at most MaxDuration
// seconds ending at the last point, then drops further from the front until
// len(window) <= MaxLen.
func (h *ChannelHistory) trim() {
	if len(h.window) == 0 {
		return
	}
	cutoff := h.window[len(h.window)-1].Time.Unix() - MaxDuration

	start := 0
	for start < len(h.window) && h.window[start].Time.Unix() < cutoff {
		start++
	}
	if start > 0 {
		h.window = append([]model.Point(nil), h.window[start:]...)
	}

	if len(h.window) > MaxLen {
		h.window = append([]model.Point(nil), h.window[len(h.window)-MaxLen:]...)
	}
}

// Last returns the most recent point, if any.
func (h *ChannelHistory) Last() (model.Point, bool) {
	if len(h.window) == 0 {
		return model.Point{}, false
	}
	return h.window[len(h.window)-1], true
}

// Len reports the number of points currently retained.
func (h *ChannelHistory) Len() int { return len(h.window) }

// Statistics derives a ChannelStatistics snapshot from the current window.
func (h *ChannelHistory) Statistics() ChannelStatistics {
	stats := ChannelStatistics{
		Mean: math.NaN(),
		Min:  math.Inf(1),
		Max:  math.Inf(-1),
	}
	if len(h.window) == 0 {
		return stats
	}

	sum := 0.0
	min, max := math.Inf(1), math.Inf(-1)
	for _, p := range h.window {
		sum += p.Value
		min = math.Min(min, p.Value)
		max = math.Max(max, p.Value)
	}
	last := h.window[len(h.window)-1]
	stats.Last = &last
	stats.Mean = sum / float64(len(h.window))
	stats.Min = min
	stats.Max = max
	return stats
}

// ChannelStatistics is a derived, read-only snapshot of a ChannelHistory.
type ChannelStatistics struct {
	Last *model.Point `json:"last"`
	Mean float64      `json:"mean"`
	Min  float64      `json:"min"`
	Max  float64      `json:"max"`
}

// Digest renders a human-readable multi-line summary, used by the alert
// engine's "/digest <channel>" reply.
func (s ChannelStatistics) Digest() string {
	if s.Last == nil {
		return "last seen: never"
	}
	return fmt.Sprintf(
		"last seen: %s\nlast: %.1f\nmin: %.1f\nmax: %.1f\naverage: %.1f",
		s.Last.Time.Local().Format("02.01.2006 15:04:05"),
		s.Last.Value, s.Min, s.Max, s.Mean,
	)
}

// Statistics owns one ChannelHistory per channel ever observed by this
// process. It is safe for concurrent use.
type Statistics struct {
	mu       sync.Mutex
	channels map[model.ChannelId]*ChannelHistory
}

// NewStatistics returns an empty Statistics.
func NewStatistics() *Statistics {
	return &Statistics{channels: make(map[model.ChannelId]*ChannelHistory)}
}

// Update applies a batch to the statistics, creating per-channel history
// entries on first sight. Channels with an empty point list are skipped
// entirely rather than creating an empty entry: an empty ChannelHistory's
// Statistics() reports NaN/Inf, which would break JSON encoding of the
// whole summary on the next request.
func (s *Statistics) Update(meas model.Measurements) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, points := range meas {
		if len(points) == 0 {
			continue
		}
		ch, ok := s.channels[id]
		if !ok {
			ch = &ChannelHistory{}
			s.channels[id] = ch
		}
		ch.Update(points)
	}
}

// Summary returns a snapshot of ChannelStatistics for every known channel.
func (s *Statistics) Summary() map[model.ChannelId]ChannelStatistics {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[model.ChannelId]ChannelStatistics, len(s.channels))
	for id, ch := range s.channels {
		out[id] = ch.Statistics()
	}
	return out
}
