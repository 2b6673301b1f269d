// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of rtherm.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package provider implements the client's sensor sources: anything that
// can be asked to measure() and hand back a batch of points plus whatever
// errors it hit along the way. A Provider never aborts on a partial
// failure; individual sensor read failures are reported, not fatal.
package provider

import (
	"context"
	"sync"

	"github.com/ClusterCockpit/rtherm/pkg/model"
)

// Provider is anything that can be polled once for a batch of measurements.
// A Go interface already gives us the type erasure the original's boxed
// trait object needed, so there is no separate "AnyProvider" wrapper here.
type Provider interface {
	Measure(ctx context.Context) (model.Measurements, []error)
}

// Composite runs a fixed set of providers concurrently on every Measure
// call and merges their results. One provider's errors never suppress
// another's measurements.
type Composite []Provider

// Measure polls every child provider concurrently and returns the merged
// measurements together with the concatenation of all children's errors.
func (c Composite) Measure(ctx context.Context) (model.Measurements, []error) {
	results := make([]model.Measurements, len(c))
	errSets := make([][]error, len(c))

	var wg sync.WaitGroup
	wg.Add(len(c))
	for i, p := range c {
		go func(i int, p Provider) {
			defer wg.Done()
			results[i], errSets[i] = p.Measure(ctx)
		}(i, p)
	}
	wg.Wait()

	var errs []error
	for _, es := range errSets {
		errs = append(errs, es...)
	}
	return model.Merge(results...), errs
}
