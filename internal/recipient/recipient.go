// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of rtherm.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package recipient implements the server's fan-out sinks: anything that
// can be handed a batch of measurements via update() and report, but never
// propagate, per-item errors.
package recipient

import (
	"context"

	"github.com/ClusterCockpit/rtherm/pkg/model"
)

// Recipient is anything that consumes an ingested batch. As with Provider,
// a plain interface already gives us the type erasure the original's boxed
// trait object provided.
type Recipient interface {
	Update(ctx context.Context, meas model.Measurements) []error
}

// Composite fans a batch out to every child recipient in order, cloning
// the map per child so one recipient's in-place mutation (if any) cannot
// affect another. A misbehaving child never prevents the others from
// running: its errors are appended to the aggregate list and the loop
// continues.
type Composite []Recipient

func (c Composite) Update(ctx context.Context, meas model.Measurements) []error {
	var errs []error
	for _, r := range c {
		errs = append(errs, r.Update(ctx, meas.Clone())...)
	}
	return errs
}
