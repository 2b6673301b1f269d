// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of rtherm.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package provider

import (
	"context"
	"math"
	"time"

	"github.com/ClusterCockpit/rtherm/pkg/model"
)

// Dummy synthesizes a single sinusoidal channel, for testing deployments
// without real sensor hardware attached.
type Dummy struct {
	Name   model.ChannelId
	Offset float64
	Mag    float64
	Period time.Duration
	Start  time.Time
}

// NewDummy returns a Dummy with the spec's default waveform (offset 40,
// magnitude 20, period 60s), starting now.
func NewDummy(name model.ChannelId) Dummy {
	return Dummy{
		Name:   name,
		Offset: 40.0,
		Mag:    20.0,
		Period: 60 * time.Second,
		Start:  time.Now(),
	}
}

// Measure never fails; it reports one point following
// offset + mag*sin(pi*elapsed/period).
func (d Dummy) Measure(_ context.Context) (model.Measurements, []error) {
	now := time.Now()
	elapsed := now.Sub(d.Start).Seconds()
	value := d.Mag*math.Sin(math.Pi*elapsed/d.Period.Seconds()) + d.Offset

	return model.Measurements{
		d.Name: []model.Point{{Value: value, Time: now}},
	}, nil
}
