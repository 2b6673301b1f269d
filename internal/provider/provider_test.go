// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of rtherm.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ClusterCockpit/rtherm/pkg/model"
)

type fakeProvider struct {
	meas model.Measurements
	errs []error
}

func (f fakeProvider) Measure(_ context.Context) (model.Measurements, []error) {
	return f.meas, f.errs
}

func TestDummyMeasureProducesOnePoint(t *testing.T) {
	d := NewDummy(model.MustChannelId("dummy"))
	meas, errs := d.Measure(context.Background())

	assert.Empty(t, errs)
	require.Contains(t, meas, model.ChannelId("dummy"))
	assert.Len(t, meas[model.ChannelId("dummy")], 1)

	value := meas[model.ChannelId("dummy")][0].Value
	assert.GreaterOrEqual(t, value, d.Offset-d.Mag)
	assert.LessOrEqual(t, value, d.Offset+d.Mag)
}

func TestCompositeMergesResultsAndErrors(t *testing.T) {
	p1 := fakeProvider{
		meas: model.Measurements{"a": []model.Point{{Value: 1}}},
	}
	p2 := fakeProvider{
		meas: model.Measurements{"b": []model.Point{{Value: 2}}},
		errs: []error{errors.New("sensor offline")},
	}

	c := Composite{p1, p2}
	meas, errs := c.Measure(context.Background())

	assert.Contains(t, meas, model.ChannelId("a"))
	assert.Contains(t, meas, model.ChannelId("b"))
	require.Len(t, errs, 1)
	assert.EqualError(t, errs[0], "sensor offline")
}

func TestCompositeEmptyYieldsEmptyMeasurements(t *testing.T) {
	c := Composite{}
	meas, errs := c.Measure(context.Background())
	assert.Empty(t, meas)
	assert.Empty(t, errs)
}
