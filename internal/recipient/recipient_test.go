// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of rtherm.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package recipient

import (
	"context"
	"errors"
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ClusterCockpit/rtherm/pkg/model"
)

type fakeRecipient struct {
	errs []error
	n    int
}

func (f *fakeRecipient) Update(_ context.Context, meas model.Measurements) []error {
	f.n++
	return f.errs
}

func TestCompositeRunsAllChildrenDespiteErrors(t *testing.T) {
	a := &fakeRecipient{errs: []error{errors.New("boom")}}
	b := &fakeRecipient{}

	c := Composite{a, b}
	errs := c.Update(context.Background(), model.Measurements{"x": []model.Point{{Value: 1}}})

	assert.Equal(t, 1, a.n)
	assert.Equal(t, 1, b.n)
	require.Len(t, errs, 1)
}

func TestDBRecipientInsertsOneRowPerPoint(t *testing.T) {
	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	rec, err := NewDB(db, sq.Question)
	require.NoError(t, err)

	meas := model.Measurements{
		model.MustChannelId("temp0"): {
			{Value: 1.0, Time: time.Unix(1, 0)},
			{Value: 2.0, Time: time.Unix(2, 0)},
		},
	}

	errs := rec.Update(context.Background(), meas)
	assert.Empty(t, errs)

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM Measurements"))
	assert.Equal(t, 2, count)
}

func TestDBRecipientIsIdempotentOnSecondConstruction(t *testing.T) {
	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, err = NewDB(db, sq.Question)
	require.NoError(t, err)
	_, err = NewDB(db, sq.Question)
	require.NoError(t, err)
}
