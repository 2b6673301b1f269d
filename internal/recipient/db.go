// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of rtherm.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package recipient

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/ClusterCockpit/rtherm/pkg/model"
)

// DB is the archival Recipient: it INSERTs one row per point into a
// "Measurements(channel_id, value, time)" table on every update. It is the
// system's only long-term store; the in-memory history is for monitoring,
// not archival.
type DB struct {
	db      *sqlx.DB
	builder sq.StatementBuilderType
}

// NewDB wraps db, creating the backing table if it does not already exist.
// placeholder selects the dialect's bind-variable style.
func NewDB(db *sqlx.DB, placeholder sq.PlaceholderFormat) (*DB, error) {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS Measurements (
		channel_id VARCHAR,
		value      DOUBLE PRECISION,
		time       TIMESTAMP
	)`); err != nil {
		return nil, err
	}
	return &DB{db: db, builder: sq.StatementBuilder.PlaceholderFormat(placeholder)}, nil
}

// Update inserts one row per point across all channels in meas. A failed
// insert is appended to the returned error list and does not stop the
// remaining inserts.
func (d *DB) Update(ctx context.Context, meas model.Measurements) []error {
	var errs []error
	for id, points := range meas {
		for _, p := range points {
			query, args, err := d.builder.
				Insert("Measurements").
				Columns("channel_id", "value", "time").
				Values(id.String(), p.Value, p.Time).
				ToSql()
			if err != nil {
				errs = append(errs, fmt.Errorf("recipient: building insert for %q: %w", id, err))
				continue
			}
			if _, err := d.db.ExecContext(ctx, query, args...); err != nil {
				errs = append(errs, fmt.Errorf("recipient: inserting %q: %w", id, err))
			}
		}
	}
	return errs
}
