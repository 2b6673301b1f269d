// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of rtherm.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package storage

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
)

// SQL is a Storage backed by a table
// "Storage(name varchar primary key, value blob)". The table is created if
// it does not already exist; no migration tooling is used, matching the
// db recipient's idempotent create-if-not-exists convention.
type SQL struct {
	db      *sqlx.DB
	builder sq.StatementBuilderType
}

// NewSQL wraps db, creating the backing table if needed. placeholder
// selects the dialect's bind-variable style (sq.Question for sqlite/mysql,
// sq.Dollar for postgres).
func NewSQL(db *sqlx.DB, placeholder sq.PlaceholderFormat) (*SQL, error) {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS Storage (
		name  VARCHAR PRIMARY KEY,
		value BLOB
	)`); err != nil {
		return nil, err
	}
	return &SQL{db: db, builder: sq.StatementBuilder.PlaceholderFormat(placeholder)}, nil
}

func (s *SQL) Load(ctx context.Context, name string) ([]byte, bool, error) {
	query, args, err := s.builder.
		Select("name", "value").
		From("Storage").
		Where(sq.Eq{"name": name}).
		ToSql()
	if err != nil {
		return nil, false, err
	}

	var row struct {
		Name  string `db:"name"`
		Value []byte `db:"value"`
	}
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return row.Value, true, nil
}

func (s *SQL) Store(ctx context.Context, name string, value []byte) error {
	if _, ok, err := s.Load(ctx, name); err != nil {
		return err
	} else if ok {
		query, args, err := s.builder.
			Update("Storage").
			Set("value", value).
			Where(sq.Eq{"name": name}).
			ToSql()
		if err != nil {
			return err
		}
		_, err = s.db.ExecContext(ctx, query, args...)
		return err
	}

	query, args, err := s.builder.
		Insert("Storage").
		Columns("name", "value").
		Values(name, value).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		cclog.Errorf("[STORAGE]> inserting %q failed: %s", name, err.Error())
		return err
	}
	return nil
}
