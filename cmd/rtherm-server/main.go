// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of rtherm.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/gops/agent"
	"github.com/jmoiron/sqlx"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ClusterCockpit/rtherm/internal/alert"
	"github.com/ClusterCockpit/rtherm/internal/history"
	"github.com/ClusterCockpit/rtherm/internal/httpapi"
	"github.com/ClusterCockpit/rtherm/internal/recipient"
	"github.com/ClusterCockpit/rtherm/internal/serverconfig"
	"github.com/ClusterCockpit/rtherm/internal/storage"
)

// openSQL connects to the dialect cfg.DB names, preferring postgres when
// both sections are present.
func openSQL(cfg serverconfig.Config) (*sqlx.DB, sq.PlaceholderFormat, error) {
	switch {
	case cfg.DB.Postgres != nil:
		dsn := fmt.Sprintf("host=%s user=%s password=%s sslmode=disable",
			cfg.DB.Postgres.Host, cfg.DB.Postgres.User, cfg.DB.Postgres.Password)
		db, err := sqlx.Open("postgres", dsn)
		return db, sq.Dollar, err
	case cfg.DB.SQLite != nil:
		db, err := sqlx.Open("sqlite3", cfg.DB.SQLite.Path)
		return db, sq.Question, err
	default:
		return nil, nil, fmt.Errorf("[db] section has neither postgres nor sqlite configured")
	}
}

func buildStorage(cfg serverconfig.Config) (storage.Storage, error) {
	switch cfg.Storage.Type {
	case serverconfig.StorageMem:
		return storage.NewMem(), nil
	case serverconfig.StorageFS:
		return storage.NewFile(cfg.Storage.Path)
	case serverconfig.StorageDB:
		db, placeholder, err := openSQL(cfg)
		if err != nil {
			return nil, err
		}
		return storage.NewSQL(db, placeholder)
	default:
		return nil, fmt.Errorf("unknown storage.type %q", cfg.Storage.Type)
	}
}

func buildRecipients(ctx context.Context, cfg serverconfig.Config, backend storage.Storage) recipient.Composite {
	var composite recipient.Composite

	if cfg.DB != nil {
		db, placeholder, err := openSQL(cfg)
		if err != nil {
			cclog.Errorf("[MAIN]> not wiring db recipient: %s", err.Error())
		} else if dbRecipient, err := recipient.NewDB(db, placeholder); err != nil {
			cclog.Errorf("[MAIN]> creating db recipient: %s", err.Error())
		} else {
			composite = append(composite, dbRecipient)
			cclog.Info("[RECIPIENT]> db recipient created")
		}
	}

	if cfg.Telegram != nil && cfg.Telegram.Token != "" {
		engine, err := alert.NewEngine(ctx, backend, cfg.Telegram.Token)
		if err != nil {
			cclog.Errorf("[MAIN]> creating alert engine: %s", err.Error())
		} else {
			composite = append(composite, engine)
			go engine.RunPoll(ctx)
			go func() {
				if err := engine.RunMonitor(ctx); err != nil {
					cclog.Errorf("[ALERT]> monitor loop exited: %s", err.Error())
				}
			}()
			cclog.Info("[RECIPIENT]> alert engine created")
		}
	}

	return composite
}

func main() {
	var flagGops bool
	flag.BoolVar(&flagGops, "gops", false, "Listen via github.com/google/gops/agent (for debugging)")
	flag.Parse()

	configPath := flag.Arg(0)
	if configPath == "" {
		cclog.Abortf("[MAIN]> path to config file must be given as the sole positional argument")
	}

	if flagGops {
		if err := agent.Listen(agent.Options{}); err != nil {
			cclog.Fatalf("gops/agent.Listen failed: %s", err.Error())
		}
	}

	cfg, err := serverconfig.Load(configPath)
	if err != nil {
		cclog.Abortf("[MAIN]> %s", err.Error())
	}

	backend, err := buildStorage(cfg)
	if err != nil {
		cclog.Abortf("[MAIN]> setting up storage: %s", err.Error())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		cclog.Info("[MAIN]> shutdown signal received")
		cancel()
	}()

	recipients := buildRecipients(ctx, cfg, backend)
	stats := history.NewStatistics()
	api := httpapi.New(stats, recipients)

	server := &http.Server{
		Addr:    cfg.Addr(),
		Handler: api.Router(cfg.HTTP.Prefix),
	}

	go func() {
		<-ctx.Done()
		_ = server.Shutdown(context.Background())
	}()

	cclog.Infof("[MAIN]> listening on %s", cfg.Addr())
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		cclog.Fatalf("[MAIN]> server error: %s", err.Error())
	}
}
