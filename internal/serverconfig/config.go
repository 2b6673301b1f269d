// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of rtherm.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package serverconfig loads and validates the server's TOML config file,
// following the same BurntSushi/toml decode + embedded-JSON-Schema
// validation shape as internal/clientconfig.
package serverconfig

import (
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"net/url"

	"github.com/BurntSushi/toml"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*
var schemaFiles embed.FS

func load(s string) (io.ReadCloser, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, err
	}
	return schemaFiles.Open(u.Path)
}

func init() {
	jsonschema.Loaders["embedFS"] = load
}

// StorageKind names one of the three backends internal/storage offers.
type StorageKind string

const (
	StorageMem StorageKind = "mem"
	StorageFS  StorageKind = "fs"
	StorageDB  StorageKind = "db"
)

type HTTPConfig struct {
	Host   string `toml:"host" json:"host"`
	Port   int    `toml:"port" json:"port"`
	Prefix string `toml:"prefix" json:"prefix"`
}

type PostgresConfig struct {
	Host     string `toml:"host" json:"host"`
	User     string `toml:"user" json:"user"`
	Password string `toml:"password" json:"password"`
}

type SQLiteConfig struct {
	Path string `toml:"path" json:"path"`
}

type DBConfig struct {
	Postgres *PostgresConfig `toml:"postgres" json:"postgres,omitempty"`
	SQLite   *SQLiteConfig   `toml:"sqlite" json:"sqlite,omitempty"`
}

type StorageConfig struct {
	Type StorageKind `toml:"type" json:"type"`
	Path string      `toml:"path" json:"path"`
}

type TelegramConfig struct {
	Token string `toml:"token" json:"token"`
}

// Config is the decoded, validated form of the server's TOML config file.
type Config struct {
	HTTP     HTTPConfig      `toml:"http" json:"http"`
	DB       *DBConfig       `toml:"db" json:"db,omitempty"`
	Storage  StorageConfig   `toml:"storage" json:"storage"`
	Telegram *TelegramConfig `toml:"telegram" json:"telegram,omitempty"`
}

// Addr is the host:port pair http.ListenAndServe expects.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.HTTP.Host, c.HTTP.Port)
}

// Load reads, decodes and validates the TOML config file at path.
func Load(path string) (Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("serverconfig: decoding %q: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("serverconfig: %q: unknown key %q", path, undecoded[0])
	}

	if err := validate(cfg); err != nil {
		return Config{}, fmt.Errorf("serverconfig: validating %q: %w", path, err)
	}
	if cfg.Storage.Type == StorageFS && cfg.Storage.Path == "" {
		return Config{}, fmt.Errorf("serverconfig: %q: storage.path is required for storage.type = \"fs\"", path)
	}
	if cfg.Storage.Type == StorageDB && cfg.DB == nil {
		return Config{}, fmt.Errorf("serverconfig: %q: storage.type = \"db\" requires a [db] section", path)
	}
	return cfg, nil
}

func validate(cfg Config) error {
	s, err := jsonschema.Compile("embedFS://schemas/server.schema.json")
	if err != nil {
		return err
	}

	raw, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	return s.Validate(v)
}
