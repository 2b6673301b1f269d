// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of rtherm.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package clientconfig loads and validates the client's TOML config file:
// BurntSushi/toml decodes it, then the decoded value is round-tripped
// through encoding/json and checked against an embedded JSON Schema
// document, mirroring the teacher's pkg/schema/validate.go embed.FS
// pattern.
package clientconfig

import (
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/ClusterCockpit/rtherm/internal/forwarder"
	"github.com/ClusterCockpit/rtherm/pkg/model"
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

// Config is the decoded, validated form of the client's TOML config file.
type Config struct {
	Prefix    string                `toml:"prefix" json:"prefix"`
	Server    string                `toml:"server" json:"server"`
	Period    float64               `toml:"period" json:"period"`
	Providers []model.ProviderKind  `toml:"providers" json:"providers"`
	NameMap   map[string]string     `toml:"name_map" json:"name_map,omitempty"`
}

// PeriodDuration converts the config's seconds-as-float period into a
// time.Duration for the producer ticker.
func (c Config) PeriodDuration() time.Duration {
	return time.Duration(c.Period * float64(time.Second))
}

// ForwarderConfig projects Config onto the renaming/transmission fields
// internal/forwarder.RunConsumer needs.
func (c Config) ForwarderConfig() forwarder.Config {
	return forwarder.Config{
		Prefix:  c.Prefix,
		NameMap: c.NameMap,
		Server:  c.Server,
	}
}

// Load reads, decodes and validates the TOML config file at path.
func Load(path string) (Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("clientconfig: decoding %q: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("clientconfig: %q: unknown key %q", path, undecoded[0])
	}

	if err := validate(cfg); err != nil {
		return Config{}, fmt.Errorf("clientconfig: validating %q: %w", path, err)
	}
	for _, p := range cfg.Providers {
		if !p.Valid() {
			return Config{}, fmt.Errorf("clientconfig: %q: unknown provider kind %q", path, p)
		}
	}
	return cfg, nil
}

func validate(cfg Config) error {
	s, err := jsonschema.Compile("embedFS://schemas/client.schema.json")
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
