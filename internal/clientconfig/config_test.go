// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of rtherm.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package clientconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ClusterCockpit/rtherm/pkg/model"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "client.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, `
prefix = "lab."
server = "http://localhost:8080"
period = 5.0
providers = ["w1_therm", "dummy"]

[name_map]
probe = "kitchen"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "lab.", cfg.Prefix)
	assert.Equal(t, "http://localhost:8080", cfg.Server)
	assert.Equal(t, []model.ProviderKind{model.ProviderW1Therm, model.ProviderDummy}, cfg.Providers)
	assert.Equal(t, "kitchen", cfg.NameMap["probe"])
	assert.Equal(t, 5*time.Second, cfg.PeriodDuration())
}

func TestLoadRejectsMissingServer(t *testing.T) {
	path := writeConfig(t, `
period = 5.0
providers = ["dummy"]
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsUnknownProviderKind(t *testing.T) {
	path := writeConfig(t, `
server = "http://localhost:8080"
period = 5.0
providers = ["bogus"]
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsUnknownField(t *testing.T) {
	path := writeConfig(t, `
server = "http://localhost:8080"
period = 5.0
providers = ["dummy"]
extra_field = true
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestForwarderConfigProjection(t *testing.T) {
	path := writeConfig(t, `
prefix = "p."
server = "http://x"
period = 1.0
providers = ["dummy"]

[name_map]
a = "b"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	fc := cfg.ForwarderConfig()
	assert.Equal(t, "p.", fc.Prefix)
	assert.Equal(t, "http://x", fc.Server)
	assert.Equal(t, "b", fc.NameMap["a"])
}
