// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of rtherm.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package serverconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMemStorageConfig(t *testing.T) {
	path := writeConfig(t, `
[http]
host = "0.0.0.0"
port = 8080
prefix = "/api"

[storage]
type = "mem"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, "/api", cfg.HTTP.Prefix)
	assert.Equal(t, StorageMem, cfg.Storage.Type)
	assert.Nil(t, cfg.Telegram)
}

func TestLoadFSStorageRequiresPath(t *testing.T) {
	path := writeConfig(t, `
[http]
host = "localhost"
port = 8080

[storage]
type = "fs"
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadDBStorageRequiresDBSection(t *testing.T) {
	path := writeConfig(t, `
[http]
host = "localhost"
port = 8080

[storage]
type = "db"
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadWithPostgresAndTelegram(t *testing.T) {
	path := writeConfig(t, `
[http]
host = "localhost"
port = 9000

[db.postgres]
host = "db.internal"
user = "rtherm"
password = "secret"

[storage]
type = "db"

[telegram]
token = "12345:abc"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.DB)
	require.NotNil(t, cfg.DB.Postgres)
	assert.Equal(t, "db.internal", cfg.DB.Postgres.Host)
	require.NotNil(t, cfg.Telegram)
	assert.Equal(t, "12345:abc", cfg.Telegram.Token)
}

func TestLoadRejectsInvalidStorageType(t *testing.T) {
	path := writeConfig(t, `
[http]
host = "localhost"
port = 8080

[storage]
type = "bogus"
`)

	_, err := Load(path)
	assert.Error(t, err)
}
