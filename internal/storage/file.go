// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of rtherm.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// File is a Storage backed by a directory, one file per key. Atomic
// replace-on-store semantics are not required by the Storage contract and
// are not provided here.
type File struct {
	dir string
}

// NewFile returns a File storage rooted at dir. dir must already exist.
func NewFile(dir string) (*File, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("storage: no such directory %q: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: %q is not a directory", dir)
	}
	return &File{dir: dir}, nil
}

func (f *File) Load(_ context.Context, name string) ([]byte, bool, error) {
	data, err := os.ReadFile(filepath.Join(f.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

func (f *File) Store(_ context.Context, name string, value []byte) error {
	return os.WriteFile(filepath.Join(f.dir, name), value, 0o644)
}
