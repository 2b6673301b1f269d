// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of rtherm.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package model holds the wire data types shared by the rtherm client and
// server: channel identifiers, timestamped points, measurement batches,
// provider kinds and the JSON request body posted to the "/provide"
// endpoint. The "/summary" response type lives in internal/history.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ChannelId names a single scalar telemetry channel. It is restricted to
// [0-9A-Za-z_] so it can be used unescaped as a chat command argument, a SQL
// column value and a storage key component.
type ChannelId string

// ErrInvalidFormat is returned by NewChannelId when the candidate string
// contains characters outside [0-9A-Za-z_] or is empty.
var ErrInvalidFormat = errors.New("invalid channel id format")

// NewChannelId validates s and returns it as a ChannelId.
func NewChannelId(s string) (ChannelId, error) {
	if len(s) == 0 {
		return "", fmt.Errorf("%w: empty", ErrInvalidFormat)
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'A' && r <= 'Z':
		case r >= 'a' && r <= 'z':
		case r == '_':
		default:
			return "", fmt.Errorf("%w: %q contains %q", ErrInvalidFormat, s, r)
		}
	}
	return ChannelId(s), nil
}

// MustChannelId panics if s is not a valid ChannelId. It exists for tests
// and for literal channel ids known to be valid at compile time.
func MustChannelId(s string) ChannelId {
	id, err := NewChannelId(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (c ChannelId) String() string { return string(c) }

// UnmarshalJSON validates the channel id on decode so malformed ids never
// reach the rest of the system holding an unvalidated ChannelId value.
func (c *ChannelId) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	id, err := NewChannelId(s)
	if err != nil {
		return err
	}
	*c = id
	return nil
}

// UnmarshalText supports ChannelId as a map key, mirroring encoding/json's
// requirement that map keys implement TextUnmarshaler (or be strings).
func (c *ChannelId) UnmarshalText(text []byte) error {
	id, err := NewChannelId(string(text))
	if err != nil {
		return err
	}
	*c = id
	return nil
}

// MarshalText supports ChannelId as a map key.
func (c ChannelId) MarshalText() ([]byte, error) {
	return []byte(c), nil
}
