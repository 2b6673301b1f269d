// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of rtherm.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package model

import (
	"encoding/json"
	"time"
)

// Point is a single scalar reading at an instant in wall-clock time.
type Point struct {
	Value float64
	Time  time.Time
}

// wirePoint is the JSON shape of Point: {"value": <float>, "time": <unsigned
// seconds since epoch>}.
type wirePoint struct {
	Value float64 `json:"value"`
	Time  uint64  `json:"time"`
}

// MarshalJSON encodes Time as unsigned seconds since the Unix epoch.
// Pre-epoch instants (negative seconds) serialize as 0, per the wire format.
func (p Point) MarshalJSON() ([]byte, error) {
	secs := p.Time.Unix()
	if secs < 0 {
		secs = 0
	}
	return json.Marshal(wirePoint{Value: p.Value, Time: uint64(secs)})
}

// UnmarshalJSON decodes Time from unsigned seconds since the Unix epoch.
func (p *Point) UnmarshalJSON(data []byte) error {
	var w wirePoint
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	p.Value = w.Value
	p.Time = time.Unix(int64(w.Time), 0).UTC()
	return nil
}
