// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of rtherm.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package alert

import (
	"fmt"
	"math"

	"github.com/ClusterCockpit/rtherm/pkg/model"
)

// valueRange is an inclusive [Lo, Hi] range of float64 values.
type valueRange struct {
	Lo float64 `json:"lo"`
	Hi float64 `json:"hi"`
}

// rangeOf returns the [min, max] range spanned by points' values. Points
// must be non-empty.
func rangeOf(points []model.Point) valueRange {
	r := valueRange{Lo: math.Inf(1), Hi: math.Inf(-1)}
	for _, p := range points {
		r.Lo = math.Min(r.Lo, p.Value)
		r.Hi = math.Max(r.Hi, p.Value)
	}
	return r
}

// contains reports whether r fully contains other.
func (r valueRange) contains(other valueRange) bool {
	return r.Lo <= other.Lo && other.Hi <= r.Hi
}

// narrow shrinks r by h on each side, collapsing to the midpoint when the
// shrink would invert the range (hi - lo < 2h).
func (r valueRange) narrow(h float64) valueRange {
	lo, hi := r.Lo+h, r.Hi-h
	if hi < lo {
		mid := 0.5 * (r.Lo + r.Hi)
		return valueRange{Lo: mid, Hi: mid}
	}
	return valueRange{Lo: lo, Hi: hi}
}

// String renders a single value as a bare number, a range as "[lo, hi]".
func (r valueRange) String() string {
	if r.Lo == r.Hi {
		return fmt.Sprintf("%g", r.Lo)
	}
	return fmt.Sprintf("[%g, %g]", r.Lo, r.Hi)
}
