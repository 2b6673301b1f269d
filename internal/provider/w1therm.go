// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of rtherm.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package provider

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ClusterCockpit/rtherm/pkg/model"
)

// w1Dir is the sysfs directory the 1-Wire bus driver populates with one
// subdirectory per attached sensor.
const w1Dir = "/sys/bus/w1/devices/"

// samplesPerRead is the number of raw reads taken per sensor per Measure
// call; the median of these is reported, filtering single-sample spikes the
// w1-therm kernel driver is known to produce.
const samplesPerRead = 3

// W1Therm reads DS18B20-family 1-Wire temperature sensors exposed by the
// kernel's w1-therm driver under /sys/bus/w1/devices.
type W1Therm struct{}

// Measure lists the sensors currently bound under w1Dir, reads
// samplesPerRead raw temperatures from each and reports the median as a
// single point per sensor. A sensor that errors on any read is skipped and
// its error reported; it never aborts the batch.
func (W1Therm) Measure(_ context.Context) (model.Measurements, []error) {
	entries, err := os.ReadDir(w1Dir)
	if err != nil {
		return model.Measurements{}, []error{fmt.Errorf("provider: reading %q: %w", w1Dir, err)}
	}

	now := time.Now()
	out := make(model.Measurements)
	var errs []error

	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || strings.HasPrefix(name, "w1_bus_master") {
			continue
		}

		value, err := readMedianTemperature(filepath.Join(w1Dir, name))
		if err != nil {
			errs = append(errs, fmt.Errorf("provider: sensor %q: %w", name, err))
			continue
		}

		// Sensor ids from the kernel contain '-' (e.g. "28-0000012345"),
		// which ChannelId disallows; '_' is the closest allowed stand-in.
		id, err := model.NewChannelId(strings.ReplaceAll(name, "-", "_"))
		if err != nil {
			errs = append(errs, fmt.Errorf("provider: sensor %q: %w", name, err))
			continue
		}

		out[id] = []model.Point{{Value: value, Time: now}}
	}

	return out, errs
}

func readMedianTemperature(sensorDir string) (float64, error) {
	var samples [samplesPerRead]float64
	for i := range samples {
		raw, err := os.ReadFile(filepath.Join(sensorDir, "temperature"))
		if err != nil {
			return 0, err
		}
		milliCelsius, err := strconv.Atoi(strings.TrimSpace(string(raw)))
		if err != nil {
			return 0, fmt.Errorf("parsing temperature: %w", err)
		}
		samples[i] = float64(milliCelsius) * 1e-3
	}

	sort.Float64s(samples[:])
	return samples[samplesPerRead/2], nil
}
