// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of rtherm.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ClusterCockpit/rtherm/internal/history"
	"github.com/ClusterCockpit/rtherm/pkg/model"
)

type fakeRecipient struct {
	received model.Measurements
	errs     []error
}

func (f *fakeRecipient) Update(_ context.Context, meas model.Measurements) []error {
	f.received = meas
	return f.errs
}

func TestProvideAcceptsValidBatch(t *testing.T) {
	stats := history.NewStatistics()
	rec := &fakeRecipient{}
	api := New(stats, rec)
	router := api.Router("")

	body, err := json.Marshal(model.ProvideRequest{
		Measurements: model.Measurements{
			model.MustChannelId("temp0"): {{Value: 42, Time: time.Now()}},
		},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/provide", bytes.NewReader(body))
	rw := httptest.NewRecorder()
	router.ServeHTTP(rw, req)

	assert.Equal(t, http.StatusOK, rw.Code)
	assert.Equal(t, "Accepted", rw.Body.String())
	assert.Contains(t, rec.received, model.ChannelId("temp0"))
}

func TestProvideRejectsMalformedBody(t *testing.T) {
	stats := history.NewStatistics()
	api := New(stats, &fakeRecipient{})
	router := api.Router("")

	req := httptest.NewRequest(http.MethodPost, "/provide", bytes.NewReader([]byte("not json")))
	rw := httptest.NewRecorder()
	router.ServeHTTP(rw, req)

	assert.Equal(t, http.StatusBadRequest, rw.Code)
}

func TestProvideIsAcknowledgedDespiteRecipientErrors(t *testing.T) {
	stats := history.NewStatistics()
	rec := &fakeRecipient{errs: []error{assert.AnError}}
	api := New(stats, rec)
	router := api.Router("")

	body, _ := json.Marshal(model.ProvideRequest{
		Measurements: model.Measurements{model.MustChannelId("t"): {{Value: 1}}},
	})
	req := httptest.NewRequest(http.MethodPost, "/provide", bytes.NewReader(body))
	rw := httptest.NewRecorder()
	router.ServeHTTP(rw, req)

	assert.Equal(t, http.StatusOK, rw.Code)
}

func TestSummaryReflectsIngestedBatch(t *testing.T) {
	stats := history.NewStatistics()
	api := New(stats, &fakeRecipient{})
	router := api.Router("/api")

	body, _ := json.Marshal(model.ProvideRequest{
		Measurements: model.Measurements{model.MustChannelId("t"): {{Value: 10, Time: time.Now()}}},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/provide", bytes.NewReader(body))
	router.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	rw := httptest.NewRecorder()
	router.ServeHTTP(rw, req)

	assert.Equal(t, http.StatusOK, rw.Code)

	var summary map[string]history.ChannelStatistics
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &summary))
	require.Contains(t, summary, "t")
	assert.Equal(t, 10.0, summary["t"].Mean)
}

func TestSummaryEncodesCleanlyAfterEmptyPointList(t *testing.T) {
	stats := history.NewStatistics()
	api := New(stats, &fakeRecipient{})
	router := api.Router("")

	body, _ := json.Marshal(model.ProvideRequest{
		Measurements: model.Measurements{model.MustChannelId("x"): {}},
	})
	req := httptest.NewRequest(http.MethodPost, "/provide", bytes.NewReader(body))
	rw := httptest.NewRecorder()
	router.ServeHTTP(rw, req)
	require.Equal(t, http.StatusOK, rw.Code)

	req = httptest.NewRequest(http.MethodGet, "/summary", nil)
	rw = httptest.NewRecorder()
	router.ServeHTTP(rw, req)

	require.Equal(t, http.StatusOK, rw.Code)
	var summary map[string]history.ChannelStatistics
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &summary))
	assert.NotContains(t, summary, "x")
}

func TestSensorsIsAliasOfSummary(t *testing.T) {
	stats := history.NewStatistics()
	api := New(stats, &fakeRecipient{})
	router := api.Router("")

	req := httptest.NewRequest(http.MethodGet, "/sensors", nil)
	rw := httptest.NewRecorder()
	router.ServeHTTP(rw, req)

	assert.Equal(t, http.StatusOK, rw.Code)
}
