// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of rtherm.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package httpapi implements the server's sole ingress: the "/provide"
// ingestion endpoint and the "/summary" (and legacy "/sensors") read-only
// summary endpoints, plus the ambient "/metrics" Prometheus endpoint.
package httpapi

import (
	"encoding/json"
	"net/http"
	"os"
	"sync"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"

	"github.com/ClusterCockpit/rtherm/internal/history"
	"github.com/ClusterCockpit/rtherm/internal/recipient"
	"github.com/ClusterCockpit/rtherm/pkg/model"
)

// API wires a Statistics instance and a fan-out Recipient behind the HTTP
// surface. Requests are serialized on a single mutex around the
// (Statistics, Recipients) pair per the concurrency model: there is no
// cross-request parallel update of the history or alert state.
type API struct {
	mu        sync.Mutex
	stats     *history.Statistics
	recipient recipient.Recipient
}

// New constructs an API serving stats and fanning ingested batches out to
// recip.
func New(stats *history.Statistics, recip recipient.Recipient) *API {
	return &API{stats: stats, recipient: recip}
}

// Router builds the mux.Router for this API under prefix, with CORS and
// access logging middleware matching the teacher's server wiring.
func (a *API) Router(prefix string) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc(prefix+"/provide", a.provide).Methods(http.MethodPost)
	r.HandleFunc(prefix+"/summary", a.summary).Methods(http.MethodGet)
	r.HandleFunc(prefix+"/sensors", a.summary).Methods(http.MethodGet)
	r.Handle(prefix+"/metrics", promhttp.Handler()).Methods(http.MethodGet)

	r.Use(handlers.CORS(
		handlers.AllowedHeaders([]string{"Content-Type"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost}),
	))
	return handlers.CombinedLoggingHandler(os.Stderr, r)
}

// provide is the sole ingestion endpoint. Any batch that parses as valid
// JSON is acknowledged with 200 "Accepted", whether or not recipients
// report errors: ingress is always acknowledged if it parsed.
func (a *API) provide(rw http.ResponseWriter, r *http.Request) {
	var req model.ProvideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(rw, err.Error(), http.StatusBadRequest)
		return
	}

	a.mu.Lock()
	a.stats.Update(req.Measurements)
	errs := a.recipient.Update(r.Context(), req.Measurements)
	a.mu.Unlock()

	for _, err := range errs {
		cclog.Errorf("[HTTPAPI]> recipient error: %s", err.Error())
	}

	rw.WriteHeader(http.StatusOK)
	_, _ = rw.Write([]byte("Accepted"))
}

// summary serves the current per-channel statistics snapshot.
func (a *API) summary(rw http.ResponseWriter, r *http.Request) {
	summary := a.stats.Summary()

	rw.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(rw).Encode(summary); err != nil {
		cclog.Errorf("[HTTPAPI]> encoding summary: %s", err.Error())
	}
}
