// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of rtherm.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package forwarder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"

	"github.com/ClusterCockpit/rtherm/internal/stash"
	"github.com/ClusterCockpit/rtherm/pkg/model"
)

// Config holds the consumer's renaming and transmission settings, sourced
// from the client's TOML config file.
type Config struct {
	// Prefix, when non-empty, triggers renaming: every channel id gets
	// mapped through NameMap (falling back to the local name with dashes
	// stripped) and is then prepended with Prefix.
	Prefix string
	// NameMap maps a provider-local channel name to its public name,
	// applied only when Prefix is non-empty.
	NameMap map[string]string
	// Server is the base URL the batch is POSTed to, as "{Server}/provide".
	Server string
}

// RunConsumer drains q, coalesces, renames, stashes and transmits batches
// to the configured server in a loop, giving at-least-once delivery. When
// the queue reports the producer is gone it aborts the process via
// cclog.Fatal.
func RunConsumer(ctx context.Context, q *Queue, cfg Config, s *stash.Stash, client *http.Client) {
	for {
		batches, ok := q.Drain()
		if !ok {
			cclog.Fatal("[FORWARDER]> producer queue closed, aborting")
			return
		}

		batch := model.Merge(batches...)
		if cfg.Prefix != "" {
			batch = rename(batch, cfg.Prefix, cfg.NameMap)
		}

		stored := s.Store(batch) == nil
		if stored {
			batch = model.Measurements{}
		}

		guard, err := s.Load()
		if err != nil {
			cclog.Errorf("[FORWARDER]> cannot load stash: %s", err.Error())
			guard = nil
		}

		request := model.ProvideRequest{Measurements: batch}
		if guard != nil {
			request.Measurements = model.Merge(guard.Measurements(), batch)
		}

		if err := post(ctx, client, cfg.Server, request); err != nil {
			cclog.Errorf("[FORWARDER]> error sending measurements: %s", err.Error())
			continue
		}
		cclog.Debugf("[FORWARDER]> measurements sent to %q", cfg.Server)

		if guard != nil {
			guard.Remove()
		}
	}
}

func post(ctx context.Context, client *http.Client, server string, req model.ProvideRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, server+"/provide", bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := client.Do(httpReq)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("server responded %s", res.Status)
	}
	return nil
}

// rename applies the prefix/name_map transformation described in the
// client config: each local channel id is mapped through nameMap (falling
// back to the local name with dashes stripped) and prepended with prefix.
// Ids that fail validation after renaming, or collide with an
// already-renamed id, are dropped with a logged error rather than
// aborting the batch.
func rename(batch model.Measurements, prefix string, nameMap map[string]string) model.Measurements {
	out := make(model.Measurements, len(batch))
	for local, points := range batch {
		mapped, ok := nameMap[local.String()]
		if !ok {
			mapped = strings.ReplaceAll(local.String(), "-", "")
		}

		id, err := model.NewChannelId(prefix + mapped)
		if err != nil {
			cclog.Errorf("[FORWARDER]> dropping channel %q: %s", local, err.Error())
			continue
		}
		if _, collision := out[id]; collision {
			cclog.Errorf("[FORWARDER]> dropping channel %q: collides with %q after renaming", local, id)
			continue
		}
		out[id] = points
	}
	return out
}
