// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of rtherm.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package forwarder

import (
	"context"
	"time"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"

	"github.com/ClusterCockpit/rtherm/internal/provider"
)

// RunProducer polls src every period and enqueues the resulting batch on
// out, logging every provider error without aborting. The batch is
// enqueued even when empty, so cadence stays observable downstream. It
// returns when ctx is done.
func RunProducer(ctx context.Context, src provider.Provider, period time.Duration, out *Queue) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		meas, errs := src.Measure(ctx)
		for _, err := range errs {
			cclog.Errorf("[FORWARDER]> provider error: %s", err.Error())
		}
		out.Send(meas)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
