// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of rtherm.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/gops/agent"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"

	"github.com/ClusterCockpit/rtherm/internal/clientconfig"
	"github.com/ClusterCockpit/rtherm/internal/forwarder"
	"github.com/ClusterCockpit/rtherm/internal/provider"
	"github.com/ClusterCockpit/rtherm/internal/stash"
	"github.com/ClusterCockpit/rtherm/pkg/model"
)

func buildProviders(kinds []model.ProviderKind) provider.Composite {
	var composite provider.Composite
	for _, kind := range kinds {
		switch kind {
		case model.ProviderW1Therm:
			composite = append(composite, provider.W1Therm{})
			cclog.Info("[PROVIDER]> w1_therm provider created")
		case model.ProviderDummy:
			composite = append(composite, provider.NewDummy(model.MustChannelId("dummy")))
			cclog.Info("[PROVIDER]> dummy provider created")
		default:
			cclog.Errorf("[PROVIDER]> unknown provider kind %q, skipping", kind)
		}
	}
	return composite
}

func main() {
	var flagGops bool
	flag.BoolVar(&flagGops, "gops", false, "Listen via github.com/google/gops/agent (for debugging)")
	flag.Parse()

	configPath := flag.Arg(0)
	if configPath == "" {
		cclog.Abortf("[MAIN]> path to config file must be given as the sole positional argument")
	}

	if flagGops {
		if err := agent.Listen(agent.Options{}); err != nil {
			cclog.Fatalf("gops/agent.Listen failed: %s", err.Error())
		}
	}

	cfg, err := clientconfig.Load(configPath)
	if err != nil {
		cclog.Abortf("[MAIN]> %s", err.Error())
	}

	providers := buildProviders(cfg.Providers)
	if len(providers) == 0 {
		cclog.Abortf("[MAIN]> no usable providers configured")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		cclog.Info("[MAIN]> shutdown signal received")
		cancel()
	}()

	queue := forwarder.NewQueue()
	go forwarder.RunProducer(ctx, providers, cfg.PeriodDuration(), queue)

	cclog.Infof("[MAIN]> forwarding to %q every %s", cfg.Server, cfg.PeriodDuration())
	forwarder.RunConsumer(ctx, queue, cfg.ForwarderConfig(), stash.New(), &http.Client{})
}
