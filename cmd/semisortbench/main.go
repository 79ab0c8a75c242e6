// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// The semisortbench command drives semisort.Sort over a sequenceInt
// file and reports wall-clock timing, the thin reporting-wrapper
// pattern goarista/cmd/test2influxdb and cmd/octsdb use around a
// library rather than embedding the library's logic in the CLI itself.
// With -metrics-addr set, it also serves the run's Prometheus metrics
// until interrupted.
package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aristanetworks/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"

	"github.com/aristanetworks/semisort"
	"github.com/aristanetworks/semisort/internal/config"
	"github.com/aristanetworks/semisort/internal/gloglogger"
	"github.com/aristanetworks/semisort/internal/hashphase"
	"github.com/aristanetworks/semisort/internal/metrics"
	"github.com/aristanetworks/semisort/internal/seqio"
)

func main() {
	in := flag.StringP("in", "i", "", "input sequenceInt file (required)")
	seed := flag.Uint64("seed", 1, "RNG seed")
	metricsAddr := flag.String("metrics-addr", "", "if set, serve this run's Prometheus metrics at this address")
	configPath := flag.String("config", "", "optional hujson file overriding the tuning constants of semisort.Config")
	flag.Parse()

	if *in == "" {
		glog.Fatal("semisortbench: -in is required")
	}

	vals, err := seqio.Read(*in)
	if err != nil {
		glog.Fatalf("semisortbench: %v", err)
	}

	records := make([]semisort.Record[int, int64], len(vals))
	for i, v := range vals {
		records[i] = semisort.Record[int, int64]{Obj: i, Key: v}
	}

	cfg := semisort.DefaultConfig()
	cfg.Seed = *seed
	cfg.Logger = &gloglogger.Glog{}
	if *configPath != "" {
		cfg, err = config.Load(*configPath, cfg)
		if err != nil {
			glog.Fatalf("semisortbench: %v", err)
		}
	}

	var coll *metrics.Collector
	if *metricsAddr != "" {
		coll = metrics.NewCollector()
		cfg.Metrics = coll
		prometheus.MustRegister(coll)
		http.Handle("/metrics", promhttp.Handler())
		go func() {
			glog.Fatal(http.ListenAndServe(*metricsAddr, nil))
		}()
	}

	hash := hashphase.Uint64(cfg.Seed)
	start := time.Now()
	err = semisort.SortWithHash(context.Background(), records, func(k int64) uint64 {
		return hash(uint64(k))
	}, cfg)
	elapsed := time.Since(start)
	if err != nil {
		glog.Fatalf("semisortbench: sort failed after %s: %v", elapsed, err)
	}
	fmt.Printf("semisortbench: sorted %d records in %s\n", len(records), elapsed)

	if *metricsAddr != "" {
		glog.Infof("semisortbench: serving metrics at %s/metrics; ctrl-c to exit", *metricsAddr)
		select {}
	}
}
