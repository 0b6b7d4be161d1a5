// Copyright 2026 Cargoshift Authors
// SPDX-License-Identifier: Apache-2.0

// Package metrics exposes the migration pipeline's prometheus registry
// and a debug HTTP mux (metrics, pprof, health) alongside it.
package metrics

import (
	"net/http"
	"net/http/pprof"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

// Registry returns the registry used to export this run's metrics.
func Registry() prometheus.Registerer { return registry }

var (
	// InFlightParts tracks the number of parts currently being
	// fetched/registered/copied, for observing the concurrency bound
	// (spec ¤8.5) from outside the process.
	InFlightParts = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "cargoshift",
		Name:      "inflight_parts",
		Help:      "Number of parts currently in flight in the PartMigrator stage.",
	})

	// OutcomesTotal counts emitted upload outcomes by kind
	// ("success" or a failure Kind).
	OutcomesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cargoshift",
		Name:      "outcomes_total",
		Help:      "Total upload outcomes emitted, by kind.",
	}, []string{"kind"})

	// BytesCopied counts bytes streamed to destination-presigned upload
	// URLs.
	BytesCopied = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cargoshift",
		Name:      "bytes_copied_total",
		Help:      "Total bytes streamed to destination upload URLs.",
	})
)

func init() {
	registry.MustRegister(InFlightParts, OutcomesTotal, BytesCopied)
}

// Mux returns an http.ServeMux serving /metrics, /debug/pprof/*, and
// /healthz.
func Mux() *http.ServeMux {
	mux := http.NewServeMux()

	gatherers := prometheus.Gatherers{prometheus.DefaultGatherer, registry}
	mux.Handle("/metrics", promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{}))

	mux.Handle("/debug/pprof/", http.HandlerFunc(pprof.Index))
	mux.Handle("/debug/pprof/cmdline", http.HandlerFunc(pprof.Cmdline))
	mux.Handle("/debug/pprof/profile", http.HandlerFunc(pprof.Profile))
	mux.Handle("/debug/pprof/symbol", http.HandlerFunc(pprof.Symbol))
	mux.Handle("/debug/pprof/trace", http.HandlerFunc(pprof.Trace))

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return mux
}
