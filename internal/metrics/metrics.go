// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package metrics holds the Prometheus collectors of the pipeline, the
// shader reloader and the exporter.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// PassDuration tracks the wall time of each pipeline pass
	PassDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "strepitus_pass_seconds",
			Help:    "Pipeline pass duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		},
		[]string{"pass"},
	)

	// Dispatches counts compute dispatches by program
	Dispatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strepitus_dispatches_total",
			Help: "Compute dispatches by program",
		},
		[]string{"program"},
	)

	// ShaderReloads counts program swaps by result (ok, failed)
	ShaderReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strepitus_shader_reloads_total",
			Help: "Shader program reloads by result",
		},
		[]string{"result"},
	)

	// Exports counts finished exports by file format and result
	Exports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strepitus_exports_total",
			Help: "Exports by file format and result",
		},
		[]string{"format", "result"},
	)

	// ExportDuration tracks encode and write time of exports
	ExportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "strepitus_export_seconds",
			Help:    "Export encode and write time in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"format"},
	)
)

// ObservePass records the time since start under pass.
func ObservePass(pass string, start time.Time) {
	PassDuration.WithLabelValues(pass).Observe(time.Since(start).Seconds())
}

// Result returns the label value for err.
func Result(err error) string {
	if err != nil {
		return "failed"
	}
	return "ok"
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
