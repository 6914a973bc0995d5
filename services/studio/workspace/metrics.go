// Copyright (C) 2025 StudioLoom (dev@studioloom.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package workspace

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace   = "studioloom"
	workspaceSubsystem = "workspace"
)

var (
	savesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: workspaceSubsystem,
		Name:      "saves_total",
		Help:      "Total save calls by data kind",
	}, []string{"kind"})

	writeFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: workspaceSubsystem,
		Name:      "durable_write_failures_total",
		Help:      "Durable writes that failed after leaving the in-memory cache",
	})

	brainRepairsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: workspaceSubsystem,
		Name:      "brain_repairs_total",
		Help:      "Persona record repairs applied on load, by migration step",
	}, []string{"step"})

	clientLoadSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: workspaceSubsystem,
		Name:      "client_load_seconds",
		Help:      "Time to load a client's full data set into the cache",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})
)
