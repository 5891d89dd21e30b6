// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

// Package metrics exposes Prometheus instrumentation for the engine.
// The per-operation counters here are labelled by result ("ok" or
// "error" for binding operations) so a host can chart success vs.
// failure rates per operation without scraping logs.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "spdm"

// Registry is a dedicated registry rather than the global default, so
// a host embedding the engine alongside its own metrics doesn't collide
// on metric names.
var Registry = prometheus.NewRegistry()

// Handler returns an http.Handler serving the engine's metrics in
// Prometheus text format, for a host to mount under its own mux.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
