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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BindingOperations tracks signature/HMAC generate+verify calls.
	BindingOperations = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "crypto",
			Name:      "binding_operations_total",
			Help:      "Total number of signature/HMAC generate and verify calls",
		},
		[]string{"operation", "result"}, // e.g. generate_challenge_signature, verify_finish_req_hmac; ok, error
	)

	// BindingDuration tracks binding operation latency.
	BindingDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "crypto",
			Name:      "binding_duration_seconds",
			Help:      "Signature/HMAC binding operation duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 15),
		},
		[]string{"operation"},
	)

	// MeasurementSummaries tracks measurement-summary hash computations.
	MeasurementSummaries = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "crypto",
			Name:      "measurement_summaries_total",
			Help:      "Total number of measurement summary hashes computed",
		},
		[]string{"kind"}, // no, tcb, all
	)
)
