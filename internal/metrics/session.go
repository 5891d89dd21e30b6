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
	// SessionsAssigned tracks SessionTable.Assign outcomes.
	SessionsAssigned = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "assigned_total",
			Help:      "Total number of session table assign calls",
		},
		[]string{"result"}, // ok, duplicate, full, bad_algorithms
	)

	// SessionsActive tracks currently live rows across all contexts.
	SessionsActive = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "active",
			Help:      "Number of currently assigned session table rows",
		},
	)

	// SessionsFreed tracks SessionTable.Free calls.
	SessionsFreed = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "freed_total",
			Help:      "Total number of session table rows freed",
		},
	)

	// SessionEstablished tracks sessions that reach the Established state,
	// split by whether PSK or certificate-based key exchange was used.
	SessionEstablished = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "established_total",
			Help:      "Total number of sessions that reached Established",
		},
		[]string{"method"}, // finish, psk_finish
	)
)
