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

// Package config describes the host-supplied defaults a DeviceContext
// is constructed with: local capability/algorithm preferences, slot and
// session-table sizing, retry budget, and the logging/metrics
// sub-configs. The engine itself never reads a file or an environment
// variable for this; the host decodes YAML (or builds the struct by
// hand) and passes it to context.New.
package config

import (
	"fmt"
	"time"
)

// Config is the top-level configuration for one DeviceContext.
type Config struct {
	Capabilities CapabilitiesConfig `yaml:"capabilities" json:"capabilities"`
	Algorithms   AlgorithmsConfig   `yaml:"algorithms" json:"algorithms"`
	Session      SessionConfig      `yaml:"session" json:"session"`
	Logging      LoggingConfig      `yaml:"logging" json:"logging"`
	Metrics      MetricsConfig      `yaml:"metrics" json:"metrics"`
}

// CapabilitiesConfig mirrors the CapabilityFlags/CapabilityCTExponent
// data kinds from SPEC_FULL.md §6 (set_data table).
type CapabilitiesConfig struct {
	Flags       uint32 `yaml:"flags" json:"flags"`
	CTExponent  uint8  `yaml:"ct_exponent" json:"ct_exponent"`
	RetryTimes  int    `yaml:"retry_times" json:"retry_times"`
}

// AlgorithmsConfig mirrors the algorithm-preference data kinds.
type AlgorithmsConfig struct {
	MeasurementHashAlgo string `yaml:"measurement_hash_algo" json:"measurement_hash_algo"`
	BaseAsymAlgo        string `yaml:"base_asym_algo" json:"base_asym_algo"`
	BaseHashAlgo        string `yaml:"base_hash_algo" json:"base_hash_algo"`
	DHENamedGroup       string `yaml:"dhe_named_group" json:"dhe_named_group"`
	AEADCipherSuite     string `yaml:"aead_cipher_suite" json:"aead_cipher_suite"`
	ReqBaseAsymAlgo     string `yaml:"req_base_asym_algo" json:"req_base_asym_algo"`
	KeySchedule         string `yaml:"key_schedule" json:"key_schedule"`
}

// SessionConfig sizes the fixed-capacity session table.
type SessionConfig struct {
	TableCapacity int           `yaml:"table_capacity" json:"table_capacity"`
	SlotCount     int           `yaml:"slot_count" json:"slot_count"`
	HandshakeTTL  time.Duration `yaml:"handshake_ttl" json:"handshake_ttl"`
}

// LoggingConfig controls the internal/logger defaults.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Pretty bool   `yaml:"pretty" json:"pretty"`
}

// MetricsConfig toggles whether the host intends to scrape metrics.
// The engine always registers its collectors; this only documents
// intent for the host's own wiring.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// MaxSlotCount bounds local certificate slots per SPEC_FULL.md §6.
const MaxSlotCount = 8

// MaxPSKHintLength bounds the PSK hint accepted by set_data.
const MaxPSKHintLength = 64

// Default returns a Config with the engine's baked-in defaults —
// 4-row session table, slot 0 only, SHA-256/ECDSA-P256-equivalent
// algorithm preferences, and three retries, matching the scenario
// seeds in SPEC_FULL.md §11.
func Default() Config {
	return Config{
		Capabilities: CapabilitiesConfig{
			RetryTimes: 3,
		},
		Algorithms: AlgorithmsConfig{
			MeasurementHashAlgo: "sha256",
			BaseAsymAlgo:        "ecdsa_p256",
			BaseHashAlgo:        "sha256",
			DHENamedGroup:       "secp256r1",
			AEADCipherSuite:     "aes_256_gcm",
			ReqBaseAsymAlgo:     "ecdsa_p256",
			KeySchedule:         "hkdf_sha256",
		},
		Session: SessionConfig{
			TableCapacity: 4,
			SlotCount:     1,
			HandshakeTTL:  30 * time.Second,
		},
		Logging: LoggingConfig{Level: "info"},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// Validate rejects configurations the engine cannot act on.
func (c Config) Validate() error {
	if c.Session.SlotCount < 0 || c.Session.SlotCount > MaxSlotCount {
		return fmt.Errorf("config: slot_count %d exceeds MaxSlotCount %d", c.Session.SlotCount, MaxSlotCount)
	}
	if c.Session.TableCapacity <= 0 {
		return fmt.Errorf("config: table_capacity must be positive, got %d", c.Session.TableCapacity)
	}
	if c.Capabilities.RetryTimes < 0 {
		return fmt.Errorf("config: retry_times must be non-negative, got %d", c.Capabilities.RetryTimes)
	}
	return nil
}
