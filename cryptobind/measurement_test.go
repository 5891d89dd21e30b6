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

package cryptobind

import (
	"encoding/binary"
	"testing"

	"github.com/sage-x-project/spdm-engine/primitive"
	"github.com/sage-x-project/spdm-engine/primitive/ed25519provider"
	"github.com/stretchr/testify/require"
)

func buildBlock(index, valueType byte, value []byte) []byte {
	dmtfSize := 3 + len(value)
	out := []byte{index, 0}
	sizeBuf := make([]byte, 2)
	binary.LittleEndian.PutUint16(sizeBuf, uint16(dmtfSize))
	out = append(out, sizeBuf...)
	out = append(out, valueType)
	valSize := make([]byte, 2)
	binary.LittleEndian.PutUint16(valSize, uint16(len(value)))
	out = append(out, valSize...)
	out = append(out, value...)
	return out
}

func TestMeasurementSummaryNo(t *testing.T) {
	p := ed25519provider.New()
	sum, err := MeasurementSummary(p, primitive.HashSHA256, SummaryNone, nil)
	require.NoError(t, err)
	require.Equal(t, make([]byte, 32), sum)
}

func TestMeasurementSummaryAllIncludesEveryBlock(t *testing.T) {
	p := ed25519provider.New()
	raw := append(buildBlock(1, 0x00, []byte("rom")), buildBlock(2, 0x01, []byte("mutable"))...)
	sum, err := MeasurementSummary(p, primitive.HashSHA256, SummaryAll, raw)
	require.NoError(t, err)
	require.Len(t, sum, 32)
}

func TestMeasurementSummaryTCBFiltersNonImmutable(t *testing.T) {
	p := ed25519provider.New()
	onlyROM := buildBlock(1, 0x00, []byte("rom"))
	mixed := append(buildBlock(1, 0x00, []byte("rom")), buildBlock(2, 0x01, []byte("mutable"))...)

	sumOnlyROM, err := MeasurementSummary(p, primitive.HashSHA256, SummaryTCB, onlyROM)
	require.NoError(t, err)
	sumMixed, err := MeasurementSummary(p, primitive.HashSHA256, SummaryTCB, mixed)
	require.NoError(t, err)

	require.Equal(t, sumOnlyROM, sumMixed)
}

func TestMeasurementSummaryRejectsInconsistentSize(t *testing.T) {
	p := ed25519provider.New()
	block := buildBlock(1, 0x00, []byte("rom"))
	binary.LittleEndian.PutUint16(block[2:4], 999) // corrupt measurement_size
	_, err := MeasurementSummary(p, primitive.HashSHA256, SummaryAll, block)
	require.Error(t, err)
}
