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
	"fmt"

	"github.com/sage-x-project/spdm-engine/errs"
	"github.com/sage-x-project/spdm-engine/internal/metrics"
	"github.com/sage-x-project/spdm-engine/primitive"
)

// SummaryKind selects which measurement blocks contribute to a
// MeasurementSummary hash.
type SummaryKind int

const (
	SummaryNone SummaryKind = iota
	SummaryTCB
	SummaryAll
)

func (k SummaryKind) String() string {
	switch k {
	case SummaryTCB:
		return "tcb"
	case SummaryAll:
		return "all"
	default:
		return "no"
	}
}

// immutableROMBit is the DMTF measurement-value-type low-bit pattern
// identifying immutable ROM measurements, the TCB summary's filter.
const immutableROMBit = 0x0

// measurementBlock is one DMTF measurement block as laid out on the
// wire: a common header carrying an overall measurement_size, followed
// by the DMTF sub-header (value_type, value_size) and the value bytes.
type measurementBlock struct {
	index             byte
	measurementSpec   byte
	measurementSize   uint16
	dmtfValueType     byte
	dmtfValueSize     uint16
	dmtfValue         []byte
}

const commonHeaderSize = 4 // index(1) + measurement_specification(1) + measurement_size(2)
const dmtfHeaderSize = 3   // value_type(1) + value_size(2)

// parseMeasurementBlocks walks a raw measurement-block sequence,
// validating that each block's declared measurement_size equals
// sizeof(DMTF_header) + dmtf_value_size. A mismatch is a fatal
// protocol error on the responder side.
func parseMeasurementBlocks(raw []byte) ([]measurementBlock, error) {
	var blocks []measurementBlock
	offset := 0
	for offset < len(raw) {
		if len(raw)-offset < commonHeaderSize {
			return nil, fmt.Errorf("cryptobind: truncated measurement block header: %w", errs.DeviceError)
		}
		index := raw[offset]
		spec := raw[offset+1]
		measurementSize := binary.LittleEndian.Uint16(raw[offset+2 : offset+4])
		dmtfStart := offset + commonHeaderSize
		if len(raw)-dmtfStart < dmtfHeaderSize {
			return nil, fmt.Errorf("cryptobind: truncated DMTF header: %w", errs.DeviceError)
		}
		valueType := raw[dmtfStart]
		valueSize := binary.LittleEndian.Uint16(raw[dmtfStart+1 : dmtfStart+3])
		if int(measurementSize) != dmtfHeaderSize+int(valueSize) {
			return nil, fmt.Errorf("cryptobind: measurement_size %d != dmtf header + value_size %d: %w", measurementSize, valueSize, errs.DeviceError)
		}
		valueStart := dmtfStart + dmtfHeaderSize
		if len(raw)-valueStart < int(valueSize) {
			return nil, fmt.Errorf("cryptobind: truncated measurement value: %w", errs.DeviceError)
		}
		blocks = append(blocks, measurementBlock{
			index:           index,
			measurementSpec: spec,
			measurementSize: measurementSize,
			dmtfValueType:   valueType,
			dmtfValueSize:   valueSize,
			dmtfValue:       raw[valueStart : valueStart+int(valueSize)],
		})
		offset = valueStart + int(valueSize)
	}
	return blocks, nil
}

// MeasurementSummary hashes a raw measurement-block sequence under
// kind: SummaryNone returns a zero-filled buffer sized to the base
// hash, SummaryTCB hashes only immutable-ROM blocks, SummaryAll hashes
// every block.
func MeasurementSummary(p primitive.Provider, algo primitive.HashAlgo, kind SummaryKind, raw []byte) ([]byte, error) {
	metrics.MeasurementSummaries.WithLabelValues(kind.String()).Inc()

	if kind == SummaryNone {
		return make([]byte, algo.Size()), nil
	}

	blocks, err := parseMeasurementBlocks(raw)
	if err != nil {
		return nil, err
	}

	var selected []byte
	for _, b := range blocks {
		if kind == SummaryTCB && !isImmutableROM(b.dmtfValueType) {
			continue
		}
		selected = append(selected, encodeBlock(b)...)
	}
	return p.Hash(algo, selected)
}

func isImmutableROM(valueType byte) bool {
	return valueType&0x7f == immutableROMBit
}

func encodeBlock(b measurementBlock) []byte {
	out := make([]byte, 0, commonHeaderSize+dmtfHeaderSize+len(b.dmtfValue))
	out = append(out, b.index, b.measurementSpec)
	sizeBuf := make([]byte, 2)
	binary.LittleEndian.PutUint16(sizeBuf, b.measurementSize)
	out = append(out, sizeBuf...)
	out = append(out, b.dmtfValueType)
	valSizeBuf := make([]byte, 2)
	binary.LittleEndian.PutUint16(valSizeBuf, b.dmtfValueSize)
	out = append(out, valSizeBuf...)
	out = append(out, b.dmtfValue...)
	return out
}
