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

package context

import (
	"fmt"

	"github.com/sage-x-project/spdm-engine/encap"
	"github.com/sage-x-project/spdm-engine/errs"
	"github.com/sage-x-project/spdm-engine/internal/logger"
	"github.com/sage-x-project/spdm-engine/internal/metrics"
)

// DataKind enumerates the fields set_data/get_data can address.
type DataKind int

const (
	CapabilityFlags DataKind = iota
	CapabilityCTExponent
	MeasurementHashAlgo
	BaseAsymAlgo
	BaseHashAlgo
	DHENamedGroup
	AEADCipherSuite
	ReqBaseAsymAlgo
	KeySchedule
	ResponseStateKind
	PeerPublicRootCertHash
	PeerPublicCertChains
	SlotCount
	PublicCertChains
	BasicMutAuthRequested
	MutAuthRequested
	PskHint
)

// String names a DataKind, for logging.
func (k DataKind) String() string {
	switch k {
	case CapabilityFlags:
		return "CapabilityFlags"
	case CapabilityCTExponent:
		return "CapabilityCTExponent"
	case MeasurementHashAlgo:
		return "MeasurementHashAlgo"
	case BaseAsymAlgo:
		return "BaseAsymAlgo"
	case BaseHashAlgo:
		return "BaseHashAlgo"
	case DHENamedGroup:
		return "DHENamedGroup"
	case AEADCipherSuite:
		return "AEADCipherSuite"
	case ReqBaseAsymAlgo:
		return "ReqBaseAsymAlgo"
	case KeySchedule:
		return "KeySchedule"
	case ResponseStateKind:
		return "ResponseState"
	case PeerPublicRootCertHash:
		return "PeerPublicRootCertHash"
	case PeerPublicCertChains:
		return "PeerPublicCertChains"
	case SlotCount:
		return "SlotCount"
	case PublicCertChains:
		return "PublicCertChains"
	case BasicMutAuthRequested:
		return "BasicMutAuthRequested"
	case MutAuthRequested:
		return "MutAuthRequested"
	case PskHint:
		return "PskHint"
	default:
		return fmt.Sprintf("DataKind(%d)", int(k))
	}
}

// Location selects which side of the connection a get_data call reads
// from. set_data always writes the local side; Location only matters
// for get_data.
type Location int

const (
	LocationLocal Location = iota
	LocationConnection
)

// Parameter carries the extra addressing a few kinds need (PublicCertChains'
// slot index) plus the read-side selector for get_data.
type Parameter struct {
	Location Location
	Slot     uint8
}

// mutAuthAllowedMask is the set of bits MutAuthRequested accepts.
// A nonzero value must be one of the three mutually exclusive
// authentication policies the responder may request of an
// encapsulated requester: Requested alone, Requested|Encapsulated, or
// Requested|GetDigests.
const (
	MutAuthBitRequested    uint8 = 0x01
	MutAuthBitEncapsulated uint8 = 0x02
	MutAuthBitGetDigests   uint8 = 0x04
	mutAuthAllowedMask     uint8 = MutAuthBitRequested | MutAuthBitEncapsulated | MutAuthBitGetDigests
)

func (c *Context) rejected(op string, kind DataKind, err error) error {
	metrics.DataCalls.WithLabelValues(op, kind.String(), "rejected").Inc()
	return c.recordError(err)
}

func accepted(op string, kind DataKind) {
	metrics.DataCalls.WithLabelValues(op, kind.String(), "ok").Inc()
}

// SetData implements set_data. bytes is borrowed for PeerPublicRootCertHash,
// PeerPublicCertChains, PublicCertChains and PskHint: the Context copies
// what it needs to retain into its own buffers.
func (c *Context) SetData(kind DataKind, param Parameter, bytes []byte) error {
	if isDebugOnlyData(kind) {
		return c.rejected("set", kind, errDebugOnly)
	}

	switch kind {
	case CapabilityFlags:
		if len(bytes) != 4 {
			return c.rejected("set", kind, fmt.Errorf("context: CapabilityFlags wants 4 bytes: %w", errs.InvalidParameter))
		}
		c.cfg.capabilityFlags = uint32(bytes[0]) | uint32(bytes[1])<<8 | uint32(bytes[2])<<16 | uint32(bytes[3])<<24

	case CapabilityCTExponent:
		if len(bytes) != 1 {
			return c.rejected("set", kind, fmt.Errorf("context: CapabilityCTExponent wants 1 byte: %w", errs.InvalidParameter))
		}
		c.cfg.capabilityCTExponent = bytes[0]

	case MeasurementHashAlgo:
		c.cfg.measurementHashAlgo = string(bytes)
	case BaseAsymAlgo:
		c.cfg.baseAsymAlgo = string(bytes)
	case BaseHashAlgo:
		c.cfg.baseHashAlgo = string(bytes)
	case DHENamedGroup:
		c.cfg.dheNamedGroup = string(bytes)
	case AEADCipherSuite:
		c.cfg.aeadCipherSuite = string(bytes)
	case ReqBaseAsymAlgo:
		c.cfg.reqBaseAsymAlgo = string(bytes)
	case KeySchedule:
		c.cfg.keySchedule = string(bytes)

	case ResponseStateKind:
		if len(bytes) != 1 || bytes[0] > byte(ResponseStateNeedResync) {
			return c.rejected("set", kind, fmt.Errorf("context: invalid ResponseState value: %w", errs.InvalidParameter))
		}
		c.cfg.responseState = ResponseState(bytes[0])

	case PeerPublicRootCertHash:
		c.cfg.peerPublicRootCertHash = append([]byte(nil), bytes...)

	case PeerPublicCertChains:
		c.cfg.peerPublicCertChains = append([]byte(nil), bytes...)

	case SlotCount:
		if len(bytes) != 1 {
			return c.rejected("set", kind, fmt.Errorf("context: SlotCount wants 1 byte: %w", errs.InvalidParameter))
		}
		n := int(bytes[0])
		if n > MaxSlotCount {
			return c.rejected("set", kind, fmt.Errorf("context: slot count %d exceeds MaxSlotCount %d: %w", n, MaxSlotCount, errs.InvalidParameter))
		}
		c.cfg.slotCount = n

	case PublicCertChains:
		if int(param.Slot) >= MaxSlotCount {
			return c.rejected("set", kind, fmt.Errorf("context: slot %d out of range: %w", param.Slot, errs.InvalidParameter))
		}
		c.cfg.publicCertChains[param.Slot] = append([]byte(nil), bytes...)

	case BasicMutAuthRequested:
		if len(bytes) != 1 {
			return c.rejected("set", kind, fmt.Errorf("context: BasicMutAuthRequested wants 1 byte: %w", errs.InvalidParameter))
		}
		// Canonical conversion: 0 is false, any nonzero value is true.
		c.cfg.basicMutAuthReq = bytes[0] != 0

	case MutAuthRequested:
		if len(bytes) != 1 {
			return c.rejected("set", kind, fmt.Errorf("context: MutAuthRequested wants 1 byte: %w", errs.InvalidParameter))
		}
		if bytes[0]&^mutAuthAllowedMask != 0 {
			return c.rejected("set", kind, fmt.Errorf("context: MutAuthRequested bit %#x not in allowed mask %#x: %w", bytes[0], mutAuthAllowedMask, errs.InvalidParameter))
		}
		if v := bytes[0]; v != 0 && (v&MutAuthBitRequested == 0 || v&(MutAuthBitEncapsulated|MutAuthBitGetDigests) == MutAuthBitEncapsulated|MutAuthBitGetDigests) {
			return c.rejected("set", kind, fmt.Errorf("context: MutAuthRequested value %#x is not an allowed policy combination: %w", v, errs.InvalidParameter))
		}
		c.cfg.mutAuthReq = bytes[0] != 0
		if bytes[0]&MutAuthBitEncapsulated != 0 {
			c.encap = encap.New()
		}

	case PskHint:
		if len(bytes) > MaxPSKHintLength {
			return c.rejected("set", kind, fmt.Errorf("context: PSK hint length %d exceeds MaxPSKHintLength %d: %w", len(bytes), MaxPSKHintLength, errs.InvalidParameter))
		}
		c.cfg.pskHint = append([]byte(nil), bytes...)

	default:
		return c.rejected("set", kind, fmt.Errorf("context: unknown data kind %s: %w", kind, errs.Unsupported))
	}

	accepted("set", kind)
	c.log.Debug("set_data", logger.String("kind", kind.String()))
	return nil
}

// GetData implements get_data. Connection-side kinds (algorithm
// selections, peer certificate material) may only be read with
// param.Location == LocationConnection; local-side kinds (this
// context's own configuration) may only be read with LocationLocal.
// For both sides the returned bytes are the values last stored on this
// context by SetData; the algorithms held in the connection state are
// not read.
func (c *Context) GetData(kind DataKind, param Parameter) ([]byte, error) {
	if isDebugOnlyData(kind) {
		return nil, c.rejected("get", kind, errDebugOnly)
	}

	connectionSide := map[DataKind]bool{
		MeasurementHashAlgo: true, BaseAsymAlgo: true, BaseHashAlgo: true,
		DHENamedGroup: true, AEADCipherSuite: true, ReqBaseAsymAlgo: true,
		KeySchedule: true, PeerPublicRootCertHash: true, PeerPublicCertChains: true,
	}

	if connectionSide[kind] && param.Location != LocationConnection {
		return nil, c.rejected("get", kind, fmt.Errorf("context: %s is a connection-side field, got location %v: %w", kind, param.Location, errs.InvalidParameter))
	}
	if !connectionSide[kind] && param.Location == LocationConnection {
		return nil, c.rejected("get", kind, fmt.Errorf("context: %s is a local-side field, got location Connection: %w", kind, errs.InvalidParameter))
	}

	var out []byte
	switch kind {
	case CapabilityFlags:
		v := c.cfg.capabilityFlags
		out = []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
	case CapabilityCTExponent:
		out = []byte{c.cfg.capabilityCTExponent}
	case MeasurementHashAlgo:
		out = []byte(c.cfg.measurementHashAlgo)
	case BaseAsymAlgo:
		out = []byte(c.cfg.baseAsymAlgo)
	case BaseHashAlgo:
		out = []byte(c.cfg.baseHashAlgo)
	case DHENamedGroup:
		out = []byte(c.cfg.dheNamedGroup)
	case AEADCipherSuite:
		out = []byte(c.cfg.aeadCipherSuite)
	case ReqBaseAsymAlgo:
		out = []byte(c.cfg.reqBaseAsymAlgo)
	case KeySchedule:
		out = []byte(c.cfg.keySchedule)
	case ResponseStateKind:
		out = []byte{byte(c.cfg.responseState)}
	case PeerPublicRootCertHash:
		out = append([]byte(nil), c.cfg.peerPublicRootCertHash...)
	case PeerPublicCertChains:
		out = append([]byte(nil), c.cfg.peerPublicCertChains...)
	case SlotCount:
		out = []byte{byte(c.cfg.slotCount)}
	case PublicCertChains:
		if int(param.Slot) >= MaxSlotCount {
			return nil, c.rejected("get", kind, fmt.Errorf("context: slot %d out of range: %w", param.Slot, errs.InvalidParameter))
		}
		out = append([]byte(nil), c.cfg.publicCertChains[param.Slot]...)
	case BasicMutAuthRequested:
		out = []byte{boolToByte(c.cfg.basicMutAuthReq)}
	case MutAuthRequested:
		out = []byte{boolToByte(c.cfg.mutAuthReq)}
	case PskHint:
		out = append([]byte(nil), c.cfg.pskHint...)
	default:
		return nil, c.rejected("get", kind, fmt.Errorf("context: unknown data kind %s: %w", kind, errs.Unsupported))
	}

	accepted("get", kind)
	return out, nil
}

func boolToByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
