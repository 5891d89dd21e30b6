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

// Package sessiontable implements the fixed-capacity SPDM session
// table: session-ID allocation via the half-ID scheme, SessionInfo
// row lifecycle, and lookup by SessionId. Rows are indexed by
// SessionId; nothing stores a pointer into a row, so callers that need
// the secured-message context always obtain it by looking the row up
// again — the engine never builds the cyclic DeviceContext/SessionInfo
// back-reference the original implementation used.
package sessiontable

import (
	"fmt"

	"github.com/sage-x-project/spdm-engine/errs"
	"github.com/sage-x-project/spdm-engine/internal/metrics"
	"github.com/sage-x-project/spdm-engine/securedmsg"
	"github.com/sage-x-project/spdm-engine/transcript"
)

// InvalidSessionID is the reserved sentinel meaning "free slot" / "not
// a valid session."
const InvalidSessionID uint32 = 0

// invalidHalf is the half-ID sentinel the allocator scans for: a slot
// whose half equals this value is free.
const invalidHalf uint16 = 0

// State is the per-session lifecycle state, forward-only like
// ConnectionState.
type State int

const (
	StateNotStarted State = iota
	StateHandshaking
	StateEstablished
)

// SessionType mirrors the capability-derived encoding: the session
// carries no protection, HMAC-only integrity, or full AEAD+MAC.
type SessionType int

const (
	SessionTypeNone SessionType = iota
	SessionTypeMACOnly
	SessionTypeAEAD
)

// SecuredMessageContext is the opaque collaborator handle a SessionInfo
// row holds. The engine never reaches into it; only the securedmsg
// package and tests type-assert past this interface.
type SecuredMessageContext interface {
	Close() error
}

// CapabilityBitMAC and CapabilityBitEncrypt are the SPDM CAPABILITIES
// flag bits Assign inspects to pick a freshly assigned row's protection
// class: ENCRYPT_CAP implies AEAD+MAC, MAC_CAP alone implies MAC-only,
// neither implies no protection.
const (
	CapabilityBitMAC     uint32 = 1 << 4
	CapabilityBitEncrypt uint32 = 1 << 5
)

func sessionTypeFromCapabilities(flags uint32) SessionType {
	switch {
	case flags&CapabilityBitEncrypt != 0:
		return SessionTypeAEAD
	case flags&CapabilityBitMAC != 0:
		return SessionTypeMACOnly
	default:
		return SessionTypeNone
	}
}

// Info is one row of the session table.
type Info struct {
	SessionID         uint32
	UsePSK            bool
	MutualAuthRequest bool
	Type              SessionType
	State             State
	Transcript        *transcript.SessionTranscript
	SecuredMessage    SecuredMessageContext
}

// Establish transitions the row to StateEstablished, recorded under
// method (either "finish" or "psk_finish").
func (i *Info) Establish(method string) {
	i.State = StateEstablished
	metrics.SessionEstablished.WithLabelValues(method).Inc()
}

func (i *Info) reset() {
	i.SessionID = InvalidSessionID
	i.UsePSK = false
	i.MutualAuthRequest = false
	i.Type = SessionTypeNone
	i.State = StateNotStarted
	i.Transcript = nil
	i.SecuredMessage = nil
}

// Table is a fixed-capacity session table. Default capacity is small
// (4), matching a typical responder's slot budget.
type Table struct {
	rows            []Info
	latestSessionID uint32
}

// New returns a Table with the given fixed row capacity.
func New(capacity int) *Table {
	return &Table{rows: make([]Info, capacity)}
}

// AssignParams carries the negotiated state a free row needs seeded
// into it at assign time: which direction this context plays, the
// algorithm selection and PSK hint pushed into the secured-message
// context, and the capability flags the protection class is derived
// from.
type AssignParams struct {
	IsRequester     bool
	CapabilityFlags uint32
	AEADCipherSuite string
	BaseHashAlgo    string
	PSKHint         []byte
}

// Assign allocates a free row for sessionID (already combined from the
// peer and local halves by the caller), zeroes its transcript, and
// seeds a fresh secured-message context with params' algorithm
// selection and PSK hint. The row's protection class is set from
// params.CapabilityFlags: none, MAC-only, or AEAD+MAC. Rejects
// InvalidSessionID and a sessionID already present in a live row.
func (t *Table) Assign(sessionID uint32, usePSK bool, params AssignParams) (*Info, error) {
	if sessionID == InvalidSessionID {
		return nil, fmt.Errorf("sessiontable: cannot assign reserved session id: %w", errs.InvalidParameter)
	}
	for i := range t.rows {
		if t.rows[i].SessionID == sessionID {
			metrics.SessionsAssigned.WithLabelValues("duplicate").Inc()
			return nil, fmt.Errorf("sessiontable: session id %#x already live: %w", sessionID, errs.InvalidParameter)
		}
	}
	for i := range t.rows {
		if t.rows[i].SessionID == InvalidSessionID {
			sessionType := sessionTypeFromCapabilities(params.CapabilityFlags)

			secured := securedmsg.NewDefaultContext(params.IsRequester)
			secured.SetUsePSK(usePSK)
			secured.SetSessionType(securedmsg.SessionType(sessionType))
			if usePSK {
				secured.SetPSKHint(params.PSKHint)
			}
			if err := secured.SetAlgorithms(params.AEADCipherSuite, params.BaseHashAlgo); err != nil {
				metrics.SessionsAssigned.WithLabelValues("bad_algorithms").Inc()
				return nil, fmt.Errorf("sessiontable: seed secured-message context: %w", err)
			}

			t.rows[i] = Info{
				SessionID:      sessionID,
				UsePSK:         usePSK,
				Type:           sessionType,
				State:          StateNotStarted,
				Transcript:     transcript.NewSessionTranscript(),
				SecuredMessage: secured,
			}
			t.latestSessionID = sessionID
			metrics.SessionsAssigned.WithLabelValues("ok").Inc()
			metrics.SessionsActive.Inc()
			return &t.rows[i], nil
		}
	}
	metrics.SessionsAssigned.WithLabelValues("full").Inc()
	return nil, fmt.Errorf("sessiontable: table full: %w", errs.DeviceError)
}

// Free re-initializes the row for sessionID back to the free state.
func (t *Table) Free(sessionID uint32) error {
	for i := range t.rows {
		if t.rows[i].SessionID == sessionID && sessionID != InvalidSessionID {
			if t.rows[i].SecuredMessage != nil {
				_ = t.rows[i].SecuredMessage.Close()
			}
			t.rows[i].reset()
			metrics.SessionsFreed.Inc()
			metrics.SessionsActive.Dec()
			return nil
		}
	}
	return fmt.Errorf("sessiontable: session id %#x not found: %w", sessionID, errs.InvalidParameter)
}

// Lookup returns the row for sessionID, or an error if no live row
// matches.
func (t *Table) Lookup(sessionID uint32) (*Info, error) {
	if sessionID == InvalidSessionID {
		return nil, fmt.Errorf("sessiontable: invalid session id is never a valid lookup key: %w", errs.InvalidParameter)
	}
	for i := range t.rows {
		if t.rows[i].SessionID == sessionID {
			return &t.rows[i], nil
		}
	}
	return nil, fmt.Errorf("sessiontable: session id %#x not found: %w", sessionID, errs.InvalidParameter)
}

// LatestSessionID returns the most recently assigned session ID, used
// by the caller to continue a handshake still in the clear before the
// session ID has been echoed back by the peer.
func (t *Table) LatestSessionID() uint32 {
	return t.latestSessionID
}

// AllocateRequesterHalf scans the table for a free high-16-bit half and
// returns 0xFFFF - index as that half, unshifted; CombineSessionID
// places it in the high bits.
func (t *Table) AllocateRequesterHalf() (uint16, error) {
	return t.allocateHalf(true)
}

// AllocateResponderHalf scans the table for a free low-16-bit half.
func (t *Table) AllocateResponderHalf() (uint16, error) {
	return t.allocateHalf(false)
}

func (t *Table) allocateHalf(requester bool) (uint16, error) {
	for index := range t.rows {
		var half uint16
		if requester {
			half = uint16(t.rows[index].SessionID >> 16)
		} else {
			half = uint16(t.rows[index].SessionID & 0xFFFF)
		}
		if half == invalidHalf {
			return 0xFFFF - uint16(index), nil
		}
	}
	return 0, fmt.Errorf("sessiontable: no free half-id available: %w", errs.DeviceError)
}

// CombineSessionID assembles a 32-bit session ID from the requester's
// high half and the responder's low half.
func CombineSessionID(requesterHalf, responderHalf uint16) uint32 {
	return uint32(requesterHalf)<<16 | uint32(responderHalf)
}
