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

// Package transcript holds the named ManagedBuffer set every SPDM
// authentication dialog accumulates (MessageA/B/C, MutB/MutC, M1M2,
// L1L2) and the per-session MessageK/F pair, plus the binding
// assembly that turns them into the byte strings signatures and HMACs
// are computed over.
package transcript

import "github.com/sage-x-project/spdm-engine/buffer"

// Set is the per-context TranscriptSet. A/B are never reset during a
// connection; C/MutC/M1M2 are reset after each CHALLENGE signature
// succeeds; L1L2 grows across successive GET_MEASUREMENTS and is reset
// when a measurement signature is produced.
type Set struct {
	MessageA *buffer.ManagedBuffer
	MessageB *buffer.ManagedBuffer
	MessageC *buffer.ManagedBuffer
	MutB     *buffer.ManagedBuffer
	MutC     *buffer.ManagedBuffer
	M1M2     *buffer.ManagedBuffer
	L1L2     *buffer.ManagedBuffer
}

// NewSet allocates a fresh TranscriptSet: A/MutC sized to the small
// class, B/MutB/M1M2/L1L2 sized large, C sized small (the CHALLENGE pair is
// short; cert material lives in MessageB, not MessageC).
func NewSet() *Set {
	return &Set{
		MessageA: buffer.New(buffer.SmallCapacity),
		MessageB: buffer.New(buffer.LargeCapacity),
		MessageC: buffer.New(buffer.SmallCapacity),
		MutB:     buffer.New(buffer.LargeCapacity),
		MutC:     buffer.New(buffer.SmallCapacity),
		M1M2:     buffer.New(buffer.LargeCapacity),
		L1L2:     buffer.New(buffer.LargeCapacity),
	}
}

// Reset clears every buffer. Called from init_context.
func (s *Set) Reset() {
	s.MessageA.Reset()
	s.MessageB.Reset()
	s.MessageC.Reset()
	s.MutB.Reset()
	s.MutC.Reset()
	s.M1M2.Reset()
	s.L1L2.Reset()
}

// ResetChallenge clears C, MutC and M1M2, the buffers scoped to a
// single CHALLENGE/CHALLENGE_AUTH exchange. Called after a successful
// challenge signature generation or verification.
func (s *Set) ResetChallenge() {
	s.MessageC.Reset()
	s.MutC.Reset()
	s.M1M2.Reset()
}

// ResetMeasurement clears L1L2. Called after a successful measurement
// signature.
func (s *Set) ResetMeasurement() {
	s.L1L2.Reset()
}

// SessionTranscript is the per-session MessageK/F pair referenced by a
// SessionInfo row. Both accumulate the pre-signature/MAC prefix first,
// then the signature/MAC bytes once computed, so HMACs over the tag
// itself read the correct slice.
type SessionTranscript struct {
	MessageK *buffer.ManagedBuffer
	MessageF *buffer.ManagedBuffer
}

// NewSessionTranscript allocates K and F at the large capacity class
// (KEY_EXCHANGE/FINISH payloads can carry a DHE public value and a
// certificate-bound signature).
func NewSessionTranscript() *SessionTranscript {
	return &SessionTranscript{
		MessageK: buffer.New(buffer.LargeCapacity),
		MessageF: buffer.New(buffer.LargeCapacity),
	}
}

// Reset clears both K and F. The session table does not call it: a
// freed row drops its SessionTranscript and Assign allocates a new one.
func (t *SessionTranscript) Reset() {
	t.MessageK.Reset()
	t.MessageF.Reset()
}
