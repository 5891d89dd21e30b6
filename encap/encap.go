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

// Package encap implements EncapContext, the state a requester uses to
// run an embedded responder flow during mutual authentication: the
// requester issues DIGESTS/CERTIFICATE on demand from inside what is,
// at the transport level, still a single CHALLENGE dialog.
package encap

import (
	"fmt"

	"github.com/sage-x-project/spdm-engine/buffer"
	"github.com/sage-x-project/spdm-engine/errs"
)

// State is the embedded-responder flow's own small state machine,
// independent of the outer ConnectionState.
type State int

const (
	StateIdle State = iota
	StateRequestedDigests
	StateRequestedCertificate
	StateComplete
)

// Context holds the counters and scratch buffer for one embedded
// responder exchange.
type Context struct {
	State             State
	ErrorCount        int
	RequestID         uint8
	Slot              uint8
	MeasurementHashType uint8

	certChain *buffer.ManagedBuffer
}

// New allocates an EncapContext with its certificate-chain scratch
// buffer sized to the large class.
func New() *Context {
	return &Context{certChain: buffer.New(buffer.LargeCapacity)}
}

// NextRequestID increments and returns the request-id counter used to
// correlate encapsulated request/response pairs.
func (c *Context) NextRequestID() uint8 {
	c.RequestID++
	return c.RequestID
}

// RecordError bumps the error counter, used by the caller to decide
// when to abandon the embedded flow.
func (c *Context) RecordError() {
	c.ErrorCount++
}

// BeginDigests transitions to StateRequestedDigests. Fails if the flow
// has already moved past this point.
func (c *Context) BeginDigests() error {
	if c.State != StateIdle {
		return fmt.Errorf("encap: cannot request digests from state %d: %w", c.State, errs.InvalidState)
	}
	c.State = StateRequestedDigests
	return nil
}

// BeginCertificate transitions to StateRequestedCertificate, selecting
// slot.
func (c *Context) BeginCertificate(slot uint8) error {
	if c.State != StateRequestedDigests {
		return fmt.Errorf("encap: cannot request certificate from state %d: %w", c.State, errs.InvalidState)
	}
	c.Slot = slot
	c.State = StateRequestedCertificate
	return nil
}

// AppendCertificateChunk accumulates a fragment of the encapsulated
// certificate chain (CERTIFICATE responses may arrive in multiple
// chunks bounded by the negotiated data transfer size).
func (c *Context) AppendCertificateChunk(chunk []byte) error {
	if c.State != StateRequestedCertificate {
		return fmt.Errorf("encap: cannot append certificate chunk from state %d: %w", c.State, errs.InvalidState)
	}
	if err := c.certChain.Append(chunk); err != nil {
		return fmt.Errorf("encap: append certificate chunk: %w", err)
	}
	return nil
}

// Complete transitions to StateComplete and returns the accumulated
// certificate chain bytes.
func (c *Context) Complete() ([]byte, error) {
	if c.State != StateRequestedCertificate {
		return nil, fmt.Errorf("encap: cannot complete from state %d: %w", c.State, errs.InvalidState)
	}
	c.State = StateComplete
	return c.certChain.Data(), nil
}

// Reset returns the context to its initial idle state, clearing the
// certificate-chain scratch buffer. Called by init_context and after a
// completed or abandoned embedded flow.
func (c *Context) Reset() {
	c.State = StateIdle
	c.ErrorCount = 0
	c.RequestID = 0
	c.Slot = 0
	c.MeasurementHashType = 0
	c.certChain.Reset()
}
