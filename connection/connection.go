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

// Package connection implements ConnectionInfo: the state of the
// current session-less dialog with one peer, moving forward-only
// through version and capability negotiation to Authenticated.
package connection

import (
	"fmt"

	"github.com/sage-x-project/spdm-engine/buffer"
	"github.com/sage-x-project/spdm-engine/errs"
	"github.com/sage-x-project/spdm-engine/internal/metrics"
)

// State is the forward-only connection negotiation state machine.
type State int

const (
	NotStarted State = iota
	AfterVersion
	AfterCapabilities
	AfterNegotiateAlgorithms
	AfterDigests
	AfterCertificate
	Authenticated
)

func (s State) String() string {
	switch s {
	case AfterVersion:
		return "after_version"
	case AfterCapabilities:
		return "after_capabilities"
	case AfterNegotiateAlgorithms:
		return "after_negotiate_algorithms"
	case AfterDigests:
		return "after_digests"
	case AfterCertificate:
		return "after_certificate"
	case Authenticated:
		return "authenticated"
	default:
		return "not_started"
	}
}

// Algorithms holds the negotiated algorithm suite, valid only once
// State >= AfterNegotiateAlgorithms.
type Algorithms struct {
	MeasurementHashAlgo string
	BaseAsymAlgo        string
	BaseHashAlgo        string
	DHENamedGroup       string
	AEADCipherSuite     string
	ReqBaseAsymAlgo     string
	KeySchedule         string
}

// Info is the session-less ConnectionInfo for one peer dialog.
type Info struct {
	state State

	Version      uint8
	Capabilities uint32

	algorithms    Algorithms
	algorithmsSet bool

	peerCertChain       *buffer.ManagedBuffer
	localUsedCertChain  *buffer.ManagedBuffer
}

// New allocates a fresh ConnectionInfo with its peer/local cert-chain
// scratch buffers sized to the large class.
func New() *Info {
	return &Info{
		peerCertChain:      buffer.New(buffer.LargeCapacity),
		localUsedCertChain: buffer.New(buffer.LargeCapacity),
	}
}

// State returns the current negotiation state.
func (i *Info) State() State { return i.state }

// advance moves the state machine forward, rejecting any transition
// that is not strictly ahead of the current state.
func (i *Info) advance(target State) error {
	if target <= i.state {
		return fmt.Errorf("connection: cannot move from %s to %s: %w", i.state, target, errs.InvalidState)
	}
	metrics.ConnectionTransitions.WithLabelValues(target.String()).Inc()
	i.state = target
	return nil
}

// CompleteVersion records the negotiated version and advances to
// AfterVersion.
func (i *Info) CompleteVersion(version uint8) error {
	if err := i.advance(AfterVersion); err != nil {
		return err
	}
	i.Version = version
	return nil
}

// CompleteCapabilities records peer capability flags and advances to
// AfterCapabilities.
func (i *Info) CompleteCapabilities(capabilities uint32) error {
	if err := i.advance(AfterCapabilities); err != nil {
		return err
	}
	i.Capabilities = capabilities
	return nil
}

// CompleteNegotiateAlgorithms records the selected algorithm suite and
// advances to AfterNegotiateAlgorithms. Algorithm fields are invalid
// until this call succeeds.
func (i *Info) CompleteNegotiateAlgorithms(algos Algorithms) error {
	if err := i.advance(AfterNegotiateAlgorithms); err != nil {
		return err
	}
	i.algorithms = algos
	i.algorithmsSet = true
	return nil
}

// Algorithms returns the negotiated algorithm suite. Fails with
// InvalidState if NEGOTIATE_ALGORITHMS has not completed.
func (i *Info) Algorithms() (Algorithms, error) {
	if !i.algorithmsSet {
		return Algorithms{}, fmt.Errorf("connection: algorithms not yet negotiated: %w", errs.InvalidState)
	}
	return i.algorithms, nil
}

// CompleteDigests advances to AfterDigests, recorded once GET_DIGESTS/
// DIGESTS has completed.
func (i *Info) CompleteDigests() error {
	return i.advance(AfterDigests)
}

// CompleteCertificate copies the peer certificate chain into the
// connection's own bounded buffer (the caller's slice is not retained)
// and advances to AfterCertificate. Fields become valid only now, after
// GET_CERTIFICATE.
func (i *Info) CompleteCertificate(peerCertChain []byte) error {
	if err := i.advance(AfterCertificate); err != nil {
		return err
	}
	i.peerCertChain.Reset()
	if err := i.peerCertChain.Append(peerCertChain); err != nil {
		return fmt.Errorf("connection: store peer cert chain: %w", err)
	}
	return nil
}

// PeerCertChain returns the stored peer certificate chain bytes, valid
// only once State() >= AfterCertificate.
func (i *Info) PeerCertChain() []byte {
	return i.peerCertChain.Data()
}

// SetLocalUsedCertChain records which local chain the engine used for
// a responder response or requester mutual-auth signature.
func (i *Info) SetLocalUsedCertChain(chain []byte) error {
	i.localUsedCertChain.Reset()
	if err := i.localUsedCertChain.Append(chain); err != nil {
		return fmt.Errorf("connection: store local used cert chain: %w", err)
	}
	return nil
}

// LocalUsedCertChain returns the chain most recently recorded by
// SetLocalUsedCertChain.
func (i *Info) LocalUsedCertChain() []byte {
	return i.localUsedCertChain.Data()
}

// Authenticate advances to Authenticated, the terminal state reached
// after a successful CHALLENGE verification.
func (i *Info) Authenticate() error {
	return i.advance(Authenticated)
}

// Reset returns the ConnectionInfo to NotStarted and clears cert-chain
// buffers, mirroring init_context.
func (i *Info) Reset() {
	i.state = NotStarted
	i.Version = 0
	i.Capabilities = 0
	i.algorithms = Algorithms{}
	i.algorithmsSet = false
	i.peerCertChain.Reset()
	i.localUsedCertChain.Reset()
}
