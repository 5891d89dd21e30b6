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

// Package transport declares the transport collaborator (spec.md §1
// "Out of scope: the transport layer") — the PCIe DOE, MCTP, or other
// carrier a host wires in. The engine calls through this interface and
// never assumes a specific wire carrier.
package transport

import "context"

// Transport carries SPDM messages between this context and its peer.
// Send/Receive are the two suspension points spec.md §5 names: the
// engine treats them as atomic even though the host implementation may
// block on real I/O.
type Transport interface {
	// Encode wraps an SPDM message body in the carrier's framing
	// (transport_encode).
	Encode(message []byte) ([]byte, error)
	// Decode strips the carrier's framing, returning the SPDM message
	// body (transport_decode).
	Decode(framed []byte) ([]byte, error)
	// Send transmits an already-encoded frame to the peer.
	Send(ctx context.Context, frame []byte) error
	// Receive blocks until a frame from the peer is available.
	Receive(ctx context.Context) ([]byte, error)
}
