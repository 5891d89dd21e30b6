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

// Package securedmsg declares the secured-message AEAD collaborator
// (spec.md §1 "Out of scope: the secured-message AEAD layer") and
// ships one reference implementation, DefaultContext, built the way
// the teacher's SecureSession derives and uses its traffic keys:
// HKDF-Extract/Expand over the handshake-binding hash (TH1, then TH2),
// ChaCha20-
// Poly1305 AEAD with a random per-message nonce prepended to the
// ciphertext.
package securedmsg

// SessionType selects what protection class a session has.
type SessionType int

const (
	SessionTypeNone SessionType = iota
	SessionTypeMACOnly
	SessionTypeAEAD
)

// Context is the per-session secured-message collaborator. A
// sessiontable.Info row holds exactly one Context (as a
// sessiontable.SecuredMessageContext), released when the row is freed.
type Context interface {
	// Init seeds the context from TH1, the key-exchange-time
	// handshake-binding hash, deriving traffic and finished keys.
	Init(th1 []byte) error
	// SetAlgorithms records the negotiated AEAD cipher suite and hash
	// algorithm names, used to size keys and nonces.
	SetAlgorithms(aeadCipherSuite, baseHashAlgo string) error
	// SetUsePSK marks the session as PSK-derived, which adds the PSK
	// hint to the key-derivation input.
	SetUsePSK(usePSK bool)
	// SetSessionType records the negotiated protection class.
	SetSessionType(t SessionType)
	// SetPSKHint installs the PSK hint bytes driving key derivation on
	// the PSK path. No-op when usePSK is false.
	SetPSKHint(hint []byte)
	// HMACWithRequestFinishedKey computes HMAC(request_finished_key,
	// data) under the negotiated hash algorithm.
	HMACWithRequestFinishedKey(data []byte) ([]byte, error)
	// HMACWithResponseFinishedKey computes HMAC(response_finished_key,
	// data).
	HMACWithResponseFinishedKey(data []byte) ([]byte, error)
	// Encode produces the secured-message wire form of plaintext for
	// the session's outbound direction.
	Encode(plaintext []byte) ([]byte, error)
	// Decode recovers the plaintext from a secured-message wire form
	// received on the session's inbound direction.
	Decode(wire []byte) ([]byte, error)
	// GenerateDataKey derives TH2 into the session's data-phase
	// (post-FINISH) traffic keys, replacing the handshake keys.
	GenerateDataKey(th2 []byte) error
	// Close releases any key material held by the context.
	Close() error
}
