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

package securedmsg

import (
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"github.com/sage-x-project/spdm-engine/errs"
)

// DefaultContext is the reference Context: ChaCha20-Poly1305 AEAD with
// directional (requester/responder) keys derived from the handshake-
// binding hash via a single HKDF-Expand per phase, the same shape as
// the teacher's deriveDirectionalKeys — domain-separated info strings
// instead of a single shared key.
type DefaultContext struct {
	isRequester bool
	usePSK      bool
	pskHint     []byte
	sessionType SessionType

	requestFinishedKey  []byte
	responseFinishedKey []byte

	outKey []byte
	inKey  []byte

	aeadOut cipher.AEAD
	aeadIn  cipher.AEAD
}

// NewDefaultContext returns a Context fixed to one direction: a
// requester instance encodes with the request-direction key and
// decodes with the response-direction key, and vice versa for a
// responder instance.
func NewDefaultContext(isRequester bool) *DefaultContext {
	return &DefaultContext{isRequester: isRequester, sessionType: SessionTypeAEAD}
}

// SetAlgorithms validates the negotiated AEAD cipher suite: only
// "chacha20poly1305" and the empty string are accepted. An empty
// aeadCipherSuite means the session's protection class is None or
// MAC-only, which this reference context does not itself implement
// encoding for. Neither name is stored, and baseHashAlgo is not
// checked.
func (c *DefaultContext) SetAlgorithms(aeadCipherSuite, baseHashAlgo string) error {
	if aeadCipherSuite != "" && aeadCipherSuite != "chacha20poly1305" {
		return fmt.Errorf("securedmsg: unsupported AEAD cipher suite %q: %w", aeadCipherSuite, errs.Unsupported)
	}
	return nil
}

func (c *DefaultContext) SetUsePSK(usePSK bool) { c.usePSK = usePSK }

func (c *DefaultContext) SetSessionType(t SessionType) { c.sessionType = t }

func (c *DefaultContext) SetPSKHint(hint []byte) { c.pskHint = append([]byte(nil), hint...) }

// Init derives the four handshake-phase keys (request/response enc +
// finished) from TH1 via one HKDF-Expand, domain-separated by info
// string, mirroring deriveDirectionalKeys's single-expansion-then-slice
// shape.
func (c *DefaultContext) Init(th1 []byte) error {
	salt := th1
	ikm := th1
	if c.usePSK {
		ikm = append(append([]byte(nil), th1...), c.pskHint...)
	}
	material := make([]byte, 128)
	info := []byte("spdm-handshake-keys-v1")
	reader := hkdf.New(sha256.New, ikm, salt, info)
	if _, err := io.ReadFull(reader, material); err != nil {
		return fmt.Errorf("securedmsg: derive handshake keys: %w", errs.DeviceError)
	}

	requestEncKey := material[0:32]
	responseEncKey := material[32:64]
	c.requestFinishedKey = material[64:96]
	c.responseFinishedKey = material[96:128]

	if c.isRequester {
		c.outKey, c.inKey = requestEncKey, responseEncKey
	} else {
		c.outKey, c.inKey = responseEncKey, requestEncKey
	}
	return c.initAEADs()
}

// GenerateDataKey re-derives the directional traffic keys from TH2,
// the finish-time handshake-binding hash, replacing the handshake-
// phase keys with data-phase keys. Finished keys are not re-derived:
// they are only used up through FINISH/FINISH_RSP.
func (c *DefaultContext) GenerateDataKey(th2 []byte) error {
	material := make([]byte, 64)
	reader := hkdf.New(sha256.New, th2, th2, []byte("spdm-data-keys-v1"))
	if _, err := io.ReadFull(reader, material); err != nil {
		return fmt.Errorf("securedmsg: derive data keys: %w", errs.DeviceError)
	}
	requestEncKey := material[0:32]
	responseEncKey := material[32:64]
	if c.isRequester {
		c.outKey, c.inKey = requestEncKey, responseEncKey
	} else {
		c.outKey, c.inKey = responseEncKey, requestEncKey
	}
	return c.initAEADs()
}

func (c *DefaultContext) initAEADs() error {
	var err error
	c.aeadOut, err = chacha20poly1305.New(c.outKey)
	if err != nil {
		return fmt.Errorf("securedmsg: create outbound AEAD: %w", err)
	}
	c.aeadIn, err = chacha20poly1305.New(c.inKey)
	if err != nil {
		return fmt.Errorf("securedmsg: create inbound AEAD: %w", err)
	}
	return nil
}

func (c *DefaultContext) HMACWithRequestFinishedKey(data []byte) ([]byte, error) {
	return c.hmacWith(c.requestFinishedKey, data)
}

func (c *DefaultContext) HMACWithResponseFinishedKey(data []byte) ([]byte, error) {
	return c.hmacWith(c.responseFinishedKey, data)
}

func (c *DefaultContext) hmacWith(key, data []byte) ([]byte, error) {
	if key == nil {
		return nil, fmt.Errorf("securedmsg: context not initialized: %w", errs.InvalidState)
	}
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return mac.Sum(nil), nil
}

// Encode seals plaintext for the session's outbound direction.
// Wire format: nonce || ciphertext, matching the teacher's Encrypt.
func (c *DefaultContext) Encode(plaintext []byte) ([]byte, error) {
	if c.aeadOut == nil {
		return nil, fmt.Errorf("securedmsg: context not initialized: %w", errs.InvalidState)
	}
	nonce := make([]byte, chacha20poly1305.NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("securedmsg: generate nonce: %w", errs.DeviceError)
	}
	ciphertext := c.aeadOut.Seal(nil, nonce, plaintext, nil)
	out := make([]byte, 0, len(nonce)+len(ciphertext))
	out = append(out, nonce...)
	out = append(out, ciphertext...)
	return out, nil
}

// Decode opens a wire-format message produced by Encode on the peer's
// outbound direction.
func (c *DefaultContext) Decode(wire []byte) ([]byte, error) {
	if c.aeadIn == nil {
		return nil, fmt.Errorf("securedmsg: context not initialized: %w", errs.InvalidState)
	}
	if len(wire) < chacha20poly1305.NonceSize {
		return nil, fmt.Errorf("securedmsg: wire message shorter than nonce: %w", errs.DeviceError)
	}
	nonce := wire[:chacha20poly1305.NonceSize]
	ciphertext := wire[chacha20poly1305.NonceSize:]
	plaintext, err := c.aeadIn.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("securedmsg: decode: %w", errs.SecurityViolation)
	}
	return plaintext, nil
}

func (c *DefaultContext) Close() error {
	c.outKey = nil
	c.inKey = nil
	c.requestFinishedKey = nil
	c.responseFinishedKey = nil
	c.pskHint = nil
	c.aeadOut = nil
	c.aeadIn = nil
	return nil
}
