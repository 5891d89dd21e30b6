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

// Package ed25519provider is a reference primitive.Provider/primitive.Signer
// pair for the Ed25519 base asymmetric algorithm, grounded on the
// teacher's crypto/keys Ed25519 key pair.
package ed25519provider

import (
	"crypto"
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/x509"
	"fmt"
	"hash"
	"io"

	"github.com/sage-x-project/spdm-engine/errs"
	"github.com/sage-x-project/spdm-engine/primitive"
)

// Provider implements primitive.Provider using stdlib crypto/ed25519
// and crypto/x509.
type Provider struct{}

// New returns a ready-to-use Provider.
func New() *Provider { return &Provider{} }

func (p *Provider) Hash(algo primitive.HashAlgo, data []byte) ([]byte, error) {
	switch algo {
	case primitive.HashSHA256:
		sum := sha256.Sum256(data)
		return sum[:], nil
	case primitive.HashSHA384:
		sum := sha512.Sum384(data)
		return sum[:], nil
	case primitive.HashSHA512:
		sum := sha512.Sum512(data)
		return sum[:], nil
	default:
		return nil, fmt.Errorf("ed25519provider: unknown hash algo %d: %w", algo, errs.Unsupported)
	}
}

func (p *Provider) HMAC(algo primitive.HashAlgo, key, data []byte) ([]byte, error) {
	mac := hmac.New(newHashFunc(algo), key)
	mac.Write(data)
	return mac.Sum(nil), nil
}

func newHashFunc(algo primitive.HashAlgo) func() hash.Hash {
	switch algo {
	case primitive.HashSHA384:
		return func() hash.Hash { return sha512.New384() }
	case primitive.HashSHA512:
		return func() hash.Hash { return sha512.New() }
	default:
		return func() hash.Hash { return sha256.New() }
	}
}

// Verify checks an Ed25519 signature. Only AsymEd25519 is supported;
// other algos are rejected so a misconfigured connection fails loudly
// instead of silently verifying against the wrong curve.
func (p *Provider) Verify(algo primitive.AsymAlgo, pub crypto.PublicKey, message, sig []byte) error {
	if algo != primitive.AsymEd25519 {
		return fmt.Errorf("ed25519provider: unsupported asym algo %d: %w", algo, errs.Unsupported)
	}
	edPub, ok := pub.(ed25519.PublicKey)
	if !ok {
		return fmt.Errorf("ed25519provider: public key is not ed25519: %w", errs.SecurityViolation)
	}
	if !ed25519.Verify(edPub, message, sig) {
		return fmt.Errorf("ed25519provider: verification failed: %w", errs.SecurityViolation)
	}
	return nil
}

func (p *Provider) LeafPublicKey(leafDER []byte) (crypto.PublicKey, error) {
	cert, err := x509.ParseCertificate(leafDER)
	if err != nil {
		return nil, fmt.Errorf("ed25519provider: parse leaf certificate: %w", errs.SecurityViolation)
	}
	pub, ok := cert.PublicKey.(ed25519.PublicKey)
	if !ok {
		return nil, fmt.Errorf("ed25519provider: leaf certificate key is not ed25519: %w", errs.SecurityViolation)
	}
	return pub, nil
}

func (p *Provider) Random(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return nil, fmt.Errorf("ed25519provider: rng: %w", errs.DeviceError)
	}
	return buf, nil
}

// Signer implements primitive.Signer: requester_data_sign /
// responder_data_sign backed by an in-memory Ed25519 private key. A
// host with real key custody (HSM, TPM) implements primitive.Signer
// itself instead of using this type.
type Signer struct {
	priv ed25519.PrivateKey
}

// NewSigner wraps an existing Ed25519 private key.
func NewSigner(priv ed25519.PrivateKey) *Signer {
	return &Signer{priv: priv}
}

// GenerateSigner creates a fresh Ed25519 key pair and wraps it.
func GenerateSigner() (*Signer, ed25519.PublicKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("ed25519provider: generate key: %w", err)
	}
	return &Signer{priv: priv}, pub, nil
}

func (s *Signer) Sign(algo primitive.AsymAlgo, message []byte) ([]byte, error) {
	if algo != primitive.AsymEd25519 {
		return nil, fmt.Errorf("ed25519provider: signer does not support algo %d: %w", algo, errs.Unsupported)
	}
	return ed25519.Sign(s.priv, message), nil
}
