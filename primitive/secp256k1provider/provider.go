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

// Package secp256k1provider is a reference primitive.Provider/
// primitive.Signer pair for ECDSA over secp256k1 and P-256, grounded on
// the teacher's crypto/keys Secp256k1 key pair.
package secp256k1provider

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/x509"
	"fmt"
	"hash"
	"io"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/sage-x-project/spdm-engine/errs"
	"github.com/sage-x-project/spdm-engine/primitive"
)

// Provider implements primitive.Provider for ECDSA over secp256k1
// (github.com/decred/dcrd/dcrec/secp256k1) and NIST P-256 (stdlib
// crypto/elliptic), the two curves spec.md's AsymAlgo enumerates
// besides Ed25519.
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
		return nil, fmt.Errorf("secp256k1provider: unknown hash algo %d: %w", algo, errs.Unsupported)
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

// signature is a fixed-width r||s encoding, matching the teacher's
// serializeSignature/deserializeSignature pair rather than ASN.1 DER,
// so the wire size is predictable for transcript buffers.
func serializeSignature(r, s *big.Int) []byte {
	rBytes, sBytes := r.Bytes(), s.Bytes()
	out := make([]byte, 64)
	copy(out[32-len(rBytes):32], rBytes)
	copy(out[64-len(sBytes):64], sBytes)
	return out
}

func deserializeSignature(data []byte) (*big.Int, *big.Int, error) {
	if len(data) != 64 {
		return nil, nil, fmt.Errorf("secp256k1provider: signature must be 64 bytes, got %d: %w", len(data), errs.SecurityViolation)
	}
	r := new(big.Int).SetBytes(data[:32])
	s := new(big.Int).SetBytes(data[32:])
	return r, s, nil
}

// Verify checks an r||s ECDSA signature over the SHA-256 digest of
// message. Both AsymECDSAP256 and AsymECDSASecp256k1 share this path;
// the curve comes from pub's own type.
func (p *Provider) Verify(algo primitive.AsymAlgo, pub crypto.PublicKey, message, sig []byte) error {
	if algo != primitive.AsymECDSAP256 && algo != primitive.AsymECDSASecp256k1 {
		return fmt.Errorf("secp256k1provider: unsupported asym algo %d: %w", algo, errs.Unsupported)
	}
	ecPub, ok := pub.(*ecdsa.PublicKey)
	if !ok {
		return fmt.Errorf("secp256k1provider: public key is not ECDSA: %w", errs.SecurityViolation)
	}
	r, s, err := deserializeSignature(sig)
	if err != nil {
		return err
	}
	digest := sha256.Sum256(message)
	if !ecdsa.Verify(ecPub, digest[:], r, s) {
		return fmt.Errorf("secp256k1provider: verification failed: %w", errs.SecurityViolation)
	}
	return nil
}

func (p *Provider) LeafPublicKey(leafDER []byte) (crypto.PublicKey, error) {
	cert, err := x509.ParseCertificate(leafDER)
	if err != nil {
		return nil, fmt.Errorf("secp256k1provider: parse leaf certificate: %w", errs.SecurityViolation)
	}
	pub, ok := cert.PublicKey.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("secp256k1provider: leaf certificate key is not ECDSA: %w", errs.SecurityViolation)
	}
	return pub, nil
}

func (p *Provider) Random(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return nil, fmt.Errorf("secp256k1provider: rng: %w", errs.DeviceError)
	}
	return buf, nil
}

// Signer implements primitive.Signer for ECDSA over secp256k1 or P-256,
// backed by an in-memory private key.
type Signer struct {
	algo primitive.AsymAlgo
	priv *ecdsa.PrivateKey
}

// NewSigner wraps an existing ECDSA private key under the given algo.
func NewSigner(algo primitive.AsymAlgo, priv *ecdsa.PrivateKey) *Signer {
	return &Signer{algo: algo, priv: priv}
}

// GenerateSecp256k1Signer creates a fresh secp256k1 key pair, following
// the teacher's GenerateSecp256k1KeyPair (secp256k1.GeneratePrivateKey
// then ToECDSA), and wraps it as a Signer.
func GenerateSecp256k1Signer() (*Signer, *ecdsa.PublicKey, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, nil, fmt.Errorf("secp256k1provider: generate key: %w", err)
	}
	ecPriv := priv.ToECDSA()
	return &Signer{algo: primitive.AsymECDSASecp256k1, priv: ecPriv}, &ecPriv.PublicKey, nil
}

// GenerateP256Signer creates a fresh NIST P-256 key pair.
func GenerateP256Signer() (*Signer, *ecdsa.PublicKey, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("secp256k1provider: generate key: %w", err)
	}
	return &Signer{algo: primitive.AsymECDSAP256, priv: priv}, &priv.PublicKey, nil
}

func (s *Signer) Sign(algo primitive.AsymAlgo, message []byte) ([]byte, error) {
	if algo != s.algo {
		return nil, fmt.Errorf("secp256k1provider: signer configured for algo %d, asked for %d: %w", s.algo, algo, errs.Unsupported)
	}
	digest := sha256.Sum256(message)
	r, s2, err := ecdsa.Sign(rand.Reader, s.priv, digest[:])
	if err != nil {
		return nil, fmt.Errorf("secp256k1provider: sign: %w", err)
	}
	return serializeSignature(r, s2), nil
}
