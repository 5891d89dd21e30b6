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

// Package cryptobind implements CryptoBindings: signature and HMAC
// generation/verification for CHALLENGE, MEASUREMENT, KEY_EXCHANGE,
// FINISH, PSK_EXCHANGE and PSK_FINISH, plus measurement-summary
// hashing and parsed certificate-chain handling.
package cryptobind

import (
	"encoding/asn1"
	"fmt"

	"github.com/sage-x-project/spdm-engine/errs"
)

// CertChain is a parsed SPDM certificate chain: the SPDM_CERT_CHAIN
// header, the root-cert hash (sized to the negotiated base hash
// algorithm) and the concatenated DER certificates that follow. The
// source's raw pointer-plus-offset cursor arithmetic
// (+sizeof(SPDM_CERT_CHAIN)+HashSize) becomes LeafCert, an accessor
// over this structure instead.
type CertChain struct {
	Header   []byte
	RootHash []byte
	Certs    []byte // concatenated DER certificates, back to back
}

// ParseCertChain splits raw wire bytes into header, root hash (sized
// hashSize) and the certificate slice.
func ParseCertChain(raw []byte, hashSize int) (*CertChain, error) {
	const headerSize = 4 // length(2) + reserved(2), per SPDM_CERT_CHAIN
	if len(raw) < headerSize+hashSize {
		return nil, fmt.Errorf("cryptobind: cert chain shorter than header+hash: %w", errs.MissingChain)
	}
	return &CertChain{
		Header:   raw[:headerSize],
		RootHash: raw[headerSize : headerSize+hashSize],
		Certs:    raw[headerSize+hashSize:],
	}, nil
}

// LeafCert returns the DER bytes of the last (leaf) certificate in the
// chain, the "leaf-less slice" complement: everything before it is the
// intermediate/root material hashed for H(Ct).
func (c *CertChain) LeafCert() ([]byte, error) {
	offsets, err := certOffsets(c.Certs)
	if err != nil {
		return nil, err
	}
	if len(offsets) == 0 {
		return nil, fmt.Errorf("cryptobind: cert chain has no certificates: %w", errs.MissingChain)
	}
	last := offsets[len(offsets)-1]
	return c.Certs[last.start:last.end], nil
}

// LeafLess returns the header, root hash and every certificate except
// the leaf, concatenated — the slice H(Ct) is computed over.
func (c *CertChain) LeafLess() ([]byte, error) {
	offsets, err := certOffsets(c.Certs)
	if err != nil {
		return nil, err
	}
	if len(offsets) == 0 {
		return nil, fmt.Errorf("cryptobind: cert chain has no certificates: %w", errs.MissingChain)
	}
	leafStart := offsets[len(offsets)-1].start
	out := make([]byte, 0, len(c.Header)+len(c.RootHash)+leafStart)
	out = append(out, c.Header...)
	out = append(out, c.RootHash...)
	out = append(out, c.Certs[:leafStart]...)
	return out, nil
}

type certSpan struct{ start, end int }

// certOffsets walks a concatenation of DER certificates using ASN.1
// length framing to find each certificate's boundaries, without fully
// parsing any of them.
func certOffsets(buf []byte) ([]certSpan, error) {
	var spans []certSpan
	offset := 0
	for offset < len(buf) {
		var raw asn1.RawValue
		rest, err := asn1.Unmarshal(buf[offset:], &raw)
		if err != nil {
			return nil, fmt.Errorf("cryptobind: malformed certificate at offset %d: %w", offset, errs.MissingChain)
		}
		certLen := len(buf[offset:]) - len(rest)
		spans = append(spans, certSpan{start: offset, end: offset + certLen})
		offset += certLen
	}
	return spans, nil
}
