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

package cryptobind

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func selfSignedDER(t *testing.T, cn string) []byte {
	t.Helper()
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: cn},
		NotBefore:    time.Now(),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &priv.PublicKey, priv)
	require.NoError(t, err)
	return der
}

func TestParseCertChainAndLeaf(t *testing.T) {
	root := selfSignedDER(t, "root")
	leaf := selfSignedDER(t, "leaf")

	hashSize := 32
	rootHash := make([]byte, hashSize)
	raw := append([]byte{0, 0, 0, 0}, rootHash...)
	raw = append(raw, root...)
	raw = append(raw, leaf...)

	chain, err := ParseCertChain(raw, hashSize)
	require.NoError(t, err)
	require.Equal(t, rootHash, chain.RootHash)

	got, err := chain.LeafCert()
	require.NoError(t, err)
	require.Equal(t, leaf, got)

	leafLess, err := chain.LeafLess()
	require.NoError(t, err)
	require.NotContains(t, string(leafLess), string(leaf))
}

func TestParseCertChainRejectsTruncated(t *testing.T) {
	_, err := ParseCertChain([]byte{1, 2, 3}, 32)
	require.Error(t, err)
}

func TestLeafCertRejectsEmptyChain(t *testing.T) {
	chain := &CertChain{Header: []byte{0, 0, 0, 0}, RootHash: make([]byte, 32)}
	_, err := chain.LeafCert()
	require.Error(t, err)
}
