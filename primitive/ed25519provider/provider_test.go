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

package ed25519provider

import (
	"testing"

	"github.com/sage-x-project/spdm-engine/primitive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerify(t *testing.T) {
	signer, pub, err := GenerateSigner()
	require.NoError(t, err)
	p := New()

	t.Run("ValidSignatureVerifies", func(t *testing.T) {
		message := []byte("spdm challenge transcript")
		sig, err := signer.Sign(primitive.AsymEd25519, message)
		require.NoError(t, err)
		assert.NoError(t, p.Verify(primitive.AsymEd25519, pub, message, sig))
	})

	t.Run("WrongMessageFails", func(t *testing.T) {
		sig, err := signer.Sign(primitive.AsymEd25519, []byte("message a"))
		require.NoError(t, err)
		err = p.Verify(primitive.AsymEd25519, pub, []byte("message b"), sig)
		assert.Error(t, err)
	})

	t.Run("TamperedSignatureFails", func(t *testing.T) {
		message := []byte("message")
		sig, err := signer.Sign(primitive.AsymEd25519, message)
		require.NoError(t, err)
		tampered := append([]byte(nil), sig...)
		tampered[0] ^= 0xFF
		assert.Error(t, p.Verify(primitive.AsymEd25519, pub, message, tampered))
	})

	t.Run("WrongAlgoRejected", func(t *testing.T) {
		_, err := signer.Sign(primitive.AsymECDSAP256, []byte("x"))
		assert.Error(t, err)
	})
}

func TestHash(t *testing.T) {
	p := New()
	for _, algo := range []primitive.HashAlgo{primitive.HashSHA256, primitive.HashSHA384, primitive.HashSHA512} {
		sum, err := p.Hash(algo, []byte("data"))
		require.NoError(t, err)
		assert.Equal(t, algo.Size(), len(sum))
	}
}

func TestHMACDeterministic(t *testing.T) {
	p := New()
	key := []byte("key-material")
	data := []byte("data")
	mac1, err := p.HMAC(primitive.HashSHA256, key, data)
	require.NoError(t, err)
	mac2, err := p.HMAC(primitive.HashSHA256, key, data)
	require.NoError(t, err)
	assert.Equal(t, mac1, mac2)
}

func TestRandomDistinct(t *testing.T) {
	p := New()
	a, err := p.Random(32)
	require.NoError(t, err)
	b, err := p.Random(32)
	require.NoError(t, err)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}
