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

package secp256k1provider

import (
	"testing"

	"github.com/sage-x-project/spdm-engine/primitive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecp256k1SignAndVerify(t *testing.T) {
	signer, pub, err := GenerateSecp256k1Signer()
	require.NoError(t, err)
	p := New()

	t.Run("ValidSignatureVerifies", func(t *testing.T) {
		message := []byte("spdm key exchange transcript")
		sig, err := signer.Sign(primitive.AsymECDSASecp256k1, message)
		require.NoError(t, err)
		assert.NoError(t, p.Verify(primitive.AsymECDSASecp256k1, pub, message, sig))
	})

	t.Run("WrongMessageFails", func(t *testing.T) {
		sig, err := signer.Sign(primitive.AsymECDSASecp256k1, []byte("message a"))
		require.NoError(t, err)
		err = p.Verify(primitive.AsymECDSASecp256k1, pub, []byte("message b"), sig)
		assert.Error(t, err)
	})

	t.Run("MalformedSignatureLengthRejected", func(t *testing.T) {
		err := p.Verify(primitive.AsymECDSASecp256k1, pub, []byte("m"), []byte{1, 2, 3})
		assert.Error(t, err)
	})
}

func TestP256SignAndVerify(t *testing.T) {
	signer, pub, err := GenerateP256Signer()
	require.NoError(t, err)
	p := New()

	message := []byte("spdm finish transcript")
	sig, err := signer.Sign(primitive.AsymECDSAP256, message)
	require.NoError(t, err)
	assert.NoError(t, p.Verify(primitive.AsymECDSAP256, pub, message, sig))
}

func TestSignerRejectsMismatchedAlgo(t *testing.T) {
	signer, _, err := GenerateSecp256k1Signer()
	require.NoError(t, err)
	_, err = signer.Sign(primitive.AsymECDSAP256, []byte("x"))
	assert.Error(t, err)
}

func TestMultipleKeyPairsHaveDifferentSignatures(t *testing.T) {
	s1, pub1, err := GenerateSecp256k1Signer()
	require.NoError(t, err)
	s2, pub2, err := GenerateSecp256k1Signer()
	require.NoError(t, err)

	assert.NotEqual(t, pub1, pub2)

	message := []byte("same message")
	sig1, err := s1.Sign(primitive.AsymECDSASecp256k1, message)
	require.NoError(t, err)
	sig2, err := s2.Sign(primitive.AsymECDSASecp256k1, message)
	require.NoError(t, err)
	assert.NotEqual(t, sig1, sig2)
}
