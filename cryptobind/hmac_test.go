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
	"testing"

	"github.com/sage-x-project/spdm-engine/primitive"
	"github.com/sage-x-project/spdm-engine/primitive/ed25519provider"
	"github.com/sage-x-project/spdm-engine/transcript"
	"github.com/stretchr/testify/require"
)

func TestKeyExchangeRspHmacRoundTrip(t *testing.T) {
	p := ed25519provider.New()
	binding := HmacBinding{HashAlgo: primitive.HashSHA256}

	set := transcript.NewSet()
	require.NoError(t, set.MessageA.Append([]byte("A")))
	sess := transcript.NewSessionTranscript()
	require.NoError(t, sess.MessageK.Append([]byte("K")))
	key := []byte("response-finished-key")

	tag, err := binding.GenerateKeyExchangeRspHmac(p, set, sess, []byte("HCT"), key)
	require.NoError(t, err)
	require.NoError(t, binding.VerifyKeyExchangeRspHmac(p, set, sess, []byte("HCT"), key, tag))
}

func TestKeyExchangeRspHmacRejectsWrongKey(t *testing.T) {
	p := ed25519provider.New()
	binding := HmacBinding{HashAlgo: primitive.HashSHA256}
	set := transcript.NewSet()
	sess := transcript.NewSessionTranscript()

	tag, err := binding.GenerateKeyExchangeRspHmac(p, set, sess, nil, []byte("key-a"))
	require.NoError(t, err)
	err = binding.VerifyKeyExchangeRspHmac(p, set, sess, nil, []byte("key-b"), tag)
	require.Error(t, err)
}

func TestFinishHmacRoundTrip(t *testing.T) {
	p := ed25519provider.New()
	binding := HmacBinding{HashAlgo: primitive.HashSHA256}
	set := transcript.NewSet()
	require.NoError(t, set.MessageA.Append([]byte("A")))
	sess := transcript.NewSessionTranscript()
	require.NoError(t, sess.MessageK.Append([]byte("K")))
	require.NoError(t, sess.MessageF.Append([]byte("F")))

	reqKey := []byte("request-finished-key")
	reqTag, err := binding.GenerateFinishReqHmac(p, set, sess, []byte("HCT"), []byte("HCM"), reqKey)
	require.NoError(t, err)
	require.NoError(t, binding.VerifyFinishReqHmac(p, set, sess, []byte("HCT"), []byte("HCM"), reqKey, reqTag))

	rspKey := []byte("response-finished-key")
	rspTag, err := binding.GenerateFinishRspHmac(p, set, sess, []byte("HCT"), []byte("HCM"), rspKey)
	require.NoError(t, err)
	require.NoError(t, binding.VerifyFinishRspHmac(p, set, sess, []byte("HCT"), []byte("HCM"), rspKey, rspTag))
}

func TestPskVariantsOmitCertHashes(t *testing.T) {
	p := ed25519provider.New()
	binding := HmacBinding{HashAlgo: primitive.HashSHA256}
	set := transcript.NewSet()
	require.NoError(t, set.MessageA.Append([]byte("A")))
	sess := transcript.NewSessionTranscript()
	require.NoError(t, sess.MessageK.Append([]byte("K")))
	require.NoError(t, sess.MessageF.Append([]byte("F")))

	key := []byte("psk-response-finished-key")
	tag, err := binding.GeneratePskExchangeRspHmac(p, set, sess, key)
	require.NoError(t, err)
	require.NoError(t, binding.VerifyPskExchangeRspHmac(p, set, sess, key, tag))

	finishKey := []byte("psk-request-finished-key")
	finishTag, err := binding.GeneratePskFinishReqHmac(p, set, sess, finishKey)
	require.NoError(t, err)
	require.NoError(t, binding.VerifyPskFinishReqHmac(p, set, sess, finishKey, finishTag))

	// PSK tag must differ from the cert-bound variant given the same keys.
	certTag, err := binding.GenerateKeyExchangeRspHmac(p, set, sess, []byte("HCT"), key)
	require.NoError(t, err)
	require.NotEqual(t, tag, certTag)
}
