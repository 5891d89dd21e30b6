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

package connection

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestForwardOnlyProgression(t *testing.T) {
	info := New()
	require.Equal(t, NotStarted, info.State())

	require.NoError(t, info.CompleteVersion(0x12))
	require.Equal(t, AfterVersion, info.State())

	require.NoError(t, info.CompleteCapabilities(0xff))
	require.NoError(t, info.CompleteNegotiateAlgorithms(Algorithms{BaseHashAlgo: "sha256"}))
	require.NoError(t, info.CompleteDigests())
	require.NoError(t, info.CompleteCertificate([]byte("chain")))
	require.NoError(t, info.Authenticate())
	require.Equal(t, Authenticated, info.State())
}

func TestStateMachineRejectsBackwardOrRepeatedTransitions(t *testing.T) {
	info := New()
	require.NoError(t, info.CompleteVersion(1))
	require.NoError(t, info.CompleteCapabilities(0))
	// Repeating an already-completed step is rejected, it is not >
	// current state.
	err := info.CompleteVersion(2)
	require.Error(t, err)
}

func TestStateMachineRejectsSkippingAheadOutOfOrderReads(t *testing.T) {
	info := New()
	_, err := info.Algorithms()
	require.Error(t, err, "algorithms invalid before NEGOTIATE_ALGORITHMS")
}

func TestCertificateFieldsInvalidBeforeGetCertificate(t *testing.T) {
	info := New()
	require.Empty(t, info.PeerCertChain())
	require.NoError(t, info.CompleteVersion(1))
	require.NoError(t, info.CompleteCapabilities(0))
	require.NoError(t, info.CompleteNegotiateAlgorithms(Algorithms{}))
	require.NoError(t, info.CompleteDigests())
	require.NoError(t, info.CompleteCertificate([]byte("peer-chain")))
	require.Equal(t, "peer-chain", string(info.PeerCertChain()))
}

func TestLocalUsedCertChainRoundTrip(t *testing.T) {
	info := New()
	require.NoError(t, info.SetLocalUsedCertChain([]byte("local-chain")))
	require.Equal(t, "local-chain", string(info.LocalUsedCertChain()))
}

func TestResetReturnsToNotStarted(t *testing.T) {
	info := New()
	require.NoError(t, info.CompleteVersion(1))
	require.NoError(t, info.CompleteCapabilities(0))
	info.Reset()
	require.Equal(t, NotStarted, info.State())
	require.Empty(t, info.PeerCertChain())
	_, err := info.Algorithms()
	require.Error(t, err)
}

func TestStateStringer(t *testing.T) {
	require.Equal(t, "authenticated", Authenticated.String())
	require.Equal(t, "not_started", NotStarted.String())
}
