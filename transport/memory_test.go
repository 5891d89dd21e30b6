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

package transport

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryPairRoundTrip(t *testing.T) {
	requester, responder := MemoryPair(1)
	ctx := context.Background()

	require.NoError(t, requester.Send(ctx, []byte("GET_VERSION")))
	frame, err := responder.Receive(ctx)
	require.NoError(t, err)
	require.Equal(t, "GET_VERSION", string(frame))

	require.NoError(t, responder.Send(ctx, []byte("VERSION")))
	frame, err = requester.Receive(ctx)
	require.NoError(t, err)
	require.Equal(t, "VERSION", string(frame))
}

func TestMemoryPairReceiveRespectsCancellation(t *testing.T) {
	requester, _ := MemoryPair(0)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := requester.Receive(ctx)
	require.Error(t, err)
}

func TestEncodeDecodeIsIdentity(t *testing.T) {
	requester, _ := MemoryPair(1)
	encoded, err := requester.Encode([]byte("payload"))
	require.NoError(t, err)
	decoded, err := requester.Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, "payload", string(decoded))
}
