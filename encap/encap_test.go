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

package encap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmbeddedFlowHappyPath(t *testing.T) {
	c := New()
	require.NoError(t, c.BeginDigests())
	require.NoError(t, c.BeginCertificate(0))
	require.NoError(t, c.AppendCertificateChunk([]byte("chunk1")))
	require.NoError(t, c.AppendCertificateChunk([]byte("chunk2")))
	chain, err := c.Complete()
	require.NoError(t, err)
	require.Equal(t, "chunk1chunk2", string(chain))
	require.Equal(t, StateComplete, c.State)
}

func TestBeginCertificateRejectsOutOfOrder(t *testing.T) {
	c := New()
	err := c.BeginCertificate(0)
	require.Error(t, err)
}

func TestAppendCertificateChunkRejectsBeforeBeginCertificate(t *testing.T) {
	c := New()
	require.NoError(t, c.BeginDigests())
	err := c.AppendCertificateChunk([]byte("x"))
	require.Error(t, err)
}

func TestRequestIDIncrements(t *testing.T) {
	c := New()
	require.Equal(t, uint8(1), c.NextRequestID())
	require.Equal(t, uint8(2), c.NextRequestID())
}

func TestResetClearsState(t *testing.T) {
	c := New()
	require.NoError(t, c.BeginDigests())
	require.NoError(t, c.BeginCertificate(3))
	require.NoError(t, c.AppendCertificateChunk([]byte("data")))
	c.RecordError()
	c.Reset()
	require.Equal(t, StateIdle, c.State)
	require.Equal(t, 0, c.ErrorCount)
	require.Equal(t, uint8(0), c.Slot)
}
