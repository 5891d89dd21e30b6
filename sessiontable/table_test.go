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

package sessiontable

import (
	"errors"
	"testing"

	"github.com/sage-x-project/spdm-engine/errs"
	"github.com/stretchr/testify/require"
)

func TestAssignAndLookup(t *testing.T) {
	tbl := New(4)
	row, err := tbl.Assign(0x00010002, false, AssignParams{})
	require.NoError(t, err)
	require.Equal(t, uint32(0x00010002), row.SessionID)
	require.Equal(t, StateNotStarted, row.State)

	found, err := tbl.Lookup(0x00010002)
	require.NoError(t, err)
	require.Same(t, row, found)
}

func TestAssignRejectsInvalidID(t *testing.T) {
	tbl := New(4)
	_, err := tbl.Assign(InvalidSessionID, false, AssignParams{})
	require.Error(t, err)
	require.True(t, errors.Is(err, errs.InvalidParameter))
}

func TestAssignRejectsDuplicate(t *testing.T) {
	tbl := New(4)
	_, err := tbl.Assign(1, false, AssignParams{})
	require.NoError(t, err)
	_, err = tbl.Assign(1, false, AssignParams{})
	require.Error(t, err)
}

func TestAssignRejectsWhenFull(t *testing.T) {
	tbl := New(2)
	_, err := tbl.Assign(1, false, AssignParams{})
	require.NoError(t, err)
	_, err = tbl.Assign(2, false, AssignParams{})
	require.NoError(t, err)
	_, err = tbl.Assign(3, false, AssignParams{})
	require.Error(t, err)
	require.True(t, errors.Is(err, errs.DeviceError))
}

func TestFreeReturnsRowToPool(t *testing.T) {
	tbl := New(1)
	_, err := tbl.Assign(1, false, AssignParams{})
	require.NoError(t, err)
	require.NoError(t, tbl.Free(1))

	_, err = tbl.Assign(2, false, AssignParams{})
	require.NoError(t, err, "freed row must be reusable")
}

func TestLookupRejectsInvalidID(t *testing.T) {
	tbl := New(4)
	_, err := tbl.Lookup(InvalidSessionID)
	require.Error(t, err)
}

func TestLookupMissingSessionFails(t *testing.T) {
	tbl := New(4)
	_, err := tbl.Lookup(0xdeadbeef)
	require.Error(t, err)
}

func TestNoTwoLiveRowsShareSessionID(t *testing.T) {
	tbl := New(4)
	_, err := tbl.Assign(1, false, AssignParams{})
	require.NoError(t, err)
	_, err = tbl.Assign(1, false, AssignParams{})
	require.Error(t, err)
}

func TestAllocateHalvesDeterministicUntilFull(t *testing.T) {
	tbl := New(4)
	h1, err := tbl.AllocateRequesterHalf()
	require.NoError(t, err)
	require.Equal(t, uint16(0xFFFF), h1)

	// Assign a row consuming that half so the next scan moves on.
	sessionID := CombineSessionID(h1, 0)
	_, err = tbl.Assign(sessionID, false, AssignParams{})
	require.NoError(t, err)

	h2, err := tbl.AllocateRequesterHalf()
	require.NoError(t, err)
	require.Equal(t, uint16(0xFFFE), h2)
}

func TestEstablishRecordsMethod(t *testing.T) {
	tbl := New(4)
	row, err := tbl.Assign(1, true, AssignParams{})
	require.NoError(t, err)
	row.Establish("psk_finish")
	require.Equal(t, StateEstablished, row.State)
}

func TestCombineSessionID(t *testing.T) {
	require.Equal(t, uint32(0x00010002), CombineSessionID(1, 2))
}

func TestAssignSeedsSecuredMessageContextFromParams(t *testing.T) {
	tbl := New(4)
	row, err := tbl.Assign(1, false, AssignParams{
		IsRequester:     true,
		CapabilityFlags: CapabilityBitEncrypt,
		AEADCipherSuite: "chacha20poly1305",
		BaseHashAlgo:    "sha256",
	})
	require.NoError(t, err)
	require.NotNil(t, row.SecuredMessage, "Assign must seed a secured-message context, not leave it nil")
	require.Equal(t, SessionTypeAEAD, row.Type)
}

func TestAssignSessionTypeMACOnlyWithoutEncryptCapability(t *testing.T) {
	tbl := New(4)
	row, err := tbl.Assign(1, false, AssignParams{CapabilityFlags: CapabilityBitMAC})
	require.NoError(t, err)
	require.Equal(t, SessionTypeMACOnly, row.Type)
}

func TestAssignSessionTypeNoneWithoutProtectionCapabilities(t *testing.T) {
	tbl := New(4)
	row, err := tbl.Assign(1, false, AssignParams{})
	require.NoError(t, err)
	require.Equal(t, SessionTypeNone, row.Type)
}

func TestAssignRejectsUnsupportedAEADCipherSuite(t *testing.T) {
	tbl := New(4)
	_, err := tbl.Assign(1, false, AssignParams{AEADCipherSuite: "aes_256_gcm"})
	require.Error(t, err)
}

func TestFreeClosesSeededSecuredMessageContext(t *testing.T) {
	tbl := New(4)
	row, err := tbl.Assign(1, false, AssignParams{CapabilityFlags: CapabilityBitEncrypt, AEADCipherSuite: "chacha20poly1305"})
	require.NoError(t, err)
	require.NotNil(t, row.SecuredMessage)
	require.NoError(t, tbl.Free(1))
}
