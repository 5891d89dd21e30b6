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

// Package buffer implements ManagedBuffer, the bounded append-only byte
// container every transcript in the engine is built from.
package buffer

import (
	"fmt"

	"github.com/sage-x-project/spdm-engine/errs"
)

// Size classes, named the way the teacher sizes its pre-allocated key
// buffers (pkg/agent/session.SecureSession.keyMaterial): a "small" class
// for the short A/C/MutC messages, a "large" class for B, MutB, K, F,
// M1M2, L1L2.
const (
	SmallCapacity = 4 * 1024
	LargeCapacity = 64 * 1024
)

// ManagedBuffer is a bounded, append-only byte container. It never grows
// past max; callers reset it to reuse the storage rather than
// reallocating.
type ManagedBuffer struct {
	max int
	buf []byte
}

// New returns a ManagedBuffer with the given maximum capacity.
func New(max int) *ManagedBuffer {
	return &ManagedBuffer{max: max, buf: make([]byte, 0, max)}
}

// Init (re)initializes the buffer to a new maximum, discarding content.
// Mirrors the spec's init(max): set max, len=0.
func (b *ManagedBuffer) Init(max int) {
	b.max = max
	b.buf = make([]byte, 0, max)
}

// Append copies src onto the buffer. Fails with BufferTooSmall when
// len+|src| would exceed max; the buffer is left unmodified on failure.
func (b *ManagedBuffer) Append(src []byte) error {
	if len(b.buf)+len(src) > b.max {
		return fmt.Errorf("buffer: append %d bytes would exceed max %d (len=%d): %w", len(src), b.max, len(b.buf), errs.BufferTooSmall)
	}
	b.buf = append(b.buf, src...)
	return nil
}

// Shrink removes the last n bytes. Fails with BufferTooSmall if n
// exceeds the current length.
func (b *ManagedBuffer) Shrink(n int) error {
	if n > len(b.buf) {
		return fmt.Errorf("buffer: shrink %d exceeds len %d: %w", n, len(b.buf), errs.BufferTooSmall)
	}
	b.buf = b.buf[:len(b.buf)-n]
	return nil
}

// Reset sets len back to 0, leaving max and the backing array intact.
func (b *ManagedBuffer) Reset() {
	b.buf = b.buf[:0]
}

// Data returns a borrowed view of the accumulated bytes. Callers must
// not retain it past the next mutating call.
func (b *ManagedBuffer) Data() []byte {
	return b.buf
}

// Size returns the current length.
func (b *ManagedBuffer) Size() int {
	return len(b.buf)
}

// Max returns the configured ceiling.
func (b *ManagedBuffer) Max() int {
	return b.max
}

// Clone returns an independent ManagedBuffer with a copy of the current
// contents, same max. Used where a caller needs to snapshot a
// transcript buffer before a tentative append (e.g. speculative M1M2
// assembly during verification) without disturbing the original.
func (b *ManagedBuffer) Clone() *ManagedBuffer {
	out := New(b.max)
	out.buf = append(out.buf[:0], b.buf...)
	return out
}
