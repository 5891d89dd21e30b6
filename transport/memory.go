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
	"fmt"

	"github.com/sage-x-project/spdm-engine/errs"
)

// MemoryPair returns two Transports wired to each other over buffered
// channels, for tests and for hosts that colocate requester and
// responder in one process. Framing is the identity function: there is
// no carrier-level header to add or strip.
func MemoryPair(buffer int) (requester, responder Transport) {
	a := make(chan []byte, buffer)
	b := make(chan []byte, buffer)
	return &memoryTransport{out: a, in: b}, &memoryTransport{out: b, in: a}
}

type memoryTransport struct {
	out chan<- []byte
	in  <-chan []byte
}

func (m *memoryTransport) Encode(message []byte) ([]byte, error) {
	return message, nil
}

func (m *memoryTransport) Decode(framed []byte) ([]byte, error) {
	return framed, nil
}

func (m *memoryTransport) Send(ctx context.Context, frame []byte) error {
	select {
	case m.out <- frame:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("transport: send canceled: %w", ctx.Err())
	}
}

func (m *memoryTransport) Receive(ctx context.Context) ([]byte, error) {
	select {
	case frame, ok := <-m.in:
		if !ok {
			return nil, fmt.Errorf("transport: channel closed: %w", errs.NoResponse)
		}
		return frame, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("transport: receive canceled: %w", ctx.Err())
	}
}
