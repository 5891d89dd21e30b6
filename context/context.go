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

// Package context implements DeviceContext (here named Context to
// avoid stuttering against the package name) and ContextRoot: the root
// object owning local configuration, ConnectionInfo, the TranscriptSet,
// the session table and EncapContext, plus the set_data/get_data
// configuration API.
//
// Session rows are indexed by SessionId; nothing here stores a pointer
// into a sessiontable.Info row across calls — any code needing the
// secured-message context looks the row up again by id. This avoids
// the cyclic DeviceContext/SessionInfo back-reference the original
// implementation used.
package context

import (
	"fmt"

	"github.com/sage-x-project/spdm-engine/config"
	"github.com/sage-x-project/spdm-engine/connection"
	"github.com/sage-x-project/spdm-engine/encap"
	"github.com/sage-x-project/spdm-engine/errs"
	"github.com/sage-x-project/spdm-engine/internal/logger"
	"github.com/sage-x-project/spdm-engine/primitive"
	"github.com/sage-x-project/spdm-engine/sessiontable"
	"github.com/sage-x-project/spdm-engine/transcript"
	"github.com/sage-x-project/spdm-engine/transport"
)

// ResponseState is the responder's current processing state.
type ResponseState int

const (
	ResponseStateNormal ResponseState = iota
	ResponseStateBusy
	ResponseStateNotReady
	ResponseStateNeedResync
)

// MaxSlotCount and MaxPSKHintLength bound SlotCount and PskHint
// set_data calls.
const (
	MaxSlotCount     = config.MaxSlotCount
	MaxPSKHintLength = config.MaxPSKHintLength
)

// localConfig holds the DeviceContext's own configuration fields: the
// set_data kinds whose Parameter.location is Local.
type localConfig struct {
	capabilityFlags      uint32
	capabilityCTExponent uint8

	measurementHashAlgo string
	baseAsymAlgo        string
	baseHashAlgo        string
	dheNamedGroup       string
	aeadCipherSuite     string
	reqBaseAsymAlgo     string
	keySchedule         string

	responseState ResponseState

	peerPublicRootCertHash []byte
	peerPublicCertChains   []byte

	slotCount          int
	publicCertChains   [config.MaxSlotCount][]byte
	basicMutAuthReq    bool
	mutAuthReq         bool
	pskHint            []byte
}

// Context is the engine's root object (DeviceContext in spec.md). One
// Context processes one message at a time; the caller drives progress
// by invoking Transport.Send/Receive and the primitive-provider calls.
// A Context must not be driven concurrently from two goroutines;
// independent Contexts may run in parallel.
type Context struct {
	cfg    localConfig
	conn   *connection.Info
	trans  *transcript.Set
	sess   *sessiontable.Table
	encap  *encap.Context
	engine config.Config

	provider  primitive.Provider
	transport transport.Transport

	lastError errs.Kind
	log       logger.Logger
}

// New creates an empty Context (init): local configuration is zeroed,
// connection info is fresh, the session table has engineCfg.Session's
// capacity.
func New(engineCfg config.Config, provider primitive.Provider, tp transport.Transport, log logger.Logger) *Context {
	if log == nil {
		log = logger.NewDefaultLogger()
	}
	return &Context{
		conn:      connection.New(),
		trans:     transcript.NewSet(),
		sess:      sessiontable.New(engineCfg.Session.TableCapacity),
		encap:     encap.New(),
		engine:    engineCfg,
		provider:  provider,
		transport: tp,
		log:       log,
	}
}

// Connection returns the owned ConnectionInfo.
func (c *Context) Connection() *connection.Info { return c.conn }

// Transcript returns the owned TranscriptSet.
func (c *Context) Transcript() *transcript.Set { return c.trans }

// Sessions returns the owned session table.
func (c *Context) Sessions() *sessiontable.Table { return c.sess }

// AssignSession allocates a session-table row for sessionID, seeding
// its secured-message context with the locally configured algorithm
// selection and PSK hint and deriving its protection class from
// CapabilityFlags. isRequester fixes the row's secured-message context
// to the requester or responder direction.
func (c *Context) AssignSession(sessionID uint32, usePSK, isRequester bool) (*sessiontable.Info, error) {
	row, err := c.sess.Assign(sessionID, usePSK, sessiontable.AssignParams{
		IsRequester:     isRequester,
		CapabilityFlags: c.cfg.capabilityFlags,
		AEADCipherSuite: c.cfg.aeadCipherSuite,
		BaseHashAlgo:    c.cfg.baseHashAlgo,
		PSKHint:         c.cfg.pskHint,
	})
	if err != nil {
		return nil, c.recordError(err)
	}
	return row, nil
}

// Encap returns the owned EncapContext.
func (c *Context) Encap() *encap.Context { return c.encap }

// Provider returns the configured cryptographic primitive provider.
func (c *Context) Provider() primitive.Provider { return c.provider }

// Transport returns the configured transport collaborator.
func (c *Context) Transport() transport.Transport { return c.transport }

// LastError returns the machine-readable class of the most recent
// error this context observed (get_last_error). It is KindNone until
// the first failure.
func (c *Context) LastError() errs.Kind { return c.lastError }

// recordError updates LastError from err's kind and returns err
// unchanged, so call sites can write `return c.recordError(err)`.
func (c *Context) recordError(err error) error {
	if err != nil {
		c.lastError = errs.KindOf(err)
	}
	return err
}

// InitContext clears the connection state, the TranscriptSet buffers
// and the EncapContext, equivalent to re-running init_context. Local
// configuration is left untouched — only protocol state resets. The
// session table is not cleared: live rows, with their MessageK/F
// buffers and secured-message contexts, stay assigned.
func (c *Context) InitContext() {
	c.conn.Reset()
	c.trans.Reset()
	c.encap.Reset()
	c.log.Debug("context reset", logger.String("op", "init_context"))
}

var errDebugOnly = fmt.Errorf("context: debug-only data kind: %w", errs.Unsupported)

// needSessionInfoForData returns false for every kind currently
// defined. Retained as a switch — not yet a no-op function — so a
// future kind that does need session info has a single place to add a
// case.
func needSessionInfoForData(kind DataKind) bool {
	switch kind {
	default:
		return false
	}
}

// isDebugOnlyData gates kinds with the high bit of their numeric value
// set. No kind currently uses this range; it exists so a future
// debug-only kind added above debugOnlyBit is rejected by construction
// rather than by remembering to add a check.
func isDebugOnlyData(kind DataKind) bool {
	return kind&debugOnlyBit != 0
}

// debugOnlyBit marks the reserved high-bit range of DataKind values
// that set_data/get_data always reject with Unsupported.
const debugOnlyBit DataKind = 1 << 30
