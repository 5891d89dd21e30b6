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

package context

import (
	"crypto/hmac"
	"fmt"

	"github.com/sage-x-project/spdm-engine/cryptobind"
	"github.com/sage-x-project/spdm-engine/errs"
)

// VerifyPeerRootCertHash checks chain's root hash against the root
// hash provisioned via SetData(PeerPublicRootCertHash, ...). Called
// before trusting a chain received over GET_CERTIFICATE when the host
// provisioned a root hash out of band rather than a full trust anchor.
func (c *Context) VerifyPeerRootCertHash(chain *cryptobind.CertChain) error {
	if len(c.cfg.peerPublicRootCertHash) == 0 {
		return c.recordError(fmt.Errorf("context: no peer root cert hash provisioned: %w", errs.MissingChain))
	}
	if !hmac.Equal(c.cfg.peerPublicRootCertHash, chain.RootHash) {
		return c.recordError(fmt.Errorf("context: peer root cert hash mismatch: %w", errs.SecurityViolation))
	}
	return nil
}
