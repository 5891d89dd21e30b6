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
	"crypto/hmac"
	"fmt"
	"time"

	"github.com/sage-x-project/spdm-engine/errs"
	"github.com/sage-x-project/spdm-engine/primitive"
	"github.com/sage-x-project/spdm-engine/transcript"
)

// HmacBinding parallels SignatureBinding for the HMAC path: it ties a
// hash algorithm to the finished-keys owned by the secured-message
// context. The keys themselves are supplied by the caller per call,
// since session key derivation is securedmsg's responsibility.
type HmacBinding struct {
	HashAlgo primitive.HashAlgo
}

func (b HmacBinding) hmacTag(p primitive.Provider, key, data []byte) ([]byte, error) {
	return p.HMAC(b.HashAlgo, key, data)
}

// GenerateKeyExchangeRspHmac computes HMAC(response_finished_key,
// TH_curr_AK).
func (b HmacBinding) GenerateKeyExchangeRspHmac(p primitive.Provider, set *transcript.Set, sess *transcript.SessionTranscript, leafLessCertHash, responseFinishedKey []byte) (tag []byte, err error) {
	start := time.Now()
	defer func() { observe("generate_key_exchange_rsp_hmac", start, err) }()
	thCurrAK := transcript.THCurrAK(set.MessageA, leafLessCertHash, sess.MessageK)
	tag, err = b.hmacTag(p, responseFinishedKey, thCurrAK)
	if err != nil {
		return nil, fmt.Errorf("cryptobind: key_exchange_rsp hmac: %w", errs.SignatureFailure)
	}
	return tag, nil
}

// VerifyKeyExchangeRspHmac recomputes and constant-time compares.
func (b HmacBinding) VerifyKeyExchangeRspHmac(p primitive.Provider, set *transcript.Set, sess *transcript.SessionTranscript, leafLessCertHash, responseFinishedKey, tag []byte) (err error) {
	start := time.Now()
	defer func() { observe("verify_key_exchange_rsp_hmac", start, err) }()
	want, err := b.GenerateKeyExchangeRspHmac(p, set, sess, leafLessCertHash, responseFinishedKey)
	if err != nil {
		return err
	}
	if !hmac.Equal(want, tag) {
		return fmt.Errorf("cryptobind: key_exchange_rsp hmac mismatch: %w", errs.SecurityViolation)
	}
	return nil
}

// GenerateFinishReqHmac computes HMAC(request_finished_key,
// TH_curr_AKF), the requester side of FINISH.
func (b HmacBinding) GenerateFinishReqHmac(p primitive.Provider, set *transcript.Set, sess *transcript.SessionTranscript, leafLessCertHash, mutAuthCertHash, requestFinishedKey []byte) (tag []byte, err error) {
	start := time.Now()
	defer func() { observe("generate_finish_req_hmac", start, err) }()
	thCurrAKF := transcript.THCurrAKF(set.MessageA, leafLessCertHash, sess.MessageK, mutAuthCertHash, sess.MessageF)
	tag, err = b.hmacTag(p, requestFinishedKey, thCurrAKF)
	if err != nil {
		return nil, fmt.Errorf("cryptobind: finish_req hmac: %w", errs.SignatureFailure)
	}
	return tag, nil
}

// VerifyFinishReqHmac is the responder side: recompute and compare.
func (b HmacBinding) VerifyFinishReqHmac(p primitive.Provider, set *transcript.Set, sess *transcript.SessionTranscript, leafLessCertHash, mutAuthCertHash, requestFinishedKey, tag []byte) (err error) {
	start := time.Now()
	defer func() { observe("verify_finish_req_hmac", start, err) }()
	want, err := b.GenerateFinishReqHmac(p, set, sess, leafLessCertHash, mutAuthCertHash, requestFinishedKey)
	if err != nil {
		return err
	}
	if !hmac.Equal(want, tag) {
		return fmt.Errorf("cryptobind: finish_req hmac mismatch: %w", errs.SecurityViolation)
	}
	return nil
}

// GenerateFinishRspHmac is the responder side of FINISH_RSP: HMAC over
// TH_curr_AKF with response_finished_key.
func (b HmacBinding) GenerateFinishRspHmac(p primitive.Provider, set *transcript.Set, sess *transcript.SessionTranscript, leafLessCertHash, mutAuthCertHash, responseFinishedKey []byte) (tag []byte, err error) {
	start := time.Now()
	defer func() { observe("generate_finish_rsp_hmac", start, err) }()
	thCurrAKF := transcript.THCurrAKF(set.MessageA, leafLessCertHash, sess.MessageK, mutAuthCertHash, sess.MessageF)
	tag, err = b.hmacTag(p, responseFinishedKey, thCurrAKF)
	if err != nil {
		return nil, fmt.Errorf("cryptobind: finish_rsp hmac: %w", errs.SignatureFailure)
	}
	return tag, nil
}

// VerifyFinishRspHmac is the requester side: recompute and compare.
func (b HmacBinding) VerifyFinishRspHmac(p primitive.Provider, set *transcript.Set, sess *transcript.SessionTranscript, leafLessCertHash, mutAuthCertHash, responseFinishedKey, tag []byte) (err error) {
	start := time.Now()
	defer func() { observe("verify_finish_rsp_hmac", start, err) }()
	want, err := b.GenerateFinishRspHmac(p, set, sess, leafLessCertHash, mutAuthCertHash, responseFinishedKey)
	if err != nil {
		return err
	}
	if !hmac.Equal(want, tag) {
		return fmt.Errorf("cryptobind: finish_rsp hmac mismatch: %w", errs.SecurityViolation)
	}
	return nil
}

// GeneratePskExchangeRspHmac is the PSK variant of the key-exchange
// HMAC: TH_curr_AK with no cert-chain hash.
func (b HmacBinding) GeneratePskExchangeRspHmac(p primitive.Provider, set *transcript.Set, sess *transcript.SessionTranscript, responseFinishedKey []byte) (tag []byte, err error) {
	return b.GenerateKeyExchangeRspHmac(p, set, sess, nil, responseFinishedKey)
}

// VerifyPskExchangeRspHmac verifies the PSK key-exchange HMAC.
func (b HmacBinding) VerifyPskExchangeRspHmac(p primitive.Provider, set *transcript.Set, sess *transcript.SessionTranscript, responseFinishedKey, tag []byte) error {
	return b.VerifyKeyExchangeRspHmac(p, set, sess, nil, responseFinishedKey, tag)
}

// GeneratePskFinishReqHmac is the PSK variant of the finish_req HMAC:
// TH_curr_AKF with no cert-chain hashes.
func (b HmacBinding) GeneratePskFinishReqHmac(p primitive.Provider, set *transcript.Set, sess *transcript.SessionTranscript, requestFinishedKey []byte) (tag []byte, err error) {
	return b.GenerateFinishReqHmac(p, set, sess, nil, nil, requestFinishedKey)
}

// VerifyPskFinishReqHmac verifies the PSK finish_req HMAC.
func (b HmacBinding) VerifyPskFinishReqHmac(p primitive.Provider, set *transcript.Set, sess *transcript.SessionTranscript, requestFinishedKey, tag []byte) error {
	return b.VerifyFinishReqHmac(p, set, sess, nil, nil, requestFinishedKey, tag)
}
