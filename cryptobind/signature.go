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
	"fmt"
	"time"

	"github.com/sage-x-project/spdm-engine/errs"
	"github.com/sage-x-project/spdm-engine/internal/metrics"
	"github.com/sage-x-project/spdm-engine/primitive"
	"github.com/sage-x-project/spdm-engine/transcript"
)

// SignatureBinding ties a hash/asym algorithm pair to the transcript
// set and the leaf-key lookup needed to generate and verify the
// CHALLENGE, MEASUREMENT, KEY_EXCHANGE and FINISH signatures.
type SignatureBinding struct {
	HashAlgo primitive.HashAlgo
	AsymAlgo primitive.AsymAlgo
	// RequesterAsymAlgo is used whenever the spec calls for
	// "requester base asym alg": generating/verifying in the mutual-auth
	// (embedded responder) direction.
	RequesterAsymAlgo primitive.AsymAlgo
}

func observe(operation string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.BindingOperations.WithLabelValues(operation, result).Inc()
	metrics.BindingDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// GenerateChallengeSignature updates C (or MutC when isRequester is
// true, i.e. this is the mutual-auth embedded-responder direction),
// builds M1M2, hashes it and asks signer to sign.
func (b SignatureBinding) GenerateChallengeSignature(p primitive.Provider, signer primitive.Signer, set *transcript.Set, isRequester bool, responsePrefix []byte) (sig []byte, err error) {
	start := time.Now()
	defer func() { observe("generate_challenge_signature", start, err) }()

	var m1m2 []byte
	if isRequester {
		m1m2, err = set.AssembleM1M2Requester(responsePrefix)
	} else {
		m1m2, err = set.AssembleM1M2Responder(responsePrefix)
	}
	if err != nil {
		return nil, err
	}

	digest, err := p.Hash(b.HashAlgo, m1m2)
	if err != nil {
		return nil, fmt.Errorf("cryptobind: hash M1M2: %w", errs.SignatureFailure)
	}

	algo := b.AsymAlgo
	if isRequester {
		algo = b.RequesterAsymAlgo
	}
	sig, err = signer.Sign(algo, digest)
	if err != nil {
		return nil, fmt.Errorf("cryptobind: sign challenge: %w", errs.SignatureFailure)
	}
	set.ResetChallenge()
	return sig, nil
}

// VerifyChallengeSignature rebuilds M1M2 from locally observed
// traffic, extracts the leaf public key from chain and verifies sig.
// isRequester = true means the verifier is a requester verifying a
// responder's signature (base asym alg); false verifies the mutual-
// auth direction with the requester's asym alg.
func (b SignatureBinding) VerifyChallengeSignature(p primitive.Provider, set *transcript.Set, chain *CertChain, isRequester bool, sig []byte) (err error) {
	start := time.Now()
	defer func() { observe("verify_challenge_signature", start, err) }()

	var m1m2 []byte
	if isRequester {
		m1m2, err = set.AssembleM1M2ResponderVerify()
	} else {
		m1m2, err = set.AssembleM1M2RequesterVerify()
	}
	if err != nil {
		return err
	}

	digest, err := p.Hash(b.HashAlgo, m1m2)
	if err != nil {
		return fmt.Errorf("cryptobind: hash M1M2: %w", errs.SignatureFailure)
	}

	leaf, err := chain.LeafCert()
	if err != nil {
		return err
	}
	pub, err := p.LeafPublicKey(leaf)
	if err != nil {
		return fmt.Errorf("cryptobind: leaf public key: %w", errs.SecurityViolation)
	}

	algo := b.AsymAlgo
	if !isRequester {
		algo = b.RequesterAsymAlgo
	}
	if err := p.Verify(algo, pub, digest, sig); err != nil {
		set.ResetChallenge()
		return fmt.Errorf("cryptobind: verify challenge signature: %w", errs.SecurityViolation)
	}
	set.ResetChallenge()
	return nil
}

// GenerateMeasurementSignature appends responsePrefix to L1L2, hashes
// it and signs with the responder callback.
func (b SignatureBinding) GenerateMeasurementSignature(p primitive.Provider, signer primitive.Signer, set *transcript.Set, responsePrefix []byte) (sig []byte, err error) {
	start := time.Now()
	defer func() { observe("generate_measurement_signature", start, err) }()

	if err = set.AppendMeasurement(responsePrefix); err != nil {
		return nil, err
	}
	digest, err := p.Hash(b.HashAlgo, set.L1L2.Data())
	if err != nil {
		return nil, fmt.Errorf("cryptobind: hash L1L2: %w", errs.SignatureFailure)
	}
	sig, err = signer.Sign(b.AsymAlgo, digest)
	if err != nil {
		return nil, fmt.Errorf("cryptobind: sign measurement: %w", errs.SignatureFailure)
	}
	set.ResetMeasurement()
	return sig, nil
}

// VerifyMeasurementSignature hashes the L1L2 already accumulated by
// the caller and verifies against the leaf key from chain.
func (b SignatureBinding) VerifyMeasurementSignature(p primitive.Provider, set *transcript.Set, chain *CertChain, sig []byte) (err error) {
	start := time.Now()
	defer func() { observe("verify_measurement_signature", start, err) }()

	digest, err := p.Hash(b.HashAlgo, set.L1L2.Data())
	if err != nil {
		return fmt.Errorf("cryptobind: hash L1L2: %w", errs.SignatureFailure)
	}
	leaf, err := chain.LeafCert()
	if err != nil {
		return err
	}
	pub, err := p.LeafPublicKey(leaf)
	if err != nil {
		return fmt.Errorf("cryptobind: leaf public key: %w", errs.SecurityViolation)
	}
	if err := p.Verify(b.AsymAlgo, pub, digest, sig); err != nil {
		set.ResetMeasurement()
		return fmt.Errorf("cryptobind: verify measurement signature: %w", errs.SecurityViolation)
	}
	set.ResetMeasurement()
	return nil
}

// GenerateKeyExchangeSignature signs TH_curr_AK. leafLessCertHash is
// nil on PSK.
func (b SignatureBinding) GenerateKeyExchangeSignature(p primitive.Provider, signer primitive.Signer, set *transcript.Set, sess *transcript.SessionTranscript, leafLessCertHash []byte) (sig []byte, err error) {
	start := time.Now()
	defer func() { observe("generate_key_exchange_signature", start, err) }()

	thCurrAK := transcript.THCurrAK(set.MessageA, leafLessCertHash, sess.MessageK)
	digest, err := p.Hash(b.HashAlgo, thCurrAK)
	if err != nil {
		return nil, fmt.Errorf("cryptobind: hash TH_curr_AK: %w", errs.SignatureFailure)
	}
	sig, err = signer.Sign(b.AsymAlgo, digest)
	if err != nil {
		return nil, fmt.Errorf("cryptobind: sign key exchange: %w", errs.SignatureFailure)
	}
	return sig, nil
}

// VerifyKeyExchangeSignature verifies a KEY_EXCHANGE signature over
// TH_curr_AK against chain's leaf key.
func (b SignatureBinding) VerifyKeyExchangeSignature(p primitive.Provider, set *transcript.Set, sess *transcript.SessionTranscript, chain *CertChain, leafLessCertHash []byte, sig []byte) (err error) {
	start := time.Now()
	defer func() { observe("verify_key_exchange_signature", start, err) }()

	thCurrAK := transcript.THCurrAK(set.MessageA, leafLessCertHash, sess.MessageK)
	digest, err := p.Hash(b.HashAlgo, thCurrAK)
	if err != nil {
		return fmt.Errorf("cryptobind: hash TH_curr_AK: %w", errs.SignatureFailure)
	}
	leaf, err := chain.LeafCert()
	if err != nil {
		return err
	}
	pub, err := p.LeafPublicKey(leaf)
	if err != nil {
		return fmt.Errorf("cryptobind: leaf public key: %w", errs.SecurityViolation)
	}
	if err := p.Verify(b.AsymAlgo, pub, digest, sig); err != nil {
		return fmt.Errorf("cryptobind: verify key exchange signature: %w", errs.SecurityViolation)
	}
	return nil
}

// GenerateFinishReqSignature signs TH_curr_AKF using the requester
// callback. Mutual-auth only.
func (b SignatureBinding) GenerateFinishReqSignature(p primitive.Provider, signer primitive.Signer, set *transcript.Set, sess *transcript.SessionTranscript, leafLessCertHash, mutAuthCertHash []byte) (sig []byte, err error) {
	start := time.Now()
	defer func() { observe("generate_finish_req_signature", start, err) }()

	thCurrAKF := transcript.THCurrAKF(set.MessageA, leafLessCertHash, sess.MessageK, mutAuthCertHash, sess.MessageF)
	digest, err := p.Hash(b.HashAlgo, thCurrAKF)
	if err != nil {
		return nil, fmt.Errorf("cryptobind: hash TH_curr_AKF: %w", errs.SignatureFailure)
	}
	sig, err = signer.Sign(b.RequesterAsymAlgo, digest)
	if err != nil {
		return nil, fmt.Errorf("cryptobind: sign finish_req: %w", errs.SignatureFailure)
	}
	return sig, nil
}

// VerifyFinishReqSignature verifies a FINISH request signature over
// TH_curr_AKF using the requester base asym alg against the peer
// mutual-auth chain.
func (b SignatureBinding) VerifyFinishReqSignature(p primitive.Provider, set *transcript.Set, sess *transcript.SessionTranscript, chain *CertChain, leafLessCertHash, mutAuthCertHash, sig []byte) (err error) {
	start := time.Now()
	defer func() { observe("verify_finish_req_signature", start, err) }()

	thCurrAKF := transcript.THCurrAKF(set.MessageA, leafLessCertHash, sess.MessageK, mutAuthCertHash, sess.MessageF)
	digest, err := p.Hash(b.HashAlgo, thCurrAKF)
	if err != nil {
		return fmt.Errorf("cryptobind: hash TH_curr_AKF: %w", errs.SignatureFailure)
	}
	leaf, err := chain.LeafCert()
	if err != nil {
		return err
	}
	pub, err := p.LeafPublicKey(leaf)
	if err != nil {
		return fmt.Errorf("cryptobind: leaf public key: %w", errs.SecurityViolation)
	}
	if err := p.Verify(b.RequesterAsymAlgo, pub, digest, sig); err != nil {
		return fmt.Errorf("cryptobind: verify finish_req signature: %w", errs.SecurityViolation)
	}
	return nil
}
