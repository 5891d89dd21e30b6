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

package transcript

import (
	"fmt"

	"github.com/sage-x-project/spdm-engine/buffer"
	"github.com/sage-x-project/spdm-engine/errs"
	"github.com/sage-x-project/spdm-engine/primitive"
)

// AssembleM1M2Requester builds M1M2 = MutB ∥ MutC for the mutual-auth
// embedded-responder direction, after appending respPrefix (the
// CHALLENGE-AUTH response, signature bytes excluded) to MutC.
func (s *Set) AssembleM1M2Requester(respPrefix []byte) ([]byte, error) {
	if err := s.MutC.Append(respPrefix); err != nil {
		return nil, fmt.Errorf("transcript: append MutC: %w", err)
	}
	return s.buildM1M2(s.MutB, s.MutC)
}

// AssembleM1M2Responder builds M1M2 = A ∥ B ∥ C, after appending
// respPrefix to C.
func (s *Set) AssembleM1M2Responder(respPrefix []byte) ([]byte, error) {
	if err := s.MessageC.Append(respPrefix); err != nil {
		return nil, fmt.Errorf("transcript: append MessageC: %w", err)
	}
	return s.buildM1M2AB()
}

// AssembleM1M2RequesterVerify rebuilds the requester-direction M1M2
// purely for verification, without appending (the caller has already
// accumulated MutC from the message it received).
func (s *Set) AssembleM1M2RequesterVerify() ([]byte, error) {
	return s.buildM1M2(s.MutB, s.MutC)
}

// AssembleM1M2ResponderVerify rebuilds the responder-direction M1M2
// for verification.
func (s *Set) AssembleM1M2ResponderVerify() ([]byte, error) {
	return s.buildM1M2AB()
}

func (s *Set) buildM1M2(first, second *buffer.ManagedBuffer) ([]byte, error) {
	s.M1M2.Reset()
	if err := s.M1M2.Append(first.Data()); err != nil {
		return nil, fmt.Errorf("transcript: assemble M1M2: %w", err)
	}
	if err := s.M1M2.Append(second.Data()); err != nil {
		return nil, fmt.Errorf("transcript: assemble M1M2: %w", err)
	}
	return s.M1M2.Data(), nil
}

func (s *Set) buildM1M2AB() ([]byte, error) {
	s.M1M2.Reset()
	if err := s.M1M2.Append(s.MessageA.Data()); err != nil {
		return nil, fmt.Errorf("transcript: assemble M1M2: %w", err)
	}
	if err := s.M1M2.Append(s.MessageB.Data()); err != nil {
		return nil, fmt.Errorf("transcript: assemble M1M2: %w", err)
	}
	if err := s.M1M2.Append(s.MessageC.Data()); err != nil {
		return nil, fmt.Errorf("transcript: assemble M1M2: %w", err)
	}
	return s.M1M2.Data(), nil
}

// AppendMeasurement appends a measurement response (signature
// excluded) to L1L2. L1L2 persists across successive GET_MEASUREMENTS
// calls until a signature is generated or verified.
func (s *Set) AppendMeasurement(respPrefix []byte) error {
	if err := s.L1L2.Append(respPrefix); err != nil {
		return fmt.Errorf("transcript: append L1L2: %w", err)
	}
	return nil
}

// THCurrAK computes A ∥ H(Ct) ∥ K. leafLessCertHash is nil on PSK,
// in which case it is omitted entirely.
func THCurrAK(a *buffer.ManagedBuffer, leafLessCertHash []byte, k *buffer.ManagedBuffer) []byte {
	out := make([]byte, 0, a.Size()+len(leafLessCertHash)+k.Size())
	out = append(out, a.Data()...)
	out = append(out, leafLessCertHash...)
	out = append(out, k.Data()...)
	return out
}

// THCurrAKF computes A ∥ H(Ct) ∥ K ∥ H(CM) ∥ F. leafLessCertHash and
// mutAuthCertHash are both nil on PSK; mutAuthCertHash is additionally
// nil whenever mutual auth is not active.
func THCurrAKF(a *buffer.ManagedBuffer, leafLessCertHash []byte, k *buffer.ManagedBuffer, mutAuthCertHash []byte, f *buffer.ManagedBuffer) []byte {
	out := make([]byte, 0, a.Size()+len(leafLessCertHash)+k.Size()+len(mutAuthCertHash)+f.Size())
	out = append(out, a.Data()...)
	out = append(out, leafLessCertHash...)
	out = append(out, k.Data()...)
	out = append(out, mutAuthCertHash...)
	out = append(out, f.Data()...)
	return out
}

// DeriveTH1 hashes the TH_curr_AK bytes with the connection hash
// algorithm, producing TH1, the key-exchange-time handshake binding
// hash fed to the secured-message key schedule.
func DeriveTH1(p primitive.Provider, algo primitive.HashAlgo, thCurrAK []byte) ([]byte, error) {
	h, err := p.Hash(algo, thCurrAK)
	if err != nil {
		return nil, fmt.Errorf("transcript: derive TH1: %w", errs.SignatureFailure)
	}
	return h, nil
}

// DeriveTH2 hashes the TH_curr_AKF bytes, producing TH2, the
// finish-time handshake binding hash.
func DeriveTH2(p primitive.Provider, algo primitive.HashAlgo, thCurrAKF []byte) ([]byte, error) {
	h, err := p.Hash(algo, thCurrAKF)
	if err != nil {
		return nil, fmt.Errorf("transcript: derive TH2: %w", errs.SignatureFailure)
	}
	return h, nil
}
