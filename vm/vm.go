// Copyright 2022 Menabrea Labs Inc.

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package vm is a Go-side transliteration of the stack machine the
// target emitter writes as internal_eval in every generated module. It
// exists so bytecode-soundness properties (spec.md §8) can be checked
// without a Move toolchain; it is never itself part of the emitted
// output.
package vm

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/menabrealabs/marlowe-move/bytecode"
)

// State supplies the three lookup tables internal_eval reads from: the
// account balance ledger, the choices table, and the bound-values
// table, plus the two time reads the host transaction context exposes.
type State struct {
	Balances    map[string]uint64 // keyed by "party:token"
	Choices     map[string]uint64 // keyed by ChoiceId.Key()
	BoundValues map[string]uint64 // keyed by Let name
	TimeStart   uint64
	TimeEnd     uint64
}

// Balance looks up the GET_ACC operand pair: party representation and
// token key joined with a colon. internal_get_balance reads the same
// pair from a nested party -> token table instead.
func (s State) Balance(party, token string) uint64 {
	return s.Balances[party+":"+token]
}

// ErrStackUnderflow is returned when an opcode needs more operands than
// the stack currently holds, mirroring the embedded VM's
// E_STACK_UNDERFLOW assertion.
var ErrStackUnderflow = errors.New("stack underflow")

// Eval runs code to completion and returns the final stack top, or 0 if
// the stack is empty when the program ends — matching internal_eval's
// closing "pop or 0" behavior.
func Eval(code []byte, state State) (uint64, error) {
	var stack []uint64
	i := 0

	pop := func() (uint64, error) {
		if len(stack) == 0 {
			return 0, ErrStackUnderflow
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v, nil
	}
	popPair := func() (lhs, rhs uint64, err error) {
		if len(stack) < 2 {
			return 0, 0, ErrStackUnderflow
		}
		rhs = stack[len(stack)-1]
		lhs = stack[len(stack)-2]
		stack = stack[:len(stack)-2]
		return lhs, rhs, nil
	}
	readString := func() (string, error) {
		if i >= len(code) {
			return "", errors.New("truncated operand: missing length byte")
		}
		n := int(code[i])
		i++
		if i+n > len(code) {
			return "", errors.New("truncated operand: string exceeds bytecode length")
		}
		s := string(code[i : i+n])
		i += n
		return s, nil
	}

	for i < len(code) {
		op := bytecode.Op(code[i])
		i++

		switch op {
		case bytecode.ZERO:
			stack = append(stack, 0)

		case bytecode.TRUE:
			stack = append(stack, 1)

		case bytecode.CONST:
			if i+8 > len(code) {
				return 0, errors.New("truncated CONST operand")
			}
			stack = append(stack, binary.BigEndian.Uint64(code[i:i+8]))
			i += 8

		case bytecode.ADD:
			lhs, rhs, err := popPair()
			if err != nil {
				return 0, err
			}
			stack = append(stack, lhs+rhs)

		case bytecode.SUB:
			lhs, rhs, err := popPair()
			if err != nil {
				return 0, err
			}
			if rhs > lhs {
				stack = append(stack, 0)
			} else {
				stack = append(stack, lhs-rhs)
			}

		case bytecode.MUL:
			lhs, rhs, err := popPair()
			if err != nil {
				return 0, err
			}
			stack = append(stack, lhs*rhs)

		case bytecode.DIV:
			lhs, rhs, err := popPair()
			if err != nil {
				return 0, err
			}
			if rhs == 0 {
				stack = append(stack, 0)
			} else {
				stack = append(stack, lhs/rhs)
			}

		case bytecode.NEG:
			if _, err := pop(); err != nil {
				return 0, err
			}
			stack = append(stack, 0)

		case bytecode.GET_ACC:
			party, err := readString()
			if err != nil {
				return 0, err
			}
			token, err := readString()
			if err != nil {
				return 0, err
			}
			stack = append(stack, state.Balance(party, token))

		case bytecode.GET_CHOICE:
			key, err := readString()
			if err != nil {
				return 0, err
			}
			stack = append(stack, state.Choices[key])

		case bytecode.USE_VAL:
			name, err := readString()
			if err != nil {
				return 0, err
			}
			stack = append(stack, state.BoundValues[name])

		case bytecode.HAS_CHOICE:
			key, err := readString()
			if err != nil {
				return 0, err
			}
			if _, ok := state.Choices[key]; ok {
				stack = append(stack, 1)
			} else {
				stack = append(stack, 0)
			}

		case bytecode.TIME_START:
			stack = append(stack, state.TimeStart)

		case bytecode.TIME_END:
			stack = append(stack, state.TimeEnd)

		case bytecode.GT:
			lhs, rhs, err := popPair()
			if err != nil {
				return 0, err
			}
			stack = append(stack, boolU64(lhs > rhs))

		case bytecode.GE:
			lhs, rhs, err := popPair()
			if err != nil {
				return 0, err
			}
			stack = append(stack, boolU64(lhs >= rhs))

		case bytecode.AND:
			lhs, rhs, err := popPair()
			if err != nil {
				return 0, err
			}
			stack = append(stack, boolU64(lhs > 0 && rhs > 0))

		case bytecode.OR:
			lhs, rhs, err := popPair()
			if err != nil {
				return 0, err
			}
			stack = append(stack, boolU64(lhs > 0 || rhs > 0))

		case bytecode.NOT:
			v, err := pop()
			if err != nil {
				return 0, err
			}
			stack = append(stack, boolU64(v == 0))

		case bytecode.CJUMP:
			if i+2 > len(code) {
				return 0, errors.New("truncated CJUMP operand")
			}
			skip := int(binary.BigEndian.Uint16(code[i : i+2]))
			i += 2
			cond, err := pop()
			if err != nil {
				return 0, err
			}
			if cond == 0 {
				i += skip
			}

		default:
			return 0, errors.Errorf("unrecognized opcode %d at offset %d", op, i-1)
		}
	}

	if len(stack) == 0 {
		return 0, nil
	}
	return stack[len(stack)-1], nil
}

func boolU64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
