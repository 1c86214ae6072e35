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

package ast

import (
	"fmt"
	"math/big"
)

// Value is a total, side-effect-free (except for time reads) integer
// expression. Values and Observations are mutually recursive language
// terms; Value evaluates to an integer.
type Value interface {
	isValue()
}

func (v Constant) isValue()           {}
func (v NegValue) isValue()           {}
func (v AddValue) isValue()           {}
func (v SubValue) isValue()           {}
func (v MulValue) isValue()           {}
func (v DivValue) isValue()           {}
func (v AvailableMoney) isValue()     {}
func (v ChoiceValue) isValue()        {}
func (v UseValue) isValue()           {}
func (v TimeIntervalStart) isValue()  {}
func (v TimeIntervalEnd) isValue()    {}
func (v Cond) isValue()               {}

// Constant holds an arbitrary-precision integer literal. It is narrowed
// to uint64 only at bytecode-emission time, matching the 8-byte operand
// the stack VM's CONST opcode carries.
type Constant struct {
	Value big.Int
}

// NewConstant builds a Constant from a decimal string.
func NewConstant(decimal string) (Constant, error) {
	i, ok := new(big.Int).SetString(decimal, 10)
	if !ok {
		return Constant{}, fmt.Errorf("invalid integer constant %q", decimal)
	}
	return Constant{Value: *i}, nil
}

// MarshalJSON renders the constant as a bare JSON integer literal.
func (v Constant) MarshalJSON() ([]byte, error) {
	return []byte(v.Value.String()), nil
}

// NegValue negates its operand: -x.
type NegValue struct {
	Negate Value `json:"negate"`
}

// AddValue is addition: x + y. The surface syntax keys are asymmetric
// by design ("add"/"and") and must be reproduced verbatim.
type AddValue struct {
	Add Value `json:"add"`
	And Value `json:"and"`
}

// SubValue is subtraction: value - minus.
type SubValue struct {
	Value Value `json:"value"`
	Minus Value `json:"minus"`
}

// MulValue is multiplication: multiply * times.
type MulValue struct {
	Multiply Value `json:"multiply"`
	Times    Value `json:"times"`
}

// DivValue is division, truncating towards zero: divide / by.
type DivValue struct {
	Divide Value `json:"divide"`
	By     Value `json:"by"`
}

// AvailableMoney reports the amount of Token held in Account's internal
// ledger balance.
type AvailableMoney struct {
	Token   Token     `json:"amount_of_token"`
	Account AccountId `json:"in_account"`
}

// ChoiceValue reports the most recent value chosen for ChoiceId, or
// zero if no such choice has been made.
type ChoiceValue struct {
	ChoiceId ChoiceId `json:"value_of_choice"`
}

// UseValue reports the most recent value bound to Name by a Let, or
// zero if it has not yet been set.
type UseValue struct {
	Name string `json:"use_value"`
}

// TimeIntervalStart evaluates to the start of the validity interval of
// the transaction currently being applied.
type TimeIntervalStart struct{}

func (TimeIntervalStart) MarshalJSON() ([]byte, error) { return []byte(`"time_interval_start"`), nil }

// TimeIntervalEnd evaluates to the end of the validity interval of the
// transaction currently being applied.
type TimeIntervalEnd struct{}

func (TimeIntervalEnd) MarshalJSON() ([]byte, error) { return []byte(`"time_interval_end"`), nil }

// Cond evaluates to IfTrue when If holds, and to IfFalse otherwise. The
// surface shape is {if, then, else} — the same shape as the If
// contract; the parser disambiguates by calling context (spec.md §4.1).
type Cond struct {
	If   Observation `json:"if"`
	Then Value       `json:"then"`
	Else Value       `json:"else"`
}
