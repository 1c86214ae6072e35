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

// Package stage lowers a Contract AST into a flat finite state machine:
// every node that can be a unit of on-chain execution is assigned a
// dense integer stage ID, in the order a depth-first walk of the
// contract reaches it.
package stage

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/menabrealabs/marlowe-move/ast"
	"github.com/menabrealabs/marlowe-move/tokenresolve"
)

// Kind names which per-stage record table a stage belongs to.
type Kind string

const (
	KindClose   Kind = "close"
	KindPay     Kind = "pay"
	KindIf      Kind = "if"
	KindWhen    Kind = "when"
	KindLet     Kind = "let"
	KindAssert  Kind = "assert"
)

// CloseInfo marks the terminal stage.
type CloseInfo struct {
	Stage int
}

// PayInfo is a Pay lowered to a single automatically-executed stage.
type PayInfo struct {
	Stage          int
	FromAccount    ast.AccountId
	To             ast.Payee
	Token          ast.Token
	Amount         ast.Value
	NextStage      int
	MoveTokenType  string
}

// IfInfo is an If lowered to a branch between two already-allocated
// stage ranges.
type IfInfo struct {
	Stage     int
	Condition ast.Observation
	ThenStage int
	ElseStage int
}

// LetInfo is a Let lowered to a single automatically-executed stage.
type LetInfo struct {
	Stage int
	Name  string
	Value ast.Value
}

// AssertInfo is an Assert lowered to a single automatically-executed
// stage.
type AssertInfo struct {
	Stage       int
	Observation ast.Observation
}

// DepositInfo is one Deposit case of a When, keyed by (Stage, CaseIndex).
type DepositInfo struct {
	Stage         int
	CaseIndex     int
	Party         ast.Party
	IntoAccount   ast.AccountId
	Token         ast.Token
	Value         ast.Value
	NextStage     int
	MoveTokenType string
}

// ChoiceInfo is one Choice case of a When.
type ChoiceInfo struct {
	Stage     int
	CaseIndex int
	ChoiceId  ast.ChoiceId
	Bounds    []ast.Bound
	NextStage int
}

// NotifyInfo is one Notify case of a When.
type NotifyInfo struct {
	Stage       int
	CaseIndex   int
	Observation ast.Observation
	NextStage   int
}

// WhenInfo describes the waiting stage itself; its cases live in the
// Deposits/Choices/Notifies tables of Program, filtered by Stage.
type WhenInfo struct {
	Stage        int
	Timeout      int64
	CasesCount   int
	TimeoutStage int
}

// WhenCases is the composite case lookup for a single When stage,
// grouping its deposit/choice/notify sub-tables the way the target
// emitter needs them when it writes one entry function per case.
type WhenCases struct {
	Deposits []DepositInfo
	Choices  []ChoiceInfo
	Notifies []NotifyInfo
}

// Program is the flattened result of lowering a Contract: one record
// per stage, grouped by Kind, plus a composite lookup keyed by stage ID.
type Program struct {
	TotalStages int

	Closes  []CloseInfo
	Pays    []PayInfo
	Ifs     []IfInfo
	Lets    []LetInfo
	Asserts []AssertInfo
	Whens   []WhenInfo

	Deposits []DepositInfo
	Choices  []ChoiceInfo
	Notifies []NotifyInfo

	// Lookup maps every allocated stage ID to its Kind. Use Lookup to
	// find the record in the matching table above; a "when" stage's
	// cases are grouped by the helper WhenCasesFor.
	Lookup map[int]Kind

	// Warnings collects one message per Token that tokenresolve.Table
	// could not resolve; allocation still proceeds, emitting
	// tokenresolve.UnknownType for that stage's token type.
	Warnings []string
}

// WhenCasesFor returns the composite case table for a "when" stage,
// mirroring move_generator.py's build_stage_lookup grouping.
func (p *Program) WhenCasesFor(whenStage int) WhenCases {
	var cases WhenCases
	for _, d := range p.Deposits {
		if d.Stage == whenStage {
			cases.Deposits = append(cases.Deposits, d)
		}
	}
	for _, c := range p.Choices {
		if c.Stage == whenStage {
			cases.Choices = append(cases.Choices, c)
		}
	}
	for _, n := range p.Notifies {
		if n.Stage == whenStage {
			cases.Notifies = append(cases.Notifies, n)
		}
	}
	return cases
}

type allocator struct {
	tokens  tokenresolve.Table
	program *Program
}

func (a *allocator) warnUnresolvedToken(s int, tok ast.Token) {
	a.program.Warnings = append(a.program.Warnings, fmt.Sprintf(
		"stage %d: could not resolve token %q/%q to a Move type", s, tok.CurrencySymbol, tok.TokenName))
}

// Allocate lowers c into a Program, resolving every Token it encounters
// against tokens. Token resolution failures are appended to
// Program.Warnings; Allocate never fails on an unresolved token. It
// returns an error for a Pay whose Payee is an ast.AccountPayee, and
// for a contract or action type the walk does not recognize.
func Allocate(c ast.Contract, tokens tokenresolve.Table) (*Program, error) {
	a := &allocator{
		tokens: tokens,
		program: &Program{
			Lookup: make(map[int]Kind),
		},
	}
	nextStage, err := a.walk(c, 0)
	if err != nil {
		return nil, err
	}
	a.program.TotalStages = nextStage
	return a.program, nil
}

// walk lowers c starting at stage, returning the first unused stage ID
// after everything c allocated. This mirrors
// fsm_model.py's parse_contract_to_infos exactly: Pay/Let/Assert
// consume one stage and recurse into Then at stage+1; If recurses into
// Then immediately after its own stage, then Else right after Then
// ends; When allocates each case's continuation depth-first before its
// own timeout continuation, and its own WhenInfo stage never advances
// past what its cases already consumed.
func (a *allocator) walk(c ast.Contract, s int) (int, error) {
	switch v := c.(type) {
	case ast.CloseContract:
		a.program.Closes = append(a.program.Closes, CloseInfo{Stage: s})
		a.program.Lookup[s] = KindClose
		return s + 1, nil

	case ast.Pay:
		if _, toAccount := v.Payee.(ast.AccountPayee); toAccount {
			return 0, errors.Errorf("stage %d: Pay to an internal Account is not supported; Payee must resolve to an external Party", s)
		}
		moveType, ok := a.tokens.Resolve(v.Token)
		if !ok {
			a.warnUnresolvedToken(s, v.Token)
		}
		a.program.Pays = append(a.program.Pays, PayInfo{
			Stage:         s,
			FromAccount:   v.AccountId,
			To:            v.Payee,
			Token:         v.Token,
			Amount:        v.Value,
			NextStage:     s + 1,
			MoveTokenType: moveType,
		})
		a.program.Lookup[s] = KindPay
		return a.walk(v.Then, s+1)

	case ast.Let:
		a.program.Lets = append(a.program.Lets, LetInfo{Stage: s, Name: v.ValueId, Value: v.Value})
		a.program.Lookup[s] = KindLet
		return a.walk(v.Then, s+1)

	case ast.Assert:
		a.program.Asserts = append(a.program.Asserts, AssertInfo{Stage: s, Observation: v.Observation})
		a.program.Lookup[s] = KindAssert
		return a.walk(v.Then, s+1)

	case ast.If:
		thenStart := s + 1
		thenEnd, err := a.walk(v.Then, thenStart)
		if err != nil {
			return 0, err
		}
		elseStart := thenEnd
		elseEnd, err := a.walk(v.Else, elseStart)
		if err != nil {
			return 0, err
		}
		a.program.Ifs = append(a.program.Ifs, IfInfo{
			Stage:     s,
			Condition: v.Observation,
			ThenStage: thenStart,
			ElseStage: elseStart,
		})
		a.program.Lookup[s] = KindIf
		return elseEnd, nil

	case ast.When:
		nextChild := s + 1
		caseStarts := make([]int, len(v.Cases))
		for i, cs := range v.Cases {
			caseStarts[i] = nextChild
			end, err := a.walk(cs.Then, nextChild)
			if err != nil {
				return 0, err
			}
			nextChild = end
		}

		timeoutStart := nextChild
		timeoutEnd, err := a.walk(v.TimeoutContinuation, timeoutStart)
		if err != nil {
			return 0, err
		}

		a.program.Whens = append(a.program.Whens, WhenInfo{
			Stage:        s,
			Timeout:      v.Timeout,
			CasesCount:   len(v.Cases),
			TimeoutStage: timeoutStart,
		})
		a.program.Lookup[s] = KindWhen

		for i, cs := range v.Cases {
			caseNext := caseStarts[i]
			switch act := cs.Action.(type) {
			case ast.Deposit:
				moveType, ok := a.tokens.Resolve(act.Token)
				if !ok {
					a.warnUnresolvedToken(s, act.Token)
				}
				a.program.Deposits = append(a.program.Deposits, DepositInfo{
					Stage:         s,
					CaseIndex:     i,
					Party:         act.Party,
					IntoAccount:   act.IntoAccount,
					Token:         act.Token,
					Value:         act.Value,
					NextStage:     caseNext,
					MoveTokenType: moveType,
				})
			case ast.Choice:
				a.program.Choices = append(a.program.Choices, ChoiceInfo{
					Stage:     s,
					CaseIndex: i,
					ChoiceId:  act.ChoiceId,
					Bounds:    act.Bounds,
					NextStage: caseNext,
				})
			case ast.Notify:
				a.program.Notifies = append(a.program.Notifies, NotifyInfo{
					Stage:       s,
					CaseIndex:   i,
					Observation: act.Observation,
					NextStage:   caseNext,
				})
			default:
				return 0, errors.Errorf("stage %d: unrecognized action type %T", s, act)
			}
		}

		return timeoutEnd, nil

	default:
		return 0, errors.Errorf("stage %d: unrecognized contract type %T", s, v)
	}
}
