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

// Package ast contains the typed representation of the source contract
// language: contracts, values, observations, parties and tokens.
// See: https://github.com/input-output-hk/marlowe-cardano/tree/main/marlowe/specification
package ast

// Party distinguishes a fixed chain Address from a dynamic, transferable
// Role. "A participant (or Party) in the contract can be represented by
// either a fixed Address or a Role." (§2.1.1)
type Party interface {
	isParty()
	// Repr returns the stable, byte-exact representation used both as a
	// bytecode operand (GET_ACC/GET_CHOICE keys) and as a runtime table
	// key. It must never change shape between the compiler and the
	// generated contract.
	Repr() string
}

// AddressParty is an opaque chain address. It cannot be traded; it is
// fixed for the lifetime of a contract.
type AddressParty struct {
	Address string `json:"address"`
}

func (p AddressParty) isParty()      {}
func (p AddressParty) Repr() string  { return "Address(" + p.Address + ")" }

// RoleParty lets contract participation be dynamic: whoever holds the
// role capability token for RoleName may act on its behalf.
type RoleParty struct {
	RoleName string `json:"role_token"`
}

func (p RoleParty) isParty()     {}
func (p RoleParty) Repr() string { return "Role(" + p.RoleName + ")" }

// AccountId names the internal account a Deposit/Pay reads or writes;
// in this language accounts are identified by their owning Party.
type AccountId = Party

// Payee is either an external Party (a direct send) or an internal
// Account (a ledger move between two of the contract's own accounts).
type Payee interface {
	isPayee()
}

// PartyPayee sends out of the contract to an external Party.
type PartyPayee struct {
	Party Party `json:"party"`
}

func (p PartyPayee) isPayee() {}

// AccountPayee moves funds between two internal accounts of the
// contract, each named by the Party that owns the account.
type AccountPayee struct {
	Account AccountId `json:"account"`
}

func (p AccountPayee) isPayee() {}

// Token identifies a fungible asset by a CurrencySymbol (the monetary
// policy) and a TokenName (distinguishing assets under one policy).
// Both fields empty denotes the chain-native token.
type Token struct {
	CurrencySymbol string `json:"currency_symbol"`
	TokenName      string `json:"token_name"`
}

// IsNative reports whether this Token is the chain-native asset.
func (t Token) IsNative() bool {
	return t.CurrencySymbol == "" && t.TokenName == ""
}

// ChoiceId names a choice by a canonical name and the Party permitted
// to make it.
type ChoiceId struct {
	Name  string `json:"choice_name"`
	Owner Party  `json:"choice_owner"`
}

// Key returns the stable "name:owner" representation used both as a
// GET_CHOICE bytecode operand and as the runtime choices-table key.
func (c ChoiceId) Key() string {
	return c.Name + ":" + c.Owner.Repr()
}

// Bound is an inclusive integer interval a Choice input must fall into.
type Bound struct {
	From uint64 `json:"from"`
	To   uint64 `json:"to"`
}

// Contains reports whether n falls within this inclusive bound.
func (b Bound) Contains(n uint64) bool {
	return n >= b.From && n <= b.To
}
