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

// Package tokenresolve maps a contract Token (currency symbol, token
// name) onto the fully-qualified Move type the target emitter writes
// into generated field and parameter types.
package tokenresolve

import (
	"strings"

	"github.com/menabrealabs/marlowe-move/ast"
)

// NativeType is the fully-qualified Move type of the chain-native asset.
const NativeType = "sui::sui::SUI"

// UnknownType is returned, together with ok=false, when a token cannot
// be resolved by any of the three tiers.
const UnknownType = "ERROR_UNKNOWN_TOKEN_TYPE"

// Table resolves tokens by explicit "symbol:name" entries. An entry can
// be added for every non-native token a given batch of contracts uses;
// anything absent falls through to the pass-through and native-default
// tiers in Resolve.
type Table struct {
	entries map[string]string
}

// New builds a Table from an explicit symbol:name -> Move type map. A
// nil or empty seed is valid; Resolve still handles pass-through and
// native tokens with no entries at all.
func New(seed map[string]string) Table {
	entries := make(map[string]string, len(seed))
	for k, v := range seed {
		entries[k] = v
	}
	return Table{entries: entries}
}

// Default returns the table seeded with the mappings the reference
// generator shipped inline, kept here only as a convenience starting
// point for callers that have no configuration of their own yet.
func Default() Table {
	return New(map[string]string{
		":":                "sui::sui::SUI",
		"0x2::sui::SUI:SUI": "sui::sui::SUI",
	})
}

// Set adds or overwrites the mapping for a single "symbol:name" key.
func (t Table) Set(currencySymbol, tokenName, moveType string) {
	t.entries[key(currencySymbol, tokenName)] = moveType
}

// Resolve maps tok to a fully-qualified Move type string, in three
// tiers: (1) an explicit Table entry keyed by "symbol:name", (2)
// pass-through when the currency symbol already looks like a Move type
// (contains "::"), (3) the chain-native type when both fields are
// empty. Anything else returns (UnknownType, false) so the caller can
// log a warning and continue rather than aborting the whole batch.
func (t Table) Resolve(tok ast.Token) (moveType string, ok bool) {
	if v, found := t.entries[key(tok.CurrencySymbol, tok.TokenName)]; found {
		return v, true
	}
	if strings.Contains(tok.CurrencySymbol, "::") {
		return tok.CurrencySymbol, true
	}
	if tok.IsNative() {
		return NativeType, true
	}
	return UnknownType, false
}

func key(currencySymbol, tokenName string) string {
	return currencySymbol + ":" + tokenName
}
