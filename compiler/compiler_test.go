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

package compiler_test

import (
	"strings"
	"testing"

	"github.com/menabrealabs/marlowe-move/compiler"
	"github.com/menabrealabs/marlowe-move/parser"
	"github.com/menabrealabs/marlowe-move/tokenresolve"
)

const swapContract = `{
	"when": [{
		"case": {
			"for_choice": {"choice_name": "price", "choice_owner": {"role_token": "oracle"}},
			"choose_between": [{"from": 1, "to": 1000}]
		},
		"then": {
			"pay": {"use_value": "chosenAmount"},
			"from_account": {"role_token": "buyer"},
			"to": {"party": {"role_token": "seller"}},
			"token": {"currency_symbol": "", "token_name": ""},
			"then": "close"
		}
	}],
	"timeout": 1700000000000,
	"timeout_continuation": "close"
}`

func TestCompile_SwapContractProducesAllThreeArtifacts(t *testing.T) {
	out, err := compiler.Compile([]byte(swapContract), tokenresolve.Default(), parser.Options{}, "swap_ada")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.Move, "module marlowe::swap_ada") {
		t.Errorf("expected the Move module declaration, got:\n%s", out.Move)
	}
	if !strings.Contains(out.Move, "choice_stage_0_case_0") {
		t.Errorf("expected a choice entry function, got:\n%s", out.Move)
	}
	if !strings.Contains(out.Move, "fun internal_pay_stage_1") {
		t.Errorf("expected the chained Pay to compile to an internal function, got:\n%s", out.Move)
	}
	if !strings.Contains(out.Test, "module marlowe::swap_ada_tests") {
		t.Errorf("expected a dedicated test module, got:\n%s", out.Test)
	}
	if !strings.Contains(out.SDK, "class MarloweContract") {
		t.Errorf("expected the SDK class declaration, got:\n%s", out.SDK)
	}
}

func TestCompile_InvalidJSONFails(t *testing.T) {
	if _, err := compiler.Compile([]byte(`{not json`), tokenresolve.Default(), parser.Options{}, "broken"); err == nil {
		t.Fatal("expected a parse error for malformed JSON")
	}
}

func TestCompile_PayToAccountFailsBeforeEmission(t *testing.T) {
	src := `{"pay": 10, "from_account": {"role_token": "a"}, "to": {"account": {"role_token": "b"}}, "token": {"currency_symbol": "", "token_name": ""}, "then": "close"}`
	if _, err := compiler.Compile([]byte(src), tokenresolve.Default(), parser.Options{}, "bad"); err == nil {
		t.Fatal("expected Pay-to-Account to fail during compilation")
	}
}

func TestCompile_ThreadsValidateBech32AddressesThrough(t *testing.T) {
	src := `{"pay": 10, "from_account": {"role_token": "a"}, "to": {"party": {"address": "not-a-bech32-address"}}, "token": {"currency_symbol": "", "token_name": ""}, "then": "close"}`

	if _, err := compiler.Compile([]byte(src), tokenresolve.Default(), parser.Options{}, "lax"); err != nil {
		t.Fatalf("expected a non-bech32 address to pass when validation is off, got: %v", err)
	}

	opts := parser.Options{ValidateBech32Addresses: true}
	if _, err := compiler.Compile([]byte(src), tokenresolve.Default(), opts, "strict"); err == nil {
		t.Fatal("expected Compile to reject the invalid bech32 address once ValidateBech32Addresses is threaded through")
	}
}
