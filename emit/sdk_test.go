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

package emit_test

import (
	"strings"
	"testing"

	"github.com/menabrealabs/marlowe-move/ast"
	"github.com/menabrealabs/marlowe-move/emit"
	"github.com/menabrealabs/marlowe-move/stage"
	"github.com/menabrealabs/marlowe-move/tokenresolve"
)

func TestSDKStub_EmitsOneMethodPerChoiceAndTimeout(t *testing.T) {
	contract := ast.When{
		Cases: []ast.Case{{
			Action: ast.Choice{
				ChoiceId: ast.ChoiceId{Name: "outcome", Owner: ast.RoleParty{RoleName: "oracle"}},
				Bounds:   []ast.Bound{{From: 0, To: 1}},
			},
			Then: ast.CloseContract{},
		}},
		Timeout:             1000,
		TimeoutContinuation: ast.CloseContract{},
	}
	p, err := stage.Allocate(contract, tokenresolve.Default())
	if err != nil {
		t.Fatal(err)
	}
	ts := emit.SDKStub(p, "choice_contract")

	if !strings.Contains(ts, "choice_Stage0_0_outcome") {
		t.Errorf("expected a choice method, got:\n%s", ts)
	}
	if !strings.Contains(ts, "timeout_Stage0") {
		t.Errorf("expected a timeout method, got:\n%s", ts)
	}
	if !strings.Contains(ts, `"0":1000`) {
		t.Errorf("expected the timeouts map to list stage 0 -> 1000, got:\n%s", ts)
	}
	if !strings.Contains(ts, "class MarloweContract") {
		t.Errorf("expected the class declaration, got:\n%s", ts)
	}
}

func TestSDKStub_TrivialCloseProducesNoEntryMethods(t *testing.T) {
	p, err := stage.Allocate(ast.CloseContract{}, tokenresolve.Default())
	if err != nil {
		t.Fatal(err)
	}
	ts := emit.SDKStub(p, "trivial_close")
	if strings.Contains(ts, "choice_Stage") || strings.Contains(ts, "deposit_Stage") {
		t.Errorf("did not expect any entry methods for a bare Close contract, got:\n%s", ts)
	}
}
