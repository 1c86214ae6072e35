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

package translator_test

import (
	"testing"

	"github.com/menabrealabs/marlowe-move/ast"
	"github.com/menabrealabs/marlowe-move/bytecode"
	"github.com/menabrealabs/marlowe-move/translator"
)

func TestDisassemble_ConstantAddition(t *testing.T) {
	one, err := ast.NewConstant("1")
	if err != nil {
		t.Fatal(err)
	}
	two, err := ast.NewConstant("2")
	if err != nil {
		t.Fatal(err)
	}
	code, err := bytecode.Compile(ast.AddValue{Add: one, And: two})
	if err != nil {
		t.Fatal(err)
	}

	toks := translator.Disassemble(code)
	want := []string{"CONST", "1", "CONST", "2", "ADD"}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(want), toks)
	}
	for i, w := range want {
		if toks[i].Value != w {
			t.Errorf("token %d: got %q, want %q", i, toks[i].Value, w)
		}
	}
}

func TestDisassemble_GetAccHasTwoStringOperands(t *testing.T) {
	code, err := bytecode.Compile(ast.AvailableMoney{
		Account: ast.RoleParty{RoleName: "seller"},
		Token:   ast.Token{},
	})
	if err != nil {
		t.Fatal(err)
	}
	toks := translator.Disassemble(code)
	if len(toks) != 3 {
		t.Fatalf("expected OPCODE + 2 STRING operands, got %+v", toks)
	}
	if toks[0].Value != "GET_ACC" || toks[0].Type != translator.OPCODE {
		t.Errorf("expected leading GET_ACC opcode token, got %+v", toks[0])
	}
	if toks[1].Type != translator.STRING || toks[2].Type != translator.STRING {
		t.Errorf("expected two STRING operand tokens, got %+v", toks[1:])
	}
}

func TestDisassemble_TruncatedOperandYieldsInvalid(t *testing.T) {
	toks := translator.Disassemble([]byte{byte(bytecode.CONST), 0x01, 0x02})
	if len(toks) != 1 || toks[0].Type != translator.INVALID {
		t.Fatalf("expected a single INVALID token for a truncated CONST, got %+v", toks)
	}
}

func TestDisassemble_UnknownOpcodeYieldsInvalid(t *testing.T) {
	toks := translator.Disassemble([]byte{0xfe})
	if len(toks) != 1 || toks[0].Type != translator.INVALID {
		t.Fatalf("expected a single INVALID token for an unrecognized opcode, got %+v", toks)
	}
}
