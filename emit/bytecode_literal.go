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

// Package emit renders a stage.Program into the Sui Move-shaped TCL
// text described in SPEC_FULL.md §4.4, plus a happy-path test module
// and a TypeScript SDK stub. It never talks to a Move toolchain; it
// only produces text.
package emit

import (
	"strconv"
	"strings"

	"github.com/menabrealabs/marlowe-move/ast"
	"github.com/menabrealabs/marlowe-move/bytecode"
)

// moveVector renders a byte slice as a Move vector<u8> literal, the
// same shape move_generator.py's generate_bytecode produces.
func moveVector(b []byte) string {
	parts := make([]string, len(b))
	for i, x := range b {
		parts[i] = strconv.Itoa(int(x))
	}
	return "vector[" + strings.Join(parts, ", ") + "]"
}

func valueBytecode(v ast.Value) (string, error) {
	code, err := bytecode.Compile(v)
	if err != nil {
		return "", err
	}
	return moveVector(code), nil
}

func observationBytecode(o ast.Observation) (string, error) {
	code, err := bytecode.CompileObservation(o)
	if err != nil {
		return "", err
	}
	return moveVector(code), nil
}
