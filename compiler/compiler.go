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

// Package compiler is the single pure entry point of the whole module:
// decoded contract JSON in, generated Move source/test module/TypeScript
// SDK out. It performs no file or network I/O of its own; callers decide
// where the JSON comes from and where the three outputs go, the same
// separation cli.py keeps between its build_single_spec (pure transform)
// and its os.path/open calls around it.
package compiler

import (
	"github.com/pkg/errors"

	"github.com/menabrealabs/marlowe-move/emit"
	"github.com/menabrealabs/marlowe-move/parser"
	"github.com/menabrealabs/marlowe-move/stage"
	"github.com/menabrealabs/marlowe-move/tokenresolve"
)

// Output bundles the three generated artifacts a single contract
// compiles to, mirroring the three files build_single_spec writes per
// spec: the Move module, its test module, and a TypeScript SDK stub.
type Output struct {
	Move string
	Test string
	SDK  string
}

// Compile turns contract JSON source into a Move module, a Move test
// module exercising its happy path, and a TypeScript SDK stub, named
// after moduleName throughout. opts carries the surface-parser options
// (e.g. ValidateBech32Addresses) a config.Config describes for the
// run; callers with no config to apply pass parser.Options{}. Grounded
// on main.py's six-step pipeline (load JSON -> parse to AST -> lower to
// StageInfo blueprints -> build the stage lookup -> generate Move ->
// write file) and cli.py's build_single_spec, both stripped of file
// I/O: parsing, stage allocation and code generation stay exactly as
// those two reference scripts sequence them, only the read/write at
// each end is removed.
func Compile(data []byte, tokens tokenresolve.Table, opts parser.Options, moduleName string) (Output, error) {
	contract, err := parser.Parse(data, opts)
	if err != nil {
		return Output{}, errors.Wrap(err, "parsing contract JSON")
	}

	program, err := stage.Allocate(contract, tokens)
	if err != nil {
		return Output{}, errors.Wrap(err, "lowering contract to stages")
	}

	move, err := emit.Module(program, moduleName)
	if err != nil {
		return Output{}, errors.Wrap(err, "generating Move module")
	}

	return Output{
		Move: move,
		Test: emit.TestModule(program, moduleName),
		SDK:  emit.SDKStub(program, moduleName),
	}, nil
}
