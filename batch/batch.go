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

// Package batch compiles a list of contract specs one at a time,
// isolating one spec's failure from the rest of the run. Grounded on
// cli.py's cmd_build: it iterates every spec file, calls
// build_single_spec for each, and keeps a running success/fail count
// instead of aborting the whole batch on the first error. This package
// keeps that isolation behavior but drops the file-discovery and
// progress-bar concerns cli.py mixes in, since those are presentation
// and I/O rather than the compile step itself (spec.md §1 Non-goals).
package batch

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/menabrealabs/marlowe-move/compiler"
	"github.com/menabrealabs/marlowe-move/parser"
	"github.com/menabrealabs/marlowe-move/tokenresolve"
)

// Input is one spec to compile: its raw JSON source and the module
// name its three generated artifacts are named after.
type Input struct {
	ModuleName string
	JSON       []byte
}

// Result pairs one Input's outcome with its module name, so a caller
// can report per-spec results without re-threading the input list.
type Result struct {
	ModuleName string
	Output     compiler.Output
	Err        error
}

// CompileAll compiles every spec in specs against the same token
// table and surface-parser options, sequentially, in order. opts is
// the same parser.Options every spec in the batch is parsed with,
// typically a config.Config's ParserOptions(); pass parser.Options{}
// for the zero-configuration baseline. One spec's error never stops
// the batch: it is recorded in that spec's Result and the loop
// continues, matching cmd_build's success_count/fail_count accounting
// rather than cmd_validate's fail-fast. log, when non-nil, gets one
// structured line per spec tagged with a batch-run correlation id, the
// same per-run id attached to every line cli.py's Progress bar would
// have shown interactively.
func CompileAll(specs []Input, tokens tokenresolve.Table, opts parser.Options, log *logrus.Logger) []Result {
	runID := uuid.New().String()
	results := make([]Result, 0, len(specs))

	for _, spec := range specs {
		out, err := compiler.Compile(spec.JSON, tokens, opts, spec.ModuleName)
		results = append(results, Result{ModuleName: spec.ModuleName, Output: out, Err: err})

		if log == nil {
			continue
		}
		entry := log.WithFields(logrus.Fields{
			"run_id": runID,
			"module": spec.ModuleName,
		})
		if err != nil {
			entry.WithError(err).Error("spec build failed")
			continue
		}
		entry.Info("spec build succeeded")
	}

	return results
}
