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

package batch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menabrealabs/marlowe-move/batch"
	"github.com/menabrealabs/marlowe-move/parser"
	"github.com/menabrealabs/marlowe-move/tokenresolve"
)

func TestCompileAll_IsolatesOneFailureFromTheRest(t *testing.T) {
	specs := []batch.Input{
		{ModuleName: "good", JSON: []byte(`"close"`)},
		{ModuleName: "bad", JSON: []byte(`{not json`)},
		{ModuleName: "also_good", JSON: []byte(`"close"`)},
	}

	results := batch.CompileAll(specs, tokenresolve.Default(), parser.Options{}, nil)
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err, "expected %q to succeed", results[0].ModuleName)
	assert.Error(t, results[1].Err, "expected %q to fail", results[1].ModuleName)
	assert.NoError(t, results[2].Err, "expected %q to succeed after a prior failure", results[2].ModuleName)
	assert.Contains(t, results[0].Output.Move, "module marlowe::good")
}

func TestCompileAll_EmptyInputYieldsEmptyResults(t *testing.T) {
	results := batch.CompileAll(nil, tokenresolve.Default(), parser.Options{}, nil)
	assert.Empty(t, results)
}
