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

// Package parser turns decoded JSON contract source into an ast.Contract.
// encoding/json cannot unmarshal directly into the ast interfaces (Value,
// Observation, Party, ...) because a JSON object does not name its Go
// type; this package dispatches on which keys are present instead, the
// same way fsm_model.py's isinstance checks dispatch on which dataclass
// fields are present in a parsed contract object.
package parser

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"

	"github.com/menabrealabs/marlowe-move/ast"
)

// ParseError locates a parse failure within the source document.
type ParseError struct {
	Path    string
	Message string
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func errAt(path, format string, args ...interface{}) error {
	return errors.WithStack(&ParseError{Path: path, Message: fmt.Sprintf(format, args...)})
}

// Options controls optional validation the parser performs beyond basic
// shape recognition.
type Options struct {
	// ValidateBech32Addresses runs AddressParty.ValidateBech32 on every
	// address party encountered. Off by default: most deployments use
	// raw target-chain hex addresses, which are not bech32 (ast.bech32.go).
	ValidateBech32Addresses bool
}

// Parse decodes raw JSON contract source into a Contract AST. The
// returned error, when non-nil, is always a *ParseError wrapped with a
// stack trace and can be type-asserted to recover Path.
func Parse(data []byte, opts Options) (ast.Contract, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errAt("$", "invalid JSON: %s", err)
	}
	p := &parser{opts: opts}
	return p.contract(raw, "$")
}

type parser struct {
	opts Options
}

// asObject decodes raw into a field map, failing with a located error if
// raw is not a JSON object.
func (p *parser) asObject(raw json.RawMessage, path string) (map[string]json.RawMessage, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, errAt(path, "expected an object, got %s", shortForm(raw))
	}
	return m, nil
}

func (p *parser) field(m map[string]json.RawMessage, path, key string) (json.RawMessage, error) {
	v, ok := m[key]
	if !ok {
		return nil, errAt(path, "missing required field %q", key)
	}
	return v, nil
}

func (p *parser) string(raw json.RawMessage, path string) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", errAt(path, "expected a string, got %s", shortForm(raw))
	}
	return s, nil
}

func (p *parser) integer(raw json.RawMessage, path string) (int64, error) {
	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, errAt(path, "expected an integer, got %s", shortForm(raw))
	}
	return n, nil
}

func (p *parser) uinteger(raw json.RawMessage, path string) (uint64, error) {
	var n uint64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, errAt(path, "expected a non-negative integer, got %s", shortForm(raw))
	}
	return n, nil
}

// shortForm renders a compact fragment of raw for use in error messages,
// truncating anything long rather than dumping whole subtrees.
func shortForm(raw json.RawMessage) string {
	const max = 60
	s := string(raw)
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
