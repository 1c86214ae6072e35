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

// Package translator turns a compiled bytecode.Op stream back into a
// flat token list for debug printing and golden-file tests. It walks
// the byte vector the same way a scanner walks a rune stream: one
// cursor that only moves forward, one instruction (an OPCODE token and
// its operand tokens) per call.
package translator

import (
	"encoding/binary"
	"fmt"

	"github.com/menabrealabs/marlowe-move/bytecode"
)

// TokenType classifies a single disassembled unit: an opcode mnemonic,
// an integer operand, or a length-prefixed string operand.
type TokenType uint8

const (
	EOF TokenType = iota
	INVALID
	OPCODE
	INT
	STRING
)

var typeNames = [...]string{
	EOF:     "EOF",
	INVALID: "INVALID",
	OPCODE:  "OPCODE",
	INT:     "INT",
	STRING:  "STRING",
}

func (t TokenType) String() string { return typeNames[t] }

// Position is the byte offset of a Token's first byte in the stream.
type Position struct {
	Offset int
}

// Token is one disassembled unit: an opcode mnemonic (e.g. "GET_ACC"),
// or one of its operands rendered as decimal (INT) or raw text
// (STRING).
type Token struct {
	Type     TokenType
	Value    string
	Position Position
}

var mnemonics = map[bytecode.Op]string{
	bytecode.ZERO:       "ZERO",
	bytecode.TRUE:       "TRUE",
	bytecode.CONST:      "CONST",
	bytecode.ADD:        "ADD",
	bytecode.SUB:        "SUB",
	bytecode.MUL:        "MUL",
	bytecode.DIV:        "DIV",
	bytecode.NEG:        "NEG",
	bytecode.GET_ACC:    "GET_ACC",
	bytecode.GET_CHOICE: "GET_CHOICE",
	bytecode.USE_VAL:    "USE_VAL",
	bytecode.HAS_CHOICE: "HAS_CHOICE",
	bytecode.TIME_START: "TIME_START",
	bytecode.TIME_END:   "TIME_END",
	bytecode.GT:         "GT",
	bytecode.GE:         "GE",
	bytecode.AND:        "AND",
	bytecode.OR:         "OR",
	bytecode.NOT:        "NOT",
	bytecode.CJUMP:      "CJUMP",
}

type disassembler struct {
	code []byte
	pos  int
}

// Disassemble walks a compiled opcode stream and returns one OPCODE
// token per instruction, followed by an INT or STRING token per
// operand the instruction carries, in the exact wire layout
// bytecode.Compile emits (see bytecode/opcode.go's per-opcode operand
// comments). An unrecognized opcode byte or a truncated operand yields
// a single trailing INVALID token; Disassemble never panics on
// malformed input.
func Disassemble(code []byte) []Token {
	d := &disassembler{code: code}
	var out []Token
	for d.pos < len(d.code) {
		toks, ok := d.next()
		out = append(out, toks...)
		if !ok {
			break
		}
	}
	return out
}

// next disassembles one instruction, returning its OPCODE token
// followed by zero or more operand tokens. ok is false when the byte
// at the instruction's start is not a recognized opcode, or an operand
// runs past the end of the stream; in that case the returned slice
// holds a single trailing INVALID token and the caller should stop.
func (d *disassembler) next() ([]Token, bool) {
	start := d.pos
	op := bytecode.Op(d.code[d.pos])
	name, known := mnemonics[op]
	if !known {
		return []Token{{Type: INVALID, Value: fmt.Sprintf("0x%02x", op), Position: Position{start}}}, false
	}
	d.pos++
	opTok := Token{Type: OPCODE, Value: name, Position: Position{start}}

	switch op {
	case bytecode.CONST:
		if d.pos+8 > len(d.code) {
			return []Token{{Type: INVALID, Value: "truncated CONST operand", Position: Position{start}}}, false
		}
		v := binary.BigEndian.Uint64(d.code[d.pos : d.pos+8])
		d.pos += 8
		return []Token{opTok, {Type: INT, Value: fmt.Sprintf("%d", v), Position: Position{d.pos - 8}}}, true

	case bytecode.GET_ACC:
		party, ok := d.readString()
		if !ok {
			return []Token{{Type: INVALID, Value: "truncated GET_ACC party operand", Position: Position{start}}}, false
		}
		token, ok := d.readString()
		if !ok {
			return []Token{{Type: INVALID, Value: "truncated GET_ACC token operand", Position: Position{start}}}, false
		}
		return []Token{opTok, {Type: STRING, Value: party}, {Type: STRING, Value: token}}, true

	case bytecode.GET_CHOICE, bytecode.USE_VAL, bytecode.HAS_CHOICE:
		s, ok := d.readString()
		if !ok {
			return []Token{{Type: INVALID, Value: fmt.Sprintf("truncated %s operand", name), Position: Position{start}}}, false
		}
		return []Token{opTok, {Type: STRING, Value: s}}, true

	case bytecode.CJUMP:
		if d.pos+2 > len(d.code) {
			return []Token{{Type: INVALID, Value: "truncated CJUMP operand", Position: Position{start}}}, false
		}
		skip := binary.BigEndian.Uint16(d.code[d.pos : d.pos+2])
		d.pos += 2
		return []Token{opTok, {Type: INT, Value: fmt.Sprintf("%d", skip), Position: Position{d.pos - 2}}}, true

	default:
		return []Token{opTok}, true
	}
}

// readString consumes a 1-byte length prefix plus that many bytes.
func (d *disassembler) readString() (string, bool) {
	if d.pos+1 > len(d.code) {
		return "", false
	}
	n := int(d.code[d.pos])
	d.pos++
	if d.pos+n > len(d.code) {
		return "", false
	}
	s := string(d.code[d.pos : d.pos+n])
	d.pos += n
	return s, true
}
