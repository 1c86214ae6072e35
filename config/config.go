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

// Package config loads the on-disk TOML form of a tokenresolve.Table and
// the surface-parser options that accompany it.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/menabrealabs/marlowe-move/parser"
	"github.com/menabrealabs/marlowe-move/tokenresolve"
)

// TokenEntry is one configured "symbol:name -> Move type" mapping.
type TokenEntry struct {
	CurrencySymbol string `toml:"currency_symbol"`
	TokenName      string `toml:"token_name"`
	MoveType       string `toml:"target_type"`
}

// Config is the on-disk shape of a compiler run: the token resolution
// table plus the surface-parser options that apply to every spec in a
// batch.
type Config struct {
	ValidateBech32Addresses bool         `toml:"validate_bech32_addresses"`
	Tokens                  []TokenEntry `toml:"tokens"`
}

// Load reads and parses path. A missing file is not an error: it yields
// Default(), matching the reference generator's baked-in TOKEN_MAP with
// no configuration step at all.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}

	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, errors.Wrapf(err, "decoding config %s", path)
	}
	return cfg, nil
}

// Default returns the zero-configuration baseline: bech32 validation
// off, only the built-in token table entries available.
func Default() *Config {
	return &Config{}
}

// TokenTable builds the tokenresolve.Table this configuration describes,
// seeded from Default() and then overlaid with every configured entry.
func (c *Config) TokenTable() tokenresolve.Table {
	table := tokenresolve.Default()
	for _, e := range c.Tokens {
		table.Set(e.CurrencySymbol, e.TokenName, e.MoveType)
	}
	return table
}

// ParserOptions builds the parser.Options this configuration describes.
func (c *Config) ParserOptions() parser.Options {
	return parser.Options{ValidateBech32Addresses: c.ValidateBech32Addresses}
}
