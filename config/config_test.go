package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/menabrealabs/marlowe-move/ast"
	"github.com/menabrealabs/marlowe-move/config"
)

func TestLoad_MissingFileYieldsDefault(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nonexistent.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ValidateBech32Addresses {
		t.Error("expected bech32 validation off by default")
	}
	table := cfg.TokenTable()
	got, ok := table.Resolve(ast.Token{})
	if !ok || got != "sui::sui::SUI" {
		t.Errorf("got %q, ok=%v", got, ok)
	}
}

func TestLoad_ParsesTokenEntriesAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.toml")
	contents := `
validate_bech32_addresses = true

[[tokens]]
currency_symbol = "85bb65085bb65085bb65085bb65085bb65085bb65085bb65085bb650"
token_name = "dollar"
target_type = "test::mock_dollar::DOLLAR"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.ValidateBech32Addresses {
		t.Error("expected bech32 validation on")
	}

	table := cfg.TokenTable()
	got, ok := table.Resolve(ast.Token{
		CurrencySymbol: "85bb65085bb65085bb65085bb65085bb65085bb65085bb65085bb650",
		TokenName:      "dollar",
	})
	if !ok || got != "test::mock_dollar::DOLLAR" {
		t.Errorf("got %q, ok=%v", got, ok)
	}

	opts := cfg.ParserOptions()
	if !opts.ValidateBech32Addresses {
		t.Error("expected ParserOptions to carry the flag through")
	}
}
