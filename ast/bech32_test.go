package ast_test

import (
	"testing"

	a "github.com/menabrealabs/marlowe-move/ast"
)

func TestAddressParty_ValidateBech32_ShouldPass(t *testing.T) {
	// Test vectors specified in BIP-173:
	// https://github.com/bitcoin/bips/blob/master/bip-0173.mediawiki#Test_vectors
	testVectors := []string{
		"A12UEL5L",
		"a12uel5l",
		"an83characterlonghumanreadablepartthatcontainsthenumber1andtheexcludedcharactersbio1tt5tgs",
		"abcdef1qpzry9x8gf2tvdw0s3jn54khce6mua7lmqqqxw",
		"11qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqc8247j",
		"split1checkupstagehandshakeupstreamerranterredcaperred2y9e3w",
		"?1ezyfcl",
	}

	for _, vector := range testVectors {
		p := a.AddressParty{Address: vector}
		if err := p.ValidateBech32(); err != nil {
			t.Errorf("%q: %v", vector, err)
		}
	}
}

func TestAddressParty_ValidateBech32_ShouldFail(t *testing.T) {
	testVectors := []string{
		"pzry9x0s0muk",  // no separator character
		"1pzry9x0s0muk", // empty HRP
		"x1b4n0q5v",     // invalid data character
		"li1dgmt3",      // too short checksum
	}

	for _, vector := range testVectors {
		p := a.AddressParty{Address: vector}
		if err := p.ValidateBech32(); err == nil {
			t.Errorf("%q: expected an error, got none", vector)
		}
	}
}

func TestAddressParty_ValidateBech32_HexAddressFails(t *testing.T) {
	// The target chain's own addresses are raw hex object IDs, not
	// bech32 — they must not validate, since the two address spaces are
	// never meant to be cross-checked against each other.
	p := a.AddressParty{Address: "0x0000000000000000000000000000000000000000000000000000000000000a"}
	if err := p.ValidateBech32(); err == nil {
		t.Error("expected hex address to fail bech32 validation")
	}
}
