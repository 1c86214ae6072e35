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

package emit

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/menabrealabs/marlowe-move/ast"
)

// partyKind reports whether p is a role or a fixed chain address, and
// the bare name/address carried by it, mirroring move_generator.py's
// parse_party_str.
func partyKind(p ast.Party) (kind, name string, err error) {
	switch x := p.(type) {
	case ast.RoleParty:
		return "role", x.RoleName, nil
	case ast.AddressParty:
		return "address", x.Address, nil
	default:
		return "", "", errors.Errorf("unrecognized party type %T", p)
	}
}

// validateChainAddress rejects an address literal the emitted module
// could not compile. The reference generator instead produced a Move
// comment in place of the function body, silently emitting code that
// fails to build; here it is an error at generation time instead.
func validateChainAddress(raw string) error {
	if !strings.HasPrefix(raw, "0x") || len(raw) <= 10 {
		return errors.Errorf("%q is not a valid chain address literal (expected 0x-prefixed hex)", raw)
	}
	return nil
}

// partyLogicKey returns the string::utf8 literal used as an
// accounts/choices table key, matching Party.Repr().
func partyLogicKey(p ast.Party) string {
	return "string::utf8(b\"" + p.Repr() + "\")"
}

func roleNameLiteral(name string) string {
	return "string::utf8(b\"" + name + "\")"
}

func addressLiteral(raw string) string {
	return "@" + raw
}
