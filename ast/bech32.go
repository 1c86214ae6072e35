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

package ast

import "github.com/btcsuite/btcutil/bech32"

// ValidateBech32 checks that an AddressParty's Address string decodes as
// a well-formed bech32 string (BIP-173). Some deployments of the source
// contract language still carry legacy bech32-encoded party addresses
// inherited from a Cardano-targeting toolchain; this is an opt-in check
// a caller can run over such addresses before compiling. It is never
// applied to the target chain's own addresses, which are raw hex object
// IDs emitted verbatim by the target emitter — a separate address space
// entirely.
func (p AddressParty) ValidateBech32() error {
	_, _, err := bech32.Decode(p.Address)
	return err
}
