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
	"text/template"

	"github.com/pkg/errors"

	"github.com/menabrealabs/marlowe-move/ast"
	"github.com/menabrealabs/marlowe-move/stage"
	"github.com/menabrealabs/marlowe-move/tokenresolve"
)

// moduleData feeds the fixed scaffolding template: the struct layout,
// error/opcode constants, init, role capability plumbing and the
// shared internal_eval/internal_pay/internal_deposit helpers are
// identical for every contract, so only the module name and whether
// any party in the contract is a role vary.
type moduleData struct {
	ModuleName string
	HasRoles   bool
}

var headerTemplate = template.Must(template.New("header").Parse(`
module marlowe::{{.ModuleName}} {
    use sui::coin::{Self, Coin};
    use sui::table::{Self, Table};
    use sui::bag::{Self, Bag};
    use sui::balance::{Self, Balance};
    use sui::object::{Self, ID, UID};
    use sui::transfer;
    use sui::tx_context::{Self, TxContext};
    use std::string::{Self, String};
    use std::vector;
    use std::type_name;

    const E_WRONG_STAGE: u64 = 1;
    const E_WRONG_AMOUNT: u64 = 2;
    const E_WRONG_CALLER: u64 = 3;
    const E_INVALID_ROLE_NFT: u64 = 4;
    const E_WRONG_ROLE: u64 = 5;
    const E_INSUFFICIENT_FUNDS: u64 = 6;
    const E_INVALID_CHOICE: u64 = 7;
    const E_ASSERT_FAILED: u64 = 8;
    const E_ROLE_NOT_FOUND: u64 = 9;
    const E_TIMEOUT_NOT_YET: u64 = 10;
    const E_STACK_UNDERFLOW: u64 = 11;
    const E_TIMEOUT_PASSED: u64 = 12;

    // --- Opcodes (RPN), must match the compiler's bytecode package byte-for-byte ---
    const OP_ZW: u8 = 0;
    const OP_TRUE: u8 = 1;
    const OP_CONST: u8 = 2;
    const OP_ADD: u8 = 3;
    const OP_SUB: u8 = 4;
    const OP_MUL: u8 = 5;
    const OP_DIV: u8 = 6;
    const OP_NEG: u8 = 7;
    const OP_GET_ACC: u8 = 10;
    const OP_GET_CHOICE: u8 = 11;
    const OP_USE_VAL: u8 = 12;
    const OP_HAS_CHOICE: u8 = 13;
    const OP_TIME_START: u8 = 20;
    const OP_TIME_END: u8 = 21;
    const OP_GT: u8 = 30;
    const OP_GE: u8 = 31;
    const OP_AND: u8 = 40;
    const OP_OR: u8 = 41;
    const OP_NOT: u8 = 42;
    const OP_CJUMP: u8 = 50;

{{if .HasRoles}}
    struct RoleNFT has key, store {
        id: UID,
        contract_id: ID,
        name: String
    }

    struct AdminCap has key, store {
        id: UID
    }
{{end}}

    struct Contract has key {
        id: UID,
        stage: u64,
        accounts: Table<String, Table<String, u64>>,
        vaults: Bag,
        role_registry: Table<String, address>,
        choices: Table<String, u64>,
        bound_values: Table<String, u64>
    }

    fun init(ctx: &mut TxContext) {
        let contract = Contract {
            id: object::new(ctx),
            stage: 0,
            accounts: table::new(ctx),
            vaults: bag::new(ctx),
            role_registry: table::new(ctx),
            choices: table::new(ctx),
            bound_values: table::new(ctx)
        };
        transfer::share_object(contract);
{{if .HasRoles}}
        transfer::public_transfer(AdminCap { id: object::new(ctx) }, tx_context::sender(ctx));
{{end}}
    }

    #[test_only]
    public fun init_for_testing(ctx: &mut TxContext) {
        init(ctx)
    }

{{if .HasRoles}}
    #[test_only]
    public fun mint_role_for_testing(contract: &mut Contract, name: String, recipient: address, ctx: &mut TxContext) {
        let role_nft = RoleNFT {
            id: object::new(ctx),
            contract_id: object::id(contract),
            name
        };
        transfer::public_transfer(role_nft, recipient);
    }

    fun assert_role(contract: &Contract, role_nft: &RoleNFT, expected_name: String) {
        assert!(role_nft.contract_id == object::id(contract), E_INVALID_ROLE_NFT);
        assert!(role_nft.name == expected_name, E_WRONG_ROLE);
    }

    /// @dev only the AdminCap holder may mint a role
    public fun mint_role(
        _: &AdminCap,
        contract: &Contract,
        name: String,
        recipient: address,
        ctx: &mut TxContext
    ) {
        let role_nft = RoleNFT {
            id: object::new(ctx),
            contract_id: object::id(contract),
            name
        };
        transfer::public_transfer(role_nft, recipient);
    }
{{end}}

    // --- state access helpers for generated expressions ---

    fun internal_get_balance(contract: &Contract, party: String, token: String): u64 {
        if (table::contains(&contract.accounts, party)) {
            let party_book = table::borrow(&contract.accounts, party);
            if (table::contains(party_book, token)) {
                *table::borrow(party_book, token)
            } else { 0 }
        } else { 0 }
    }

    fun internal_get_choice(contract: &Contract, choice_key: String): u64 {
        if (table::contains(&contract.choices, choice_key)) {
            *table::borrow(&contract.choices, choice_key)
        } else { 0 }
    }

    fun internal_has_choice(contract: &Contract, choice_key: String): bool {
        table::contains(&contract.choices, choice_key)
    }

    fun internal_get_bound_value(contract: &Contract, value_id: String): u64 {
        if (table::contains(&contract.bound_values, value_id)) {
            *table::borrow(&contract.bound_values, value_id)
        } else { 0 }
    }

    fun internal_deposit<T>(contract: &mut Contract, party: String, coin: Coin<T>, ctx: &mut TxContext) {
        let name = type_name::get<T>();
        let token = string::from_ascii(type_name::into_string(name));
        let amount = coin::value(&coin);

        if (!bag::contains(&contract.vaults, token)) {
            bag::add(&mut contract.vaults, token, coin::into_balance(coin));
        } else {
            let vault = bag::borrow_mut<String, Balance<T>>(&mut contract.vaults, token);
            balance::join(vault, coin::into_balance(coin));
        };

        if (!table::contains(&contract.accounts, party)) {
            table::add(&mut contract.accounts, party, table::new(ctx));
        };
        let accs = table::borrow_mut(&mut contract.accounts, party);
        if (!table::contains(accs, token)) {
            table::add(accs, token, amount);
        } else {
            let b = table::borrow_mut(accs, token);
            *b = *b + amount;
        };
    }

    fun internal_pay<T>(contract: &mut Contract, src: String, recipient: address, amt: u64, ctx: &mut TxContext) {
        let name = type_name::get<T>();
        let token = string::from_ascii(type_name::into_string(name));

        if (!table::contains(&contract.accounts, src)) {
            return
        };
        let accs = table::borrow_mut(&mut contract.accounts, src);

        if (!table::contains(accs, token)) {
            return
        };

        let b = table::borrow_mut(accs, token);
        let available = *b;
        let pay_amt = if (available >= amt) { amt } else { available };

        if (pay_amt > 0) {
            *b = available - pay_amt;
            let vault = bag::borrow_mut<String, Balance<T>>(&mut contract.vaults, token);
            assert!(balance::value(vault) >= pay_amt, E_INSUFFICIENT_FUNDS);
            transfer::public_transfer(coin::from_balance(balance::split(vault, pay_amt), ctx), recipient);
        };
    }

    // --- RPN evaluator: keep in lockstep with the bytecode package's opcode table ---

    fun internal_eval(contract: &Contract, bytecode: vector<u8>, ctx: &TxContext): u64 {
        let stack = vector::empty<u64>();
        let i: u64 = 0;
        let len = vector::length(&bytecode);

        while (i < len) {
            let op = *vector::borrow(&bytecode, i);
            i = i + 1;

            if (op == OP_ZW) {
                vector::push_back(&mut stack, 0);
            } else if (op == OP_TRUE) {
                vector::push_back(&mut stack, 1);
            } else if (op == OP_CONST) {
                let val: u64 = 0;
                let k = 0;
                while (k < 8) {
                    val = (val << 8) | ((*vector::borrow(&bytecode, i + k) as u64));
                    k = k + 1;
                };
                vector::push_back(&mut stack, val);
                i = i + 8;
            } else if (op == OP_ADD) {
                assert!(vector::length(&stack) >= 2, E_STACK_UNDERFLOW);
                let rhs = vector::pop_back(&mut stack);
                let lhs = vector::pop_back(&mut stack);
                vector::push_back(&mut stack, lhs + rhs);
            } else if (op == OP_SUB) {
                assert!(vector::length(&stack) >= 2, E_STACK_UNDERFLOW);
                let rhs = vector::pop_back(&mut stack);
                let lhs = vector::pop_back(&mut stack);
                if (rhs > lhs) {
                    vector::push_back(&mut stack, 0);
                } else {
                    vector::push_back(&mut stack, lhs - rhs);
                };
            } else if (op == OP_MUL) {
                assert!(vector::length(&stack) >= 2, E_STACK_UNDERFLOW);
                let rhs = vector::pop_back(&mut stack);
                let lhs = vector::pop_back(&mut stack);
                vector::push_back(&mut stack, lhs * rhs);
            } else if (op == OP_DIV) {
                assert!(vector::length(&stack) >= 2, E_STACK_UNDERFLOW);
                let rhs = vector::pop_back(&mut stack);
                let lhs = vector::pop_back(&mut stack);
                if (rhs == 0) {
                    vector::push_back(&mut stack, 0);
                } else {
                    vector::push_back(&mut stack, lhs / rhs);
                };
            } else if (op == OP_NEG) {
                assert!(vector::length(&stack) >= 1, E_STACK_UNDERFLOW);
                let _val = vector::pop_back(&mut stack);
                vector::push_back(&mut stack, 0);
            } else if (op == OP_GET_ACC) {
                let p_len = (*vector::borrow(&bytecode, i) as u64);
                i = i + 1;
                let party_bytes = vector::empty<u8>();
                let k = 0;
                while (k < p_len) { vector::push_back(&mut party_bytes, *vector::borrow(&bytecode, i+k)); k = k + 1; };
                i = i + p_len;

                let t_len = (*vector::borrow(&bytecode, i) as u64);
                i = i + 1;
                let token_bytes = vector::empty<u8>();
                k = 0;
                while (k < t_len) { vector::push_back(&mut token_bytes, *vector::borrow(&bytecode, i+k)); k = k + 1; };
                i = i + t_len;

                let val = internal_get_balance(contract, string::utf8(party_bytes), string::utf8(token_bytes));
                vector::push_back(&mut stack, val);
            } else if (op == OP_GET_CHOICE) {
                let c_len = (*vector::borrow(&bytecode, i) as u64);
                i = i + 1;
                let choice_bytes = vector::empty<u8>();
                let k = 0;
                while (k < c_len) { vector::push_back(&mut choice_bytes, *vector::borrow(&bytecode, i+k)); k = k + 1; };
                i = i + c_len;
                let val = internal_get_choice(contract, string::utf8(choice_bytes));
                vector::push_back(&mut stack, val);
            } else if (op == OP_USE_VAL) {
                let v_len = (*vector::borrow(&bytecode, i) as u64);
                i = i + 1;
                let use_bytes = vector::empty<u8>();
                let k = 0;
                while (k < v_len) { vector::push_back(&mut use_bytes, *vector::borrow(&bytecode, i+k)); k = k + 1; };
                i = i + v_len;
                let val = internal_get_bound_value(contract, string::utf8(use_bytes));
                vector::push_back(&mut stack, val);
            } else if (op == OP_HAS_CHOICE) {
                let h_len = (*vector::borrow(&bytecode, i) as u64);
                i = i + 1;
                let has_bytes = vector::empty<u8>();
                let k = 0;
                while (k < h_len) { vector::push_back(&mut has_bytes, *vector::borrow(&bytecode, i+k)); k = k + 1; };
                i = i + h_len;
                let present = internal_has_choice(contract, string::utf8(has_bytes));
                vector::push_back(&mut stack, if (present) { 1 } else { 0 });
            } else if (op == OP_TIME_START) {
                vector::push_back(&mut stack, tx_context::epoch_timestamp_ms(ctx));
            } else if (op == OP_TIME_END) {
                vector::push_back(&mut stack, tx_context::epoch_timestamp_ms(ctx));
            } else if (op == OP_NOT) {
                assert!(vector::length(&stack) >= 1, E_STACK_UNDERFLOW);
                let v = vector::pop_back(&mut stack);
                vector::push_back(&mut stack, if (v == 0) { 1 } else { 0 });
            } else if (op == OP_CJUMP) {
                assert!(vector::length(&stack) >= 1, E_STACK_UNDERFLOW);
                let cond = vector::pop_back(&mut stack);
                let jmp_len: u64 = 0;
                jmp_len = (jmp_len << 8) | ((*vector::borrow(&bytecode, i) as u64));
                jmp_len = (jmp_len << 8) | ((*vector::borrow(&bytecode, i+1) as u64));
                i = i + 2;
                if (cond == 0) {
                    i = i + jmp_len;
                };
            } else {
                assert!(vector::length(&stack) >= 2, E_STACK_UNDERFLOW);
                let rhs = vector::pop_back(&mut stack);
                let lhs = vector::pop_back(&mut stack);
                let res = if (op == OP_GT) { if (lhs > rhs) { 1 } else { 0 } }
                    else if (op == OP_GE) { if (lhs >= rhs) { 1 } else { 0 } }
                    else if (op == OP_AND) { if (lhs > 0 && rhs > 0) { 1 } else { 0 } }
                    else if (op == OP_OR) { if (lhs > 0 || rhs > 0) { 1 } else { 0 } }
                    else { 0 };
                vector::push_back(&mut stack, res);
            };
        };

        if (vector::length(&stack) > 0) {
            vector::pop_back(&mut stack)
        } else {
            0
        }
    }

{{if .HasRoles}}
    /// @dev withdraw via Role NFT
    public fun withdraw_by_role<T>(
        contract: &mut Contract,
        role_nft: &RoleNFT,
        amount: u64,
        ctx: &mut TxContext
    ) {
        assert!(role_nft.contract_id == object::id(contract), E_INVALID_ROLE_NFT);
        let party_key = string::utf8(b"Role(");
        string::append(&mut party_key, role_nft.name);
        string::append(&mut party_key, string::utf8(b")"));
        let caller = tx_context::sender(ctx);
        internal_pay<T>(contract, party_key, caller, amount, ctx);
    }
{{end}}

    /// @dev direct Address-keyed withdrawal is not supported: addresses
    /// cannot be round-tripped back into the "Address(...)" string key
    /// without the original literal, so there is no safe account lookup
    /// here. Address-party accounts settle automatically through Pay.
    public fun withdraw_by_address<T>(
        _contract: &mut Contract,
        _amount: u64,
        _ctx: &mut TxContext
    ) {
        abort E_WRONG_CALLER
    }
`))

// hasAnyRole reports whether any Party referenced by the program is a
// RoleParty, matching move_generator.py's pay_has_roles/deposit_has_roles/
// choice_has_roles union. Determines whether RoleNFT/AdminCap scaffolding
// is worth emitting at all.
func hasAnyRole(p *stage.Program) bool {
	isRole := func(party ast.Party) bool {
		_, ok := party.(ast.RoleParty)
		return ok
	}
	for _, py := range p.Pays {
		if isRole(py.FromAccount) {
			return true
		}
		if pp, ok := py.To.(ast.PartyPayee); ok && isRole(pp.Party) {
			return true
		}
	}
	for _, d := range p.Deposits {
		if isRole(d.Party) || isRole(d.IntoAccount) {
			return true
		}
	}
	for _, c := range p.Choices {
		if isRole(c.ChoiceId.Owner) {
			return true
		}
	}
	return false
}

// primaryTokenType picks the contract's dominant Move coin type the way
// get_contract_token_type does: first Deposit, else first Pay, else the
// chain-native default.
func primaryTokenType(p *stage.Program) string {
	for _, d := range p.Deposits {
		if d.MoveTokenType != "" {
			return d.MoveTokenType
		}
	}
	for _, py := range p.Pays {
		if py.MoveTokenType != "" {
			return py.MoveTokenType
		}
	}
	return tokenresolve.NativeType
}

// Module renders the full Move source for p under moduleName.
func Module(p *stage.Program, moduleName string) (string, error) {
	var out strings.Builder
	data := moduleData{ModuleName: moduleName, HasRoles: hasAnyRole(p)}
	if err := headerTemplate.Execute(&out, data); err != nil {
		return "", errors.Wrap(err, "rendering module header")
	}

	// Entry points for user actions, in the order the reference
	// generator writes them: deposits, choices, notifies, timeouts.
	for _, d := range p.Deposits {
		fn, err := generateDepositFunction(d, p)
		if err != nil {
			return "", err
		}
		out.WriteString(fn)
	}
	for _, c := range p.Choices {
		fn, err := generateChoiceFunction(c, p)
		if err != nil {
			return "", err
		}
		out.WriteString(fn)
	}
	for _, n := range p.Notifies {
		fn, err := generateNotifyFunction(n, p)
		if err != nil {
			return "", err
		}
		out.WriteString(fn)
	}
	for _, w := range p.Whens {
		out.WriteString(generateTimeoutFunction(w, p))
	}

	// Internal, automatically-chained functions.
	for _, py := range p.Pays {
		fn, err := generatePayFunction(py, p)
		if err != nil {
			return "", err
		}
		out.WriteString(fn)
	}
	for _, ifi := range p.Ifs {
		fn, err := generateIfFunction(ifi, p)
		if err != nil {
			return "", err
		}
		out.WriteString(fn)
	}
	for _, l := range p.Lets {
		fn, err := generateLetFunction(l, p)
		if err != nil {
			return "", err
		}
		out.WriteString(fn)
	}
	for _, a := range p.Asserts {
		fn, err := generateAssertFunction(a, p)
		if err != nil {
			return "", err
		}
		out.WriteString(fn)
	}

	for _, c := range p.Closes {
		out.WriteString(generateCloseFunction(c))
	}

	out.WriteString("\n}\n")
	return out.String(), nil
}
