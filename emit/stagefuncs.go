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
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/menabrealabs/marlowe-move/ast"
	"github.com/menabrealabs/marlowe-move/stage"
)

// whenTimeoutFor returns the timeout (ms) governing a case stage, i.e.
// the When stage that directly owns it, if any.
func whenTimeoutFor(caseStage int, p *stage.Program) (int64, bool) {
	for _, w := range p.Whens {
		if w.Stage == caseStage {
			return w.Timeout, w.Timeout > 0
		}
	}
	return 0, false
}

func generateChoiceFunction(c stage.ChoiceInfo, p *stage.Program) (string, error) {
	fnName := fmt.Sprintf("choice_stage_%d_case_%d", c.Stage, c.CaseIndex)
	kind, name, err := partyKind(c.ChoiceId.Owner)
	if err != nil {
		return "", errors.Wrapf(err, "choice at stage %d", c.Stage)
	}

	sigParams := []string{"contract: &mut Contract", "chosen_num: u64"}
	assertions := []string{fmt.Sprintf("assert!(contract.stage == %d, E_WRONG_STAGE);", c.Stage)}

	if timeout, ok := whenTimeoutFor(c.Stage, p); ok {
		assertions = append(assertions, fmt.Sprintf("assert!(tx_context::epoch_timestamp_ms(ctx) < %d, E_TIMEOUT_PASSED);", timeout))
	}

	switch kind {
	case "role":
		sigParams = append(sigParams[:1], append([]string{"role_nft: &RoleNFT"}, sigParams[1:]...)...)
		assertions = append(assertions, fmt.Sprintf("assert_role(contract, role_nft, %s);", roleNameLiteral(name)))
	case "address":
		if err := validateChainAddress(name); err != nil {
			return "", errors.Wrapf(err, "choice at stage %d", c.Stage)
		}
		assertions = append(assertions, fmt.Sprintf("assert!(tx_context::sender(ctx) == %s, E_WRONG_CALLER);", addressLiteral(name)))
	}

	var boundsChecks []string
	for _, b := range c.Bounds {
		boundsChecks = append(boundsChecks, fmt.Sprintf("(chosen_num >= %d && chosen_num <= %d)", b.From, b.To))
	}
	if len(boundsChecks) > 0 {
		assertions = append(assertions, fmt.Sprintf("assert!(%s, E_INVALID_CHOICE);", strings.Join(boundsChecks, " || ")))
	}

	choiceKey := fmt.Sprintf("string::utf8(b\"%s\")", c.ChoiceId.Key())
	writeState := fmt.Sprintf(`
        if (table::contains(&contract.choices, %s)) {
            *table::borrow_mut(&mut contract.choices, %s) = chosen_num;
        } else {
            table::add(&mut contract.choices, %s, chosen_num);
        };`, choiceKey, choiceKey, choiceKey)

	sigParams = append(sigParams, "ctx: &mut TxContext")
	tail := automationTail(c.NextStage, p)

	return fmt.Sprintf(`
    /// @dev Stage %d / Case %d: Choice %q by %s
    public fun %s(
        %s
    ) {
        // 1. validate
        %s

        // 2. record the choice
        %s

        // 3. advance the state machine
        %s
    }
`, c.Stage, c.CaseIndex, c.ChoiceId.Name, c.ChoiceId.Owner.Repr(), fnName, strings.Join(sigParams, ", "), strings.Join(assertions, "\n        "), writeState, tail), nil
}

func generateNotifyFunction(n stage.NotifyInfo, p *stage.Program) (string, error) {
	fnName := fmt.Sprintf("notify_stage_%d_case_%d", n.Stage, n.CaseIndex)
	obsCode, err := observationBytecode(n.Observation)
	if err != nil {
		return "", errors.Wrapf(err, "notify at stage %d", n.Stage)
	}

	assertions := []string{
		fmt.Sprintf("assert!(contract.stage == %d, E_WRONG_STAGE);", n.Stage),
		fmt.Sprintf("assert!(internal_eval(contract, %s, ctx) == 1, E_ASSERT_FAILED);", obsCode),
	}
	if timeout, ok := whenTimeoutFor(n.Stage, p); ok {
		assertions = append(assertions, fmt.Sprintf("assert!(tx_context::epoch_timestamp_ms(ctx) < %d, E_TIMEOUT_PASSED);", timeout))
	}

	tail := automationTail(n.NextStage, p)
	return fmt.Sprintf(`
    /// @dev Stage %d / Case %d: Notify
    public fun %s(
        contract: &mut Contract, ctx: &mut TxContext
    ) {
        // 1. validate
        %s

        // 2. advance the state machine
        %s
    }
`, n.Stage, n.CaseIndex, fnName, strings.Join(assertions, "\n        "), tail), nil
}

func generateDepositFunction(d stage.DepositInfo, p *stage.Program) (string, error) {
	fnName := fmt.Sprintf("deposit_stage_%d_case_%d", d.Stage, d.CaseIndex)
	kind, name, err := partyKind(d.Party)
	if err != nil {
		return "", errors.Wrapf(err, "deposit at stage %d", d.Stage)
	}

	amountCode, err := valueBytecode(d.Value)
	if err != nil {
		return "", errors.Wrapf(err, "deposit at stage %d", d.Stage)
	}

	sigParams := []string{"contract: &mut Contract", fmt.Sprintf("deposit_coin: Coin<%s>", d.MoveTokenType)}
	assertions := []string{
		fmt.Sprintf("assert!(contract.stage == %d, E_WRONG_STAGE);", d.Stage),
		fmt.Sprintf("assert!(coin::value(&deposit_coin) == internal_eval(contract, %s, ctx), E_WRONG_AMOUNT);", amountCode),
	}
	if timeout, ok := whenTimeoutFor(d.Stage, p); ok {
		assertions = append(assertions, fmt.Sprintf("assert!(tx_context::epoch_timestamp_ms(ctx) < %d, E_TIMEOUT_PASSED);", timeout))
	}

	switch kind {
	case "role":
		sigParams = append(sigParams[:1], append([]string{"role_nft: &RoleNFT"}, sigParams[1:]...)...)
		assertions = append(assertions, fmt.Sprintf("assert_role(contract, role_nft, %s);", roleNameLiteral(name)))
	case "address":
		if err := validateChainAddress(name); err != nil {
			return "", errors.Wrapf(err, "deposit at stage %d", d.Stage)
		}
		assertions = append(assertions, fmt.Sprintf("assert!(tx_context::sender(ctx) == %s, E_WRONG_CALLER);", addressLiteral(name)))
	}

	sigParams = append(sigParams, "ctx: &mut TxContext")
	// Credited to IntoAccount, not the depositing Party: AvailableMoney
	// reads balances by AccountId, and IntoAccount is the AccountId this
	// case names — crediting the caller's own Party here would desync
	// GET_ACC reads whenever a deposit is made on another account's
	// behalf.
	accountKey := partyLogicKey(d.IntoAccount)
	tail := automationTail(d.NextStage, p)

	return fmt.Sprintf(`
    /// @dev Stage %d / Case %d: deposit by %s
    public fun %s(
        %s
    ) {
        // 1. validate
        %s

        // 2. perform the deposit
        internal_deposit<%s>(contract, %s, deposit_coin, ctx);
        // 3. advance the state machine
        %s
    }
`, d.Stage, d.CaseIndex, d.Party.Repr(), fnName, strings.Join(sigParams, ", "), strings.Join(assertions, "\n        "), d.MoveTokenType, accountKey, tail), nil
}

func generatePayFunction(py stage.PayInfo, p *stage.Program) (string, error) {
	fnName := fmt.Sprintf("internal_pay_stage_%d", py.Stage)

	var receiverCode string
	switch payee := py.To.(type) {
	case ast.PartyPayee:
		kind, name, err := partyKind(payee.Party)
		if err != nil {
			return "", errors.Wrapf(err, "pay at stage %d", py.Stage)
		}
		switch kind {
		case "address":
			if err := validateChainAddress(name); err != nil {
				return "", errors.Wrapf(err, "pay at stage %d", py.Stage)
			}
			receiverCode = fmt.Sprintf("let receiver_addr = %s;", addressLiteral(name))
		case "role":
			roleLit := roleNameLiteral(name)
			receiverCode = fmt.Sprintf(`
        assert!(table::contains(&contract.role_registry, %s), E_ROLE_NOT_FOUND);
        let receiver_addr = *table::borrow(&contract.role_registry, %s);`, roleLit, roleLit)
		}
	default:
		// stage.Allocate already rejects Pay-to-Account before this
		// point; this branch only guards against future payee variants.
		return "", errors.Errorf("pay at stage %d: unsupported payee type %T", py.Stage, py.To)
	}

	amountCode, err := valueBytecode(py.Amount)
	if err != nil {
		return "", errors.Wrapf(err, "pay at stage %d", py.Stage)
	}

	fromKey := partyLogicKey(py.FromAccount)
	tail := automationTail(py.NextStage, p)

	return fmt.Sprintf(`
    /// @dev Stage %d: automatic payment from %s
    fun %s(
        contract: &mut Contract, ctx: &mut TxContext
    ) {
        // 1. validate
        assert!(contract.stage == %d, E_WRONG_STAGE);

        // 2. evaluate the amount and resolve the receiver
        let amount = internal_eval(contract, %s, ctx);
        let from_party_id = %s;
        %s

        // 3. perform the payment
        internal_pay<%s>(contract, from_party_id, receiver_addr, amount, ctx);

        // 4. advance the state machine
        %s
    }
`, py.Stage, py.FromAccount.Repr(), fnName, py.Stage, amountCode, fromKey, receiverCode, py.MoveTokenType, tail), nil
}

func generateCloseFunction(c stage.CloseInfo) string {
	return fmt.Sprintf(`
    /// @dev Stage %d: contract termination
    public fun close_stage_%d(
        contract: &mut Contract
    ) {
        assert!(contract.stage == %d, E_WRONG_STAGE);
        // Terminal: remaining balances stay withdrawable via withdraw_by_role.
    }
`, c.Stage, c.Stage, c.Stage)
}

func generateIfFunction(info stage.IfInfo, p *stage.Program) (string, error) {
	condCode, err := observationBytecode(info.Condition)
	if err != nil {
		return "", errors.Wrapf(err, "if at stage %d", info.Stage)
	}
	thenTail := automationTail(info.ThenStage, p)
	elseTail := automationTail(info.ElseStage, p)

	return fmt.Sprintf(`
    /// @dev Stage %d: conditional branch
    fun internal_if_stage_%d(
        contract: &mut Contract, ctx: &mut TxContext
    ) {
        assert!(contract.stage == %d, E_WRONG_STAGE);

        // 1. evaluate the observation
        let condition_bytecode = %s;
        let condition = (internal_eval(contract, condition_bytecode, ctx) == 1);

        // 2. advance the state machine on either branch
        if (condition) {
            %s
        } else {
            %s
        }
    }
`, info.Stage, info.Stage, info.Stage, condCode, thenTail, elseTail), nil
}

func generateLetFunction(info stage.LetInfo, p *stage.Program) (string, error) {
	fnName := fmt.Sprintf("internal_let_stage_%d", info.Stage)
	valueCode, err := valueBytecode(info.Value)
	if err != nil {
		return "", errors.Wrapf(err, "let at stage %d", info.Stage)
	}
	valueIDLit := fmt.Sprintf("string::utf8(b\"%s\")", info.Name)
	tail := automationTail(info.Stage+1, p)

	return fmt.Sprintf(`
    /// @dev Stage %d: let %q
    fun %s(
        contract: &mut Contract, ctx: &mut TxContext
    ) {
        assert!(contract.stage == %d, E_WRONG_STAGE);

        // 1. compute the value
        let val = internal_eval(contract, %s, ctx);
        let val_id = %s;

        // 2. store it in bound_values
        if (table::contains(&contract.bound_values, val_id)) {
            *table::borrow_mut(&mut contract.bound_values, val_id) = val;
        } else {
            table::add(&mut contract.bound_values, val_id, val);
        };

        // 3. advance the state machine
        %s
    }
`, info.Stage, info.Name, fnName, info.Stage, valueCode, valueIDLit, tail), nil
}

func generateAssertFunction(info stage.AssertInfo, p *stage.Program) (string, error) {
	fnName := fmt.Sprintf("internal_assert_stage_%d", info.Stage)
	obsCode, err := observationBytecode(info.Observation)
	if err != nil {
		return "", errors.Wrapf(err, "assert at stage %d", info.Stage)
	}
	tail := automationTail(info.Stage+1, p)

	return fmt.Sprintf(`
    /// @dev Stage %d: assert
    fun %s(
        contract: &mut Contract, ctx: &mut TxContext
    ) {
        assert!(contract.stage == %d, E_WRONG_STAGE);

        // 1. check the condition
        assert!(internal_eval(contract, %s, ctx) == 1, E_ASSERT_FAILED);

        // 2. advance the state machine
        %s
    }
`, info.Stage, fnName, info.Stage, obsCode, tail), nil
}

func generateTimeoutFunction(w stage.WhenInfo, p *stage.Program) string {
	fnName := fmt.Sprintf("timeout_stage_%d", w.Stage)
	tail := automationTail(w.TimeoutStage, p)

	return fmt.Sprintf(`
    /// @dev Stage %d: handle timeout (%d ms)
    public fun %s(
        contract: &mut Contract, ctx: &mut TxContext
    ) {
        // 1. validate stage
        assert!(contract.stage == %d, E_WRONG_STAGE);

        // 2. timeout must actually have elapsed
        let current_time = tx_context::epoch_timestamp_ms(ctx);
        assert!(current_time >= %d, E_TIMEOUT_NOT_YET);

        // 3. advance into the timeout continuation
        %s
    }
`, w.Stage, w.Timeout, fnName, w.Stage, w.Timeout, tail)
}
