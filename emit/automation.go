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

	"github.com/menabrealabs/marlowe-move/stage"
)

// automationTail renders the end of every entry/internal function: it
// either hands control to the next automatically-chained internal stage
// within the same transaction, or parks the contract at nextStage to
// wait for the next external call. Mirrors move_generator.py's
// generate_automation_tail.
func automationTail(nextStage int, p *stage.Program) string {
	kind, ok := p.Lookup[nextStage]
	if !ok {
		if prevKind, ok2 := p.Lookup[nextStage-1]; ok2 && prevKind == stage.KindClose {
			return fmt.Sprintf("\n        // contract already ended at stage %d.\n    ", nextStage-1)
		}
		return fmt.Sprintf("\n        contract.stage = %d;\n    ", nextStage)
	}

	var fnName string
	switch kind {
	case stage.KindPay:
		fnName = fmt.Sprintf("internal_pay_stage_%d", nextStage)
	case stage.KindLet:
		fnName = fmt.Sprintf("internal_let_stage_%d", nextStage)
	case stage.KindAssert:
		fnName = fmt.Sprintf("internal_assert_stage_%d", nextStage)
	case stage.KindIf:
		fnName = fmt.Sprintf("internal_if_stage_%d", nextStage)
	default: // when, close: wait for the next external transaction
		return fmt.Sprintf("\n        contract.stage = %d;\n    ", nextStage)
	}

	return fmt.Sprintf("\n        contract.stage = %d;\n        %s(contract, ctx);\n", nextStage, fnName)
}
