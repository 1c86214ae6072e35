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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/menabrealabs/marlowe-move/stage"
)

const sdkHeader = "import { Transaction } from '@mysten/sui/transactions';\n" +
	"import { bcs } from '@mysten/sui/bcs';\n\n" +
	"export class MarloweContract {\n" +
	"    packageId: string;\n" +
	"    contractId: string;\n" +
	"    moduleId: string = %q;\n\n" +
	"    constructor(packageId: string, contractId: string) {\n" +
	"        this.packageId = packageId;\n" +
	"        this.contractId = contractId;\n" +
	"    }\n\n" +
	"    private moveCall(tx: Transaction, func: string, args: any[], typeArgs: string[] = []) {\n" +
	"        tx.moveCall({\n" +
	"            target: `${this.packageId}::${this.moduleId}::${func}`,\n" +
	"            arguments: args,\n" +
	"            typeArguments: typeArgs,\n" +
	"        });\n" +
	"    }\n"

// SDKStub renders a thin TypeScript client wrapping every entry
// function the module exposes, one method per stage/case, plus a
// getTimeouts() map. Grounded on ts_generator.py's generate_ts_sdk,
// stripped of its deployment.json file read (file discovery is out of
// scope here; callers supply packageId/contractId at construction
// time instead of baking them in as generated constants).
func SDKStub(p *stage.Program, moduleName string) string {
	var out strings.Builder
	fmt.Fprintf(&out, sdkHeader, moduleName)

	for _, c := range p.Choices {
		kind, name, err := partyKind(c.ChoiceId.Owner)
		if err != nil {
			continue
		}
		fnName := fmt.Sprintf("choice_stage_%d_case_%d", c.Stage, c.CaseIndex)
		method := fmt.Sprintf("choice_Stage%d_%d_%s", c.Stage, c.CaseIndex, c.ChoiceId.Name)
		bound := ""
		if len(c.Bounds) > 0 {
			bound = fmt.Sprintf("Value between %d and %d", c.Bounds[0].From, c.Bounds[0].To)
		}
		if kind == "role" {
			fmt.Fprintf(&out, `
    /** Stage %d: Choice %q by Role %q. %s */
    %s(tx: Transaction, roleNftId: string, choiceVal: number | bigint) {
        this.moveCall(tx, %q, [
            tx.object(this.contractId),
            tx.object(roleNftId),
            tx.pure(bcs.u64().serialize(choiceVal))
        ]);
    }
`, c.Stage, c.ChoiceId.Name, name, bound, method, fnName)
		} else {
			fmt.Fprintf(&out, `
    /** Stage %d: Choice %q by Address %s. %s */
    %s(tx: Transaction, choiceVal: number | bigint) {
        this.moveCall(tx, %q, [
            tx.object(this.contractId),
            tx.pure(bcs.u64().serialize(choiceVal))
        ]);
    }
`, c.Stage, c.ChoiceId.Name, name, bound, method, fnName)
		}
	}

	for _, d := range p.Deposits {
		fnName := fmt.Sprintf("deposit_stage_%d_case_%d", d.Stage, d.CaseIndex)
		method := fmt.Sprintf("deposit_Stage%d_%d", d.Stage, d.CaseIndex)
		fmt.Fprintf(&out, `
    /** Stage %d: deposit into %q */
    %s(tx: Transaction, coinObj: string) {
        this.moveCall(tx, %q, [
            tx.object(this.contractId),
            tx.object(coinObj)
        ]);
    }
`, d.Stage, d.IntoAccount.Repr(), method, fnName)
	}

	for _, n := range p.Notifies {
		fnName := fmt.Sprintf("notify_stage_%d_case_%d", n.Stage, n.CaseIndex)
		method := fmt.Sprintf("notify_Stage%d_%d", n.Stage, n.CaseIndex)
		fmt.Fprintf(&out, `
    /** Stage %d: notify */
    %s(tx: Transaction) {
        this.moveCall(tx, %q, [
            tx.object(this.contractId)
        ]);
    }
`, n.Stage, method, fnName)
	}

	timeouts := map[int]int64{}
	for _, w := range p.Whens {
		fnName := fmt.Sprintf("timeout_stage_%d", w.Stage)
		method := fmt.Sprintf("timeout_Stage%d", w.Stage)
		fmt.Fprintf(&out, `
    /** Stage %d: timeout action (trigger when time >= %d) */
    %s(tx: Transaction) {
        this.moveCall(tx, %q, [
            tx.object(this.contractId)
        ]);
    }
`, w.Stage, w.Timeout, method, fnName)
		if w.Timeout > 0 {
			timeouts[w.Stage] = w.Timeout
		}
	}

	timeoutsJSON, _ := json.Marshal(timeouts)
	fmt.Fprintf(&out, `
    public getTimeouts(): Record<number, number> {
        return %s;
    }
}
`, timeoutsJSON)

	return out.String()
}
