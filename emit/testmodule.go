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
	"text/template"

	"github.com/menabrealabs/marlowe-move/bytecode"
	"github.com/menabrealabs/marlowe-move/stage"
	"github.com/menabrealabs/marlowe-move/tokenresolve"
	"github.com/menabrealabs/marlowe-move/vm"
)

type testModuleData struct {
	ModuleName       string
	SetupSteps       string
	InteractionSteps string
}

var testModuleTemplate = template.Must(template.New("test").Parse(`
#[test_only]
module marlowe::{{.ModuleName}}_tests {
    use sui::test_scenario;
    use marlowe::{{.ModuleName}}::{Self, Contract};

    #[test]
    fun test_happy_path() {
        let admin = @0xA;
        let user = @0xB;

        let scenario_val = test_scenario::begin(admin);
        let scenario = &mut scenario_val;

        {
            {{.ModuleName}}::init_for_testing(test_scenario::ctx(scenario));
        };
        test_scenario::next_tx(scenario, admin);

        {
            let contract = test_scenario::take_shared<Contract>(scenario);
            test_scenario::return_shared(contract);
        };
        test_scenario::next_tx(scenario, admin);

{{.SetupSteps}}

{{.InteractionSteps}}

        test_scenario::end(scenario_val);
    }
}
`))

// TestModule renders a happy-path test exercising the stage-0 action
// when it is a Choice or a Deposit owned by a Role, minting the role
// first. Stage-0 Choices and Deposits by an Address party, and Notify
// cases, get no setup or interaction steps. Grounded on
// move_generator.py's generate_test_module.
func TestModule(p *stage.Program, moduleName string) string {
	var setup, interaction strings.Builder

	for _, c := range p.Choices {
		if c.Stage != 0 {
			continue
		}
		kind, name, err := partyKind(c.ChoiceId.Owner)
		if err != nil || kind != "role" {
			continue
		}
		validChoice := uint64(1)
		if len(c.Bounds) > 0 {
			validChoice = c.Bounds[0].From
		}
		fnName := fmt.Sprintf("choice_stage_%d_case_%d", c.Stage, c.CaseIndex)

		fmt.Fprintf(&setup, `
        {
            let contract = test_scenario::take_shared<Contract>(scenario);
            %s::mint_role_for_testing(&mut contract, std::string::utf8(b"%s"), user, test_scenario::ctx(scenario));
            test_scenario::return_shared(contract);
        };
        test_scenario::next_tx(scenario, user);
`, moduleName, name)

		fmt.Fprintf(&interaction, `
        {
            let contract = test_scenario::take_shared<Contract>(scenario);
            let role_nft = test_scenario::take_from_sender<%s::RoleNFT>(scenario);
            %s::%s(&mut contract, &role_nft, %d, test_scenario::ctx(scenario));
            test_scenario::return_to_sender(scenario, role_nft);
            test_scenario::return_shared(contract);
        };
        test_scenario::next_tx(scenario, user);
`, moduleName, moduleName, fnName, validChoice)
		break
	}

	if setup.Len() == 0 {
		for _, d := range p.Deposits {
			if d.Stage != 0 {
				continue
			}
			kind, name, err := partyKind(d.Party)
			if err != nil || kind != "role" {
				continue
			}

			fnName := fmt.Sprintf("deposit_stage_%d_case_%d", d.Stage, d.CaseIndex)
			moveType := d.MoveTokenType
			if moveType == "" {
				moveType = tokenresolve.NativeType
			}

			code, err := bytecode.Compile(d.Value)
			if err != nil {
				continue
			}
			amount, err := vm.Eval(code, vm.State{})
			if err != nil {
				continue
			}

			fmt.Fprintf(&setup, `
        {
            let contract = test_scenario::take_shared<Contract>(scenario);
            %s::mint_role_for_testing(&mut contract, std::string::utf8(b"%s"), user, test_scenario::ctx(scenario));
            test_scenario::return_shared(contract);
        };
        test_scenario::next_tx(scenario, user);

        {
            let deposit_coin = sui::coin::mint_for_testing<%s>(%d, test_scenario::ctx(scenario));
            sui::transfer::public_transfer(deposit_coin, user);
        };
        test_scenario::next_tx(scenario, user);
`, moduleName, name, moveType, amount)

			fmt.Fprintf(&interaction, `
        {
            let contract = test_scenario::take_shared<Contract>(scenario);
            let role_nft = test_scenario::take_from_sender<%s::RoleNFT>(scenario);
            let deposit_coin = test_scenario::take_from_sender<sui::coin::Coin<%s>>(scenario);
            %s::%s(&mut contract, &role_nft, deposit_coin, test_scenario::ctx(scenario));
            test_scenario::return_to_sender(scenario, role_nft);
            test_scenario::return_shared(contract);
        };
        test_scenario::next_tx(scenario, user);
`, moduleName, moveType, moduleName, fnName)
			break
		}
	}

	var out strings.Builder
	_ = testModuleTemplate.Execute(&out, testModuleData{
		ModuleName:       moduleName,
		SetupSteps:       setup.String(),
		InteractionSteps: interaction.String(),
	})
	return out.String()
}
