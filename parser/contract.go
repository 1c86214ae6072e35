package parser

import (
	"encoding/json"
	"strconv"

	"github.com/menabrealabs/marlowe-move/ast"
)

// contract dispatches on the bare string "close" versus the object keys
// that distinguish Pay/If/When/Let/Assert, in that priority order.
func (p *parser) contract(raw json.RawMessage, path string) (ast.Contract, error) {
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		if str == "close" {
			return ast.Close, nil
		}
		return nil, errAt(path, "unrecognized contract string %q", str)
	}

	m, err := p.asObject(raw, path)
	if err != nil {
		return nil, err
	}

	switch {
	case has(m, "pay"):
		return p.pay(m, path)
	case has(m, "if"):
		return p.ifContract(m, path)
	case has(m, "when"):
		return p.when(m, path)
	case has(m, "let"):
		return p.let(m, path)
	case has(m, "assert"):
		return p.assertContract(m, path)
	default:
		return nil, errAt(path, "unrecognized contract shape %s", shortForm(raw))
	}
}

func (p *parser) pay(m map[string]json.RawMessage, path string) (ast.Contract, error) {
	accRaw, err := p.field(m, path, "from_account")
	if err != nil {
		return nil, err
	}
	acc, err := p.party(accRaw, path+".from_account")
	if err != nil {
		return nil, err
	}

	toRaw, err := p.field(m, path, "to")
	if err != nil {
		return nil, err
	}
	payee, err := p.payee(toRaw, path+".to")
	if err != nil {
		return nil, err
	}

	tokRaw, err := p.field(m, path, "token")
	if err != nil {
		return nil, err
	}
	tok, err := p.token(tokRaw, path+".token")
	if err != nil {
		return nil, err
	}

	valRaw, err := p.field(m, path, "pay")
	if err != nil {
		return nil, err
	}
	val, err := p.value(valRaw, path+".pay")
	if err != nil {
		return nil, err
	}

	thenRaw, err := p.field(m, path, "then")
	if err != nil {
		return nil, err
	}
	then, err := p.contract(thenRaw, path+".then")
	if err != nil {
		return nil, err
	}

	return ast.Pay{AccountId: acc, Payee: payee, Token: tok, Value: val, Then: then}, nil
}

func (p *parser) ifContract(m map[string]json.RawMessage, path string) (ast.Contract, error) {
	obsRaw, err := p.field(m, path, "if")
	if err != nil {
		return nil, err
	}
	obs, err := p.observation(obsRaw, path+".if")
	if err != nil {
		return nil, err
	}

	thenRaw, err := p.field(m, path, "then")
	if err != nil {
		return nil, err
	}
	then, err := p.contract(thenRaw, path+".then")
	if err != nil {
		return nil, err
	}

	elseRaw, err := p.field(m, path, "else")
	if err != nil {
		return nil, err
	}
	elseC, err := p.contract(elseRaw, path+".else")
	if err != nil {
		return nil, err
	}

	return ast.If{Observation: obs, Then: then, Else: elseC}, nil
}

func (p *parser) when(m map[string]json.RawMessage, path string) (ast.Contract, error) {
	casesRaw, err := p.field(m, path, "when")
	if err != nil {
		return nil, err
	}
	var rawCases []json.RawMessage
	if err := json.Unmarshal(casesRaw, &rawCases); err != nil {
		return nil, errAt(path+".when", "expected an array of cases, got %s", shortForm(casesRaw))
	}

	cases := make([]ast.Case, len(rawCases))
	for i, rc := range rawCases {
		casePath := pathIndex(path+".when", i)
		c, err := p.caseItem(rc, casePath)
		if err != nil {
			return nil, err
		}
		cases[i] = c
	}

	timeoutRaw, err := p.field(m, path, "timeout")
	if err != nil {
		return nil, err
	}
	timeout, err := p.integer(timeoutRaw, path+".timeout")
	if err != nil {
		return nil, err
	}

	contRaw, err := p.field(m, path, "timeout_continuation")
	if err != nil {
		return nil, err
	}
	cont, err := p.contract(contRaw, path+".timeout_continuation")
	if err != nil {
		return nil, err
	}

	return ast.When{Cases: cases, Timeout: timeout, TimeoutContinuation: cont}, nil
}

func (p *parser) caseItem(raw json.RawMessage, path string) (ast.Case, error) {
	m, err := p.asObject(raw, path)
	if err != nil {
		return ast.Case{}, err
	}

	actionRaw, err := p.field(m, path, "case")
	if err != nil {
		return ast.Case{}, err
	}
	action, err := p.action(actionRaw, path+".case")
	if err != nil {
		return ast.Case{}, err
	}

	thenRaw, err := p.field(m, path, "then")
	if err != nil {
		return ast.Case{}, err
	}
	then, err := p.contract(thenRaw, path+".then")
	if err != nil {
		return ast.Case{}, err
	}

	return ast.Case{Action: action, Then: then}, nil
}

func (p *parser) action(raw json.RawMessage, path string) (ast.Action, error) {
	m, err := p.asObject(raw, path)
	if err != nil {
		return nil, err
	}

	switch {
	case has(m, "party"):
		return p.deposit(m, path)
	case has(m, "for_choice"):
		return p.choice(m, path)
	case has(m, "notify_if"):
		return p.notify(m, path)
	default:
		return nil, errAt(path, "unrecognized action shape %s", shortForm(raw))
	}
}

func (p *parser) deposit(m map[string]json.RawMessage, path string) (ast.Action, error) {
	partyRaw, err := p.field(m, path, "party")
	if err != nil {
		return nil, err
	}
	party, err := p.party(partyRaw, path+".party")
	if err != nil {
		return nil, err
	}

	accRaw, err := p.field(m, path, "into_account")
	if err != nil {
		return nil, err
	}
	acc, err := p.party(accRaw, path+".into_account")
	if err != nil {
		return nil, err
	}

	tokRaw, err := p.field(m, path, "of_token")
	if err != nil {
		return nil, err
	}
	tok, err := p.token(tokRaw, path+".of_token")
	if err != nil {
		return nil, err
	}

	valRaw, err := p.field(m, path, "deposits")
	if err != nil {
		return nil, err
	}
	val, err := p.value(valRaw, path+".deposits")
	if err != nil {
		return nil, err
	}

	return ast.Deposit{Party: party, IntoAccount: acc, Token: tok, Value: val}, nil
}

func (p *parser) choice(m map[string]json.RawMessage, path string) (ast.Action, error) {
	cidRaw, err := p.field(m, path, "for_choice")
	if err != nil {
		return nil, err
	}
	cid, err := p.choiceId(cidRaw, path+".for_choice")
	if err != nil {
		return nil, err
	}

	boundsRaw, err := p.field(m, path, "choose_between")
	if err != nil {
		return nil, err
	}
	var rawBounds []json.RawMessage
	if err := json.Unmarshal(boundsRaw, &rawBounds); err != nil {
		return nil, errAt(path+".choose_between", "expected an array of bounds, got %s", shortForm(boundsRaw))
	}
	bounds := make([]ast.Bound, len(rawBounds))
	for i, rb := range rawBounds {
		bp := pathIndex(path+".choose_between", i)
		b, err := p.bound(rb, bp)
		if err != nil {
			return nil, err
		}
		bounds[i] = b
	}

	return ast.Choice{ChoiceId: cid, Bounds: bounds}, nil
}

func (p *parser) notify(m map[string]json.RawMessage, path string) (ast.Action, error) {
	obsRaw, err := p.field(m, path, "notify_if")
	if err != nil {
		return nil, err
	}
	obs, err := p.observation(obsRaw, path+".notify_if")
	if err != nil {
		return nil, err
	}
	return ast.Notify{Observation: obs}, nil
}

func (p *parser) let(m map[string]json.RawMessage, path string) (ast.Contract, error) {
	idRaw, err := p.field(m, path, "let")
	if err != nil {
		return nil, err
	}
	id, err := p.string(idRaw, path+".let")
	if err != nil {
		return nil, err
	}

	valRaw, err := p.field(m, path, "be")
	if err != nil {
		return nil, err
	}
	val, err := p.value(valRaw, path+".be")
	if err != nil {
		return nil, err
	}

	thenRaw, err := p.field(m, path, "then")
	if err != nil {
		return nil, err
	}
	then, err := p.contract(thenRaw, path+".then")
	if err != nil {
		return nil, err
	}

	return ast.Let{ValueId: id, Value: val, Then: then}, nil
}

func (p *parser) assertContract(m map[string]json.RawMessage, path string) (ast.Contract, error) {
	obsRaw, err := p.field(m, path, "assert")
	if err != nil {
		return nil, err
	}
	obs, err := p.observation(obsRaw, path+".assert")
	if err != nil {
		return nil, err
	}

	thenRaw, err := p.field(m, path, "then")
	if err != nil {
		return nil, err
	}
	then, err := p.contract(thenRaw, path+".then")
	if err != nil {
		return nil, err
	}

	return ast.Assert{Observation: obs, Then: then}, nil
}

func has(m map[string]json.RawMessage, key string) bool {
	_, ok := m[key]
	return ok
}

func pathIndex(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}
