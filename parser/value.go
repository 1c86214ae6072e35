package parser

import (
	"encoding/json"

	"github.com/menabrealabs/marlowe-move/ast"
)

// value dispatches a Value shape. Bare JSON numbers/strings are treated
// as Constant; "time_interval_start"/"time_interval_end" are recognized
// as the two zero-field time reads; everything else is an object whose
// key set picks the variant, checked in the asymmetric key order the
// surface language actually uses (add/and, value/minus, ...).
func (p *parser) value(raw json.RawMessage, path string) (ast.Value, error) {
	var numLit json.Number
	if err := json.Unmarshal(raw, &numLit); err == nil {
		c, err := ast.NewConstant(numLit.String())
		if err != nil {
			return nil, errAt(path, "%s", err)
		}
		return c, nil
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		switch str {
		case "time_interval_start":
			return ast.TimeIntervalStart{}, nil
		case "time_interval_end":
			return ast.TimeIntervalEnd{}, nil
		default:
			return nil, errAt(path, "unrecognized value string %q", str)
		}
	}

	m, err := p.asObject(raw, path)
	if err != nil {
		return nil, err
	}

	switch {
	case has(m, "negate"):
		return p.negValue(m, path)
	case has(m, "add"):
		return p.addValue(m, path)
	case has(m, "value") && has(m, "minus"):
		return p.subValue(m, path)
	case has(m, "multiply"):
		return p.mulValue(m, path)
	case has(m, "divide"):
		return p.divValue(m, path)
	case has(m, "amount_of_token"):
		return p.availableMoney(m, path)
	case has(m, "value_of_choice"):
		return p.choiceValue(m, path)
	case has(m, "use_value"):
		return p.useValue(m, path)
	case has(m, "if") && has(m, "then") && has(m, "else"):
		return p.cond(m, path)
	default:
		return nil, errAt(path, "unrecognized value shape %s", shortForm(raw))
	}
}

func (p *parser) negValue(m map[string]json.RawMessage, path string) (ast.Value, error) {
	raw, err := p.field(m, path, "negate")
	if err != nil {
		return nil, err
	}
	v, err := p.value(raw, path+".negate")
	if err != nil {
		return nil, err
	}
	return ast.NegValue{Negate: v}, nil
}

func (p *parser) addValue(m map[string]json.RawMessage, path string) (ast.Value, error) {
	addRaw, err := p.field(m, path, "add")
	if err != nil {
		return nil, err
	}
	add, err := p.value(addRaw, path+".add")
	if err != nil {
		return nil, err
	}
	andRaw, err := p.field(m, path, "and")
	if err != nil {
		return nil, err
	}
	and, err := p.value(andRaw, path+".and")
	if err != nil {
		return nil, err
	}
	return ast.AddValue{Add: add, And: and}, nil
}

func (p *parser) subValue(m map[string]json.RawMessage, path string) (ast.Value, error) {
	valRaw, err := p.field(m, path, "value")
	if err != nil {
		return nil, err
	}
	val, err := p.value(valRaw, path+".value")
	if err != nil {
		return nil, err
	}
	minusRaw, err := p.field(m, path, "minus")
	if err != nil {
		return nil, err
	}
	minus, err := p.value(minusRaw, path+".minus")
	if err != nil {
		return nil, err
	}
	return ast.SubValue{Value: val, Minus: minus}, nil
}

func (p *parser) mulValue(m map[string]json.RawMessage, path string) (ast.Value, error) {
	mulRaw, err := p.field(m, path, "multiply")
	if err != nil {
		return nil, err
	}
	mul, err := p.value(mulRaw, path+".multiply")
	if err != nil {
		return nil, err
	}
	timesRaw, err := p.field(m, path, "times")
	if err != nil {
		return nil, err
	}
	times, err := p.value(timesRaw, path+".times")
	if err != nil {
		return nil, err
	}
	return ast.MulValue{Multiply: mul, Times: times}, nil
}

func (p *parser) divValue(m map[string]json.RawMessage, path string) (ast.Value, error) {
	divRaw, err := p.field(m, path, "divide")
	if err != nil {
		return nil, err
	}
	div, err := p.value(divRaw, path+".divide")
	if err != nil {
		return nil, err
	}
	byRaw, err := p.field(m, path, "by")
	if err != nil {
		return nil, err
	}
	by, err := p.value(byRaw, path+".by")
	if err != nil {
		return nil, err
	}
	return ast.DivValue{Divide: div, By: by}, nil
}

func (p *parser) availableMoney(m map[string]json.RawMessage, path string) (ast.Value, error) {
	tokRaw, err := p.field(m, path, "amount_of_token")
	if err != nil {
		return nil, err
	}
	tok, err := p.token(tokRaw, path+".amount_of_token")
	if err != nil {
		return nil, err
	}
	accRaw, err := p.field(m, path, "in_account")
	if err != nil {
		return nil, err
	}
	acc, err := p.party(accRaw, path+".in_account")
	if err != nil {
		return nil, err
	}
	return ast.AvailableMoney{Token: tok, Account: acc}, nil
}

func (p *parser) choiceValue(m map[string]json.RawMessage, path string) (ast.Value, error) {
	cidRaw, err := p.field(m, path, "value_of_choice")
	if err != nil {
		return nil, err
	}
	cid, err := p.choiceId(cidRaw, path+".value_of_choice")
	if err != nil {
		return nil, err
	}
	return ast.ChoiceValue{ChoiceId: cid}, nil
}

func (p *parser) useValue(m map[string]json.RawMessage, path string) (ast.Value, error) {
	nameRaw, err := p.field(m, path, "use_value")
	if err != nil {
		return nil, err
	}
	name, err := p.string(nameRaw, path+".use_value")
	if err != nil {
		return nil, err
	}
	return ast.UseValue{Name: name}, nil
}

func (p *parser) cond(m map[string]json.RawMessage, path string) (ast.Value, error) {
	ifRaw, err := p.field(m, path, "if")
	if err != nil {
		return nil, err
	}
	obs, err := p.observation(ifRaw, path+".if")
	if err != nil {
		return nil, err
	}
	thenRaw, err := p.field(m, path, "then")
	if err != nil {
		return nil, err
	}
	then, err := p.value(thenRaw, path+".then")
	if err != nil {
		return nil, err
	}
	elseRaw, err := p.field(m, path, "else")
	if err != nil {
		return nil, err
	}
	elseV, err := p.value(elseRaw, path+".else")
	if err != nil {
		return nil, err
	}
	return ast.Cond{If: obs, Then: then, Else: elseV}, nil
}
