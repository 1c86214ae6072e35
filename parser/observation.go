package parser

import (
	"encoding/json"

	"github.com/menabrealabs/marlowe-move/ast"
)

// observation dispatches the bare booleans true/false and the object
// shapes for the remaining nine variants.
func (p *parser) observation(raw json.RawMessage, path string) (ast.Observation, error) {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		if b {
			return ast.TrueObs{}, nil
		}
		return ast.FalseObs{}, nil
	}

	m, err := p.asObject(raw, path)
	if err != nil {
		return nil, err
	}

	switch {
	case has(m, "both"):
		return p.andObs(m, path)
	case has(m, "either"):
		return p.orObs(m, path)
	case has(m, "not"):
		return p.notObs(m, path)
	case has(m, "chose_something_for"):
		return p.choseSomething(m, path)
	case has(m, "value") && has(m, "ge_than"):
		return p.valueGE(m, path)
	case has(m, "value") && has(m, "gt"):
		return p.valueGT(m, path)
	case has(m, "value") && has(m, "lt"):
		return p.valueLT(m, path)
	case has(m, "value") && has(m, "le_than"):
		return p.valueLE(m, path)
	case has(m, "value") && has(m, "equal_to"):
		return p.valueEQ(m, path)
	default:
		return nil, errAt(path, "unrecognized observation shape %s", shortForm(raw))
	}
}

func (p *parser) andObs(m map[string]json.RawMessage, path string) (ast.Observation, error) {
	bothRaw, err := p.field(m, path, "both")
	if err != nil {
		return nil, err
	}
	both, err := p.observation(bothRaw, path+".both")
	if err != nil {
		return nil, err
	}
	andRaw, err := p.field(m, path, "and")
	if err != nil {
		return nil, err
	}
	and, err := p.observation(andRaw, path+".and")
	if err != nil {
		return nil, err
	}
	return ast.AndObs{Both: both, And: and}, nil
}

func (p *parser) orObs(m map[string]json.RawMessage, path string) (ast.Observation, error) {
	eitherRaw, err := p.field(m, path, "either")
	if err != nil {
		return nil, err
	}
	either, err := p.observation(eitherRaw, path+".either")
	if err != nil {
		return nil, err
	}
	orRaw, err := p.field(m, path, "or")
	if err != nil {
		return nil, err
	}
	or, err := p.observation(orRaw, path+".or")
	if err != nil {
		return nil, err
	}
	return ast.OrObs{Either: either, Or: or}, nil
}

func (p *parser) notObs(m map[string]json.RawMessage, path string) (ast.Observation, error) {
	notRaw, err := p.field(m, path, "not")
	if err != nil {
		return nil, err
	}
	not, err := p.observation(notRaw, path+".not")
	if err != nil {
		return nil, err
	}
	return ast.NotObs{Not: not}, nil
}

func (p *parser) choseSomething(m map[string]json.RawMessage, path string) (ast.Observation, error) {
	cidRaw, err := p.field(m, path, "chose_something_for")
	if err != nil {
		return nil, err
	}
	cid, err := p.choiceId(cidRaw, path+".chose_something_for")
	if err != nil {
		return nil, err
	}
	return ast.ChoseSomething{ChoiceId: cid}, nil
}

func (p *parser) valuePair(m map[string]json.RawMessage, path, otherKey string) (ast.Value, ast.Value, error) {
	valRaw, err := p.field(m, path, "value")
	if err != nil {
		return nil, nil, err
	}
	val, err := p.value(valRaw, path+".value")
	if err != nil {
		return nil, nil, err
	}
	otherRaw, err := p.field(m, path, otherKey)
	if err != nil {
		return nil, nil, err
	}
	other, err := p.value(otherRaw, path+"."+otherKey)
	if err != nil {
		return nil, nil, err
	}
	return val, other, nil
}

func (p *parser) valueGE(m map[string]json.RawMessage, path string) (ast.Observation, error) {
	val, other, err := p.valuePair(m, path, "ge_than")
	if err != nil {
		return nil, err
	}
	return ast.ValueGE{Value: val, Ge: other}, nil
}

func (p *parser) valueGT(m map[string]json.RawMessage, path string) (ast.Observation, error) {
	val, other, err := p.valuePair(m, path, "gt")
	if err != nil {
		return nil, err
	}
	return ast.ValueGT{Value: val, Gt: other}, nil
}

func (p *parser) valueLT(m map[string]json.RawMessage, path string) (ast.Observation, error) {
	val, other, err := p.valuePair(m, path, "lt")
	if err != nil {
		return nil, err
	}
	return ast.ValueLT{Value: val, Lt: other}, nil
}

func (p *parser) valueLE(m map[string]json.RawMessage, path string) (ast.Observation, error) {
	val, other, err := p.valuePair(m, path, "le_than")
	if err != nil {
		return nil, err
	}
	return ast.ValueLE{Value: val, Le: other}, nil
}

func (p *parser) valueEQ(m map[string]json.RawMessage, path string) (ast.Observation, error) {
	val, other, err := p.valuePair(m, path, "equal_to")
	if err != nil {
		return nil, err
	}
	return ast.ValueEQ{Value: val, Equal: other}, nil
}
