package parser

import (
	"encoding/json"

	"github.com/menabrealabs/marlowe-move/ast"
)

func (p *parser) party(raw json.RawMessage, path string) (ast.Party, error) {
	m, err := p.asObject(raw, path)
	if err != nil {
		return nil, err
	}

	switch {
	case has(m, "address"):
		addrRaw, err := p.field(m, path, "address")
		if err != nil {
			return nil, err
		}
		addr, err := p.string(addrRaw, path+".address")
		if err != nil {
			return nil, err
		}
		party := ast.AddressParty{Address: addr}
		if p.opts.ValidateBech32Addresses {
			if err := party.ValidateBech32(); err != nil {
				return nil, errAt(path+".address", "invalid bech32 address %q: %s", addr, err)
			}
		}
		return party, nil
	case has(m, "role_token"):
		roleRaw, err := p.field(m, path, "role_token")
		if err != nil {
			return nil, err
		}
		role, err := p.string(roleRaw, path+".role_token")
		if err != nil {
			return nil, err
		}
		return ast.RoleParty{RoleName: role}, nil
	default:
		return nil, errAt(path, "unrecognized party shape %s", shortForm(raw))
	}
}

func (p *parser) payee(raw json.RawMessage, path string) (ast.Payee, error) {
	m, err := p.asObject(raw, path)
	if err != nil {
		return nil, err
	}

	switch {
	case has(m, "party"):
		partyRaw, err := p.field(m, path, "party")
		if err != nil {
			return nil, err
		}
		party, err := p.party(partyRaw, path+".party")
		if err != nil {
			return nil, err
		}
		return ast.PartyPayee{Party: party}, nil
	case has(m, "account"):
		accRaw, err := p.field(m, path, "account")
		if err != nil {
			return nil, err
		}
		acc, err := p.party(accRaw, path+".account")
		if err != nil {
			return nil, err
		}
		return ast.AccountPayee{Account: acc}, nil
	default:
		return nil, errAt(path, "unrecognized payee shape %s", shortForm(raw))
	}
}

func (p *parser) token(raw json.RawMessage, path string) (ast.Token, error) {
	m, err := p.asObject(raw, path)
	if err != nil {
		return ast.Token{}, err
	}

	symRaw, err := p.field(m, path, "currency_symbol")
	if err != nil {
		return ast.Token{}, err
	}
	sym, err := p.string(symRaw, path+".currency_symbol")
	if err != nil {
		return ast.Token{}, err
	}

	nameRaw, err := p.field(m, path, "token_name")
	if err != nil {
		return ast.Token{}, err
	}
	name, err := p.string(nameRaw, path+".token_name")
	if err != nil {
		return ast.Token{}, err
	}

	return ast.Token{CurrencySymbol: sym, TokenName: name}, nil
}

func (p *parser) choiceId(raw json.RawMessage, path string) (ast.ChoiceId, error) {
	m, err := p.asObject(raw, path)
	if err != nil {
		return ast.ChoiceId{}, err
	}

	nameRaw, err := p.field(m, path, "choice_name")
	if err != nil {
		return ast.ChoiceId{}, err
	}
	name, err := p.string(nameRaw, path+".choice_name")
	if err != nil {
		return ast.ChoiceId{}, err
	}

	ownerRaw, err := p.field(m, path, "choice_owner")
	if err != nil {
		return ast.ChoiceId{}, err
	}
	owner, err := p.party(ownerRaw, path+".choice_owner")
	if err != nil {
		return ast.ChoiceId{}, err
	}

	return ast.ChoiceId{Name: name, Owner: owner}, nil
}

func (p *parser) bound(raw json.RawMessage, path string) (ast.Bound, error) {
	m, err := p.asObject(raw, path)
	if err != nil {
		return ast.Bound{}, err
	}

	fromRaw, err := p.field(m, path, "from")
	if err != nil {
		return ast.Bound{}, err
	}
	from, err := p.uinteger(fromRaw, path+".from")
	if err != nil {
		return ast.Bound{}, err
	}

	toRaw, err := p.field(m, path, "to")
	if err != nil {
		return ast.Bound{}, err
	}
	to, err := p.uinteger(toRaw, path+".to")
	if err != nil {
		return ast.Bound{}, err
	}

	if to < from {
		return ast.Bound{}, errAt(path, "bound [%d, %d] has to < from", from, to)
	}

	return ast.Bound{From: from, To: to}, nil
}
