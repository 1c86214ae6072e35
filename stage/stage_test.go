package stage_test

import (
	"testing"

	"github.com/menabrealabs/marlowe-move/ast"
	"github.com/menabrealabs/marlowe-move/stage"
	"github.com/menabrealabs/marlowe-move/tokenresolve"
)

func TestAllocate_Close(t *testing.T) {
	p, err := stage.Allocate(ast.Close, tokenresolve.Default())
	if err != nil {
		t.Fatal(err)
	}
	if p.TotalStages != 1 {
		t.Fatalf("expected 1 stage, got %d", p.TotalStages)
	}
	if len(p.Closes) != 1 || p.Closes[0].Stage != 0 {
		t.Fatalf("expected a single close at stage 0, got %+v", p.Closes)
	}
	if p.Lookup[0] != stage.KindClose {
		t.Errorf("expected stage 0 to be a close, got %s", p.Lookup[0])
	}
}

func TestAllocate_PayThenClose(t *testing.T) {
	c := ast.Pay{
		AccountId: ast.RoleParty{RoleName: "buyer"},
		Payee:     ast.PartyPayee{Party: ast.RoleParty{RoleName: "seller"}},
		Token:     ast.Token{},
		Value:     ast.Constant{},
		Then:      ast.Close,
	}
	p, err := stage.Allocate(c, tokenresolve.Default())
	if err != nil {
		t.Fatal(err)
	}
	if p.TotalStages != 2 {
		t.Fatalf("expected 2 stages, got %d", p.TotalStages)
	}
	if len(p.Pays) != 1 || p.Pays[0].Stage != 0 || p.Pays[0].NextStage != 1 {
		t.Fatalf("unexpected pay info: %+v", p.Pays)
	}
	if len(p.Closes) != 1 || p.Closes[0].Stage != 1 {
		t.Fatalf("unexpected close info: %+v", p.Closes)
	}
}

func TestAllocate_IfBranchesAreDisjointStageRanges(t *testing.T) {
	c := ast.If{
		Observation: ast.TrueObs{},
		Then: ast.Pay{
			AccountId: ast.RoleParty{RoleName: "a"},
			Payee:     ast.PartyPayee{Party: ast.RoleParty{RoleName: "b"}},
			Token:     ast.Token{},
			Value:     ast.Constant{},
			Then:      ast.Close,
		},
		Else: ast.Close,
	}
	p, err := stage.Allocate(c, tokenresolve.Default())
	if err != nil {
		t.Fatal(err)
	}
	// stage 0: if, stage 1: pay (then-branch), stage 2: close (then-branch
	// continuation), stage 3: close (else-branch).
	if p.TotalStages != 4 {
		t.Fatalf("expected 4 stages, got %d", p.TotalStages)
	}
	ifInfo := p.Ifs[0]
	if ifInfo.ThenStage != 1 {
		t.Errorf("expected then-stage 1, got %d", ifInfo.ThenStage)
	}
	if ifInfo.ElseStage != 3 {
		t.Errorf("expected else-stage 3, got %d", ifInfo.ElseStage)
	}
}

func TestAllocate_WhenCasesAllocateBeforeTimeout(t *testing.T) {
	c := ast.When{
		Cases: []ast.Case{
			{
				Action: ast.Deposit{
					Party:       ast.RoleParty{RoleName: "buyer"},
					IntoAccount: ast.RoleParty{RoleName: "buyer"},
					Token:       ast.Token{},
					Value:       ast.Constant{},
				},
				Then: ast.Close,
			},
			{
				Action: ast.Choice{
					ChoiceId: ast.ChoiceId{Name: "x", Owner: ast.RoleParty{RoleName: "oracle"}},
					Bounds:   []ast.Bound{{From: 0, To: 1}},
				},
				Then: ast.Close,
			},
		},
		Timeout:             1000,
		TimeoutContinuation: ast.Close,
	}
	p, err := stage.Allocate(c, tokenresolve.Default())
	if err != nil {
		t.Fatal(err)
	}
	// stage 0: when, 1: close (case 0's then), 2: close (case 1's then),
	// 3: close (timeout continuation).
	if p.TotalStages != 4 {
		t.Fatalf("expected 4 stages, got %d", p.TotalStages)
	}
	when := p.Whens[0]
	if when.CasesCount != 2 {
		t.Errorf("expected 2 cases, got %d", when.CasesCount)
	}
	if when.TimeoutStage != 3 {
		t.Errorf("expected timeout stage 3, got %d", when.TimeoutStage)
	}

	cases := p.WhenCasesFor(0)
	if len(cases.Deposits) != 1 || cases.Deposits[0].NextStage != 1 {
		t.Fatalf("unexpected deposits: %+v", cases.Deposits)
	}
	if len(cases.Choices) != 1 || cases.Choices[0].NextStage != 2 {
		t.Fatalf("unexpected choices: %+v", cases.Choices)
	}
}

func TestAllocate_StageIDsAreDenseAndUnique(t *testing.T) {
	c := ast.When{
		Cases: []ast.Case{
			{Action: ast.Notify{Observation: ast.TrueObs{}}, Then: ast.If{
				Observation: ast.TrueObs{},
				Then:        ast.Close,
				Else:        ast.Close,
			}},
		},
		Timeout:             10,
		TimeoutContinuation: ast.Close,
	}
	p, err := stage.Allocate(c, tokenresolve.Default())
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Lookup) != p.TotalStages {
		t.Fatalf("expected %d distinct stages in lookup, got %d", p.TotalStages, len(p.Lookup))
	}
	for i := 0; i < p.TotalStages; i++ {
		if _, ok := p.Lookup[i]; !ok {
			t.Errorf("stage %d missing from lookup", i)
		}
	}
}

func TestAllocate_UnresolvedTokenDoesNotFailAllocation(t *testing.T) {
	c := ast.Pay{
		AccountId: ast.RoleParty{RoleName: "a"},
		Payee:     ast.PartyPayee{Party: ast.RoleParty{RoleName: "b"}},
		Token:     ast.Token{CurrencySymbol: "deadbeef", TokenName: "MYSTERY"},
		Value:     ast.Constant{},
		Then:      ast.Close,
	}
	p, err := stage.Allocate(c, tokenresolve.Default())
	if err != nil {
		t.Fatal(err)
	}
	if p.Pays[0].MoveTokenType != tokenresolve.UnknownType {
		t.Errorf("expected sentinel token type, got %q", p.Pays[0].MoveTokenType)
	}
	if len(p.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d: %v", len(p.Warnings), p.Warnings)
	}
}
