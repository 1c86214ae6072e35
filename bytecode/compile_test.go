package bytecode_test

import (
	"bytes"
	"testing"

	"github.com/menabrealabs/marlowe-move/ast"
	"github.com/menabrealabs/marlowe-move/bytecode"
)

func mustConstant(t *testing.T, decimal string) ast.Constant {
	t.Helper()
	c, err := ast.NewConstant(decimal)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestCompile_Constant(t *testing.T) {
	c := mustConstant(t, "5")
	got, err := bytecode.Compile(c)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{byte(bytecode.CONST), 0, 0, 0, 0, 0, 0, 0, 5}
	if !bytes.Equal(got, want) {
		t.Errorf("got % x, want % x", got, want)
	}
}

func TestCompile_AddIsPostOrder(t *testing.T) {
	v := ast.AddValue{Add: mustConstant(t, "1"), And: mustConstant(t, "2")}
	got, err := bytecode.Compile(v)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{
		byte(bytecode.CONST), 0, 0, 0, 0, 0, 0, 0, 1,
		byte(bytecode.CONST), 0, 0, 0, 0, 0, 0, 0, 2,
		byte(bytecode.ADD),
	}
	if !bytes.Equal(got, want) {
		t.Errorf("got % x, want % x", got, want)
	}
}

func TestCompile_NegIsUnary(t *testing.T) {
	v := ast.NegValue{Negate: mustConstant(t, "9")}
	got, err := bytecode.Compile(v)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{byte(bytecode.CONST), 0, 0, 0, 0, 0, 0, 0, 9, byte(bytecode.NEG)}
	if !bytes.Equal(got, want) {
		t.Errorf("got % x, want % x", got, want)
	}
}

func TestCompile_NegOverflowIsRejected(t *testing.T) {
	c, err := ast.NewConstant("-1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := bytecode.Compile(c); err == nil {
		t.Fatal("expected an error compiling a negative constant")
	}
}

func TestCompileObservation_ChoseSomethingUsesHasChoice(t *testing.T) {
	obs := ast.ChoseSomething{ChoiceId: ast.ChoiceId{Name: "x", Owner: ast.RoleParty{RoleName: "oracle"}}}
	got, err := bytecode.CompileObservation(obs)
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != byte(bytecode.HAS_CHOICE) {
		t.Fatalf("expected HAS_CHOICE opcode, got %d", got[0])
	}
	key := "x:Role(oracle)"
	if got[1] != byte(len(key)) {
		t.Errorf("expected length prefix %d, got %d", len(key), got[1])
	}
	if string(got[2:2+len(key)]) != key {
		t.Errorf("expected key %q, got %q", key, got[2:2+len(key)])
	}
}

func TestCompileObservation_LTRewritesToGT(t *testing.T) {
	obs := ast.ValueLT{Value: mustConstant(t, "1"), Lt: mustConstant(t, "2")}
	got, err := bytecode.CompileObservation(obs)
	if err != nil {
		t.Fatal(err)
	}
	// A < B <=> B > A: rhs compiled first.
	want := []byte{
		byte(bytecode.CONST), 0, 0, 0, 0, 0, 0, 0, 2,
		byte(bytecode.CONST), 0, 0, 0, 0, 0, 0, 0, 1,
		byte(bytecode.GT),
	}
	if !bytes.Equal(got, want) {
		t.Errorf("got % x, want % x", got, want)
	}
}

func TestCompileObservation_LERewritesToGE(t *testing.T) {
	obs := ast.ValueLE{Value: mustConstant(t, "1"), Le: mustConstant(t, "2")}
	got, err := bytecode.CompileObservation(obs)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{
		byte(bytecode.CONST), 0, 0, 0, 0, 0, 0, 0, 2,
		byte(bytecode.CONST), 0, 0, 0, 0, 0, 0, 0, 1,
		byte(bytecode.GE),
	}
	if !bytes.Equal(got, want) {
		t.Errorf("got % x, want % x", got, want)
	}
}

func TestCompileObservation_EQExpandsToDoubleGEAnd(t *testing.T) {
	obs := ast.ValueEQ{Value: mustConstant(t, "1"), Equal: mustConstant(t, "1")}
	got, err := bytecode.CompileObservation(obs)
	if err != nil {
		t.Fatal(err)
	}
	// Two GE comparisons followed by AND, no distinct EQ opcode exists.
	count := func(op bytecode.Op) int {
		n := 0
		for _, b := range got {
			if b == byte(op) {
				n++
			}
		}
		return n
	}
	if n := count(bytecode.GE); n != 2 {
		t.Errorf("expected 2 GE opcodes, got %d", n)
	}
	if n := count(bytecode.AND); n != 1 {
		t.Errorf("expected 1 AND opcode, got %d", n)
	}
	if got[len(got)-1] != byte(bytecode.AND) {
		t.Errorf("expected stream to end with AND, got %d", got[len(got)-1])
	}
}

func TestCompile_DeterministicForEqualInput(t *testing.T) {
	v := ast.AddValue{Add: mustConstant(t, "3"), And: mustConstant(t, "4")}
	a, err := bytecode.Compile(v)
	if err != nil {
		t.Fatal(err)
	}
	b, err := bytecode.Compile(v)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Errorf("expected deterministic compilation, got % x vs % x", a, b)
	}
}

func TestCompile_CondUsesDoubleCJump(t *testing.T) {
	v := ast.Cond{If: ast.TrueObs{}, Then: mustConstant(t, "1"), Else: mustConstant(t, "2")}
	got, err := bytecode.Compile(v)
	if err != nil {
		t.Fatal(err)
	}
	count := 0
	for _, b := range got {
		if b == byte(bytecode.CJUMP) {
			count++
		}
	}
	if count != 2 {
		t.Fatalf("expected 2 CJUMP opcodes, got %d in % x", count, got)
	}
}
