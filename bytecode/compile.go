package bytecode

import (
	"encoding/binary"
	"math"
	"math/big"

	"github.com/pkg/errors"

	"github.com/menabrealabs/marlowe-move/ast"
)

var maxUint64 = new(big.Int).SetUint64(math.MaxUint64)

// Compile emits the post-order opcode stream for a Value expression.
func Compile(v ast.Value) ([]byte, error) {
	var buf []byte
	if err := compileValue(v, &buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// CompileObservation emits the post-order opcode stream for an
// Observation expression.
func CompileObservation(o ast.Observation) ([]byte, error) {
	var buf []byte
	if err := compileObservation(o, &buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func compileValue(v ast.Value, buf *[]byte) error {
	switch x := v.(type) {
	case ast.Constant:
		return emitConstant(x, buf)

	case ast.NegValue:
		if err := compileValue(x.Negate, buf); err != nil {
			return err
		}
		*buf = append(*buf, byte(NEG))
		return nil

	case ast.AddValue:
		return emitBinary(x.Add, x.And, ADD, buf)

	case ast.SubValue:
		return emitBinary(x.Value, x.Minus, SUB, buf)

	case ast.MulValue:
		return emitBinary(x.Multiply, x.Times, MUL, buf)

	case ast.DivValue:
		return emitBinary(x.Divide, x.By, DIV, buf)

	case ast.AvailableMoney:
		partyKey := x.Account.Repr()
		tokenKey := tokenKey(x.Token)
		*buf = append(*buf, byte(GET_ACC))
		if err := emitString(partyKey, buf); err != nil {
			return err
		}
		return emitString(tokenKey, buf)

	case ast.ChoiceValue:
		*buf = append(*buf, byte(GET_CHOICE))
		return emitString(x.ChoiceId.Key(), buf)

	case ast.UseValue:
		*buf = append(*buf, byte(USE_VAL))
		return emitString(x.Name, buf)

	case ast.TimeIntervalStart:
		*buf = append(*buf, byte(TIME_START))
		return nil

	case ast.TimeIntervalEnd:
		*buf = append(*buf, byte(TIME_END))
		return nil

	case ast.Cond:
		// CJUMP only ever skips forward over a zero condition, and the
		// VM has no unconditional jump — a single CJUMP can guard the
		// then-branch but cannot then also skip the else-branch once
		// the then-branch has run. Two CJUMPs close the loop: the first
		// skips straight to the else-branch when the condition is
		// false; the then-branch ends by pushing a literal ZERO and
		// using a second CJUMP, which always skips (its popped operand
		// is that literal), to jump over the else-branch.
		if err := compileObservation(x.If, buf); err != nil {
			return err
		}

		var thenBuf []byte
		if err := compileValue(x.Then, &thenBuf); err != nil {
			return err
		}
		var elseBuf []byte
		if err := compileValue(x.Else, &elseBuf); err != nil {
			return err
		}

		thenBlock := append([]byte{}, thenBuf...)
		thenBlock = append(thenBlock, byte(ZERO), byte(CJUMP))
		thenBlock = appendUint16(thenBlock, len(elseBuf))

		*buf = append(*buf, byte(CJUMP))
		*buf = appendUint16(*buf, len(thenBlock))
		*buf = append(*buf, thenBlock...)
		*buf = append(*buf, elseBuf...)
		return nil

	default:
		return errors.Errorf("unrecognized Value type %T", v)
	}
}

func compileObservation(o ast.Observation, buf *[]byte) error {
	switch x := o.(type) {
	case ast.TrueObs:
		*buf = append(*buf, byte(TRUE))
		return nil

	case ast.FalseObs:
		*buf = append(*buf, byte(ZERO))
		return nil

	case ast.AndObs:
		return emitBinaryObs(x.Both, x.And, AND, buf)

	case ast.OrObs:
		return emitBinaryObs(x.Either, x.Or, OR, buf)

	case ast.NotObs:
		if err := compileObservation(x.Not, buf); err != nil {
			return err
		}
		*buf = append(*buf, byte(NOT))
		return nil

	case ast.ChoseSomething:
		*buf = append(*buf, byte(HAS_CHOICE))
		return emitString(x.ChoiceId.Key(), buf)

	case ast.ValueGE:
		return emitBinary(x.Value, x.Ge, GE, buf)

	case ast.ValueGT:
		return emitBinary(x.Value, x.Gt, GT, buf)

	case ast.ValueLT:
		// A < B <=> B > A
		return emitBinary(x.Lt, x.Value, GT, buf)

	case ast.ValueLE:
		// A <= B <=> B >= A
		return emitBinary(x.Le, x.Value, GE, buf)

	case ast.ValueEQ:
		// A == B <=> (A >= B) && (B >= A). Values are side-effect free
		// (besides time reads), so recompiling each side twice is safe.
		var lhsGe []byte
		if err := emitBinary(x.Value, x.Equal, GE, &lhsGe); err != nil {
			return err
		}
		var rhsGe []byte
		if err := emitBinary(x.Equal, x.Value, GE, &rhsGe); err != nil {
			return err
		}
		*buf = append(*buf, lhsGe...)
		*buf = append(*buf, rhsGe...)
		*buf = append(*buf, byte(AND))
		return nil

	default:
		return errors.Errorf("unrecognized Observation type %T", o)
	}
}

func emitBinary(lhs, rhs ast.Value, op Op, buf *[]byte) error {
	if err := compileValue(lhs, buf); err != nil {
		return err
	}
	if err := compileValue(rhs, buf); err != nil {
		return err
	}
	*buf = append(*buf, byte(op))
	return nil
}

func emitBinaryObs(lhs, rhs ast.Observation, op Op, buf *[]byte) error {
	if err := compileObservation(lhs, buf); err != nil {
		return err
	}
	if err := compileObservation(rhs, buf); err != nil {
		return err
	}
	*buf = append(*buf, byte(op))
	return nil
}

func emitConstant(c ast.Constant, buf *[]byte) error {
	if c.Value.Sign() < 0 {
		return errors.Errorf("constant %s is negative; the target opcode stream carries unsigned u64 operands only", c.Value.String())
	}
	if c.Value.Cmp(maxUint64) > 0 {
		return errors.Errorf("constant %s overflows u64", c.Value.String())
	}
	*buf = append(*buf, byte(CONST))
	var operand [8]byte
	binary.BigEndian.PutUint64(operand[:], c.Value.Uint64())
	*buf = append(*buf, operand[:]...)
	return nil
}

func emitString(s string, buf *[]byte) error {
	b := []byte(s)
	if len(b) > math.MaxUint8 {
		return errors.Errorf("operand %q exceeds the 1-byte length prefix (255 bytes)", s)
	}
	*buf = append(*buf, byte(len(b)))
	*buf = append(*buf, b...)
	return nil
}

func appendUint16(buf []byte, n int) []byte {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], uint16(n))
	return append(buf, b[:]...)
}

// tokenKey returns the bytecode operand for a Token: its name component,
// or the chain-native symbol when both fields are empty (spec.md §4.3).
func tokenKey(t ast.Token) string {
	if t.IsNative() {
		return "SUI"
	}
	return t.TokenName
}
