// Package value implements the tagged value union that flows through the
// stack machine's operand stack, call-frame locals, and heap round-trips.
package value

import (
	"fmt"
	"strconv"
)

// Kind discriminates the concrete type held by a Value.
type Kind int

const (
	Int Kind = iota
	Float
	Bool
	String
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "Int"
	case Float:
		return "Float"
	case Bool:
		return "Bool"
	case String:
		return "String"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is a closed discriminated union over {Int, Float, Bool, String}.
// Only the field matching Kind is meaningful.
type Value struct {
	Kind Kind
	I    int64
	F    float64
	B    bool
	S    string
}

func NewInt(i int64) Value     { return Value{Kind: Int, I: i} }
func NewFloat(f float64) Value { return Value{Kind: Float, F: f} }
func NewBool(b bool) Value     { return Value{Kind: Bool, B: b} }
func NewString(s string) Value { return Value{Kind: String, S: s} }

// Zero returns the zero value for a kind (used by DefaultValue recovery).
func Zero(k Kind) Value {
	switch k {
	case Float:
		return NewFloat(0)
	case Bool:
		return NewBool(false)
	case String:
		return NewString("")
	default:
		return NewInt(0)
	}
}

// Truthy implements the source's truthiness rule: nonzero numeric, non-empty
// string, or true boolean.
func (v Value) Truthy() bool {
	switch v.Kind {
	case Int:
		return v.I != 0
	case Float:
		return v.F != 0
	case Bool:
		return v.B
	case String:
		return v.S != ""
	default:
		return false
	}
}

// AsFloat widens the value to float64, for use in mixed-type arithmetic.
func (v Value) AsFloat() float64 {
	switch v.Kind {
	case Int:
		return float64(v.I)
	case Float:
		return v.F
	case Bool:
		if v.B {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// AsInt32 narrows the value to a 4-byte signed integer, for heap cell
// round-trips. Non-numeric kinds yield 0.
func (v Value) AsInt32() int32 {
	switch v.Kind {
	case Int:
		return int32(v.I)
	case Float:
		return int32(v.F)
	case Bool:
		if v.B {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func (v Value) String() string {
	switch v.Kind {
	case Int:
		return strconv.FormatInt(v.I, 10)
	case Float:
		return strconv.FormatFloat(v.F, 'g', -1, 64)
	case Bool:
		return strconv.FormatBool(v.B)
	case String:
		return v.S
	default:
		return "<invalid>"
	}
}

// numeric reports whether two values can participate in arithmetic without
// coercion, and whether the result should be a float.
func numeric(a, b Value) (isFloat bool, ok bool) {
	an := a.Kind == Int || a.Kind == Float || a.Kind == Bool
	bn := b.Kind == Int || b.Kind == Float || b.Kind == Bool
	if !an || !bn {
		return false, false
	}
	return a.Kind == Float || b.Kind == Float, true
}

// Add, Sub, Mul implement the binary arithmetic opcodes. Mixed int/float
// promotes to float per spec; non-numeric operands return an error so the
// caller can raise a TypeError fault.
func Add(a, b Value) (Value, error) { return arith(a, b, func(x, y float64) float64 { return x + y }, func(x, y int64) int64 { return x + y }) }
func Sub(a, b Value) (Value, error) { return arith(a, b, func(x, y float64) float64 { return x - y }, func(x, y int64) int64 { return x - y }) }
func Mul(a, b Value) (Value, error) { return arith(a, b, func(x, y float64) float64 { return x * y }, func(x, y int64) int64 { return x * y }) }

func arith(a, b Value, ff func(x, y float64) float64, fi func(x, y int64) int64) (Value, error) {
	isFloat, ok := numeric(a, b)
	if !ok {
		return Value{}, fmt.Errorf("operand type mismatch: %s and %s are not numeric", a.Kind, b.Kind)
	}
	if isFloat {
		return NewFloat(ff(a.AsFloat(), b.AsFloat())), nil
	}
	return NewInt(fi(a.I, b.I)), nil
}

// Div implements division. Spec: integer division performs true division and
// yields a float; mixed int/float also promotes to float.
func Div(a, b Value) (Value, error) {
	_, ok := numeric(a, b)
	if !ok {
		return Value{}, fmt.Errorf("operand type mismatch: %s and %s are not numeric", a.Kind, b.Kind)
	}
	if b.AsFloat() == 0 {
		return Value{}, errDivideByZero
	}
	return NewFloat(a.AsFloat() / b.AsFloat()), nil
}

// Mod implements modulo over the integer representations of both operands.
func Mod(a, b Value) (Value, error) {
	_, ok := numeric(a, b)
	if !ok {
		return Value{}, fmt.Errorf("operand type mismatch: %s and %s are not numeric", a.Kind, b.Kind)
	}
	divisor := b.AsInt32()
	if divisor == 0 {
		return Value{}, errDivideByZero
	}
	return NewInt(int64(a.AsInt32() % divisor)), nil
}

var errDivideByZero = fmt.Errorf("division by zero")

// IsDivideByZero reports whether err was returned because of a zero divisor.
func IsDivideByZero(err error) bool { return err == errDivideByZero }

// Compare implements the comparison opcodes. Results are always numeric 1/0,
// never a distinct boolean, per spec §9.
func Compare(op string, a, b Value) (Value, error) {
	var result bool
	switch {
	case a.Kind == String || b.Kind == String:
		if a.Kind != String || b.Kind != String {
			return Value{}, fmt.Errorf("operand type mismatch: cannot compare %s and %s", a.Kind, b.Kind)
		}
		result = compareStrings(op, a.S, b.S)
	default:
		_, ok := numeric(a, b)
		if !ok {
			return Value{}, fmt.Errorf("operand type mismatch: cannot compare %s and %s", a.Kind, b.Kind)
		}
		result = compareFloats(op, a.AsFloat(), b.AsFloat())
	}
	if result {
		return NewInt(1), nil
	}
	return NewInt(0), nil
}

func compareFloats(op string, a, b float64) bool {
	switch op {
	case "Eq":
		return a == b
	case "Ne":
		return a != b
	case "Gt":
		return a > b
	case "Lt":
		return a < b
	case "Ge":
		return a >= b
	case "Le":
		return a <= b
	default:
		return false
	}
}

func compareStrings(op string, a, b string) bool {
	switch op {
	case "Eq":
		return a == b
	case "Ne":
		return a != b
	case "Gt":
		return a > b
	case "Lt":
		return a < b
	case "Ge":
		return a >= b
	case "Le":
		return a <= b
	default:
		return false
	}
}

// Coerce attempts best-effort conversion of v to the target kind, per the
// TypeError recovery policy. Returns an error if conversion is not possible,
// so the caller can escalate to Abort.
func Coerce(v Value, target Kind) (Value, error) {
	if v.Kind == target {
		return v, nil
	}
	switch target {
	case Int:
		switch v.Kind {
		case Float:
			return NewInt(int64(v.F)), nil
		case Bool:
			if v.B {
				return NewInt(1), nil
			}
			return NewInt(0), nil
		case String:
			i, err := strconv.ParseInt(v.S, 10, 64)
			if err != nil {
				return Value{}, fmt.Errorf("cannot coerce %q to Int: %w", v.S, err)
			}
			return NewInt(i), nil
		}
	case Float:
		switch v.Kind {
		case Int:
			return NewFloat(float64(v.I)), nil
		case Bool:
			return NewFloat(v.AsFloat()), nil
		case String:
			f, err := strconv.ParseFloat(v.S, 64)
			if err != nil {
				return Value{}, fmt.Errorf("cannot coerce %q to Float: %w", v.S, err)
			}
			return NewFloat(f), nil
		}
	case String:
		return NewString(v.String()), nil
	case Bool:
		return NewBool(v.Truthy()), nil
	}
	return Value{}, fmt.Errorf("cannot coerce %s to %s", v.Kind, target)
}
