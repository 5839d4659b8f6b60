package value_test

import (
	"testing"

	"github.com/qwas982/svm/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdd_MixedIntFloatPromotes(t *testing.T) {
	tests := []struct {
		name     string
		a, b     value.Value
		wantKind value.Kind
		wantF    float64
	}{
		{"int+int stays int", value.NewInt(2), value.NewInt(3), value.Int, 5},
		{"int+float promotes", value.NewInt(2), value.NewFloat(3.5), value.Float, 5.5},
		{"float+float stays float", value.NewFloat(1.5), value.NewFloat(2.5), value.Float, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := value.Add(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, result.Kind)
			assert.Equal(t, tt.wantF, result.AsFloat())
		})
	}
}

func TestDiv_IntegerDivisionYieldsFloat(t *testing.T) {
	result, err := value.Div(value.NewInt(10), value.NewInt(4))
	require.NoError(t, err)
	assert.Equal(t, value.Float, result.Kind)
	assert.Equal(t, 2.5, result.F)
}

func TestDiv_ByZero(t *testing.T) {
	_, err := value.Div(value.NewInt(10), value.NewInt(0))
	require.Error(t, err)
	assert.True(t, value.IsDivideByZero(err))
}

func TestMod_ByZero(t *testing.T) {
	_, err := value.Mod(value.NewInt(10), value.NewInt(0))
	require.Error(t, err)
	assert.True(t, value.IsDivideByZero(err))
}

func TestCompare_AlwaysNumeric(t *testing.T) {
	result, err := value.Compare("Gt", value.NewInt(5), value.NewInt(3))
	require.NoError(t, err)
	if result.Kind != value.Int {
		t.Fatalf("comparison result must be Int, got %s", result.Kind)
	}
	if result.I != 1 {
		t.Errorf("expected 1, got %d", result.I)
	}

	result, err = value.Compare("Gt", value.NewInt(1), value.NewInt(3))
	require.NoError(t, err)
	if result.I != 0 {
		t.Errorf("expected 0, got %d", result.I)
	}
}

func TestCompare_StringMismatchIsTypeError(t *testing.T) {
	_, err := value.Compare("Eq", value.NewString("a"), value.NewInt(1))
	require.Error(t, err)
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		name string
		v    value.Value
		want bool
	}{
		{"nonzero int", value.NewInt(1), true},
		{"zero int", value.NewInt(0), false},
		{"nonempty string", value.NewString("x"), true},
		{"empty string", value.NewString(""), false},
		{"true bool", value.NewBool(true), true},
		{"false bool", value.NewBool(false), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.Truthy())
		})
	}
}

func TestCoerce_StringToInt(t *testing.T) {
	result, err := value.Coerce(value.NewString("42"), value.Int)
	require.NoError(t, err)
	assert.Equal(t, int64(42), result.I)
}

func TestCoerce_FailureIsError(t *testing.T) {
	_, err := value.Coerce(value.NewString("not a number"), value.Int)
	require.Error(t, err)
}
