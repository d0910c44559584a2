package fixed_test

import (
	"testing"

	"github.com/aj-kip/erfindung/fixed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToFixedRoundTrip(t *testing.T) {
	for _, d := range []float64{0, 1, -1, 12.34, -12.34, 32767.999984, -32767.5, 0.5, -0.5} {
		w, err := fixed.ToFixed(d)
		require.NoError(t, err)
		got := fixed.ToFloat64(w)
		assert.InDelta(t, d, got, 1.0/65536.0, "round trip for %v", d)
	}
}

func TestToFixedOverflow(t *testing.T) {
	_, err := fixed.ToFixed(40000)
	assert.Error(t, err)
}

func TestToFixedZeroCanonicalSign(t *testing.T) {
	w, err := fixed.ToFixed(-0.0)
	require.NoError(t, err)
	assert.Equal(t, fixed.Word(0), w)
}

func TestMulSignIsXor(t *testing.T) {
	a, _ := fixed.ToFixed(2.5)
	b, _ := fixed.ToFixed(-4.0)
	got := fixed.Mul(a, b)
	assert.NotZero(t, uint32(got)&0x80000000, "negative*positive should carry sign bit")

	c, _ := fixed.ToFixed(-2.5)
	got2 := fixed.Mul(b, c)
	assert.Zero(t, uint32(got2)&0x80000000, "negative*negative should be positive")
}

func TestDivByZero(t *testing.T) {
	a, _ := fixed.ToFixed(1.0)
	_, err := fixed.Div(a, 0)
	assert.ErrorIs(t, err, fixed.ErrDivideByZero)
}

func TestCmpFixedOrdering(t *testing.T) {
	a, _ := fixed.ToFixed(1.0)
	b, _ := fixed.ToFixed(2.0)
	negA, _ := fixed.ToFixed(-1.0)

	assert.Equal(t, fixed.FlagLT|fixed.FlagNE, fixed.CmpFixed(a, b))
	assert.Equal(t, fixed.FlagGT|fixed.FlagNE, fixed.CmpFixed(b, a))
	assert.Equal(t, fixed.FlagEQ, fixed.CmpFixed(a, a))
	assert.Equal(t, fixed.FlagLT|fixed.FlagNE, fixed.CmpFixed(negA, a))
	assert.Equal(t, fixed.FlagGT|fixed.FlagNE, fixed.CmpFixed(a, negA))
}

func TestCmpIntSigned(t *testing.T) {
	assert.Equal(t, fixed.FlagLT|fixed.FlagNE, fixed.CmpInt(fixed.Word(0xFFFFFFFF), fixed.Word(1)))
	assert.Equal(t, fixed.FlagGT|fixed.FlagNE, fixed.CmpInt(fixed.Word(1), fixed.Word(0xFFFFFFFF)))
	assert.Equal(t, fixed.FlagEQ, fixed.CmpInt(fixed.Word(5), fixed.Word(5)))
}

func TestParseNumberDecimalInteger(t *testing.T) {
	v, isInt, err := fixed.ParseNumber("1234")
	require.NoError(t, err)
	assert.True(t, isInt)
	assert.Equal(t, 1234.0, v)
}

func TestParseNumberDecimalFraction(t *testing.T) {
	v, isInt, err := fixed.ParseNumber("12.34")
	require.NoError(t, err)
	assert.False(t, isInt)
	assert.InDelta(t, 12.34, v, 1e-9)
}

func TestParseNumberHexAndBinary(t *testing.T) {
	v, isInt, err := fixed.ParseNumber("0xFF")
	require.NoError(t, err)
	assert.True(t, isInt)
	assert.Equal(t, 255.0, v)

	v, isInt, err = fixed.ParseNumber("0b1010")
	require.NoError(t, err)
	assert.True(t, isInt)
	assert.Equal(t, 10.0, v)
}

func TestParseNumberNegative(t *testing.T) {
	v, isInt, err := fixed.ParseNumber("-0x10")
	require.NoError(t, err)
	assert.True(t, isInt)
	assert.Equal(t, -16.0, v)
}

func TestParseNumberRejectsDoubleDot(t *testing.T) {
	_, _, err := fixed.ParseNumber("1.2.3")
	assert.Error(t, err)
}

func TestParseNumberRejectsGarbage(t *testing.T) {
	_, _, err := fixed.ParseNumber("x")
	assert.Error(t, err)
}
