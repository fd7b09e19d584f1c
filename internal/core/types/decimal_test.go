package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantity_Parse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Quantity
	}{
		{"whole number", `3`, 30_000},
		{"fractional", `2.5`, 25_000},
		{"four digits", `0.0001`, 1},
		{"extra digits truncated", `1.99999`, 19_999},
		{"negative", `-4.25`, -42_500},
		{"string form", `"12.75"`, 127_500},
		{"leading dot string", `".5"`, 5_000},
		{"null", `null`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var q Quantity
			require.NoError(t, json.Unmarshal([]byte(tt.in), &q))
			assert.Equal(t, tt.want, q)
		})
	}

	t.Run("garbage rejected", func(t *testing.T) {
		var q Quantity
		assert.Error(t, json.Unmarshal([]byte(`"three"`), &q))
	})
}

func TestParseQuantityString(t *testing.T) {
	q, err := parseQuantityString(".5")
	require.NoError(t, err)
	assert.Equal(t, Quantity(5_000), q)

	q, err = parseQuantityString("+2.25")
	require.NoError(t, err)
	assert.Equal(t, Quantity(22_500), q)

	// Exponent forms are rejected, not rounded through a float.
	for _, in := range []string{"1e3", "2.5E-1", "1E4"} {
		if _, err := parseQuantityString(in); err == nil {
			t.Errorf("parseQuantityString(%q): expected error", in)
		}
	}
}

func TestQuantity_MarshalAsNumber(t *testing.T) {
	data, err := json.Marshal(Quantity(25_000))
	require.NoError(t, err)
	assert.Equal(t, "2.5000", string(data))

	data, err = json.Marshal(Quantity(-1))
	require.NoError(t, err)
	assert.Equal(t, "-0.0001", string(data))
}

func TestQuantity_String(t *testing.T) {
	assert.Equal(t, "3.0000", Quantity(30_000).String())
	assert.Equal(t, "0.2500", Quantity(2_500).String())
	assert.Equal(t, "-1.5000", Quantity(-15_000).String())
}

func TestQuantity_Arithmetic(t *testing.T) {
	a := NewQuantityFromFloat64(2.5)
	b := NewQuantityFromFloat64(1.25)

	assert.Equal(t, NewQuantityFromFloat64(3.75), a.Add(b))
	assert.Equal(t, NewQuantityFromFloat64(1.25), a.Sub(b))
	assert.Equal(t, NewQuantityFromFloat64(-2.5), a.Neg())
	assert.Equal(t, NewQuantityFromFloat64(2.5), a.Neg().Abs())
	assert.True(t, a.IsPositive())
	assert.True(t, a.Neg().IsNegative())
	assert.True(t, Quantity(0).IsZero())
}

func TestQuantity_Div(t *testing.T) {
	// 10 meters of fabric at 3 meters per unit yields 3 whole units.
	total := NewQuantityFromFloat64(10)
	perUnit := NewQuantityFromFloat64(3)
	assert.Equal(t, int64(3), total.Div(perUnit))

	assert.Equal(t, int64(0), total.Div(0))
}

func TestQuantity_Float64Roundtrip(t *testing.T) {
	q := NewQuantityFromFloat64(12.3456)
	assert.InDelta(t, 12.3456, q.Float64(), 1e-9)
}

func TestClampMoney(t *testing.T) {
	low := MustMoney("0")
	high := MustMoney("100")

	assert.True(t, ClampMoney(MustMoney("50"), low, high).Equal(MustMoney("50")))
	assert.True(t, ClampMoney(MustMoney("-10"), low, high).Equal(low))
	assert.True(t, ClampMoney(MustMoney("250"), low, high).Equal(high))
}
