package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantityString(t *testing.T) {
	tests := []struct {
		name string
		q    Quantity
		want string
	}{
		{"zero", 0, "0.0000"},
		{"whole", NewQuantityFromFloat64(5), "5.0000"},
		{"fractional", NewQuantityFromFloat64(2.5), "2.5000"},
		{"four digits", NewQuantityFromInt64Scaled(12345), "1.2345"},
		{"negative", NewQuantityFromFloat64(-3.25), "-3.2500"},
		{"small negative", NewQuantityFromInt64Scaled(-1), "-0.0001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.q.String())
		})
	}
}

func TestQuantityUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Quantity
		wantErr bool
	}{
		{"number", `4`, NewQuantityFromFloat64(4), false},
		{"decimal number", `2.5`, NewQuantityFromFloat64(2.5), false},
		{"string", `"10.25"`, NewQuantityFromFloat64(10.25), false},
		{"negative", `-7.5`, NewQuantityFromFloat64(-7.5), false},
		{"null", `null`, 0, false},
		{"excess precision truncated", `1.23456789`, NewQuantityFromInt64Scaled(12345), false},
		{"garbage", `"abc"`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var q Quantity
			err := json.Unmarshal([]byte(tt.input), &q)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, q)
		})
	}
}

func TestQuantityMarshalRoundTrip(t *testing.T) {
	q := NewQuantityFromFloat64(12.75)

	data, err := json.Marshal(q)
	require.NoError(t, err)
	assert.Equal(t, "12.7500", string(data))

	var back Quantity
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, q, back)
}

func TestQuantityDecimal(t *testing.T) {
	q := NewQuantityFromFloat64(2.5)
	assert.Equal(t, "2.5", q.Decimal().String())

	neg := NewQuantityFromFloat64(-0.0001)
	assert.Equal(t, "-0.0001", neg.Decimal().String())
}

func TestQuantityArithmeticHelpers(t *testing.T) {
	q := NewQuantityFromFloat64(3)

	assert.True(t, q.IsPositive())
	assert.False(t, q.IsNegative())
	assert.True(t, q.Neg().IsNegative())
	assert.Equal(t, q, q.Neg().Abs())
	assert.True(t, Quantity(0).IsZero())
}

func TestMoneyFromString(t *testing.T) {
	m, err := NewMoneyFromString("19.99")
	require.NoError(t, err)
	assert.Equal(t, "19.99", m.String())

	_, err = NewMoneyFromString("not-a-number")
	require.Error(t, err)
}
