package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundLedger(t *testing.T) {
	assert.True(t, RoundLedger(MustMoney("16.6666")).Equal(MustMoney("16.67")))
	assert.True(t, RoundLedger(MustMoney("0.005")).Equal(MustMoney("0.01")))
	assert.True(t, RoundLedger(MustMoney("-0.005")).Equal(MustMoney("-0.01")))
}

func TestQuantity_Parse(t *testing.T) {
	tests := []struct {
		input string
		want  Quantity
	}{
		{`5`, 50_000},
		{`2.5`, 25_000},
		{`"2.5"`, 25_000},
		{`-1.25`, -12_500},
		{`0.00015`, 1}, // extra digits truncate, not round
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var q Quantity
			require.NoError(t, json.Unmarshal([]byte(tt.input), &q))
			assert.Equal(t, tt.want, q)
		})
	}
}

func TestQuantity_MarshalAsNumber(t *testing.T) {
	data, err := json.Marshal(NewQuantityFromFloat64(2.5))
	require.NoError(t, err)
	assert.Equal(t, "2.5000", string(data))
}

func TestQuantity_Decimal(t *testing.T) {
	q := NewQuantityFromFloat64(2)
	assert.True(t, MustMoney("25").Div(q.Decimal()).Equal(MustMoney("12.5")))
}
