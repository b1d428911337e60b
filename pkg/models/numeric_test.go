package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLooseNumberDecoding(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantValue float64
	}{
		{"number", `2`, true, 2},
		{"float", `15000000.5`, true, 15000000.5},
		{"numeric string", `"3"`, true, 3},
		{"grouped string", `"15,000,000"`, true, 15000000},
		{"padded string", `" 42 "`, true, 42},
		{"null", `null`, false, 0},
		{"garbage string", `"abc"`, false, 0},
		{"empty string", `""`, false, 0},
		{"object", `{"x":1}`, false, 0},
		{"bool", `true`, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n LooseNumber
			require.NoError(t, json.Unmarshal([]byte(tt.input), &n))
			assert.Equal(t, tt.wantValid, n.Valid)
			assert.Equal(t, tt.wantValue, n.Value)
		})
	}
}

func TestLooseNumberFallbacks(t *testing.T) {
	assert.Equal(t, 5, LooseNumber{}.IntOr(5))
	assert.Equal(t, 1, LooseNumber{Value: -3, Valid: true}.IntOr(1))
	assert.Equal(t, 1, LooseNumber{Value: 0.4, Valid: true}.IntOr(1))
	assert.Equal(t, 2, LooseNumber{Value: 2.9, Valid: true}.IntOr(1))
	assert.Equal(t, 0.0, LooseNumber{Value: -1, Valid: true}.NonNegativeOr(0))
	assert.Equal(t, 10.5, LooseNumber{Value: 10.5, Valid: true}.NonNegativeOr(0))
}

func TestLooseNumberInsideStruct(t *testing.T) {
	var payload struct {
		Quantity LooseNumber `json:"quantity"`
		Price    LooseNumber `json:"price"`
	}
	err := json.Unmarshal([]byte(`{"quantity":"two","price":"15,000,000"}`), &payload)

	require.NoError(t, err)
	assert.False(t, payload.Quantity.Valid)
	assert.Equal(t, 15000000.0, payload.Price.Value)
}
