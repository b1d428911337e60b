package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// LooseNumber accepts a JSON number, a numeric string (with optional grouping
// separators), null, or anything else. Valid reports whether a finite number
// was recognised; decoding never fails.
type LooseNumber struct {
	Value float64
	Valid bool
}

func (n *LooseNumber) UnmarshalJSON(data []byte) error {
	*n = LooseNumber{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil
		}
	} else {
		raw = string(data)
	}

	if value, ok := ParseLooseNumber(raw); ok {
		n.Value, n.Valid = value, true
	}
	return nil
}

func (n LooseNumber) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// ParseLooseNumber strips whitespace, underscores and thousands separators
// ("15,000,000", "15.000.000" is not supported) before parsing.
func ParseLooseNumber(raw string) (float64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', ',', '_', ' ':
			return -1
		}
		return r
	}, raw)
	if cleaned == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}

// IntOr truncates a valid positive number, otherwise returns fallback.
func (n LooseNumber) IntOr(fallback int) int {
	if !n.Valid || n.Value < 1 || n.Value > math.MaxInt32 {
		return fallback
	}
	return int(n.Value)
}

// NonNegativeOr returns the value when valid and >= 0, otherwise fallback.
func (n LooseNumber) NonNegativeOr(fallback float64) float64 {
	if !n.Valid || n.Value < 0 {
		return fallback
	}
	return n.Value
}
