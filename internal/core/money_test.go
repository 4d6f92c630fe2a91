package core

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out float64
		ok  bool
	}{
		{"1", 1, true},
		{"1.0", 1, true},
		{"1.23", 1.23, true},
		{"1,23", 1.23, true},
		{"0.01", 0.01, true},
		{"1.005", 1.005, true}, // kept unrounded
		{" 2.50 ", 2.5, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{"1e400", 0, false},
		{"1e308", 1e308, true},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if !tc.ok {
			assert.ErrorIs(t, err, ErrInvalidAmount, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.out, got, tc.in)
	}
}

func TestRound2(t *testing.T) {
	cases := map[float64]float64{
		1.005:     1.01,
		2.675:     2.68,
		-1.005:    -1.01,
		0.1 + 0.2: 0.3,
		100:       100,
	}
	for in, want := range cases {
		assert.Equal(t, want, Round2(in), "Round2(%v)", in)
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1250.50", FormatAmount(1250.5))
	assert.Equal(t, "-3.00", FormatAmount(-3))
}

func TestNonFiniteAmountsCollapseToZero(t *testing.T) {
	for _, v := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		assert.Equal(t, 0.0, Round2(v), "Round2(%v)", v)
		assert.Equal(t, "0.00", FormatAmount(v), "FormatAmount(%v)", v)

		raw, err := json.Marshal(LenientAmount(v))
		require.NoError(t, err)
		assert.Equal(t, "0", string(raw))
	}
}

func TestLenientAmountNeverFails(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
	}{
		{`{"amount": 12.5}`, 12.5},
		{`{"amount": "12,5"}`, 12.5},
		{`{"amount": " 7 "}`, 7},
		{`{"amount": null}`, 0},
		{`{"amount": "n/a"}`, 0},
		{`{"amount": true}`, 0},
		{`{"amount": {"x": 1}}`, 0},
		{`{}`, 0},
		{`{"amount": 1e400}`, 0},
		{`{"amount": "-1e400"}`, 0},
	}
	for _, tc := range cases {
		var doc struct {
			Amount LenientAmount `json:"amount"`
		}
		require.NoError(t, json.Unmarshal([]byte(tc.raw), &doc), tc.raw)
		assert.Equal(t, tc.want, float64(doc.Amount), tc.raw)
	}
}
