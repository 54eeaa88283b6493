package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		str      string
		inBtc    bool
		expected uint64
	}{
		{"500", false, 500},
		{"1", true, 100000000},
		{"0.00000001", true, 1},
		{"0.5", true, 50000000},
		{"21000000", true, 2100000000000000},
	}
	for _, tt := range tests {
		amount, err := parseAmount(tt.str, tt.inBtc)
		require.NoError(t, err)
		require.Equal(t, tt.expected, amount)
	}
}

func TestFailingParseAmount(t *testing.T) {
	tests := []struct {
		str   string
		inBtc bool
	}{
		{"abc", false},
		{"0", false},
		{"-10", false},
		{"1.5", false},
		{"0.000000001", true},
		{"18446744073709551616", false},
	}
	for _, tt := range tests {
		_, err := parseAmount(tt.str, tt.inBtc)
		require.Error(t, err, tt.str)
	}
}

func TestFormatBtc(t *testing.T) {
	require.Equal(t, "0.00000500", formatBtc(500))
	require.Equal(t, "1.00000000", formatBtc(100000000))
	require.Equal(t, "184467440737.09551615", formatBtc(18446744073709551615))
}
