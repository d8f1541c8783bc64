package model

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEther(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1", "1000000000000000000"},
		{"0.05", "50000000000000000"},
		{"2.5", "2500000000000000000"},
		{".5", "500000000000000000"},
		{"0", "0"},
		{" 1 ", "1000000000000000000"},
		{"0.000000000000000001", "1"},
	}

	for _, tt := range tests {
		got, err := ParseEther(tt.input)
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got.String(), "input %q", tt.input)
	}
}

func TestParseEtherRejectsMalformedInput(t *testing.T) {
	for _, input := range []string{"", " ", "x", "1.2.3", "-1", "1e18", "1,5", ".", "0.0000000000000000001"} {
		_, err := ParseEther(input)
		require.Error(t, err, "input %q", input)

		var convErr *ConversionError
		assert.ErrorAs(t, err, &convErr, "input %q", input)
	}
}

func TestFormatEther(t *testing.T) {
	one := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

	assert.Equal(t, "0", FormatEther(nil))
	assert.Equal(t, "0", FormatEther(big.NewInt(0)))
	assert.Equal(t, "1", FormatEther(one))
	assert.Equal(t, "0.5", FormatEther(new(big.Int).Div(one, big.NewInt(2))))
	assert.Equal(t, "0.000000000000000001", FormatEther(big.NewInt(1)))
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, text := range []string{"1", "0.05", "123.456"} {
		wei, err := ParseEther(text)
		require.NoError(t, err)
		assert.Equal(t, text, FormatEther(wei))
	}
}
