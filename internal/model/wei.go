package model

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/params"
)

const etherDecimals = 18

// ParseEther converts a decimal string in whole ETH ("1", "0.05") to wei.
// Returns a ConversionError on empty, negative or otherwise malformed input.
func ParseEther(text string) (*big.Int, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil, &ConversionError{Input: text}
	}

	intPart := s
	fracPart := ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart, fracPart = s[:dot], s[dot+1:]
		if strings.IndexByte(fracPart, '.') >= 0 {
			return nil, &ConversionError{Input: text}
		}
	}
	if intPart == "" && fracPart == "" {
		return nil, &ConversionError{Input: text}
	}
	if intPart == "" {
		intPart = "0"
	}
	if len(fracPart) > etherDecimals {
		return nil, &ConversionError{Input: text}
	}
	if !isDigits(intPart) || (fracPart != "" && !isDigits(fracPart)) {
		return nil, &ConversionError{Input: text}
	}

	whole, ok := new(big.Int).SetString(intPart, 10)
	if !ok {
		return nil, &ConversionError{Input: text}
	}
	wei := whole.Mul(whole, big.NewInt(params.Ether))

	if fracPart != "" {
		frac, ok := new(big.Int).SetString(fracPart, 10)
		if !ok {
			return nil, &ConversionError{Input: text}
		}
		scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(etherDecimals-len(fracPart))), nil)
		wei.Add(wei, frac.Mul(frac, scale))
	}

	return wei, nil
}

// FormatEther renders wei as a trimmed decimal ETH string.
func FormatEther(wei *big.Int) string {
	if wei == nil || wei.Sign() == 0 {
		return "0"
	}

	whole, frac := new(big.Int).QuoRem(wei, big.NewInt(params.Ether), new(big.Int))
	if frac.Sign() == 0 {
		return whole.String()
	}

	digits := frac.String()
	digits = strings.Repeat("0", etherDecimals-len(digits)) + digits
	digits = strings.TrimRight(digits, "0")
	return whole.String() + "." + digits
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
