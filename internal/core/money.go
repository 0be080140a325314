// Package core provides amount parsing and Rupiah formatting.
//
// Amounts are whole Rupiah stored as int64. User input arrives in Indonesian
// notation ("1.500.000") and is normalised here; formatting with locale grouping
// happens only at the presentation boundary.
package core

import (
	"math"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	printerOnce sync.Once
	idPrinter   *message.Printer
)

func printer() *message.Printer {
	printerOnce.Do(func() {
		idPrinter = message.NewPrinter(language.Indonesian)
	})
	return idPrinter
}

// ParseAmount converts an Indonesian-formatted amount to whole Rupiah.
//
// "." is the thousands separator and is stripped. A leading "Rp" and spaces are
// tolerated. A ",00"-style fraction is accepted only when it is all zeros, since
// amounts are stored without minor units. Negative values are rejected.
//
// Examples:
//
//	ParseAmount("1.500.000")    -> 1500000, nil
//	ParseAmount("Rp 2.000,00")  -> 2000, nil
//	ParseAmount("12,5")         -> 0, ErrInvalidAmount
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "Rp"), "rp")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ".", "")
	if whole, frac, ok := strings.Cut(s, ","); ok {
		if frac == "" || strings.Trim(frac, "0") != "" {
			return 0, ErrInvalidAmount
		}
		s = whole
	}
	if s == "" {
		return 0, ErrInvalidAmount
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// ParseQuantity parses a non-negative integer count such as kebutuhan or tersedia.
func ParseQuantity(s string) (int64, error) {
	v, err := ParseAmount(s)
	if err != nil {
		return 0, ErrInvalidQty
	}
	return v, nil
}

// ParseScore parses a monitoring score. Both "7.5" and "7,5" are accepted.
func ParseScore(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0, ErrInvalidScore
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, ErrInvalidScore
	}
	return v, nil
}

// GroupDigits formats n with Indonesian digit grouping ("1.500.000").
func GroupDigits(n int64) string {
	return printer().Sprintf("%d", n)
}

// FormatRupiah renders n the way the dashboard shows currency: "Rp 1.500.000".
func FormatRupiah(n int64) string {
	return "Rp " + GroupDigits(n)
}

// FormatScore renders a score without trailing zeros.
func FormatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
