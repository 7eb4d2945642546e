// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

package report

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tomtom215/quotebook/internal/models"
)

// ErrInvalidPrice marks a catalog price that is not a non-negative number.
var ErrInvalidPrice = errors.New("report: invalid price")

// ParsePrice extracts an amount from a catalog price such as "1,299.50 BYN",
// "12,50 BYN" or "$8". Everything except digits, '.', ',' and '-' is dropped. A
// single comma followed by exactly two digits, with no '.', is a decimal comma;
// any other comma is a thousands separator.
func ParsePrice(raw string) (float64, error) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' || r == '-' {
			return r
		}
		return -1
	}, raw)
	// "12.50 руб." leaves a trailing abbreviation dot.
	cleaned = strings.Trim(cleaned, ".,")

	if isDecimalComma(cleaned) {
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	} else {
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	if cleaned == "" {
		return 0, fmt.Errorf("%w: %q has no digits", ErrInvalidPrice, raw)
	}

	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidPrice, raw, err)
	}
	if amount < 0 {
		return 0, fmt.Errorf("%w: %q is negative", ErrInvalidPrice, raw)
	}
	return amount, nil
}

func isDecimalComma(s string) bool {
	if strings.Count(s, ",") != 1 || strings.Contains(s, ".") {
		return false
	}
	return len(s)-strings.IndexByte(s, ',') == 3
}

// NormalizePrice converts a catalog price into a models.Price, using the unknown
// marker when ParsePrice fails.
func NormalizePrice(raw string) (models.Price, error) {
	amount, err := ParsePrice(raw)
	if err != nil {
		return models.UnknownPrice, err
	}
	return models.Price{Amount: amount, Known: true}, nil
}
