// Package normalize converts raw cell values from resolved frames into
// canonical operation records: locale-aware numeric parsing for results, an
// ordered pattern chain for timestamps, and per-frame record building with
// drop accounting.
//
// Every parse decision is made per cell. Exports from different robots mix
// "1.234,56" and "1,234.56" style numbers in the same upload, so no
// column-wide locale assumption is safe.
package normalize

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// currency prefixes seen in broker exports, checked after trimming.
var currencyTokens = []string{"R$", "US$", "$", "€", "£"}

// ParseResult converts one raw result cell into a canonical signed decimal.
//
// Separator detection: when both ',' and '.' occur, the rightmost one is the
// decimal separator and the other is stripped as a thousands separator. A
// lone ',' is the decimal separator only when it occurs once with at most two
// trailing digits, otherwise it is a thousands separator. A lone '.' is
// always the decimal separator.
func ParseResult(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty result value")
	}

	for _, tok := range currencyTokens {
		s = strings.ReplaceAll(s, tok, "")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" || s == "-" || s == "+" {
		return decimal.Zero, fmt.Errorf("no digits in result value %q", raw)
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			// European style: 1.234,56
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			// Anglo style: 1,234.56
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 && len(s)-lastComma-1 <= 2 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unparsable result value %q: %w", raw, err)
	}
	return d, nil
}
