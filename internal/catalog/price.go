package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// ParsePrice converts a decimal price string as reported by the commerce
// backend ("199.00", "49.5", "199") into minor currency units. Empty input is
// zero, not an error; unpriced products are common for drafts.
func ParsePrice(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	raw = strings.ReplaceAll(raw, ",", "")

	negative := false
	if strings.HasPrefix(raw, "-") {
		negative = true
		raw = raw[1:]
	}

	whole := raw
	frac := ""
	if at := strings.IndexByte(raw, '.'); at >= 0 {
		whole, frac = raw[:at], raw[at+1:]
	}
	if whole == "" {
		whole = "0"
	}
	switch {
	case len(frac) == 0:
		frac = "00"
	case len(frac) == 1:
		frac += "0"
	case len(frac) > 2:
		frac = frac[:2]
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("catalog: parse price %q: %w", raw, err)
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("catalog: parse price %q: %w", raw, err)
	}

	total := units*100 + cents
	if negative {
		total = -total
	}
	return total, nil
}
