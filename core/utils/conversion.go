package utils

import (
	"strconv"
	"strings"
)

// ParseFloat converts a vendor export cell to a float64.
// Vendor exports are inconsistent: quantities and costs arrive as "1,204.5",
// "$12.50", " 3 " or plain numbers. Unparseable cells yield 0.
func ParseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// ParseInt converts a vendor export cell to an int, with the same tolerance
// as ParseFloat. Fractional cells are truncated.
func ParseInt(s string) int {
	return int(ParseFloat(s))
}

// NormalizeName canonicalizes a free-text product name for matching:
// trimmed, lowercased, inner whitespace collapsed to single spaces.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
