package grading

import (
	"math/big"
	"regexp"
	"strings"
)

// CheckAnswer compares a learner's answer with the answer key.
//
// Normalization rules:
//   - Whitespace is trimmed and inner runs collapse to one space
//   - Comparison is case-insensitive
//   - Numbers compare by value: "007" matches "7", "3.50" matches "3.5",
//     "2/4" matches "1/2" and "0.5"; a decimal comma is accepted and
//     "1,000" reads as a thousands separator
//   - A key may list alternatives separated by ";"
func CheckAnswer(answer, key string) bool {
	a := normalizeAnswer(answer)
	if a == "" {
		return false
	}
	for _, alt := range strings.Split(key, ";") {
		if k := normalizeAnswer(alt); k != "" && k == a {
			return true
		}
	}
	return false
}

// normalizeAnswer returns a canonical form: a reduced fraction for numeric
// answers, folded text otherwise.
func normalizeAnswer(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}
	if r, ok := parseNumber(s); ok {
		return r.RatString()
	}
	return strings.ToLower(s)
}

var (
	decimalPattern   = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)
	thousandsPattern = regexp.MustCompile(`^[+-]?[1-9]\d{0,2}(,\d{3})+(\.\d+)?$`)
)

// parseNumber reads a plain decimal or a fraction of decimals. Digits are
// always base 10 and leading zeros are ignored.
func parseNumber(s string) (*big.Rat, bool) {
	s = strings.ReplaceAll(s, " ", "")
	num, den, isFraction := strings.Cut(s, "/")
	n, ok := parseDecimal(num)
	if !ok {
		return nil, false
	}
	if !isFraction {
		return n, true
	}
	if strings.HasPrefix(den, "+") || strings.HasPrefix(den, "-") {
		return nil, false
	}
	d, ok := parseDecimal(den)
	if !ok || d.Sign() == 0 {
		return nil, false
	}
	return n.Quo(n, d), true
}

func parseDecimal(s string) (*big.Rat, bool) {
	switch {
	case thousandsPattern.MatchString(s):
		s = strings.ReplaceAll(s, ",", "")
	case strings.Count(s, ",") == 1 && !strings.Contains(s, "."):
		s = strings.Replace(s, ",", ".", 1)
	}
	if !decimalPattern.MatchString(s) {
		return nil, false
	}
	return new(big.Rat).SetString(s)
}
