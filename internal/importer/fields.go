package importer

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DateFormat is the wire date format for every import kind.
const DateFormat = "2006-01-02"

var diacriticFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases s and strips diacritics, so "Não" and "nao" compare equal.
func Fold(s string) string {
	folded, _, err := transform.String(diacriticFolder, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// ParseBool accepts true/false, yes/no, sim/não and 1/0, case- and
// accent-insensitively.
func ParseBool(s string) (bool, error) {
	switch Fold(s) {
	case "true", "yes", "sim", "1":
		return true, nil
	case "false", "no", "nao", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}

// ParseDate parses a YYYY-MM-DD value.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected %s", s, DateFormat)
	}
	return t, nil
}

// ParseAmount parses a decimal amount using '.' as the separator.
func ParseAmount(s string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q", s)
	}
	return value, nil
}

// ParsePositiveAmount parses a decimal amount and requires it to be > 0.
func ParsePositiveAmount(s string) (decimal.Decimal, error) {
	value, err := ParseAmount(s)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if !value.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("amount %q must be greater than zero", s)
	}
	return value, nil
}

// ParseIntIn parses an integer and checks it falls within [min, max].
func ParseIntIn(s string, min, max int) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	if value < min || value > max {
		return 0, fmt.Errorf("number %d out of range [%d, %d]", value, min, max)
	}
	return value, nil
}
