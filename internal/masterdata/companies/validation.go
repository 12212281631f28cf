package companies

import (
	"errors"
	"strings"
	"unicode"
)

func (s *Service) validate(c Company) error {
	if strings.TrimSpace(c.LegalName) == "" {
		return errors.New("company legal name is required")
	}
	digits := digitsOnly(c.TaxID)
	if len(digits) != 14 {
		return errors.New("company tax id must carry 14 digits")
	}
	return nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
