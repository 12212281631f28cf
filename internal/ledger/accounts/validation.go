package accounts

import (
	"errors"
	"fmt"
	"strings"
)

const (
	minLevel = 1
	maxLevel = 5
)

func validateInput(input CreateInput) error {
	if strings.TrimSpace(input.Code) == "" {
		return errors.New("account code is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return errors.New("account name is required")
	}
	if input.FiscalYear < 2000 {
		return fmt.Errorf("fiscal year %d must be 2000 or later", input.FiscalYear)
	}
	if strings.TrimSpace(input.ReferenceCode) == "" {
		return errors.New("reference account code is required")
	}
	if strings.TrimSpace(input.Classification) == "" {
		return errors.New("classification is required")
	}
	if input.Level < minLevel || input.Level > maxLevel {
		return fmt.Errorf("level %d out of range [%d, %d]", input.Level, minLevel, maxLevel)
	}
	return nil
}
