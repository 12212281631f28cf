package accounts

import (
	"errors"
	"fmt"
	"strings"
)

func validateInput(input CreateInput) error {
	if strings.TrimSpace(input.Code) == "" {
		return errors.New("account code is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		return errors.New("description is required")
	}
	if input.BaseYear < 2000 {
		return fmt.Errorf("base year %d must be 2000 or later", input.BaseYear)
	}
	if input.ValidityStart != nil && input.ValidityEnd != nil &&
		input.ValidityEnd.Before(*input.ValidityStart) {
		return errors.New("validity end must not precede validity start")
	}
	return nil
}
