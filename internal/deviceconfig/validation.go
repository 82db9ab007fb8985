package deviceconfig

import (
	"fmt"
	"strings"

	"github.com/favsoft/epdsetup/internal/credentials"
)

// ValidateCredentials applies the display's field rules locally and returns
// one error per invalid field, in the order the display reports them.
func ValidateCredentials(c Credentials) []error {
	var errs []error
	for _, f := range credentials.Fields {
		if err := credentials.Check(f, c.Get(f)); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// FormatValidationErrors formats a list of validation errors into a human-readable string
func FormatValidationErrors(errors []error) string {
	if len(errors) == 0 {
		return ""
	}

	if len(errors) == 1 {
		return errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(errors)))
	for i, err := range errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}
