package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// bindingErrorMessage turns a gin binding error into a client-facing message.
// Validation failures report the offending field and rule instead of the raw
// struct-level error text.
func bindingErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		parts := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			parts = append(parts, fmt.Sprintf("%s failed on the '%s' rule", fe.Field(), fe.Tag()))
		}
		return "Invalid query parameters: " + strings.Join(parts, "; ")
	}
	return "Invalid query parameters: " + err.Error()
}
