package web

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// decodeValid decodes the JSON body into v and checks it against v's
// validate tags. On failure it writes the error response and returns false.
func decodeValid(w http.ResponseWriter, r *http.Request, v any) bool {
	if !decodeJSON(w, r, v) {
		return false
	}
	if err := validate.Struct(v); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			writeError(w, r, validationMessage(fieldErrs), "BAD_REQUEST", http.StatusBadRequest)
		} else {
			writeError(w, r, "invalid request body", "BAD_REQUEST", http.StatusBadRequest)
		}
		return false
	}
	return true
}

// validationMessage flattens field errors into a "Field: rule" list so the
// client can tell which inputs were rejected.
func validationMessage(fieldErrs validator.ValidationErrors) string {
	byField := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		if _, seen := byField[fe.Field()]; !seen {
			byField[fe.Field()] = fe.Tag()
		}
	}
	parts := make([]string, 0, len(byField))
	for field, tag := range byField {
		parts = append(parts, field+": "+tag)
	}
	sort.Strings(parts)
	return "validation failed: " + strings.Join(parts, ", ")
}
