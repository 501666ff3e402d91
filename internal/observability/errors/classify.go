// Package errors normalizes error values into metric-safe class names.
package errors

import (
	goerrors "errors"
	"reflect"
	"strings"

	apperrors "github.com/jatassi/slipstream-go/internal/errors"
)

// Classify returns a normalized error type name suitable for tagging
// metrics/logs. Structured API errors classify by their code (network,
// decode, server); anything else falls back to the innermost concrete type.
func Classify(err error) string {
	if err == nil {
		return ""
	}

	if code := apperrors.GetCode(err); code != "" {
		return string(code)
	}

	// Unwrap to the innermost error for better signal.
	for {
		unwrapped := goerrors.Unwrap(err)
		if unwrapped == nil {
			break
		}
		err = unwrapped
	}

	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}

	name := strings.ToLower(strings.ReplaceAll(t.String(), "*", ""))
	name = strings.ReplaceAll(name, ".", "_")
	if name == "" {
		return "unknown"
	}
	return name
}
