package domain

import (
	"fmt"
	"strings"

	apperrors "github.com/plumehq/plume/internal/platform/errors"
)

// errorLocale selects the catalog for user-facing tool error messages.
// The MCP server serves one operator per process; SetLocale is called once
// at startup, before any tool runs.
var errorLocale = apperrors.DefaultLocale

// SetLocale selects the locale used for tool error messages.
func SetLocale(locale string) {
	if strings.TrimSpace(locale) != "" {
		errorLocale = locale
	}
}

// toolError formats a handler failure for the MCP client. Coded governance
// errors render their localized catalog message alongside the code; other
// errors pass through on the chain.
func toolError(action string, err error) error {
	if code := apperrors.GetCode(err); code != apperrors.CodeUnknown {
		return fmt.Errorf("%s failed: %s [%s]", action, apperrors.UserMessage(err, errorLocale), code)
	}
	return fmt.Errorf("%s failed: %w", action, err)
}
