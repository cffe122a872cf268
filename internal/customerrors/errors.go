// Package customerrors defines the error taxonomy shared by the services.
package customerrors

import (
	"errors"
	"fmt"
)

// Sentinel errors. Callers classify failures with errors.Is and decide
// whether to continue with the remaining symbols or batches.
var (
	// ErrFetch covers HTTP failures and timeouts against external providers.
	ErrFetch = errors.New("fetch error")
	// ErrParse covers missing columns, unexpected payloads and bad dates.
	ErrParse = errors.New("parse error")
	// ErrStorage covers database open, query and write failures.
	ErrStorage = errors.New("storage error")
	// ErrAuth covers broker session and TOTP failures.
	ErrAuth = errors.New("auth error")
)

// Fetchf wraps a fetch failure with context
func Fetchf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrFetch, fmt.Sprintf(format, args...))
}

// Parsef wraps a parse failure with context
func Parsef(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrParse, fmt.Sprintf(format, args...))
}

// Storagef wraps a storage failure with context
func Storagef(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrStorage, fmt.Sprintf(format, args...))
}

// Authf wraps an auth failure with context
func Authf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrAuth, fmt.Sprintf(format, args...))
}
