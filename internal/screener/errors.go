package screener

import (
	"errors"
	"fmt"
)

// ErrDataUnavailable marks a provider that returned no data or could not be
// reached. The affected screen continues with an empty input.
var ErrDataUnavailable = errors.New("data unavailable")

// ConfigurationError reports a malformed or inconsistent screen configuration.
// Only the screen it belongs to is aborted.
type ConfigurationError struct {
	Screen string
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s screen: %s", e.Screen, e.Reason)
	}
	return fmt.Sprintf("%s screen: %s: %s", e.Screen, e.Field, e.Reason)
}

// InputError reports a malformed input row handed to a screen.
type InputError struct {
	Row    int
	Symbol string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("row %d (%q): %s", e.Row, e.Symbol, e.Reason)
}
