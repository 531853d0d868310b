// Package privilege implements the elevation precondition checked before any
// setting is changed.
package privilege

import (
	"errors"
	"fmt"
)

// ErrNotElevated is returned when the process lacks administrative rights.
var ErrNotElevated = errors.New("administrator privileges are required; re-run from an elevated shell")

// Checker reports whether the current process is elevated.
type Checker func() (bool, error)

// Default checks the real process token.
var Default Checker = IsElevated

// Require returns nil when check reports elevation and ErrNotElevated
// otherwise. A failing check is treated as not elevated.
func Require(check Checker) error {
	if check == nil {
		check = Default
	}
	ok, err := check()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotElevated, err)
	}
	if !ok {
		return ErrNotElevated
	}
	return nil
}
