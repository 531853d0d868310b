//go:build !windows && !unix

package privilege

import "errors"

// IsElevated cannot determine elevation on this platform.
func IsElevated() (bool, error) {
	return false, errors.New("elevation check not supported on this platform")
}
