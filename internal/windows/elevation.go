//go:build windows

package windows

import (
	sys "golang.org/x/sys/windows"
)

// IsElevated reports whether the current process token is elevated
func IsElevated() bool {
	return sys.GetCurrentProcessToken().IsElevated()
}
