//go:build !windows

package fileutil

import "errors"

// moveToRecycleBin is only reachable on Windows
func moveToRecycleBin(path string) error {
	return errors.New("recycle bin is not available on this platform")
}
