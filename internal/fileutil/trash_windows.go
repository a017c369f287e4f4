//go:build windows

package fileutil

import (
	"fmt"
	"path/filepath"
	"syscall"
	"unsafe"
)

var (
	shell32          = syscall.NewLazyDLL("shell32.dll")
	shFileOperationW = shell32.NewProc("SHFileOperationW")
)

const (
	foDelete          = 3
	fofAllowUndo      = 0x40
	fofNoConfirmation = 0x10
	fofSilent         = 0x4
	fofNoErrorUI      = 0x400
)

// shFileOpStructW mirrors SHFILEOPSTRUCTW.
// https://learn.microsoft.com/en-us/windows/win32/api/shellapi/ns-shellapi-shfileopstructw
type shFileOpStructW struct {
	Hwnd                 uintptr
	Func                 uint32
	From                 *uint16
	To                   *uint16
	Flags                uint16
	AnyOperationsAborted int32
	NameMappings         uintptr
	ProgressTitle        *uint16
}

// moveToRecycleBin sends a single file to the Recycle Bin without any UI
func moveToRecycleBin(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	// pFrom is a list of paths and must end with two NULs.
	from, err := syscall.UTF16FromString(absPath)
	if err != nil {
		return fmt.Errorf("invalid path %s: %w", absPath, err)
	}
	from = append(from, 0)

	op := shFileOpStructW{
		Func:  foDelete,
		From:  &from[0],
		Flags: fofAllowUndo | fofNoConfirmation | fofSilent | fofNoErrorUI,
	}

	if ret, _, _ := shFileOperationW.Call(uintptr(unsafe.Pointer(&op))); ret != 0 {
		return fmt.Errorf("recycle bin refused %s: SHFileOperationW code %d", absPath, ret)
	}
	if op.AnyOperationsAborted != 0 {
		return fmt.Errorf("recycle bin aborted %s", absPath)
	}
	return nil
}
