//go:build windows

package panel

import (
	"syscall"
	"unsafe"
)

var (
	shell32           = syscall.NewLazyDLL("shell32.dll")
	procShellExecuteW = shell32.NewProc("ShellExecuteW")
)

// openPath opens a file with its associated application.
func openPath(path string) error {
	operationUTF16, _ := syscall.UTF16FromString("open")
	pathUTF16, _ := syscall.UTF16FromString(path)

	ret, _, err := procShellExecuteW.Call(
		0,
		uintptr(unsafe.Pointer(&operationUTF16[0])),
		uintptr(unsafe.Pointer(&pathUTF16[0])),
		0,
		0,
		1, // SW_SHOWNORMAL
	)

	// ShellExecute returns a value > 32 on success
	if ret <= 32 {
		if err != nil && err != syscall.Errno(0) {
			return err
		}
		return syscall.Errno(ret)
	}
	return nil
}
