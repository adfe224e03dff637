//go:build !linux

package serialio

import "fmt"

func openTermios(path string, baud int) (Port, error) {
	return nil, fmt.Errorf("serialio: termios backend not supported on this platform (use %q)", BackendBugst)
}
