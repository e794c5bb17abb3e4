//go:build !linux && !darwin

package logger

// isTerminal is a stub for platforms without termios; color stays off.
func isTerminal(uintptr) bool {
	return false
}
