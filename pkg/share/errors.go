package share

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by the share package. Callers match them with
// errors.Is; every error returned from this package wraps one of these or an
// underlying syscall error.
var (
	// ErrNotFound indicates a target path or share root does not exist.
	ErrNotFound = errors.New("file or directory not found")

	// ErrNotRegularFile indicates an operation that requires a regular file
	// was pointed at something else.
	ErrNotRegularFile = errors.New("not a regular file")

	// ErrNotWithinRoot indicates an absolute path does not lie beneath the
	// root it was resolved against.
	ErrNotWithinRoot = errors.New("path not within root")

	// ErrNotWithinShare indicates a target path does not resolve under any
	// configured share.
	ErrNotWithinShare = errors.New("path not within any configured share")
)

// UnexpectedNodeTypeError reports a path entry that is neither a regular
// file nor a directory (device node, socket, fifo). There is no safe
// corrective action for these, so reconciliation aborts.
type UnexpectedNodeTypeError struct {
	Path string
}

func (e *UnexpectedNodeTypeError) Error() string {
	return fmt.Sprintf("unexpected node type (neither file nor directory): %s", e.Path)
}
