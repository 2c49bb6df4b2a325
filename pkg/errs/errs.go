// Package errs defines the error taxonomy shared by all heightforge packages.
//
// Callers classify failures with errors.Is against the sentinels below;
// packages wrap them with context via fmt.Errorf("...: %w", ...).
package errs

import "errors"

var (
	// ErrInvalidArgument reports bad caller input: unsupported element
	// types, negative dimensions, non-power-of-two tile sizes and the like.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidState reports an operation called out of sequence, such as
	// rendering after cleanup or registering a second index buffer.
	ErrInvalidState = errors.New("invalid state")

	// ErrOutOfMemory reports a host or device allocation failure. It is
	// reported, never retried.
	ErrOutOfMemory = errors.New("out of memory")

	// ErrExternalToolUnavailable reports a missing external binary such as
	// glslc or spirv-val.
	ErrExternalToolUnavailable = errors.New("external tool unavailable")

	// ErrDataIntegrity reports malformed data: a bad SPIR-V magic number,
	// an index count not divisible by three, a truncated blob.
	ErrDataIntegrity = errors.New("data integrity error")
)
