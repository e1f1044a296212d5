package dwr

import (
	"errors"
	"fmt"

	"deedles.dev/dwr/gpu"
)

var (
	// ErrSurfaceClosed is returned by operations on a surface that has
	// been closed, either by the caller, by the compositor, or by the
	// connection dying. The surface will never become usable again, but
	// new surfaces may still be created if the client is alive.
	ErrSurfaceClosed = errors.New("surface closed")

	// ErrMissingGlobal is wrapped by a ConnectionError when the
	// compositor does not advertise a global that the client needs.
	ErrMissingGlobal = errors.New("required global not advertised")

	// ErrClientClosed is returned by operations on a closed client.
	ErrClientClosed = errors.New("client closed")
)

// ConnectionError is returned by NewClient when the compositor cannot
// be reached or lacks a required global. It is never retried.
type ConnectionError struct {
	Op     string
	Global string
	Err    error
}

func (err ConnectionError) Error() string {
	if err.Global != "" {
		return fmt.Sprintf("%v %v: %v", err.Op, err.Global, err.Err)
	}
	return fmt.Sprintf("%v: %v", err.Op, err.Err)
}

func (err ConnectionError) Unwrap() error {
	return err.Err
}

// ShaderCompileError is returned by NewClient when a shader program
// fails to compile.
type ShaderCompileError = gpu.ShaderCompileError
