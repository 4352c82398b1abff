package domain

import (
	"errors"
	"fmt"
)

// ErrNoOptions is returned when a select question resolves to an empty option list.
var ErrNoOptions = errors.New("select question has no options")

// ErrTooManyAttempts is returned when a question keeps failing validation past the configured limit.
var ErrTooManyAttempts = errors.New("too many invalid answers")

// ErrUnknownFunction is returned by remote callers asked for a function they do not serve.
var ErrUnknownFunction = errors.New("function not found")

// ErrConcurrentTask is returned by lockers that refuse to wait for a running task.
var ErrConcurrentTask = errors.New("another task is still running")

// StructuralError reports a tree that violates one of the construction invariants.
// A tree that produced a StructuralError must not be traversed.
type StructuralError struct {
	Node   string
	Reason string
}

func (e *StructuralError) Error() string {
	if e.Node == "" {
		return fmt.Sprintf("invalid question tree: %s", e.Reason)
	}
	return fmt.Sprintf("invalid question tree at %q: %s", e.Node, e.Reason)
}

// RemoteCallError wraps a failure of the remote-procedure collaborator.
// It always aborts the traversal.
type RemoteCallError struct {
	Namespace string
	Method    string
	Err       error
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("remote call %s.%s failed: %v", e.Namespace, e.Method, e.Err)
}

func (e *RemoteCallError) Unwrap() error { return e.Err }

// LocalCallError wraps a failure of a caller-supplied local validator.
type LocalCallError struct {
	Validator string
	Err       error
}

func (e *LocalCallError) Error() string {
	return fmt.Sprintf("local validator %q failed: %v", e.Validator, e.Err)
}

func (e *LocalCallError) Unwrap() error { return e.Err }

// UnsupportedTypeError reports a node whose type tag matches no known variant.
type UnsupportedTypeError struct {
	Node string
	Type string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("node %q has unsupported type %q", e.Node, e.Type)
}
