// internal/runner/errors.go
package runner

import "fmt"

// AssertionError reports an expectation a step checked explicitly and found violated.
type AssertionError struct {
	Message string
}

func (e *AssertionError) Error() string { return "assertion failed: " + e.Message }

// ArtifactCaptureError reports that a failure screenshot could not be taken or saved.
// It is logged and never fails a step on its own.
type ArtifactCaptureError struct {
	Step string
	Err  error
}

func (e *ArtifactCaptureError) Error() string {
	return fmt.Sprintf("capturing artifact for %s: %v", e.Step, e.Err)
}

func (e *ArtifactCaptureError) Unwrap() error { return e.Err }

// PanicError carries a panic recovered from a step body.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string { return fmt.Sprintf("step panicked: %v", e.Value) }
