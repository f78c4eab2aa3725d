// internal/browser/errors.go
package browser

import (
	"errors"
	"fmt"
)

// ErrScreenshotUnsupported is returned by drivers that cannot render pixels.
var ErrScreenshotUnsupported = errors.New("browser: screenshots are not supported by this driver")

// LaunchError reports that the browser could not be started or could not
// reach the start URL. It is fatal for a suite run.
type LaunchError struct {
	Stage string
	Err   error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("browser launch failed during %s: %v", e.Stage, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// ElementNotFoundError reports that a locator matched nothing.
type ElementNotFoundError struct {
	Query string
	Err   error
}

func (e *ElementNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("no element matches %q: %v", e.Query, e.Err)
	}
	return fmt.Sprintf("no element matches %q", e.Query)
}

func (e *ElementNotFoundError) Unwrap() error { return e.Err }

// InteractionError reports a click, hover or scroll that the browser rejected,
// typically because the node went stale or is not interactable.
type InteractionError struct {
	Action string
	Query  string
	Err    error
}

func (e *InteractionError) Error() string {
	return fmt.Sprintf("%s on %q failed: %v", e.Action, e.Query, e.Err)
}

func (e *InteractionError) Unwrap() error { return e.Err }

// IsNotFound reports whether err, or anything it wraps, is an *ElementNotFoundError.
func IsNotFound(err error) bool {
	var nf *ElementNotFoundError
	return errors.As(err, &nf)
}
