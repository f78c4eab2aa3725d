// internal/browser/driver.go
package browser

import (
	"context"
	"time"
)

// Driver is the surface of the browser the step runner consumes.
// Queries are XPath expressions evaluated against the live document.
type Driver interface {
	// FindElement returns the first match, or an *ElementNotFoundError when nothing matches.
	FindElement(ctx context.Context, query string) (Element, error)
	// FindElements returns every match. Zero matches is not an error.
	FindElements(ctx context.Context, query string) ([]Element, error)

	// ExecuteScript evaluates a JavaScript expression in the active window.
	// res may be nil when the result is not needed.
	ExecuteScript(ctx context.Context, script string, res any) error

	Navigate(ctx context.Context, url string) error
	Back(ctx context.Context) error

	// CurrentWindow returns the handle of the active window.
	CurrentWindow(ctx context.Context) (string, error)
	// Windows lists the handles of every open page window, in no particular order.
	Windows(ctx context.Context) ([]string, error)
	SwitchWindow(ctx context.Context, handle string) error
	// CloseWindow closes the active window. A SwitchWindow must follow before further use.
	CloseWindow(ctx context.Context) error

	// Screenshot captures the visible viewport of the active window as PNG.
	Screenshot(ctx context.Context) ([]byte, error)
}

// Element is a handle on a single node located by a Driver.
type Element interface {
	// Query is the locator that produced this element.
	Query() string
	Text(ctx context.Context) (string, error)
	Visible(ctx context.Context) (bool, error)
	Click(ctx context.Context) error
	Hover(ctx context.Context) error
	ScrollIntoView(ctx context.Context) error
}

// ConsoleMessage is an error or warning the page wrote to its console, or an
// uncaught exception.
type ConsoleMessage struct {
	Time   time.Time
	Level  string
	Text   string
	Source string
}

const (
	ConsoleError   = "error"
	ConsoleWarning = "warning"
)

// ConsoleReader is implemented by drivers that collect console output.
type ConsoleReader interface {
	// DrainConsole returns the messages collected since the previous call.
	DrainConsole() []ConsoleMessage
}
