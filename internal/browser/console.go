// internal/browser/console.go
package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/log"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	json "github.com/json-iterator/go"
	"go.uber.org/zap"
)

// maxConsoleMessages bounds what is kept between two drains.
const maxConsoleMessages = 100

// consoleWatcher collects console errors, warnings and uncaught exceptions
// from the primary window.
type consoleWatcher struct {
	logger *zap.Logger

	mu       sync.Mutex
	messages []ConsoleMessage
	dropped  int
}

func newConsoleWatcher(logger *zap.Logger) *consoleWatcher {
	return &consoleWatcher{logger: logger.Named("console")}
}

// start subscribes to the target behind tabCtx. The subscription ends with
// tabCtx. Runtime events are already enabled by chromedp; the log domain is not.
func (w *consoleWatcher) start(tabCtx context.Context) chromedp.Action {
	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		switch e := ev.(type) {
		case *runtime.EventConsoleAPICalled:
			w.record(fromConsoleAPI(e))
		case *log.EventEntryAdded:
			w.record(fromLogEntry(e))
		case *runtime.EventExceptionThrown:
			w.record(fromException(e))
		}
	})
	return log.Enable()
}

// record keeps errors and warnings. It runs on chromedp's event goroutine
// and must not block.
func (w *consoleWatcher) record(m ConsoleMessage, ok bool) {
	if !ok || (m.Level != ConsoleError && m.Level != ConsoleWarning) {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.messages) >= maxConsoleMessages {
		w.dropped++
		return
	}
	w.messages = append(w.messages, m)
}

func (w *consoleWatcher) drain() []ConsoleMessage {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.dropped > 0 {
		w.logger.Debug("Console messages dropped.", zap.Int("dropped", w.dropped))
		w.dropped = 0
	}
	out := w.messages
	w.messages = nil
	return out
}

func timestamp(ts *runtime.Timestamp) time.Time {
	if ts == nil {
		return time.Now()
	}
	return ts.Time()
}

func fromConsoleAPI(e *runtime.EventConsoleAPICalled) (ConsoleMessage, bool) {
	var level string
	switch e.Type {
	case runtime.APITypeError, runtime.APITypeAssert:
		level = ConsoleError
	case runtime.APITypeWarning:
		level = ConsoleWarning
	default:
		return ConsoleMessage{}, false
	}

	var text strings.Builder
	for i, arg := range e.Args {
		if i > 0 {
			text.WriteString(" ")
		}
		var val interface{}
		switch {
		case len(arg.Value) > 0 && json.Unmarshal(arg.Value, &val) == nil:
			fmt.Fprintf(&text, "%v", val)
		case arg.Description != "":
			text.WriteString(arg.Description)
		default:
			fmt.Fprintf(&text, "[%s]", arg.Type)
		}
	}
	return ConsoleMessage{Time: timestamp(e.Timestamp), Level: level, Text: text.String(), Source: "console-api"}, true
}

func fromLogEntry(e *log.EventEntryAdded) (ConsoleMessage, bool) {
	if e.Entry == nil {
		return ConsoleMessage{}, false
	}
	var level string
	switch e.Entry.Level {
	case log.LevelError:
		level = ConsoleError
	case log.LevelWarning:
		level = ConsoleWarning
	default:
		return ConsoleMessage{}, false
	}
	text := e.Entry.Text
	if e.Entry.URL != "" {
		text = fmt.Sprintf("%s (%s)", text, e.Entry.URL)
	}
	return ConsoleMessage{Time: timestamp(e.Entry.Timestamp), Level: level, Text: text, Source: string(e.Entry.Source)}, true
}

func fromException(e *runtime.EventExceptionThrown) (ConsoleMessage, bool) {
	if e.ExceptionDetails == nil {
		return ConsoleMessage{}, false
	}
	// The description carries the stack; the text alone is often just "Uncaught".
	text := e.ExceptionDetails.Text
	if ex := e.ExceptionDetails.Exception; ex != nil && ex.Description != "" {
		text = ex.Description
	}
	return ConsoleMessage{Time: timestamp(e.Timestamp), Level: ConsoleError, Text: text, Source: "exception"}, true
}
