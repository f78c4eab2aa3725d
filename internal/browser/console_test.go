// internal/browser/console_test.go
package browser

import (
	"fmt"
	"testing"

	"github.com/chromedp/cdproto/log"
	"github.com/chromedp/cdproto/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFromConsoleAPI(t *testing.T) {
	e := &runtime.EventConsoleAPICalled{
		Type: runtime.APITypeError,
		Args: []*runtime.RemoteObject{
			{Type: runtime.TypeString, Value: []byte(`"failed to load"`)},
			{Type: runtime.TypeNumber, Value: []byte(`404`)},
			{Type: runtime.TypeObject, Description: "Error: boom"},
			{Type: runtime.TypeFunction},
		},
	}
	m, ok := fromConsoleAPI(e)
	require.True(t, ok)
	assert.Equal(t, ConsoleError, m.Level)
	assert.Equal(t, "failed to load 404 Error: boom [function]", m.Text)
	assert.Equal(t, "console-api", m.Source)
	assert.False(t, m.Time.IsZero())

	_, ok = fromConsoleAPI(&runtime.EventConsoleAPICalled{Type: runtime.APITypeLog})
	assert.False(t, ok, "plain logs are not kept")

	m, ok = fromConsoleAPI(&runtime.EventConsoleAPICalled{Type: runtime.APITypeWarning})
	require.True(t, ok)
	assert.Equal(t, ConsoleWarning, m.Level)
}

func TestFromLogEntry(t *testing.T) {
	m, ok := fromLogEntry(&log.EventEntryAdded{Entry: &log.Entry{
		Source: log.SourceNetwork,
		Level:  log.LevelError,
		Text:   "Failed to load resource: 404",
		URL:    "https://example.test/missing.js",
	}})
	require.True(t, ok)
	assert.Equal(t, ConsoleError, m.Level)
	assert.Equal(t, "Failed to load resource: 404 (https://example.test/missing.js)", m.Text)
	assert.Equal(t, "network", m.Source)

	_, ok = fromLogEntry(&log.EventEntryAdded{Entry: &log.Entry{Level: log.LevelVerbose}})
	assert.False(t, ok)
	_, ok = fromLogEntry(&log.EventEntryAdded{})
	assert.False(t, ok)
}

func TestFromException(t *testing.T) {
	m, ok := fromException(&runtime.EventExceptionThrown{ExceptionDetails: &runtime.ExceptionDetails{
		Text:      "Uncaught",
		Exception: &runtime.RemoteObject{Description: "TypeError: x is undefined\n    at main.js:1"},
	}})
	require.True(t, ok)
	assert.Equal(t, ConsoleError, m.Level)
	assert.Contains(t, m.Text, "TypeError: x is undefined")

	m, ok = fromException(&runtime.EventExceptionThrown{ExceptionDetails: &runtime.ExceptionDetails{Text: "Uncaught"}})
	require.True(t, ok)
	assert.Equal(t, "Uncaught", m.Text)

	_, ok = fromException(&runtime.EventExceptionThrown{})
	assert.False(t, ok)
}

func TestConsoleWatcherBoundsAndDrains(t *testing.T) {
	w := newConsoleWatcher(zap.NewNop())
	for i := 0; i < maxConsoleMessages+5; i++ {
		w.record(ConsoleMessage{Level: ConsoleError, Text: fmt.Sprint(i)}, true)
	}
	w.record(ConsoleMessage{Level: "info"}, true)
	w.record(ConsoleMessage{Level: ConsoleError}, false)

	got := w.drain()
	require.Len(t, got, maxConsoleMessages)
	assert.Equal(t, "0", got[0].Text)
	assert.Empty(t, w.drain())

	w.record(ConsoleMessage{Level: ConsoleWarning, Text: "again"}, true)
	assert.Len(t, w.drain(), 1)
}
