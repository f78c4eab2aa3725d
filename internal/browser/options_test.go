// internal/browser/options_test.go
package browser

import (
	"testing"

	"github.com/chromedp/cdproto/dom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/sitecheck/internal/config"
)

func TestChromeFlags(t *testing.T) {
	cfg := config.NewDefaultConfig().Browser

	t.Run("headful maximized defaults", func(t *testing.T) {
		flags := chromeFlags(cfg, "darwin")

		assert.Equal(t, false, flags["headless"])
		assert.Equal(t, false, flags["enable-automation"], "automation switch must be removed")
		assert.Equal(t, "AutomationControlled", flags["disable-blink-features"])
		assert.Equal(t, "*", flags["remote-allow-origins"])
		assert.Equal(t, true, flags["start-maximized"])
		assert.Equal(t, false, flags["disable-gpu"])
		assert.NotContains(t, flags, "no-sandbox")
	})

	t.Run("headless on linux", func(t *testing.T) {
		c := cfg
		c.Headless = true
		c.Maximized = false
		flags := chromeFlags(c, "linux")

		assert.Equal(t, true, flags["headless"])
		assert.Equal(t, true, flags["disable-gpu"])
		assert.Equal(t, false, flags["start-maximized"])
		assert.Equal(t, true, flags["no-sandbox"])
		assert.Equal(t, true, flags["disable-dev-shm-usage"])
	})

	t.Run("extra args override and extend", func(t *testing.T) {
		c := cfg
		c.Args = []string{"--lang=en-US", "--mute-audio", "--", "remote-allow-origins=http://localhost"}
		flags := chromeFlags(c, "windows")

		assert.Equal(t, "en-US", flags["lang"])
		assert.Equal(t, true, flags["mute-audio"])
		assert.Equal(t, "http://localhost", flags["remote-allow-origins"])
		assert.NotContains(t, flags, "")
	})
}

func TestBuildAllocatorOptions(t *testing.T) {
	cfg := config.NewDefaultConfig().Browser
	base := buildAllocatorOptions(cfg, "linux")

	cfg.ExecPath = "/opt/chrome/chrome"
	cfg.UserAgent = "sitecheck"
	extended := buildAllocatorOptions(cfg, "linux")

	require.NotEmpty(t, base)
	assert.Len(t, extended, len(base)+2)
}

func TestBoxCenter(t *testing.T) {
	x, y, ok := boxCenter(&dom.BoxModel{Content: dom.Quad{10, 20, 110, 20, 110, 60, 10, 60}})
	require.True(t, ok)
	assert.InDelta(t, 60.0, x, 0.001)
	assert.InDelta(t, 40.0, y, 0.001)

	_, _, ok = boxCenter(&dom.BoxModel{Content: dom.Quad{1, 2}})
	assert.False(t, ok)
	_, _, ok = boxCenter(nil)
	assert.False(t, ok)
}
