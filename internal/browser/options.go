// internal/browser/options.go
package browser

import (
	"runtime"
	"sort"
	"strings"

	"github.com/chromedp/chromedp"

	"github.com/xkilldash9x/sitecheck/internal/config"
)

// chromeFlags returns the switches layered on top of chromedp's defaults.
// A false value removes a switch that the defaults would otherwise pass.
func chromeFlags(cfg config.BrowserConfig, goos string) map[string]interface{} {
	flags := map[string]interface{}{
		"headless": cfg.Headless,
		// Hides the automation infobar and navigator.webdriver.
		"enable-automation":         false,
		"disable-blink-features":    "AutomationControlled",
		"remote-allow-origins":      "*",
		"ignore-certificate-errors": cfg.IgnoreTLSErrors,
		"disable-extensions":        true,
		"start-maximized":           cfg.Maximized,
		"disable-gpu":               cfg.Headless,
	}

	for _, arg := range cfg.Args {
		parts := strings.SplitN(arg, "=", 2)
		name := strings.TrimLeft(parts[0], "-")
		if name == "" {
			continue
		}
		if len(parts) == 2 {
			flags[name] = parts[1]
		} else {
			flags[name] = true
		}
	}

	// Needed when running inside containers.
	if goos == "linux" {
		flags["no-sandbox"] = true
		flags["disable-dev-shm-usage"] = true
		flags["disable-setuid-sandbox"] = true
	}
	return flags
}

// buildAllocatorOptions assembles the exec allocator options for a suite run.
func buildAllocatorOptions(cfg config.BrowserConfig, goos string) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)

	flags := chromeFlags(cfg, goos)
	names := make([]string, 0, len(flags))
	for name := range flags {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		opts = append(opts, chromedp.Flag(name, flags[name]))
	}

	opts = append(opts, chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight))
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	return opts
}

func defaultAllocatorOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	return buildAllocatorOptions(cfg, runtime.GOOS)
}
