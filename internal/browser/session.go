// internal/browser/session.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/sitecheck/internal/config"
)

// Session owns the one Chromium instance used for a suite run.
// It is not safe for concurrent use; steps drive it one at a time.
type Session struct {
	cfg    config.BrowserConfig
	logger *zap.Logger

	allocCtx    context.Context
	allocCancel context.CancelFunc

	// rootCtx is the first tab. Cancelling it closes the browser.
	rootCtx    context.Context
	rootCancel context.CancelFunc
	rootID     target.ID

	activeCtx context.Context
	activeID  target.ID
	// attached holds contexts for windows the page opened after launch.
	attached map[target.ID]context.Context

	console *consoleWatcher

	stopped bool
}

var (
	_ Driver        = (*Session)(nil)
	_ ConsoleReader = (*Session)(nil)
)

// Start launches Chromium, waits for it to respond and loads cfg.StartURL.
// Every failure is reported as a *LaunchError and leaves nothing running.
func Start(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (*Session, error) {
	s := &Session{
		cfg:      cfg,
		logger:   logger.Named("browser"),
		attached: make(map[target.ID]context.Context),
	}

	// The browser lives until Stop, not until the caller's context ends.
	s.allocCtx, s.allocCancel = chromedp.NewExecAllocator(context.WithoutCancel(ctx), defaultAllocatorOptions(cfg)...)
	sugar := s.logger.Sugar()
	s.rootCtx, s.rootCancel = chromedp.NewContext(s.allocCtx,
		chromedp.WithLogf(sugar.Debugf),
		chromedp.WithErrorf(sugar.Debugf),
	)

	s.logger.Info("Launching browser.",
		zap.Bool("headless", cfg.Headless),
		zap.Bool("maximized", cfg.Maximized),
		zap.Duration("launch_timeout", cfg.LaunchTimeout),
	)

	// The first Run allocates the browser, so it must not carry a deadline of its own.
	// The timer and the caller's context bound it from outside instead.
	timer := time.AfterFunc(cfg.LaunchTimeout, s.allocCancel)
	stopWatch := context.AfterFunc(ctx, s.allocCancel)
	err := chromedp.Run(s.rootCtx)
	timedOut := !timer.Stop()
	stopWatch()
	if err != nil {
		if timedOut {
			err = fmt.Errorf("no response within %s: %w", cfg.LaunchTimeout, err)
		}
		s.Stop(context.Background())
		return nil, &LaunchError{Stage: "launch", Err: err}
	}

	s.rootID = chromedp.FromContext(s.rootCtx).Target.TargetID
	s.activeCtx, s.activeID = s.rootCtx, s.rootID

	if cfg.CaptureConsole {
		s.console = newConsoleWatcher(s.logger)
		if err := s.run(ctx, cfg.ActionTimeout, s.console.start(s.rootCtx)); err != nil {
			s.logger.Warn("Console capture unavailable.", zap.Error(err))
			s.console = nil
		}
	}

	// Headless windows ignore start-maximized, so pin the viewport instead.
	if cfg.Headless {
		metrics := emulation.SetDeviceMetricsOverride(int64(cfg.WindowWidth), int64(cfg.WindowHeight), 1, false)
		if err := s.run(ctx, cfg.ActionTimeout, metrics); err != nil {
			s.Stop(context.Background())
			return nil, &LaunchError{Stage: "viewport", Err: err}
		}
	}

	if err := s.Navigate(ctx, cfg.StartURL); err != nil {
		s.Stop(context.Background())
		return nil, &LaunchError{Stage: "navigate", Err: err}
	}

	s.logger.Info("Browser launched and start page loaded.", zap.String("url", cfg.StartURL))
	return s, nil
}

// Stop closes every window and terminates the browser process.
// It is safe on a nil or partially started Session and never fails;
// problems are logged because teardown must run to completion.
func (s *Session) Stop(ctx context.Context) {
	if s == nil || s.stopped {
		return
	}
	s.stopped = true

	for id, tabCtx := range s.attached {
		if err := chromedp.Cancel(tabCtx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn("Error closing secondary window.", zap.String("window", string(id)), zap.Error(err))
		}
	}
	s.attached = nil
	s.activeCtx, s.activeID = nil, ""

	if s.rootCtx != nil {
		done := make(chan error, 1)
		go func() { done <- chromedp.Cancel(s.rootCtx) }()
		select {
		case err := <-done:
			if err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Warn("Error during browser shutdown.", zap.Error(err))
			}
		case <-ctx.Done():
			s.logger.Warn("Timed out waiting for the browser to close; killing it.", zap.Error(ctx.Err()))
		}
	}
	if s.allocCancel != nil {
		s.allocCancel()
		<-s.allocCtx.Done()
	}
	s.logger.Info("Browser closed.")
}

// DrainConsole returns the console errors and warnings of the primary
// window collected since the previous call.
func (s *Session) DrainConsole() []ConsoleMessage {
	if s.console == nil {
		return nil
	}
	return s.console.drain()
}

// run executes actions against the active window, bounded by timeout and by ctx.
func (s *Session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if s.activeCtx == nil {
		return errors.New("browser: no active window; switch to a window first")
	}
	runCtx, cancel := context.WithTimeout(s.activeCtx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

// FindElement returns the first node matching the XPath query.
func (s *Session) FindElement(ctx context.Context, query string) (Element, error) {
	elems, err := s.FindElements(ctx, query)
	if err != nil {
		return nil, &ElementNotFoundError{Query: query, Err: err}
	}
	if len(elems) == 0 {
		return nil, &ElementNotFoundError{Query: query}
	}
	return elems[0], nil
}

// FindElements returns every node matching the XPath query without waiting.
func (s *Session) FindElements(ctx context.Context, query string) ([]Element, error) {
	var nodes []*cdp.Node
	err := s.run(ctx, s.cfg.ActionTimeout,
		chromedp.Nodes(query, &nodes, chromedp.BySearch, chromedp.AtLeast(0)),
	)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", query, err)
	}

	elems := make([]Element, 0, len(nodes))
	for _, n := range nodes {
		elems = append(elems, &cdpElement{s: s, node: n, query: query})
	}
	return elems, nil
}

func (s *Session) ExecuteScript(ctx context.Context, script string, res any) error {
	return s.run(ctx, s.cfg.ActionTimeout, chromedp.Evaluate(script, res))
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	s.logger.Debug("Navigating.", zap.String("url", url))
	return s.run(ctx, s.cfg.NavigationTimeout,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

func (s *Session) Back(ctx context.Context) error {
	return s.run(ctx, s.cfg.NavigationTimeout,
		chromedp.NavigateBack(),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

func (s *Session) CurrentWindow(ctx context.Context) (string, error) {
	if s.activeID == "" {
		return "", errors.New("browser: no active window")
	}
	return string(s.activeID), nil
}

// Windows lists every page target of the browser.
func (s *Session) Windows(ctx context.Context) ([]string, error) {
	listCtx, cancel := context.WithTimeout(s.rootCtx, s.cfg.ActionTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	infos, err := chromedp.Targets(listCtx)
	if err != nil {
		return nil, fmt.Errorf("list windows: %w", err)
	}
	handles := make([]string, 0, len(infos))
	for _, info := range infos {
		if info.Type == "page" {
			handles = append(handles, string(info.TargetID))
		}
	}
	return handles, nil
}

// SwitchWindow makes handle the active window, attaching to it on first use.
func (s *Session) SwitchWindow(ctx context.Context, handle string) error {
	id := target.ID(handle)
	switch {
	case id == s.rootID:
		s.activeCtx, s.activeID = s.rootCtx, id
	case s.attached[id] != nil:
		s.activeCtx, s.activeID = s.attached[id], id
	default:
		tabCtx, cancel := chromedp.NewContext(s.rootCtx, chromedp.WithTargetID(id))
		timer := time.AfterFunc(s.cfg.ActionTimeout, cancel)
		err := chromedp.Run(tabCtx)
		timer.Stop()
		if err != nil {
			cancel()
			return fmt.Errorf("attach to window %s: %w", handle, err)
		}
		s.attached[id] = tabCtx
		s.activeCtx, s.activeID = tabCtx, id
	}
	return s.run(ctx, s.cfg.ActionTimeout, page.BringToFront())
}

// CloseWindow closes the active window. The primary window belongs to the
// session for its whole lifetime and cannot be closed this way.
func (s *Session) CloseWindow(ctx context.Context) error {
	if s.activeID == s.rootID {
		return errors.New("browser: refusing to close the primary window")
	}
	tabCtx, ok := s.attached[s.activeID]
	if !ok {
		return errors.New("browser: no active window")
	}
	delete(s.attached, s.activeID)
	s.activeCtx, s.activeID = nil, ""

	// Cancelling a context that did not start the browser closes its target.
	if err := chromedp.Cancel(tabCtx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("close window: %w", err)
	}
	return nil
}

func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := s.run(ctx, s.cfg.ActionTimeout, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}
	return buf, nil
}
