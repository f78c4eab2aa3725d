// internal/runner/t.go
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/xkilldash9x/sitecheck/internal/browser"
	"github.com/xkilldash9x/sitecheck/internal/config"
	"github.com/xkilldash9x/sitecheck/internal/report"
)

// T is handed to a step body. It wraps the driver with the waiting and
// logging conventions every step shares.
type T struct {
	name   string
	driver browser.Driver
	rec    Recorder
	step   *report.Step
	cfg    config.SuiteConfig
	logger *zap.Logger

	worst report.Level
}

// Name is the running step's name.
func (t *T) Name() string { return t.name }

// Driver exposes the underlying driver for actions T does not wrap.
func (t *T) Driver() browser.Driver { return t.driver }

func (t *T) log(level report.Level, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	t.rec.Log(t.step, level, msg)
	if level.Severity() > t.worst.Severity() {
		t.worst = level
	}

	switch level {
	case report.LevelFail:
		t.logger.Error(msg)
	case report.LevelWarning:
		t.logger.Warn(msg)
	default:
		t.logger.Info(msg, zap.String("level", string(level)))
	}
}

// outcome is the worst level the step logged, with info-only counting as pass.
func (t *T) outcome() report.Level {
	switch t.worst {
	case report.LevelFail, report.LevelWarning:
		return t.worst
	}
	return report.LevelPass
}

func (t *T) Info(format string, args ...any) { t.log(report.LevelInfo, format, args...) }
func (t *T) Pass(format string, args ...any) { t.log(report.LevelPass, format, args...) }
func (t *T) Warn(format string, args ...any) { t.log(report.LevelWarning, format, args...) }

// Fail records a failure without ending the step. Return an error to end it.
func (t *T) Fail(format string, args ...any) { t.log(report.LevelFail, format, args...) }

// Assertf returns an *AssertionError when cond is false.
func (t *T) Assertf(cond bool, format string, args ...any) error {
	if cond {
		return nil
	}
	return &AssertionError{Message: fmt.Sprintf(format, args...)}
}

// Find returns the first element matching query without waiting.
func (t *T) Find(ctx context.Context, query string) (browser.Element, error) {
	return t.driver.FindElement(ctx, query)
}

// FindAll returns every element matching query without waiting.
func (t *T) FindAll(ctx context.Context, query string) ([]browser.Element, error) {
	return t.driver.FindElements(ctx, query)
}

// Count is an existence check: zero or many matches are both valid answers.
func (t *T) Count(ctx context.Context, query string) (int, error) {
	elems, err := t.driver.FindElements(ctx, query)
	if err != nil {
		return 0, err
	}
	return len(elems), nil
}

func (t *T) Exists(ctx context.Context, query string) (bool, error) {
	n, err := t.Count(ctx, query)
	return n > 0, err
}

// WaitFor polls until query matches or the suite wait budget runs out, in
// which case it returns an *browser.ElementNotFoundError.
func (t *T) WaitFor(ctx context.Context, query string) (browser.Element, error) {
	var found browser.Element
	err := wait.PollUntilContextTimeout(ctx, t.cfg.PollInterval, t.cfg.WaitTimeout, true, func(ctx context.Context) (bool, error) {
		elems, err := t.driver.FindElements(ctx, query)
		if err != nil {
			return false, err
		}
		if len(elems) == 0 {
			return false, nil
		}
		found = elems[0]
		return true, nil
	})
	switch {
	case err == nil:
		return found, nil
	case wait.Interrupted(err):
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &browser.ElementNotFoundError{Query: query, Err: ctxErr}
		}
		return nil, &browser.ElementNotFoundError{Query: query, Err: fmt.Errorf("not present after %s", t.cfg.WaitTimeout)}
	default:
		return nil, err
	}
}

// Hover waits for query and moves the pointer over it.
func (t *T) Hover(ctx context.Context, query string) (browser.Element, error) {
	el, err := t.WaitFor(ctx, query)
	if err != nil {
		return nil, err
	}
	return el, el.Hover(ctx)
}

// Click waits for query and clicks it.
func (t *T) Click(ctx context.Context, query string) error {
	el, err := t.WaitFor(ctx, query)
	if err != nil {
		return err
	}
	return el.Click(ctx)
}

// Text waits for query and returns its visible text.
func (t *T) Text(ctx context.Context, query string) (string, error) {
	el, err := t.WaitFor(ctx, query)
	if err != nil {
		return "", err
	}
	return el.Text(ctx)
}

// Visible waits for query and reports whether it is displayed.
func (t *T) Visible(ctx context.Context, query string) (bool, error) {
	el, err := t.WaitFor(ctx, query)
	if err != nil {
		return false, err
	}
	return el.Visible(ctx)
}

// ScrollIntoView waits for query and scrolls it to the top of the viewport.
func (t *T) ScrollIntoView(ctx context.Context, query string) (browser.Element, error) {
	el, err := t.WaitFor(ctx, query)
	if err != nil {
		return nil, err
	}
	return el, el.ScrollIntoView(ctx)
}

// ScrollBy scrolls the window vertically by dy pixels.
func (t *T) ScrollBy(ctx context.Context, dy int) error {
	return t.driver.ExecuteScript(ctx, fmt.Sprintf("window.scrollBy(0, %d);", dy), nil)
}

// Settle pauses for the configured settle delay so animations can finish.
func (t *T) Settle(ctx context.Context) error {
	if t.cfg.SettleDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(t.cfg.SettleDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HandleNewWindows runs trigger, waits up to the window budget for a window
// that was not open before it, then closes every window except the one
// active before trigger and returns to it. It returns how many windows were
// closed. No new window is logged as a warning rather than an error.
func (t *T) HandleNewWindows(ctx context.Context, trigger func(ctx context.Context) error) (int, error) {
	original, err := t.driver.CurrentWindow(ctx)
	if err != nil {
		return 0, err
	}
	t.Info("Original window: %s", original)

	before, err := t.driver.Windows(ctx)
	if err != nil {
		return 0, err
	}
	known := make(map[string]bool, len(before))
	for _, h := range before {
		known[h] = true
	}

	if err := trigger(ctx); err != nil {
		return 0, err
	}

	handles := before
	opened := false
	err = wait.PollUntilContextTimeout(ctx, t.cfg.PollInterval, t.cfg.WindowWait, true, func(ctx context.Context) (bool, error) {
		hs, err := t.driver.Windows(ctx)
		if err != nil {
			return false, err
		}
		handles = hs
		for _, h := range hs {
			if !known[h] {
				opened = true
				return true, nil
			}
		}
		return false, nil
	})
	if err != nil && !wait.Interrupted(err) {
		return 0, err
	}
	if !opened {
		t.Warn("No new window opened.")
	}
	if len(handles) <= 1 {
		return 0, nil
	}

	closed, closeErr := t.closeOthers(ctx, original, handles)
	if err := t.driver.SwitchWindow(ctx, original); err != nil {
		return closed, errors.Join(closeErr, fmt.Errorf("switch back to original window: %w", err))
	}
	if closeErr != nil {
		return closed, closeErr
	}
	t.Info("Closed %d window(s) and switched back to the original window.", closed)
	return closed, nil
}

func (t *T) closeOthers(ctx context.Context, original string, handles []string) (int, error) {
	closed := 0
	for _, h := range handles {
		if h == original {
			continue
		}
		if err := t.driver.SwitchWindow(ctx, h); err != nil {
			return closed, fmt.Errorf("switch to window %s: %w", h, err)
		}
		t.Info("Switched to new window: %s", h)
		if err := t.driver.CloseWindow(ctx); err != nil {
			return closed, fmt.Errorf("close window %s: %w", h, err)
		}
		closed++
	}
	return closed, nil
}
