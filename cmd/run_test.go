// File: cmd/run_test.go
package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/sitecheck/internal/browser"
	"github.com/xkilldash9x/sitecheck/internal/browser/offline"
	"github.com/xkilldash9x/sitecheck/internal/config"
	"github.com/xkilldash9x/sitecheck/internal/report"
	"github.com/xkilldash9x/sitecheck/internal/runner"
)

const snapshotPath = "../internal/suite/testdata/home.html"

// recordingSink wraps a real sink and records the order of lifecycle calls.
type recordingSink struct {
	*report.Sink
	events  *[]string
	initErr error
}

func (s *recordingSink) Init() error {
	*s.events = append(*s.events, "init")
	if s.initErr != nil {
		return s.initErr
	}
	return s.Sink.Init()
}

func (s *recordingSink) CreateStep(name, description string) *report.Step {
	*s.events = append(*s.events, "step:"+name)
	return s.Sink.CreateStep(name, description)
}

func (s *recordingSink) Flush() error {
	*s.events = append(*s.events, "flush")
	return s.Sink.Flush()
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.Report.Dir = t.TempDir()
	cfg.Suite = config.SuiteConfig{
		WaitTimeout:  30 * time.Millisecond,
		PollInterval: 5 * time.Millisecond,
		WindowWait:   30 * time.Millisecond,
	}
	return cfg
}

// offlineStarter serves the homepage snapshot. When stopErr is set it receives
// the state of the teardown context at the moment stop is called.
func offlineStarter(t *testing.T, events *[]string, stopErr *error) starter {
	return func(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (browser.Driver, func(context.Context), error) {
		*events = append(*events, "start")
		markup, err := os.ReadFile(snapshotPath)
		require.NoError(t, err)
		d, err := offline.New(cfg.StartURL, string(markup), offline.WithScreenshot([]byte{0x89, 'P', 'N', 'G'}))
		if err != nil {
			return nil, nil, err
		}
		return d, func(ctx context.Context) {
			*events = append(*events, "stop")
			if stopErr != nil {
				*stopErr = ctx.Err()
			}
		}, nil
	}
}

func simpleSteps() []runner.Step {
	return []runner.Step{
		{Name: "First", Run: func(ctx context.Context, t *runner.T) error {
			t.Pass("first")
			return nil
		}},
		{Name: "Second", Run: func(ctx context.Context, t *runner.T) error {
			return t.Assertf(false, "second always fails")
		}},
	}
}

func TestRunSuite_Lifecycle(t *testing.T) {
	cfg := testConfig(t)
	logger := zaptest.NewLogger(t)
	var events []string
	sink := &recordingSink{Sink: report.New(cfg.Report, logger), events: &events}

	summary, err := runSuite(context.Background(), cfg, simpleSteps(), offlineStarter(t, &events, nil), sink, logger)
	require.NoError(t, err)

	assert.Equal(t, []string{"init", "start", "step:First", "step:Second", "stop", "flush"}, events)
	assert.Equal(t, 1, summary.Passed)
	assert.Equal(t, 1, summary.Failed)
	assert.FileExists(t, cfg.Report.Path())
	assert.ErrorIs(t, sink.Flush(), report.ErrAlreadyFlushed, "the run already flushed the report")
}

func TestRunSuite_LaunchFailure(t *testing.T) {
	cfg := testConfig(t)
	logger := zaptest.NewLogger(t)
	var events []string
	sink := &recordingSink{Sink: report.New(cfg.Report, logger), events: &events}

	launchErr := &browser.LaunchError{Stage: "launch", Err: errors.New("chrome not found")}
	failing := func(context.Context, config.BrowserConfig, *zap.Logger) (browser.Driver, func(context.Context), error) {
		events = append(events, "start")
		return nil, nil, launchErr
	}

	summary, err := runSuite(context.Background(), cfg, simpleSteps(), failing, sink, logger)

	var le *browser.LaunchError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "launch", le.Stage)
	assert.Equal(t, []string{"init", "start", "flush"}, events)
	assert.Equal(t, 2, summary.Skipped)
	assert.False(t, summary.OK())
	assert.FileExists(t, cfg.Report.Path(), "an empty report is still written")
}

func TestRunSuite_InitFailure(t *testing.T) {
	cfg := testConfig(t)
	logger := zaptest.NewLogger(t)
	var events []string
	sink := &recordingSink{Sink: report.New(cfg.Report, logger), events: &events, initErr: errors.New("disk full")}

	_, err := runSuite(context.Background(), cfg, simpleSteps(), offlineStarter(t, &events, nil), sink, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NotContains(t, events, "start", "no browser without a report")
}

func TestRunSuite_StopsOnFreshContext(t *testing.T) {
	cfg := testConfig(t)
	logger := zaptest.NewLogger(t)
	var events []string
	sink := &recordingSink{Sink: report.New(cfg.Report, logger), events: &events}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stopErr := errors.New("stop not called")
	summary, err := runSuite(ctx, cfg, simpleSteps(), offlineStarter(t, &events, &stopErr), sink, logger)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Skipped)
	assert.Contains(t, events, "stop")
	assert.NoError(t, stopErr, "teardown is not cancelled with the run")
	assert.Equal(t, "flush", events[len(events)-1])
}

func TestRunCmd(t *testing.T) {
	t.Setenv("SITECHECK_SUITE_POLL_INTERVAL", "5ms")
	t.Setenv("SITECHECK_SUITE_WINDOW_WAIT", "20ms")

	execute := func(t *testing.T, args ...string) (string, string, error) {
		t.Helper()
		var events []string
		dir := t.TempDir()
		root := newRootCommand(offlineStarter(t, &events, nil))
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetErr(&out)
		root.SetArgs(append([]string{"run", "-o", dir, "--wait-timeout", "50ms", "--settle-delay", "0s"}, args...))
		err := root.ExecuteContext(context.Background())
		return out.String(), dir, err
	}

	t.Run("passing selection", func(t *testing.T) {
		out, dir, err := execute(t, "--only", "TC05_VerifyLogoAndText,TC18_VerifyDevOpsService")
		require.NoError(t, err)
		assert.Contains(t, out, "2 passed, 0 warned, 0 failed, 0 skipped")
		assert.FileExists(t, filepath.Join(dir, "ExtentReport.html"))
		assert.FileExists(t, filepath.Join(dir, report.SummaryFile))
	})

	t.Run("failing step fails the command", func(t *testing.T) {
		out, dir, err := execute(t, "--only", "TC07_VerifyAboutUsSection", "--json-summary=false")
		require.ErrorIs(t, err, ErrSuiteFailed)
		assert.Contains(t, out, "TC07_VerifyAboutUsSection")
		assert.NoFileExists(t, filepath.Join(dir, report.SummaryFile))

		shots, globErr := filepath.Glob(filepath.Join(dir, report.ScreenshotDir, "TC07_VerifyAboutUsSection_*.png"))
		require.NoError(t, globErr)
		assert.Len(t, shots, 1)
	})

	t.Run("unknown step", func(t *testing.T) {
		_, _, err := execute(t, "--only", "TC99_Nothing")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "TC99_Nothing")
	})
}
