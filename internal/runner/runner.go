// internal/runner/runner.go
package runner

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/sitecheck/internal/browser"
	"github.com/xkilldash9x/sitecheck/internal/config"
	"github.com/xkilldash9x/sitecheck/internal/report"
)

// Step is one named unit of the suite.
type Step struct {
	Name        string
	Description string
	// Locators lists the XPath queries the step uses, for offline checks.
	Locators []string
	Run      func(ctx context.Context, t *T) error
}

// Recorder receives step outcomes. *report.Sink implements it.
type Recorder interface {
	CreateStep(name, description string) *report.Step
	Log(step *report.Step, level report.Level, msg string)
	AttachArtifact(step *report.Step, relPath string)
	SaveArtifact(step *report.Step, png []byte) (string, error)
}

var _ Recorder = (*report.Sink)(nil)

// Result is the sealed outcome of one step.
type Result struct {
	Name    string
	Outcome report.Level
	// Err is the error the step returned, unchanged.
	Err      error
	Artifact string
	Duration time.Duration
}

// Summary describes a whole run.
type Summary struct {
	Results  []Result
	Passed   int
	Warned   int
	Failed   int
	Skipped  int
	Duration time.Duration
}

// OK reports whether every declared step ran and none failed.
func (s Summary) OK() bool { return s.Failed == 0 && s.Skipped == 0 }

// Runner executes steps one after another against a single driver.
type Runner struct {
	driver browser.Driver
	rec    Recorder
	cfg    config.SuiteConfig
	logger *zap.Logger
}

func New(driver browser.Driver, rec Recorder, cfg config.SuiteConfig, logger *zap.Logger) *Runner {
	return &Runner{
		driver: driver,
		rec:    rec,
		cfg:    cfg,
		logger: logger.Named("runner"),
	}
}

// Run executes steps in declared order. A failing step never stops the run;
// a cancelled context does, and the steps not yet started are counted as skipped.
func (r *Runner) Run(ctx context.Context, steps []Step) Summary {
	start := time.Now()
	summary := Summary{Results: make([]Result, 0, len(steps))}

	// Output from loading the start page belongs to no step.
	if n := len(r.drainConsole()); n > 0 {
		r.logger.Debug("Discarded console messages from before the first step.", zap.Int("count", n))
	}

	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			summary.Skipped = len(steps) - i
			r.logger.Warn("Run interrupted, skipping remaining steps.", zap.Int("skipped", summary.Skipped), zap.Error(err))
			break
		}

		res := r.runStep(ctx, step)
		summary.Results = append(summary.Results, res)
		switch res.Outcome {
		case report.LevelFail:
			summary.Failed++
		case report.LevelWarning:
			summary.Warned++
		default:
			summary.Passed++
		}
	}

	summary.Duration = time.Since(start)
	r.logger.Info("Run complete.",
		zap.Int("passed", summary.Passed),
		zap.Int("warned", summary.Warned),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
		zap.Duration("duration", summary.Duration),
	)
	return summary
}

func (r *Runner) runStep(ctx context.Context, step Step) Result {
	logger := r.logger.With(zap.String("step", step.Name))
	handle := r.rec.CreateStep(step.Name, step.Description)
	t := &T{
		name:   step.Name,
		driver: r.driver,
		rec:    r.rec,
		step:   handle,
		cfg:    r.cfg,
		logger: logger,
	}

	logger.Info("Step started.")
	start := time.Now()
	err := invoke(ctx, step, t)
	res := Result{Name: step.Name, Err: err, Duration: time.Since(start)}
	r.recordConsole(t)

	if err == nil {
		res.Outcome = t.outcome()
		logger.Info("Step finished.", zap.String("outcome", string(res.Outcome)), zap.Duration("duration", res.Duration))
		return res
	}

	res.Outcome = report.LevelFail
	r.rec.Log(handle, report.LevelFail, err.Error())
	res.Artifact = r.capture(ctx, handle, step.Name, logger)
	if res.Artifact != "" {
		r.rec.AttachArtifact(handle, res.Artifact)
	}

	fields := []zap.Field{zap.Error(err), zap.String("artifact", res.Artifact), zap.Duration("duration", res.Duration)}
	var pe *PanicError
	if errors.As(err, &pe) {
		fields = append(fields, zap.ByteString("stack", pe.Stack))
	}
	logger.Error("Step failed.", fields...)
	return res
}

func invoke(ctx context.Context, step Step, t *T) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &PanicError{Value: p, Stack: debug.Stack()}
		}
	}()
	if step.Run == nil {
		return fmt.Errorf("step %s has no body", step.Name)
	}
	return step.Run(ctx, t)
}

func (r *Runner) drainConsole() []browser.ConsoleMessage {
	cr, ok := r.driver.(browser.ConsoleReader)
	if !ok {
		return nil
	}
	return cr.DrainConsole()
}

// recordConsole adds the page's console output during the step to its log.
// Errors mark the step as a warning; they do not fail it.
func (r *Runner) recordConsole(t *T) {
	for _, m := range r.drainConsole() {
		if m.Level == browser.ConsoleError {
			t.Warn("Browser console error: %s", m.Text)
		} else {
			t.Info("Browser console warning: %s", m.Text)
		}
	}
}

// capture takes and stores one screenshot for a failed step. It returns the
// artifact reference, or "" when capture failed, which is logged only.
func (r *Runner) capture(ctx context.Context, handle *report.Step, name string, logger *zap.Logger) string {
	// A step that failed because the run was cancelled still gets its screenshot.
	ctx = context.WithoutCancel(ctx)

	png, err := r.driver.Screenshot(ctx)
	if err != nil {
		logger.Warn("Could not capture failure screenshot.", zap.Error(&ArtifactCaptureError{Step: name, Err: err}))
		return ""
	}
	rel, err := r.rec.SaveArtifact(handle, png)
	if err != nil {
		logger.Warn("Could not save failure screenshot.", zap.Error(&ArtifactCaptureError{Step: name, Err: err}))
		return ""
	}
	return rel
}

// Select returns the steps whose names appear in only, keeping declared order.
// An empty only selects every step. Unknown names are reported as an error.
func Select(steps []Step, only []string) ([]Step, error) {
	if len(only) == 0 {
		return steps, nil
	}
	wanted := make(map[string]bool, len(only))
	for _, name := range only {
		wanted[name] = true
	}

	var selected []Step
	for _, s := range steps {
		if wanted[s.Name] {
			selected = append(selected, s)
			delete(wanted, s.Name)
		}
	}
	if len(wanted) > 0 {
		var unknown []string
		for _, name := range only {
			if wanted[name] {
				unknown = append(unknown, name)
			}
		}
		return nil, fmt.Errorf("unknown steps: %v", unknown)
	}
	return selected, nil
}
