// internal/report/sink.go
package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/sitecheck/internal/config"
)

var (
	ErrAlreadyInitialized = errors.New("report: sink already initialized")
	ErrNotInitialized     = errors.New("report: sink not initialized")
	ErrAlreadyFlushed     = errors.New("report: sink already flushed")
)

type state int

const (
	stateUninitialized state = iota
	stateInitialized
	stateFlushed
)

func (s state) String() string {
	switch s {
	case stateInitialized:
		return "initialized"
	case stateFlushed:
		return "flushed"
	default:
		return "uninitialized"
	}
}

// Sink accumulates step outcomes for one suite run and renders them at the end.
// Misuse, such as logging to a nil step or after Flush, is ignored with a warning
// so that reporting can never break a run.
type Sink struct {
	cfg    config.ReportConfig
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	state    state
	runID    string
	started  time.Time
	finished time.Time
	steps    []*Step
}

func New(cfg config.ReportConfig, logger *zap.Logger) *Sink {
	return &Sink{
		cfg:    cfg,
		logger: logger.Named("report"),
		now:    time.Now,
	}
}

// RunID identifies the run once the sink is initialized.
func (s *Sink) RunID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runID
}

// Init creates the report directory and its screenshot directory.
func (s *Sink) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != stateUninitialized {
		return ErrAlreadyInitialized
	}
	shots := filepath.Join(s.cfg.Dir, ScreenshotDir)
	if err := os.MkdirAll(shots, 0o755); err != nil {
		return fmt.Errorf("failed to create report directory %s: %w", shots, err)
	}

	s.runID = uuid.NewString()
	s.started = s.now()
	s.state = stateInitialized
	s.logger.Info("Report initialized.", zap.String("path", s.cfg.Path()), zap.String("run_id", s.runID))
	return nil
}

// usable reports whether the sink accepts step data. The caller holds s.mu.
func (s *Sink) usable(op string, step *Step) bool {
	if s.state != stateInitialized {
		s.logger.Warn("Ignoring report call in wrong state.", zap.String("op", op), zap.Stringer("state", s.state))
		return false
	}
	if step == nil {
		s.logger.Warn("Ignoring report call with nil step.", zap.String("op", op))
		return false
	}
	return true
}

// CreateStep opens a new step record. It returns nil when the sink is not
// initialized, and every other Sink method accepts that nil as a no-op.
func (s *Sink) CreateStep(name, description string) *Step {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != stateInitialized {
		s.logger.Warn("Ignoring step creation in wrong state.", zap.String("step", name), zap.Stringer("state", s.state))
		return nil
	}
	step := &Step{Name: name, Description: description, Started: s.now()}
	s.steps = append(s.steps, step)
	return step
}

func (s *Sink) Log(step *Step, level Level, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.usable("log", step) {
		return
	}
	if !level.Valid() {
		s.logger.Warn("Unknown report level, recording as info.", zap.String("level", string(level)))
		level = LevelInfo
	}
	step.Entries = append(step.Entries, Entry{Level: level, Message: msg, Time: s.now()})
}

// AttachArtifact links relPath to the most recent entry of step.
func (s *Sink) AttachArtifact(step *Step, relPath string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.usable("attach", step) {
		return
	}
	s.attach(step, relPath)
}

func (s *Sink) attach(step *Step, relPath string) {
	if n := len(step.Entries); n > 0 && step.Entries[n-1].Artifact == "" {
		step.Entries[n-1].Artifact = relPath
		return
	}
	step.Entries = append(step.Entries, Entry{Level: LevelInfo, Message: "Screenshot", Artifact: relPath, Time: s.now()})
}

// SaveArtifact writes png under the screenshot directory and returns its
// report-relative path. The artifact is not attached to any entry.
func (s *Sink) SaveArtifact(step *Step, png []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.usable("save artifact", step) {
		return "", nil
	}

	rel := ArtifactName(step.Name, s.now())
	base := strings.TrimSuffix(rel, ".png")
	// Two failures in the same second would otherwise overwrite each other.
	for i := 2; fileExists(filepath.Join(s.cfg.Dir, filepath.FromSlash(rel))); i++ {
		rel = fmt.Sprintf("%s_%d.png", base, i)
	}

	dst := filepath.Join(s.cfg.Dir, filepath.FromSlash(rel))
	if err := os.WriteFile(dst, png, 0o644); err != nil {
		return "", fmt.Errorf("failed to write screenshot %s: %w", dst, err)
	}
	return rel, nil
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// Flush renders the report. It succeeds at most once.
func (s *Sink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case stateUninitialized:
		return ErrNotInitialized
	case stateFlushed:
		return ErrAlreadyFlushed
	}
	s.state = stateFlushed
	s.finished = s.now()

	doc := s.document()
	if err := writeHTML(s.cfg.Path(), doc); err != nil {
		return err
	}
	if s.cfg.JSONSummary {
		if err := writeJSON(filepath.Join(s.cfg.Dir, SummaryFile), doc); err != nil {
			return err
		}
	}

	s.logger.Info("Report written.",
		zap.String("path", s.cfg.Path()),
		zap.Int("steps", len(s.steps)),
		zap.Int("failed", doc.Failed),
	)
	return nil
}

// Steps returns a copy of the recorded steps.
func (s *Sink) Steps() []Step {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Step, len(s.steps))
	for i, st := range s.steps {
		out[i] = *st
		out[i].Entries = append([]Entry(nil), st.Entries...)
	}
	return out
}
