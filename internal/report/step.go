// internal/report/step.go
package report

import (
	"fmt"
	"path"
	"regexp"
	"time"
)

// Level classifies a single log entry of a step.
type Level string

const (
	LevelInfo    Level = "info"
	LevelPass    Level = "pass"
	LevelWarning Level = "warning"
	LevelFail    Level = "fail"
)

// Severity orders levels from info (lowest) to fail (highest).
func (l Level) Severity() int {
	switch l {
	case LevelFail:
		return 3
	case LevelWarning:
		return 2
	case LevelPass:
		return 1
	default:
		return 0
	}
}

// Valid reports whether l is one of the known levels.
func (l Level) Valid() bool {
	switch l {
	case LevelInfo, LevelPass, LevelWarning, LevelFail:
		return true
	}
	return false
}

// Entry is one line in a step's log.
type Entry struct {
	Level    Level     `json:"level"`
	Message  string    `json:"message"`
	Artifact string    `json:"artifact,omitempty"`
	Time     time.Time `json:"time"`
}

// Step is the record of one executed step. Handles are created by
// Sink.CreateStep and mutated only through the Sink.
type Step struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Started     time.Time `json:"started"`
	Entries     []Entry   `json:"entries"`
}

// Outcome is the most severe level logged for the step.
// A step that logged nothing worse than info counts as passed.
func (s *Step) Outcome() Level {
	outcome := LevelPass
	for _, e := range s.Entries {
		if e.Level.Severity() > outcome.Severity() {
			outcome = e.Level
		}
	}
	return outcome
}

// Artifacts lists every artifact reference attached to the step.
func (s *Step) Artifacts() []string {
	var refs []string
	for _, e := range s.Entries {
		if e.Artifact != "" {
			refs = append(refs, e.Artifact)
		}
	}
	return refs
}

// ScreenshotDir is the artifact directory, relative to the report root.
const ScreenshotDir = "Screenshots"

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// ArtifactName is the report-relative path of a screenshot taken for step at t.
func ArtifactName(step string, t time.Time) string {
	name := unsafeNameChars.ReplaceAllString(step, "_")
	if name == "" {
		name = "step"
	}
	return path.Join(ScreenshotDir, fmt.Sprintf("%s_%s.png", name, t.Format("20060102_150405")))
}
