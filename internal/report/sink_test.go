// internal/report/sink_test.go
package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xkilldash9x/sitecheck/internal/config"
)

func newTestSink(t *testing.T) (*Sink, *observer.ObservedLogs) {
	t.Helper()
	cfg := config.NewDefaultConfig().Report
	cfg.Dir = t.TempDir()

	core, logs := observer.New(zap.DebugLevel)
	s := New(cfg, zap.New(core))

	clock := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s, logs
}

func loadReport(t *testing.T, s *Sink) *goquery.Document {
	t.Helper()
	f, err := os.Open(s.cfg.Path())
	require.NoError(t, err)
	defer f.Close()
	doc, err := goquery.NewDocumentFromReader(f)
	require.NoError(t, err)
	return doc
}

func TestArtifactName(t *testing.T) {
	ts := time.Date(2025, 1, 2, 15, 4, 5, 0, time.Local)

	assert.Equal(t, "Screenshots/TC01_HoverOnAboutUs_20250102_150405.png", ArtifactName("TC01_HoverOnAboutUs", ts))
	assert.Equal(t, "Screenshots/Get_Started_20250102_150405.png", ArtifactName("Get Started", ts))
	assert.Equal(t, "Screenshots/a_b_20250102_150405.png", ArtifactName("a/../b", ts))
	assert.Equal(t, "Screenshots/step_20250102_150405.png", ArtifactName("", ts))
}

func TestStepOutcome(t *testing.T) {
	tests := []struct {
		name   string
		levels []Level
		want   Level
	}{
		{"empty step passes", nil, LevelPass},
		{"info only passes", []Level{LevelInfo, LevelInfo}, LevelPass},
		{"warning beats pass", []Level{LevelPass, LevelWarning, LevelInfo}, LevelWarning},
		{"fail beats everything", []Level{LevelFail, LevelWarning, LevelPass}, LevelFail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &Step{}
			for _, l := range tt.levels {
				st.Entries = append(st.Entries, Entry{Level: l})
			}
			assert.Equal(t, tt.want, st.Outcome())
		})
	}
}

func TestSinkLifecycle(t *testing.T) {
	s, _ := newTestSink(t)

	require.NoError(t, s.Init())
	assert.DirExists(t, filepath.Join(s.cfg.Dir, ScreenshotDir))
	assert.NotEmpty(t, s.RunID())
	assert.ErrorIs(t, s.Init(), ErrAlreadyInitialized)

	step := s.CreateStep("TC05_VerifyTextAndLogo", "Checks the hero **text** and the logo.")
	require.NotNil(t, step)
	s.Log(step, LevelInfo, "Text found: Digital Workers")
	s.Log(step, LevelFail, "Logo is not displayed.")

	rel, err := s.SaveArtifact(step, []byte("png"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rel, "Screenshots/TC05_VerifyTextAndLogo_"))
	assert.FileExists(t, filepath.Join(s.cfg.Dir, filepath.FromSlash(rel)))
	s.AttachArtifact(step, rel)

	require.NoError(t, s.Flush())
	assert.ErrorIs(t, s.Flush(), ErrAlreadyFlushed)

	steps := s.Steps()
	require.Len(t, steps, 1)
	assert.Equal(t, LevelFail, steps[0].Outcome())
	assert.Equal(t, []string{rel}, steps[0].Artifacts())
	assert.Equal(t, rel, steps[0].Entries[1].Artifact, "artifact attaches to the latest entry")
}

func TestFlushBeforeInit(t *testing.T) {
	s, _ := newTestSink(t)
	assert.ErrorIs(t, s.Flush(), ErrNotInitialized)
	assert.NoFileExists(t, s.cfg.Path())
}

func TestMisuseIsIgnored(t *testing.T) {
	s, logs := newTestSink(t)

	assert.Nil(t, s.CreateStep("early", ""), "no steps before Init")

	require.NoError(t, s.Init())
	s.Log(nil, LevelFail, "nobody owns this")
	s.AttachArtifact(nil, "Screenshots/x.png")
	rel, err := s.SaveArtifact(nil, []byte("png"))
	assert.NoError(t, err)
	assert.Empty(t, rel)

	step := s.CreateStep("TC01", "")
	s.Log(step, Level("verbose"), "unknown level")
	require.NoError(t, s.Flush())

	s.Log(step, LevelPass, "after flush")
	assert.Nil(t, s.CreateStep("late", ""))

	steps := s.Steps()
	require.Len(t, steps, 1)
	require.Len(t, steps[0].Entries, 1)
	assert.Equal(t, LevelInfo, steps[0].Entries[0].Level)

	assert.GreaterOrEqual(t, logs.FilterLevelExact(zap.WarnLevel).Len(), 6)
}

func TestAttachWithoutEntries(t *testing.T) {
	s, _ := newTestSink(t)
	require.NoError(t, s.Init())

	step := s.CreateStep("TC02", "")
	s.AttachArtifact(step, "Screenshots/a.png")
	s.AttachArtifact(step, "Screenshots/b.png")

	steps := s.Steps()
	require.Len(t, steps[0].Entries, 2)
	assert.Equal(t, []string{"Screenshots/a.png", "Screenshots/b.png"}, steps[0].Artifacts())
}

func TestSaveArtifactAvoidsCollisions(t *testing.T) {
	s, _ := newTestSink(t)
	require.NoError(t, s.Init())
	s.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }

	step := s.CreateStep("TC07", "")
	first, err := s.SaveArtifact(step, []byte("one"))
	require.NoError(t, err)
	second, err := s.SaveArtifact(step, []byte("two"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, "Screenshots/TC07_20250101_000000_2.png", second)
}

func TestRenderedReport(t *testing.T) {
	s, _ := newTestSink(t)
	require.NoError(t, s.Init())

	ok := s.CreateStep("TC01_HoverOnAboutUs", "Hover the *About Us* menu.")
	s.Log(ok, LevelPass, "Hovered over About Us")

	warn := s.CreateStep("TC25_HandleGetStartedWindow", "")
	s.Log(warn, LevelWarning, "No new window opened.")

	bad := s.CreateStep("TC07_VerifyAboutSection", "<script>alert(1)</script>")
	s.Log(bad, LevelFail, "no element matches \"//section\"")
	rel, err := s.SaveArtifact(bad, []byte("png"))
	require.NoError(t, err)
	s.AttachArtifact(bad, rel)

	require.NoError(t, s.Flush())
	doc := loadReport(t, s)

	assert.Equal(t, "Recode Solutions - Test Report", doc.Find("title").Text())
	assert.Equal(t, "Recode UI Automation Suite", doc.Find("p.suite").Text())
	assert.Equal(t, 3, doc.Find("section.step").Length())
	assert.Equal(t, "Passed: 1", doc.Find(".totals .passed").Text())
	assert.Equal(t, "Warnings: 1", doc.Find(".totals .warned").Text())
	assert.Equal(t, "Failed: 1", doc.Find(".totals .failed").Text())

	first := doc.Find("section.step").First()
	assert.True(t, first.HasClass("pass"))
	assert.Equal(t, "About Us", first.Find(".description em").Text())

	failed := doc.Find("section.fail")
	require.Equal(t, 1, failed.Length())
	src, exists := failed.Find("img.artifact").Attr("src")
	require.True(t, exists)
	assert.Equal(t, rel, src)
	assert.Zero(t, failed.Find(".description script").Length(), "raw html in descriptions is dropped")

	raw, err := os.ReadFile(filepath.Join(s.cfg.Dir, SummaryFile))
	require.NoError(t, err)
	var summary struct {
		RunID  string `json:"run_id"`
		Total  int    `json:"total"`
		Failed int    `json:"failed"`
		Steps  []struct {
			Name    string `json:"name"`
			Outcome string `json:"outcome"`
		} `json:"steps"`
	}
	require.NoError(t, json.Unmarshal(raw, &summary))
	assert.Equal(t, s.RunID(), summary.RunID)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Steps, 3)
	assert.Equal(t, "fail", summary.Steps[2].Outcome)
}

func TestJSONSummaryDisabled(t *testing.T) {
	s, _ := newTestSink(t)
	s.cfg.JSONSummary = false
	require.NoError(t, s.Init())
	require.NoError(t, s.Flush())

	assert.FileExists(t, s.cfg.Path())
	assert.NoFileExists(t, filepath.Join(s.cfg.Dir, SummaryFile))
}
