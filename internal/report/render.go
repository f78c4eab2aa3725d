// internal/report/render.go
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"time"

	json "github.com/json-iterator/go"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// SummaryFile is written next to the HTML report when enabled.
const SummaryFile = "summary.json"

// document is the rendered view of a run, shared by the HTML and JSON outputs.
type document struct {
	Title    string        `json:"title"`
	Name     string        `json:"name"`
	RunID    string        `json:"run_id"`
	Started  time.Time     `json:"started"`
	Finished time.Time     `json:"finished"`
	Duration string        `json:"duration"`
	Total    int           `json:"total"`
	Passed   int           `json:"passed"`
	Warned   int           `json:"warned"`
	Failed   int           `json:"failed"`
	Steps    []stepSummary `json:"steps"`
}

type stepSummary struct {
	Step
	Status Level `json:"outcome"`
}

// document snapshots the sink. The caller holds s.mu.
func (s *Sink) document() document {
	doc := document{
		Title:    s.cfg.Title,
		Name:     s.cfg.Name,
		RunID:    s.runID,
		Started:  s.started,
		Finished: s.finished,
		Duration: s.finished.Sub(s.started).Round(time.Millisecond).String(),
		Total:    len(s.steps),
	}
	for _, st := range s.steps {
		outcome := st.Outcome()
		switch outcome {
		case LevelFail:
			doc.Failed++
		case LevelWarning:
			doc.Warned++
		default:
			doc.Passed++
		}
		doc.Steps = append(doc.Steps, stepSummary{Step: *st, Status: outcome})
	}
	return doc
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// renderMarkdown turns a step description into HTML. Raw HTML in the
// source is dropped by goldmark's default renderer.
func renderMarkdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"markdown": renderMarkdown,
	"stamp":    func(t time.Time) string { return t.Format("15:04:05") },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8" />
<title>{{ .Title }}</title>
<style>
body { font-family: "Segoe UI", Helvetica, sans-serif; background: #f4f6f8; color: #1d2733; margin: 32px; }
header { margin-bottom: 24px; }
.totals span { display: inline-block; margin-right: 16px; font-weight: bold; }
section.step { margin-bottom: 16px; padding: 12px 16px; background: #fff; border-radius: 6px; border-left: 6px solid #9aa5b1; }
section.pass { border-left-color: #2e9d57; }
section.warning { border-left-color: #d8a31a; }
section.fail { border-left-color: #c93c3c; }
.outcome { text-transform: uppercase; font-size: 12px; letter-spacing: 0.08em; }
table { border-collapse: collapse; width: 100%; }
td { padding: 4px 8px; vertical-align: top; border-top: 1px solid #e4e7eb; }
td.level { width: 80px; font-weight: bold; }
.entry-fail td.level { color: #c93c3c; }
.entry-warning td.level { color: #d8a31a; }
.entry-pass td.level { color: #2e9d57; }
img.artifact { max-width: 480px; display: block; margin-top: 6px; }
</style>
</head>
<body>
<header>
<h1>{{ .Title }}</h1>
<p class="suite">{{ .Name }}</p>
<p class="meta">Run {{ .RunID }} · started {{ .Started.Format "2006-01-02 15:04:05" }} · took {{ .Duration }}</p>
<p class="totals"><span class="total">Total: {{ .Total }}</span><span class="passed">Passed: {{ .Passed }}</span><span class="warned">Warnings: {{ .Warned }}</span><span class="failed">Failed: {{ .Failed }}</span></p>
</header>
{{ range .Steps }}
<section class="step {{ .Status }}" id="{{ .Name }}">
<h2>{{ .Name }} <span class="outcome">{{ .Status }}</span></h2>
{{ if .Description }}<div class="description">{{ markdown .Description }}</div>{{ end }}
<table>
{{ range .Entries }}
<tr class="entry entry-{{ .Level }}">
<td class="time">{{ stamp .Time }}</td>
<td class="level">{{ .Level }}</td>
<td class="message">{{ .Message }}{{ if .Artifact }}<a href="{{ .Artifact }}"><img class="artifact" src="{{ .Artifact }}" alt="{{ .Artifact }}" /></a>{{ end }}</td>
</tr>
{{ end }}
</table>
</section>
{{ end }}
</body>
</html>
`))

func writeHTML(dst string, doc document) error {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, doc); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	if err := os.WriteFile(dst, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", dst, err)
	}
	return nil
}

func writeJSON(dst string, doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("failed to write summary %s: %w", dst, err)
	}
	return nil
}
