package report

import (
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Renderer writes reports under a base output directory. Each run gets its
// own subdirectory named after its timestamp and ID, and the directory index
// is regenerated after every run.
type Renderer struct {
	outputDir string
}

func NewRenderer(outputDir string) *Renderer {
	if outputDir == "" {
		outputDir = "output"
	}
	return &Renderer{outputDir: outputDir}
}

// RenderedPaths lists the files one run produced.
type RenderedPaths struct {
	Dir  string
	HTML string
	Text string
	JSON string
}

// RenderAll writes the HTML, text and JSON renditions of the report and
// refreshes the index page. It returns the paths it wrote.
func (r *Renderer) RenderAll(rep *Report) (*RenderedPaths, error) {
	dirName := fmt.Sprintf("%s-%s", rep.GeneratedAt.Format("20060102-150405"), shortID(rep.ID))
	dir := filepath.Join(r.outputDir, dirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create report dir: %w", err)
	}

	paths := &RenderedPaths{
		Dir:  dir,
		HTML: filepath.Join(dir, "report.html"),
		Text: filepath.Join(dir, "report.txt"),
		JSON: filepath.Join(dir, "report.json"),
	}

	if err := r.renderHTML(rep, paths.HTML); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	if err := os.WriteFile(paths.Text, []byte(RenderText(rep)), 0o644); err != nil {
		return nil, fmt.Errorf("render text: %w", err)
	}
	if err := r.renderJSON(rep, paths.JSON); err != nil {
		return nil, fmt.Errorf("render json: %w", err)
	}
	if err := r.RenderIndex(); err != nil {
		return nil, fmt.Errorf("render index: %w", err)
	}
	return paths, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (r *Renderer) renderJSON(rep *Report, path string) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"add1": func(i int) int { return i + 1 },
	"join": strings.Join,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Trending News {{.GeneratedAt.Format "2006-01-02 15:04"}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; max-width: 860px; margin: 2rem auto; padding: 0 1rem; color: #1a1a1a; }
h1 { font-size: 1.4rem; }
.meta { color: #666; font-size: 0.9rem; margin-bottom: 1.5rem; }
ol { padding-left: 1.6rem; }
li { margin: 0.6rem 0; }
.source { color: #888; font-size: 0.85rem; }
.new { color: #c0392b; font-weight: 600; font-size: 0.8rem; }
.keywords { color: #2980b9; font-size: 0.8rem; }
.analysis { background: #f6f8fa; border-radius: 6px; padding: 1rem; margin-top: 1.5rem; white-space: pre-wrap; }
.failed { color: #c0392b; }
</style>
</head>
<body>
<h1>Trending News</h1>
<div class="meta">
Generated {{.GeneratedAt.Format "2006-01-02 15:04:05"}} &middot;
{{len .News.SourcesFetched}} sources fetched{{if .News.SourcesFailed}},
<span class="failed">{{len .News.SourcesFailed}} failed ({{join .News.SourcesFailed ", "}})</span>{{end}} &middot;
{{.News.TotalRaw}} raw, {{.News.TotalFiltered}} after filtering
</div>
<ol>
{{range $i, $item := .News.Items}}<li>
<a href="{{$item.URL}}">{{$item.Title}}</a>{{if $.IsNewTitle $item.Title}} <span class="new">NEW</span>{{end}}
<div class="source">{{$item.SourceName}}{{if $item.MatchedKeywords}} &middot; <span class="keywords">{{join $item.MatchedKeywords ", "}}</span>{{end}}</div>
</li>
{{end}}</ol>
{{if and .Analysis .Analysis.Enabled}}<div class="analysis"><strong>Analysis ({{.Analysis.Provider}}/{{.Analysis.Model}})</strong>

{{if .Analysis.Themes}}Themes: {{join .Analysis.Themes ", "}}

{{end}}{{.Analysis.Summary}}</div>{{end}}
</body>
</html>
`))

// htmlReport adapts Report for the template, exposing the new-title check.
type htmlReport struct {
	*Report
}

func (h htmlReport) IsNewTitle(title string) bool { return h.isNew(title) }

func (r *Renderer) renderHTML(rep *Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create html file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return htmlTemplate.Execute(f, htmlReport{rep})
}

// RenderText produces the plain text rendition.
func RenderText(rep *Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Trending News - %s\n", rep.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Sources: %d fetched", len(rep.News.SourcesFetched))
	if len(rep.News.SourcesFailed) > 0 {
		fmt.Fprintf(&b, ", %d failed (%s)", len(rep.News.SourcesFailed), strings.Join(rep.News.SourcesFailed, ", "))
	}
	fmt.Fprintf(&b, "\nItems: %d raw, %d after filtering\n\n", rep.News.TotalRaw, rep.News.TotalFiltered)

	for i, item := range rep.News.Items {
		marker := ""
		if rep.isNew(item.Title) {
			marker = " [new]"
		}
		fmt.Fprintf(&b, "%2d. %s%s\n    %s", i+1, item.Title, marker, item.SourceName)
		if len(item.MatchedKeywords) > 0 {
			fmt.Fprintf(&b, " | %s", strings.Join(item.MatchedKeywords, ", "))
		}
		fmt.Fprintf(&b, "\n    %s\n", item.URL)
	}

	if rep.Analysis != nil && rep.Analysis.Enabled {
		fmt.Fprintf(&b, "\n--- Analysis (%s/%s) ---\n", rep.Analysis.Provider, rep.Analysis.Model)
		if len(rep.Analysis.Themes) > 0 {
			fmt.Fprintf(&b, "Themes: %s\n", strings.Join(rep.Analysis.Themes, ", "))
		}
		fmt.Fprintf(&b, "%s\n", rep.Analysis.Summary)
	}
	return b.String()
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Trending News Reports</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; max-width: 640px; margin: 2rem auto; padding: 0 1rem; }
li { margin: 0.4rem 0; }
</style>
</head>
<body>
<h1>Reports</h1>
<ul>
{{range .}}<li><a href="{{.}}/report.html">{{.}}</a></li>
{{end}}</ul>
</body>
</html>
`))

// RenderIndex regenerates index.html from the run directories currently on
// disk, newest first.
func (r *Renderer) RenderIndex() error {
	entries, err := os.ReadDir(r.outputDir)
	if err != nil {
		return fmt.Errorf("read output dir: %w", err)
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dirs)))

	f, err := os.Create(filepath.Join(r.outputDir, "index.html"))
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer func() { _ = f.Close() }()
	return indexTemplate.Execute(f, dirs)
}
