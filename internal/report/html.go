package report

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"
)

var pageTemplate = template.Must(template.New("predictions").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8" />
<meta name="viewport" content="width=device-width, initial-scale=1" />
<title>Sports Model Predictions</title>
<style>
:root { --bg: #ffffff; --text: #111827; --muted: #4b5563; --border: #e5e7eb; --chip-bg: #f3f4f6; }
body { margin: 28px; background: var(--bg); color: var(--text); font-family: Inter, Arial, sans-serif; }
h1 { font-size: 24px; margin: 0 0 12px 0; }
p.summary { margin: 0 0 16px 0; color: var(--muted); }
.codechip { display: inline-block; background: var(--chip-bg); border: 1px solid var(--border); padding: 4px 8px; border-radius: 8px; font-family: ui-monospace, monospace; font-size: 12px; }
.table-wrap { overflow-x: auto; border: 1px solid var(--border); border-radius: 12px; }
table { border-collapse: separate; border-spacing: 0; width: 100%; font-size: 14px; }
caption { caption-side: top; text-align: left; font-size: 18px; font-weight: 700; margin: 0 0 8px 0; }
thead th { text-align: left; background-color: #f5f7fb; padding: 12px 10px; font-weight: 600; border-bottom: 1px solid #e5e8ef; position: sticky; top: 0; }
tbody td { padding: 10px; border-bottom: 1px solid #f0f2f7; }
tbody tr:hover { background-color: #fafbff; }
</style>
</head>
<body>
  <h1>Sports Model Predictions</h1>
  <p class="summary">
    American odds shown in common book increments (e.g., <span class="codechip">-110</span>, <span class="codechip">+120</span>).
    Generated {{.Generated}}.
  </p>
  <div class="table-wrap">
  <table>
    <caption>Multi-League Model Predictions (American Odds)</caption>
    <thead><tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr></thead>
    <tbody>
    {{- range .Rows}}
      <tr>{{range .Cells}}<td>{{.}}</td>{{end}}</tr>
    {{- else}}
      <tr><td colspan="{{len .Headers}}">No predictions in the current horizon.</td></tr>
    {{- end}}
    </tbody>
  </table>
  </div>
</body>
</html>
`))

type page struct {
	Generated string
	Headers   []string
	Rows      []Row
}

// WriteHTML renders rows as a standalone page
func WriteHTML(w io.Writer, rows []Row, generated time.Time) error {
	err := pageTemplate.Execute(w, page{
		Generated: generated.UTC().Format("2006-01-02 15:04 MST"),
		Headers:   Headers,
		Rows:      rows,
	})
	if err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

// WriteHTMLFile renders rows to path, creating parent directories
func WriteHTMLFile(path string, rows []Row, generated time.Time) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteHTML(w, rows, generated)
	})
}

func writeFile(path string, render func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
