package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/a-h/templ"

	"conflictsuite/internal/manifest"
)

const pageStyle = `body{font-family:system-ui,sans-serif;margin:2rem;color:#222}
table{border-collapse:collapse;margin:0 0 1.5rem}
th,td{border:1px solid #ccc;padding:.25rem .6rem;text-align:left}
td.n{text-align:right}
.pass{color:#1a7f37}.fail{color:#cf222e;font-weight:bold}.skip{color:#6e7781}
code{font-size:.85rem}`

// Page renders the manifest as a standalone HTML document.
func Page(view View) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &htmlWriter{w: w}
		p.raw("<!DOCTYPE html><html><head><meta charset=\"utf-8\"><title>")
		p.text(view.Title)
		p.raw("</title><style>" + pageStyle + "</style></head><body><h1>")
		p.text(view.Title)
		p.raw("</h1>")

		p.raw("<p>Output hash <code>")
		p.text(view.OutputHash)
		p.raw("</code>")
		if view.ImageHash != "" {
			p.raw("<br>Image hash <code>")
			p.text(view.ImageHash)
			p.raw("</code>")
		}
		p.raw("</p>")

		p.raw("<h2>Totals</h2><table>")
		p.pair("Raw records", view.Totals.RawRecords)
		p.pair("Base examples", view.Totals.BaseExamples)
		p.pair("Variants", view.Totals.Variants)
		p.pair("Dropped", view.Totals.Dropped)
		p.raw("</table>")

		p.raw("<h2>Integrity checks</h2><table><tr><th>Check</th><th>Status</th></tr>")
		for _, row := range view.Checks {
			p.raw("<tr><td>")
			p.text(row.Label)
			p.raw(`</td><td class="` + templ.EscapeString(row.Note) + `">`)
			p.text(row.Note)
			p.raw("</td></tr>")
		}
		p.raw("</table>")

		p.table("Splits", view.Splits, false)
		p.table("Operators", view.Operators, false)
		p.table("Families", view.Families, false)
		p.table("Severities", view.Severities, true)
		p.table("Drops", view.Drops, false)
		p.table("Fallbacks", view.Fallbacks, false)

		p.raw("<h2>Configuration</h2><table>")
		p.field("Seed", fmt.Sprint(view.Echo.Seed))
		p.field("Families", strings.Join(view.Echo.Families, ", "))
		p.field("Held-out family", view.Echo.HeldOutFamily)
		p.field("Held-out severity", fmt.Sprint(view.Echo.HeldOutSeverity))
		p.field("Corruption family", view.Echo.Vision.CorruptionFamily)
		p.raw("</table></body></html>\n")
		return p.err
	})
}

// htmlWriter keeps the first write error so the page body reads straight through.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (p *htmlWriter) raw(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}

func (p *htmlWriter) text(s string) {
	p.raw(templ.EscapeString(s))
}

func (p *htmlWriter) pair(label string, n int) {
	p.raw("<tr><th>")
	p.text(label)
	p.raw(`</th><td class="n">` + fmt.Sprint(n) + "</td></tr>")
}

func (p *htmlWriter) field(label, value string) {
	p.raw("<tr><th>")
	p.text(label)
	p.raw("</th><td>")
	p.text(value)
	p.raw("</td></tr>")
}

func (p *htmlWriter) table(title string, rows []Row, notes bool) {
	if len(rows) == 0 {
		return
	}
	p.raw("<h2>")
	p.text(title)
	p.raw("</h2><table><tr><th></th><th>Count</th><th>Share</th>")
	if notes {
		p.raw("<th>Note</th>")
	}
	p.raw("</tr>")
	for _, row := range rows {
		p.raw("<tr><td>")
		p.text(row.Label)
		p.raw(`</td><td class="n">` + fmt.Sprint(row.Count) + `</td><td class="n">`)
		p.text(row.Share)
		p.raw("</td>")
		if notes {
			p.raw("<td>")
			p.text(row.Note)
			p.raw("</td>")
		}
		p.raw("</tr>")
	}
	p.raw("</table>")
}

// RenderHTML renders the report page for man into a string.
func RenderHTML(ctx context.Context, man manifest.Manifest) (string, error) {
	var builder strings.Builder
	if err := Page(NewView(man)).Render(ctx, &builder); err != nil {
		return "", err
	}
	return builder.String(), nil
}

// WriteHTML renders the report page for man to path.
func WriteHTML(ctx context.Context, path string, man manifest.Manifest) error {
	html, err := RenderHTML(ctx, man)
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
