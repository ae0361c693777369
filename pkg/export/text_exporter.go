package export

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"
)

// TextExporter renders documents as aligned plain-text tables.
type TextExporter struct{}

// NewTextExporter constructs a text exporter.
func NewTextExporter() *TextExporter {
	return &TextExporter{}
}

// Extension implements Renderer.
func (e *TextExporter) Extension() string { return "txt" }

// Render writes the title, notes and each table with a dashed rule under the header.
func (e *TextExporter) Render(doc Document) ([]byte, error) {
	if err := validate(doc); err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	if doc.Title != "" {
		fmt.Fprintln(buf, doc.Title)
		fmt.Fprintln(buf, strings.Repeat("=", len(doc.Title)))
	}
	for _, note := range doc.Notes {
		fmt.Fprintln(buf, note)
	}

	for _, data := range doc.Datasets {
		fmt.Fprintln(buf)
		if data.Name != "" {
			fmt.Fprintln(buf, data.Name)
		}
		tw := tabwriter.NewWriter(buf, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(data.Headers, "\t"))
		rules := make([]string, len(data.Headers))
		for i, h := range data.Headers {
			rules[i] = strings.Repeat("-", len(h))
		}
		fmt.Fprintln(tw, strings.Join(rules, "\t"))
		for _, row := range data.Rows {
			cells := make([]string, len(data.Headers))
			for i, h := range data.Headers {
				cells[i] = row[h]
			}
			fmt.Fprintln(tw, strings.Join(cells, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return nil, fmt.Errorf("render text table: %w", err)
		}
		if len(data.Rows) == 0 {
			fmt.Fprintln(buf, "(none)")
		}
	}
	return buf.Bytes(), nil
}
