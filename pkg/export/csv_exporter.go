package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Dataset defines tabular export content. Name captions the table when a
// document holds more than one.
type Dataset struct {
	Name    string
	Headers []string
	Rows    []map[string]string
}

// Document is a titled sequence of tables.
type Document struct {
	Title    string
	Notes    []string
	Datasets []Dataset
}

// Renderer turns a document into file bytes.
type Renderer interface {
	Render(doc Document) ([]byte, error)
	Extension() string
}

func validate(doc Document) error {
	if len(doc.Datasets) == 0 {
		return fmt.Errorf("document %q has no tables", doc.Title)
	}
	for _, ds := range doc.Datasets {
		if len(ds.Headers) == 0 {
			return fmt.Errorf("table %q requires at least one header", ds.Name)
		}
	}
	return nil
}

// CSVExporter renders documents into CSV bytes. Tables after the first are
// preceded by a blank record and, when named, a caption record.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Extension implements Renderer.
func (e *CSVExporter) Extension() string { return "csv" }

// Render produces CSV encoded bytes for the document.
func (e *CSVExporter) Render(doc Document) ([]byte, error) {
	if err := validate(doc); err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	blank := []string{""}
	for i, data := range doc.Datasets {
		if i > 0 {
			if err := writer.Write(blank); err != nil {
				return nil, fmt.Errorf("write csv separator: %w", err)
			}
		}
		if len(doc.Datasets) > 1 && data.Name != "" {
			if err := writer.Write([]string{data.Name}); err != nil {
				return nil, fmt.Errorf("write csv caption: %w", err)
			}
		}
		if err := writer.Write(data.Headers); err != nil {
			return nil, fmt.Errorf("write csv headers: %w", err)
		}
		for _, row := range data.Rows {
			record := make([]string, len(data.Headers))
			for j, header := range data.Headers {
				record[j] = row[header]
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("write csv row: %w", err)
			}
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
