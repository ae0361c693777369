package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() Document {
	return Document{
		Title: "Pace Summary FA24",
		Notes: []string{"Students: 3"},
		Datasets: []Dataset{
			{
				Name:    "Tracks",
				Headers: []string{"Pace", "Track", "Students"},
				Rows: []map[string]string{
					{"Pace": "1", "Track": "A", "Students": "2"},
					{"Pace": "2", "Track": "C", "Students": "1"},
				},
			},
			{
				Name:    "Courses",
				Headers: []string{"Course", "Total"},
				Rows:    []map[string]string{{"Course": "M 117", "Total": "2"}},
			},
		},
	}
}

func TestCSVExporterRendersEveryTable(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDocument())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	assert.Equal(t, []string{
		"Tracks",
		"Pace,Track,Students",
		"1,A,2",
		"2,C,1",
		"",
		"Courses",
		"Course,Total",
		"M 117,2",
	}, lines)
}

func TestCSVExporterSingleTableHasNoCaption(t *testing.T) {
	doc := Document{Datasets: []Dataset{{Name: "ignored", Headers: []string{"A"}, Rows: []map[string]string{{"A": "x"}}}}}
	out, err := NewCSVExporter().Render(doc)
	require.NoError(t, err)
	assert.Equal(t, "A\nx\n", string(out))
}

func TestExportersRejectEmptyDocuments(t *testing.T) {
	for _, r := range []Renderer{NewCSVExporter(), NewPDFExporter(), NewTextExporter()} {
		_, err := r.Render(Document{Title: "empty"})
		assert.Error(t, err, r.Extension())
		_, err = r.Render(Document{Datasets: []Dataset{{Name: "no headers"}}})
		assert.Error(t, err, r.Extension())
	}
}

func TestTextExporterAlignsColumns(t *testing.T) {
	out, err := NewTextExporter().Render(sampleDocument())
	require.NoError(t, err)
	text := string(out)

	assert.True(t, strings.HasPrefix(text, "Pace Summary FA24\n=================\nStudents: 3\n"))
	assert.Contains(t, text, "Pace  Track  Students\n----  -----  --------\n1     A      2\n")
	assert.Contains(t, text, "Course  Total\n")
}

func TestTextExporterMarksEmptyTables(t *testing.T) {
	doc := Document{Datasets: []Dataset{{Headers: []string{"Kind"}}}}
	out, err := NewTextExporter().Render(doc)
	require.NoError(t, err)
	assert.Contains(t, string(out), "(none)")
}

func TestPDFExporterProducesPDF(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDocument())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}
