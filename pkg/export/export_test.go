package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable(title string) Table {
	return Table{
		Title: title,
		Data: Dataset{
			Headers: []string{"Period", "SUNDAY"},
			Rows: []map[string]string{
				{"Period": "1", "SUNDAY": "Math (T1)"},
				{"Period": "2", "SUNDAY": "BREAK"},
			},
		},
	}
}

func TestCSVExporterSingleTable(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleTable(""))
	require.NoError(t, err)
	assert.Equal(t, "Period,SUNDAY\n1,Math (T1)\n2,BREAK\n", string(out))
}

func TestCSVExporterTitledTables(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleTable("10A (Grade 10)"), sampleTable("10B (Grade 10)"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	require.Len(t, lines, 9)
	assert.Equal(t, "10A (Grade 10)", lines[0])
	assert.Equal(t, "", lines[4])
	assert.Equal(t, "10B (Grade 10)", lines[5])
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render()
	assert.Error(t, err)

	_, err = NewCSVExporter().Render(Table{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	long := sampleTable("Teacher grid")
	long.Data.Rows = append(long.Data.Rows, map[string]string{
		"Period": "3",
		"SUNDAY": strings.Repeat("Very long subject name ", 20),
	})

	out, err := NewPDFExporter().Render("Timetable", sampleTable(""), long)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	_, err = NewPDFExporter().Render("Timetable")
	assert.Error(t, err)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", ContentType(FormatPDF))
	assert.Equal(t, "text/csv", ContentType(FormatCSV))
}
