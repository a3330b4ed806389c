package export

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Table is a titled dataset. Grid exports produce one table per class or teacher.
type Table struct {
	Title string
	Data  Dataset
}

// Record returns the row values ordered by the dataset headers.
func (d Dataset) Record(row map[string]string) []string {
	record := make([]string, len(d.Headers))
	for i, header := range d.Headers {
		record[i] = row[header]
	}
	return record
}

// ContentType maps an export format to its MIME type.
func ContentType(format string) string {
	switch format {
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/csv"
	}
}

// Supported export formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)
