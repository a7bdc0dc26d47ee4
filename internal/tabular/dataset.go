package tabular

import (
	"encoding/csv"
	"strings"
)

// Row is one ordered record of cell values.
type Row []string

// Dataset is an immutable, ordered view of one delimited file.
type Dataset struct {
	Path   string
	Header []string
	Rows   []Row
}

func (d *Dataset) RowCount() int { return len(d.Rows) }

// Sample returns up to limit leading rows. The returned slice aliases the
// dataset and must not be mutated.
func (d *Dataset) Sample(limit int) []Row {
	if limit <= 0 || limit >= len(d.Rows) {
		return d.Rows
	}
	return d.Rows[:limit]
}

// RenderCSV renders the header plus up to rowLimit rows back to CSV text,
// used when handing row content to a model backend.
func (d *Dataset) RenderCSV(rowLimit int) string {
	var builder strings.Builder
	writer := csv.NewWriter(&builder)
	_ = writer.Write(d.Header)
	for _, row := range d.Sample(rowLimit) {
		_ = writer.Write(row)
	}
	writer.Flush()
	return builder.String()
}
