// Package export writes ResultSets to downloadable files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/paperrank/app/internal/domain"
)

const (
	// Filename is the suggested name for a CSV download.
	Filename = "paperrank_results.csv"
	// ContentType is the MIME type of WriteCSV output.
	ContentType = "text/csv; charset=utf-8"
)

// WriteCSV writes one header row and one row per result. Columns are the
// union of the results' keys in first-appearance order; a result without a
// column gets an empty cell.
func WriteCSV(w io.Writer, rs domain.ResultSet) error {
	cols := rs.Columns()
	cw := csv.NewWriter(w)

	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	row := make([]string, len(cols))
	for i, p := range rs {
		for j, col := range cols {
			v, _ := p.Value(col)
			row[j] = v
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
