package report

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV writes a header line and one line per row
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(r.Cells()); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes rows to path, creating parent directories
func WriteCSVFile(path string, rows []Row) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteCSV(w, rows)
	})
}
