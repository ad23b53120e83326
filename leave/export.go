package leave

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ExportHeader is the first row of every export file.
var ExportHeader = []string{"ID", "Employee ID", "Start", "End", "Type", "Reason"}

// ExportFileName returns "<id>_leaves.csv". Ids that would escape the export
// directory are refused.
func ExportFileName(id EmployeeID) (string, error) {
	s := string(id)
	if s == "" || s == "." || s == ".." || strings.ContainsAny(s, `/\`) {
		return "", fmt.Errorf("employee id %q is not usable as a file name", s)
	}
	return s + "_leaves.csv", nil
}

// WriteCSV writes records as CSV, header first.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			strconv.FormatInt(int64(r.ID), 10),
			string(r.EmployeeID),
			r.Period.Start.String(),
			r.Period.End.String(),
			r.Type,
			r.Reason,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeExportFile(path string, records []Record) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return WriteCSV(f, records)
}
