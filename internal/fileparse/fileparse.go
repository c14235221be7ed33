// Package fileparse converts uploaded tabular files (CSV, XLSX/XLS, JSON)
// into a uniform ordered sequence of row records. It only ever reads the
// file it is given.
package fileparse

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"

	"github.com/opendatahub/dataset-api/internal/core/domain"
)

// Format is a supported input file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatJSON Format = "json"
)

// Detect resolves the format from the file name's extension, falling back to
// the declared MIME type. Returns domain.ErrUnsupportedFormat for anything
// else.
func Detect(filename, contentType string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".xls":
		return FormatXLS, nil
	case ".json":
		return FormatJSON, nil
	}

	mime, _, _ := strings.Cut(contentType, ";")
	switch strings.TrimSpace(mime) {
	case "text/csv":
		return FormatCSV, nil
	case "application/json":
		return FormatJSON, nil
	}

	return "", domain.ErrUnsupportedFormat
}

// Parse reads the file at path and returns one record per data row.
func Parse(path string, format Format) ([]domain.Row, error) {
	switch format {
	case FormatCSV:
		return parseCSV(path)
	case FormatXLSX:
		return parseXLSX(path)
	case FormatXLS:
		return parseXLS(path)
	case FormatJSON:
		return parseJSON(path)
	}
	return nil, domain.ErrUnsupportedFormat
}

// parseCSV stream-parses the file, using the header row as record keys.
// Short rows are padded with empty strings; long rows keep only the headed
// columns.
func parseCSV(path string) ([]domain.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return []domain.Row{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	var rows []domain.Row
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		row := make(domain.Row, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}
	if rows == nil {
		rows = []domain.Row{}
	}
	return rows, nil
}

// parseXLSX reads the first sheet only (positional index 0) using the top
// row as header. Further sheets are not inspectable through this path.
func parseXLSX(path string) ([]domain.Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return []domain.Row{}, nil
	}

	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(cells) == 0 {
		return []domain.Row{}, nil
	}

	header := cells[0]
	rows := make([]domain.Row, 0, len(cells)-1)
	for _, record := range cells[1:] {
		row := make(domain.Row, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// parseXLS reads a legacy BIFF workbook, first sheet only, top row as
// header. Cell values come back in their display form.
func parseXLS(path string) ([]domain.Row, error) {
	wb, err := xls.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	if wb.GetNumberSheets() == 0 {
		return []domain.Row{}, nil
	}
	sh, err := wb.GetSheet(0)
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}

	headerRow, err := sh.GetRow(0)
	if err != nil {
		return []domain.Row{}, nil
	}
	header := make([]string, 0)
	for _, cell := range headerRow.GetCols() {
		header = append(header, cell.GetString())
	}

	rows := make([]domain.Row, 0)
	for i := 1; i <= sh.GetNumberRows(); i++ {
		r, err := sh.GetRow(i)
		if err != nil {
			continue
		}
		cells := r.GetCols()
		if len(cells) == 0 {
			continue
		}
		row := make(domain.Row, len(header))
		for j, col := range header {
			if j < len(cells) {
				row[col] = cells[j].GetString()
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// parseJSON decodes the whole file. A single object is wrapped into a
// one-element sequence so downstream code always sees an array.
func parseJSON(path string) ([]domain.Row, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	switch v := value.(type) {
	case map[string]any:
		return []domain.Row{v}, nil
	case []any:
		rows := make([]domain.Row, 0, len(v))
		for i, el := range v {
			obj, ok := el.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("parse json: element %d is not an object", i)
			}
			rows = append(rows, obj)
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("parse json: top-level value must be an object or array")
	}
}
