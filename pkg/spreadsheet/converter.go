package spreadsheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Converter turns an uploaded file on disk into row records.
type Converter interface {
	Convert(path string) ([]Record, error)
}

// ConversionError means the file could not be read as a spreadsheet.
type ConversionError struct {
	Err error
}

func (e *ConversionError) Error() string {
	return "unable to read spreadsheet: " + e.Err.Error()
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

var (
	ErrNoSheets          = errors.New("workbook has no sheets")
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format, upload .xlsx or .csv")
)

var numberPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

type FileConverter struct{}

// Ensure FileConverter implements Converter
var _ Converter = &FileConverter{}

func NewFileConverter() *FileConverter {
	return &FileConverter{}
}

// Convert reads the first sheet of the workbook at path (or the whole file
// for .csv). The first row names the columns; every following non-blank row
// becomes one record. Workbook cells keep the type stored in the file; CSV
// cells are typed by their text.
func (c *FileConverter) Convert(path string) ([]Record, error) {
	var (
		records []Record
		err     error
	)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		var rows [][]string
		if rows, err = readCSV(path); err == nil {
			records = rowsToRecords(rows, csvValue)
		}
	case ".xls", ".ods":
		err = fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	default:
		records, err = readWorkbook(path)
	}
	if err != nil {
		return nil, &ConversionError{Err: err}
	}

	return records, nil
}

func readWorkbook(path string) ([]Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}

	// Raw values so numeric cells are not run through their display format
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rowsToRecords(rows, workbookValue(f, sheets[0])), nil
}

// workbookValue types a cell by what the workbook stores for it. Text cells
// stay text even when they look like numbers or booleans.
func workbookValue(f *excelize.File, sheet string) cellValue {
	return func(row, col int, raw string) interface{} {
		axis, err := excelize.CoordinatesToCellName(col+1, row+1)
		if err != nil {
			return raw
		}
		cellType, err := f.GetCellType(sheet, axis)
		if err != nil {
			return raw
		}

		switch cellType {
		case excelize.CellTypeBool:
			return raw == "1" || strings.EqualFold(raw, "TRUE")
		case excelize.CellTypeNumber, excelize.CellTypeUnset:
			// no type attribute means a number, including numeric formula results
			if n, ok := parseNumber(raw); ok {
				return n
			}
			return raw
		default:
			return raw
		}
	}
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}

// cellValue converts one non-empty cell. row and col are zero-based.
type cellValue func(row, col int, raw string) interface{}

func csvValue(_, _ int, raw string) interface{} {
	return parseCell(raw)
}

func rowsToRecords(rows [][]string, value cellValue) []Record {
	records := make([]Record, 0)
	if len(rows) == 0 {
		return records
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	headers := buildHeaders(rows[0], width)

	for r := 1; r < len(rows); r++ {
		var rec Record
		for i, cell := range rows[r] {
			if cell == "" {
				continue
			}
			rec = append(rec, Field{Key: headers[i], Value: value(r, i, cell)})
		}
		if len(rec) == 0 {
			continue
		}
		records = append(records, rec)
	}
	return records
}

// buildHeaders names every column up to width. Blank header cells become
// __EMPTY and repeated names get a _N suffix, first occurrence unchanged.
func buildHeaders(row []string, width int) []string {
	headers := make([]string, width)
	counts := make(map[string]int, width)

	for i := 0; i < width; i++ {
		val := ""
		if i < len(row) {
			val = row[i]
		}
		if val == "" {
			val = "__EMPTY"
		}

		name := val
		counter := counts[val]
		if counter == 0 {
			counts[val] = 1
		} else {
			for {
				name = fmt.Sprintf("%s_%d", val, counter)
				counter++
				if counts[name] == 0 {
					break
				}
			}
			counts[val] = counter
			counts[name] = 1
		}
		headers[i] = name
	}
	return headers
}

func parseCell(cell string) interface{} {
	switch strings.ToUpper(cell) {
	case "TRUE":
		return true
	case "FALSE":
		return false
	}

	if n, ok := parseNumber(cell); ok {
		return n
	}
	return cell
}

func parseNumber(cell string) (float64, bool) {
	if !numberPattern.MatchString(cell) {
		return 0, false
	}
	n, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
