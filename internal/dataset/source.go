package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// RowSource yields a header row and data rows from a tabular source.
type RowSource interface {
	Rows() (header []string, rows [][]string, err error)
}

// FileSource reads a tabular file, picking the reader by extension:
// .xlsx via excelize, anything else as CSV.
type FileSource struct {
	Path string
}

// NewFileSource creates a file-backed row source.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Rows implements RowSource.
func (f *FileSource) Rows() ([]string, [][]string, error) {
	switch strings.ToLower(filepath.Ext(f.Path)) {
	case ".xlsx":
		return f.readExcel()
	default:
		return f.readCSV()
	}
}

func (f *FileSource) readCSV() ([]string, [][]string, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // schemas differ in width, rows may be ragged

	all, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse dataset file: %w", err)
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("dataset file %s is empty", filepath.Base(f.Path))
	}

	return all[0], all[1:], nil
}

func (f *FileSource) readExcel() ([]string, [][]string, error) {
	file, err := excelize.OpenFile(f.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("dataset file %s has no sheets", filepath.Base(f.Path))
	}

	// Prefer a sheet that looks like a game log, otherwise take the first.
	sheet := sheets[0]
	for _, name := range sheets {
		if rows, err := file.GetRows(name); err == nil && len(rows) > 1 {
			text := strings.ToLower(strings.Join(rows[0], " "))
			if strings.Contains(text, "team") || strings.Contains(text, "fran") {
				sheet = name
				break
			}
		}
	}

	rows, err := file.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("dataset file %s is empty", filepath.Base(f.Path))
	}

	return rows[0], rows[1:], nil
}

// SliceSource serves an in-memory table. It exists so tests and callers with
// synthetic data can feed the loader without touching the filesystem.
type SliceSource struct {
	Header  []string
	Records [][]string
	Err     error
}

// Rows implements RowSource.
func (s *SliceSource) Rows() ([]string, [][]string, error) {
	if s.Err != nil {
		return nil, nil, s.Err
	}
	return s.Header, s.Records, nil
}
