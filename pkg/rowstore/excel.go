package rowstore

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/xuri/excelize/v2"
)

// ExcelStore persists rows in a local .xlsx workbook, one sheet per logical
// table. The workbook is opened and saved on every operation; a process-wide
// mutex serializes access since excelize files are not safe for concurrent
// mutation.
type ExcelStore struct {
	path string
	mu   sync.Mutex
}

// NewExcelStore opens (or creates) the workbook at path and ensures the
// given sheets exist.
func NewExcelStore(path string, sheets ...string) (*ExcelStore, error) {
	s := &ExcelStore{path: path}

	f, err := s.open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	changed := false
	for _, sheet := range sheets {
		if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
			if _, err := f.NewSheet(sheet); err != nil {
				return nil, fmt.Errorf("rowstore: create sheet %s: %w", sheet, err)
			}
			changed = true
		}
	}
	if changed {
		if err := f.SaveAs(path); err != nil {
			return nil, fmt.Errorf("rowstore: save workbook: %w", err)
		}
	}
	return s, nil
}

func (s *ExcelStore) open() (*excelize.File, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return excelize.NewFile(), nil
	}
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("rowstore: open workbook %s: %w", s.path, err)
	}
	return f, nil
}

// Rows returns all rows of the sheet
func (s *ExcelStore) Rows(_ context.Context, table string) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(table)
	if err != nil {
		return nil, fmt.Errorf("rowstore: read sheet %s: %w", table, err)
	}
	return rows, nil
}

// Append writes the row after the last used row of the sheet
func (s *ExcelStore) Append(_ context.Context, table string, row []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.open()
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := f.GetRows(table)
	if err != nil {
		return fmt.Errorf("rowstore: read sheet %s: %w", table, err)
	}

	if err := setRow(f, table, len(rows)+1, row); err != nil {
		return err
	}
	return s.save(f)
}

// Update overwrites the row at the given 1-based index
func (s *ExcelStore) Update(_ context.Context, table string, rowIndex int, row []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.open()
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := f.GetRows(table)
	if err != nil {
		return fmt.Errorf("rowstore: read sheet %s: %w", table, err)
	}
	if rowIndex < 1 || rowIndex > len(rows) {
		return ErrRowNotFound
	}

	if err := setRow(f, table, rowIndex, row); err != nil {
		return err
	}
	return s.save(f)
}

func (s *ExcelStore) save(f *excelize.File) error {
	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("rowstore: save workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, rowIndex int, row []string) error {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	cell, err := excelize.CoordinatesToCellName(1, rowIndex)
	if err != nil {
		return fmt.Errorf("rowstore: cell coordinates: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("rowstore: write row %d: %w", rowIndex, err)
	}
	return nil
}
