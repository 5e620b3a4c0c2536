package report

import (
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"

	"github.com/ezoic/coffeestats/dataset"
	csErrors "github.com/ezoic/coffeestats/pkg/errors"
)

// ResultsSheet names the worksheet of an .xlsx results table.
const ResultsSheet = "results"

// WriteResultsTable writes the named columns of t to path as .csv or .xlsx.
// Missing numeric cells are left empty. With no columns every column is written.
func WriteResultsTable(path string, t *dataset.Table, columns []string) error {
	if len(columns) == 0 {
		columns = t.Columns()
	}
	sub, err := t.Select(columns...)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return csErrors.Wrap(err, "create results directory")
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return writeCSV(path, sub, columns)
	case ".xlsx":
		return writeXLSX(path, sub, columns)
	default:
		return csErrors.NewValueError("WriteResultsTable", "unsupported results extension "+ext)
	}
}

func writeCSV(path string, t *dataset.Table, columns []string) (err error) {
	cols := make([]series.Series, len(columns))
	for i, name := range columns {
		vals, err := t.Strings(name)
		if err != nil {
			return err
		}
		cols[i] = series.New(vals, series.String, name)
	}
	df := dataframe.New(cols...)
	if df.Err != nil {
		return csErrors.Wrap(df.Err, "build results frame")
	}

	f, err := os.Create(path)
	if err != nil {
		return csErrors.Wrapf(err, "create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := df.WriteCSV(f); err != nil {
		return csErrors.Wrapf(err, "write %s", path)
	}
	return nil
}

func writeXLSX(path string, t *dataset.Table, columns []string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ResultsSheet); err != nil {
		return csErrors.Wrap(err, "name results sheet")
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return csErrors.Wrap(err, "create header style")
	}

	for j, name := range columns {
		cell, err := excelize.CoordinatesToCellName(j+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(ResultsSheet, cell, name); err != nil {
			return err
		}
		if err := f.SetCellStyle(ResultsSheet, cell, cell, bold); err != nil {
			return err
		}

		kind, err := t.Kind(name)
		if err != nil {
			return err
		}
		if kind == dataset.Numeric {
			vals, err := t.Float(name)
			if err != nil {
				return err
			}
			for i, v := range vals {
				if math.IsNaN(v) {
					continue
				}
				if err := setCell(f, j+1, i+2, v); err != nil {
					return err
				}
			}
			continue
		}
		vals, err := t.Strings(name)
		if err != nil {
			return err
		}
		for i, v := range vals {
			if err := setCell(f, j+1, i+2, v); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return csErrors.Wrapf(err, "save %s", path)
	}
	return nil
}

func setCell(f *excelize.File, col, row int, v interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(ResultsSheet, cell, v)
}
