package dataset

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/xuri/excelize/v2"

	csErrors "github.com/ezoic/coffeestats/pkg/errors"
	"github.com/ezoic/coffeestats/pkg/log"
)

// LoadOptions controls how a file is turned into a Table.
type LoadOptions struct {
	// Sheet selects the worksheet of an .xlsx file. Empty means the first sheet.
	Sheet string
	// Delimiter overrides the CSV field separator. 0 means ',' (or '\t' for .tsv).
	Delimiter rune
	// Required columns must be present in the header.
	Required []string
	// Numeric columns must be present and parse as numbers in every non-empty cell.
	Numeric []string
}

// Load reads path into a Table, failing if any required column is missing.
func Load(path string, required ...string) (*Table, error) {
	return LoadWithOptions(path, LoadOptions{Required: required})
}

// LoadWithOptions reads a .csv, .tsv or .xlsx file into a Table. The first row is
// the header. A column whose every non-empty cell parses as a number is numeric,
// empty cells becoming NaN; any other column is categorical.
func LoadWithOptions(path string, opts LoadOptions) (*Table, error) {
	logger := log.GetLoggerWithName("dataset")

	var (
		header []string
		rows   [][]string
		err    error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", ".tsv", ".txt":
		delim := opts.Delimiter
		if delim == 0 {
			delim = ','
			if ext == ".tsv" {
				delim = '\t'
			}
		}
		header, rows, err = readDelimited(path, delim)
	case ".xlsx", ".xlsm":
		header, rows, err = readWorkbook(path, opts.Sheet)
	default:
		return nil, csErrors.NewDataLoadError(path, "", "unsupported file extension "+strconv.Quote(ext), nil)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, csErrors.NewDataLoadError(path, "", "no data rows", nil)
	}

	t, err := buildTable(path, header, rows)
	if err != nil {
		return nil, err
	}

	for _, name := range append(append([]string(nil), opts.Required...), opts.Numeric...) {
		if !t.Has(name) {
			return nil, csErrors.NewDataLoadError(path, name, "required column missing", nil)
		}
	}
	for _, name := range opts.Numeric {
		if k, _ := t.Kind(name); k != Numeric {
			return nil, csErrors.NewDataLoadError(path, name, "column is not numeric", nil)
		}
	}

	logger.Info("Dataset loaded",
		log.OperationKey, log.OperationLoad,
		log.PathKey, path,
		log.SamplesKey, t.NRows(),
		log.FeaturesKey, len(t.Columns()),
	)
	return t, nil
}

func readDelimited(path string, delim rune) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, csErrors.NewDataLoadError(path, "", "cannot open", err)
	}
	defer f.Close()
	return parseDelimited(path, f, delim)
}

// parseDelimited reads every cell as a string so CSV and XLSX inputs share one
// typing rule.
func parseDelimited(path string, r io.Reader, delim rune) ([]string, [][]string, error) {
	df := dataframe.ReadCSV(r,
		dataframe.WithDelimiter(delim),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
	)
	if df.Err != nil {
		return nil, nil, csErrors.NewDataLoadError(path, "", "malformed delimited file", df.Err)
	}

	header := df.Names()
	nrow := df.Nrow()
	rows := make([][]string, nrow)
	for i := range rows {
		rows[i] = make([]string, len(header))
	}
	for j, name := range header {
		s := df.Col(name)
		for i := 0; i < nrow; i++ {
			if s.Elem(i).IsNA() {
				continue
			}
			rows[i][j] = s.Elem(i).String()
		}
	}
	return header, rows, nil
}

func readWorkbook(path, sheet string) ([]string, [][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, csErrors.NewDataLoadError(path, "", "cannot open workbook", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	all, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, csErrors.NewDataLoadError(path, "", "cannot read sheet "+strconv.Quote(sheet), err)
	}
	if len(all) == 0 {
		return nil, nil, csErrors.NewDataLoadError(path, "", "sheet "+strconv.Quote(sheet)+" is empty", nil)
	}

	header := make([]string, len(all[0]))
	for i, h := range all[0] {
		header[i] = strings.TrimSpace(h)
	}
	var rows [][]string
	for _, r := range all[1:] {
		if blank(r) {
			continue
		}
		row := make([]string, len(header))
		copy(row, r)
		rows = append(rows, row)
	}
	return header, rows, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func buildTable(path string, header []string, rows [][]string) (*Table, error) {
	t := NewTable(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	for j, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, csErrors.NewDataLoadError(path, "", "empty header in column "+strconv.Itoa(j+1), nil)
		}
		if t.Has(name) {
			return nil, csErrors.NewDataLoadError(path, name, "duplicate column", nil)
		}

		cells := make([]string, len(rows))
		for i, r := range rows {
			if j < len(r) {
				cells[i] = strings.TrimSpace(r[j])
			}
		}

		if nums, ok := parseNumeric(cells); ok {
			_ = t.AppendNumeric(name, nums)
		} else {
			_ = t.AppendCategorical(name, cells)
		}
	}
	return t, nil
}

// parseNumeric parses cells as floats. Missing markers become NaN. A column
// with no value at all is treated as categorical.
func parseNumeric(cells []string) ([]float64, bool) {
	out := make([]float64, len(cells))
	seen := false
	for i, c := range cells {
		if missing(c) {
			out[i] = nan
			continue
		}
		v, err := strconv.ParseFloat(c, 64)
		if err != nil {
			return nil, false
		}
		out[i] = v
		seen = true
	}
	return out, seen
}

func missing(c string) bool {
	switch c {
	case "", "NA", "NaN", "nan", "null":
		return true
	}
	return false
}
