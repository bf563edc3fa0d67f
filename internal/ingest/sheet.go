package ingest

import (
	"credit-engine/internal/domain/loan"
	"credit-engine/internal/pkg/apperrors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var dateLayouts = []string{"2006-01-02", "01/02/2006", "1/2/2006", "02-01-2006"}

// sheet is the first worksheet of a workbook with its header row indexed by
// column title.
type sheet struct {
	name   string
	header map[string]int
	rows   [][]string
}

func readFirstSheet(r io.Reader) (*sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot open workbook: %v", apperrors.ErrInvalidArgument, err)
	}
	defer f.Close()

	names := f.GetSheetList()
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", apperrors.ErrInvalidArgument)
	}

	rows, err := f.GetRows(names[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read sheet %q: %v", apperrors.ErrInvalidArgument, names[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %q is empty", apperrors.ErrInvalidArgument, names[0])
	}

	header := make(map[string]int, len(rows[0]))
	for i, title := range rows[0] {
		header[strings.TrimSpace(title)] = i
	}
	return &sheet{name: names[0], header: header, rows: rows[1:]}, nil
}

func (s *sheet) requireColumns(columns ...string) error {
	var missing []string
	for _, c := range columns {
		if _, ok := s.header[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: sheet %q is missing columns %s", apperrors.ErrInvalidArgument, s.name, strings.Join(missing, ", "))
	}
	return nil
}

func (s *sheet) cell(row []string, column string) string {
	idx, ok := s.header[column]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// rowError reports a bad cell using the spreadsheet's own row numbering,
// header included.
func rowError(dataRow int, column string, err error) error {
	return fmt.Errorf("%w: row %d, column %q: %v", apperrors.ErrInvalidArgument, dataRow+2, column, err)
}

func parseInt(raw string) (int64, error) {
	if raw == "" {
		return 0, fmt.Errorf("value is empty")
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("not a number: %s", raw)
	}
	if !d.Equal(d.Truncate(0)) {
		return 0, fmt.Errorf("not a whole number: %s", raw)
	}
	return d.IntPart(), nil
}

func parseDecimal(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, fmt.Errorf("value is empty")
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("not a number: %s", raw)
	}
	return d, nil
}

// parseDate accepts Excel serial day numbers as well as textual dates.
func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("value is empty")
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid excel date %s: %v", raw, err)
		}
		return loan.DateOnly(t), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return loan.DateOnly(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date: %s", raw)
}
