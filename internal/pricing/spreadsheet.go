package pricing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"tender-backend/internal/storage"
)

// SpreadsheetModel fills the order type's template, recalculates it with
// excelize and reads the five metrics back from the output cells.
type SpreadsheetModel struct {
	dir string
	log *slog.Logger
}

func NewSpreadsheetModel(templatesDir string, log *slog.Logger) *SpreadsheetModel {
	return &SpreadsheetModel{dir: templatesDir, log: log}
}

// OutputError — формула выходной ячейки не посчиталась, значение принято за 0.
type OutputError struct {
	Cell string
	Err  error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("cell %s: %v", e.Cell, e.Err)
}

func (e *OutputError) Unwrap() error { return e.Err }

var errNotNumeric = errors.New("value is not numeric")

// Template is a loaded pricing template ready to be filled once.
type Template struct {
	model *SpreadsheetModel
	file  *excelize.File
	sheet string
}

// TemplateLoader is implemented by models that read a template from disk,
// so the caller can load it while doing other I/O.
type TemplateLoader interface {
	Load(t storage.OrderType) (*Template, error)
}

func (t *Template) Calculate(ctx context.Context, in Input) (*Result, error) {
	return t.model.fill(ctx, t.file, t.sheet, in)
}

func (t *Template) Close() error {
	return t.file.Close()
}

// Load opens the template for t and resolves its worksheet.
func (m *SpreadsheetModel) Load(t storage.OrderType) (*Template, error) {
	f, sheet, err := m.open(t)
	if err != nil {
		return nil, err
	}
	return &Template{model: m, file: f, sheet: sheet}, nil
}

func (m *SpreadsheetModel) open(t storage.OrderType) (*excelize.File, string, error) {
	const op = "pricing.SpreadsheetModel.Open"

	layout, ok := LayoutFor(t)
	if !ok {
		return nil, "", fmt.Errorf("%s: %w: %s", op, ErrUnknownOrderType, t)
	}

	path := filepath.Join(m.dir, layout.File)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", fmt.Errorf("%s: %w: %s", op, ErrTemplateNotFound, path)
		}
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("%s: чтение шаблона %s: %w", op, path, err)
	}

	sheet := layout.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			f.Close()
			return nil, "", fmt.Errorf("%s: %w: книга пустая", op, ErrWorksheetNotFound)
		}
		sheet = sheets[0]
	} else if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		f.Close()
		return nil, "", fmt.Errorf("%s: %w: %s", op, ErrWorksheetNotFound, sheet)
	}

	return f, sheet, nil
}

func (m *SpreadsheetModel) Calculate(ctx context.Context, in Input) (*Result, error) {
	const op = "pricing.SpreadsheetModel.Calculate"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tpl, err := m.Load(in.Type)
	if err != nil {
		return nil, err
	}
	defer tpl.Close()

	return tpl.Calculate(ctx, in)
}

func (m *SpreadsheetModel) fill(ctx context.Context, f *excelize.File, sheet string, in Input) (*Result, error) {
	const op = "pricing.SpreadsheetModel.Fill"

	layout, ok := LayoutFor(in.Type)
	if !ok {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrUnknownOrderType, in.Type)
	}

	percentStyle, err := f.NewStyle(&excelize.Style{NumFmt: 9})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, cell := range layout.Inputs {
		if err := writeInput(f, sheet, cell, in.Params, percentStyle); err != nil {
			return nil, fmt.Errorf("%s: ячейка %s (%s): %w", op, cell.Cell, cell.Field, err)
		}
	}

	if layout.Rates != nil {
		for i, code := range layout.Rates.Codes {
			row := layout.Rates.FirstRow + i
			codeCell := fmt.Sprintf("%s%d", layout.Rates.CodeColumn, row)
			rateCell := fmt.Sprintf("%s%d", layout.Rates.RateColumn, row)
			if err := f.SetCellValue(sheet, codeCell, code); err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
			if err := f.SetCellValue(sheet, rateCell, in.Rates[code]); err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var warnings []error
	read := func(cell string) float64 {
		v, err := readOutput(f, sheet, cell)
		if err != nil {
			warnings = append(warnings, err)
			m.log.Warn("formula evaluation failed",
				slog.String("op", op),
				slog.String("type", string(in.Type)),
				slog.String("cell", cell),
				slog.String("error", err.Error()),
			)
		}
		return v
	}

	outputs := Outputs{
		CompanyProfit:         read(layout.Outputs.CompanyProfit),
		CompanyProfitMinusVAT: read(layout.Outputs.CompanyProfitMinusVAT),
		CompanyProfitMinusTAX: read(layout.Outputs.CompanyProfitMinusTAX),
		ProjectProfitability:  read(layout.Outputs.ProjectProfitability),
		PercentShareInProfit:  read(layout.Outputs.PercentShareInProfit),
	}

	// Excel пересчитает формулы при открытии файла пользователем.
	fullCalc := true
	if err := f.SetCalcProps(&excelize.CalcPropsOptions{FullCalcOnLoad: &fullCalc}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Result{
		Outputs:  outputs,
		Derived:  in.Params.Clone(),
		Workbook: buf.Bytes(),
		Warnings: warnings,
	}, nil
}

func writeInput(f *excelize.File, sheet string, cell InputCell, params storage.Parameters, percentStyle int) error {
	switch cell.Kind {
	case KindPercent:
		if err := f.SetCellValue(sheet, cell.Cell, params.Float(cell.Field)/100); err != nil {
			return err
		}
		return f.SetCellStyle(sheet, cell.Cell, cell.Cell, percentStyle)
	case KindDuration:
		if !params.Has(cell.Field) {
			return f.SetCellValue(sheet, cell.Cell, "")
		}
		return f.SetCellValue(sheet, cell.Cell, params.Float(cell.Field))
	case KindText:
		return f.SetCellValue(sheet, cell.Cell, params.String(cell.Field))
	default:
		return f.SetCellValue(sheet, cell.Cell, params.Float(cell.Field))
	}
}

func readOutput(f *excelize.File, sheet, cell string) (float64, error) {
	raw, err := f.CalcCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		return 0, &OutputError{Cell: cell, Err: err}
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &OutputError{Cell: cell, Err: fmt.Errorf("%w: %q", errNotNumeric, raw)}
	}

	return finite(v), nil
}
