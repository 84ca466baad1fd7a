package pricing

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"tender-backend/internal/storage"
)

// FormulaCell — вычисляемая ячейка шаблона или константа (Value), если Formula пустая.
type FormulaCell struct {
	Cell    string
	Name    string
	Formula string
	Value   float64
}

// Ставки, зашитые в шаблоны. Те же значения использует Derive.
const (
	VATRate                   = 0.2
	ProfitTaxRate             = 0.2
	OperationalActivitiesRate = 0.03
	DaysInMonth               = 30
)

// rubFormulas описывает лист рублёвых сценариев. Отличие сценария с НДС только в
// строке "прибыль за вычетом НДС": вместо деления на 1.2 вычитается НДС к уплате.
func rubFormulas(vatBreakdown bool) []FormulaCell {
	minusVAT := "=C41/(1+D31)"
	if vatBreakdown {
		minusVAT = "=C41-(C33-C32)"
	}

	return []FormulaCell{
		{Cell: "C8", Name: "prepaymentToSupplier", Formula: "=C6*D8"},
		{Cell: "C13", Name: "deliveryTime", Formula: "=N(C7)+N(C18)"},
		{Cell: "C14", Name: "prepaymentFromCustomer", Formula: "=C12*D14"},
		{Cell: "C25", Name: "deltaOnPrepayment", Formula: "=C14-C8"},
		{Cell: "C26", Name: "requiredFundsPrepayment", Formula: "=MAX(0,-C25)"},
		{Cell: "C27", Name: "requiredFundsShipment", Formula: "=MAX(0,C6+C17-C14)"},
		{Cell: "C28", Name: "costOfMoneyPrepayment", Formula: "=C26*C22*(N(C7)+N(C18)+N(C19))"},
		{Cell: "C29", Name: "costOfMoneyShipment", Formula: "=C27*C22*(N(C18)+N(C19))"},
		{Cell: "C30", Name: "totalCostOfMoney", Formula: "=C28+C29"},
		{Cell: "D31", Name: "vatRate", Value: VATRate},
		{Cell: "C32", Name: "vat", Formula: "=C6*D31/(1+D31)"},
		{Cell: "C33", Name: "salesVat", Formula: "=C12*D31/(1+D31)"},
		{Cell: "D35", Name: "operationalActivitiesRate", Value: OperationalActivitiesRate},
		{Cell: "C35", Name: "operationalActivities", Formula: "=C12*D35"},
		{Cell: "C36", Name: "additionalExpenses", Formula: "=C12/(1+D31)*D36"},
		{Cell: "C38", Name: "totalOtherExpenses", Formula: "=C35+C36+C37"},
		{Cell: "C41", Formula: "=C12-C6-C17-C30-C38"},
		{Cell: "C42", Formula: minusVAT},
		{Cell: "D43", Name: "profitTaxRate", Value: ProfitTaxRate},
		{Cell: "C44", Formula: "=C42*(1-D43)"},
		{Cell: "C46", Formula: "=IF(C12=0,0,C44/C12)"},
		{Cell: "C48", Formula: "=IF(C44=0,0,C36/C44)"},
	}
}

func usdFormulas() []FormulaCell {
	return []FormulaCell{
		{Cell: "C7", Name: "purchaseCurrencyRate", Formula: "=IFERROR(VLOOKUP(C6,G8:H11,2,FALSE),0)"},
		{Cell: "C8", Name: "effectiveRate", Formula: "=C7*(1+D6)"},
		{Cell: "L2", Name: "purchaseRub", Formula: "=K2*C8"},
		{Cell: "E19", Name: "deliveryEffectiveRate", Formula: "=IFERROR(VLOOKUP(D19,G8:H11,2,FALSE),0)*(1+D6)"},
		{Cell: "F19", Name: "deliveryToRFRub", Formula: "=C19*E19"},
		{Cell: "S2", Name: "duty", Formula: "=(L2+F19)*R2"},
		{Cell: "G14", Name: "vatRate", Value: VATRate},
		{Cell: "G15", Name: "profitTaxRate", Value: ProfitTaxRate},
		{Cell: "T2", Name: "customsVAT", Formula: "=(L2+F19+S2)*G14"},
		{Cell: "L13", Name: "transferFeeRub", Formula: "=L2*C21"},
		{Cell: "C25", Name: "deliveryTime", Formula: "=N(C9)+N(C20)+N(C27)/30+N(C23)"},
		{Cell: "C31", Name: "ddp", Formula: "=L2+L13+F19+S2+T2+J13+C22+C30"},
		{Cell: "C32", Name: "salesWithVAT", Formula: "=C31*(1+E58)"},
		{Cell: "E10", Name: "prepaymentToSupplier", Formula: "=L2*D10"},
		{Cell: "E16", Name: "prepaymentFromCustomer", Formula: "=C32*D16"},
		{Cell: "C36", Name: "deltaOnPrepayment", Formula: "=E16-E10"},
		{Cell: "C37", Name: "requiredFundsPrepayment", Formula: "=MAX(0,-C36)"},
		{Cell: "C38", Name: "requiredFundsShipment", Formula: "=MAX(0,C31-E16)"},
		{Cell: "C39", Name: "costOfMoneyPrepayment", Formula: "=C37*C34*(C25+N(C24))"},
		{Cell: "C40", Name: "costOfMoneyShipment", Formula: "=C38*C34*(N(C23)+N(C24))"},
		{Cell: "C41", Name: "totalCostOfMoney", Formula: "=C39+C40"},
		{Cell: "C49", Name: "operationalActivities", Formula: "=C32*D49"},
		{Cell: "C50", Name: "additionalExpenses", Formula: "=C32/(1+G14)*D50"},
		{Cell: "C52", Name: "totalOtherExpenses", Formula: "=C49+C50+C51"},
		{Cell: "C55", Formula: "=C32-C31-C41-C52"},
		{Cell: "C56", Formula: "=C55-((C32-C32/(1+G14))-T2)"},
		{Cell: "C58", Formula: "=C56*(1-G15)"},
		{Cell: "C60", Formula: "=IF(C32=0,0,C58/C32)"},
		{Cell: "C62", Formula: "=IF(C58=0,0,C50/C58)"},
	}
}

var templateTitles = map[storage.OrderType]string{
	storage.TypeRubToRub:    "Расчет рентабельности: закупка в рублях, продажа в рублях",
	storage.TypeRubToRubVat: "Расчет рентабельности: рубли, с выделением НДС",
	storage.TypeUsdToRub:    "Расчет рентабельности: импорт, закупка в валюте",
}

// BuildTemplate creates the pricing workbook for the given order type.
func BuildTemplate(t storage.OrderType) (*excelize.File, error) {
	const op = "pricing.BuildTemplate"

	layout, ok := LayoutFor(t)
	if !ok {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrUnknownOrderType, t)
	}

	f := excelize.NewFile()

	sheet := layout.Sheet
	if sheet == "" {
		sheet = "Расчет"
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// --- СТИЛИ ---
	titleStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 13}})
	inputStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFF2CC"}, Pattern: 1},
	})
	percentInputStyle, _ := f.NewStyle(&excelize.Style{
		NumFmt: 9,
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"FFF2CC"}, Pattern: 1},
	})
	percentStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 9})
	outputStyle, _ := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})

	f.SetCellValue(sheet, "A1", templateTitles[t])
	f.SetCellStyle(sheet, "A1", "A1", titleStyle)

	for _, in := range layout.Inputs {
		style := inputStyle
		switch in.Kind {
		case KindPercent:
			style = percentInputStyle
			f.SetCellValue(sheet, in.Cell, 0)
		case KindNumber:
			f.SetCellValue(sheet, in.Cell, 0)
		case KindDuration, KindText:
			f.SetCellValue(sheet, in.Cell, "")
		}
		f.SetCellStyle(sheet, in.Cell, in.Cell, style)

		if err := defineName(f, sheet, "in_"+in.Field, in.Cell); err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if layout.Rates != nil {
		for i, code := range layout.Rates.Codes {
			row := layout.Rates.FirstRow + i
			f.SetCellValue(sheet, fmt.Sprintf("%s%d", layout.Rates.CodeColumn, row), code)
			f.SetCellValue(sheet, fmt.Sprintf("%s%d", layout.Rates.RateColumn, row), 0)
		}
	}

	for _, fc := range layout.Formulas {
		if fc.Formula == "" {
			f.SetCellValue(sheet, fc.Cell, fc.Value)
			f.SetCellStyle(sheet, fc.Cell, fc.Cell, percentStyle)
		} else if err := f.SetCellFormula(sheet, fc.Cell, fc.Formula); err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: формула %s: %w", op, fc.Cell, err)
		}

		if fc.Name != "" {
			if err := defineName(f, sheet, "calc_"+fc.Name, fc.Cell); err != nil {
				f.Close()
				return nil, fmt.Errorf("%s: %w", op, err)
			}
		}
	}

	outputs := []struct{ name, cell string }{
		{storage.ParamCompanyProfit, layout.Outputs.CompanyProfit},
		{storage.ParamCompanyProfitMinusVAT, layout.Outputs.CompanyProfitMinusVAT},
		{storage.ParamCompanyProfitMinusTAX, layout.Outputs.CompanyProfitMinusTAX},
		{storage.ParamProjectProfitability, layout.Outputs.ProjectProfitability},
		{storage.ParamPercentShareInProfit, layout.Outputs.PercentShareInProfit},
	}
	for _, out := range outputs {
		f.SetCellStyle(sheet, out.cell, out.cell, outputStyle)
		if err := defineName(f, sheet, "out_"+out.name, out.cell); err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	f.SetColWidth(sheet, "B", "F", 16)

	return f, nil
}

// WriteTemplates writes every pricing template into dir.
func WriteTemplates(dir string) error {
	const op = "pricing.WriteTemplates"

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for _, layout := range Layouts() {
		f, err := BuildTemplate(layout.Type)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		err = f.SaveAs(filepath.Join(dir, layout.File))
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: сохранение %s: %w", op, layout.File, err)
		}
	}

	return nil
}

func defineName(f *excelize.File, sheet, name, cell string) error {
	col, row, err := excelize.SplitCellName(cell)
	if err != nil {
		return err
	}

	return f.SetDefinedName(&excelize.DefinedName{
		Name:     name,
		RefersTo: fmt.Sprintf("'%s'!$%s$%d", sheet, col, row),
	})
}

// Catalog отдаёт раскладки и пустые шаблоны для скачивания.
type Catalog struct{}

func (Catalog) Layouts() []Layout { return Layouts() }

func (Catalog) Template(t storage.OrderType) ([]byte, error) {
	const op = "pricing.Catalog.Template"

	f, err := BuildTemplate(t)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return buf.Bytes(), nil
}
