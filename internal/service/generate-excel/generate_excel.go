package generate_excel

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"tender-backend/internal/storage"
)

const sheet = "Реестр заказов"

type GenerateExcelStorage interface {
	ListOrders(ctx context.Context, filter storage.OrderFilter) ([]*storage.Order, error)
}

type GenerateExcelService struct {
	storage GenerateExcelStorage
}

func NewGenerateService(storage GenerateExcelStorage) *GenerateExcelService {
	return &GenerateExcelService{storage: storage}
}

var headers = []string{
	"№", "Номер договора", "Комплект", "Заказчик", "Ответственный", "Статус", "Тип",
	"Закупка", "Продажа с НДС", "Прибыль", "Прибыль без НДС", "Прибыль после налога",
	"Рентабельность, %", "Доля в прибыли, %", "Создан", "Файл",
}

var statusNames = map[storage.OrderStatus]string{
	storage.StatusDraft:         "Черновик",
	storage.StatusUnderApproval: "На согласовании",
	storage.StatusAgreed:        "Согласован",
	storage.StatusRejected:      "Отклонён",
}

// GenerateExcel builds the orders registry for the filter.
func (g *GenerateExcelService) GenerateExcel(ctx context.Context, filter storage.OrderFilter) ([]byte, error) {
	const op = "service.generate_excel.GenerateExcel"

	// заказчик и ответственный приходят вместе с заказом
	orders, err := g.storage.ListOrders(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch orders: %w", op, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	lastCol := cellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, "A1", lastCol, headerStyle); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for i, o := range orders {
		row := i + 2

		var customer, owner string
		if o.Customer != nil {
			customer = o.Customer.Name
		}
		if o.Owner != nil {
			owner = o.Owner.Username
		}

		var file string
		if o.FilePath != nil {
			file = *o.FilePath
		}

		values := []any{
			o.ID,
			o.ContractNumber,
			o.ComplectName,
			customer,
			owner,
			statusName(o.Status),
			string(o.Type),
			o.Parameters.Float("purchase"),
			o.Parameters.Float("salesWithVAT"),
			o.Parameters.Float(storage.ParamCompanyProfit),
			o.Parameters.Float(storage.ParamCompanyProfitMinusVAT),
			o.Parameters.Float(storage.ParamCompanyProfitMinusTAX),
			o.Parameters.Float(storage.ParamProjectProfitability),
			o.Parameters.Float(storage.ParamPercentShareInProfit),
			o.CreatedAt,
			file,
		}
		if err := f.SetSheetRow(sheet, cellName(1, row), &values); err != nil {
			return nil, fmt.Errorf("%s: строка %d: %w", op, row, err)
		}
	}

	if len(orders) > 0 {
		last := len(orders) + 1
		if err := f.SetCellStyle(sheet, cellName(8, 2), cellName(14, last), moneyStyle); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := f.SetCellStyle(sheet, cellName(15, 2), cellName(15, last), dateStyle); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	// Закрепляем первую строку
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	f.SetColWidth(sheet, "B", "E", 22)
	f.SetColWidth(sheet, "F", "O", 16)
	f.SetColWidth(sheet, "P", "P", 50)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return buf.Bytes(), nil
}

func statusName(s storage.OrderStatus) string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return string(s)
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
