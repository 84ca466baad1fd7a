package pricing

import "tender-backend/internal/storage"

// CellKind определяет, как значение из мешка параметров пишется в ячейку шаблона.
type CellKind int

const (
	// KindNumber пишется числом, отсутствующее значение = 0.
	KindNumber CellKind = iota
	// KindPercent пишется долей (value / 100) с форматом 0%.
	KindPercent
	// KindDuration пишется числом или пустой строкой, если значения нет.
	KindDuration
	// KindText пишется строкой.
	KindText
)

type InputCell struct {
	Field string
	Cell  string
	Kind  CellKind
}

type OutputCells struct {
	CompanyProfit         string
	CompanyProfitMinusVAT string
	CompanyProfitMinusTAX string
	ProjectProfitability  string
	PercentShareInProfit  string
}

// RatesTable is the auxiliary currency lookup table used by VLOOKUP in the template.
type RatesTable struct {
	CodeColumn string
	RateColumn string
	FirstRow   int
	Codes      []string
}

// Layout is the implicit contract between the service and a template author:
// which file, which sheet and which cells.
type Layout struct {
	Type     storage.OrderType
	File     string
	Sheet    string // пусто — первый лист книги
	Inputs   []InputCell
	Outputs  OutputCells
	Rates    *RatesTable
	Formulas []FormulaCell
}

var rubInputs = []InputCell{
	{Field: "purchase", Cell: "C6", Kind: KindNumber},
	{Field: "productionTime", Cell: "C7", Kind: KindDuration},
	{Field: "prepayment", Cell: "D8", Kind: KindPercent},
	{Field: "paymentBeforeShipment", Cell: "F8", Kind: KindPercent},
	{Field: "salesWithVAT", Cell: "C12", Kind: KindNumber},
	{Field: "prepaymentSale", Cell: "D14", Kind: KindPercent},
	{Field: "paymentBeforeShipmentSale", Cell: "F14", Kind: KindPercent},
	{Field: "delivery", Cell: "C17", Kind: KindNumber},
	{Field: "deliveryTimeLogistics", Cell: "C18", Kind: KindDuration},
	{Field: "deferralPaymentByCustomer", Cell: "C19", Kind: KindDuration},
	{Field: "costOfMoney", Cell: "C22", Kind: KindPercent},
	{Field: "additionalExpensesPercent", Cell: "D36", Kind: KindPercent},
	{Field: "otherUnplannedExpenses", Cell: "C37", Kind: KindNumber},
}

var rubOutputs = OutputCells{
	CompanyProfit:         "C41",
	CompanyProfitMinusVAT: "C42",
	CompanyProfitMinusTAX: "C44",
	ProjectProfitability:  "C46",
	PercentShareInProfit:  "C48",
}

var layouts = map[storage.OrderType]Layout{
	storage.TypeRubToRub: {
		Type:     storage.TypeRubToRub,
		File:     "template_rub.xlsx",
		Inputs:   rubInputs,
		Outputs:  rubOutputs,
		Formulas: rubFormulas(false),
	},
	storage.TypeRubToRubVat: {
		Type:     storage.TypeRubToRubVat,
		File:     "template_rub_vat.xlsx",
		Inputs:   rubInputs,
		Outputs:  rubOutputs,
		Formulas: rubFormulas(true),
	},
	storage.TypeUsdToRub: {
		Type:  storage.TypeUsdToRub,
		File:  "template_usd.xlsx",
		Sheet: "sheet",
		Inputs: []InputCell{
			{Field: "currency", Cell: "C6", Kind: KindText},
			{Field: "bankCurrencySalesRatio", Cell: "D6", Kind: KindPercent},
			{Field: "productionTime", Cell: "C9", Kind: KindDuration},
			{Field: "agentServices", Cell: "J13", Kind: KindNumber},
			{Field: "purchase", Cell: "K2", Kind: KindNumber},
			{Field: "dutyPercent", Cell: "R2", Kind: KindPercent},
			{Field: "prepayment", Cell: "D10", Kind: KindPercent},
			{Field: "paymentBeforeShipment", Cell: "F10", Kind: KindPercent},
			{Field: "prepaymentSale", Cell: "D16", Kind: KindPercent},
			{Field: "paymentBeforeShipmentSale", Cell: "F16", Kind: KindPercent},
			{Field: "markup", Cell: "E58", Kind: KindPercent},
			{Field: "currencyDelivery", Cell: "D19", Kind: KindText},
			{Field: "deliveryToRF", Cell: "C19", Kind: KindNumber},
			{Field: "deliveryTimeLogisticsToRF", Cell: "C20", Kind: KindDuration},
			{Field: "transferFee", Cell: "C21", Kind: KindPercent},
			{Field: "deliveryRF", Cell: "C22", Kind: KindNumber},
			{Field: "deliveryTimeLogisticsRF", Cell: "C23", Kind: KindDuration},
			{Field: "deferralPaymentByCustomer", Cell: "C24", Kind: KindDuration},
			{Field: "daysForRegistration", Cell: "C27", Kind: KindNumber},
			{Field: "certification", Cell: "C30", Kind: KindNumber},
			{Field: "costOfMoney", Cell: "C34", Kind: KindPercent},
			{Field: "operationalActivitiesPercent", Cell: "D49", Kind: KindPercent},
			{Field: "additionalExpensesPercent", Cell: "D50", Kind: KindPercent},
			{Field: "otherUnplannedExpenses", Cell: "C51", Kind: KindNumber},
		},
		Outputs: OutputCells{
			CompanyProfit:         "C55",
			CompanyProfitMinusVAT: "C56",
			CompanyProfitMinusTAX: "C58",
			ProjectProfitability:  "C60",
			PercentShareInProfit:  "C62",
		},
		Rates: &RatesTable{
			CodeColumn: "G",
			RateColumn: "H",
			FirstRow:   8,
			Codes:      []string{"EUR", "USD", "GBP", "CNY"},
		},
		Formulas: usdFormulas(),
	},
}

func LayoutFor(t storage.OrderType) (Layout, bool) {
	l, ok := layouts[t]
	return l, ok
}

func Layouts() []Layout {
	return []Layout{
		layouts[storage.TypeRubToRub],
		layouts[storage.TypeRubToRubVat],
		layouts[storage.TypeUsdToRub],
	}
}

func (k CellKind) String() string {
	switch k {
	case KindPercent:
		return "percent"
	case KindDuration:
		return "duration"
	case KindText:
		return "text"
	}
	return "number"
}
