package pricing

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"tender-backend/internal/storage"
)

// Divergence — расхождение между старыми формулами на клиенте и тем, как считает сервер.
type Divergence struct {
	Field    string `json:"field"`
	Client   string `json:"client"`
	Server   string `json:"server"`
	Scenario string `json:"scenario,omitempty"`
}

var Divergences = []Divergence{
	{
		Field:  "operationalActivities",
		Client: "salesWithVAT * OPERATIONAL_ACTIVITIES, constant is not defined anywhere",
		Server: "salesWithVAT * 0.03",
	},
	{
		Field:    "vat, salesVat",
		Client:   "purchase * 0.25, salesWithVAT * 0.25",
		Server:   "value * 0.2 / 1.2 (VAT included in the price)",
		Scenario: string(storage.TypeRubToRubVat),
	},
	{
		Field:    "additionalExpenses",
		Client:   "salesWithoutVat * 0.1, percent input ignored",
		Server:   "salesWithVAT / 1.2 * additionalExpensesPercent / 100",
		Scenario: string(storage.TypeRubToRubVat),
	},
	{
		Field:  "projectProfitability, percentShareInProfit",
		Client: "Math.round(x * 100), NaN or Infinity on zero denominators",
		Server: "x * 100 without rounding, 0 on zero denominators",
	},
}

var (
	hundred     = decimal.NewFromInt(100)
	one         = decimal.NewFromInt(1)
	vatRate     = decimal.NewFromFloat(VATRate)
	profitTax   = decimal.NewFromFloat(ProfitTaxRate)
	opRate      = decimal.NewFromFloat(OperationalActivitiesRate)
	daysInMonth = decimal.NewFromInt(DaysInMonth)
)

// bag читает значения из мешка параметров как decimal.
type bag storage.Parameters

func (b bag) num(key string) decimal.Decimal {
	f := storage.Parameters(b).Float(key)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

func (b bag) pct(key string) decimal.Decimal {
	return b.num(key).Div(hundred)
}

func setNum(p storage.Parameters, key string, v decimal.Decimal) {
	p[key] = v.InexactFloat64()
}

func safeDiv(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.Div(b)
}

// Derive is the single implementation of the client-side derived fields and
// of the five metrics. It returns a new bag with the derived fields set; the
// outputs are not written into it.
func Derive(t storage.OrderType, params storage.Parameters, rates Rates) (storage.Parameters, Outputs, error) {
	const op = "pricing.Derive"

	out := params.Clone()
	b := bag(params)

	setNum(out, "paymentBeforeShipment", hundred.Sub(b.num("prepayment")))
	setNum(out, "paymentBeforeShipmentSale", hundred.Sub(b.num("prepaymentSale")))

	switch t {
	case storage.TypeRubToRub, storage.TypeRubToRubVat:
		return out, deriveRub(out, b, t == storage.TypeRubToRubVat), nil
	case storage.TypeUsdToRub:
		return out, deriveUsd(out, b, rates), nil
	}

	return nil, Outputs{}, fmt.Errorf("%s: %w: %s", op, ErrUnknownOrderType, t)
}

func deriveRub(out storage.Parameters, b bag, vatBreakdown bool) Outputs {
	purchase := b.num("purchase")
	sales := b.num("salesWithVAT")
	delivery := b.num("delivery")
	production := b.num("productionTime")
	logistics := b.num("deliveryTimeLogistics")
	deferral := b.num("deferralPaymentByCustomer")
	costOfMoney := b.pct("costOfMoney")

	setNum(out, "deliveryTime", production.Add(logistics))

	toSupplier := purchase.Mul(b.pct("prepayment"))
	fromCustomer := sales.Mul(b.pct("prepaymentSale"))
	delta := fromCustomer.Sub(toSupplier)
	fundsPrepayment := decimal.Max(decimal.Zero, delta.Neg())
	fundsShipment := decimal.Max(decimal.Zero, purchase.Add(delivery).Sub(fromCustomer))

	comPrepayment := fundsPrepayment.Mul(costOfMoney).Mul(production.Add(logistics).Add(deferral))
	comShipment := fundsShipment.Mul(costOfMoney).Mul(logistics.Add(deferral))
	totalCostOfMoney := comPrepayment.Add(comShipment)

	setNum(out, "prepaymentToSupplier", toSupplier)
	setNum(out, "prepaymentFromCustomer", fromCustomer)
	setNum(out, "deltaOnPrepayment", delta)
	setNum(out, "requiredFundsPrepayment", fundsPrepayment)
	setNum(out, "requiredFundsShipment", fundsShipment)
	setNum(out, "costOfMoneyPrepayment", comPrepayment)
	setNum(out, "costOfMoneyShipment", comShipment)
	setNum(out, "totalCostOfMoney", totalCostOfMoney)

	vatDivisor := one.Add(vatRate)
	purchaseVat := purchase.Mul(vatRate).Div(vatDivisor)
	salesVat := sales.Mul(vatRate).Div(vatDivisor)

	operational := sales.Mul(opRate)
	additional := sales.Div(vatDivisor).Mul(b.pct("additionalExpensesPercent"))
	totalOther := operational.Add(additional).Add(b.num("otherUnplannedExpenses"))

	setNum(out, "operationalActivities", operational)
	setNum(out, "additionalExpenses", additional)
	setNum(out, "totalOtherExpenses", totalOther)

	profit := sales.Sub(purchase).Sub(delivery).Sub(totalCostOfMoney).Sub(totalOther)

	minusVAT := profit.Div(vatDivisor)
	if vatBreakdown {
		setNum(out, "vat", purchaseVat)
		setNum(out, "withoutVat", purchase.Sub(purchaseVat))
		setNum(out, "salesVat", salesVat)
		setNum(out, "salesWithoutVat", sales.Sub(salesVat))
		minusVAT = profit.Sub(salesVat.Sub(purchaseVat))
	}
	minusTAX := minusVAT.Mul(one.Sub(profitTax))

	return Outputs{
		CompanyProfit:         profit.InexactFloat64(),
		CompanyProfitMinusVAT: minusVAT.InexactFloat64(),
		CompanyProfitMinusTAX: minusTAX.InexactFloat64(),
		ProjectProfitability:  safeDiv(minusTAX, sales).InexactFloat64(),
		PercentShareInProfit:  safeDiv(additional, minusTAX).InexactFloat64(),
	}
}

func deriveUsd(out storage.Parameters, b bag, rates Rates) Outputs {
	bank := one.Add(b.pct("bankCurrencySalesRatio"))

	rate := lookupRate(rates, storage.Parameters(b).String("currency"))
	effectiveRate := rate.Mul(bank)
	purchaseRub := b.num("purchase").Mul(effectiveRate)

	deliveryRate := lookupRate(rates, storage.Parameters(b).String("currencyDelivery")).Mul(bank)
	deliveryToRF := b.num("deliveryToRF").Mul(deliveryRate)

	duty := purchaseRub.Add(deliveryToRF).Mul(b.pct("dutyPercent"))
	customsVAT := purchaseRub.Add(deliveryToRF).Add(duty).Mul(vatRate)
	transferFee := purchaseRub.Mul(b.pct("transferFee"))

	ddp := purchaseRub.Add(transferFee).Add(deliveryToRF).Add(duty).Add(customsVAT).
		Add(b.num("agentServices")).Add(b.num("deliveryRF")).Add(b.num("certification"))
	sales := ddp.Mul(one.Add(b.pct("markup")))

	setNum(out, "purchaseCurrencyRate", rate)
	setNum(out, "effectiveRate", effectiveRate)
	setNum(out, "purchaseRub", purchaseRub)
	setNum(out, "deliveryToRFRub", deliveryToRF)
	setNum(out, "duty", duty)
	setNum(out, "customsVAT", customsVAT)
	setNum(out, "transferFeeRub", transferFee)
	setNum(out, "ddp", ddp)
	setNum(out, "salesWithVAT", sales)

	logisticsRF := b.num("deliveryTimeLogisticsRF")
	deferral := b.num("deferralPaymentByCustomer")
	months := b.num("productionTime").
		Add(b.num("deliveryTimeLogisticsToRF")).
		Add(b.num("daysForRegistration").Div(daysInMonth)).
		Add(logisticsRF)
	setNum(out, "deliveryTime", months)

	costOfMoney := b.pct("costOfMoney")
	toSupplier := purchaseRub.Mul(b.pct("prepayment"))
	fromCustomer := sales.Mul(b.pct("prepaymentSale"))
	delta := fromCustomer.Sub(toSupplier)
	fundsPrepayment := decimal.Max(decimal.Zero, delta.Neg())
	fundsShipment := decimal.Max(decimal.Zero, ddp.Sub(fromCustomer))
	comPrepayment := fundsPrepayment.Mul(costOfMoney).Mul(months.Add(deferral))
	comShipment := fundsShipment.Mul(costOfMoney).Mul(logisticsRF.Add(deferral))
	totalCostOfMoney := comPrepayment.Add(comShipment)

	setNum(out, "prepaymentToSupplier", toSupplier)
	setNum(out, "prepaymentFromCustomer", fromCustomer)
	setNum(out, "deltaOnPrepayment", delta)
	setNum(out, "requiredFundsPrepayment", fundsPrepayment)
	setNum(out, "requiredFundsShipment", fundsShipment)
	setNum(out, "costOfMoneyPrepayment", comPrepayment)
	setNum(out, "costOfMoneyShipment", comShipment)
	setNum(out, "totalCostOfMoney", totalCostOfMoney)

	vatDivisor := one.Add(vatRate)
	operational := sales.Mul(b.pct("operationalActivitiesPercent"))
	additional := sales.Div(vatDivisor).Mul(b.pct("additionalExpensesPercent"))
	totalOther := operational.Add(additional).Add(b.num("otherUnplannedExpenses"))

	setNum(out, "operationalActivities", operational)
	setNum(out, "additionalExpenses", additional)
	setNum(out, "totalOtherExpenses", totalOther)

	profit := sales.Sub(ddp).Sub(totalCostOfMoney).Sub(totalOther)
	salesVat := sales.Sub(sales.Div(vatDivisor))
	minusVAT := profit.Sub(salesVat.Sub(customsVAT))
	minusTAX := minusVAT.Mul(one.Sub(profitTax))

	return Outputs{
		CompanyProfit:         profit.InexactFloat64(),
		CompanyProfitMinusVAT: minusVAT.InexactFloat64(),
		CompanyProfitMinusTAX: minusTAX.InexactFloat64(),
		ProjectProfitability:  safeDiv(minusTAX, sales).InexactFloat64(),
		PercentShareInProfit:  safeDiv(additional, minusTAX).InexactFloat64(),
	}
}

func lookupRate(rates Rates, code string) decimal.Decimal {
	r := rates[strings.ToUpper(strings.TrimSpace(code))]
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(r)
}

// NativeModel считает без шаблона, рабочую книгу не возвращает.
type NativeModel struct{}

func (NativeModel) Calculate(ctx context.Context, in Input) (*Result, error) {
	const op = "pricing.NativeModel.Calculate"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	derived, outputs, err := Derive(in.Type, in.Params, in.Rates)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Result{Outputs: outputs, Derived: derived}, nil
}
