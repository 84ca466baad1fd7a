package pricing

import (
	"context"
	"errors"
	"math"

	"tender-backend/internal/storage"
)

var (
	ErrTemplateNotFound  = errors.New("pricing template not found")
	ErrWorksheetNotFound = errors.New("pricing worksheet not found")
	ErrUnknownOrderType  = errors.New("unknown order type")
)

// Rates — курс ЦБ: код валюты -> рублей за единицу.
type Rates map[string]float64

type Input struct {
	Type   storage.OrderType
	Params storage.Parameters
	Rates  Rates
}

// Outputs are the five metrics exactly as the sheet computes them:
// both ratios are fractions here.
type Outputs struct {
	CompanyProfit         float64
	CompanyProfitMinusVAT float64
	CompanyProfitMinusTAX float64
	ProjectProfitability  float64
	PercentShareInProfit  float64
}

type Result struct {
	Outputs  Outputs
	Derived  storage.Parameters
	Workbook []byte
	Warnings []error
}

// Model is a pricing engine. Implementations must be deterministic for
// identical inputs and rates.
type Model interface {
	Calculate(ctx context.Context, in Input) (*Result, error)
}

// Apply returns a copy of params with the outputs written on top.
// Рентабельность и доля в прибыли хранятся в процентах.
func (o Outputs) Apply(params storage.Parameters) storage.Parameters {
	out := params.Clone()
	out[storage.ParamCompanyProfit] = finite(o.CompanyProfit)
	out[storage.ParamCompanyProfitMinusVAT] = finite(o.CompanyProfitMinusVAT)
	out[storage.ParamCompanyProfitMinusTAX] = finite(o.CompanyProfitMinusTAX)
	out[storage.ParamProjectProfitability] = finite(o.ProjectProfitability * 100)
	out[storage.ParamPercentShareInProfit] = finite(o.PercentShareInProfit * 100)
	return out
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
