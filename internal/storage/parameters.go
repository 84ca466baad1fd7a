package storage

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Ключи мешка параметров, которые заполняет только расчёт.
const (
	ParamCompanyProfit         = "companyProfit"
	ParamCompanyProfitMinusVAT = "companyProfitMinusVAT"
	ParamCompanyProfitMinusTAX = "companyProfitMinusTAX"
	ParamProjectProfitability  = "projectProfitability"
	ParamPercentShareInProfit  = "percentShareInProfit"
)

var OutputKeys = []string{
	ParamCompanyProfit,
	ParamCompanyProfitMinusVAT,
	ParamCompanyProfitMinusTAX,
	ParamProjectProfitability,
	ParamPercentShareInProfit,
}

// Parameters is the loosely typed parameter bag of an order.
// It is stored as a JSON column and is not validated against the order type.
type Parameters map[string]any

func IsOutputKey(key string) bool {
	for _, k := range OutputKeys {
		if k == key {
			return true
		}
	}
	return false
}

func (p Parameters) Has(key string) bool {
	v, ok := p[key]
	if !ok || v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// Float returns the numeric value of key. Missing or unparsable values are 0.
func (p Parameters) Float(key string) float64 {
	f, _ := toFloat(p[key])
	return f
}

func (p Parameters) String(key string) string {
	switch v := p[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		return fmt.Sprint(v)
	}
}

func (p Parameters) Clone() Parameters {
	out := make(Parameters, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Merge returns a new bag: p first, patch on top.
func (p Parameters) Merge(patch Parameters) Parameters {
	out := p.Clone()
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// WithoutOutputs drops keys the client must never supply.
func (p Parameters) WithoutOutputs() Parameters {
	out := make(Parameters, len(p))
	for k, v := range p {
		if IsOutputKey(k) {
			continue
		}
		out[k] = v
	}
	return out
}

func (p Parameters) Value() (driver.Value, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p)
}

func (p *Parameters) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*p = Parameters{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("storage.Parameters.Scan: unsupported type %T", src)
	}

	if len(data) == 0 {
		*p = Parameters{}
		return nil
	}

	bag := Parameters{}
	if err := json.Unmarshal(data, &bag); err != nil {
		return fmt.Errorf("storage.Parameters.Scan: %w", err)
	}
	*p = bag
	return nil
}

// toFloat понимает числа из JSON, строки вида "1 234,5" и старый формат "15%".
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(n)
		s = strings.TrimSuffix(s, "%")
		s = strings.NewReplacer(" ", "", "\u00a0", "", ",", ".").Replace(s)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
