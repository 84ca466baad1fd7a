package storage

import (
	"encoding/json"
	"strings"
	"time"
)

type OrderStatus string

const (
	StatusDraft         OrderStatus = "DRAFT"
	StatusUnderApproval OrderStatus = "UNDER_APPROVAL"
	StatusAgreed        OrderStatus = "AGREED"
	StatusRejected      OrderStatus = "REJECTED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusUnderApproval, StatusAgreed, StatusRejected:
		return true
	}
	return false
}

// OrderType — сценарий ценообразования, от него зависит шаблон и набор ячеек.
type OrderType string

const (
	TypeRubToRub    OrderType = "RUB_TO_RUB"
	TypeRubToRubVat OrderType = "RUB_TO_RUB_VAT"
	TypeUsdToRub    OrderType = "USD_TO_RUB"
)

func (t OrderType) Valid() bool {
	switch t {
	case TypeRubToRub, TypeRubToRubVat, TypeUsdToRub:
		return true
	}
	return false
}

// ParseOrderType accepts both the current names and the legacy ones
// without underscores (RUBTORUB, RUBTORUBVAT, USDTORUB).
func ParseOrderType(s string) (OrderType, bool) {
	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "_", "")) {
	case "RUBTORUB":
		return TypeRubToRub, true
	case "RUBTORUBVAT":
		return TypeRubToRubVat, true
	case "USDTORUB":
		return TypeUsdToRub, true
	}
	return "", false
}

func (t *OrderType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if parsed, ok := ParseOrderType(s); ok {
		*t = parsed
		return nil
	}
	*t = OrderType(s)
	return nil
}

type Order struct {
	ID                 int64       `json:"id"`
	ContractNumber     string      `json:"contractNumber"`
	ComplectName       string      `json:"complectName"`
	CustomerID         int64       `json:"customerId"`
	OwnerID            int64       `json:"ownerId"`
	Customer           *Customer   `json:"customer,omitempty"`
	Owner              *User       `json:"owner,omitempty"`
	Status             OrderStatus `json:"orderStatus"`
	Type               OrderType   `json:"typeOrder"`
	Parameters         Parameters  `json:"parameters"`
	FilePath           *string     `json:"filePath"`
	DocumentationSheet bool        `json:"documentationSheet"`
	CreatedAt          time.Time   `json:"createdAt"`
	UpdatedAt          time.Time   `json:"updatedAt"`
}

// OrderPatch is a field patch: nil pointers are left untouched.
type OrderPatch struct {
	ContractNumber     *string      `json:"contractNumber"`
	ComplectName       *string      `json:"complectName"`
	CustomerID         *int64       `json:"customerId"`
	OwnerID            *int64       `json:"ownerId"`
	Status             *OrderStatus `json:"orderStatus"`
	Type               *OrderType   `json:"typeOrder"`
	Parameters         Parameters   `json:"parameters"`
	DocumentationSheet *bool        `json:"documentationSheet"`
}

// ApplyPatch copies every patched field except the status, which has its own
// transition rules. Output-only parameters from the patch are ignored and the
// remaining ones are merged on top of the stored bag.
func (o *Order) ApplyPatch(p OrderPatch) {
	if p.ContractNumber != nil {
		o.ContractNumber = *p.ContractNumber
	}
	if p.ComplectName != nil {
		o.ComplectName = *p.ComplectName
	}
	if p.CustomerID != nil {
		o.CustomerID = *p.CustomerID
	}
	if p.OwnerID != nil {
		o.OwnerID = *p.OwnerID
	}
	if p.Type != nil {
		o.Type = *p.Type
	}
	if p.DocumentationSheet != nil {
		o.DocumentationSheet = *p.DocumentationSheet
	}
	if p.Parameters != nil {
		o.Parameters = o.Parameters.Merge(p.Parameters.WithoutOutputs())
	}
}

type OrderFilter struct {
	From   time.Time
	To     time.Time
	Status OrderStatus
	Type   OrderType
}
