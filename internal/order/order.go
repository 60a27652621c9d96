package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/overstock-orders/internal/commission"
	"github.com/noah-isme/overstock-orders/internal/pricing"
)

// Line is a priced, commission-apportioned order line.
type Line struct {
	ProductID         uuid.UUID       `json:"productId"`
	StockCode         string          `json:"stockCode"`
	Name              string          `json:"name"`
	Unit              string          `json:"unit"`
	Quantity          int             `json:"quantity"`
	UnitPriceNet      decimal.Decimal `json:"unitPriceNet"`
	VATRate           decimal.Decimal `json:"vatRate"`
	UnitPriceSelected decimal.Decimal `json:"unitPriceSelected"`
	LineTotalSelected decimal.Decimal `json:"lineTotalSelected"`
	EligibleValue     decimal.Decimal `json:"-"`
	StockAgeDays      int             `json:"stockAgeDays"`
	CommissionShare   decimal.Decimal `json:"commissionShare"`
}

// Order is a fully built order, either a confirm preview or a committed record.
type Order struct {
	ID            uuid.UUID            `json:"id"`
	CustomerName  string               `json:"customerName"`
	CustomerPhone string               `json:"customerPhone"`
	Basis         pricing.Basis        `json:"basis"`
	Lines         []Line               `json:"lines"`
	Totals        pricing.Totals       `json:"totals"`
	TotalSelected decimal.Decimal      `json:"totalSelected"`
	EligibleValue decimal.Decimal      `json:"-"`
	WeightedAge   int                  `json:"weightedStockAgeDays"`
	Commission    commission.Breakdown `json:"commission"`
	CreatedAt     time.Time            `json:"createdAt"`
}
