package commission

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/overstock-orders/internal/pricing"
)

// Commission rates. The base rate applies to every order; the bonuses are
// tiered and mutually exclusive within their tier group.
var (
	baseRate = decimal.NewFromFloat(0.02)

	orderValueHighThreshold = decimal.NewFromInt(200000)
	orderValueHighRate      = decimal.NewFromFloat(0.02)
	orderValueLowThreshold  = decimal.NewFromInt(50000)
	orderValueLowRate       = decimal.NewFromFloat(0.01)

	stockAgeHighDays = 180
	stockAgeHighRate = decimal.NewFromFloat(0.015)
	stockAgeLowDays  = 90
	stockAgeLowRate  = decimal.NewFromFloat(0.01)
)

// Line is one order line as seen by the commission engine.
type Line struct {
	// EligibleValue is the line total under the commission-eligible basis.
	EligibleValue decimal.Decimal
	Quantity      int64
	StockAgeDays  int
}

// Breakdown is the order-level commission result.
type Breakdown struct {
	Base            decimal.Decimal `json:"base"`
	OrderValueBonus decimal.Decimal `json:"orderValueBonus"`
	StockAgeBonus   decimal.Decimal `json:"stockAgeBonus"`
	Total           decimal.Decimal `json:"total"`
}

// EligibleBasis maps the order's settlement basis to the basis used as the
// commission base. The VAT markup itself never earns commission, so a
// VAT-inclusive order is commissioned on its net value.
func EligibleBasis(basis pricing.Basis) pricing.Basis {
	switch basis {
	case pricing.BasisVATInclusive:
		return pricing.BasisNet
	case pricing.BasisWhite:
		return pricing.BasisWhite
	default:
		return pricing.BasisNet
	}
}

// WeightedStockAge returns the quantity-weighted average stock age in days,
// rounded to the nearest whole day. Zero total quantity yields zero.
func WeightedStockAge(lines []Line) int {
	var weighted, total int64
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		weighted += int64(line.StockAgeDays) * line.Quantity
		total += line.Quantity
	}
	if total == 0 {
		return 0
	}
	age := decimal.NewFromInt(weighted).Div(decimal.NewFromInt(total)).Round(0)
	return int(age.IntPart())
}

// Compute derives the commission breakdown from the commission-eligible order
// value and the weighted average stock age.
func Compute(eligibleValue decimal.Decimal, weightedAgeDays int) Breakdown {
	b := Breakdown{
		Base:            eligibleValue.Mul(baseRate),
		OrderValueBonus: decimal.Zero,
		StockAgeBonus:   decimal.Zero,
	}
	switch {
	case eligibleValue.GreaterThanOrEqual(orderValueHighThreshold):
		b.OrderValueBonus = eligibleValue.Mul(orderValueHighRate)
	case eligibleValue.GreaterThanOrEqual(orderValueLowThreshold):
		b.OrderValueBonus = eligibleValue.Mul(orderValueLowRate)
	}
	switch {
	case weightedAgeDays >= stockAgeHighDays:
		b.StockAgeBonus = eligibleValue.Mul(stockAgeHighRate)
	case weightedAgeDays >= stockAgeLowDays:
		b.StockAgeBonus = eligibleValue.Mul(stockAgeLowRate)
	}
	b.Total = b.Base.Add(b.OrderValueBonus).Add(b.StockAgeBonus)
	return b
}

// Apportion distributes the order-level commission total across lines in
// proportion to each line's share of the eligible value. A zero eligible
// value apportions zero to every line.
func Apportion(b Breakdown, lines []Line, eligibleValue decimal.Decimal) []decimal.Decimal {
	shares := make([]decimal.Decimal, len(lines))
	if eligibleValue.IsZero() {
		for i := range shares {
			shares[i] = decimal.Zero
		}
		return shares
	}
	for i, line := range lines {
		shares[i] = b.Total.Mul(line.EligibleValue).Div(eligibleValue)
	}
	return shares
}
