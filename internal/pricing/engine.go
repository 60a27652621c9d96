package pricing

import "github.com/shopspring/decimal"

// Basis selects which of the three price interpretations an order is settled under.
type Basis string

const (
	// BasisNet is the VAT-exclusive unit price.
	BasisNet Basis = "net"
	// BasisVATInclusive grows the net price by the full VAT rate.
	BasisVATInclusive Basis = "vat_inclusive"
	// BasisWhite grows the net price by half the VAT rate, the alternate
	// invoicing price point used by the business.
	BasisWhite Basis = "white"
)

// Valid reports whether the basis is one of the known price interpretations.
func (b Basis) Valid() bool {
	switch b {
	case BasisNet, BasisVATInclusive, BasisWhite:
		return true
	}
	return false
}

var (
	hundred    = decimal.NewFromInt(100)
	twoHundred = decimal.NewFromInt(200)
)

// VATInclusiveUnit returns net * (1 + vatRate/100).
func VATInclusiveUnit(unitPriceNet, vatRate decimal.Decimal) decimal.Decimal {
	return unitPriceNet.Mul(decimal.NewFromInt(1).Add(vatRate.Div(hundred)))
}

// WhiteUnit returns net * (1 + vatRate/200). With a zero VAT rate the white
// price equals the net price.
func WhiteUnit(unitPriceNet, vatRate decimal.Decimal) decimal.Decimal {
	return unitPriceNet.Mul(decimal.NewFromInt(1).Add(vatRate.Div(twoHundred)))
}

// UnitFor returns the unit price under the given basis. An unknown basis
// falls back to the net price; basis validation belongs to the order layer.
func UnitFor(unitPriceNet, vatRate decimal.Decimal, basis Basis) decimal.Decimal {
	switch basis {
	case BasisVATInclusive:
		return VATInclusiveUnit(unitPriceNet, vatRate)
	case BasisWhite:
		return WhiteUnit(unitPriceNet, vatRate)
	default:
		return unitPriceNet
	}
}

// LineTotal returns price * quantity. The engine is total: it never rejects
// a quantity, negative values simply contribute a negative amount.
func LineTotal(unitPrice decimal.Decimal, quantity int64) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(quantity))
}

// Line is a priced order line input for aggregate totals.
type Line struct {
	UnitPriceNet decimal.Decimal
	VATRate      decimal.Decimal
	Quantity     int64
}

// Totals aggregates an order under all three price interpretations.
type Totals struct {
	Net          decimal.Decimal `json:"net"`
	VATInclusive decimal.Decimal `json:"vatInclusive"`
	White        decimal.Decimal `json:"white"`
}

// For returns the aggregate total under the given basis.
func (t Totals) For(basis Basis) decimal.Decimal {
	switch basis {
	case BasisVATInclusive:
		return t.VATInclusive
	case BasisWhite:
		return t.White
	default:
		return t.Net
	}
}

// Sum computes the three aggregate totals over all lines. Lines with zero
// quantity contribute nothing.
func Sum(lines []Line) Totals {
	totals := Totals{
		Net:          decimal.Zero,
		VATInclusive: decimal.Zero,
		White:        decimal.Zero,
	}
	for _, line := range lines {
		if line.Quantity == 0 {
			continue
		}
		totals.Net = totals.Net.Add(LineTotal(line.UnitPriceNet, line.Quantity))
		totals.VATInclusive = totals.VATInclusive.Add(LineTotal(VATInclusiveUnit(line.UnitPriceNet, line.VATRate), line.Quantity))
		totals.White = totals.White.Add(LineTotal(WhiteUnit(line.UnitPriceNet, line.VATRate), line.Quantity))
	}
	return totals
}
