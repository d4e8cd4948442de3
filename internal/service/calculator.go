package service

import (
	"fmt"

	"github.com/cleberrangel/quickquote-api/internal/model"
	"github.com/shopspring/decimal"
)

// CurrencySymbol prefixes every amount shown on a document.
const CurrencySymbol = "$"

// Calculate derives subtotal, tax and grand total for req.
// Nothing is rounded here; rounding only happens when amounts are formatted.
// The grand total is allowed to go negative when the discount is larger than
// subtotal plus tax.
func Calculate(req model.EstimateRequest) model.EstimateResult {
	subtotal := decimal.Zero
	for _, item := range req.LineItems {
		subtotal = subtotal.Add(item.Total())
	}

	taxAmount := subtotal.Mul(req.TaxRate())

	return model.EstimateResult{
		LineItems:  req.LineItems,
		Subtotal:   subtotal,
		TaxAmount:  taxAmount,
		Discount:   req.Discount,
		GrandTotal: subtotal.Add(taxAmount).Sub(req.Discount),
	}
}

// FormatMoney renders an amount with the currency prefix and two decimals.
func FormatMoney(d decimal.Decimal) string {
	return CurrencySymbol + d.StringFixed(2)
}

// FormatRate shows a unit rate with at least two decimals, keeping any extra
// precision the requester typed (0.125 stays 0.125). Rates are always
// padded rather than echoed as typed, so 50.0 prints as 50.00.
func FormatRate(d decimal.Decimal) string {
	if d.Exponent() >= -2 {
		return d.StringFixed(2)
	}
	return d.String()
}

// FormatLineItem returns the item row text:
// "{description} - Qty: {quantity} @ ${rate} = ${line_total}".
func FormatLineItem(item model.LineItem) string {
	return fmt.Sprintf("%s - Qty: %d @ %s%s = %s",
		item.Description, item.Quantity, CurrencySymbol, FormatRate(item.Rate), FormatMoney(item.Total()))
}

// TotalsLines returns the fixed totals block in display order.
func TotalsLines(res model.EstimateResult) []string {
	return []string{
		"Subtotal: " + FormatMoney(res.Subtotal),
		"Tax: " + FormatMoney(res.TaxAmount),
		"Discount: -" + FormatMoney(res.Discount),
		"Grand Total: " + FormatMoney(res.GrandTotal),
	}
}
