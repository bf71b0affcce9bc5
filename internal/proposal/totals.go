package proposal

// Totals holds the derived commercial aggregates.
type Totals struct {
	SubTotal   float64 `json:"subTotal"`
	TotalTaxes float64 `json:"totalTaxes"`
	GrandTotal float64 `json:"grandTotal"`
}

// LineTotal returns quantity × unitPrice.
func LineTotal(quantity, unitPrice float64) float64 {
	return quantity * unitPrice
}

// ComputeTotals derives subtotal, tax and grand total from the pricing items.
// Item totals are taken from quantity and unit price, never from TotalPrice.
func ComputeTotals(c Commercials) Totals {
	var subTotal float64
	for _, item := range c.PricingItems {
		subTotal += LineTotal(item.Quantity, item.UnitPrice)
	}
	totalTaxes := subTotal * (c.Taxes.GSTRate / 100)
	return Totals{
		SubTotal:   subTotal,
		TotalTaxes: totalTaxes,
		GrandTotal: subTotal + totalTaxes + c.Freight.Amount + c.Insurance.Amount,
	}
}

// ApplyTotals refreshes every item TotalPrice and the aggregate fields.
func (c *Commercials) ApplyTotals() {
	for i := range c.PricingItems {
		c.PricingItems[i].TotalPrice = LineTotal(c.PricingItems[i].Quantity, c.PricingItems[i].UnitPrice)
	}
	t := ComputeTotals(*c)
	c.SubTotal = t.SubTotal
	c.TotalTaxes = t.TotalTaxes
	c.GrandTotal = t.GrandTotal
}

// Totals returns the currently stored aggregates.
func (c Commercials) Totals() Totals {
	return Totals{SubTotal: c.SubTotal, TotalTaxes: c.TotalTaxes, GrandTotal: c.GrandTotal}
}

// RenumberScope assigns dense 1-based line numbers in list order.
func RenumberScope(items []ScopeItem) []ScopeItem {
	for i := range items {
		items[i].LineItemNo = i + 1
	}
	return items
}

// RenumberPricing assigns dense 1-based line numbers in list order.
func RenumberPricing(items []PricingItem) []PricingItem {
	for i := range items {
		items[i].LineItemNo = i + 1
	}
	return items
}

// RenumberEquipment assigns dense 1-based line numbers in list order. Ids are untouched.
func RenumberEquipment(items []Equipment) []Equipment {
	for i := range items {
		items[i].LineItemNo = i + 1
	}
	return items
}
