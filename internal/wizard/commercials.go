package wizard

import "github.com/odyssey-erp/proposal-wizard/internal/proposal"

// UpdateCommercials merges patch and recomputes totals. An unknown currency is ignored.
func (s *Store) UpdateCommercials(patch CommercialsPatch) {
	s.mutate(func(p *proposal.Proposal) bool {
		c := &p.Commercials
		if patch.Currency != nil && patch.Currency.Valid() {
			c.Currency = *patch.Currency
		}
		if patch.GSTRate != nil {
			c.Taxes.GSTRate = nonNegative(*patch.GSTRate)
		}
		apply(&c.Taxes.GSTNumber, patch.GSTNumber)
		if patch.Freight != nil {
			c.Freight.Amount = nonNegative(*patch.Freight)
		}
		if patch.Insurance != nil {
			c.Insurance.Amount = nonNegative(*patch.Insurance)
		}
		if patch.SparesCost != nil {
			c.SparesCost = nonNegative(*patch.SparesCost)
		}
		if patch.CommissioningCost != nil {
			c.CommissioningCost = nonNegative(*patch.CommissioningCost)
		}
		c.ApplyTotals()
		return true
	})
}

func (s *Store) UpdateTerms(patch TermsPatch) {
	s.mutate(func(p *proposal.Proposal) bool {
		t := &p.Commercials.Terms
		apply(&t.PriceBasis, patch.PriceBasis)
		apply(&t.PaymentTerms, patch.PaymentTerms)
		if patch.AdvancePercentage != nil {
			t.AdvancePercentage = clamp(*patch.AdvancePercentage, 0, 100)
		}
		if patch.CreditDays != nil {
			t.CreditDays = max(*patch.CreditDays, 0)
		}
		if patch.DeliveryWeeks != nil {
			t.DeliveryWeeks = max(*patch.DeliveryWeeks, 0)
		}
		apply(&t.PartialShipment, patch.PartialShipment)
		if patch.PriceValidityDays != nil {
			t.PriceValidityDays = max(*patch.PriceValidityDays, 0)
		}
		if patch.WarrantyMonths != nil {
			t.WarrantyMonths = max(*patch.WarrantyMonths, 0)
		}
		apply(&t.PerformanceGuarantee, patch.PerformanceGuarantee)
		apply(&t.LDClause, patch.LDClause)
		apply(&t.ForceMajeure, patch.ForceMajeure)
		apply(&t.Arbitration, patch.Arbitration)
		apply(&t.Jurisdiction, patch.Jurisdiction)
		return true
	})
}

// AddPricingItem appends a line and returns its id, or "" without a draft.
// Quantity is at least 1 and unit price never negative.
func (s *Store) AddPricingItem(item proposal.PricingItem) string {
	var id string
	s.mutate(func(p *proposal.Proposal) bool {
		item.ID = s.newID()
		item.Quantity = pricingQuantity(item.Quantity)
		item.UnitPrice = nonNegative(item.UnitPrice)
		id = item.ID
		c := &p.Commercials
		c.PricingItems = proposal.RenumberPricing(append(c.PricingItems, item))
		c.ApplyTotals()
		return true
	})
	return id
}

func (s *Store) UpdatePricingItem(index int, patch PricingItemPatch) {
	s.mutate(func(p *proposal.Proposal) bool {
		return updatePricingAt(&p.Commercials, index, patch)
	})
}

func (s *Store) UpdatePricingItemByID(id string, patch PricingItemPatch) {
	s.mutate(func(p *proposal.Proposal) bool {
		return updatePricingAt(&p.Commercials, pricingIndex(p.Commercials.PricingItems, id), patch)
	})
}

func (s *Store) RemovePricingItem(index int) {
	s.mutate(func(p *proposal.Proposal) bool {
		return removePricingAt(&p.Commercials, index)
	})
}

func (s *Store) RemovePricingItemByID(id string) {
	s.mutate(func(p *proposal.Proposal) bool {
		return removePricingAt(&p.Commercials, pricingIndex(p.Commercials.PricingItems, id))
	})
}

// CalculateTotals recomputes derived totals. It does not mark the draft dirty.
func (s *Store) CalculateTotals() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return
	}
	s.current.Commercials.ApplyTotals()
	s.persistLocked()
}

func updatePricingAt(c *proposal.Commercials, index int, patch PricingItemPatch) bool {
	if index < 0 || index >= len(c.PricingItems) {
		return false
	}
	item := &c.PricingItems[index]
	apply(&item.EquipmentID, patch.EquipmentID)
	apply(&item.Description, patch.Description)
	if patch.Quantity != nil {
		item.Quantity = pricingQuantity(*patch.Quantity)
	}
	if patch.UnitPrice != nil {
		item.UnitPrice = nonNegative(*patch.UnitPrice)
	}
	c.ApplyTotals()
	return true
}

func removePricingAt(c *proposal.Commercials, index int) bool {
	if index < 0 || index >= len(c.PricingItems) {
		return false
	}
	c.PricingItems = proposal.RenumberPricing(removeAt(c.PricingItems, index))
	c.ApplyTotals()
	return true
}

func pricingIndex(items []proposal.PricingItem, id string) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func pricingQuantity(q float64) float64 {
	if !finite(q) || q < 1 {
		return 1
	}
	return q
}
