package proposal

import "strings"

// RenderDocument is the flat, field-keyed view of a proposal consumed by the
// PDF template. Field names are part of the rendering contract.
type RenderDocument struct {
	OfferNumber      string `json:"offerNumber" validate:"required"`
	Revision         string `json:"revision,omitempty"`
	Date             string `json:"date,omitempty"`
	Status           Status `json:"status,omitempty"`
	ClientName       string `json:"clientName" validate:"required"`
	ClientCode       string `json:"clientCode,omitempty"`
	ProjectName      string `json:"projectName,omitempty"`
	EnquiryReference string `json:"enquiryReference,omitempty"`
	EnquiryDate      string `json:"enquiryDate,omitempty"`

	AddressLine1 string `json:"addressLine1,omitempty"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	Pincode      string `json:"pincode,omitempty"`
	Country      string `json:"country,omitempty"`

	Site *Site `json:"site,omitempty"`

	Contacts       []Contact `json:"contacts,omitempty"`
	PrimaryContact *Contact  `json:"primaryContact,omitempty"`

	Equipment      []Equipment `json:"equipment,omitempty"`
	ScopeOfSupply  []ScopeItem `json:"scopeOfSupply,omitempty"`
	WarrantyPeriod string      `json:"warrantyPeriod,omitempty"`
	Standards      []string    `json:"standards,omitempty"`

	Currency     Currency      `json:"currency,omitempty"`
	PricingItems []PricingItem `json:"pricingItems,omitempty"`
	SubTotal     float64       `json:"subTotal"`
	GSTRate      float64       `json:"gstRate"`
	TotalTaxes   float64       `json:"totalTaxes"`
	Freight      float64       `json:"freight"`
	Insurance    float64       `json:"insurance"`
	GrandTotal   float64       `json:"grandTotal"`

	PriceBasis           string  `json:"priceBasis,omitempty"`
	PaymentTerms         string  `json:"paymentTerms,omitempty"`
	AdvancePercentage    float64 `json:"advancePercentage"`
	DeliveryWeeks        int     `json:"deliveryWeeks"`
	PriceValidityDays    int     `json:"priceValidityDays"`
	WarrantyMonths       int     `json:"warrantyMonths"`
	PartialShipment      bool    `json:"partialShipment"`
	PerformanceGuarantee bool    `json:"performanceGuarantee"`
	LDClause             bool    `json:"ldClause"`
	ForceMajeure         bool    `json:"forceMajeure"`
	Arbitration          string  `json:"arbitration,omitempty"`
	Jurisdiction         string  `json:"jurisdiction,omitempty"`

	Notes      string `json:"notes,omitempty"`
	PreparedBy string `json:"preparedBy,omitempty"`
}

// Flatten projects p into the rendering contract. Totals are recomputed from the
// pricing inputs so a stale document never prints inconsistent figures.
func Flatten(p *Proposal) RenderDocument {
	if p == nil {
		return RenderDocument{}
	}
	c := p.Clone().Commercials
	c.ApplyTotals()

	doc := RenderDocument{
		OfferNumber:      p.Metadata.ProposalNumber,
		Revision:         p.Metadata.Revision,
		Status:           p.Metadata.Status,
		ClientName:       strings.TrimSpace(p.ClientDetails.ClientName),
		ClientCode:       p.ClientDetails.ClientCode,
		ProjectName:      p.ClientDetails.ProjectName,
		EnquiryReference: p.ClientDetails.EnquiryReference,
		EnquiryDate:      p.ClientDetails.EnquiryDate,

		AddressLine1: p.ClientDetails.ClientAddress.Line1,
		AddressLine2: p.ClientDetails.ClientAddress.Line2,
		City:         p.ClientDetails.ClientAddress.City,
		State:        p.ClientDetails.ClientAddress.State,
		Pincode:      p.ClientDetails.ClientAddress.Pincode,
		Country:      p.ClientDetails.ClientAddress.Country,

		Contacts:       cloneSlice(p.ClientDetails.Contacts),
		Equipment:      cloneSlice(p.TechnicalSpecs.Equipment),
		ScopeOfSupply:  cloneSlice(p.TechnicalSpecs.ScopeOfSupply),
		WarrantyPeriod: p.TechnicalSpecs.WarrantyPeriod,
		Standards:      cloneSlice(p.TechnicalSpecs.Standards),

		Currency:     c.Currency,
		PricingItems: c.PricingItems,
		SubTotal:     c.SubTotal,
		GSTRate:      c.Taxes.GSTRate,
		TotalTaxes:   c.TotalTaxes,
		Freight:      c.Freight.Amount,
		Insurance:    c.Insurance.Amount,
		GrandTotal:   c.GrandTotal,

		PriceBasis:           c.Terms.PriceBasis,
		PaymentTerms:         c.Terms.PaymentTerms,
		AdvancePercentage:    c.Terms.AdvancePercentage,
		DeliveryWeeks:        c.Terms.DeliveryWeeks,
		PriceValidityDays:    c.Terms.PriceValidityDays,
		WarrantyMonths:       c.Terms.WarrantyMonths,
		PartialShipment:      c.Terms.PartialShipment,
		PerformanceGuarantee: c.Terms.PerformanceGuarantee,
		LDClause:             c.Terms.LDClause,
		ForceMajeure:         c.Terms.ForceMajeure,
		Arbitration:          c.Terms.Arbitration,
		Jurisdiction:         c.Terms.Jurisdiction,

		Notes:      p.Review.Notes,
		PreparedBy: p.Review.PreparedBy,
	}
	if !p.Metadata.CreatedAt.IsZero() {
		doc.Date = p.Metadata.CreatedAt.Format("02 Jan 2006")
	}
	if site, ok := p.ClientDetails.SelectedSite(); ok {
		site = cloneSites([]Site{site})[0]
		doc.Site = &site
	}
	if primary, ok := p.ClientDetails.PrimaryContact(); ok {
		doc.PrimaryContact = &primary
	}
	if doc.PreparedBy == "" {
		doc.PreparedBy = p.Metadata.CreatedBy
	}
	return doc
}
