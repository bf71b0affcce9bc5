package proposal

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTotalsSingleItem(t *testing.T) {
	c := Commercials{
		Taxes:        Taxes{GSTRate: 18},
		PricingItems: []PricingItem{{Quantity: 3, UnitPrice: 1500}},
	}
	c.ApplyTotals()

	assert.Equal(t, 4500.0, c.PricingItems[0].TotalPrice)
	assert.Equal(t, 4500.0, c.SubTotal)
	assert.Equal(t, 810.0, c.TotalTaxes)
	assert.Equal(t, 5310.0, c.GrandTotal)
}

func TestComputeTotalsIncludesFreightAndInsurance(t *testing.T) {
	c := Commercials{
		Taxes:     Taxes{GSTRate: 10},
		Freight:   Charge{Amount: 250},
		Insurance: Charge{Amount: 50},
		PricingItems: []PricingItem{
			{Quantity: 2, UnitPrice: 100},
			{Quantity: 1, UnitPrice: 800, TotalPrice: 12345},
		},
	}
	totals := ComputeTotals(c)

	assert.Equal(t, 1000.0, totals.SubTotal)
	assert.Equal(t, 100.0, totals.TotalTaxes)
	assert.Equal(t, 1400.0, totals.GrandTotal)
}

func TestApplyTotalsIsIdempotent(t *testing.T) {
	c := Commercials{
		Taxes: Taxes{GSTRate: 18},
		PricingItems: []PricingItem{
			{Quantity: 7, UnitPrice: 0.1},
			{Quantity: 3, UnitPrice: 333.33},
		},
		Freight: Charge{Amount: 12.5},
	}
	c.ApplyTotals()
	first := c.Totals()
	c.ApplyTotals()
	second := c.Totals()

	assert.Equal(t, first, second)
}

func TestComputeTotalsEmpty(t *testing.T) {
	totals := ComputeTotals(Commercials{Taxes: Taxes{GSTRate: 18}})
	assert.Zero(t, totals.SubTotal)
	assert.Zero(t, totals.TotalTaxes)
	assert.Zero(t, totals.GrandTotal)
}

func TestRenumberDense(t *testing.T) {
	items := []ScopeItem{{LineItemNo: 4}, {LineItemNo: 9}, {LineItemNo: 2}}
	items = RenumberScope(items)
	for i, item := range items {
		assert.Equal(t, i+1, item.LineItemNo)
	}

	pricing := RenumberPricing([]PricingItem{{LineItemNo: 3}, {LineItemNo: 3}})
	assert.Equal(t, 1, pricing[0].LineItemNo)
	assert.Equal(t, 2, pricing[1].LineItemNo)

	equipment := RenumberEquipment([]Equipment{{ID: "b", LineItemNo: 2}, {ID: "a", LineItemNo: 5}})
	assert.Equal(t, "b", equipment[0].ID)
	assert.Equal(t, 1, equipment[0].LineItemNo)
	assert.Equal(t, 2, equipment[1].LineItemNo)
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusDraft, StatusSubmitted, true},
		{StatusSubmitted, StatusApproved, true},
		{StatusSubmitted, StatusRejected, true},
		{StatusDraft, StatusApproved, false},
		{StatusApproved, StatusDraft, false},
		{StatusRejected, StatusSubmitted, false},
		{StatusApproved, StatusApproved, true},
	}
	for _, tc := range cases {
		p := &Proposal{Metadata: Metadata{Status: tc.from}}
		err := p.Transition(tc.to)
		if tc.ok {
			assert.NoError(t, err, "%s -> %s", tc.from, tc.to)
			assert.Equal(t, tc.to, p.Metadata.Status)
		} else {
			assert.ErrorIs(t, err, ErrInvalidStatus, "%s -> %s", tc.from, tc.to)
			assert.Equal(t, tc.from, p.Metadata.Status)
		}
	}
}

func TestParseCurrency(t *testing.T) {
	c, err := ParseCurrency(" usd ")
	require.NoError(t, err)
	assert.Equal(t, CurrencyUSD, c)

	_, err = ParseCurrency("JPY")
	assert.ErrorIs(t, err, ErrUnknownCurrency)
}

func TestNewDefaults(t *testing.T) {
	now := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)
	p := New(NewOptions{ID: "p-1", Now: now})

	assert.Equal(t, "p-1", p.Metadata.ID)
	assert.Equal(t, NumberFor(now), p.Metadata.ProposalNumber)
	assert.Equal(t, StatusDraft, p.Metadata.Status)
	assert.Equal(t, DefaultRevision, p.Metadata.Revision)
	assert.Equal(t, CurrencyINR, p.Commercials.Currency)
	assert.Equal(t, DefaultGSTRate, p.Commercials.Taxes.GSTRate)
	assert.Equal(t, 30.0, p.Commercials.Terms.AdvancePercentage)
	assert.Equal(t, "2025-03-04", p.ClientDetails.EnquiryDate)
	assert.NotNil(t, p.TechnicalSpecs.Equipment)
}

func TestCloneIsDeep(t *testing.T) {
	p := New(NewOptions{ID: "p-1"})
	p.TechnicalSpecs.Equipment = append(p.TechnicalSpecs.Equipment, Equipment{ID: "e1", Type: "Rotary Dryer"})
	clone := p.Clone()
	clone.TechnicalSpecs.Equipment[0].Type = "changed"
	clone.ClientDetails.ClientName = "changed"

	assert.Equal(t, "Rotary Dryer", p.TechnicalSpecs.Equipment[0].Type)
	assert.Empty(t, p.ClientDetails.ClientName)
	assert.Nil(t, (*Proposal)(nil).Clone())
}

func TestFlattenProducesRenderContract(t *testing.T) {
	now := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	p := New(NewOptions{ID: "p-1", Now: now})
	p.ClientDetails.ClientName = "  Acme Foods  "
	p.ClientDetails.ClientAddress = Address{Line1: "Plot 7", City: "Pune", Country: "India"}
	p.ClientDetails.Contacts = []Contact{{ID: "c1", Name: "A"}, {ID: "c2", Name: "B", IsPrimary: true}}
	p.Commercials.PricingItems = []PricingItem{{Description: "Dryer", Quantity: 3, UnitPrice: 1500}}

	doc := Flatten(p)

	assert.Equal(t, p.Metadata.ProposalNumber, doc.OfferNumber)
	assert.Equal(t, "Acme Foods", doc.ClientName)
	assert.Equal(t, "Pune", doc.City)
	assert.Equal(t, "15 Jan 2025", doc.Date)
	require.NotNil(t, doc.PrimaryContact)
	assert.Equal(t, "c2", doc.PrimaryContact.ID)
	assert.Equal(t, 5310.0, doc.GrandTotal)
	assert.Equal(t, 4500.0, doc.PricingItems[0].TotalPrice)
	assert.Equal(t, DefaultCreatedBy, doc.PreparedBy)
	// the source proposal is not touched
	assert.Zero(t, p.Commercials.GrandTotal)

	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	var keys map[string]any
	require.NoError(t, json.Unmarshal(raw, &keys))
	for _, key := range []string{"offerNumber", "clientName", "pricingItems", "subTotal", "grandTotal", "city"} {
		assert.Contains(t, keys, key)
	}
}

func TestFlattenCarriesSelectedSite(t *testing.T) {
	p := New(NewOptions{ID: "p-1"})
	p.ClientDetails.ClientName = "Acme Foods"
	p.ClientDetails.Sites = []Site{
		{ID: "s1", Name: "Head office"},
		{ID: "s2", Name: "Chakan plant", City: "Pune", GPSCoordinates: &GPSCoordinates{Latitude: 18.7, Longitude: 73.8}},
	}

	assert.Nil(t, Flatten(p).Site)

	p.ClientDetails.SelectedSiteID = "s2"
	doc := Flatten(p)
	require.NotNil(t, doc.Site)
	assert.Equal(t, "Chakan plant", doc.Site.Name)
	require.NotNil(t, doc.Site.GPSCoordinates)
	doc.Site.GPSCoordinates.Latitude = 0
	assert.Equal(t, 18.7, p.ClientDetails.Sites[1].GPSCoordinates.Latitude)

	clone := p.Clone()
	clone.ClientDetails.Sites[1].GPSCoordinates.Longitude = 0
	assert.Equal(t, 73.8, p.ClientDetails.Sites[1].GPSCoordinates.Longitude)

	p.ClientDetails.SelectedSiteID = "gone"
	assert.Nil(t, Flatten(p).Site)
}
