package proposal

import "time"

type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
)

type Currency string

const (
	CurrencyINR Currency = "INR"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
)

const (
	DefaultGSTRate   = 18.0
	DefaultRevision  = "A"
	DefaultCreatedBy = "field-engineer"
	DefaultDeviceID  = "device-001"
	DefaultUnit      = "Nos"
)

type Proposal struct {
	Metadata       Metadata                `json:"metadata"`
	ClientDetails  ClientDetails           `json:"clientDetails"`
	TechnicalSpecs TechnicalSpecifications `json:"technicalSpecs"`
	Commercials    Commercials             `json:"commercials"`
	Review         Review                  `json:"review"`
}

type Metadata struct {
	ID             string     `json:"id"`
	ProposalNumber string     `json:"proposalNumber"`
	Revision       string     `json:"revision"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	CreatedBy      string     `json:"createdBy"`
	Status         Status     `json:"status"`
	IsSynced       bool       `json:"isSynced"`
	LastSyncedAt   *time.Time `json:"lastSyncedAt,omitempty"`
	DeviceID       string     `json:"deviceId"`
}

type ClientDetails struct {
	ClientName           string    `json:"clientName"`
	ClientCode           string    `json:"clientCode,omitempty"`
	Industry             string    `json:"industry,omitempty"`
	ProjectName          string    `json:"projectName,omitempty"`
	EnquiryReference     string    `json:"enquiryReference,omitempty"`
	EnquiryDate          string    `json:"enquiryDate,omitempty"`
	ProposedDeliveryDate string    `json:"proposedDeliveryDate,omitempty"`
	ClientAddress        Address   `json:"clientAddress"`
	Sites                []Site    `json:"sites"`
	Contacts             []Contact `json:"contacts"`
	SelectedSiteID       string    `json:"selectedSiteId,omitempty"`
	SelectedContactID    string    `json:"selectedContactId,omitempty"`
}

type Address struct {
	Line1   string `json:"line1,omitempty"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Pincode string `json:"pincode,omitempty"`
	Country string `json:"country,omitempty"`
}

// Site is a client plant or delivery location.
type Site struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Address        string          `json:"address,omitempty"`
	City           string          `json:"city,omitempty"`
	State          string          `json:"state,omitempty"`
	Pincode        string          `json:"pincode,omitempty"`
	Country        string          `json:"country,omitempty"`
	GPSCoordinates *GPSCoordinates `json:"gpsCoordinates,omitempty"`
}

type GPSCoordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Contact struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Designation string `json:"designation,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	IsPrimary   bool   `json:"isPrimary"`
}

type TechnicalSpecifications struct {
	Equipment          []Equipment `json:"equipment"`
	ScopeOfSupply      []ScopeItem `json:"scopeOfSupply"`
	WarrantyPeriod     string      `json:"warrantyPeriod,omitempty"`
	Standards          []string    `json:"standards"`
	ApplicableCodes    []string    `json:"applicableCodes"`
	InspectionRequired bool        `json:"inspectionRequired"`
	HazardousArea      bool        `json:"hazardousArea"`
}

type Equipment struct {
	ID          string  `json:"id"`
	LineItemNo  int     `json:"lineItemNo"`
	TagNumber   string  `json:"tagNumber,omitempty"`
	Type        string  `json:"type"`
	Model       string  `json:"model,omitempty"`
	Capacity    string  `json:"capacity,omitempty"`
	MOC         string  `json:"moc,omitempty"`
	MotorHP     float64 `json:"motorHP,omitempty"`
	Quantity    int     `json:"quantity"`
	Description string  `json:"description,omitempty"`
}

type ScopeItem struct {
	LineItemNo  int     `json:"lineItemNo"`
	Item        string  `json:"item"`
	Description string  `json:"description,omitempty"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
}

type Commercials struct {
	Currency          Currency      `json:"currency"`
	PricingItems      []PricingItem `json:"pricingItems"`
	Taxes             Taxes         `json:"taxes"`
	Freight           Charge        `json:"freight"`
	Insurance         Charge        `json:"insurance"`
	Terms             Terms         `json:"terms"`
	SparesCost        float64       `json:"sparesCost,omitempty"`
	CommissioningCost float64       `json:"commissioningCost,omitempty"`

	// Derived by ApplyTotals.
	SubTotal   float64 `json:"subTotal"`
	TotalTaxes float64 `json:"totalTaxes"`
	GrandTotal float64 `json:"grandTotal"`
}

type Taxes struct {
	GSTRate   float64 `json:"gstRate"`
	GSTNumber string  `json:"gstNumber,omitempty"`
}

type Charge struct {
	Amount float64 `json:"amount"`
}

type PricingItem struct {
	ID          string  `json:"id"`
	EquipmentID string  `json:"equipmentId,omitempty"`
	LineItemNo  int     `json:"lineItemNo"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	TotalPrice  float64 `json:"totalPrice"`
}

type Terms struct {
	PriceBasis           string  `json:"priceBasis"`
	PaymentTerms         string  `json:"paymentTerms,omitempty"`
	AdvancePercentage    float64 `json:"advancePercentage"`
	CreditDays           int     `json:"creditDays"`
	DeliveryWeeks        int     `json:"deliveryWeeks"`
	PartialShipment      bool    `json:"partialShipment"`
	PriceValidityDays    int     `json:"priceValidityDays"`
	WarrantyMonths       int     `json:"warrantyMonths"`
	PerformanceGuarantee bool    `json:"performanceGuarantee"`
	LDClause             bool    `json:"ldClause"`
	ForceMajeure         bool    `json:"forceMajeure"`
	Arbitration          string  `json:"arbitration,omitempty"`
	Jurisdiction         string  `json:"jurisdiction,omitempty"`
}

type Review struct {
	Notes           string       `json:"notes,omitempty"`
	InternalRemarks string       `json:"internalRemarks,omitempty"`
	Attachments     []Attachment `json:"attachments"`
	PreparedBy      string       `json:"preparedBy,omitempty"`
}

type Attachment struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// ListItem is the summary shown in proposal pickers.
type ListItem struct {
	ID             string    `json:"id"`
	ProposalNumber string    `json:"proposalNumber"`
	ClientName     string    `json:"clientName"`
	Status         Status    `json:"status"`
	GrandTotal     float64   `json:"grandTotal"`
	CreatedAt      time.Time `json:"createdAt"`
	IsSynced       bool      `json:"isSynced"`
}

// Summary builds the picker entry for p.
func (p *Proposal) Summary() ListItem {
	return ListItem{
		ID:             p.Metadata.ID,
		ProposalNumber: p.Metadata.ProposalNumber,
		ClientName:     p.ClientDetails.ClientName,
		Status:         p.Metadata.Status,
		GrandTotal:     p.Commercials.GrandTotal,
		CreatedAt:      p.Metadata.CreatedAt,
		IsSynced:       p.Metadata.IsSynced,
	}
}
