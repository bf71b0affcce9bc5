package wizard

import (
	"math"

	"github.com/odyssey-erp/proposal-wizard/internal/proposal"
)

// Patches carry optional fields: a non-nil pointer replaces the target field,
// nil leaves it untouched. Derived fields (ids, line numbers, totals) are not
// patchable.

type ClientDetailsPatch struct {
	ClientName           *string
	ClientCode           *string
	Industry             *string
	ProjectName          *string
	EnquiryReference     *string
	EnquiryDate          *string
	ProposedDeliveryDate *string
	ClientAddress        *proposal.Address
	Sites                *[]proposal.Site
	Contacts             *[]proposal.Contact
}

type AddressPatch struct {
	Line1   *string
	Line2   *string
	City    *string
	State   *string
	Pincode *string
	Country *string
}

type SitePatch struct {
	Name           *string
	Address        *string
	City           *string
	State          *string
	Pincode        *string
	Country        *string
	GPSCoordinates *proposal.GPSCoordinates
}

type ContactPatch struct {
	Name        *string
	Designation *string
	Email       *string
	Phone       *string
	IsPrimary   *bool
}

type TechnicalSpecsPatch struct {
	ScopeOfSupply      *[]proposal.ScopeItem
	WarrantyPeriod     *string
	Standards          *[]string
	ApplicableCodes    *[]string
	InspectionRequired *bool
	HazardousArea      *bool
}

type EquipmentPatch struct {
	TagNumber   *string
	Type        *string
	Model       *string
	Capacity    *string
	MOC         *string
	MotorHP     *float64
	Quantity    *int
	Description *string
}

type ScopeItemPatch struct {
	Item        *string
	Description *string
	Quantity    *float64
	Unit        *string
}

type CommercialsPatch struct {
	Currency          *proposal.Currency
	GSTRate           *float64
	GSTNumber         *string
	Freight           *float64
	Insurance         *float64
	SparesCost        *float64
	CommissioningCost *float64
}

type TermsPatch struct {
	PriceBasis           *string
	PaymentTerms         *string
	AdvancePercentage    *float64
	CreditDays           *int
	DeliveryWeeks        *int
	PartialShipment      *bool
	PriceValidityDays    *int
	WarrantyMonths       *int
	PerformanceGuarantee *bool
	LDClause             *bool
	ForceMajeure         *bool
	Arbitration          *string
	Jurisdiction         *string
}

type PricingItemPatch struct {
	EquipmentID *string
	Description *string
	Quantity    *float64
	UnitPrice   *float64
}

type ReviewPatch struct {
	Notes           *string
	InternalRemarks *string
	PreparedBy      *string
}

// Ptr is a convenience for building patches.
func Ptr[T any](v T) *T {
	return &v
}

func apply[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// finite reports whether v can be encoded in a snapshot.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// nonNegative maps negative and non-finite amounts to 0.
func nonNegative(v float64) float64 {
	if !finite(v) || v < 0 {
		return 0
	}
	return v
}

// clamp bounds v to [lo, hi]; non-finite input yields lo.
func clamp(v, lo, hi float64) float64 {
	if !finite(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
