package proposal

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewOptions controls the identity fields of a fresh proposal.
type NewOptions struct {
	ID        string
	Now       time.Time
	CreatedBy string
	DeviceID  string
}

// NumberFor derives the proposal number from its creation time.
func NumberFor(createdAt time.Time) string {
	return fmt.Sprintf("PROP-%d", createdAt.UnixMilli())
}

// New returns a draft proposal populated with default commercial terms.
func New(opts NewOptions) *Proposal {
	if opts.ID == "" {
		opts.ID = uuid.NewString()
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}
	if opts.CreatedBy == "" {
		opts.CreatedBy = DefaultCreatedBy
	}
	if opts.DeviceID == "" {
		opts.DeviceID = DefaultDeviceID
	}
	return &Proposal{
		Metadata: NewMetadata(opts),
		ClientDetails: ClientDetails{
			EnquiryDate: opts.Now.Format("2006-01-02"),
			Sites:       []Site{},
			Contacts:    []Contact{},
		},
		TechnicalSpecs: TechnicalSpecifications{
			Equipment:       []Equipment{},
			ScopeOfSupply:   []ScopeItem{},
			Standards:       []string{},
			ApplicableCodes: []string{},
		},
		Commercials: Commercials{
			Currency:     CurrencyINR,
			PricingItems: []PricingItem{},
			Taxes:        Taxes{GSTRate: DefaultGSTRate},
			Terms:        DefaultTerms(),
		},
		Review: Review{Attachments: []Attachment{}},
	}
}

// NewMetadata builds draft metadata; the proposal number is fixed from Now.
func NewMetadata(opts NewOptions) Metadata {
	return Metadata{
		ID:             opts.ID,
		ProposalNumber: NumberFor(opts.Now),
		Revision:       DefaultRevision,
		CreatedAt:      opts.Now,
		UpdatedAt:      opts.Now,
		CreatedBy:      opts.CreatedBy,
		Status:         StatusDraft,
		DeviceID:       opts.DeviceID,
	}
}

func DefaultTerms() Terms {
	return Terms{
		PriceBasis:           "ex_works",
		AdvancePercentage:    30,
		DeliveryWeeks:        8,
		PriceValidityDays:    30,
		WarrantyMonths:       12,
		PerformanceGuarantee: true,
		LDClause:             true,
		ForceMajeure:         true,
	}
}

// Clone returns a deep copy of p. A nil receiver yields nil.
func (p *Proposal) Clone() *Proposal {
	if p == nil {
		return nil
	}
	out := *p
	if p.Metadata.LastSyncedAt != nil {
		ts := *p.Metadata.LastSyncedAt
		out.Metadata.LastSyncedAt = &ts
	}
	out.ClientDetails.Sites = cloneSites(p.ClientDetails.Sites)
	out.ClientDetails.Contacts = cloneSlice(p.ClientDetails.Contacts)
	out.TechnicalSpecs.Equipment = cloneSlice(p.TechnicalSpecs.Equipment)
	out.TechnicalSpecs.ScopeOfSupply = cloneSlice(p.TechnicalSpecs.ScopeOfSupply)
	out.TechnicalSpecs.Standards = cloneSlice(p.TechnicalSpecs.Standards)
	out.TechnicalSpecs.ApplicableCodes = cloneSlice(p.TechnicalSpecs.ApplicableCodes)
	out.Commercials.PricingItems = cloneSlice(p.Commercials.PricingItems)
	out.Review.Attachments = cloneSlice(p.Review.Attachments)
	return &out
}

// PrimaryContact returns the first contact flagged primary, falling back to the first contact.
func (c ClientDetails) PrimaryContact() (Contact, bool) {
	for _, contact := range c.Contacts {
		if contact.IsPrimary {
			return contact, true
		}
	}
	if len(c.Contacts) > 0 {
		return c.Contacts[0], true
	}
	return Contact{}, false
}

// SelectedSite returns the site chosen for the proposal, if it still exists.
func (c ClientDetails) SelectedSite() (Site, bool) {
	if c.SelectedSiteID == "" {
		return Site{}, false
	}
	for _, site := range c.Sites {
		if site.ID == c.SelectedSiteID {
			return site, true
		}
	}
	return Site{}, false
}

func cloneSites(in []Site) []Site {
	out := cloneSlice(in)
	for i := range out {
		if out[i].GPSCoordinates != nil {
			gps := *out[i].GPSCoordinates
			out[i].GPSCoordinates = &gps
		}
	}
	return out
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
