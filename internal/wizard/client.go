package wizard

import "github.com/odyssey-erp/proposal-wizard/internal/proposal"

func (s *Store) UpdateClientDetails(patch ClientDetailsPatch) {
	s.mutate(func(p *proposal.Proposal) bool {
		cd := &p.ClientDetails
		apply(&cd.ClientName, patch.ClientName)
		apply(&cd.ClientCode, patch.ClientCode)
		apply(&cd.Industry, patch.Industry)
		apply(&cd.ProjectName, patch.ProjectName)
		apply(&cd.EnquiryReference, patch.EnquiryReference)
		apply(&cd.EnquiryDate, patch.EnquiryDate)
		apply(&cd.ProposedDeliveryDate, patch.ProposedDeliveryDate)
		apply(&cd.ClientAddress, patch.ClientAddress)
		if patch.Sites != nil {
			sites := make([]proposal.Site, len(*patch.Sites))
			for i, site := range *patch.Sites {
				if site.ID == "" {
					site.ID = s.newID()
				}
				site.GPSCoordinates = gpsOrNil(site.GPSCoordinates)
				sites[i] = site
			}
			cd.Sites = sites
			if siteIndex(sites, cd.SelectedSiteID) < 0 {
				cd.SelectedSiteID = ""
			}
		}
		if patch.Contacts != nil {
			contacts := make([]proposal.Contact, len(*patch.Contacts))
			copy(contacts, *patch.Contacts)
			for i := range contacts {
				if contacts[i].ID == "" {
					contacts[i].ID = s.newID()
				}
			}
			cd.Contacts = contacts
			if contactIndex(contacts, cd.SelectedContactID) < 0 {
				cd.SelectedContactID = ""
			}
		}
		return true
	})
}

func (s *Store) UpdateAddress(patch AddressPatch) {
	s.mutate(func(p *proposal.Proposal) bool {
		addr := &p.ClientDetails.ClientAddress
		apply(&addr.Line1, patch.Line1)
		apply(&addr.Line2, patch.Line2)
		apply(&addr.City, patch.City)
		apply(&addr.State, patch.State)
		apply(&addr.Pincode, patch.Pincode)
		apply(&addr.Country, patch.Country)
		return true
	})
}

// AddSite appends site with a fresh id and returns the id, or "" without a draft.
func (s *Store) AddSite(site proposal.Site) string {
	var id string
	s.mutate(func(p *proposal.Proposal) bool {
		site.ID = s.newID()
		site.GPSCoordinates = gpsOrNil(site.GPSCoordinates)
		id = site.ID
		p.ClientDetails.Sites = append(p.ClientDetails.Sites, site)
		return true
	})
	return id
}

func (s *Store) UpdateSite(id string, patch SitePatch) {
	s.mutate(func(p *proposal.Proposal) bool {
		idx := siteIndex(p.ClientDetails.Sites, id)
		if idx < 0 {
			return false
		}
		site := &p.ClientDetails.Sites[idx]
		apply(&site.Name, patch.Name)
		apply(&site.Address, patch.Address)
		apply(&site.City, patch.City)
		apply(&site.State, patch.State)
		apply(&site.Pincode, patch.Pincode)
		apply(&site.Country, patch.Country)
		if patch.GPSCoordinates != nil {
			site.GPSCoordinates = gpsOrNil(patch.GPSCoordinates)
		}
		return true
	})
}

// RemoveSite drops the site and clears the selection when it pointed there.
func (s *Store) RemoveSite(id string) {
	s.mutate(func(p *proposal.Proposal) bool {
		idx := siteIndex(p.ClientDetails.Sites, id)
		if idx < 0 {
			return false
		}
		p.ClientDetails.Sites = removeAt(p.ClientDetails.Sites, idx)
		if p.ClientDetails.SelectedSiteID == id {
			p.ClientDetails.SelectedSiteID = ""
		}
		return true
	})
}

// SelectSite marks the site the proposal is quoted for.
func (s *Store) SelectSite(id string) {
	s.mutate(func(p *proposal.Proposal) bool {
		if siteIndex(p.ClientDetails.Sites, id) < 0 {
			return false
		}
		p.ClientDetails.SelectedSiteID = id
		return true
	})
}

// AddContact appends contact with a fresh id and returns the id, or "" without a draft.
// The primary flag is stored as given; see SetPrimaryContact for exclusivity.
func (s *Store) AddContact(contact proposal.Contact) string {
	var id string
	s.mutate(func(p *proposal.Proposal) bool {
		contact.ID = s.newID()
		id = contact.ID
		p.ClientDetails.Contacts = append(p.ClientDetails.Contacts, contact)
		return true
	})
	return id
}

func (s *Store) UpdateContact(id string, patch ContactPatch) {
	s.mutate(func(p *proposal.Proposal) bool {
		idx := contactIndex(p.ClientDetails.Contacts, id)
		if idx < 0 {
			return false
		}
		c := &p.ClientDetails.Contacts[idx]
		apply(&c.Name, patch.Name)
		apply(&c.Designation, patch.Designation)
		apply(&c.Email, patch.Email)
		apply(&c.Phone, patch.Phone)
		apply(&c.IsPrimary, patch.IsPrimary)
		return true
	})
}

func (s *Store) RemoveContact(id string) {
	s.mutate(func(p *proposal.Proposal) bool {
		idx := contactIndex(p.ClientDetails.Contacts, id)
		if idx < 0 {
			return false
		}
		p.ClientDetails.Contacts = removeAt(p.ClientDetails.Contacts, idx)
		if p.ClientDetails.SelectedContactID == id {
			p.ClientDetails.SelectedContactID = ""
		}
		return true
	})
}

func (s *Store) RemoveContactAt(index int) {
	s.mutate(func(p *proposal.Proposal) bool {
		if index < 0 || index >= len(p.ClientDetails.Contacts) {
			return false
		}
		removed := p.ClientDetails.Contacts[index].ID
		p.ClientDetails.Contacts = removeAt(p.ClientDetails.Contacts, index)
		if p.ClientDetails.SelectedContactID == removed {
			p.ClientDetails.SelectedContactID = ""
		}
		return true
	})
}

// SelectContact marks the contact addressed on the proposal.
func (s *Store) SelectContact(id string) {
	s.mutate(func(p *proposal.Proposal) bool {
		if contactIndex(p.ClientDetails.Contacts, id) < 0 {
			return false
		}
		p.ClientDetails.SelectedContactID = id
		return true
	})
}

// SetPrimaryContact flags id as the only primary contact.
func (s *Store) SetPrimaryContact(id string) {
	s.mutate(func(p *proposal.Proposal) bool {
		if contactIndex(p.ClientDetails.Contacts, id) < 0 {
			return false
		}
		for i := range p.ClientDetails.Contacts {
			p.ClientDetails.Contacts[i].IsPrimary = p.ClientDetails.Contacts[i].ID == id
		}
		return true
	})
}

func siteIndex(sites []proposal.Site, id string) int {
	if id == "" {
		return -1
	}
	for i, site := range sites {
		if site.ID == id {
			return i
		}
	}
	return -1
}

// gpsOrNil copies coordinates, dropping them when either axis is not a finite number.
func gpsOrNil(gps *proposal.GPSCoordinates) *proposal.GPSCoordinates {
	if gps == nil || !finite(gps.Latitude) || !finite(gps.Longitude) {
		return nil
	}
	out := *gps
	return &out
}

func contactIndex(contacts []proposal.Contact, id string) int {
	for i, c := range contacts {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func removeAt[T any](items []T, idx int) []T {
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:idx]...)
	return append(out, items[idx+1:]...)
}
