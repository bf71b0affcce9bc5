package wizard

import (
	"strings"

	"github.com/odyssey-erp/proposal-wizard/internal/proposal"
)

func (s *Store) UpdateTechnicalSpecs(patch TechnicalSpecsPatch) {
	s.mutate(func(p *proposal.Proposal) bool {
		ts := &p.TechnicalSpecs
		apply(&ts.WarrantyPeriod, patch.WarrantyPeriod)
		apply(&ts.InspectionRequired, patch.InspectionRequired)
		apply(&ts.HazardousArea, patch.HazardousArea)
		if patch.Standards != nil {
			ts.Standards = uniqueStrings(*patch.Standards)
		}
		if patch.ApplicableCodes != nil {
			ts.ApplicableCodes = uniqueStrings(*patch.ApplicableCodes)
		}
		if patch.ScopeOfSupply != nil {
			items := make([]proposal.ScopeItem, len(*patch.ScopeOfSupply))
			copy(items, *patch.ScopeOfSupply)
			ts.ScopeOfSupply = proposal.RenumberScope(items)
		}
		return true
	})
}

// AddStandard adds a standard reference unless already listed.
func (s *Store) AddStandard(standard string) {
	standard = strings.TrimSpace(standard)
	if standard == "" {
		return
	}
	s.mutate(func(p *proposal.Proposal) bool {
		for _, existing := range p.TechnicalSpecs.Standards {
			if existing == standard {
				return false
			}
		}
		p.TechnicalSpecs.Standards = append(p.TechnicalSpecs.Standards, standard)
		return true
	})
}

func (s *Store) RemoveStandard(standard string) {
	s.mutate(func(p *proposal.Proposal) bool {
		for i, existing := range p.TechnicalSpecs.Standards {
			if existing == standard {
				p.TechnicalSpecs.Standards = removeAt(p.TechnicalSpecs.Standards, i)
				return true
			}
		}
		return false
	})
}

// AddEquipment appends equipment with a fresh stable id.
func (s *Store) AddEquipment(item proposal.Equipment) string {
	var id string
	s.mutate(func(p *proposal.Proposal) bool {
		item.ID = s.newID()
		if item.Quantity < 1 {
			item.Quantity = 1
		}
		item.MotorHP = nonNegative(item.MotorHP)
		id = item.ID
		p.TechnicalSpecs.Equipment = proposal.RenumberEquipment(append(p.TechnicalSpecs.Equipment, item))
		return true
	})
	return id
}

func (s *Store) UpdateEquipment(id string, patch EquipmentPatch) {
	s.mutate(func(p *proposal.Proposal) bool {
		idx := equipmentIndex(p.TechnicalSpecs.Equipment, id)
		if idx < 0 {
			return false
		}
		e := &p.TechnicalSpecs.Equipment[idx]
		apply(&e.TagNumber, patch.TagNumber)
		apply(&e.Type, patch.Type)
		apply(&e.Model, patch.Model)
		apply(&e.Capacity, patch.Capacity)
		apply(&e.MOC, patch.MOC)
		if patch.MotorHP != nil {
			e.MotorHP = nonNegative(*patch.MotorHP)
		}
		apply(&e.Description, patch.Description)
		if patch.Quantity != nil {
			e.Quantity = max(*patch.Quantity, 1)
		}
		return true
	})
}

func (s *Store) RemoveEquipment(id string) {
	s.mutate(func(p *proposal.Proposal) bool {
		idx := equipmentIndex(p.TechnicalSpecs.Equipment, id)
		if idx < 0 {
			return false
		}
		p.TechnicalSpecs.Equipment = proposal.RenumberEquipment(removeAt(p.TechnicalSpecs.Equipment, idx))
		return true
	})
}

// ReorderEquipment rearranges equipment to match ids. Unknown ids are dropped,
// equipment missing from ids is removed.
func (s *Store) ReorderEquipment(ids []string) {
	s.mutate(func(p *proposal.Proposal) bool {
		reordered := make([]proposal.Equipment, 0, len(ids))
		seen := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			if _, dup := seen[id]; dup {
				continue
			}
			idx := equipmentIndex(p.TechnicalSpecs.Equipment, id)
			if idx < 0 {
				continue
			}
			seen[id] = struct{}{}
			reordered = append(reordered, p.TechnicalSpecs.Equipment[idx])
		}
		p.TechnicalSpecs.Equipment = proposal.RenumberEquipment(reordered)
		return true
	})
}

// DuplicateEquipment appends a copy of id and returns the new id.
func (s *Store) DuplicateEquipment(id string) string {
	var newID string
	s.mutate(func(p *proposal.Proposal) bool {
		idx := equipmentIndex(p.TechnicalSpecs.Equipment, id)
		if idx < 0 {
			return false
		}
		dup := p.TechnicalSpecs.Equipment[idx]
		dup.ID = s.newID()
		if dup.TagNumber != "" {
			dup.TagNumber += "-COPY"
		}
		newID = dup.ID
		p.TechnicalSpecs.Equipment = proposal.RenumberEquipment(append(p.TechnicalSpecs.Equipment, dup))
		return true
	})
	return newID
}

func (s *Store) AddScopeItem(item proposal.ScopeItem) {
	s.mutate(func(p *proposal.Proposal) bool {
		if item.Unit == "" {
			item.Unit = proposal.DefaultUnit
		}
		item.Quantity = nonNegative(item.Quantity)
		p.TechnicalSpecs.ScopeOfSupply = proposal.RenumberScope(append(p.TechnicalSpecs.ScopeOfSupply, item))
		return true
	})
}

func (s *Store) UpdateScopeItem(index int, patch ScopeItemPatch) {
	s.mutate(func(p *proposal.Proposal) bool {
		if index < 0 || index >= len(p.TechnicalSpecs.ScopeOfSupply) {
			return false
		}
		item := &p.TechnicalSpecs.ScopeOfSupply[index]
		apply(&item.Item, patch.Item)
		apply(&item.Description, patch.Description)
		apply(&item.Unit, patch.Unit)
		if patch.Quantity != nil {
			item.Quantity = nonNegative(*patch.Quantity)
		}
		return true
	})
}

func (s *Store) RemoveScopeItem(index int) {
	s.mutate(func(p *proposal.Proposal) bool {
		if index < 0 || index >= len(p.TechnicalSpecs.ScopeOfSupply) {
			return false
		}
		p.TechnicalSpecs.ScopeOfSupply = proposal.RenumberScope(removeAt(p.TechnicalSpecs.ScopeOfSupply, index))
		return true
	})
}

func equipmentIndex(items []proposal.Equipment, id string) int {
	for i, e := range items {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func uniqueStrings(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
