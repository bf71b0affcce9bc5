package wizard

import "github.com/odyssey-erp/proposal-wizard/internal/proposal"

func (s *Store) UpdateReview(patch ReviewPatch) {
	s.mutate(func(p *proposal.Proposal) bool {
		apply(&p.Review.Notes, patch.Notes)
		apply(&p.Review.InternalRemarks, patch.InternalRemarks)
		apply(&p.Review.PreparedBy, patch.PreparedBy)
		return true
	})
}

// AddAttachment records attachment metadata, filling id and upload time when unset.
func (s *Store) AddAttachment(att proposal.Attachment) string {
	var id string
	s.mutate(func(p *proposal.Proposal) bool {
		if att.ID == "" {
			att.ID = s.newID()
		}
		if att.UploadedAt.IsZero() {
			att.UploadedAt = s.now()
		}
		id = att.ID
		p.Review.Attachments = append(p.Review.Attachments, att)
		return true
	})
	return id
}

func (s *Store) RemoveAttachment(id string) {
	s.mutate(func(p *proposal.Proposal) bool {
		for i, att := range p.Review.Attachments {
			if att.ID == id {
				p.Review.Attachments = removeAt(p.Review.Attachments, i)
				return true
			}
		}
		return false
	})
}
