package model

import "time"

// Audit is the envelope of audit fields shared by every aggregate.
// The mutating operation is responsible for stamping these fields explicitly;
// there is no implicit persistence hook, and read paths must filter on
// IsDeleted themselves.
type Audit struct {
	CreatedBy  string     `json:"created_by,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ModifiedBy string     `json:"modified_by,omitempty"`
	ModifiedAt *time.Time `json:"modified_at,omitempty"`
	DeletedBy  string     `json:"deleted_by,omitempty"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
	IsDeleted  bool       `json:"is_deleted"`
}

// StampModified records who touched the aggregate and when.
func (a *Audit) StampModified(by string, at time.Time) {
	a.ModifiedBy = by
	a.ModifiedAt = &at
}

// StampDeleted records the deletion audit trail. The row itself is kept.
func (a *Audit) StampDeleted(by string, at time.Time) {
	a.DeletedBy = by
	a.DeletedAt = &at
	a.IsDeleted = true
}
