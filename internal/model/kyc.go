package model

import (
	"encoding/base64"
	"errors"
	"time"

	"github.com/google/uuid"
)

// KycStatus is the state of an identity-verification case.
// Verified and Rejected are terminal; no transition leaves them.
type KycStatus string

const (
	KycStatusNew                KycStatus = "new"
	KycStatusPartiallyCompleted KycStatus = "partially_completed"
	KycStatusDocumentsUploaded  KycStatus = "documents_uploaded"
	KycStatusUnderReview        KycStatus = "under_review"
	KycStatusVerified           KycStatus = "verified"
	KycStatusRejected           KycStatus = "rejected"
)

// ErrKycCompleted is returned when a status change is attempted on a case
// that was already verified or rejected.
var ErrKycCompleted = errors.New("kyc process already completed")

// KycProcess is one user's identity-verification attempt. It owns a set of
// stored files (at most one active file per category) and moves monotonically
// toward a terminal review decision. Cases are never deleted; they are the
// audit trail.
type KycProcess struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	Status         KycStatus  `json:"status"`
	SessionToken   string     `json:"session_token"`
	LastActivityAt time.Time  `json:"last_activity_at"`
	ReviewComment  string     `json:"review_comment,omitempty"`
	ReviewedBy     string     `json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty"`

	Audit
}

// NewKycProcess creates a fresh case in the New state with a generated
// session token.
func NewKycProcess(userID string, now time.Time) *KycProcess {
	return &KycProcess{
		ID:             uuid.NewString(),
		UserID:         userID,
		Status:         KycStatusNew,
		SessionToken:   NewSessionToken(),
		LastActivityAt: now,
		Audit:          Audit{CreatedBy: userID, CreatedAt: now},
	}
}

// NewSessionToken generates a short, URL-safe opaque token used for
// unauthenticated continuation of a case.
func NewSessionToken() string {
	u := uuid.New()
	return base64.RawURLEncoding.EncodeToString(u[:])[:16]
}

// Equal compares cases by identity only.
func (k *KycProcess) Equal(other *KycProcess) bool {
	return other != nil && k.ID == other.ID
}

// IsTerminal reports whether the case reached a final review decision.
func (k *KycProcess) IsTerminal() bool {
	return k.Status == KycStatusVerified || k.Status == KycStatusRejected
}

// UpdateActivity bumps the last-activity timestamp.
func (k *KycProcess) UpdateActivity(now time.Time) {
	k.LastActivityAt = now
}

// UpdateStatus transitions the case to a new status. Changing a terminal
// case fails with ErrKycCompleted; setting the current status is a no-op.
func (k *KycProcess) UpdateStatus(status KycStatus, now time.Time) error {
	if k.Status == status {
		return nil
	}
	if k.IsTerminal() {
		return ErrKycCompleted
	}
	k.Status = status
	k.LastActivityAt = now
	return nil
}

// CompleteVerification records the terminal review decision. This is the
// only transition into Verified or Rejected.
func (k *KycProcess) CompleteVerification(approved bool, comment, reviewerID string, now time.Time) error {
	if k.IsTerminal() {
		return ErrKycCompleted
	}
	if approved {
		k.Status = KycStatusVerified
	} else {
		k.Status = KycStatusRejected
	}
	k.ReviewComment = comment
	k.ReviewedBy = reviewerID
	reviewedAt := now
	k.ReviewedAt = &reviewedAt
	k.StampModified(reviewerID, now)
	return nil
}

// HasActiveCategory reports whether files contain a non-deleted file of the
// given category. A case may hold at most one active file per category.
func HasActiveCategory(files []StoredFile, category FileCategory) bool {
	for _, f := range files {
		if f.Category == category && f.Status != FileStatusDeleted {
			return true
		}
	}
	return false
}

// Recompute derives the case status from its non-deleted files:
// (id-front and id-back) or a passport page, combined with a face photo,
// counts as a complete document set. Terminal cases are left untouched.
func (k *KycProcess) Recompute(files []StoredFile, now time.Time) error {
	if k.IsTerminal() {
		return nil
	}

	var active []StoredFile
	for _, f := range files {
		if f.Status != FileStatusDeleted {
			active = append(active, f)
		}
	}

	if len(active) == 0 {
		return k.UpdateStatus(KycStatusNew, now)
	}

	hasFront := HasActiveCategory(active, CategoryIDFront)
	hasBack := HasActiveCategory(active, CategoryIDBack)
	hasPassport := HasActiveCategory(active, CategoryPassportMain)
	hasFace := HasActiveCategory(active, CategoryFacePhoto)

	complete := (hasFront && hasBack) || hasPassport

	if complete && hasFace {
		switch k.Status {
		case KycStatusDocumentsUploaded, KycStatusUnderReview:
			return nil
		}
		return k.UpdateStatus(KycStatusDocumentsUploaded, now)
	}
	return k.UpdateStatus(KycStatusPartiallyCompleted, now)
}
