package repository

import (
	"context"
	"time"

	"filestore/internal/model"
)

// FileRepository is the durable ledger of stored files. No business logic
// here — strictly persistence operations. Rows are never removed; deletion is
// a status change performed by the caller.
type FileRepository interface {
	// Create inserts a new file record and returns the stored row.
	Create(ctx context.Context, file *model.StoredFile) (*model.StoredFile, error)

	// FindByID returns one file by its ID.
	FindByID(ctx context.Context, id string) (*model.StoredFile, error)

	// FindByUser returns every file owned by the user, regardless of status.
	FindByUser(ctx context.Context, userID string) ([]model.StoredFile, error)

	// FindByKycProcess returns every file attached to the verification case.
	FindByKycProcess(ctx context.Context, kycProcessID string) ([]model.StoredFile, error)

	// FindByReference returns every file carrying the free-text reference.
	FindByReference(ctx context.Context, reference string) ([]model.StoredFile, error)

	// FindExpiredTemporary returns temporary files whose expiry is before the
	// given instant. Deleted files never match, which makes the reclaimer
	// sweep idempotent.
	FindExpiredTemporary(ctx context.Context, before time.Time) ([]model.StoredFile, error)

	// Update persists the current state of the file row.
	Update(ctx context.Context, file *model.StoredFile) error
}

// KycRepository is the durable store of verification cases. Cases are never
// deleted; they form the audit trail.
type KycRepository interface {
	// Create inserts a new case and returns the stored row.
	Create(ctx context.Context, process *model.KycProcess) (*model.KycProcess, error)

	// FindByID returns one case by its ID.
	FindByID(ctx context.Context, id string) (*model.KycProcess, error)

	// FindBySessionToken returns the case addressed by its opaque token.
	FindBySessionToken(ctx context.Context, token string) (*model.KycProcess, error)

	// FindActiveByUser returns the user's most recently active non-terminal
	// case, or sql.ErrNoRows if none exists.
	FindActiveByUser(ctx context.Context, userID string) (*model.KycProcess, error)

	// Update persists the current state of the case row.
	Update(ctx context.Context, process *model.KycProcess) error
}
