package postgres

import (
	"context"
	"database/sql"

	"filestore/internal/model"
	"filestore/internal/repository"
)

// KycPostgres is a PostgreSQL implementation of repository.KycRepository.
type KycPostgres struct {
	db *sql.DB
}

// NewKycPostgres creates a new KycPostgres repository.
func NewKycPostgres(db *sql.DB) *KycPostgres {
	return &KycPostgres{db: db}
}

var _ repository.KycRepository = (*KycPostgres)(nil)

const kycColumns = `
	id, user_id, status, session_token, last_activity_at, review_comment,
	reviewed_by, reviewed_at, created_by, created_at, modified_by, modified_at,
	deleted_by, deleted_at, is_deleted`

func scanKyc(row interface{ Scan(...any) error }) (*model.KycProcess, error) {
	var (
		k          model.KycProcess
		comment    sql.NullString
		reviewedBy sql.NullString
		reviewedAt sql.NullTime
		modifiedBy sql.NullString
		modifiedAt sql.NullTime
		deletedBy  sql.NullString
		deletedAt  sql.NullTime
	)
	if err := row.Scan(
		&k.ID,
		&k.UserID,
		&k.Status,
		&k.SessionToken,
		&k.LastActivityAt,
		&comment,
		&reviewedBy,
		&reviewedAt,
		&k.CreatedBy,
		&k.CreatedAt,
		&modifiedBy,
		&modifiedAt,
		&deletedBy,
		&deletedAt,
		&k.IsDeleted,
	); err != nil {
		return nil, err
	}
	k.ReviewComment = comment.String
	k.ReviewedBy = reviewedBy.String
	if reviewedAt.Valid {
		t := reviewedAt.Time
		k.ReviewedAt = &t
	}
	k.ModifiedBy = modifiedBy.String
	if modifiedAt.Valid {
		t := modifiedAt.Time
		k.ModifiedAt = &t
	}
	k.DeletedBy = deletedBy.String
	if deletedAt.Valid {
		t := deletedAt.Time
		k.DeletedAt = &t
	}
	return &k, nil
}

// Create inserts a new case row and returns the stored record.
func (r *KycPostgres) Create(ctx context.Context, process *model.KycProcess) (*model.KycProcess, error) {
	const q = `
		INSERT INTO kyc_processes (
			id, user_id, status, session_token, last_activity_at,
			created_by, created_at, is_deleted
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + kycColumns
	row := r.db.QueryRowContext(ctx, q,
		process.ID,
		process.UserID,
		process.Status,
		process.SessionToken,
		process.LastActivityAt,
		process.CreatedBy,
		process.CreatedAt,
		process.IsDeleted,
	)
	return scanKyc(row)
}

// FindByID fetches a single case by its ID.
func (r *KycPostgres) FindByID(ctx context.Context, id string) (*model.KycProcess, error) {
	const q = `SELECT ` + kycColumns + ` FROM kyc_processes WHERE id = $1`
	return scanKyc(r.db.QueryRowContext(ctx, q, id))
}

// FindBySessionToken fetches the case addressed by its opaque token.
func (r *KycPostgres) FindBySessionToken(ctx context.Context, token string) (*model.KycProcess, error) {
	const q = `SELECT ` + kycColumns + ` FROM kyc_processes WHERE session_token = $1`
	return scanKyc(r.db.QueryRowContext(ctx, q, token))
}

// FindActiveByUser fetches the user's most recently active non-terminal case.
func (r *KycPostgres) FindActiveByUser(ctx context.Context, userID string) (*model.KycProcess, error) {
	const q = `SELECT ` + kycColumns + `
		FROM kyc_processes
		WHERE user_id = $1 AND status NOT IN ($2, $3)
		ORDER BY last_activity_at DESC
		LIMIT 1`
	return scanKyc(r.db.QueryRowContext(ctx, q, userID, model.KycStatusVerified, model.KycStatusRejected))
}

// Update persists the mutable columns of the case row.
func (r *KycPostgres) Update(ctx context.Context, process *model.KycProcess) error {
	const q = `
		UPDATE kyc_processes
		SET status = $2, last_activity_at = $3, review_comment = $4,
		    reviewed_by = $5, reviewed_at = $6,
		    modified_by = $7, modified_at = $8,
		    deleted_by = $9, deleted_at = $10, is_deleted = $11
		WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q,
		process.ID,
		process.Status,
		process.LastActivityAt,
		nullStr(process.ReviewComment),
		nullStr(process.ReviewedBy),
		nullTime(process.ReviewedAt),
		nullStr(process.ModifiedBy),
		nullTime(process.ModifiedAt),
		nullStr(process.DeletedBy),
		nullTime(process.DeletedAt),
		process.IsDeleted,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
