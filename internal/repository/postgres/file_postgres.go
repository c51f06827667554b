package postgres

import (
	"context"
	"database/sql"
	"time"

	"filestore/internal/model"
	"filestore/internal/repository"
)

// FilePostgres is a PostgreSQL implementation of repository.FileRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type FilePostgres struct {
	db *sql.DB
}

// NewFilePostgres creates a new FilePostgres repository.
func NewFilePostgres(db *sql.DB) *FilePostgres {
	return &FilePostgres{db: db}
}

var _ repository.FileRepository = (*FilePostgres)(nil)

const fileColumns = `
	id, user_id, original_name, extension, content_type, size, category,
	status, hash, storage_path, bucket, kyc_process_id, reference, description,
	expires_at, created_by, created_at, modified_by, modified_at,
	deleted_by, deleted_at, is_deleted`

func scanFile(row interface{ Scan(...any) error }) (*model.StoredFile, error) {
	var (
		f          model.StoredFile
		kycID      sql.NullString
		reference  sql.NullString
		desc       sql.NullString
		expiresAt  sql.NullTime
		modifiedBy sql.NullString
		modifiedAt sql.NullTime
		deletedBy  sql.NullString
		deletedAt  sql.NullTime
	)
	if err := row.Scan(
		&f.ID,
		&f.UserID,
		&f.OriginalName,
		&f.Extension,
		&f.ContentType,
		&f.Size,
		&f.Category,
		&f.Status,
		&f.Hash,
		&f.StoragePath,
		&f.Bucket,
		&kycID,
		&reference,
		&desc,
		&expiresAt,
		&f.CreatedBy,
		&f.CreatedAt,
		&modifiedBy,
		&modifiedAt,
		&deletedBy,
		&deletedAt,
		&f.IsDeleted,
	); err != nil {
		return nil, err
	}
	f.KycProcessID = kycID.String
	f.Reference = reference.String
	f.Description = desc.String
	if expiresAt.Valid {
		t := expiresAt.Time
		f.ExpiresAt = &t
	}
	f.ModifiedBy = modifiedBy.String
	if modifiedAt.Valid {
		t := modifiedAt.Time
		f.ModifiedAt = &t
	}
	f.DeletedBy = deletedBy.String
	if deletedAt.Valid {
		t := deletedAt.Time
		f.DeletedAt = &t
	}
	return &f, nil
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// Create inserts a new file row and returns the stored record.
func (r *FilePostgres) Create(ctx context.Context, file *model.StoredFile) (*model.StoredFile, error) {
	const q = `
		INSERT INTO files (
			id, user_id, original_name, extension, content_type, size, category,
			status, hash, storage_path, bucket, kyc_process_id, reference, description,
			expires_at, created_by, created_at, is_deleted
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING ` + fileColumns
	row := r.db.QueryRowContext(ctx, q,
		file.ID,
		file.UserID,
		file.OriginalName,
		file.Extension,
		file.ContentType,
		file.Size,
		file.Category,
		file.Status,
		file.Hash,
		file.StoragePath,
		file.Bucket,
		nullStr(file.KycProcessID),
		nullStr(file.Reference),
		nullStr(file.Description),
		nullTime(file.ExpiresAt),
		file.CreatedBy,
		file.CreatedAt,
		file.IsDeleted,
	)
	return scanFile(row)
}

// FindByID fetches a single file by its ID.
func (r *FilePostgres) FindByID(ctx context.Context, id string) (*model.StoredFile, error) {
	const q = `SELECT ` + fileColumns + ` FROM files WHERE id = $1`
	return scanFile(r.db.QueryRowContext(ctx, q, id))
}

func (r *FilePostgres) queryFiles(ctx context.Context, q string, args ...any) ([]model.StoredFile, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	files := make([]model.StoredFile, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return files, nil
}

// FindByUser returns every file owned by the user.
func (r *FilePostgres) FindByUser(ctx context.Context, userID string) ([]model.StoredFile, error) {
	const q = `SELECT ` + fileColumns + ` FROM files WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	return r.queryFiles(ctx, q, userID)
}

// FindByKycProcess returns every file attached to the verification case.
func (r *FilePostgres) FindByKycProcess(ctx context.Context, kycProcessID string) ([]model.StoredFile, error) {
	const q = `SELECT ` + fileColumns + ` FROM files WHERE kyc_process_id = $1 ORDER BY created_at, id`
	return r.queryFiles(ctx, q, kycProcessID)
}

// FindByReference returns every file carrying the given reference.
func (r *FilePostgres) FindByReference(ctx context.Context, reference string) ([]model.StoredFile, error) {
	const q = `SELECT ` + fileColumns + ` FROM files WHERE reference = $1 ORDER BY created_at DESC, id DESC`
	return r.queryFiles(ctx, q, reference)
}

// FindExpiredTemporary returns temporary files whose expiry passed before the
// given instant. Backed by the (status, expires_at) index for sweep queries.
func (r *FilePostgres) FindExpiredTemporary(ctx context.Context, before time.Time) ([]model.StoredFile, error) {
	const q = `SELECT ` + fileColumns + `
		FROM files
		WHERE status = $1 AND expires_at IS NOT NULL AND expires_at < $2
		ORDER BY expires_at`
	return r.queryFiles(ctx, q, model.FileStatusTemporary, before)
}

// Update persists the mutable columns of the file row.
func (r *FilePostgres) Update(ctx context.Context, file *model.StoredFile) error {
	const q = `
		UPDATE files
		SET status = $2, storage_path = $3, bucket = $4, kyc_process_id = $5,
		    reference = $6, description = $7, expires_at = $8,
		    modified_by = $9, modified_at = $10,
		    deleted_by = $11, deleted_at = $12, is_deleted = $13
		WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q,
		file.ID,
		file.Status,
		file.StoragePath,
		file.Bucket,
		nullStr(file.KycProcessID),
		nullStr(file.Reference),
		nullStr(file.Description),
		nullTime(file.ExpiresAt),
		nullStr(file.ModifiedBy),
		nullTime(file.ModifiedAt),
		nullStr(file.DeletedBy),
		nullTime(file.DeletedAt),
		file.IsDeleted,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
