package model

import "time"

// FileStatus is the lifecycle state of a stored file.
// Temporary files expire and are reclaimed; Permanent files never expire.
// Deleted is terminal and soft: the row survives, the bytes do not.
type FileStatus string

const (
	FileStatusTemporary FileStatus = "temporary"
	FileStatusPermanent FileStatus = "permanent"
	// FileStatusProcessing is reserved for future async pipelines.
	// No current operation produces it.
	FileStatusProcessing FileStatus = "processing"
	FileStatusDeleted    FileStatus = "deleted"
)

// FileCategory classifies an uploaded file by its business meaning.
type FileCategory string

const (
	CategoryImage        FileCategory = "image"
	CategoryDocument     FileCategory = "document"
	CategoryIDFront      FileCategory = "id_front"
	CategoryIDBack       FileCategory = "id_back"
	CategoryPassportMain FileCategory = "passport_main"
	CategoryFacePhoto    FileCategory = "face_photo"
	CategoryOther        FileCategory = "other"
)

// IsIdentity reports whether the category belongs to the KYC document set.
// Identity files route to the per-user kyc buckets instead of the generic ones.
func (c FileCategory) IsIdentity() bool {
	switch c {
	case CategoryIDFront, CategoryIDBack, CategoryPassportMain, CategoryFacePhoto:
		return true
	}
	return false
}

// IsImageClass reports whether uploads of this category must pass image
// extension/MIME validation.
func (c FileCategory) IsImageClass() bool {
	return c == CategoryImage || c.IsIdentity()
}

// TemporaryTTL is how long a temporary file is retained before the
// reclaimer is allowed to delete it.
const TemporaryTTL = 5 * 24 * time.Hour

// StoredFile represents one uploaded binary and its metadata.
// This is a pure domain model with no database-specific dependencies or tags;
// it can cross layers (HTTP, service, storage) without coupling to persistence.
type StoredFile struct {
	ID           string       `json:"id"`
	UserID       string       `json:"user_id"`
	OriginalName string       `json:"file_name"`
	Extension    string       `json:"file_extension"`
	ContentType  string       `json:"content_type"`
	Size         int64        `json:"file_size"`
	Category     FileCategory `json:"category"`
	Status       FileStatus   `json:"status"`
	Hash         string       `json:"-"`
	StoragePath  string       `json:"-"`
	Bucket       string       `json:"bucket"`
	KycProcessID string       `json:"kyc_process_id,omitempty"`
	Reference    string       `json:"reference,omitempty"`
	Description  string       `json:"description,omitempty"`
	ExpiresAt    *time.Time   `json:"expires_at,omitempty"`

	Audit
}

// Equal compares files by identity only. Mutable fields never participate.
func (f *StoredFile) Equal(other *StoredFile) bool {
	return other != nil && f.ID == other.ID
}

// MakePermanent records the new location after bytes were copied to a
// permanent bucket. Idempotent: a file that is already permanent keeps its
// current location.
func (f *StoredFile) MakePermanent(newPath, newBucket string) {
	if f.Status == FileStatusPermanent {
		return
	}
	f.StoragePath = newPath
	f.Bucket = newBucket
	f.Status = FileStatusPermanent
	f.ExpiresAt = nil
}

// MarkDeleted transitions the file to its terminal state and stamps the
// deletion audit fields.
func (f *StoredFile) MarkDeleted(by string, at time.Time) {
	f.Status = FileStatusDeleted
	f.StampDeleted(by, at)
}

// AssociateKycProcess links the file to a verification case. The link is a
// weak reference; the case does not own the file.
func (f *StoredFile) AssociateKycProcess(kycProcessID string) {
	f.KycProcessID = kycProcessID
}

// IsExpired reports whether the file is a temporary file whose retention
// window has passed.
func (f *StoredFile) IsExpired(now time.Time) bool {
	return f.Status == FileStatusTemporary &&
		f.ExpiresAt != nil &&
		f.ExpiresAt.Before(now)
}
