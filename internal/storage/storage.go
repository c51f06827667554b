package storage

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
)

// Package storage contains the backend abstraction for stored bytes.
// Implementations must behave identically over a local filesystem and an
// S3-compatible object store so that business logic stays backend-agnostic.

// ErrNotFound is returned when the addressed object does not exist in the
// backend (or exists but is empty, which is treated as corruption).
var ErrNotFound = errors.New("object not found in storage")

// Storage is the contract every backend variant implements. The variant is
// selected once at startup from configuration; callers never choose.
type Storage interface {
	// StageTemporary writes the content under a backend-generated unique key
	// inside the given namespace and returns that key. It never overwrites an
	// existing object and creates the namespace on demand.
	StageTemporary(ctx context.Context, r io.Reader, originalName, namespace string, size int64, contentType string) (string, error)

	// Promote copies the object to a new key in the destination namespace and
	// returns the new key. The source is NOT deleted; cleanup is the
	// reclaimer's job. Fails with ErrNotFound if the source is absent or empty.
	Promote(ctx context.Context, key, originalName, srcNamespace, dstNamespace string) (string, error)

	// Remove deletes the object. Absence is not an error; it is logged and
	// treated as already removed.
	Remove(ctx context.Context, key, namespace string) error

	// Read streams the object content. Fails with ErrNotFound if absent.
	Read(ctx context.Context, key, namespace string) (io.ReadCloser, error)
}

// IsTemporaryNamespace routes a namespace name to the backend's temporary
// root/bucket. Any name carrying the temp marker is temporary; everything
// else is permanent. The rule must stay identical across backend variants.
func IsTemporaryNamespace(namespace string) bool {
	return strings.Contains(namespace, "temp")
}

// Digest computes a base64-encoded SHA-256 of the full stream. On seekable
// inputs the original position is restored afterwards so the same stream can
// be persisted by the caller.
func Digest(r io.Reader) (string, error) {
	var pos int64
	seeker, seekable := r.(io.Seeker)
	if seekable {
		var err error
		pos, err = seeker.Seek(0, io.SeekCurrent)
		if err != nil {
			return "", fmt.Errorf("digest: query position: %w", err)
		}
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			return "", fmt.Errorf("digest: rewind: %w", err)
		}
	}

	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("digest: read: %w", err)
	}

	if seekable {
		if _, err := seeker.Seek(pos, io.SeekStart); err != nil {
			return "", fmt.Errorf("digest: restore position: %w", err)
		}
	}

	return base64.StdEncoding.EncodeToString(h.Sum(nil)), nil
}

// contentTypeFor derives a MIME type from the file name for backends that
// need one when re-uploading during Promote.
func contentTypeFor(name string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
