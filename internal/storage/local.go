package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"filestore/internal/config"
)

// localStorage keeps bytes on the local filesystem under two roots, one for
// temporary namespaces and one for permanent ones. A namespace maps to a
// subdirectory of its root.
type localStorage struct {
	tempRoot string
	permRoot string
}

// NewLocal creates a filesystem-backed storage rooted at the configured
// temporary and permanent base paths.
func NewLocal(cfg config.FileStorageConfig) (Storage, error) {
	if cfg.TempPath == "" || cfg.PermanentPath == "" {
		return nil, fmt.Errorf("local storage requires temp and permanent base paths")
	}
	for _, dir := range []string{cfg.TempPath, cfg.PermanentPath} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage root %s: %w", dir, err)
		}
	}
	return &localStorage{tempRoot: cfg.TempPath, permRoot: cfg.PermanentPath}, nil
}

func (l *localStorage) dir(namespace string) string {
	root := l.permRoot
	if IsTemporaryNamespace(namespace) {
		root = l.tempRoot
	}
	return filepath.Join(root, namespace)
}

func (l *localStorage) StageTemporary(ctx context.Context, r io.Reader, originalName, namespace string, size int64, contentType string) (string, error) {
	dir := l.dir(namespace)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create namespace %s: %w", namespace, err)
	}

	key := uuid.NewString() + filepath.Ext(originalName)
	// O_EXCL guards against overwriting; keys are unique by construction.
	f, err := os.OpenFile(filepath.Join(dir, key), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create object %s/%s: %w", namespace, key, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("write object %s/%s: %w", namespace, key, err)
	}
	return key, nil
}

func (l *localStorage) Promote(ctx context.Context, key, originalName, srcNamespace, dstNamespace string) (string, error) {
	srcPath := filepath.Join(l.dir(srcNamespace), key)
	src, err := os.Open(srcPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("promote %s/%s: %w", srcNamespace, key, ErrNotFound)
		}
		return "", fmt.Errorf("open source %s/%s: %w", srcNamespace, key, err)
	}
	defer src.Close()

	st, err := src.Stat()
	if err != nil {
		return "", fmt.Errorf("stat source %s/%s: %w", srcNamespace, key, err)
	}
	if st.Size() == 0 {
		// An empty source means a corrupt or half-written staging object.
		return "", fmt.Errorf("promote %s/%s: empty source: %w", srcNamespace, key, ErrNotFound)
	}

	dstDir := l.dir(dstNamespace)
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return "", fmt.Errorf("create namespace %s: %w", dstNamespace, err)
	}

	newKey := uuid.NewString() + filepath.Ext(originalName)
	dst, err := os.OpenFile(filepath.Join(dstDir, newKey), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create object %s/%s: %w", dstNamespace, newKey, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("copy to %s/%s: %w", dstNamespace, newKey, err)
	}
	// The source stays in place; the expiry reclaimer cleans it up later.
	return newKey, nil
}

func (l *localStorage) Remove(ctx context.Context, key, namespace string) error {
	path := filepath.Join(l.dir(namespace), key)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Printf("storage: object %s/%s already absent, treating as removed", namespace, key)
			return nil
		}
		return fmt.Errorf("remove object %s/%s: %w", namespace, key, err)
	}
	return nil
}

func (l *localStorage) Read(ctx context.Context, key, namespace string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(l.dir(namespace), key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s/%s: %w", namespace, key, ErrNotFound)
		}
		return nil, fmt.Errorf("open object %s/%s: %w", namespace, key, err)
	}
	return f, nil
}
