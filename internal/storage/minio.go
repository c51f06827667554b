package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"filestore/internal/config"
)

// minioStorage implements Storage over an S3-compatible backend (MinIO, AWS
// S3, etc.). All temporary namespaces share one physical bucket and all
// permanent namespaces share another; the namespace survives only in the
// ledger. It is safe for concurrent use by multiple goroutines.
type minioStorage struct {
	client     *minio.Client
	tempBucket string
	permBucket string
}

// NewMinIO creates an S3-compatible storage client backed by MinIO.
// It validates connectivity and ensures both buckets exist (creating them if
// missing).
func NewMinIO(cfg config.MinIOConfig) (Storage, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio credentials are required")
	}
	if cfg.TempBucket == "" || cfg.PermanentBucket == "" {
		return nil, fmt.Errorf("minio temp and permanent buckets are required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ms := &minioStorage{client: cli, tempBucket: cfg.TempBucket, permBucket: cfg.PermanentBucket}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, bucket := range []string{cfg.TempBucket, cfg.PermanentBucket} {
		exists, err := cli.BucketExists(ctx, bucket)
		if err != nil {
			return nil, fmt.Errorf("check bucket %s existence: %w", bucket, err)
		}
		if !exists {
			if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
				return nil, fmt.Errorf("create bucket %s: %w", bucket, err)
			}
		}
	}

	return ms, nil
}

func (m *minioStorage) bucket(namespace string) string {
	if IsTemporaryNamespace(namespace) {
		return m.tempBucket
	}
	return m.permBucket
}

func isNoSuchKey(err error) bool {
	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		return resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket"
	}
	return false
}

func (m *minioStorage) StageTemporary(ctx context.Context, r io.Reader, originalName, namespace string, size int64, contentType string) (string, error) {
	key := uuid.NewString() + filepath.Ext(originalName)

	_, err := m.client.PutObject(ctx, m.bucket(namespace), key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"original-filename": originalName,
			"namespace":         namespace,
		},
	})
	if err != nil {
		return "", fmt.Errorf("put object %s/%s: %w", namespace, key, err)
	}
	return key, nil
}

func (m *minioStorage) Promote(ctx context.Context, key, originalName, srcNamespace, dstNamespace string) (string, error) {
	srcBucket := m.bucket(srcNamespace)

	obj, err := m.client.GetObject(ctx, srcBucket, key, minio.GetObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("get source %s/%s: %w", srcNamespace, key, err)
	}
	defer obj.Close()

	st, err := obj.Stat()
	if err != nil {
		if isNoSuchKey(err) {
			return "", fmt.Errorf("promote %s/%s: %w", srcNamespace, key, ErrNotFound)
		}
		return "", fmt.Errorf("stat source %s/%s: %w", srcNamespace, key, err)
	}
	if st.Size == 0 {
		// An empty source means a corrupt or half-written staging object.
		return "", fmt.Errorf("promote %s/%s: empty source: %w", srcNamespace, key, ErrNotFound)
	}

	newKey := uuid.NewString() + filepath.Ext(originalName)
	_, err = m.client.PutObject(ctx, m.bucket(dstNamespace), newKey, obj, st.Size, minio.PutObjectOptions{
		ContentType: contentTypeFor(originalName),
		UserMetadata: map[string]string{
			"original-filename": originalName,
			"namespace":         dstNamespace,
		},
	})
	if err != nil {
		return "", fmt.Errorf("put object %s/%s: %w", dstNamespace, newKey, err)
	}
	// The temporary source is left behind on purpose; the reclaimer or
	// bucket lifecycle policy takes care of it.
	return newKey, nil
}

func (m *minioStorage) Remove(ctx context.Context, key, namespace string) error {
	err := m.client.RemoveObject(ctx, m.bucket(namespace), key, minio.RemoveObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			log.Printf("storage: object %s/%s already absent, treating as removed", namespace, key)
			return nil
		}
		return fmt.Errorf("remove object %s/%s: %w", namespace, key, err)
	}
	return nil
}

func (m *minioStorage) Read(ctx context.Context, key, namespace string) (io.ReadCloser, error) {
	obj, err := m.client.GetObject(ctx, m.bucket(namespace), key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s/%s: %w", namespace, key, err)
	}
	// GetObject is lazy; Stat forces the first request so absence surfaces here.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		if isNoSuchKey(err) {
			return nil, fmt.Errorf("read %s/%s: %w", namespace, key, ErrNotFound)
		}
		return nil, fmt.Errorf("stat object %s/%s: %w", namespace, key, err)
	}
	return obj, nil
}
