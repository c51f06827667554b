package validation

import (
	"path/filepath"
	"strings"

	"filestore/internal/config"
)

// Package validation contains pure upload validators. No I/O happens here;
// the allowed sets come from configuration.

// Validator checks uploads against the configured limits and allowed sets.
type Validator struct {
	maxFileSizeMB int
	extensions    map[string]struct{}
	mimeTypes     map[string]struct{}
}

// New builds a Validator from file storage configuration.
func New(cfg config.FileStorageConfig) *Validator {
	v := &Validator{
		maxFileSizeMB: cfg.MaxFileSizeMB,
		extensions:    make(map[string]struct{}, len(cfg.AllowedImageExtensions)),
		mimeTypes:     make(map[string]struct{}, len(cfg.AllowedImageMIMETypes)),
	}
	for _, ext := range cfg.AllowedImageExtensions {
		v.extensions[strings.ToLower(ext)] = struct{}{}
	}
	for _, mt := range cfg.AllowedImageMIMETypes {
		v.mimeTypes[strings.ToLower(mt)] = struct{}{}
	}
	return v
}

// IsAllowedImage reports whether the extension/content-type pair is in the
// allowed image set.
func (v *Validator) IsAllowedImage(fileName, contentType string) bool {
	if _, ok := v.extensions[ExtensionOf(fileName)]; !ok {
		return false
	}
	_, ok := v.mimeTypes[strings.ToLower(contentType)]
	return ok
}

// IsWithinSizeLimit reports whether size fits the configured maximum.
func (v *Validator) IsWithinSizeLimit(size int64) bool {
	return size <= int64(v.maxFileSizeMB)*1024*1024
}

// ExtensionOf returns the lowercase file extension including the dot.
func ExtensionOf(fileName string) string {
	return strings.ToLower(filepath.Ext(fileName))
}
