package storage

import (
	"fmt"

	"filestore/internal/config"
)

// Backend flags accepted by the STORAGE_BACKEND configuration value.
const (
	BackendLocal = "local"
	BackendMinIO = "minio"
)

// New selects and constructs the configured backend variant. The choice is
// made once at startup; call sites only ever see the Storage interface.
func New(cfg config.FileStorageConfig, minioCfg config.MinIOConfig) (Storage, error) {
	switch cfg.Backend {
	case BackendLocal:
		return NewLocal(cfg)
	case BackendMinIO:
		return NewMinIO(minioCfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
