// Package persist implements the durable storage slot that holds the
// serialized state blob under a single named key.
package persist

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fairyhunter13/stockkeeper/internal/config"
)

// ErrNoData is returned by Read when nothing has been written to the slot yet.
var ErrNoData = errors.New("persist: slot is empty")

// Slot reads and writes one serialized blob. Write replaces the previous blob
// as a whole.
type Slot interface {
	Read() ([]byte, error)
	Write(b []byte) error
	Close() error
}

// Open builds the slot selected by cfg.StorageDriver.
func Open(cfg config.Config) (Slot, error) {
	switch strings.ToLower(cfg.StorageDriver) {
	case "", "file":
		return NewFile(cfg.StoragePath), nil
	case "memory":
		return NewMemory(), nil
	case "sqlite":
		return OpenSQLite(cfg.StoragePath, cfg.StorageKey)
	case "bolt":
		return OpenBolt(cfg.StoragePath, cfg.StorageKey)
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, errors.New("persist: DATABASE_URL is required for the postgres driver")
		}
		return OpenPostgres(cfg.DatabaseURL, cfg.StorageKey)
	default:
		return nil, fmt.Errorf("persist: unknown storage driver %q", cfg.StorageDriver)
	}
}
