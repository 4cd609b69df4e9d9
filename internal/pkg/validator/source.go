package validator

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/futig/docqa-bot/internal/config"
	"github.com/futig/docqa-bot/internal/entity"
)

// Validator checks the source files of an ingestion run against the configured limits
type Validator struct {
	cfg config.IngestConfig
}

func NewFileValidator(cfg config.IngestConfig) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateSources rejects the whole run when one limit is exceeded. Zero limits are not enforced.
func (v *Validator) ValidateSources(files []string) error {
	if v.cfg.MaxFileCount > 0 && len(files) > v.cfg.MaxFileCount {
		return fmt.Errorf("%w: maximum %d files allowed, got %d", entity.ErrTooManyFiles, v.cfg.MaxFileCount, len(files))
	}

	var totalSize int64
	for _, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", entity.ErrLoadFailed, filepath.Base(path), err)
		}

		if v.cfg.MaxFileSize > 0 && info.Size() > v.cfg.MaxFileSize {
			return fmt.Errorf("%w: file '%s' is %d bytes (max %d)", entity.ErrFileTooLarge, filepath.Base(path), info.Size(), v.cfg.MaxFileSize)
		}

		totalSize += info.Size()
	}

	if v.cfg.MaxTotalSize > 0 && totalSize > v.cfg.MaxTotalSize {
		return fmt.Errorf("%w: total size is %d bytes (max %d)", entity.ErrTotalSizeTooLarge, totalSize, v.cfg.MaxTotalSize)
	}

	return nil
}
