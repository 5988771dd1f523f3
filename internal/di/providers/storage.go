package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/vivilio/vivilio-server/internal/config"
	"github.com/vivilio/vivilio-server/internal/logger"
	"github.com/vivilio/vivilio-server/internal/media/images"
)

// CoverStorage is the image storage holding book covers.
type CoverStorage struct {
	*images.Storage
}

// ProvideCoverStorage provides the cover image storage under <data>/covers.
func ProvideCoverStorage(i do.Injector) (*CoverStorage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	covers, err := images.NewStorage(cfg.Storage.DataPath, "covers", cfg.Covers.MaxBytes())
	if err != nil {
		return nil, fmt.Errorf("cover storage: %w", err)
	}

	log.Info("Cover storage initialized", "dir", covers.Dir(), "max_size_mb", cfg.Covers.MaxSizeMB)

	return &CoverStorage{Storage: covers}, nil
}
