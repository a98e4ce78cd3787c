package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dvinay/custom-search-shortcuts/internal/config"
)

// Open returns the backend selected in settings. With watch set, the
// backend also reports writes made by other processes until ctx is done.
func Open(ctx context.Context, settings *config.Settings, watch bool, logger *zap.Logger) (Store, error) {
	switch settings.Store {
	case config.StoreSQLite:
		s, err := NewSQLite(config.DatabasePath, logger)
		if err != nil {
			return nil, err
		}
		if watch {
			if err := s.Watch(ctx); err != nil {
				s.Close()
				return nil, err
			}
		}
		return s, nil

	case config.StoreFile, "":
		f, err := NewFile(config.GetDataFilePath(), logger)
		if err != nil {
			return nil, err
		}
		if watch {
			if err := f.Watch(ctx); err != nil {
				return nil, err
			}
		}
		return f, nil
	}

	return nil, fmt.Errorf("unknown store backend: %s", settings.Store)
}
