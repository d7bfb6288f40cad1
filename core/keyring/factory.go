package keyring

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewProvider builds the provider selected by cfg.Source.
// db may be nil unless Source is database.
func NewProvider(cfg Config, db *gorm.DB, logger *zap.Logger) (Provider, error) {
	switch cfg.Source {
	case SourceStatic:
		return NewStaticProvider(cfg.Key), nil
	case SourceDatabase:
		if db == nil {
			return nil, fmt.Errorf("keyring source %q requires a database connection", cfg.Source)
		}
		return NewDBProvider(db, cfg.Vendor), nil
	case SourceRemote:
		if cfg.URL == "" {
			return nil, fmt.Errorf("keyring source %q requires a url", cfg.Source)
		}
		return NewRemoteProvider(cfg.URL, logger), nil
	default:
		return nil, fmt.Errorf("unknown keyring source: %s", cfg.Source)
	}
}
