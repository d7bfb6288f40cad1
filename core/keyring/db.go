package keyring

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// DBProvider reads the credential from the tenant database.
// The key lives in the integration_keys table, one active row per vendor.
type DBProvider struct {
	db     *gorm.DB
	vendor string
}

// NewDBProvider creates a provider reading keys for vendor.
func NewDBProvider(db *gorm.DB, vendor string) *DBProvider {
	return &DBProvider{db: db, vendor: vendor}
}

// Key returns the newest non-revoked key for the vendor. No row is not an
// error: the tenant simply has not provisioned the integration yet.
func (p *DBProvider) Key(ctx context.Context) (string, error) {
	var keys []string
	err := p.db.WithContext(ctx).
		Table("integration_keys").
		Where("vendor = ? AND revoked = ?", p.vendor, false).
		Order("updated_at DESC").
		Limit(1).
		Pluck("api_key", &keys).Error
	if err != nil {
		return "", fmt.Errorf("failed to read integration key: %w", err)
	}
	if len(keys) == 0 {
		return "", nil
	}
	return keys[0], nil
}
