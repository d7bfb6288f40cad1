package checks

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// DatabaseReport strictly types the result of a database integrity check.
type DatabaseReport struct {
	Vendor     string `json:"vendor"`
	TableFound bool   `json:"table_found"`
	ActiveKeys int64  `json:"active_keys"`
	Status     string `json:"status"` // "ok", "no_keys", "missing_table"
}

// CheckDatabase verifies the integration_keys table the keyring depends on.
// A missing table means the tenant schema was never migrated; zero active
// keys means the loader will sit in "credential unavailable" forever.
func CheckDatabase(ctx context.Context, db *gorm.DB, vendor string) (*DatabaseReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	report := &DatabaseReport{Vendor: vendor}

	if !db.WithContext(ctx).Migrator().HasTable("integration_keys") {
		report.Status = "missing_table"
		return report, nil
	}
	report.TableFound = true

	var count int64
	err := db.WithContext(ctx).
		Table("integration_keys").
		Where("vendor = ? AND revoked = ?", vendor, false).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count integration keys: %w", err)
	}

	report.ActiveKeys = count
	if count == 0 {
		report.Status = "no_keys"
	} else {
		report.Status = "ok"
	}
	return report, nil
}
