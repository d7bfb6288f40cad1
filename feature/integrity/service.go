package integrity

import (
	"context"

	"map-manager/core/storage"
	"map-manager/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service handles integrity checks.
type Service struct {
	client storage.Client
	bucket string
	logger *zap.Logger
	db     *gorm.DB
	vendor string
}

// NewService creates a new integrity service. db may be nil; the database
// check then reports an error instead of the whole service failing.
func NewService(client storage.Client, bucket string, logger *zap.Logger, db *gorm.DB, vendor string) *Service {
	return &Service{
		client: client,
		bucket: bucket,
		logger: logger,
		db:     db,
		vendor: vendor,
	}
}

// CheckStructure returns a list of missing folders.
func (s *Service) CheckStructure(ctx context.Context) ([]string, error) {
	return checks.CheckStructure(ctx, s.client, s.bucket)
}

// FixStructure creates the missing folders.
func (s *Service) FixStructure(ctx context.Context, missing []string) error {
	return checks.FixStructure(ctx, s.client, s.bucket, s.logger, missing)
}

// CheckCache returns the list of broken cached bundle manifests.
func (s *Service) CheckCache(ctx context.Context) ([]checks.CacheIssue, error) {
	return checks.CheckCache(ctx, s.client, s.bucket)
}

// CheckDatabase verifies the integration_keys table.
func (s *Service) CheckDatabase(ctx context.Context) (*checks.DatabaseReport, error) {
	return checks.CheckDatabase(ctx, s.db, s.vendor)
}
