package stocktake

import (
	"time"

	"stocktake-manager/core/storage"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates a new Stocktake feature.
func NewFeature(db *gorm.DB, client storage.Client, bucket, baselineObject, mappingObject string, logger *zap.Logger, cacheTTL time.Duration) *Feature {
	store := NewStore(db)
	importer := NewCSVImporter(client, bucket, baselineObject, mappingObject)
	svc := NewService(store, importer, client, bucket, logger, cacheTTL)
	h := NewHandler(svc)
	return &Feature{service: svc, handler: h}
}

// Service exposes the underlying service for CLI use.
func (f *Feature) Service() *Service {
	return f.service
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "stocktake"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load migrates the schema and registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	if err := f.service.store.AutoMigrate(); err != nil {
		return err
	}
	f.handler.RegisterRoutes(app)
	return nil
}
