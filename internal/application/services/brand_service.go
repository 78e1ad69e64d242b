package services

import (
	"github.com/luminor-ai/luminor-go/internal/domain/analytics"
	"github.com/luminor-ai/luminor-go/internal/domain/entities/brand"
	"github.com/luminor-ai/luminor-go/internal/domain/user"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/messaging"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/observability/logging"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/observability/performance"
)

// BrandService serves the static catalog and the free-text resolver.
type BrandService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	recorder    *activityRecorder
}

// NewBrandService creates the brand service. activity may be nil in tests.
func NewBrandService(
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
	history user.HistoryRepository,
	events analytics.EventRepository,
	activity messaging.Publisher,
) *BrandService {
	return &BrandService{
		logger:      logger,
		perfTracker: perfTracker,
		recorder: &activityRecorder{
			logger:   logger,
			history:  history,
			events:   events,
			activity: activity,
		},
	}
}

// ResolveResult is the outcome of one free-text lookup.
type ResolveResult struct {
	Record brand.Record
	Saved  bool
}

// Catalog returns every catalog brand, sentinel excluded.
func (s *BrandService) Catalog() []brand.Record {
	return brand.All()
}

// Get returns one record by id. The sentinel id resolves too.
func (s *BrandService) Get(id string) (brand.Record, bool) {
	return brand.Lookup(id)
}

// Resolve matches free text against the catalog and records a catalog hit
// as a manual scan. An unmatched query yields the unknown sentinel and
// leaves history untouched; a failed history write downgrades to
// Saved=false rather than failing the lookup.
func (s *BrandService) Resolve(username, query string, autoSave bool) *ResolveResult {
	marker := s.perfTracker.StartOperation("brand_resolve")
	defer marker.Complete()

	record := brand.Resolve(query)
	saved := false
	if !record.IsUnknown() {
		saved = s.recorder.recordScan(username, record, user.ScanTypeManual, 0, "", autoSave)
	}

	s.logger.Brand().Info("Brand resolved",
		"username", username,
		"query", query,
		"brandId", record.ID,
		"saved", saved)
	marker.SetSuccess(true)
	return &ResolveResult{Record: record, Saved: saved}
}
