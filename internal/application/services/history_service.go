package services

import (
	"fmt"
	"math"
	"strings"

	"github.com/luminor-ai/luminor-go/internal/domain/entities/brand"
	"github.com/luminor-ai/luminor-go/internal/domain/user"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/observability/logging"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/observability/performance"
	"github.com/luminor-ai/luminor-go/pkg/config"
)

// HistoryService serves the scan history views and the per-user statistics
// derived from them.
type HistoryService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	history     user.HistoryRepository
	favorites   user.FavoritesRepository
}

// NewHistoryService creates the history service.
func NewHistoryService(
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
	history user.HistoryRepository,
	favorites user.FavoritesRepository,
) *HistoryService {
	return &HistoryService{
		logger:      logger,
		perfTracker: perfTracker,
		history:     history,
		favorites:   favorites,
	}
}

// List returns the newest scans first, bounded by limit. Filters apply to
// the fetched page: scanType matches exactly, brandFilter is a
// case-insensitive substring match on the snapshot name.
func (s *HistoryService) List(username string, limit int, scanType, brandFilter string) ([]*user.ScanRecord, error) {
	marker := s.perfTracker.StartOperation("history_list")
	defer marker.Complete()

	if limit <= 0 {
		limit = config.DefaultHistoryLimit
	}

	records, err := s.history.ListByUsername(username, limit)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	if scanType != "" || brandFilter != "" {
		records = filterHistory(records, scanType, brandFilter)
	}

	marker.SetSuccess(true)
	return records, nil
}

// Clear removes every scan the user has recorded.
func (s *HistoryService) Clear(username string) error {
	marker := s.perfTracker.StartOperation("history_clear")
	defer marker.Complete()

	if err := s.history.Clear(username); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}

	s.logger.Scan().Info("Scan history cleared", "username", username)
	marker.SetSuccess(true)
	return nil
}

// Stats aggregates the user's scanning activity.
func (s *HistoryService) Stats(username string) (*user.Stats, error) {
	marker := s.perfTracker.StartOperation("history_stats")
	defer marker.Complete()

	stats, err := computeStats(s.history, s.favorites, username)
	if err != nil {
		return nil, err
	}

	marker.SetSuccess(true)
	return stats, nil
}

func filterHistory(records []*user.ScanRecord, scanType, brandFilter string) []*user.ScanRecord {
	needle := strings.ToLower(strings.TrimSpace(brandFilter))
	filtered := make([]*user.ScanRecord, 0, len(records))
	for _, rec := range records {
		if scanType != "" && rec.ScanType != scanType {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(rec.Brand.Name), needle) {
			continue
		}
		filtered = append(filtered, rec)
	}
	return filtered
}

// computeStats builds the statistics block shared by the stats endpoint and
// the profile view. Unique brands exclude the unknown sentinel; ad hoc
// AI-synthesized ids still count. The confidence average covers positive
// confidences only and is rounded to one decimal.
func computeStats(history user.HistoryRepository, favorites user.FavoritesRepository, username string) (*user.Stats, error) {
	total, err := history.Count(username)
	if err != nil {
		return nil, fmt.Errorf("counting scans: %w", err)
	}

	ids, err := history.BrandIDs(username)
	if err != nil {
		return nil, fmt.Errorf("loading scanned brand ids: %w", err)
	}
	unique := 0
	for _, id := range ids {
		if id != brand.UnknownID {
			unique++
		}
	}

	favCount, err := favorites.Count(username)
	if err != nil {
		return nil, fmt.Errorf("counting favorites: %w", err)
	}

	avg, err := history.AverageConfidence(username)
	if err != nil {
		return nil, fmt.Errorf("averaging confidence: %w", err)
	}

	return &user.Stats{
		TotalScans:     total,
		UniqueBrands:   unique,
		FavoritesCount: favCount,
		AvgConfidence:  math.Round(avg*10) / 10,
	}, nil
}
