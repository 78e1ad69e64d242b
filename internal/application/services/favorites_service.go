package services

import (
	"fmt"
	"time"

	"github.com/luminor-ai/luminor-go/internal/domain/analytics"
	"github.com/luminor-ai/luminor-go/internal/domain/entities/brand"
	"github.com/luminor-ai/luminor-go/internal/domain/user"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/messaging"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/observability/logging"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/observability/performance"
)

// FavoritesService manages the per-user favorites list. Listing hydrates
// each favorite into a full brand profile and prunes orphans whose brand id
// no longer resolves anywhere.
type FavoritesService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	favorites   user.FavoritesRepository
	history     user.HistoryRepository
	recorder    *activityRecorder
}

// NewFavoritesService creates the favorites service.
func NewFavoritesService(
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
	favorites user.FavoritesRepository,
	history user.HistoryRepository,
	events analytics.EventRepository,
	activity messaging.Publisher,
) *FavoritesService {
	return &FavoritesService{
		logger:      logger,
		perfTracker: perfTracker,
		favorites:   favorites,
		history:     history,
		recorder: &activityRecorder{
			logger:   logger,
			history:  history,
			events:   events,
			activity: activity,
		},
	}
}

// HydratedFavorite pairs a favorite's brand profile with its list metadata.
type HydratedFavorite struct {
	Brand   brand.Record `json:"brand"`
	Notes   string       `json:"notes,omitempty"`
	AddedAt time.Time    `json:"addedAt"`
}

// Add saves a brand to the favorites list. Adding the same brand twice
// leaves exactly one row; ids outside the catalog are accepted as long as
// the next listing can still hydrate them.
func (s *FavoritesService) Add(username, brandID, notes string) error {
	marker := s.perfTracker.StartOperation("favorites_add")
	defer marker.Complete()

	if err := s.favorites.Add(&user.Favorite{Username: username, BrandID: brandID, Notes: notes}); err != nil {
		return fmt.Errorf("adding favorite: %w", err)
	}

	s.recorder.recordFavorite(username, brandID, favoriteBrandName(brandID), true)
	marker.SetSuccess(true)
	return nil
}

// Remove drops a brand from the favorites list. Removing an absent favorite
// is a no-op.
func (s *FavoritesService) Remove(username, brandID string) error {
	marker := s.perfTracker.StartOperation("favorites_remove")
	defer marker.Complete()

	if err := s.favorites.Remove(username, brandID); err != nil {
		return fmt.Errorf("removing favorite: %w", err)
	}

	s.recorder.recordFavorite(username, brandID, favoriteBrandName(brandID), false)
	marker.SetSuccess(true)
	return nil
}

// List returns the hydrated favorites, newest first. A favorite hydrates
// from the catalog when its id is known, otherwise from the newest history
// snapshot carrying that id. Favorites that hydrate from neither source are
// deleted during the listing.
func (s *FavoritesService) List(username string) ([]*HydratedFavorite, error) {
	marker := s.perfTracker.StartOperation("favorites_list")
	defer marker.Complete()

	favs, err := s.favorites.ListByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("loading favorites: %w", err)
	}

	snapshots, err := s.history.LatestSnapshots(username)
	if err != nil {
		return nil, fmt.Errorf("loading history snapshots: %w", err)
	}

	hydrated := make([]*HydratedFavorite, 0, len(favs))
	pruned := 0
	for _, fav := range favs {
		record, ok := brand.Lookup(fav.BrandID)
		if !ok {
			record, ok = snapshots[fav.BrandID]
		}
		if !ok {
			if err := s.favorites.Remove(username, fav.BrandID); err != nil {
				s.logger.Brand().Error("Orphaned favorite removal failed", "error", err.Error(), "username", username, "brandId", fav.BrandID)
			} else {
				pruned++
			}
			continue
		}
		hydrated = append(hydrated, &HydratedFavorite{
			Brand:   record,
			Notes:   fav.Notes,
			AddedAt: fav.AddedAt,
		})
	}

	if pruned > 0 {
		s.logger.Brand().Info("Pruned orphaned favorites", "username", username, "pruned", pruned)
	}

	marker.SetSuccess(true)
	return hydrated, nil
}

// Clear empties the favorites list.
func (s *FavoritesService) Clear(username string) error {
	marker := s.perfTracker.StartOperation("favorites_clear")
	defer marker.Complete()

	if err := s.favorites.Clear(username); err != nil {
		return fmt.Errorf("clearing favorites: %w", err)
	}

	s.logger.Brand().Info("Favorites cleared", "username", username)
	marker.SetSuccess(true)
	return nil
}

// favoriteBrandName labels activity events without forcing a hydration.
func favoriteBrandName(brandID string) string {
	if rec, ok := brand.Lookup(brandID); ok {
		return rec.Name
	}
	return brandID
}
