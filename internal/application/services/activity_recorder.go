package services

import (
	"github.com/luminor-ai/luminor-go/internal/domain/analytics"
	"github.com/luminor-ai/luminor-go/internal/domain/entities/brand"
	"github.com/luminor-ai/luminor-go/internal/domain/user"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/messaging"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/observability/logging"
)

// activityRecorder funnels every completed scan and favorite action through
// the same side effects: the optional history insert, the analytics event,
// and the live activity push. Analytics and feed failures never propagate.
type activityRecorder struct {
	logger   *logging.ChanneledLogger
	history  user.HistoryRepository
	events   analytics.EventRepository
	activity messaging.Publisher
}

// recordScan persists one completed lookup. autoSave gates only the history
// row; analytics and the live feed always see the action. Reports whether a
// history row was written.
func (r *activityRecorder) recordScan(username string, rec brand.Record, scanType string, confidence float64, imageHash string, autoSave bool) bool {
	saved := false
	if autoSave {
		scan := &user.ScanRecord{
			Username:   username,
			Brand:      rec,
			ScanType:   scanType,
			Confidence: confidence,
			ImageHash:  imageHash,
		}
		if err := r.history.Save(scan); err != nil {
			r.logger.Scan().Error("History save failed", "error", err.Error(), "username", username, "brandId", rec.ID)
		} else {
			saved = true
		}
	}

	r.logEvent(username, analytics.ActionBrandScanned, map[string]any{
		"brand_id":   rec.ID,
		"brand_name": rec.Name,
		"scan_type":  scanType,
		"confidence": confidence,
	})
	r.publish(username, analytics.ActionBrandScanned, rec.ID, rec.Name)
	return saved
}

// recordFavorite logs an add or remove on the favorites list.
func (r *activityRecorder) recordFavorite(username, brandID, brandName string, favorited bool) {
	action := analytics.ActionBrandFavorited
	if !favorited {
		action = analytics.ActionBrandUnfavorited
	}
	r.logEvent(username, action, map[string]any{
		"brand_id":   brandID,
		"brand_name": brandName,
	})
	r.publish(username, action, brandID, brandName)
}

func (r *activityRecorder) logEvent(username, action string, data map[string]any) {
	if err := r.events.Store(&analytics.Event{Username: username, Action: action, Data: data}); err != nil {
		r.logger.Analytics().Warn("Analytics event dropped", "error", err.Error(), "action", action, "username", username)
	}
}

func (r *activityRecorder) publish(username, action, brandID, brandName string) {
	if r.activity == nil {
		return
	}
	r.activity.Publish(messaging.ActivityEvent{
		Username:  username,
		Action:    action,
		BrandID:   brandID,
		BrandName: brandName,
	})
}
