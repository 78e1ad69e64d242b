package services

import (
	"fmt"

	"github.com/luminor-ai/luminor-go/internal/domain/entities/theme"
	"github.com/luminor-ai/luminor-go/internal/domain/user"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/observability/logging"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/observability/performance"
)

// PreferencesService reads and writes the per-account settings document.
type PreferencesService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	accounts    user.AccountRepository
}

// NewPreferencesService creates the preferences service.
func NewPreferencesService(
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
	accounts user.AccountRepository,
) *PreferencesService {
	return &PreferencesService{
		logger:      logger,
		perfTracker: perfTracker,
		accounts:    accounts,
	}
}

// UpdatePreferencesResult reports a preference write. A rejected theme name
// comes back in Error with Success false.
type UpdatePreferencesResult struct {
	Success     bool
	Preferences user.Preferences
	Error       string
}

// Get returns the stored preferences, or (nil, nil) when the account no
// longer exists.
func (s *PreferencesService) Get(username string) (*user.Preferences, error) {
	account, err := s.accounts.FindByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("loading account: %w", err)
	}
	if account == nil {
		return nil, nil
	}
	return &account.Preferences, nil
}

// Update validates the theme name and stores the whole document.
func (s *PreferencesService) Update(username string, prefs user.Preferences) (*UpdatePreferencesResult, error) {
	marker := s.perfTracker.StartOperation("preferences_update")
	defer marker.Complete()

	if !theme.Exists(prefs.Theme) {
		return &UpdatePreferencesResult{
			Success: false,
			Error:   fmt.Sprintf("Unknown theme %q", prefs.Theme),
		}, nil
	}

	if err := s.accounts.UpdatePreferences(username, prefs); err != nil {
		s.logger.Auth().Error("Preferences update failed", "error", err.Error(), "username", username)
		return nil, fmt.Errorf("storing preferences: %w", err)
	}

	s.logger.Auth().Info("Preferences updated", "username", username, "theme", prefs.Theme)
	marker.SetSuccess(true)
	return &UpdatePreferencesResult{Success: true, Preferences: prefs}, nil
}
