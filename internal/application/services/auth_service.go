package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/luminor-ai/luminor-go/internal/domain/analytics"
	"github.com/luminor-ai/luminor-go/internal/domain/user"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/email"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/observability/logging"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/observability/performance"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/security"
	"github.com/luminor-ai/luminor-go/pkg/config"
)

// AuthService handles registration, login, session resumption, and account
// lifecycle. Business rejections (bad input, duplicate username, wrong
// password) come back inside AuthResult; only storage and crypto failures
// surface as errors.
type AuthService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	accounts    user.AccountRepository
	history     user.HistoryRepository
	favorites   user.FavoritesRepository
	events      analytics.EventRepository
	email       email.Service
}

// NewAuthService creates the authentication service. email may be nil when
// no provider is configured; welcome mail is skipped in that case.
func NewAuthService(
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
	accounts user.AccountRepository,
	history user.HistoryRepository,
	favorites user.FavoritesRepository,
	events analytics.EventRepository,
	emailService email.Service,
) *AuthService {
	return &AuthService{
		logger:      logger,
		perfTracker: perfTracker,
		accounts:    accounts,
		history:     history,
		favorites:   favorites,
		events:      events,
		email:       emailService,
	}
}

// AuthResult is the outcome of a registration, login, or session resumption.
type AuthResult struct {
	Success       bool
	Token         string
	RememberToken string
	Account       *user.Account
	Error         string
	Duplicate     bool
}

// ProfileResult bundles an account with its activity statistics.
type ProfileResult struct {
	Account *user.Account
	Stats   *user.Stats
}

// Register creates a new account. The username must be at least 3
// characters and the password at least 6; duplicates are rejected. A welcome
// email goes out best-effort when an address is given and mail is configured.
func (s *AuthService) Register(username, password, emailAddr string, rememberMe bool) (*AuthResult, error) {
	marker := s.perfTracker.StartOperation("auth_register")
	defer marker.Complete()

	username = strings.TrimSpace(username)
	if len(username) < 3 {
		return &AuthResult{Success: false, Error: "Username must be at least 3 characters"}, nil
	}
	if len(password) < 6 {
		return &AuthResult{Success: false, Error: "Password must be at least 6 characters"}, nil
	}

	existing, err := s.accounts.FindByUsername(username)
	if err != nil {
		s.logger.Auth().Error("Database error checking for existing account", "error", err.Error(), "username", username)
		return nil, fmt.Errorf("checking username: %w", err)
	}
	if existing != nil {
		s.logger.LogAuthOperation("register", username, false, map[string]any{"reason": "duplicate_username"})
		return &AuthResult{Success: false, Duplicate: true, Error: "Username already exists"}, nil
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		s.logger.Auth().Error("Password hashing failed", "error", err.Error(), "username", username)
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	account := &user.Account{
		Username:     username,
		PasswordHash: hash,
		Email:        strings.TrimSpace(emailAddr),
		CreatedAt:    time.Now().UTC(),
		Preferences:  user.DefaultPreferences(),
	}
	if err := s.accounts.Create(account); err != nil {
		s.logger.Auth().Error("Account insert failed", "error", err.Error(), "username", username)
		return nil, fmt.Errorf("creating account: %w", err)
	}

	token, rememberToken, err := s.issueSession(account, rememberMe)
	if err != nil {
		return nil, err
	}

	if s.email != nil && emailAddr != "" {
		go s.sendWelcome(emailAddr, username)
	}

	s.logEvent(username, analytics.ActionUserRegistered, map[string]any{"remember_me": rememberMe})
	s.logger.LogAuthOperation("register", username, true, map[string]any{"rememberMe": rememberMe})
	marker.SetSuccess(true)
	return &AuthResult{
		Success:       true,
		Token:         token,
		RememberToken: rememberToken,
		Account:       account,
	}, nil
}

// Login verifies credentials and mints a session. Unknown usernames and
// wrong passwords produce the same outcome.
func (s *AuthService) Login(username, password string, rememberMe bool) (*AuthResult, error) {
	marker := s.perfTracker.StartOperation("auth_login")
	defer marker.Complete()

	username = strings.TrimSpace(username)
	account, err := s.accounts.FindByUsername(username)
	if err != nil {
		s.logger.Auth().Error("Database error loading account", "error", err.Error(), "username", username)
		return nil, fmt.Errorf("loading account: %w", err)
	}
	if account == nil || !security.CheckPassword(account.PasswordHash, password) {
		s.logger.LogAuthOperation("login", username, false, nil)
		return &AuthResult{Success: false, Error: "Invalid credentials"}, nil
	}

	s.touchLastLogin(account)

	token, rememberToken, err := s.issueSession(account, rememberMe)
	if err != nil {
		return nil, err
	}

	s.logEvent(username, analytics.ActionUserLogin, map[string]any{"remember_me": rememberMe})
	s.logger.LogAuthOperation("login", username, true, map[string]any{"rememberMe": rememberMe})
	marker.SetSuccess(true)
	return &AuthResult{
		Success:       true,
		Token:         token,
		RememberToken: rememberToken,
		Account:       account,
	}, nil
}

// ResumeSession exchanges a stored remember token for a fresh session.
// Expired and unknown tokens are indistinguishable. The remember token is
// not rotated.
func (s *AuthService) ResumeSession(rememberToken string) (*AuthResult, error) {
	marker := s.perfTracker.StartOperation("auth_resume")
	defer marker.Complete()

	if rememberToken == "" {
		return &AuthResult{Success: false, Error: "Invalid or expired session"}, nil
	}

	account, err := s.accounts.FindByRememberToken(rememberToken)
	if err != nil {
		s.logger.Auth().Error("Database error resolving remember token", "error", err.Error())
		return nil, fmt.Errorf("resolving remember token: %w", err)
	}
	if account == nil {
		s.logger.LogAuthOperation("resume", "", false, map[string]any{"reason": "unknown_or_expired_token"})
		return &AuthResult{Success: false, Error: "Invalid or expired session"}, nil
	}

	s.touchLastLogin(account)

	token, err := security.GenerateSessionToken(account.Username, security.GenerateULID(), true, config.JWTSecret, config.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("minting session token: %w", err)
	}

	s.logger.LogAuthOperation("resume", account.Username, true, nil)
	marker.SetSuccess(true)
	return &AuthResult{Success: true, Token: token, Account: account}, nil
}

// Logout invalidates the stored remember token. The JWT itself simply
// expires; there is no revocation list.
func (s *AuthService) Logout(username string) error {
	marker := s.perfTracker.StartOperation("auth_logout")
	defer marker.Complete()

	if err := s.accounts.ClearRememberToken(username); err != nil {
		s.logger.Auth().Error("Remember token clear failed", "error", err.Error(), "username", username)
		return fmt.Errorf("clearing remember token: %w", err)
	}

	s.logger.LogAuthOperation("logout", username, true, nil)
	marker.SetSuccess(true)
	return nil
}

// Profile returns the account and its activity statistics, or (nil, nil)
// when the account no longer exists.
func (s *AuthService) Profile(username string) (*ProfileResult, error) {
	account, err := s.accounts.FindByUsername(username)
	if err != nil {
		s.logger.Auth().Error("Database error loading profile", "error", err.Error(), "username", username)
		return nil, fmt.Errorf("loading account: %w", err)
	}
	if account == nil {
		return nil, nil
	}

	stats, err := computeStats(s.history, s.favorites, username)
	if err != nil {
		return nil, err
	}
	return &ProfileResult{Account: account, Stats: stats}, nil
}

// DeleteAccount removes the account row together with all owned history,
// favorites, and analytics rows. Deleting an absent account is a no-op.
func (s *AuthService) DeleteAccount(username string) error {
	marker := s.perfTracker.StartOperation("auth_delete_account")
	defer marker.Complete()

	s.logger.Auth().Info("Deleting account", "username", username)

	if err := s.history.Clear(username); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	if err := s.favorites.Clear(username); err != nil {
		return fmt.Errorf("clearing favorites: %w", err)
	}
	if err := s.events.DeleteByUsername(username); err != nil {
		return fmt.Errorf("clearing analytics events: %w", err)
	}
	if err := s.accounts.Delete(username); err != nil {
		return fmt.Errorf("deleting account: %w", err)
	}

	s.logger.LogAuthOperation("delete_account", username, true, nil)
	marker.SetSuccess(true)
	return nil
}

// issueSession mints the session JWT and, when requested, a 30-day remember
// token persisted on the account.
func (s *AuthService) issueSession(account *user.Account, rememberMe bool) (string, string, error) {
	token, err := security.GenerateSessionToken(account.Username, security.GenerateULID(), rememberMe, config.JWTSecret, config.SessionTTL)
	if err != nil {
		s.logger.Auth().Error("Session token generation failed", "error", err.Error(), "username", account.Username)
		return "", "", fmt.Errorf("minting session token: %w", err)
	}
	if !rememberMe {
		return token, "", nil
	}

	rememberToken, err := security.GenerateRememberToken()
	if err != nil {
		return "", "", fmt.Errorf("minting remember token: %w", err)
	}
	expires := time.Now().UTC().AddDate(0, 0, config.RememberTokenDays)
	if err := s.accounts.SetRememberToken(account.Username, rememberToken, expires); err != nil {
		s.logger.Auth().Error("Remember token store failed", "error", err.Error(), "username", account.Username)
		return "", "", fmt.Errorf("storing remember token: %w", err)
	}
	return token, rememberToken, nil
}

// touchLastLogin stamps last_login best-effort; a failed stamp never blocks
// the login.
func (s *AuthService) touchLastLogin(account *user.Account) {
	if err := s.accounts.UpdateLastLogin(account.Username); err != nil {
		s.logger.Auth().Warn("Last login update failed", "error", err.Error(), "username", account.Username)
		return
	}
	now := time.Now().UTC()
	account.LastLogin = &now
}

func (s *AuthService) sendWelcome(toEmail, username string) {
	if err := s.email.SendWelcomeEmail(toEmail, username); err != nil {
		s.logger.Email().Warn("Welcome email failed", "error", err.Error(), "username", username)
	}
}

func (s *AuthService) logEvent(username, action string, data map[string]any) {
	if err := s.events.Store(&analytics.Event{Username: username, Action: action, Data: data}); err != nil {
		s.logger.Analytics().Warn("Analytics event dropped", "error", err.Error(), "action", action, "username", username)
	}
}
