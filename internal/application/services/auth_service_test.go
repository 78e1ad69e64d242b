package services

import (
	"testing"

	"github.com/luminor-ai/luminor-go/internal/domain/analytics"
	"github.com/luminor-ai/luminor-go/internal/domain/entities/brand"
	"github.com/luminor-ai/luminor-go/internal/domain/user"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/security"
	"github.com/luminor-ai/luminor-go/pkg/config"
)

func TestRegisterCreatesAccount(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService(t)

	result, err := svc.Register("alice", "hunter2x", "", false)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if !result.Success {
		t.Fatalf("Register rejected: %s", result.Error)
	}
	if result.Token == "" {
		t.Error("expected a session token")
	}
	if result.RememberToken != "" {
		t.Error("remember token issued without rememberMe")
	}

	claims, err := security.ValidateJWT(result.Token, config.JWTSecret)
	if err != nil {
		t.Fatalf("issued token does not validate: %v", err)
	}
	session := security.GetSessionFromClaims(claims)
	if session == nil || session.Username != "alice" {
		t.Errorf("token claims = %+v, want username alice", session)
	}

	account, err := env.accounts.FindByUsername("alice")
	if err != nil || account == nil {
		t.Fatalf("account not persisted: %v", err)
	}
	if account.PasswordHash == "hunter2x" {
		t.Error("password stored in clear")
	}
	if !security.CheckPassword(account.PasswordHash, "hunter2x") {
		t.Error("stored hash does not verify the password")
	}
	if account.Preferences != user.DefaultPreferences() {
		t.Errorf("preferences = %+v, want defaults", account.Preferences)
	}
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService(t)

	cases := []struct {
		name     string
		username string
		password string
	}{
		{"short username", "al", "hunter2x"},
		{"short password", "alice", "12345"},
		{"whitespace username", "  a  ", "hunter2x"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := svc.Register(tc.username, tc.password, "", false)
			if err != nil {
				t.Fatalf("Register failed: %v", err)
			}
			if result.Success {
				t.Error("invalid input should be rejected")
			}
			if result.Error == "" {
				t.Error("rejection should carry a message")
			}
		})
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService(t)
	env.registerUser(t, "alice")

	result, err := svc.Register("alice", "different6", "", false)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if result.Success {
		t.Fatal("duplicate username should be rejected")
	}
	if !result.Duplicate {
		t.Error("rejection should be flagged as a duplicate")
	}
}

func TestLoginOutcomes(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService(t)
	env.registerUser(t, "alice")

	good, err := svc.Login("alice", "hunter2x", false)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if !good.Success || good.Token == "" {
		t.Fatalf("valid login rejected: %+v", good)
	}
	if good.Account.LastLogin == nil {
		t.Error("login should stamp last_login")
	}

	// Unknown user and wrong password share one outcome.
	for _, creds := range [][2]string{{"alice", "wrong-pass"}, {"nobody", "hunter2x"}} {
		result, err := svc.Login(creds[0], creds[1], false)
		if err != nil {
			t.Fatalf("Login(%q) failed: %v", creds[0], err)
		}
		if result.Success {
			t.Errorf("Login(%q, %q) should fail", creds[0], creds[1])
		}
		if result.Error != "Invalid credentials" {
			t.Errorf("error = %q, want %q", result.Error, "Invalid credentials")
		}
	}
}

func TestRememberSessionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService(t)
	env.registerUser(t, "alice")

	login, err := svc.Login("alice", "hunter2x", true)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if login.RememberToken == "" {
		t.Fatal("rememberMe login should issue a remember token")
	}

	resumed, err := svc.ResumeSession(login.RememberToken)
	if err != nil {
		t.Fatalf("ResumeSession failed: %v", err)
	}
	if !resumed.Success || resumed.Token == "" {
		t.Fatalf("resumption rejected: %+v", resumed)
	}
	if resumed.Account.Username != "alice" {
		t.Errorf("resumed account = %q, want alice", resumed.Account.Username)
	}

	if bogus, _ := svc.ResumeSession("not-a-token"); bogus.Success {
		t.Error("unknown token should not resume a session")
	}
	if empty, _ := svc.ResumeSession(""); empty.Success {
		t.Error("empty token should not resume a session")
	}

	if err := svc.Logout("alice"); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if after, _ := svc.ResumeSession(login.RememberToken); after.Success {
		t.Error("logout should invalidate the remember token")
	}
}

func TestProfileBundlesStats(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService(t)
	env.registerUser(t, "alice")

	nike, _ := brand.Lookup("nike")
	for _, rec := range []*user.ScanRecord{
		{Username: "alice", Brand: nike, ScanType: user.ScanTypeManual},
		{Username: "alice", Brand: brand.Unknown(), ScanType: user.ScanTypeManual},
	} {
		if err := env.history.Save(rec); err != nil {
			t.Fatalf("seeding history: %v", err)
		}
	}
	if err := env.favorites.Add(&user.Favorite{Username: "alice", BrandID: "nike"}); err != nil {
		t.Fatalf("seeding favorite: %v", err)
	}

	profile, err := svc.Profile("alice")
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if profile == nil || profile.Account.Username != "alice" {
		t.Fatalf("profile = %+v, want alice", profile)
	}
	if profile.Stats.TotalScans != 2 {
		t.Errorf("total scans = %d, want 2", profile.Stats.TotalScans)
	}
	if profile.Stats.UniqueBrands != 1 {
		t.Errorf("unique brands = %d, want 1 (sentinel excluded)", profile.Stats.UniqueBrands)
	}
	if profile.Stats.FavoritesCount != 1 {
		t.Errorf("favorites = %d, want 1", profile.Stats.FavoritesCount)
	}

	missing, err := svc.Profile("nobody")
	if err != nil {
		t.Fatalf("Profile(nobody) failed: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil profile for unknown user, got %+v", missing)
	}
}

func TestDeleteAccountRemovesAllRows(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService(t)
	env.registerUser(t, "alice")
	env.registerUser(t, "bob")

	nike, _ := brand.Lookup("nike")
	if err := env.history.Save(&user.ScanRecord{Username: "alice", Brand: nike, ScanType: user.ScanTypeManual}); err != nil {
		t.Fatalf("seeding history: %v", err)
	}
	if err := env.favorites.Add(&user.Favorite{Username: "alice", BrandID: "nike"}); err != nil {
		t.Fatalf("seeding favorite: %v", err)
	}
	if err := env.events.Store(&analytics.Event{Username: "alice", Action: analytics.ActionBrandScanned}); err != nil {
		t.Fatalf("seeding event: %v", err)
	}
	if err := env.history.Save(&user.ScanRecord{Username: "bob", Brand: nike, ScanType: user.ScanTypeManual}); err != nil {
		t.Fatalf("seeding bob history: %v", err)
	}

	if err := svc.DeleteAccount("alice"); err != nil {
		t.Fatalf("DeleteAccount failed: %v", err)
	}

	if account, _ := env.accounts.FindByUsername("alice"); account != nil {
		t.Error("account row survived deletion")
	}
	for _, table := range []string{"user_history", "user_favorites", "analytics"} {
		if count := env.countRows(t, table, "alice"); count != 0 {
			t.Errorf("%s still has %d rows for alice", table, count)
		}
	}
	if count := env.countRows(t, "user_history", "bob"); count != 1 {
		t.Errorf("deleting alice must not touch bob, history count = %d", count)
	}
}
