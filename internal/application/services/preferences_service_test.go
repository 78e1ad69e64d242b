package services

import (
	"testing"

	"github.com/luminor-ai/luminor-go/internal/domain/user"
)

func newPreferencesService(env *testEnv) *PreferencesService {
	return NewPreferencesService(env.logger, env.tracker, env.accounts)
}

func TestPreferencesRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "alice")
	svc := newPreferencesService(env)

	prefs, err := svc.Get("alice")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if *prefs != user.DefaultPreferences() {
		t.Errorf("fresh prefs = %+v, want defaults", prefs)
	}

	updated := user.Preferences{Theme: "Ocean Light", Notifications: false, AutoSaveScans: false}
	result, err := svc.Update("alice", updated)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !result.Success {
		t.Fatalf("Update rejected: %s", result.Error)
	}

	prefs, err = svc.Get("alice")
	if err != nil {
		t.Fatalf("Get after update failed: %v", err)
	}
	if *prefs != updated {
		t.Errorf("prefs = %+v, want %+v", prefs, updated)
	}
}

func TestPreferencesRejectUnknownTheme(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "alice")
	svc := newPreferencesService(env)

	result, err := svc.Update("alice", user.Preferences{Theme: "Hot Pink", Notifications: true, AutoSaveScans: true})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if result.Success {
		t.Fatal("unknown theme should be rejected")
	}
	if result.Error == "" {
		t.Error("rejection should carry a message")
	}

	// The stored document is untouched.
	prefs, _ := svc.Get("alice")
	if prefs.Theme != user.DefaultPreferences().Theme {
		t.Errorf("theme = %q, want the stored default", prefs.Theme)
	}
}

func TestPreferencesMissingAccount(t *testing.T) {
	env := newTestEnv(t)
	svc := newPreferencesService(env)

	prefs, err := svc.Get("nobody")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if prefs != nil {
		t.Errorf("expected nil for unknown account, got %+v", prefs)
	}
}
