package security

import (
	"strings"
	"testing"
	"time"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	secret := "test-secret-key"

	token, err := GenerateSessionToken("alice", "01JMT3S7VGEXAMPLE0SESSION0", true, secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateSessionToken failed: %v", err)
	}

	claims, err := ValidateJWT(token, secret)
	if err != nil {
		t.Fatalf("ValidateJWT failed: %v", err)
	}

	sess := GetSessionFromClaims(claims)
	if sess == nil {
		t.Fatal("expected session claims")
	}
	if sess.Username != "alice" {
		t.Errorf("username = %q, want alice", sess.Username)
	}
	if sess.SessionID != "01JMT3S7VGEXAMPLE0SESSION0" {
		t.Errorf("sessionId = %q", sess.SessionID)
	}
	if !sess.Remembered {
		t.Error("remembered flag lost in round trip")
	}
}

func TestSessionTokenWrongSecret(t *testing.T) {
	token, err := GenerateSessionToken("alice", "sid", false, "secret-a", time.Hour)
	if err != nil {
		t.Fatalf("GenerateSessionToken failed: %v", err)
	}
	if _, err := ValidateJWT(token, "secret-b"); err == nil {
		t.Error("token signed with another secret must not validate")
	}
}

func TestSessionTokenExpired(t *testing.T) {
	token, err := GenerateSessionToken("alice", "sid", false, "secret", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateSessionToken failed: %v", err)
	}
	if _, err := ValidateJWT(token, "secret"); err == nil {
		t.Error("expired token must not validate")
	}
}

func TestGetSessionFromClaimsRejectsMissingUsername(t *testing.T) {
	token, err := GenerateSessionToken("", "sid", false, "secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateSessionToken failed: %v", err)
	}
	claims, err := ValidateJWT(token, "secret")
	if err != nil {
		t.Fatalf("ValidateJWT failed: %v", err)
	}
	if sess := GetSessionFromClaims(claims); sess != nil {
		t.Errorf("claims without username should yield nil, got %+v", sess)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter42")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "hunter42" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !CheckPassword(hash, "hunter42") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "hunter43") {
		t.Error("wrong password accepted")
	}

	// Same password hashes differently each time (random salt).
	second, err := HashPassword("hunter42")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if second == hash {
		t.Error("two hashes of the same password should differ")
	}
}

func TestGenerateRememberToken(t *testing.T) {
	token, err := GenerateRememberToken()
	if err != nil {
		t.Fatalf("GenerateRememberToken failed: %v", err)
	}
	if len(token) < 40 {
		t.Errorf("token too short: %d chars", len(token))
	}
	if strings.ContainsAny(token, "+/ ") {
		t.Errorf("token must be URL-safe, got %q", token)
	}

	other, err := GenerateRememberToken()
	if err != nil {
		t.Fatalf("GenerateRememberToken failed: %v", err)
	}
	if token == other {
		t.Error("two generated tokens should differ")
	}
}

func TestGenerateULID(t *testing.T) {
	a, b := GenerateULID(), GenerateULID()
	if len(a) != 26 || len(b) != 26 {
		t.Errorf("ULID length = %d, %d, want 26", len(a), len(b))
	}
	if a == b {
		t.Error("two ULIDs should differ")
	}
}
