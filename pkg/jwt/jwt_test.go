package jwt

import (
	"testing"
	"time"

	"hospital-intake-api/config"

	"github.com/google/uuid"
)

func testService(secret string) *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:        secret,
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 7 * 24 * time.Hour,
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := testService("test-secret")
	userID := uuid.New()

	token, tokenID, err := svc.GenerateAccessToken(userID, "frontdesk", 2)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	if tokenID == "" {
		t.Fatal("empty token ID")
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("failed to validate token: %v", err)
	}

	if claims.UserID != userID {
		t.Errorf("user ID = %s, want %s", claims.UserID, userID)
	}
	if claims.Username != "frontdesk" {
		t.Errorf("username = %q", claims.Username)
	}
	if claims.RoleID != 2 {
		t.Errorf("role ID = %d, want 2", claims.RoleID)
	}
	if claims.TokenType != AccessToken {
		t.Errorf("token type = %q, want access", claims.TokenType)
	}
	if claims.TokenID != tokenID {
		t.Errorf("token ID mismatch: %q vs %q", claims.TokenID, tokenID)
	}
}

func TestRefreshTokenType(t *testing.T) {
	svc := testService("test-secret")

	token, _, err := svc.GenerateRefreshToken(uuid.New(), "frontdesk", 2)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("failed to validate token: %v", err)
	}
	if claims.TokenType != RefreshToken {
		t.Errorf("token type = %q, want refresh", claims.TokenType)
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, _, err := testService("secret-a").GenerateAccessToken(uuid.New(), "frontdesk", 2)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	if _, err := testService("secret-b").ValidateToken(token); err == nil {
		t.Error("token signed with a different secret validated")
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := testService("test-secret")

	for _, input := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := svc.ValidateToken(input); err == nil {
			t.Errorf("ValidateToken(%q) accepted", input)
		}
	}
}

func TestTokenIDsAreUnique(t *testing.T) {
	svc := testService("test-secret")
	userID := uuid.New()

	_, first, err := svc.GenerateAccessToken(userID, "frontdesk", 2)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	_, second, err := svc.GenerateAccessToken(userID, "frontdesk", 2)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	if first == second {
		t.Error("two generated tokens share a token ID")
	}
}
