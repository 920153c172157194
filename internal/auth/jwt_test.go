package auth

import (
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/eastern-erp/eastern-erp/internal/db/models"
)

// resetJWTSecret resets the package-level sync.Once so tests can set a fresh secret.
// This is only safe to call from test code.
func resetJWTSecret() {
	jwtSecret = ""
	jwtSecretOnce = sync.Once{}
	jwtSecretErr = nil
}

func TestMain(m *testing.M) {
	// Set a known test secret before any test runs.
	// The sync.Once will capture this value on first call to ValidateJWTSecret.
	os.Setenv("EERP_JWT_SECRET", "test-jwt-secret-that-is-32-chars-!")
	os.Exit(m.Run())
}

func TestValidateJWTSecret(t *testing.T) {
	t.Run("valid secret from env", func(t *testing.T) {
		resetJWTSecret()
		t.Setenv("EERP_JWT_SECRET", "exactly-32-char-secret-for-test!!")
		if err := ValidateJWTSecret(); err != nil {
			t.Errorf("ValidateJWTSecret() unexpected error: %v", err)
		}
	})

	t.Run("production mode requires secret", func(t *testing.T) {
		resetJWTSecret()
		t.Setenv("EERP_JWT_SECRET", "")
		t.Setenv("DEV_MODE", "")
		t.Setenv("GIN_MODE", "release")
		if err := ValidateJWTSecret(); err == nil {
			t.Error("ValidateJWTSecret() expected error in production mode without secret, got nil")
		}
	})

	t.Run("dev mode generates random secret", func(t *testing.T) {
		resetJWTSecret()
		t.Setenv("EERP_JWT_SECRET", "")
		t.Setenv("DEV_MODE", "true")
		if err := ValidateJWTSecret(); err != nil {
			t.Errorf("ValidateJWTSecret() unexpected error in dev mode: %v", err)
		}
		if GetJWTSecret() == "" {
			t.Error("GetJWTSecret() returned empty string after dev mode init")
		}
	})
}

func TestGenerateAndValidateJWT(t *testing.T) {
	resetJWTSecret()
	t.Setenv("EERP_JWT_SECRET", "test-jwt-secret-that-is-32-chars-!")

	t.Run("round trip", func(t *testing.T) {
		token, err := GenerateJWT("user-123", "test@example.com", models.RoleAuditor, time.Hour)
		if err != nil {
			t.Fatalf("GenerateJWT() error: %v", err)
		}
		if token == "" {
			t.Fatal("GenerateJWT() returned empty token")
		}

		claims, err := ValidateJWT(token)
		if err != nil {
			t.Fatalf("ValidateJWT() error: %v", err)
		}
		if claims.UserID != "user-123" {
			t.Errorf("claims.UserID = %q, want user-123", claims.UserID)
		}
		if claims.Email != "test@example.com" {
			t.Errorf("claims.Email = %q, want test@example.com", claims.Email)
		}
		if claims.Role != models.RoleAuditor {
			t.Errorf("claims.Role = %q, want auditor", claims.Role)
		}
		if claims.Issuer != "eastern-erp" {
			t.Errorf("claims.Issuer = %q, want eastern-erp", claims.Issuer)
		}
	})

	t.Run("expired token rejected", func(t *testing.T) {
		token, err := GenerateJWT("user-123", "test@example.com", models.RoleAuditor, -time.Minute)
		if err != nil {
			t.Fatalf("GenerateJWT() error: %v", err)
		}

		if _, err := ValidateJWT(token); err == nil {
			t.Error("ValidateJWT() expected error for expired token, got nil")
		}
	})

	t.Run("tampered token rejected", func(t *testing.T) {
		token, err := GenerateJWT("user-123", "test@example.com", models.RoleAuditor, time.Hour)
		if err != nil {
			t.Fatalf("GenerateJWT() error: %v", err)
		}

		tampered := token[:len(token)-4] + "XXXX"
		if _, err := ValidateJWT(tampered); err == nil {
			t.Error("ValidateJWT() expected error for tampered token, got nil")
		}
	})

	t.Run("garbage rejected", func(t *testing.T) {
		if _, err := ValidateJWT("not.a.token"); err == nil {
			t.Error("ValidateJWT() expected error for garbage input, got nil")
		}
	})
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("HashPassword() error: %v", err)
	}
	if hash == "correct horse battery" {
		t.Fatal("hash equals plaintext")
	}

	if !CheckPassword(hash, "correct horse battery") {
		t.Error("CheckPassword() = false for correct password")
	}
	if CheckPassword(hash, "wrong password") {
		t.Error("CheckPassword() = true for wrong password")
	}
}

func TestHashPassword_Bounds(t *testing.T) {
	if _, err := HashPassword("short"); err != ErrPasswordTooShort {
		t.Errorf("err = %v, want ErrPasswordTooShort", err)
	}
	if _, err := HashPassword(strings.Repeat("a", 73)); err != ErrPasswordTooLong {
		t.Errorf("err = %v, want ErrPasswordTooLong", err)
	}
}
