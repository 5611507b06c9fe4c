package auth

import (
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func initTestSecret(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	if err := InitJWTSecret(); err != nil {
		t.Fatalf("InitJWTSecret: %v", err)
	}
}

func TestGenerateAndVerifyRoundTrip(t *testing.T) {
	initTestSecret(t)

	tokenString, err := GenerateJWT(42, "worker@example.com")
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	token, err := VerifyJWT(tokenString)
	if err != nil {
		t.Fatalf("VerifyJWT: %v", err)
	}

	userID, err := UserIDFromToken(token)
	if err != nil {
		t.Fatalf("UserIDFromToken: %v", err)
	}
	if userID != 42 {
		t.Errorf("user_id = %d, want 42", userID)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("expected MapClaims")
	}
	if claims["email"] != "worker@example.com" {
		t.Errorf("email claim = %v", claims["email"])
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	initTestSecret(t)

	tokenString, err := GenerateJWT(7, "worker@example.com")
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %q", tokenString)
	}
	tampered := parts[0] + "." + parts[1] + ".AAAA" + parts[2][4:]

	if _, err := VerifyJWT(tampered); err == nil {
		t.Fatal("expected tampered token to be rejected")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	initTestSecret(t)

	if _, err := VerifyJWT("not-a-token"); err == nil {
		t.Fatal("expected garbage token to be rejected")
	}
}

func TestInitJWTSecretMissing(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if err := InitJWTSecret(); err == nil {
		t.Fatal("expected error when JWT_SECRET is unset")
	}
}
