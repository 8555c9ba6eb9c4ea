package integration

import (
	"net/http"
	"testing"
)

func TestAuthFlow_RegisterLoginRefresh(t *testing.T) {
	app := setupApp(t)

	// Register and use the issued access token right away.
	token, _, _ := app.registerUser(t, "auth@test.com", "password123")
	rec := app.request("GET", "/api/v1/profile", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with fresh token, got %d: %s", rec.Code, rec.Body.String())
	}

	// Login again with the same credentials.
	_, refreshToken := app.loginUser(t, "auth@test.com", "password123")

	// Exchange the refresh token for a new pair.
	rec = app.request("POST", "/api/v1/auth/refresh",
		`{"refresh_token":"`+refreshToken+`"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 refreshing, got %d: %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	newAccess := result["access_token"].(string)

	rec = app.request("GET", "/api/v1/profile", "", newAccess)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with refreshed token, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuthFlow_RejectsBadCredentials(t *testing.T) {
	app := setupApp(t)
	app.registerUser(t, "victim@test.com", "password123")

	rec := app.request("POST", "/api/v1/auth/login",
		`{"email":"victim@test.com","password":"wrong-password"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthFlow_ProtectedRoutesRequireToken(t *testing.T) {
	app := setupApp(t)

	for _, path := range []string{"/api/v1/profile", "/api/v1/budgets", "/api/v1/family"} {
		rec := app.request("GET", path, "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401 for %s without token, got %d", path, rec.Code)
		}
	}
}

func TestAuthFlow_StaleRefreshTokenRejected(t *testing.T) {
	app := setupApp(t)
	_, firstRefresh, _ := app.registerUser(t, "rotator@test.com", "password123")

	// Logging in rotates the stored refresh token hash, invalidating
	// the one issued at registration.
	app.loginUser(t, "rotator@test.com", "password123")

	rec := app.request("POST", "/api/v1/auth/refresh",
		`{"refresh_token":"`+firstRefresh+`"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for rotated-out refresh token, got %d", rec.Code)
	}
}
