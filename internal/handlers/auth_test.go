package handlers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLoginEndpoint_Success(t *testing.T) {
	env := setupHandlers(t)

	body := bytes.NewBufferString(`{"password":"test-password"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", body)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	found := false
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "tallyvote_session" && cookie.Value != "" {
			found = true
			if !cookie.HttpOnly {
				t.Error("expected HttpOnly session cookie")
			}
		}
	}
	if !found {
		t.Error("expected a session cookie on successful login")
	}
}

func TestLoginEndpoint_WrongPassword(t *testing.T) {
	env := setupHandlers(t)

	body := bytes.NewBufferString(`{"password":"wrong"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", body)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestLoginEndpoint_EmptyBody(t *testing.T) {
	env := setupHandlers(t)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", bytes.NewBuffer(nil))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty body, got %d", rec.Code)
	}
}

func TestLogoutEndpoint(t *testing.T) {
	env := setupHandlers(t)
	cookie := adminCookie(t, env)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/logout", bytes.NewBuffer(nil))
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// The invalidated cookie no longer grants access
	rec2 := doJSON(env, http.MethodGet, "/api/admin/sessions", nil, cookie)
	if rec2.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", rec2.Code)
	}
}
