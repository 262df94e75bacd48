package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestSessionIssuesCookieForNewVisitor(t *testing.T) {
	var sawSession string
	handler := Session(nil, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawSession = SessionIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if _, err := uuid.Parse(sawSession); err != nil {
		t.Fatalf("expected a uuid session id, got %q", sawSession)
	}

	cookies := resp.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "smk_session" {
		t.Fatalf("expected smk_session cookie, got %v", cookies)
	}
	if cookies[0].Value != sawSession {
		t.Fatalf("cookie %q does not match context session %q", cookies[0].Value, sawSession)
	}
	if !cookies[0].HttpOnly {
		t.Fatal("expected HttpOnly cookie")
	}
}

func TestSessionReusesExistingCookie(t *testing.T) {
	existing := uuid.NewString()
	var sawSession string
	handler := Session(nil, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawSession = SessionIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "smk_session", Value: existing})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if sawSession != existing {
		t.Fatalf("expected session %q, got %q", existing, sawSession)
	}
	if len(resp.Result().Cookies()) != 0 {
		t.Fatal("expected no replacement cookie for a returning visitor")
	}
}

func TestSessionReplacesMalformedCookie(t *testing.T) {
	var sawSession string
	handler := Session(nil, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawSession = SessionIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "smk_session", Value: "not-a-uuid"})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if sawSession == "not-a-uuid" || sawSession == "" {
		t.Fatalf("expected fresh session id, got %q", sawSession)
	}
	if len(resp.Result().Cookies()) != 1 {
		t.Fatal("expected replacement cookie")
	}
}
