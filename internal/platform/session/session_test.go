package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMiddlewareMintsCookieWhenAbsent(t *testing.T) {
	var got string
	handler := Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if got == "" {
		t.Fatalf("expected session id in context")
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CookieName {
		t.Fatalf("expected %s cookie, got %+v", CookieName, cookies)
	}
	if cookies[0].Value != got {
		t.Fatalf("cookie value %q does not match context id %q", cookies[0].Value, got)
	}
	if !cookies[0].HttpOnly {
		t.Fatalf("session cookie must be http-only")
	}
}

func TestMiddlewareReusesValidCookie(t *testing.T) {
	id := NewID()
	var got string
	handler := Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: id})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got != id {
		t.Fatalf("expected session id %q, got %q", id, got)
	}
	if cookies := rec.Result().Cookies(); len(cookies) != 0 {
		t.Fatalf("expected no new cookie for a valid session, got %+v", cookies)
	}
}

func TestMiddlewareReplacesMalformedCookie(t *testing.T) {
	var got string
	handler := Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "../../../etc/passwd"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got == "" || got == "../../../etc/passwd" {
		t.Fatalf("expected a freshly minted id, got %q", got)
	}
	if cookies := rec.Result().Cookies(); len(cookies) != 1 {
		t.Fatalf("expected replacement cookie, got %+v", cookies)
	}
}

func TestNewIDIsUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewID()
		if seen[id] {
			t.Fatalf("duplicate session id %q", id)
		}
		seen[id] = true
	}
}
