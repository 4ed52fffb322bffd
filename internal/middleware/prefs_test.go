package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPrefsLanguagePrecedence(t *testing.T) {
	var got string
	h := Prefs(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = LangFrom(r)
	}))

	// Header only.
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Accept-Language", "nl-BE,nl;q=0.9")
	h.ServeHTTP(httptest.NewRecorder(), r)
	if got != "nl" {
		t.Fatalf("header detection: expected nl got %s", got)
	}

	// Cookie beats header.
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Accept-Language", "nl")
	r.AddCookie(&http.Cookie{Name: "lang", Value: "fr"})
	h.ServeHTTP(httptest.NewRecorder(), r)
	if got != "fr" {
		t.Fatalf("cookie precedence: expected fr got %s", got)
	}

	// Query beats cookie and is persisted.
	r = httptest.NewRequest(http.MethodGet, "/?lang=en", nil)
	r.AddCookie(&http.Cookie{Name: "lang", Value: "fr"})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if got != "en" {
		t.Fatalf("query precedence: expected en got %s", got)
	}
	persisted := false
	for _, c := range w.Result().Cookies() {
		if c.Name == "lang" && c.Value == "en" {
			persisted = true
		}
	}
	if !persisted {
		t.Fatalf("query language should be persisted in a cookie")
	}
}

func TestFlashRoundTrip(t *testing.T) {
	// Setting a flash writes the cookie.
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	Flash(w, r, "flash.saved")
	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "flash" {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value == "" {
		t.Fatalf("expected flash cookie to be set")
	}

	// The next request surfaces and expires it.
	var msg string
	h := Prefs(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		msg = FlashFrom(r)
	}))
	r2 := httptest.NewRequest(http.MethodGet, "/", nil)
	r2.AddCookie(cookie)
	w2 := httptest.NewRecorder()
	h.ServeHTTP(w2, r2)
	if msg != "Saved" {
		t.Fatalf("expected flash message Saved, got %q", msg)
	}
	cleared := false
	for _, c := range w2.Result().Cookies() {
		if c.Name == "flash" && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatalf("flash cookie should be expired after display")
	}
}
