package session_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/geocoder89/weatherhub/internal/session"
)

func TestIssueAndVerify(t *testing.T) {
	mgr := session.NewManager("test-secret")

	token, err := mgr.Issue(42, "alice")

	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	s, err := mgr.Verify(token)

	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}

	if s.UserID != 42 || s.Username != "alice" {
		t.Fatalf("got session %+v, want userID=42 username=alice", s)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := session.NewManager("secret-a").Issue(1, "alice")

	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := session.NewManager("secret-b").Verify(token); err == nil {
		t.Fatalf("token signed with another secret was accepted")
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	mgr := session.NewManager("test-secret")

	token, err := mgr.Issue(1, "alice")

	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	tampered := token[:len(token)-2] + "xx"

	if _, err := mgr.Verify(tampered); err == nil {
		t.Fatalf("tampered token was accepted")
	}
}

func TestFromRequestFailsOpen(t *testing.T) {
	mgr := session.NewManager("test-secret")

	// no cookie at all
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	if s := mgr.FromRequest(req); s != nil {
		t.Fatalf("expected no session for cookieless request, got %+v", s)
	}

	// garbage cookie
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "garbage"})

	if s := mgr.FromRequest(req); s != nil {
		t.Fatalf("expected no session for garbage cookie, got %+v", s)
	}

	// empty value
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: ""})

	if s := mgr.FromRequest(req); s != nil {
		t.Fatalf("expected no session for empty cookie, got %+v", s)
	}
}

func TestFromRequestRoundTrip(t *testing.T) {
	mgr := session.NewManager("test-secret")

	token, err := mgr.Issue(7, "bob")

	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})

	s := mgr.FromRequest(req)

	if s == nil {
		t.Fatalf("expected a session from a valid cookie")
	}

	if s.Username != "bob" {
		t.Fatalf("got username %q, want bob", s.Username)
	}
}

func TestTokenIsOpaqueButSigned(t *testing.T) {
	mgr := session.NewManager("test-secret")

	token, err := mgr.Issue(1, "alice")

	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if strings.Count(token, ".") != 2 {
		t.Fatalf("token %q is not a three-part JWS", token)
	}
}
