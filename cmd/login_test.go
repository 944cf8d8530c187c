package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/zhubert/parley/internal/config"
	"github.com/zhubert/parley/internal/mockserver"
)

func TestLogin_DescribesJWT(t *testing.T) {
	withTempHome(t)
	token, err := mockserver.IssueToken([]byte("secret"), "u1", "ada@example.com", 2*time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	var out bytes.Buffer
	if err := login(&out, token, time.Now()); err != nil {
		t.Fatalf("login: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "Logged in as ada@example.com") || !strings.Contains(got, "from now") {
		t.Errorf("output = %q", got)
	}

	stored, err := config.LoadToken()
	if err != nil || stored != token {
		t.Errorf("stored token = %q, %v", stored, err)
	}
}

func TestLogin_ExpiredJWTStillSaved(t *testing.T) {
	withTempHome(t)
	token, err := mockserver.IssueToken([]byte("secret"), "u1", "", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	var out bytes.Buffer
	if err := login(&out, token, time.Now().Add(3*time.Hour)); err != nil {
		t.Fatalf("login: %v", err)
	}
	if got := out.String(); !strings.Contains(got, "Logged in as u1, but the token expired") {
		t.Errorf("output = %q", got)
	}
	if !config.HasStoredToken() {
		t.Error("an expired token is still saved")
	}
}

func TestLogin_OpaqueToken(t *testing.T) {
	withTempHome(t)

	var out bytes.Buffer
	if err := login(&out, "opaque-token", time.Now()); err != nil {
		t.Fatalf("login: %v", err)
	}
	if out.String() != "Token saved.\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestLogin_EmptyTokenRejected(t *testing.T) {
	withTempHome(t)

	var out bytes.Buffer
	if err := login(&out, "   ", time.Now()); err == nil {
		t.Error("expected an error for an empty token")
	}
	if config.HasStoredToken() {
		t.Error("nothing should be stored")
	}
}

func TestLogout(t *testing.T) {
	withTempHome(t)

	var out bytes.Buffer
	if err := logout(&out); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if out.String() != "No stored token.\n" {
		t.Errorf("output = %q", out.String())
	}

	if err := config.SaveToken("abc"); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}
	out.Reset()
	if err := logout(&out); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if out.String() != "Token removed.\n" || config.HasStoredToken() {
		t.Errorf("output = %q, stored = %v", out.String(), config.HasStoredToken())
	}
}
