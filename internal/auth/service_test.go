package auth

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"gfstore/internal/domain"
)

type memKV struct {
	data map[string]json.RawMessage
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string]json.RawMessage)}
}

func (m *memKV) Get(key string, v interface{}) bool {
	raw, ok := m.data[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

func (m *memKV) Set(key string, v interface{}) {
	raw, _ := json.Marshal(v)
	m.data[key] = raw
}

func TestRegisterAndLogin(t *testing.T) {
	svc := New(newMemKV(), time.Hour, nil)

	user, token, err := svc.Register("Anna@Example.com", "secret1", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "anna@example.com" {
		t.Fatalf("expected normalised email, got %q", user.Email)
	}
	if user.PasswordHash == "" || user.PasswordHash == "secret1" {
		t.Fatalf("password must be hashed")
	}

	me, err := svc.Me(token)
	if err != nil || me.ID != user.ID {
		t.Fatalf("session not resolvable: %v", err)
	}

	if _, _, err := svc.Login("anna@example.com", "wrong", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login("anna@example.com", "secret1", ""); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := New(newMemKV(), time.Hour, nil)

	if _, _, err := svc.Register("not-an-email", "secret1", ""); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
	if _, _, err := svc.Register("a@b.co", "short", ""); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}

	if _, _, err := svc.Register("a@b.co", "secret1", ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := svc.Register("A@B.CO", "secret2", ""); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLoginRebindsAnonymousSession(t *testing.T) {
	svc := New(newMemKV(), time.Hour, nil)
	user, _, err := svc.Register("a@b.co", "secret1", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	anon := svc.Tokens().Issue("")
	_, token, err := svc.Login("a@b.co", "secret1", anon)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token != anon {
		t.Fatalf("expected the anonymous token to survive login, got a fresh one")
	}
	me, err := svc.Me(token)
	if err != nil || me.ID != user.ID {
		t.Fatalf("rebound session must resolve to the user: %v", err)
	}
}

func TestRegisterIgnoresDeadSession(t *testing.T) {
	svc := New(newMemKV(), time.Hour, nil)
	_, token, err := svc.Register("a@b.co", "secret1", "gone")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if token == "gone" {
		t.Fatalf("a dead session must not be adopted")
	}
	if _, err := svc.Me(token); err != nil {
		t.Fatalf("fresh session must resolve: %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	svc := New(newMemKV(), time.Hour, nil)
	_, token, err := svc.Register("a@b.co", "secret1", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	svc.Logout(token)
	if _, err := svc.Me(token); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected revoked session, got %v", err)
	}
}

func TestResetPassword(t *testing.T) {
	svc := New(newMemKV(), time.Hour, nil)
	if _, _, err := svc.Register("a@b.co", "secret1", ""); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.ResetPassword("a@b.co", "secret2"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, _, err := svc.Login("a@b.co", "secret2", ""); err != nil {
		t.Fatalf("login with new password: %v", err)
	}

	// Unknown email must not leak existence.
	if err := svc.ResetPassword("ghost@b.co", "secret3"); err != nil {
		t.Fatalf("reset unknown: %v", err)
	}
}

func TestSaveUpserts(t *testing.T) {
	svc := New(newMemKV(), time.Hour, nil)
	user, _, err := svc.Register("a@b.co", "secret1", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	user.CouponUsed = true
	user.Orders = []string{"GF-260831-1234"}
	svc.Save(user)

	got, err := svc.FindByID(user.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !got.CouponUsed || len(got.Orders) != 1 {
		t.Fatalf("save did not persist changes: %+v", got)
	}
}

func TestTokenExpiry(t *testing.T) {
	m := NewTokenManager(10 * time.Millisecond)
	token := m.Issue("u1")
	if sub, ok := m.Resolve(token); !ok || sub != "u1" {
		t.Fatalf("fresh token must resolve")
	}

	time.Sleep(20 * time.Millisecond)
	if _, ok := m.Resolve(token); ok {
		t.Fatalf("expired token must not resolve")
	}
}

func TestTokenBind(t *testing.T) {
	m := NewTokenManager(time.Hour)
	token := m.Issue("")
	m.Bind(token, "u1")
	if sub, ok := m.Resolve(token); !ok || sub != "u1" {
		t.Fatalf("expected rebound subject, got %q %v", sub, ok)
	}
}
