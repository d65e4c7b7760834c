package auth

import (
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"
)

type session struct {
	subject   string
	expiresAt time.Time
}

// TokenManager keeps bearer sessions in memory. Tokens are opaque random
// strings; expired entries are dropped on read.
type TokenManager struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[string]session
}

func NewTokenManager(ttl time.Duration) *TokenManager {
	return &TokenManager{
		ttl:      ttl,
		sessions: make(map[string]session),
	}
}

// Issue creates a token bound to a subject. An empty subject is a valid
// anonymous session.
func (m *TokenManager) Issue(subject string) string {
	buf := make([]byte, 32)
	rand.Read(buf)
	token := base64.RawURLEncoding.EncodeToString(buf)

	m.mu.Lock()
	m.sessions[token] = session{subject: subject, expiresAt: time.Now().Add(m.ttl)}
	m.mu.Unlock()
	return token
}

// Resolve returns the subject bound to a live token.
func (m *TokenManager) Resolve(token string) (string, bool) {
	m.mu.RLock()
	s, ok := m.sessions[token]
	m.mu.RUnlock()
	if !ok {
		return "", false
	}
	if time.Now().After(s.expiresAt) {
		m.mu.Lock()
		delete(m.sessions, token)
		m.mu.Unlock()
		return "", false
	}
	return s.subject, true
}

// Bind rebinds a live token to a new subject, typically after login on an
// anonymous session.
func (m *TokenManager) Bind(token, subject string) {
	m.mu.Lock()
	if s, ok := m.sessions[token]; ok {
		s.subject = subject
		m.sessions[token] = s
	}
	m.mu.Unlock()
}

// Revoke drops a token.
func (m *TokenManager) Revoke(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}
