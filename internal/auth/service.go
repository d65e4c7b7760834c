// Package auth implements account registration, login sessions and
// password reset over the local user store.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"io"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"gfstore/internal/domain"
)

const (
	usersKey = "gf:users"

	// MinPasswordLen is the minimum accepted password length.
	MinPasswordLen = 6
)

var (
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type kv interface {
	Get(key string, v interface{}) bool
	Set(key string, v interface{})
}

// Service manages the user list and the login sessions on top of it. The
// user list is read and written as a whole; a mutex serialises writers.
type Service struct {
	kv     kv
	tokens *TokenManager
	logger *log.Logger
	mu     sync.Mutex
	now    func() time.Time
}

func New(kv kv, sessionTTL time.Duration, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		kv:     kv,
		tokens: NewTokenManager(sessionTTL),
		logger: logger,
		now:    time.Now,
	}
}

// Tokens exposes the session manager, shared with the HTTP layer for
// anonymous sessions.
func (s *Service) Tokens() *TokenManager {
	return s.tokens
}

// Register creates an account and opens a session for it. When the caller
// already holds a live anonymous session it is rebound to the new account
// instead of being replaced, so session-keyed state (the cart) survives.
func (s *Service) Register(email, password, session string) (domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRe.MatchString(email) {
		return domain.User{}, "", ErrInvalidEmail
	}
	if len(password) < MinPasswordLen {
		return domain.User{}, "", ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, "", err
	}

	s.mu.Lock()
	users := s.loadLocked()
	for _, u := range users {
		if u.Email == email {
			s.mu.Unlock()
			return domain.User{}, "", ErrEmailTaken
		}
	}
	user := domain.User{
		ID:           newUserID(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	s.storeLocked(append(users, user))
	s.mu.Unlock()

	token := s.bindOrIssue(session, user.ID)
	s.logger.Printf("registered %s", email)
	return user, token, nil
}

// Login verifies credentials and opens a session, rebinding the caller's
// live anonymous session like Register does.
func (s *Service) Login(email, password, session string) (domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.FindByEmail(email)
	if err != nil {
		return domain.User{}, "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return domain.User{}, "", ErrInvalidCredentials
	}
	return user, s.bindOrIssue(session, user.ID), nil
}

// bindOrIssue attaches the user to an existing live session when one is
// presented, and issues a fresh token otherwise.
func (s *Service) bindOrIssue(session, userID string) string {
	if session != "" {
		if _, ok := s.tokens.Resolve(session); ok {
			s.tokens.Bind(session, userID)
			return session
		}
	}
	return s.tokens.Issue(userID)
}

// Logout revokes the session token.
func (s *Service) Logout(token string) {
	s.tokens.Revoke(token)
}

// Me resolves a session token to its user.
func (s *Service) Me(token string) (domain.User, error) {
	id, ok := s.tokens.Resolve(token)
	if !ok || id == "" {
		return domain.User{}, domain.ErrNotFound
	}
	return s.FindByID(id)
}

// ResetPassword overwrites the password of an existing account. The
// response does not reveal whether the email exists.
func (s *Service) ResetPassword(email, password string) error {
	if len(password) < MinPasswordLen {
		return ErrPasswordTooShort
	}
	email = strings.ToLower(strings.TrimSpace(email))

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	users := s.loadLocked()
	for i := range users {
		if users[i].Email == email {
			users[i].PasswordHash = string(hash)
			s.storeLocked(users)
			return nil
		}
	}
	return nil
}

// FindByEmail looks an account up by its normalised email.
func (s *Service) FindByEmail(email string) (domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.loadLocked() {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

// FindByID looks an account up by id.
func (s *Service) FindByID(id string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.loadLocked() {
		if u.ID == id {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

// Save upserts a user record, matching by id.
func (s *Service) Save(user domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := s.loadLocked()
	for i := range users {
		if users[i].ID == user.ID {
			users[i] = user
			s.storeLocked(users)
			return
		}
	}
	s.storeLocked(append(users, user))
}

func (s *Service) loadLocked() []domain.User {
	var users []domain.User
	s.kv.Get(usersKey, &users)
	return users
}

func (s *Service) storeLocked(users []domain.User) {
	s.kv.Set(usersKey, users)
}

func newUserID() string {
	var b [8]byte
	rand.Read(b[:])
	return "u_" + hex.EncodeToString(b[:])
}
