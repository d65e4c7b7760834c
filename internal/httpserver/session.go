package httpserver

import (
	"log"

	"github.com/gin-gonic/gin"

	"gfstore/internal/cart"
	"gfstore/internal/domain"
)

// SessionHeader carries the opaque session token in both directions.
const SessionHeader = "X-Session-Token"

const (
	ctxSessionKey = "session"
	ctxUserIDKey  = "userID"
)

type handlers struct {
	deps   Deps
	logger *log.Logger
}

// sessionMiddleware resolves the session token, issuing an anonymous one
// when the request carries none. The token is always echoed back so the
// client can persist it.
func (h *handlers) sessionMiddleware() gin.HandlerFunc {
	tokens := h.deps.Auth.Tokens()
	return func(c *gin.Context) {
		token := c.GetHeader(SessionHeader)
		subject, ok := "", false
		if token != "" {
			subject, ok = tokens.Resolve(token)
		}
		if !ok {
			token = tokens.Issue("")
			subject = ""
		}
		c.Set(ctxSessionKey, token)
		c.Set(ctxUserIDKey, subject)
		c.Header(SessionHeader, token)
		c.Next()
	}
}

func (h *handlers) session(c *gin.Context) string {
	return c.GetString(ctxSessionKey)
}

func (h *handlers) ledger(c *gin.Context) *cart.Ledger {
	return cart.New(h.deps.Store, h.session(c), h.logger)
}

// currentUser returns the logged-in user, or nil for anonymous sessions.
func (h *handlers) currentUser(c *gin.Context) *domain.User {
	id := c.GetString(ctxUserIDKey)
	if id == "" {
		return nil
	}
	user, err := h.deps.Auth.FindByID(id)
	if err != nil {
		return nil
	}
	return &user
}

// wishlistOwner scopes the wishlist to the account when logged in, to the
// session otherwise.
func (h *handlers) wishlistOwner(c *gin.Context) string {
	if id := c.GetString(ctxUserIDKey); id != "" {
		return id
	}
	return h.session(c)
}
