package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gfstore/internal/auth"
	"gfstore/internal/domain"
)

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type toggleRequest struct {
	SKU string `json:"sku" binding:"required"`
}

// publicUser is the account view served to clients, without the hash.
type publicUser struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Wishlist   []string  `json:"wishlist"`
	Orders     []string  `json:"orders"`
	CouponUsed bool      `json:"couponUsed"`
	CreatedAt  time.Time `json:"created_at"`
}

func toPublicUser(u domain.User) publicUser {
	wishlist := u.Wishlist
	if wishlist == nil {
		wishlist = []string{}
	}
	orders := u.Orders
	if orders == nil {
		orders = []string{}
	}
	return publicUser{
		ID:         u.ID,
		Email:      u.Email,
		Wishlist:   wishlist,
		Orders:     orders,
		CouponUsed: u.CouponUsed,
		CreatedAt:  u.CreatedAt,
	}
}

func (h *handlers) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "Formulaire invalide")
		return
	}
	user, token, err := h.deps.Auth.Register(req.Email, req.Password, h.session(c))
	if err != nil {
		badRequest(c, err, authToast(err))
		return
	}
	c.Header(SessionHeader, token)
	c.JSON(http.StatusCreated, gin.H{"user": toPublicUser(user), "token": token})
}

func (h *handlers) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "Formulaire invalide")
		return
	}
	user, token, err := h.deps.Auth.Login(req.Email, req.Password, h.session(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "toast": "Email ou mot de passe incorrect"})
		return
	}
	c.Header(SessionHeader, token)
	c.JSON(http.StatusOK, gin.H{"user": toPublicUser(user), "token": token})
}

func (h *handlers) logout(c *gin.Context) {
	h.deps.Auth.Logout(c.GetHeader(SessionHeader))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *handlers) resetPassword(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "Formulaire invalide")
		return
	}
	if err := h.deps.Auth.ResetPassword(req.Email, req.Password); err != nil {
		badRequest(c, err, authToast(err))
		return
	}
	// Same answer whether the account exists or not.
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *handlers) me(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toPublicUser(*user)})
}

func (h *handlers) getWishlist(c *gin.Context) {
	items := h.deps.Wishlist.Items(h.wishlistOwner(c))
	if items == nil {
		items = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *handlers) toggleWishlist(c *gin.Context) {
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "Article invalide")
		return
	}
	owner := h.wishlistOwner(c)
	added := h.deps.Wishlist.Toggle(owner, req.SKU)
	toast := "Retiré des favoris"
	if added {
		toast = "Ajouté aux favoris"
	}
	c.JSON(http.StatusOK, gin.H{
		"added": added,
		"items": h.deps.Wishlist.Items(owner),
		"toast": toast,
	})
}

func authToast(err error) string {
	switch {
	case errors.Is(err, auth.ErrEmailTaken):
		return "Cet email est déjà utilisé"
	case errors.Is(err, auth.ErrInvalidEmail):
		return "Adresse email invalide"
	case errors.Is(err, auth.ErrPasswordTooShort):
		return "Mot de passe trop court (6 caractères minimum)"
	default:
		return "Opération impossible"
	}
}
