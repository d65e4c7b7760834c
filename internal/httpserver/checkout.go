package httpserver

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gfstore/internal/checkout"
	"gfstore/internal/domain"
)

type customerRequest struct {
	Name        string `json:"name" form:"name"`
	Email       string `json:"email" form:"email"`
	Phone       string `json:"phone" form:"phone"`
	Address     string `json:"address" form:"address"`
	City        string `json:"city" form:"city"`
	Zip         string `json:"zip" form:"zip"`
	Country     string `json:"country" form:"country"`
	CountryName string `json:"countryName" form:"countryName"`
}

func (r customerRequest) toDomain() domain.Customer {
	return domain.Customer{
		Name:        r.Name,
		Email:       r.Email,
		Phone:       r.Phone,
		Address:     r.Address,
		City:        r.City,
		Zip:         r.Zip,
		Country:     r.Country,
		CountryName: r.CountryName,
	}
}

type methodRequest struct {
	Method string `json:"method" binding:"required"`
}

type splitRequest struct {
	Parts int `json:"parts" binding:"required"`
}

type sepaRequest struct {
	customerRequest
	Reference string `json:"reference" form:"reference"`
	Coupon    string `json:"coupon" form:"coupon"`
	FileName  string `json:"file_name" form:"file_name"`
	FileType  string `json:"file_type" form:"file_type"`
	FileB64   string `json:"file_b64"`
}

type cryptoRequest struct {
	customerRequest
	Currency string `json:"ccy" binding:"required"`
	TxID     string `json:"txid" binding:"required"`
	Coupon   string `json:"coupon"`
}

type cardRequest struct {
	customerRequest
	Holder string `json:"holder"`
	Number string `json:"number"`
	Expiry string `json:"expiry"`
	Code   string `json:"code"`
	Coupon string `json:"coupon"`
}

type orderRequest struct {
	customerRequest
	Coupon string `json:"coupon"`
}

func (h *handlers) checkoutSummary(c *gin.Context) {
	session := h.session(c)
	quote := h.deps.Checkout.Quote(session, h.ledger(c), h.currentUser(c), c.Query("coupon"))
	c.JSON(http.StatusOK, gin.H{
		"quote": quote,
		"state": h.deps.Checkout.State(session),
	})
}

func (h *handlers) checkoutWallets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"wallets": checkout.Wallets})
}

func (h *handlers) selectMethod(c *gin.Context) {
	var req methodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "Méthode de paiement invalide")
		return
	}
	snap, err := h.deps.Checkout.SelectMethod(h.session(c), domain.PaymentMethod(req.Method))
	if err != nil {
		badRequest(c, err, "Méthode de paiement invalide")
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": snap})
}

func (h *handlers) setSplit(c *gin.Context) {
	var req splitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "Échéancier invalide")
		return
	}
	snap, err := h.deps.Checkout.SetSplit(h.session(c), req.Parts)
	if err != nil {
		badRequest(c, err, "Échéancier invalide")
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": snap})
}

// verifySepa accepts either a multipart form with a "proof" file or a JSON
// body with the document embedded as base64.
func (h *handlers) verifySepa(c *gin.Context) {
	var req sepaRequest
	var proof *checkout.Proof

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if err := c.ShouldBind(&req); err != nil {
			badRequest(c, err, "Formulaire invalide")
			return
		}
		header, err := c.FormFile("proof")
		if err == nil {
			file, err := header.Open()
			if err != nil {
				badRequest(c, err, "Justificatif illisible")
				return
			}
			defer file.Close()
			data, err := io.ReadAll(io.LimitReader(file, checkout.MaxProofSize+1))
			if err != nil {
				badRequest(c, err, "Justificatif illisible")
				return
			}
			proof = &checkout.Proof{
				Filename:    header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Data:        data,
			}
		}
	} else {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err, "Formulaire invalide")
			return
		}
		if req.FileB64 != "" {
			data, err := base64.StdEncoding.DecodeString(req.FileB64)
			if err != nil {
				badRequest(c, err, "Justificatif illisible")
				return
			}
			proof = &checkout.Proof{Filename: req.FileName, ContentType: req.FileType, Data: data}
		}
	}

	snap, err := h.deps.Checkout.VerifySepa(c.Request.Context(), h.session(c), h.ledger(c),
		req.toDomain(), req.Reference, proof, h.currentUser(c), req.Coupon)
	if err != nil {
		badRequest(c, err, "Vérification du virement impossible")
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": snap})
}

func (h *handlers) verifyCrypto(c *gin.Context) {
	var req cryptoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "Formulaire invalide")
		return
	}
	snap, err := h.deps.Checkout.VerifyCrypto(c.Request.Context(), h.session(c), h.ledger(c),
		req.toDomain(), req.Currency, req.TxID, h.currentUser(c), req.Coupon)
	if err != nil {
		badRequest(c, err, "Vérification de la transaction impossible")
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": snap})
}

func (h *handlers) payCard(c *gin.Context) {
	var req cardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "Formulaire invalide")
		return
	}
	card := checkout.CardInput{Holder: req.Holder, Number: req.Number, Expiry: req.Expiry, Code: req.Code}
	order, err := h.deps.Checkout.PayCard(c.Request.Context(), h.session(c), h.ledger(c),
		req.toDomain(), card, h.currentUser(c), req.Coupon)
	if err != nil {
		badRequest(c, err, "Paiement par carte refusé")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": order, "toast": "Commande confirmée"})
}

func (h *handlers) placeOrder(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "Formulaire invalide")
		return
	}
	order, err := h.deps.Checkout.PlaceOrder(c.Request.Context(), h.session(c), h.ledger(c),
		req.toDomain(), h.currentUser(c), req.Coupon)
	if err != nil {
		badRequest(c, err, orderToast(err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": order, "toast": "Commande confirmée"})
}

func orderToast(err error) string {
	switch {
	case errors.Is(err, checkout.ErrCartEmpty):
		return "Votre panier est vide"
	case errors.Is(err, checkout.ErrNotVerified):
		return "Veuillez d'abord vérifier votre paiement"
	case errors.Is(err, checkout.ErrCardViaOrder):
		return "Le paiement par carte se valide directement"
	default:
		return "Commande impossible"
	}
}

func (h *handlers) listOrders(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"orders": h.deps.Checkout.Orders()})
}

// lastOrder serves the confirmation view: the most recent order placed by
// this session.
func (h *handlers) lastOrder(c *gin.Context) {
	order, err := h.deps.Checkout.LastOrder(h.session(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

func (h *handlers) getOrder(c *gin.Context) {
	order, err := h.deps.Checkout.OrderByID(c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}
