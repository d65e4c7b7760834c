package httpserver

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"gfstore/internal/auth"
	"gfstore/internal/catalog"
	"gfstore/internal/checkout"
	"gfstore/internal/domain"
	"gfstore/internal/storage"
	"gfstore/internal/webhook"
	"gfstore/internal/wishlist"
)

type stubSource struct {
	products []domain.Product
}

func (s stubSource) Fetch(context.Context) ([]domain.Product, error) {
	return s.products, nil
}

func testProducts() []domain.Product {
	return []domain.Product{
		{SKU: "veste-homme", Title: "Veste Homme", Category: domain.CategoryHomme, PriceCents: 12900, Currency: "EUR", Sizes: []string{"M", "L"}},
		{SKU: "robe-femme", Title: "Robe Femme", Category: domain.CategoryFemme, PriceCents: 8900, Currency: "EUR", Sizes: []string{"S"}},
	}
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := log.New(io.Discard, "", 0)
	store := storage.Open(filepath.Join(t.TempDir(), "store.json"), logger)
	authSvc := auth.New(store, time.Hour, logger)

	deps := Deps{
		Store:    store,
		Catalog:  catalog.NewStore(store, stubSource{testProducts()}, time.Hour, logger),
		Checkout: checkout.New(store, webhook.New("", "", "", time.Second, logger), authSvc, logger),
		Auth:     authSvc,
		Wishlist: wishlist.New(store),
	}
	return buildRouter(logger, deps)
}

func do(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(SessionHeader, token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("response not JSON: %v: %s", err, rec.Body.String())
	}
	return out
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t)
	rec := do(t, router, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestSessionIsIssuedAndSticky(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/cart", "", nil)
	token := rec.Header().Get(SessionHeader)
	if token == "" {
		t.Fatalf("expected a session token to be issued")
	}

	rec = do(t, router, http.MethodPost, "/cart/items", token, gin.H{"sku": "veste-homme", "size": "M", "qty": 1})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add item: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, router, http.MethodGet, "/cart", token, nil)
	body := decode(t, rec)
	if items := body["items"].([]interface{}); len(items) != 1 {
		t.Fatalf("expected one line in the session cart, got %v", items)
	}

	// A fresh session sees an empty cart.
	rec = do(t, router, http.MethodGet, "/cart", "", nil)
	body = decode(t, rec)
	if items, ok := body["items"].([]interface{}); ok && len(items) != 0 {
		t.Fatalf("expected empty cart for new session, got %v", items)
	}
}

func TestRegisterKeepsAnonymousCart(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/cart", "", nil)
	token := rec.Header().Get(SessionHeader)

	rec = do(t, router, http.MethodPost, "/cart/items", token, gin.H{"sku": "veste-homme", "size": "M", "qty": 1})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add item: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, router, http.MethodPost, "/auth/register", token, gin.H{"email": "anna@example.com", "password": "secret1"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", rec.Code, rec.Body.String())
	}
	authToken := decode(t, rec)["token"].(string)
	if authToken != token {
		t.Fatalf("expected the anonymous session to be kept across registration")
	}

	rec = do(t, router, http.MethodGet, "/cart", authToken, nil)
	body := decode(t, rec)
	if items, _ := body["items"].([]interface{}); len(items) != 1 {
		t.Fatalf("anonymous cart lost after registration: items = %v", body["items"])
	}

	rec = do(t, router, http.MethodGet, "/auth/me", authToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("session must now be logged in: %d", rec.Code)
	}
}

func TestLoginKeepsAnonymousCart(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/auth/register", "", gin.H{"email": "anna@example.com", "password": "secret1"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: %d", rec.Code)
	}

	// A new browser session fills a cart before logging in.
	rec = do(t, router, http.MethodGet, "/cart", "", nil)
	anon := rec.Header().Get(SessionHeader)
	rec = do(t, router, http.MethodPost, "/cart/items", anon, gin.H{"sku": "robe-femme", "qty": 2})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add item: %d", rec.Code)
	}

	rec = do(t, router, http.MethodPost, "/auth/login", anon, gin.H{"email": "anna@example.com", "password": "secret1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: %d %s", rec.Code, rec.Body.String())
	}
	token := decode(t, rec)["token"].(string)
	if token != anon {
		t.Fatalf("expected the anonymous session to survive login")
	}

	rec = do(t, router, http.MethodGet, "/cart", token, nil)
	body := decode(t, rec)
	if items, _ := body["items"].([]interface{}); len(items) != 1 {
		t.Fatalf("anonymous cart lost after login: items = %v", body["items"])
	}
}

func TestCatalogueFiltering(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/catalogue?filter=femme", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("catalogue: %d", rec.Code)
	}
	body := decode(t, rec)
	view := body["view"].(map[string]interface{})
	if total := view["total"].(float64); total != 1 {
		t.Fatalf("expected one femme product, got %v", total)
	}
}

func TestGetProductNotFound(t *testing.T) {
	router := newTestRouter(t)
	rec := do(t, router, http.MethodGet, "/products/nope", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGetProductEchoesSelection(t *testing.T) {
	router := newTestRouter(t)
	rec := do(t, router, http.MethodGet, "/products/veste-homme?size=L", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("product: %d", rec.Code)
	}
	body := decode(t, rec)
	if body["selectedSize"] != "L" {
		t.Fatalf("expected selected size L, got %v", body["selectedSize"])
	}
	// No colorway in the fixture, so the gallery falls back to the
	// placeholder image.
	gallery, _ := body["gallery"].([]interface{})
	if len(gallery) != 1 {
		t.Fatalf("expected placeholder gallery, got %v", body["gallery"])
	}
	if body["wished"] != false {
		t.Fatalf("expected wished=false for a fresh session, got %v", body["wished"])
	}
}

func TestGetProductReflectsWishlist(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/wishlist", "", nil)
	token := rec.Header().Get(SessionHeader)

	rec = do(t, router, http.MethodPost, "/wishlist/toggle", token, gin.H{"sku": "robe-femme"})
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle: %d", rec.Code)
	}

	rec = do(t, router, http.MethodGet, "/products/robe-femme", token, nil)
	if body := decode(t, rec); body["wished"] != true {
		t.Fatalf("expected wished=true after toggle, got %v", body["wished"])
	}
}

func TestAddUnknownSKU(t *testing.T) {
	router := newTestRouter(t)
	rec := do(t, router, http.MethodPost, "/cart/items", "", gin.H{"sku": "ghost"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCheckoutSepaFlow(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/cart", "", nil)
	token := rec.Header().Get(SessionHeader)

	rec = do(t, router, http.MethodPost, "/cart/items", token, gin.H{"sku": "veste-homme", "qty": 2})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add item: %d", rec.Code)
	}

	// Ordering before verification must fail.
	address := gin.H{
		"name": "Anna Muster", "email": "anna@example.com", "address": "1 rue de Rivoli",
		"city": "Paris", "zip": "75001", "country": "FR",
	}
	rec = do(t, router, http.MethodPost, "/checkout/order", token, address)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 before verification, got %d", rec.Code)
	}

	verify := gin.H{
		"name": "Anna Muster", "email": "anna@example.com", "address": "1 rue de Rivoli",
		"city": "Paris", "zip": "75001", "country": "FR",
		"file_name": "transfer.pdf", "file_type": "application/pdf",
		"file_b64": base64.StdEncoding.EncodeToString([]byte("proof")),
	}
	rec = do(t, router, http.MethodPost, "/checkout/verify/sepa", token, verify)
	if rec.Code != http.StatusOK {
		t.Fatalf("verify sepa: %d %s", rec.Code, rec.Body.String())
	}
	state := decode(t, rec)["state"].(map[string]interface{})
	if state["sepa"] != checkout.StateVerified {
		t.Fatalf("expected verified sepa, got %v", state)
	}

	rec = do(t, router, http.MethodPost, "/checkout/order", token, address)
	if rec.Code != http.StatusCreated {
		t.Fatalf("place order: %d %s", rec.Code, rec.Body.String())
	}
	order := decode(t, rec)["order"].(map[string]interface{})
	orderID := order["id"].(string)

	rec = do(t, router, http.MethodGet, "/orders/"+orderID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get order: %d", rec.Code)
	}

	// The confirmation view reads the session's last order back.
	rec = do(t, router, http.MethodGet, "/orders/last", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("last order: %d %s", rec.Code, rec.Body.String())
	}
	last := decode(t, rec)["order"].(map[string]interface{})
	if last["id"] != orderID {
		t.Fatalf("last order id = %v, want %s", last["id"], orderID)
	}

	// A session that never ordered has no confirmation to show.
	rec = do(t, router, http.MethodGet, "/orders/last", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for a fresh session, got %d", rec.Code)
	}

	rec = do(t, router, http.MethodGet, "/cart", token, nil)
	body := decode(t, rec)
	if items, ok := body["items"].([]interface{}); ok && len(items) != 0 {
		t.Fatalf("expected cart cleared after order, got %v", items)
	}
}

func TestAuthFlow(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/auth/register", "", gin.H{"email": "anna@example.com", "password": "secret1"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", rec.Code, rec.Body.String())
	}
	token := decode(t, rec)["token"].(string)

	rec = do(t, router, http.MethodGet, "/auth/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: %d", rec.Code)
	}
	user := decode(t, rec)["user"].(map[string]interface{})
	if user["email"] != "anna@example.com" {
		t.Fatalf("unexpected user %v", user)
	}
	if _, leaked := user["passwordHash"]; leaked {
		t.Fatalf("password hash must not be exposed")
	}

	rec = do(t, router, http.MethodPost, "/auth/login", "", gin.H{"email": "anna@example.com", "password": "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	rec = do(t, router, http.MethodPost, "/auth/logout", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: %d", rec.Code)
	}
	rec = do(t, router, http.MethodGet, "/auth/me", token, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", rec.Code)
	}
}

func TestWishlistToggle(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/wishlist", "", nil)
	token := rec.Header().Get(SessionHeader)

	rec = do(t, router, http.MethodPost, "/wishlist/toggle", token, gin.H{"sku": "robe-femme"})
	body := decode(t, rec)
	if body["added"] != true {
		t.Fatalf("expected added=true, got %v", body)
	}

	rec = do(t, router, http.MethodPost, "/wishlist/toggle", token, gin.H{"sku": "robe-femme"})
	body = decode(t, rec)
	if body["added"] != false || len(body["items"].([]interface{})) != 0 {
		t.Fatalf("expected removal, got %v", body)
	}
}
