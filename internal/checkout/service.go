// Package checkout prices carts, runs the per-session payment verification
// flow and turns verified carts into orders.
package checkout

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"gfstore/internal/cart"
	"gfstore/internal/domain"
	"gfstore/internal/webhook"
)

const (
	ordersKey       = "gf:orders"
	lastOrderPrefix = "gf:last-order:"

	// MaxSplit bounds the installment count.
	MaxSplit = 4
)

// Verification states of a payment method within a session.
const (
	StateUnverified = "unverified"
	StateVerifying  = "verifying"
	StateVerified   = "verified"
)

// Wallet is a deposit address for one crypto currency.
type Wallet struct {
	Currency string  `json:"ccy"`
	Address  string  `json:"address"`
	Rate     float64 `json:"rate"` // units per EUR
}

// Wallets lists the accepted crypto currencies with their deposit
// addresses and indicative EUR conversion rates.
var Wallets = []Wallet{
	{Currency: "BTC", Address: "bc1qgf0recl7m3store8x2c4tviewq9dk5hu7a2n4ym", Rate: 0.000016},
	{Currency: "ETH", Address: "0x8f3Cf7ad23Cd3CaDbD9735AFf958023239c6A063", Rate: 0.00040},
	{Currency: "USDT", Address: "TXk4gfstore9eJcVqYwBu5NnQz2hH7mKpLs", Rate: 1.08},
}

// WalletFor looks a wallet up by currency code (case-insensitive).
func WalletFor(ccy string) (Wallet, bool) {
	ccy = strings.ToUpper(strings.TrimSpace(ccy))
	for _, w := range Wallets {
		if w.Currency == ccy {
			return w, true
		}
	}
	return Wallet{}, false
}

var (
	ErrCartEmpty       = errors.New("cart is empty")
	ErrNotVerified     = errors.New("payment not verified")
	ErrCardViaOrder    = errors.New("card payment finalizes through its own action")
	ErrUnknownMethod   = errors.New("unsupported payment method")
	ErrUnknownCurrency = errors.New("unsupported crypto currency")
)

type kv interface {
	Get(key string, v interface{}) bool
	Set(key string, v interface{})
	Remove(key string)
}

type deliverer interface {
	Send(ctx context.Context, payload map[string]interface{}) webhook.Result
}

type userSaver interface {
	Save(u domain.User)
}

// sessionState tracks one session's payment progress. Verifying a method
// invalidates the other one, mirroring the exclusive tab selection.
type sessionState struct {
	Method       domain.PaymentMethod
	Split        int
	SepaState    string
	CryptoState  string
	SepaRef      string
	CryptoTxID   string
	CryptoWallet string
}

// Snapshot is the externally visible checkout state of a session.
type Snapshot struct {
	Method      domain.PaymentMethod `json:"method"`
	Split       int                  `json:"split"`
	SepaState   string               `json:"sepa"`
	CryptoState string               `json:"crypto"`
	SepaRef     string               `json:"reference,omitempty"`
}

// Service runs checkout for all sessions. Verification state lives in
// memory only and resets on restart; orders are persisted.
type Service struct {
	kv      kv
	hooks   deliverer
	users   userSaver
	logger  *log.Logger
	now     func() time.Time
	mu      sync.Mutex
	session map[string]*sessionState
}

func New(kv kv, hooks deliverer, users userSaver, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		kv:      kv,
		hooks:   hooks,
		users:   users,
		logger:  logger,
		now:     time.Now,
		session: make(map[string]*sessionState),
	}
}

func (s *Service) state(session string) *sessionState {
	st, ok := s.session[session]
	if !ok {
		st = &sessionState{
			Method:      domain.PaymentSepa,
			Split:       1,
			SepaState:   StateUnverified,
			CryptoState: StateUnverified,
		}
		s.session[session] = st
	}
	return st
}

// State reports the session's checkout snapshot.
func (s *Service) State(session string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(s.state(session))
}

func (s *Service) snapshotLocked(st *sessionState) Snapshot {
	return Snapshot{
		Method:      st.Method,
		Split:       st.Split,
		SepaState:   st.SepaState,
		CryptoState: st.CryptoState,
		SepaRef:     st.SepaRef,
	}
}

// SelectMethod switches the session's payment method. Switching resets the
// verification of the method being left.
func (s *Service) SelectMethod(session string, method domain.PaymentMethod) (Snapshot, error) {
	switch method {
	case domain.PaymentSepa, domain.PaymentCrypto, domain.PaymentCard:
	default:
		return Snapshot{}, ErrUnknownMethod
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(session)
	if st.Method != method {
		switch st.Method {
		case domain.PaymentSepa:
			st.SepaState = StateUnverified
			st.SepaRef = ""
		case domain.PaymentCrypto:
			st.CryptoState = StateUnverified
			st.CryptoTxID = ""
		}
		st.Method = method
	}
	return s.snapshotLocked(st), nil
}

// SetSplit sets the installment count, between 1 and MaxSplit.
func (s *Service) SetSplit(session string, parts int) (Snapshot, error) {
	if parts < 1 || parts > MaxSplit {
		return Snapshot{}, fmt.Errorf("split must be between 1 and %d", MaxSplit)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(session)
	st.Split = parts
	return s.snapshotLocked(st), nil
}

// Quote is the pricing view served before placing an order.
type Quote struct {
	Items    []domain.CartLine  `json:"items"`
	Totals   domain.OrderTotals `json:"totals"`
	Split    int                `json:"split"`
	Schedule []Installment      `json:"schedule"`
	DueNow   int64              `json:"dueNowCents"`
	Coupon   bool               `json:"couponApplied"`
}

// Quote prices the cart for the session's current method and split.
func (s *Service) Quote(session string, ledger *cart.Ledger, user *domain.User, coupon string) Quote {
	s.mu.Lock()
	st := s.state(session)
	method, split := st.Method, st.Split
	s.mu.Unlock()

	applied := couponApplies(user, coupon)
	items := ledger.Items()
	totals := Totals(cart.Summarize(items), method, applied)
	return Quote{
		Items:    items,
		Totals:   totals,
		Split:    split,
		Schedule: Schedule(totals.TotalCents, split, s.now()),
		DueNow:   DueNow(totals.TotalCents, split),
		Coupon:   applied,
	}
}

// VerifySepa records a bank transfer announcement. The reference defaults
// to one derived from the customer name; the proof document is embedded in
// the outgoing payload as base64.
func (s *Service) VerifySepa(ctx context.Context, session string, ledger *cart.Ledger, cust domain.Customer, reference string, proof *Proof, user *domain.User, coupon string) (Snapshot, error) {
	if err := ValidateCustomer(cust); err != nil {
		return s.State(session), err
	}
	if err := ValidateProof(proof); err != nil {
		return s.State(session), err
	}
	items := ledger.Items()
	if len(items) == 0 {
		return s.State(session), ErrCartEmpty
	}
	if reference = strings.TrimSpace(reference); reference == "" {
		reference = ReferenceFromName(cust.Name)
	}

	s.mu.Lock()
	st := s.state(session)
	st.Method = domain.PaymentSepa
	st.SepaState = StateVerifying
	st.CryptoState = StateUnverified
	st.SepaRef = reference
	split := st.Split
	s.mu.Unlock()

	totals := Totals(cart.Summarize(items), domain.PaymentSepa, couponApplies(user, coupon))
	payload := s.basePayload("payment.sepa.verify", domain.PaymentSepa, items, totals, cust, split)
	payload["reference"] = reference
	payload["file_name"] = proof.Filename
	payload["file_type"] = proof.ContentType
	payload["file_b64"] = base64.StdEncoding.EncodeToString(proof.Data)
	s.hooks.Send(ctx, payload)

	s.mu.Lock()
	st.SepaState = StateVerified
	snap := s.snapshotLocked(st)
	s.mu.Unlock()
	return snap, nil
}

// VerifyCrypto records an announced crypto transaction for one of the
// accepted currencies.
func (s *Service) VerifyCrypto(ctx context.Context, session string, ledger *cart.Ledger, cust domain.Customer, currency, txid string, user *domain.User, coupon string) (Snapshot, error) {
	if err := ValidateCustomer(cust); err != nil {
		return s.State(session), err
	}
	wallet, ok := WalletFor(currency)
	if !ok {
		return s.State(session), ErrUnknownCurrency
	}
	if txid = strings.TrimSpace(txid); txid == "" {
		return s.State(session), errors.New("transaction id required")
	}
	items := ledger.Items()
	if len(items) == 0 {
		return s.State(session), ErrCartEmpty
	}

	s.mu.Lock()
	st := s.state(session)
	st.Method = domain.PaymentCrypto
	st.CryptoState = StateVerifying
	st.SepaState = StateUnverified
	st.SepaRef = ""
	st.CryptoTxID = txid
	st.CryptoWallet = wallet.Address
	split := st.Split
	s.mu.Unlock()

	totals := Totals(cart.Summarize(items), domain.PaymentCrypto, couponApplies(user, coupon))
	payload := s.basePayload("payment.crypto.verify", domain.PaymentCrypto, items, totals, cust, split)
	payload["txid"] = txid
	payload["ccy"] = wallet.Currency
	payload["wallet"] = wallet.Address
	s.hooks.Send(ctx, payload)

	s.mu.Lock()
	st.CryptoState = StateVerified
	snap := s.snapshotLocked(st)
	s.mu.Unlock()
	return snap, nil
}

// PayCard validates the card form, emits the payment payload and finalizes
// the order in one step. Card is the only method that does not go through
// PlaceOrder.
func (s *Service) PayCard(ctx context.Context, session string, ledger *cart.Ledger, cust domain.Customer, card CardInput, user *domain.User, coupon string) (domain.Order, error) {
	if err := ValidateCustomer(cust); err != nil {
		return domain.Order{}, err
	}
	if err := ValidateCard(card); err != nil {
		return domain.Order{}, err
	}
	items := ledger.Items()
	if len(items) == 0 {
		return domain.Order{}, ErrCartEmpty
	}

	s.mu.Lock()
	st := s.state(session)
	st.Method = domain.PaymentCard
	st.SepaState = StateUnverified
	st.CryptoState = StateUnverified
	split := st.Split
	s.mu.Unlock()

	applied := couponApplies(user, coupon)
	totals := Totals(cart.Summarize(items), domain.PaymentCard, applied)
	payload := s.basePayload("payment.card.submit", domain.PaymentCard, items, totals, cust, split)
	payload["holder"] = card.Holder
	payload["number"] = digitsOnly(card.Number)
	payload["expiry"] = strings.TrimSpace(card.Expiry)
	payload["code"] = digitsOnly(card.Code)
	s.hooks.Send(ctx, payload)

	return s.finalize(session, ledger, cust, domain.PaymentCard, totals, split, user, applied), nil
}

// PlaceOrder turns a verified cart into an order. It requires a non-empty
// cart, a complete address and a verified SEPA or crypto payment; card
// orders are rejected here and finalized by PayCard.
func (s *Service) PlaceOrder(ctx context.Context, session string, ledger *cart.Ledger, cust domain.Customer, user *domain.User, coupon string) (domain.Order, error) {
	if err := ValidateCustomer(cust); err != nil {
		return domain.Order{}, err
	}
	items := ledger.Items()
	if len(items) == 0 {
		return domain.Order{}, ErrCartEmpty
	}

	s.mu.Lock()
	st := s.state(session)
	method, split := st.Method, st.Split
	verified := (method == domain.PaymentSepa && st.SepaState == StateVerified) ||
		(method == domain.PaymentCrypto && st.CryptoState == StateVerified)
	s.mu.Unlock()

	if method == domain.PaymentCard {
		return domain.Order{}, ErrCardViaOrder
	}
	if !verified {
		return domain.Order{}, ErrNotVerified
	}

	applied := couponApplies(user, coupon)
	totals := Totals(cart.Summarize(items), method, applied)
	order := s.finalize(session, ledger, cust, method, totals, split, user, applied)

	payload := s.basePayload("order.placed", method, items, totals, cust, split)
	payload["orderId"] = order.ID
	s.hooks.Send(ctx, payload)
	return order, nil
}

// finalize writes the order before touching the cart, so a crash between
// the two leaves a duplicate cart rather than a lost order.
func (s *Service) finalize(session string, ledger *cart.Ledger, cust domain.Customer, method domain.PaymentMethod, totals domain.OrderTotals, split int, user *domain.User, couponApplied bool) domain.Order {
	order := domain.Order{
		ID:       s.newOrderID(),
		Items:    ledger.Items(),
		Totals:   totals,
		Customer: cust,
		Payment: domain.Payment{
			Method: method,
			Split:  split,
			Status: "pending",
		},
		CreatedAt: s.now().UTC(),
	}

	var orders []domain.Order
	s.kv.Get(ordersKey, &orders)
	orders = append([]domain.Order{order}, orders...)
	s.kv.Set(ordersKey, orders)
	s.kv.Set(lastOrderPrefix+session, order)

	if user != nil {
		user.Orders = append(user.Orders, order.ID)
		if couponApplied {
			user.CouponUsed = true
		}
		if s.users != nil {
			s.users.Save(*user)
		}
	}

	ledger.Clear()

	s.mu.Lock()
	st := s.state(session)
	st.SepaState = StateUnverified
	st.CryptoState = StateUnverified
	st.SepaRef = ""
	st.CryptoTxID = ""
	s.mu.Unlock()

	s.logger.Printf("order %s placed: %d item(s), %d cents via %s", order.ID, len(order.Items), totals.TotalCents, method)
	return order
}

// Orders returns all placed orders, newest first.
func (s *Service) Orders() []domain.Order {
	var orders []domain.Order
	s.kv.Get(ordersKey, &orders)
	return orders
}

// OrderByID looks an order up by its public id.
func (s *Service) OrderByID(id string) (domain.Order, error) {
	for _, o := range s.Orders() {
		if o.ID == id {
			return o, nil
		}
	}
	return domain.Order{}, domain.ErrNotFound
}

// LastOrder returns the most recent order placed by the session.
func (s *Service) LastOrder(session string) (domain.Order, error) {
	var order domain.Order
	if !s.kv.Get(lastOrderPrefix+session, &order) {
		return domain.Order{}, domain.ErrNotFound
	}
	return order, nil
}

func (s *Service) basePayload(event string, method domain.PaymentMethod, items []domain.CartLine, totals domain.OrderTotals, cust domain.Customer, split int) map[string]interface{} {
	lines := make([]map[string]interface{}, 0, len(items))
	for _, it := range items {
		lines = append(lines, map[string]interface{}{
			"name":  it.Name,
			"qty":   it.Quantity,
			"price": fmt.Sprintf("%.2f", float64(it.PriceCents)/100),
		})
	}
	return map[string]interface{}{
		"event":   event,
		"method":  string(method),
		"amount":  fmt.Sprintf("%.2f", float64(totals.TotalCents)/100),
		"due_now": fmt.Sprintf("%.2f", float64(DueNow(totals.TotalCents, split))/100),
		"split":   split,
		"name":    cust.Name,
		"email":   cust.Email,
		"phone":   cust.Phone,
		"address": cust.Address,
		"city":    cust.City,
		"zip":     cust.Zip,
		"country": cust.Country,
		"cart":    lines,
	}
}

// couponApplies reports whether the first-order coupon discounts this
// checkout. Guests always count as first orders.
func couponApplies(user *domain.User, code string) bool {
	if !strings.EqualFold(strings.TrimSpace(code), CouponCode) {
		return false
	}
	return user == nil || !user.CouponUsed
}

// newOrderID builds ids like GF-260831-4821.
func (s *Service) newOrderID() string {
	var b [2]byte
	rand.Read(b[:])
	n := binary.BigEndian.Uint16(b[:]) % 9000
	return fmt.Sprintf("GF-%s-%d", s.now().Format("060102"), 1000+n)
}
