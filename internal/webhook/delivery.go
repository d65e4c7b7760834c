// Package webhook sends order payloads to the external endpoint with a
// best-effort, at-most-once chain of transport fallbacks. There is no retry
// queue and no persistence of failed sends; the caller gets a Result and
// decides what to surface.
package webhook

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const userAgent = "gfstore/1.0"

// Transport names, in fallback order.
const (
	TransportJSON   = "json"
	TransportForm   = "form"
	TransportBeacon = "beacon"
	TransportNoCors = "no-cors"
)

// Result reports how a delivery attempt ended. The beacon and no-cors
// transports give no delivery confirmation: Delivered only means the bytes
// left the process without a transport error.
type Result struct {
	Delivered bool     `json:"delivered"`
	Transport string   `json:"transport,omitempty"`
	Attempts  []string `json:"attempts"`
}

// Deliverer posts payloads to a single webhook URL.
type Deliverer struct {
	url    string
	secret string
	origin string
	budget time.Duration
	client *http.Client
	logger *log.Logger
}

func New(webhookURL, secret, origin string, budget time.Duration, logger *log.Logger) *Deliverer {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if budget <= 0 {
		budget = 10 * time.Second
	}
	return &Deliverer{
		url:    webhookURL,
		secret: secret,
		origin: origin,
		budget: budget,
		client: &http.Client{},
		logger: logger,
	}
}

// Send enriches the payload with request metadata and walks the transport
// chain under one shared timeout budget, stopping at the first transport
// that does not fail. It never returns an error: delivery is best-effort.
func (d *Deliverer) Send(ctx context.Context, payload map[string]interface{}) Result {
	if d.url == "" {
		d.logger.Printf("webhook: no URL configured, dropping payload")
		return Result{}
	}
	if payload == nil {
		payload = map[string]interface{}{}
	}
	if _, ok := payload["req_id"]; !ok {
		payload["req_id"] = requestID()
	}
	if _, ok := payload["ts_client"]; !ok {
		payload["ts_client"] = time.Now().UTC().Format(time.RFC3339)
	}
	payload["origin"] = d.origin
	payload["ua"] = userAgent

	body, err := json.Marshal(payload)
	if err != nil {
		d.logger.Printf("webhook: marshal payload: %v", err)
		return Result{}
	}

	ctx, cancel := context.WithTimeout(ctx, d.budget)
	defer cancel()

	transports := []struct {
		name string
		send func(context.Context, []byte) error
	}{
		{TransportJSON, d.sendJSON},
		{TransportForm, d.sendForm},
		{TransportBeacon, d.sendBeacon},
		{TransportNoCors, d.sendNoCors},
	}

	var result Result
	for _, tr := range transports {
		result.Attempts = append(result.Attempts, tr.name)
		if err := tr.send(ctx, body); err != nil {
			d.logger.Printf("webhook: %s transport: %v", tr.name, err)
			continue
		}
		result.Delivered = true
		result.Transport = tr.name
		break
	}
	return result
}

// sendJSON is the primary transport: a plain JSON POST that must answer 2xx.
func (d *Deliverer) sendJSON(ctx context.Context, body []byte) error {
	return d.post(ctx, "application/json", bytes.NewReader(body), true, true)
}

// sendForm wraps the JSON document in a single _json form field.
func (d *Deliverer) sendForm(ctx context.Context, body []byte) error {
	form := url.Values{}
	form.Set("_json", string(body))
	return d.post(ctx, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()), true, true)
}

// sendBeacon mimics navigator.sendBeacon: plain text, no custom headers,
// the response is ignored.
func (d *Deliverer) sendBeacon(ctx context.Context, body []byte) error {
	return d.post(ctx, "text/plain;charset=utf-8", bytes.NewReader(body), false, false)
}

// sendNoCors is the last resort: plain text, status ignored.
func (d *Deliverer) sendNoCors(ctx context.Context, body []byte) error {
	return d.post(ctx, "text/plain;charset=utf-8", bytes.NewReader(body), true, false)
}

func (d *Deliverer) post(ctx context.Context, contentType string, body io.Reader, withSecret, needSuccess bool) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", userAgent)
	if withSecret && d.secret != "" {
		req.Header.Set("X-Webhook-Secret", d.secret)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	if needSuccess && (resp.StatusCode < 200 || resp.StatusCode >= 300) {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

func requestID() string {
	var b [4]byte
	rand.Read(b[:])
	return fmt.Sprintf("gf_%d_%s", time.Now().UnixMilli(), hex.EncodeToString(b[:]))
}
