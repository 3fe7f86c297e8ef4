package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// RazorpayClient talks to the Razorpay REST API with basic-auth credentials.
type RazorpayClient struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	mode      string
	client    *http.Client
}

func NewRazorpayClient(baseURL, keyID, keySecret, mode string) *RazorpayClient {
	if baseURL == "" {
		baseURL = "https://api.razorpay.com/v1"
	}
	if mode == "" {
		mode = "test"
		if strings.HasPrefix(keyID, "rzp_live_") {
			mode = "live"
		}
	}
	return &RazorpayClient{
		BaseURL:   baseURL,
		KeyID:     keyID,
		KeySecret: keySecret,
		mode:      mode,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *RazorpayClient) Mode() string {
	return c.mode
}

type razorpayErrorEnvelope struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func (c *RazorpayClient) CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string, notes map[string]string) (*Order, error) {
	payload := map[string]interface{}{
		"amount":   amountPaise,
		"currency": currency,
		"receipt":  receipt,
	}
	if len(notes) > 0 {
		payload["notes"] = notes
	}
	log.Printf("[GATEWAY] POST /orders receipt=%s amount_paise=%d currency=%s", receipt, amountPaise, currency)
	var out Order
	if err := c.post(ctx, "/orders", payload, &out); err != nil {
		return nil, err
	}
	log.Printf("[GATEWAY] order created id=%s status=%s", out.ID, out.Status)
	return &out, nil
}

func (c *RazorpayClient) CreateRefund(ctx context.Context, paymentID string, amountPaise int64, notes map[string]string) (*Refund, error) {
	payload := map[string]interface{}{
		"amount": amountPaise,
	}
	if len(notes) > 0 {
		payload["notes"] = notes
	}
	log.Printf("[GATEWAY] POST /payments/%s/refund amount_paise=%d", paymentID, amountPaise)
	var out Refund
	if err := c.post(ctx, "/payments/"+paymentID+"/refund", payload, &out); err != nil {
		return nil, err
	}
	log.Printf("[GATEWAY] refund created id=%s payment_id=%s status=%s", out.ID, paymentID, out.Status)
	return &out, nil
}

// Ping probes credentials and connectivity with a cheap authenticated read.
func (c *RazorpayClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/orders?count=1", nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.KeyID, c.KeySecret)
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return c.decodeError(resp)
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *RazorpayClient) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.KeyID, c.KeySecret)
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return c.decodeError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *RazorpayClient) decodeError(resp *http.Response) error {
	respBody, _ := io.ReadAll(resp.Body)
	var env razorpayErrorEnvelope
	gerr := &Error{Code: "UNKNOWN", Description: "gateway request failed", HTTPStatus: resp.StatusCode}
	if err := json.Unmarshal(respBody, &env); err == nil && env.Error.Code != "" {
		gerr.Code = env.Error.Code
		gerr.Description = env.Error.Description
	}
	log.Printf("[GATEWAY] error status=%d code=%s desc=%s", resp.StatusCode, gerr.Code, gerr.Description)
	return gerr
}
