package sms

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Sender delivers a text message. Implementations are best-effort; callers
// never let a send failure affect the primary request.
type Sender interface {
	Send(ctx context.Context, phone, message string) error
}

// Fast2SMSSender posts to the Fast2SMS bulk API with an API-key header.
type Fast2SMSSender struct {
	apiKey   string
	baseURL  string
	senderID string
	client   *http.Client
}

func NewFast2SMSSender(apiKey, baseURL, senderID string) *Fast2SMSSender {
	if baseURL == "" {
		baseURL = "https://www.fast2sms.com/dev/bulkV2"
	}
	return &Fast2SMSSender{
		apiKey:   apiKey,
		baseURL:  baseURL,
		senderID: senderID,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *Fast2SMSSender) Send(ctx context.Context, phone, message string) error {
	form := url.Values{}
	form.Set("route", "q")
	form.Set("numbers", phone)
	form.Set("message", message)
	if s.senderID != "" {
		form.Set("sender_id", s.senderID)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("authorization", s.apiKey)
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("sms api %d: %s", resp.StatusCode, string(respBody))
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

// NoopSender is used when SMS credentials are not configured.
type NoopSender struct{}

func (NoopSender) Send(ctx context.Context, phone, message string) error {
	log.Printf("[SMS] disabled, dropping message to %s", phone)
	return nil
}
