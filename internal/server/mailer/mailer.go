// Package mailer sends transactional email through a Resend-compatible
// HTTP API.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

// Mailer delivers a single HTML message.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

// Client posts messages to the mail API (POST <endpoint>, Bearer API key).
// 429 and 5xx responses are retried with capped fibonacci backoff.
type Client struct {
	endpoint string
	apiKey   string
	sender   string
	client   *http.Client
}

func NewClient(endpoint, apiKey, sender string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		sender:   sender,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

type message struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (c *Client) Send(ctx context.Context, to, subject, html string) error {
	if c.apiKey == "" || c.sender == "" {
		return fmt.Errorf("mailer: api key or sender address is not set")
	}

	payload, err := json.Marshal(message{
		From:    c.sender,
		To:      []string{to},
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return err
	}

	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(300*time.Millisecond))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)

		switch {
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return retry.RetryableError(fmt.Errorf("mailer: status %d", resp.StatusCode))
		case resp.StatusCode >= 400:
			return fmt.Errorf("mailer: status %d", resp.StatusCode)
		}
		return nil
	})
}
