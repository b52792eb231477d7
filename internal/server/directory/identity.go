package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/dkravets/adminboard/internal/common"
	"github.com/sethvargo/go-retry"
)

// HTTPIdentityClient talks to the identity provider's admin API.
// Requests carry a Bearer API key; transient failures (429, 5xx) are
// retried with fibonacci backoff.
type HTTPIdentityClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewHTTPIdentityClient(endpoint, apiKey string) *HTTPIdentityClient {
	return &HTTPIdentityClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *HTTPIdentityClient) CreateUser(ctx context.Context, email string) (string, error) {
	var out struct {
		UID string `json:"uid"`
	}
	err := c.do(ctx, http.MethodPost, "/v1/users", map[string]any{"email": email}, &out)
	if err != nil {
		return "", err
	}
	return out.UID, nil
}

func (c *HTTPIdentityClient) LookupUID(ctx context.Context, email string) (string, error) {
	var out struct {
		UID string `json:"uid"`
	}
	err := c.do(ctx, http.MethodGet, "/v1/users/by-email/"+url.PathEscape(email), nil, &out)
	if err != nil {
		return "", err
	}
	return out.UID, nil
}

func (c *HTTPIdentityClient) UpdateEmail(ctx context.Context, uid, email string) error {
	return c.do(ctx, http.MethodPatch, "/v1/users/"+uid, map[string]any{"email": email}, nil)
}

func (c *HTTPIdentityClient) SetDisabled(ctx context.Context, uid string, disabled bool) error {
	return c.do(ctx, http.MethodPatch, "/v1/users/"+uid, map[string]any{"disabled": disabled}, nil)
}

func (c *HTTPIdentityClient) DeleteUser(ctx context.Context, uid string) error {
	return c.do(ctx, http.MethodDelete, "/v1/users/"+uid, nil, nil)
}

func (c *HTTPIdentityClient) PasswordResetLink(ctx context.Context, email string) (string, error) {
	var out struct {
		Link string `json:"link"`
	}
	err := c.do(ctx, http.MethodPost, "/v1/reset-links", map[string]any{"email": email}, &out)
	if err != nil {
		return "", err
	}
	return out.Link, nil
}

func (c *HTTPIdentityClient) do(ctx context.Context, method, path string, body any, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return err
		}
	}

	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(200*time.Millisecond))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, bytes.NewReader(payload))
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

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return common.ErrNotFound
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return retry.RetryableError(fmt.Errorf("identity provider: status %d", resp.StatusCode))
		case resp.StatusCode >= 400:
			return fmt.Errorf("identity provider: status %d", resp.StatusCode)
		}

		if out == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		return json.NewDecoder(resp.Body).Decode(out)
	})
}
