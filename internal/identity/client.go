// Package identity talks to the managed identity provider and keeps the
// resulting tokens cached on disk. The rest of the program only sees
// Session, which hands out a valid access token on demand.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TokenSet is one signed-in credential bundle.
type TokenSet struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
}

// Client calls the identity provider's REST surface.
type Client struct {
	client   *http.Client
	baseURL  string
	clientID string
}

// NewClient creates an identity client for the given provider URL and
// application client ID.
func NewClient(baseURL, clientID string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		client:   &http.Client{Timeout: timeout},
		baseURL:  strings.TrimRight(baseURL, "/"),
		clientID: clientID,
	}
}

type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"` // seconds
}

func (r tokenResponse) toTokenSet(now time.Time) *TokenSet {
	ts := &TokenSet{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
	}
	if r.ExpiresIn > 0 {
		ts.ExpiresAt = now.Add(time.Duration(r.ExpiresIn) * time.Second)
	}
	return ts
}

// SignUp registers a new account. The provider mails a confirmation code.
func (c *Client) SignUp(ctx context.Context, email, password string) error {
	payload := map[string]string{"clientId": c.clientID, "email": email, "password": password}
	return c.post(ctx, "/auth/signup", payload, "", nil)
}

// ConfirmSignUp submits the emailed confirmation code.
func (c *Client) ConfirmSignUp(ctx context.Context, email, code string) error {
	payload := map[string]string{"clientId": c.clientID, "email": email, "code": code}
	return c.post(ctx, "/auth/confirm", payload, "", nil)
}

// SignIn exchanges credentials for a token set.
func (c *Client) SignIn(ctx context.Context, email, password string) (*TokenSet, error) {
	payload := map[string]string{"clientId": c.clientID, "email": email, "password": password}
	var resp tokenResponse
	if err := c.post(ctx, "/auth/signin", payload, "", &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("identity provider returned no access token")
	}
	return resp.toTokenSet(time.Now()), nil
}

// Refresh exchanges a refresh token for a fresh access token. Providers
// that do not rotate refresh tokens return an empty RefreshToken; callers
// keep the old one in that case.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenSet, error) {
	payload := map[string]string{"clientId": c.clientID, "refreshToken": refreshToken}
	var resp tokenResponse
	if err := c.post(ctx, "/auth/refresh", payload, "", &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("identity provider returned no access token")
	}
	return resp.toTokenSet(time.Now()), nil
}

// SignOut invalidates the session server-side. Best effort; local state is
// cleared regardless.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.post(ctx, "/auth/signout", map[string]string{"clientId": c.clientID}, accessToken, nil)
}

func (c *Client) post(ctx context.Context, path string, payload interface{}, bearer string, out interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("could not reach the identity provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("identity provider: %s (HTTP %d)", providerMessage(resp.Body, resp.Status), resp.StatusCode)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("could not decode identity response: %w", err)
	}
	return nil
}

func providerMessage(r io.Reader, fallback string) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 64<<10)).Decode(&body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return fallback
}
