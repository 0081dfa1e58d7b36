package authapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/rs/zerolog"

	"github.com/gebeta-eats/payflow/core"
)

// HTTPAuthAPI validates and refreshes credentials against the backend's auth
// endpoints. The refresh call relies on an HTTP-only cookie, so the client
// carries a cookie jar.
type HTTPAuthAPI struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewHTTPAuthAPI creates an auth API client. A nil client gets a default
// with a cookie jar and a 5 second timeout.
func NewHTTPAuthAPI(baseURL string, client *http.Client, log zerolog.Logger) *HTTPAuthAPI {
	if client == nil {
		jar, _ := cookiejar.New(nil)
		client = &http.Client{Timeout: 5 * time.Second, Jar: jar}
	}
	return &HTTPAuthAPI{
		baseURL: baseURL,
		client:  client,
		log:     log.With().Str("component", "auth_api").Logger(),
	}
}

type validateEnvelope struct {
	Success bool `json:"success"`
}

type refreshEnvelope struct {
	Success     bool   `json:"success"`
	AccessToken string `json:"accessToken"`
}

// Validate reports whether the backend accepts the token.
func (a *HTTPAuthAPI) Validate(ctx context.Context, token string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/auth/validate", nil)
	if err != nil {
		return false, fmt.Errorf("failed to build validate request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: validate call failed: %v", core.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, nil
	}

	var env validateEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return false, nil
	}

	return env.Success, nil
}

// Refresh rotates the access token using the refresh cookie.
func (a *HTTPAuthAPI) Refresh(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/auth/refresh-token", nil)
	if err != nil {
		return "", fmt.Errorf("failed to build refresh request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: refresh call failed: %v", core.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		a.log.Debug().Int("status", resp.StatusCode).Msg("token refresh rejected")
		return "", nil
	}

	var env refreshEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return "", nil
	}

	if !env.Success || env.AccessToken == "" {
		return "", nil
	}

	return env.AccessToken, nil
}
