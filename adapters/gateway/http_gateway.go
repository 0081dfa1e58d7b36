package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/gebeta-eats/payflow/core"
	"github.com/gebeta-eats/payflow/ports"
)

// HTTPGateway talks to the storefront backend's payment endpoints over REST.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewHTTPGateway creates a gateway against the given API base URL. A nil
// client gets a default with a 15 second timeout.
func NewHTTPGateway(baseURL string, client *http.Client, log zerolog.Logger) *HTTPGateway {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPGateway{
		baseURL: baseURL,
		client:  client,
		log:     log.With().Str("component", "payment_gateway").Logger(),
	}
}

type initiateEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		CheckoutURL string `json:"checkout_url"`
	} `json:"data"`
}

type verifyEnvelope struct {
	Success       bool                `json:"success"`
	Message       string              `json:"message"`
	PaymentStatus string              `json:"paymentStatus"`
	Order         *core.OrderSnapshot `json:"order"`
	RetryAfter    int                 `json:"retryAfter"`
}

// Initiate opens a hosted checkout session for the order.
func (g *HTTPGateway) Initiate(ctx context.Context, token string, req ports.InitiateRequest) (ports.InitiateResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return ports.InitiateResponse{}, fmt.Errorf("failed to encode initiate payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/payment", bytes.NewReader(body))
	if err != nil {
		return ports.InitiateResponse{}, fmt.Errorf("failed to build initiate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return ports.InitiateResponse{}, fmt.Errorf("%w: initiate call failed: %v", core.ErrNetwork, err)
	}
	defer resp.Body.Close()

	var env initiateEnvelope
	if err := decodeJSON(resp.Body, &env); err != nil {
		return ports.InitiateResponse{}, fmt.Errorf("%w: %v", core.ErrInvalidProviderResponse, err)
	}

	if !env.Success {
		g.log.Warn().Str("order_id", req.OrderID).Str("message", env.Message).Msg("payment initiation rejected")
		if env.Message != "" {
			return ports.InitiateResponse{}, fmt.Errorf("%w: %s", core.ErrInvalidProviderResponse, env.Message)
		}
		return ports.InitiateResponse{}, core.ErrInvalidProviderResponse
	}

	g.log.Info().Str("order_id", req.OrderID).Str("tx_ref", req.TxRef).Msg("checkout session opened")

	return ports.InitiateResponse{CheckoutURL: env.Data.CheckoutURL}, nil
}

// VerifyByOrder checks payment status by order id.
func (g *HTTPGateway) VerifyByOrder(ctx context.Context, token, orderID string) (ports.VerifyResponse, error) {
	return g.verify(ctx, token, g.baseURL+"/payment/verify/"+orderID)
}

// VerifyByRef checks payment status by transaction reference.
func (g *HTTPGateway) VerifyByRef(ctx context.Context, token, txRef string) (ports.VerifyResponse, error) {
	return g.verify(ctx, token, g.baseURL+"/payment/verify/tx/"+txRef)
}

func (g *HTTPGateway) verify(ctx context.Context, token, url string) (ports.VerifyResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ports.VerifyResponse{}, fmt.Errorf("failed to build verify request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return ports.VerifyResponse{}, fmt.Errorf("%w: verify call failed: %v", core.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return ports.VerifyResponse{}, fmt.Errorf("%w: verify returned status %d", core.ErrNetwork, resp.StatusCode)
	}

	var env verifyEnvelope
	if err := decodeJSON(resp.Body, &env); err != nil {
		return ports.VerifyResponse{}, fmt.Errorf("%w: %v", core.ErrInvalidProviderResponse, err)
	}

	out := ports.VerifyResponse{
		Success:    env.Success,
		Status:     core.ParseStatus(env.PaymentStatus),
		Order:      env.Order,
		RetryAfter: env.RetryAfter,
		Message:    env.Message,
	}

	// Some backend responses omit paymentStatus and report it on the
	// embedded order instead.
	if env.PaymentStatus == "" && env.Order != nil {
		out.Status = env.Order.PaymentStatus
	}

	return out, nil
}

func decodeJSON(r io.Reader, v any) error {
	body, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}
