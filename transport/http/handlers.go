package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/gebeta-eats/payflow"
	"github.com/gebeta-eats/payflow/adapters/navigator"
	"github.com/gebeta-eats/payflow/core"
	"github.com/gebeta-eats/payflow/service"
)

// PaymentHandlers contains HTTP handlers for the payment flow endpoints
type PaymentHandlers struct {
	flow       *payflow.Flow
	appBaseURL string
	log        zerolog.Logger
}

// NewPaymentHandlers creates new payment handlers
func NewPaymentHandlers(flow *payflow.Flow, appBaseURL string, log zerolog.Logger) *PaymentHandlers {
	return &PaymentHandlers{
		flow:       flow,
		appBaseURL: appBaseURL,
		log:        log.With().Str("component", "http").Logger(),
	}
}

// Initiate handles the payment initiation request and answers with a
// redirect to the hosted checkout page.
func (h *PaymentHandlers) Initiate(c *gin.Context) {
	var req struct {
		OrderID string `json:"orderId" binding:"required"`
		Amount  string `json:"amount" binding:"required"`
		Email   string `json:"email" binding:"required"`
		Name    string `json:"name"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request"})
		return
	}

	ctx := c.Request.Context()

	// Take custody of the caller's credential for the redirect round trip.
	if err := h.flow.Vault().Store(ctx, bearerFrom(c), service.StoreOptions{Persistent: true, Obfuscate: true}); err != nil {
		h.log.Warn().Err(err).Msg("failed to store credential")
	}

	nav := navigator.NewRecordingNavigator()
	initiation, err := h.flow.Initiator(nav).Initiate(ctx, service.InitiateParams{
		OrderID:    req.OrderID,
		Amount:     req.Amount,
		PayerEmail: req.Email,
		PayerName:  req.Name,
	})
	if err != nil {
		status, msg := initiateErrorResponse(err)
		c.JSON(status, gin.H{"success": false, "message": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"checkout_url": initiation.CheckoutURL,
			"tx_ref":       initiation.Session.TxRef,
		},
	})
}

// Callback handles the return navigation from the provider: it runs the
// verification state machine and redirects to the outcome surface.
func (h *PaymentHandlers) Callback(c *gin.Context) {
	params := service.CallbackParams{
		OrderID:     c.Param("orderId"),
		TxRef:       c.Query("tx_ref"),
		AuthToken:   c.Query("authToken"),
		RestoreAuth: c.Query("restoreAuth") == "true",
	}

	nav := navigator.NewRecordingNavigator()
	result := h.flow.Verifier(nav).Run(c.Request.Context(), params)

	c.Redirect(http.StatusFound, h.outcomeURL(params.OrderID, result))
}

// Verify runs the verification state machine and answers with JSON instead
// of a redirect, for callers that render the outcome themselves.
func (h *PaymentHandlers) Verify(c *gin.Context) {
	params := service.CallbackParams{
		OrderID:     c.Param("orderId"),
		TxRef:       c.Query("tx_ref"),
		AuthToken:   c.Query("authToken"),
		RestoreAuth: c.Query("restoreAuth") == "true",
	}

	nav := navigator.NewRecordingNavigator()
	result := h.flow.Verifier(nav).Run(c.Request.Context(), params)

	resp := gin.H{
		"success": result.Success,
		"status":  result.Status,
		"info":    service.StatusInfoFor(result.Status),
	}
	if result.Order != nil {
		resp["order"] = result.Order
	}
	if result.Warning != "" {
		resp["warning"] = result.Warning
	}
	if result.Err != nil && !result.Success {
		resp["error"] = result.Err.Error()
	}

	status := http.StatusOK
	if errors.Is(result.Err, core.ErrAuthenticationRequired) {
		status = http.StatusUnauthorized
	}
	c.JSON(status, resp)
}

// Status reports the current attempt's bookkeeping: active session, cached
// error and any parked verification.
func (h *PaymentHandlers) Status(c *gin.Context) {
	ctx := c.Request.Context()

	session, err := h.flow.Sessions().Current(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to read payment session"})
		return
	}

	resp := gin.H{
		"success": true,
		"session": session,
	}
	if msg := h.flow.Sessions().CachedError(ctx); msg != "" {
		resp["error"] = msg
	}
	if orderID := h.flow.Sessions().PendingVerification(ctx); orderID != "" {
		resp["pending_verification"] = orderID
	}

	c.JSON(http.StatusOK, resp)
}

// Teardown erases all payment-scoped storage. Idempotent.
func (h *PaymentHandlers) Teardown(c *gin.Context) {
	if err := h.flow.Cleaner().Cleanup(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Cleanup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// outcomeURL maps a verification result to the storefront surface the user
// lands on.
func (h *PaymentHandlers) outcomeURL(orderID string, result core.VerificationResult) string {
	switch {
	case result.Success:
		target := fmt.Sprintf("%s/payment/success?orderId=%s", h.appBaseURL, url.QueryEscape(orderID))
		if result.Warning != "" {
			target += "&warning=" + url.QueryEscape(result.Warning)
		}
		return target
	case errors.Is(result.Err, core.ErrAuthenticationRequired):
		redirect := url.QueryEscape("/payment/callback/" + orderID)
		return fmt.Sprintf("%s/auth/login?redirect=%s", h.appBaseURL, redirect)
	case result.Status == core.StatusFailed || result.Status == core.StatusCancelled:
		return fmt.Sprintf("%s/payment/failed?orderId=%s&error=payment_%s", h.appBaseURL, url.QueryEscape(orderID), result.Status)
	default:
		return fmt.Sprintf("%s/payment/failed?orderId=%s&error=payment_verification_failed", h.appBaseURL, url.QueryEscape(orderID))
	}
}

func initiateErrorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrInvalidAmount):
		return http.StatusBadRequest, "Please provide a valid payment amount greater than 0"
	case errors.Is(err, core.ErrAuthenticationRequired):
		return http.StatusUnauthorized, "Authentication required"
	case errors.Is(err, core.ErrInvalidProviderResponse):
		return http.StatusBadGateway, "Invalid response from payment service. Please try again."
	case errors.Is(err, core.ErrNetwork):
		return http.StatusBadGateway, "No response from payment service. Please try again."
	default:
		return http.StatusInternalServerError, "Payment initialization failed. Please try again."
	}
}
