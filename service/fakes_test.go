package service_test

import (
	"context"
	"sync"

	"github.com/gebeta-eats/payflow/core"
	"github.com/gebeta-eats/payflow/ports"
)

type verifyStep struct {
	resp ports.VerifyResponse
	err  error
}

// fakeGateway scripts initiate/verify responses and records every call.
type fakeGateway struct {
	mu sync.Mutex

	initiateResp ports.InitiateResponse
	initiateErr  error
	lastInitiate ports.InitiateRequest
	initiates    int

	verifySteps    []verifyStep
	verifies       int
	verifiedRefs   []string
	verifiedOrders []string
}

func (g *fakeGateway) Initiate(ctx context.Context, token string, req ports.InitiateRequest) (ports.InitiateResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.initiates++
	g.lastInitiate = req
	return g.initiateResp, g.initiateErr
}

func (g *fakeGateway) VerifyByOrder(ctx context.Context, token, orderID string) (ports.VerifyResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.verifiedOrders = append(g.verifiedOrders, orderID)
	return g.next()
}

func (g *fakeGateway) VerifyByRef(ctx context.Context, token, txRef string) (ports.VerifyResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.verifiedRefs = append(g.verifiedRefs, txRef)
	return g.next()
}

func (g *fakeGateway) next() (ports.VerifyResponse, error) {
	step := verifyStep{resp: ports.VerifyResponse{Success: true, Status: core.StatusError}}
	if len(g.verifySteps) > 0 {
		step = g.verifySteps[0]
		if len(g.verifySteps) > 1 {
			g.verifySteps = g.verifySteps[1:]
		}
	}
	g.verifies++
	return step.resp, step.err
}

func (g *fakeGateway) verifyCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.verifies
}

// fakeAuthAPI accepts a configured set of tokens and optionally hands out a
// refreshed one.
type fakeAuthAPI struct {
	validTokens   map[string]bool
	refreshToken  string
	refreshErr    error
	validateCalls int
	refreshCalls  int
}

func (a *fakeAuthAPI) Validate(ctx context.Context, token string) (bool, error) {
	a.validateCalls++
	return a.validTokens[token], nil
}

func (a *fakeAuthAPI) Refresh(ctx context.Context) (string, error) {
	a.refreshCalls++
	return a.refreshToken, a.refreshErr
}

type publishedOutcome struct {
	orderID string
	txRef   string
	status  core.PaymentStatus
}

// fakeEvents records published outcomes.
type fakeEvents struct {
	outcomes []publishedOutcome
}

func (e *fakeEvents) PublishOutcome(ctx context.Context, orderID, txRef string, status core.PaymentStatus) error {
	e.outcomes = append(e.outcomes, publishedOutcome{orderID: orderID, txRef: txRef, status: status})
	return nil
}
