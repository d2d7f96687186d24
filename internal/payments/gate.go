package payments

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pegasusedge/internal/access"
	"pegasusedge/internal/logging"
)

// settleDelay simulates the round trip to a payment processor.
const settleDelay = 1200 * time.Millisecond

// Gate is the mocked payment flow in front of the billable studio action.
// Open records that the paywall was presented, Confirm settles the mock
// payment and releases the parked action exactly once, Cancel discards it.
type Gate struct {
	gatekeeper *access.Gatekeeper
	plans      []Plan

	mu       sync.Mutex
	open     bool
	selected PlanID
	delay    time.Duration
}

// NewGate creates a gate over the given gatekeeper and catalog.
func NewGate(gatekeeper *access.Gatekeeper, plans []Plan) *Gate {
	return &Gate{
		gatekeeper: gatekeeper,
		plans:      plans,
		delay:      settleDelay,
	}
}

// Plans returns the subscription catalog.
func (g *Gate) Plans() []Plan {
	return g.plans
}

// Open presents the paywall for the given plan.
func (g *Gate) Open(plan PlanID) error {
	if _, err := FindPlan(g.plans, plan); err != nil {
		return err
	}
	g.mu.Lock()
	g.open = true
	g.selected = plan
	g.mu.Unlock()
	logging.Payments("Paywall opened: plan=%s", plan)
	return nil
}

// IsOpen reports whether the paywall is being presented.
func (g *Gate) IsOpen() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.open
}

// Selected returns the plan chosen when the paywall was opened.
func (g *Gate) Selected() PlanID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.selected
}

// Confirm settles the mock payment, applies any tier change the plan
// grants and runs the parked action. The parked action runs at most once
// across any sequence of Confirm/Cancel calls.
func (g *Gate) Confirm(ctx context.Context) error {
	g.mu.Lock()
	if !g.open {
		g.mu.Unlock()
		return fmt.Errorf("payment gate is not open")
	}
	plan, err := FindPlan(g.plans, g.selected)
	g.open = false
	g.mu.Unlock()
	if err != nil {
		return err
	}

	// Simulated processor settle.
	select {
	case <-time.After(g.delay):
	case <-ctx.Done():
		return ctx.Err()
	}

	if plan.Tier != access.TierNone {
		if err := g.gatekeeper.SetTier(plan.Tier); err != nil {
			return fmt.Errorf("failed to apply plan tier: %w", err)
		}
	}
	logging.Payments("Payment confirmed: plan=%s tier=%s", plan.ID, plan.Tier)

	return g.gatekeeper.ConfirmPending()
}

// Cancel closes the paywall and discards the parked action.
func (g *Gate) Cancel() {
	g.mu.Lock()
	wasOpen := g.open
	g.open = false
	g.mu.Unlock()

	g.gatekeeper.CancelPending()
	if wasOpen {
		logging.Payments("Payment cancelled")
	}
}

// Purchase applies a plan directly from the subscription page, outside
// any parked action. Pay-per-use grants nothing durable.
func (g *Gate) Purchase(ctx context.Context, id PlanID) error {
	plan, err := FindPlan(g.plans, id)
	if err != nil {
		return err
	}

	select {
	case <-time.After(g.delay):
	case <-ctx.Done():
		return ctx.Err()
	}

	if plan.Tier != access.TierNone {
		if err := g.gatekeeper.SetTier(plan.Tier); err != nil {
			return fmt.Errorf("failed to apply plan tier: %w", err)
		}
	}
	logging.Payments("Plan purchased: plan=%s tier=%s", plan.ID, plan.Tier)
	return nil
}
