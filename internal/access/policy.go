package access

import (
	"fmt"
	"sync"

	"pegasusedge/internal/logging"
)

// Action is a gated unit of work, typically one generation call.
type Action func() error

// Decision is the outcome of a policy evaluation.
type Decision int

const (
	// DecisionRan: the action was executed (successfully or not).
	DecisionRan Decision = iota

	// DecisionPaymentRequired: the action was stored as pending and the
	// caller must present the payment flow.
	DecisionPaymentRequired
)

// Gatekeeper applies the billing policy to gated actions and owns the
// in-memory profile plus the single pending-action slot.
//
// Policy: billing only gates the finalize step. Subscribed users run
// everything. A trial user runs the finalize step once; the trial is
// consumed only after the action succeeds. With the trial spent, the
// finalize action parks in the pending slot until Confirm or Cancel.
type Gatekeeper struct {
	store *Store

	mu      sync.Mutex
	profile Profile
	pending Action
}

// NewGatekeeper loads the profile and returns a ready gatekeeper.
func NewGatekeeper(store *Store) *Gatekeeper {
	return &Gatekeeper{
		store:   store,
		profile: store.Load(),
	}
}

// Profile returns a snapshot of the current profile.
func (g *Gatekeeper) Profile() Profile {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.profile
}

// HasPending reports whether a gated action awaits payment confirmation.
func (g *Gatekeeper) HasPending() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pending != nil
}

// Evaluate applies the policy to the action. finalize marks the billable
// final wizard step; all other actions run free regardless of tier.
func (g *Gatekeeper) Evaluate(finalize bool, action Action) (Decision, error) {
	g.mu.Lock()
	profile := g.profile

	if !finalize || profile.Subscribed() {
		g.mu.Unlock()
		logging.AccessDebug("Evaluate: run (finalize=%t tier=%s)", finalize, profile.Tier)
		return DecisionRan, action()
	}

	if profile.TrialAvailable() {
		g.mu.Unlock()
		logging.Access("Evaluate: finalize on free trial")
		if err := action(); err != nil {
			// Trial is kept on failure so the user can retry.
			return DecisionRan, err
		}
		g.mu.Lock()
		g.profile = g.profile.ConsumeTrial()
		profile = g.profile
		g.mu.Unlock()
		if err := g.store.Save(profile); err != nil {
			logging.Get(logging.CategoryAccess).Error("Failed to persist trial consumption: %v", err)
		}
		logging.Access("Free trial consumed")
		return DecisionRan, nil
	}

	// Trial spent and not subscribed: park the action for the paywall.
	g.pending = action
	g.mu.Unlock()
	logging.Access("Evaluate: payment required, action parked")
	return DecisionPaymentRequired, nil
}

// ConfirmPending runs the parked action. The slot is cleared before the
// action runs, so the action executes at most once even if it fails.
func (g *Gatekeeper) ConfirmPending() error {
	g.mu.Lock()
	action := g.pending
	g.pending = nil
	g.mu.Unlock()

	if action == nil {
		return fmt.Errorf("no pending action")
	}
	logging.Access("Pending action confirmed, executing")
	return action()
}

// CancelPending discards the parked action without running it.
func (g *Gatekeeper) CancelPending() {
	g.mu.Lock()
	had := g.pending != nil
	g.pending = nil
	g.mu.Unlock()
	if had {
		logging.Access("Pending action cancelled")
	}
}

// SetTier moves the profile to the given tier and persists it. Used by
// the simulated subscription purchase.
func (g *Gatekeeper) SetTier(tier Tier) error {
	g.mu.Lock()
	g.profile = g.profile.WithTier(tier)
	profile := g.profile
	g.mu.Unlock()
	return g.store.Save(profile)
}

// ReinstateTrial restores trial availability for non-subscribed users
// who never consumed it. Called when the wizard resets for a new pack.
func (g *Gatekeeper) ReinstateTrial() error {
	g.mu.Lock()
	before := g.profile
	g.profile = g.profile.ReinstateTrial()
	after := g.profile
	g.mu.Unlock()

	if before == after {
		return nil
	}
	logging.Access("Trial reinstated for new pack")
	return g.store.Save(after)
}
