// Package access implements the subscription/trial policy that gates
// Creator's Edge Studio. Non-final wizard steps are always free; billing
// applies only to the finalize step. Profiles are immutable values backed
// by a local SQLite store.
package access

import "fmt"

// Tier is the user's subscription tier.
type Tier string

const (
	// TierNone means no tier recorded yet. Treated as trial-available.
	TierNone Tier = ""

	// TierTrialAvailable: free trial not yet used.
	TierTrialAvailable Tier = "trial-available"

	// TierTrialConsumed: free trial used, no subscription.
	TierTrialConsumed Tier = "trial-consumed"

	// TierMonthly: active monthly subscription.
	TierMonthly Tier = "monthly"

	// TierLifetime: lifetime license.
	TierLifetime Tier = "lifetime"
)

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	switch t {
	case TierNone, TierTrialAvailable, TierTrialConsumed, TierMonthly, TierLifetime:
		return true
	}
	return false
}

// Subscribed reports whether the tier grants unrestricted access.
func (t Tier) Subscribed() bool {
	return t == TierMonthly || t == TierLifetime
}

// Profile is the persisted billing state of the user. Immutable: every
// mutation returns a new value, so callers never observe partial updates.
type Profile struct {
	Tier          Tier `json:"tier"`
	TrialConsumed bool `json:"trial_consumed"`
}

// DefaultProfile is the state of a fresh install: one trial available.
func DefaultProfile() Profile {
	return Profile{Tier: TierTrialAvailable, TrialConsumed: false}
}

// Validate checks the profile invariants.
func (p Profile) Validate() error {
	if !p.Tier.Valid() {
		return fmt.Errorf("unknown tier %q", p.Tier)
	}
	if p.TrialConsumed && p.Tier == TierTrialAvailable {
		return fmt.Errorf("trial marked consumed but tier is %s", TierTrialAvailable)
	}
	return nil
}

// Subscribed reports whether the user holds an active subscription.
func (p Profile) Subscribed() bool {
	return p.Tier.Subscribed()
}

// TrialAvailable reports whether the free trial can still be spent.
func (p Profile) TrialAvailable() bool {
	if p.Subscribed() || p.TrialConsumed {
		return false
	}
	return p.Tier == TierTrialAvailable || p.Tier == TierNone
}

// ConsumeTrial returns the profile after spending the free trial.
func (p Profile) ConsumeTrial() Profile {
	return Profile{Tier: TierTrialConsumed, TrialConsumed: true}
}

// WithTier returns the profile moved to the given tier. Trial consumption
// history is kept so cancelling a subscription cannot mint a second trial.
func (p Profile) WithTier(tier Tier) Profile {
	return Profile{Tier: tier, TrialConsumed: p.TrialConsumed}
}

// ReinstateTrial returns the profile with the trial available again.
// Only meaningful for non-subscribed users who never consumed it; for
// anyone else the profile is returned unchanged.
func (p Profile) ReinstateTrial() Profile {
	if p.Subscribed() || p.TrialConsumed {
		return p
	}
	return Profile{Tier: TierTrialAvailable, TrialConsumed: false}
}
