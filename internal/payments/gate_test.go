package payments

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pegasusedge/internal/access"
)

func newTestGate(t *testing.T, p access.Profile) (*Gate, *access.Gatekeeper) {
	t.Helper()
	store, err := access.NewStore(filepath.Join(t.TempDir(), "profile.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Save(p))

	gk := access.NewGatekeeper(store)
	plans, err := LoadPlans()
	require.NoError(t, err)

	gate := NewGate(gk, plans)
	gate.delay = 0
	return gate, gk
}

func parkAction(t *testing.T, gk *access.Gatekeeper, runs *int) {
	t.Helper()
	decision, err := gk.Evaluate(true, func() error {
		*runs++
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, access.DecisionPaymentRequired, decision)
}

func TestLoadPlans(t *testing.T) {
	plans, err := LoadPlans()
	require.NoError(t, err)
	require.Len(t, plans, 3)

	monthly, err := FindPlan(plans, PlanMonthly)
	require.NoError(t, err)
	assert.Equal(t, 20, monthly.Price)
	assert.Equal(t, access.TierMonthly, monthly.Tier)
	assert.True(t, monthly.Highlight)
	assert.Equal(t, "$20/month", monthly.PriceLabel())

	lifetime, err := FindPlan(plans, PlanLifetime)
	require.NoError(t, err)
	assert.Equal(t, 999, lifetime.Price)
	assert.Equal(t, access.TierLifetime, lifetime.Tier)
	assert.Equal(t, "$999 one-time", lifetime.PriceLabel())

	ppu, err := FindPlan(plans, PlanPayPerUse)
	require.NoError(t, err)
	assert.Equal(t, 1, ppu.Price)
	assert.Equal(t, access.TierNone, ppu.Tier)

	_, err = FindPlan(plans, "enterprise")
	assert.Error(t, err)
}

func TestConfirmRunsParkedActionOnce(t *testing.T) {
	gate, gk := newTestGate(t, access.DefaultProfile().ConsumeTrial())

	runs := 0
	parkAction(t, gk, &runs)

	require.NoError(t, gate.Open(PlanPayPerUse))
	assert.True(t, gate.IsOpen())

	require.NoError(t, gate.Confirm(context.Background()))
	assert.Equal(t, 1, runs)
	assert.False(t, gate.IsOpen())

	// Second confirm: gate closed, nothing parked.
	assert.Error(t, gate.Confirm(context.Background()))
	assert.Equal(t, 1, runs)
}

func TestConfirmSubscriptionPlanUpgradesTier(t *testing.T) {
	gate, gk := newTestGate(t, access.DefaultProfile().ConsumeTrial())

	runs := 0
	parkAction(t, gk, &runs)

	require.NoError(t, gate.Open(PlanMonthly))
	require.NoError(t, gate.Confirm(context.Background()))

	assert.Equal(t, 1, runs)
	assert.True(t, gk.Profile().Subscribed())

	// Next finalize runs without the paywall.
	decision, err := gk.Evaluate(true, func() error { runs++; return nil })
	assert.NoError(t, err)
	assert.Equal(t, access.DecisionRan, decision)
	assert.Equal(t, 2, runs)
}

func TestPayPerUseGrantsNothingDurable(t *testing.T) {
	gate, gk := newTestGate(t, access.DefaultProfile().ConsumeTrial())

	runs := 0
	parkAction(t, gk, &runs)
	require.NoError(t, gate.Open(PlanPayPerUse))
	require.NoError(t, gate.Confirm(context.Background()))
	assert.Equal(t, 1, runs)
	assert.False(t, gk.Profile().Subscribed())

	// The next finalize hits the paywall again.
	decision, err := gk.Evaluate(true, func() error { runs++; return nil })
	assert.NoError(t, err)
	assert.Equal(t, access.DecisionPaymentRequired, decision)
	assert.Equal(t, 1, runs)
}

func TestCancelDiscardsParkedAction(t *testing.T) {
	gate, gk := newTestGate(t, access.DefaultProfile().ConsumeTrial())

	runs := 0
	parkAction(t, gk, &runs)
	require.NoError(t, gate.Open(PlanMonthly))

	gate.Cancel()
	assert.False(t, gate.IsOpen())
	assert.False(t, gk.HasPending())
	assert.Equal(t, 0, runs)
	assert.False(t, gk.Profile().Subscribed(), "cancel must not change tier")
}

func TestOpenUnknownPlan(t *testing.T) {
	gate, _ := newTestGate(t, access.DefaultProfile())
	assert.Error(t, gate.Open("enterprise"))
	assert.False(t, gate.IsOpen())
}

func TestPurchaseFromPlansPage(t *testing.T) {
	gate, gk := newTestGate(t, access.DefaultProfile())

	require.NoError(t, gate.Purchase(context.Background(), PlanLifetime))
	assert.Equal(t, access.TierLifetime, gk.Profile().Tier)

	// Pay-per-use purchase changes nothing durable.
	gate2, gk2 := newTestGate(t, access.DefaultProfile())
	require.NoError(t, gate2.Purchase(context.Background(), PlanPayPerUse))
	assert.Equal(t, access.TierTrialAvailable, gk2.Profile().Tier)
}

func TestConfirmRespectsContext(t *testing.T) {
	gate, gk := newTestGate(t, access.DefaultProfile().ConsumeTrial())
	gate.delay = settleDelay

	runs := 0
	parkAction(t, gk, &runs)
	require.NoError(t, gate.Open(PlanMonthly))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := gate.Confirm(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, runs)
}
