package session

import (
	"testing"
	"time"

	"storefront-checkout/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleFlipsMembership(t *testing.T) {
	sess := newCheckout("s1")

	sess.Toggle("u1")
	assert.Contains(t, sess.Selected(), "u1")

	sess.Toggle("u1")
	assert.NotContains(t, sess.Selected(), "u1")
}

func TestSelectAllReplacesSelection(t *testing.T) {
	sess := newCheckout("s1")
	sess.Toggle("old")

	sess.SelectAll([]string{"u1", "u2"})

	selected := sess.Selected()
	assert.Len(t, selected, 2)
	assert.NotContains(t, selected, "old")
}

func TestClearSelection(t *testing.T) {
	sess := newCheckout("s1")
	sess.SelectAll([]string{"u1", "u2"})

	sess.ClearSelection()
	assert.Empty(t, sess.Selected())
}

func TestSubmissionPhaseMachine(t *testing.T) {
	sess := newCheckout("s1")

	phase, _ := sess.Phase()
	assert.Equal(t, models.PhaseIdle, phase)

	require.NoError(t, sess.BeginSubmission())
	assert.ErrorIs(t, sess.BeginSubmission(), models.ErrSubmissionInFlight)

	sess.MarkSubmitting()
	assert.ErrorIs(t, sess.BeginSubmission(), models.ErrSubmissionInFlight)

	sess.FinishFailed("stock changed")
	phase, reason := sess.Phase()
	assert.Equal(t, models.PhaseFailed, phase)
	assert.Equal(t, "stock changed", reason)

	// A failed submission may be attempted again.
	require.NoError(t, sess.BeginSubmission())
	_, reason = sess.Phase()
	assert.Empty(t, reason, "a new attempt clears the old failure reason")
}

func TestSubmissionPhaseTerminality(t *testing.T) {
	assert.True(t, models.PhaseSucceeded.IsTerminal())
	assert.True(t, models.PhaseFailed.IsTerminal())
	assert.False(t, models.PhaseIdle.IsTerminal())
	assert.False(t, models.PhaseValidating.IsTerminal())
	assert.False(t, models.PhaseSubmitting.IsTerminal())

	// A terminal phase admits a fresh submission.
	sess := newCheckout("s1")
	require.NoError(t, sess.BeginSubmission())
	sess.MarkSubmitting()
	sess.FinishSucceeded()
	require.NoError(t, sess.BeginSubmission())
}

func TestFinishSucceededClearsConsumedState(t *testing.T) {
	sess := newCheckout("s1")
	sess.SelectAll([]string{"u1"})
	sess.ApplyPromo("WELCOME", 500)
	sess.SetResolved([]models.CheckoutItem{{ItemUUID: "u1"}})
	form := models.BillingForm{Name: "Asha Rai"}
	sess.SaveForm(form)

	require.NoError(t, sess.BeginSubmission())
	sess.MarkSubmitting()
	sess.FinishSucceeded()

	phase, _ := sess.Phase()
	assert.Equal(t, models.PhaseSucceeded, phase)
	assert.Empty(t, sess.Selected())
	assert.Empty(t, sess.Resolved())
	code, discount := sess.Promo()
	assert.Empty(t, code)
	assert.Zero(t, discount)

	// The form survives for the next order.
	assert.Equal(t, form, sess.Form())
}

func TestFinishFailedPreservesFormAndItems(t *testing.T) {
	sess := newCheckout("s1")
	sess.SetResolved([]models.CheckoutItem{{ItemUUID: "u1"}})
	form := models.BillingForm{Name: "Asha Rai", Mobile: "9841234567"}
	sess.SaveForm(form)

	require.NoError(t, sess.BeginSubmission())
	sess.MarkSubmitting()
	sess.FinishFailed("payment declined")

	assert.Equal(t, form, sess.Form())
	assert.NotEmpty(t, sess.Resolved())
}

func TestRegistryGetOrCreate(t *testing.T) {
	reg := NewRegistry(time.Hour)

	created := reg.GetOrCreate("")
	assert.NotEmpty(t, created.ID)

	same := reg.GetOrCreate(created.ID)
	assert.Same(t, created, same)

	other := reg.GetOrCreate("unknown-id")
	assert.NotSame(t, created, other)
	assert.Equal(t, "unknown-id", other.ID)
}

func TestRegistryGetUnknownReturnsNil(t *testing.T) {
	reg := NewRegistry(time.Hour)
	assert.Nil(t, reg.Get("nope"))
}

func TestRegistrySweepExpired(t *testing.T) {
	reg := NewRegistry(time.Minute)
	fresh := reg.GetOrCreate("")
	stale := reg.GetOrCreate("")
	require.Equal(t, 2, reg.Len())

	stale.mu.Lock()
	stale.lastSeen = time.Now().Add(-2 * time.Minute)
	stale.mu.Unlock()

	removed := reg.SweepExpired(time.Now())
	assert.Equal(t, []string{stale.ID}, removed)
	assert.Equal(t, 1, reg.Len())
	assert.NotNil(t, reg.Get(fresh.ID))
	assert.Nil(t, reg.Get(stale.ID))
}
