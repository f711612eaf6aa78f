package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"storefront-checkout/internal/cache"
	"storefront-checkout/internal/cartstore"
	"storefront-checkout/internal/models"
	"storefront-checkout/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	placed []*models.OrderPlacedEvent
	failed []*models.OrderSubmissionFailedEvent
}

func (p *recordingPublisher) PublishOrderPlaced(_ context.Context, e *models.OrderPlacedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.placed = append(p.placed, e)
	return nil
}

func (p *recordingPublisher) PublishOrderSubmissionFailed(_ context.Context, e *models.OrderSubmissionFailedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed = append(p.failed, e)
	return nil
}

func resolvedSession() *session.Checkout {
	sess := session.NewRegistry(time.Hour).GetOrCreate("")
	sess.SetResolved([]models.CheckoutItem{
		{ItemUUID: "u1", ItemSlug: "bottle", Price: 400, Quantity: 2, Subtotal: 800},
	})
	return sess
}

func newSubmitter(fm *fakeMarketplace, pub EventPublisher) *OrderSubmitter {
	store := cartstore.NewStore(fm.client(), cache.NewMemoryCache())
	return NewOrderSubmitter(fm.client(), store, pub)
}

func TestSubmitRejectsInvalidMobileWithoutNetwork(t *testing.T) {
	fm := newFakeMarketplace(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no network call expected for a local validation failure")
	})
	defer fm.Close()

	submitter := newSubmitter(fm, nil)
	sess := resolvedSession()

	form := validForm()
	form.Mobile = "12345"

	_, err := submitter.Submit(context.Background(), sess, "", form)

	var fe models.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.True(t, fe.Has("mobile"))
	assert.Equal(t, int64(0), fm.Hits())

	// The form survives the failure and the machine is back at Idle.
	phase, _ := sess.Phase()
	assert.Equal(t, models.PhaseIdle, phase)
	assert.Equal(t, form, sess.Form())
}

func TestSubmitRefusesEmptyItemSet(t *testing.T) {
	fm := newFakeMarketplace(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no network call expected with an empty checkout item set")
	})
	defer fm.Close()

	submitter := newSubmitter(fm, nil)
	sess := session.NewRegistry(time.Hour).GetOrCreate("")

	_, err := submitter.Submit(context.Background(), sess, "", validForm())
	assert.ErrorIs(t, err, models.ErrNoItemsSelected)
	assert.Equal(t, int64(0), fm.Hits())
}

func TestSubmitSuccess(t *testing.T) {
	fm := newFakeMarketplace(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NotEmpty(t, r.Header.Get("Idempotency-Key"))
		writeJSON(w, http.StatusCreated, models.Order{
			OrderCode:     "ORD-1001",
			Price:         800,
			PaymentStatus: models.PaymentStatusUnpaid,
			Status:        models.OrderStatusPending,
		})
	})
	defer fm.Close()

	pub := &recordingPublisher{}
	submitter := newSubmitter(fm, pub)
	sess := resolvedSession()

	order, err := submitter.Submit(context.Background(), sess, "", validForm())
	require.NoError(t, err)
	assert.Equal(t, "ORD-1001", order.OrderCode)

	phase, _ := sess.Phase()
	assert.Equal(t, models.PhaseSucceeded, phase)
	assert.Empty(t, sess.Resolved(), "consumed items must be cleared")

	require.Len(t, pub.placed, 1)
	assert.Equal(t, "ORD-1001", pub.placed[0].OrderCode)
}

type failingPublisher struct{}

func (failingPublisher) PublishOrderPlaced(context.Context, *models.OrderPlacedEvent) error {
	return errors.New("broker unreachable")
}

func (failingPublisher) PublishOrderSubmissionFailed(context.Context, *models.OrderSubmissionFailedEvent) error {
	return errors.New("broker unreachable")
}

func TestSubmitSucceedsWhenBrokerIsDown(t *testing.T) {
	fm := newFakeMarketplace(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, models.Order{OrderCode: "ORD-3"})
	})
	defer fm.Close()

	submitter := newSubmitter(fm, failingPublisher{})
	sess := resolvedSession()

	order, err := submitter.Submit(context.Background(), sess, "", validForm())
	require.NoError(t, err, "event publishing is best-effort")
	assert.Equal(t, "ORD-3", order.OrderCode)
}

func TestSubmitUpstreamRejection(t *testing.T) {
	fm := newFakeMarketplace(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "stock changed"})
	})
	defer fm.Close()

	pub := &recordingPublisher{}
	submitter := newSubmitter(fm, pub)
	sess := resolvedSession()
	form := validForm()

	_, err := submitter.Submit(context.Background(), sess, "", form)

	var rejection *models.OrderSubmissionError
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, "stock changed", rejection.Reason)

	phase, reason := sess.Phase()
	assert.Equal(t, models.PhaseFailed, phase)
	assert.Equal(t, "stock changed", reason)

	// Form and items are preserved so the buyer can correct and retry.
	assert.Equal(t, form, sess.Form())
	assert.NotEmpty(t, sess.Resolved())

	require.Len(t, pub.failed, 1)
	assert.Equal(t, "stock changed", pub.failed[0].Reason)
}

func TestSubmitOnePerSession(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})

	fm := newFakeMarketplace(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		writeJSON(w, http.StatusCreated, models.Order{OrderCode: "ORD-2"})
	})
	defer fm.Close()

	submitter := newSubmitter(fm, nil)
	sess := resolvedSession()

	done := make(chan error, 1)
	go func() {
		_, err := submitter.Submit(context.Background(), sess, "", validForm())
		done <- err
	}()

	<-entered
	_, err := submitter.Submit(context.Background(), sess, "", validForm())
	assert.ErrorIs(t, err, models.ErrSubmissionInFlight)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, int64(1), fm.Hits())
}

func TestSubmitNewIdempotencyKeyPerAttempt(t *testing.T) {
	var mu sync.Mutex
	keys := make(map[string]struct{})

	fm := newFakeMarketplace(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		keys[r.Header.Get("Idempotency-Key")] = struct{}{}
		mu.Unlock()
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid address"})
	})
	defer fm.Close()

	submitter := newSubmitter(fm, nil)
	sess := resolvedSession()

	for i := 0; i < 2; i++ {
		_, err := submitter.Submit(context.Background(), sess, "", validForm())
		assert.Error(t, err)
	}

	assert.Len(t, keys, 2, "each attempt must carry its own idempotency key")
}
