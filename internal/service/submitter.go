package service

import (
	"context"
	"time"

	"storefront-checkout/internal/cartstore"
	"storefront-checkout/internal/models"
	"storefront-checkout/internal/session"
	"storefront-checkout/internal/upstream"
	"storefront-checkout/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventPublisher publishes order lifecycle events. Publishing is
// best-effort and never fails the order path.
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error
	PublishOrderSubmissionFailed(ctx context.Context, event *models.OrderSubmissionFailedEvent) error
}

// OrderSubmitter drives the terminal step of checkout:
// Idle -> Validating -> Submitting -> Succeeded | Failed.
// One submission per session may be in flight; failures preserve the form
// and are never retried automatically.
type OrderSubmitter struct {
	client    *upstream.Client
	store     *cartstore.Store
	publisher EventPublisher
	logger    *zap.Logger
}

func NewOrderSubmitter(client *upstream.Client, store *cartstore.Store, publisher EventPublisher) *OrderSubmitter {
	return &OrderSubmitter{
		client:    client,
		store:     store,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// Submit assembles billing fields, the session's resolved items and promo
// code into one order-creation request. On success the order code is
// returned and the cart view is invalidated; whether the server cleared
// the cart is its own business, the next fetch will tell.
func (s *OrderSubmitter) Submit(ctx context.Context, sess *session.Checkout, token string, form models.BillingForm) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderSubmitter.Submit")
	defer span.End()

	if err := sess.BeginSubmission(); err != nil {
		util.OrdersRejectedTotal.WithLabelValues("in_flight").Inc()
		return nil, err
	}

	// Preserve the form up front so even a validation failure keeps the
	// buyer's input.
	sess.SaveForm(form)

	if fe := ValidateBilling(form); fe != nil {
		sess.AbortValidation()
		util.OrdersRejectedTotal.WithLabelValues("validation").Inc()
		return nil, fe
	}

	items := sess.Resolved()
	if len(items) == 0 {
		sess.AbortValidation()
		util.OrdersRejectedTotal.WithLabelValues("empty_items").Inc()
		return nil, models.ErrNoItemsSelected
	}

	sess.MarkSubmitting()

	promoCode, _ := sess.Promo()
	if form.PromoCode != "" {
		promoCode = form.PromoCode
	}

	lines := make([]models.OrderLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, models.OrderLine{
			ProductSlug: item.ItemSlug,
			Quantity:    item.Quantity,
		})
	}

	req := upstream.CreateOrderRequest{
		Name:          form.Name,
		Mobile:        form.Mobile,
		Email:         form.Email,
		Address:       form.Address,
		Latitude:      form.Latitude,
		Longitude:     form.Longitude,
		Code:          promoCode,
		Products:      lines,
		PaymentMethod: form.PaymentMethod,
	}

	attemptKey := uuid.New().String()
	util.OrdersSubmittedTotal.Inc()

	order, err := s.client.CreateOrder(ctx, token, req, attemptKey)
	if err != nil {
		reason := err.Error()
		if se, ok := err.(*models.OrderSubmissionError); ok {
			reason = se.Reason
		}
		sess.FinishFailed(reason)
		util.OrdersRejectedTotal.WithLabelValues("upstream").Inc()
		s.logger.Warn("Order submission rejected",
			zap.String("session_id", sess.ID),
			zap.String("reason", reason))

		s.publishFailed(ctx, sess.ID, reason)
		return nil, err
	}

	sess.FinishSucceeded()
	s.store.Invalidate(ctx, sess.ID)
	util.OrdersSucceededTotal.Inc()
	s.logger.Info("Order placed",
		zap.String("session_id", sess.ID),
		zap.String("order_code", order.OrderCode),
		zap.Int64("price", order.Price))

	s.publishPlaced(ctx, sess.ID, order, promoCode, len(items))
	return order, nil
}

func (s *OrderSubmitter) publishPlaced(ctx context.Context, sessionID string, order *models.Order, promoCode string, itemCount int) {
	if s.publisher == nil {
		return
	}
	event := &models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderPlaced,
			Timestamp: time.Now(),
		},
		SessionID: sessionID,
		OrderCode: order.OrderCode,
		Total:     order.Price,
		ItemCount: itemCount,
		PromoCode: promoCode,
	}
	if err := s.publisher.PublishOrderPlaced(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderPlaced event", zap.Error(err))
	}
}

func (s *OrderSubmitter) publishFailed(ctx context.Context, sessionID, reason string) {
	if s.publisher == nil {
		return
	}
	event := &models.OrderSubmissionFailedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderSubmissionFailed,
			Timestamp: time.Now(),
		},
		SessionID: sessionID,
		Reason:    reason,
	}
	if err := s.publisher.PublishOrderSubmissionFailed(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderSubmissionFailed event", zap.Error(err))
	}
}
