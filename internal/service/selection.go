package service

import (
	"storefront-checkout/config"
	"storefront-checkout/internal/cartstore"
	"storefront-checkout/internal/models"
	"storefront-checkout/internal/session"
	"storefront-checkout/internal/util"

	"go.uber.org/zap"
)

// SelectionEngine maintains the per-session selection over the cart
// snapshot and derives the order summary from it. Pure set operations,
// no network effect.
type SelectionEngine struct {
	store   *cartstore.Store
	pricing config.PricingConfig
	logger  *zap.Logger
}

func NewSelectionEngine(store *cartstore.Store, pricing config.PricingConfig) *SelectionEngine {
	return &SelectionEngine{
		store:   store,
		pricing: pricing,
		logger:  util.GetLogger(),
	}
}

// Toggle flips one item in or out of the session's selection.
func (e *SelectionEngine) Toggle(sess *session.Checkout, itemUUID string) {
	sess.Toggle(itemUUID)
}

// SelectAll selects every item in the last installed cart snapshot.
func (e *SelectionEngine) SelectAll(sess *session.Checkout) {
	items := e.store.Snapshot(sess.ID)
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ItemUUID)
	}
	sess.SelectAll(ids)
}

// Clear empties the session's selection.
func (e *SelectionEngine) Clear(sess *session.Checkout) {
	sess.ClearSelection()
}

// SelectedUUIDs returns the selected ids still present in the snapshot,
// in snapshot order. Orphaned selections are silently non-contributing.
func (e *SelectionEngine) SelectedUUIDs(sess *session.Checkout) []string {
	selected := sess.Selected()
	out := make([]string, 0, len(selected))
	for _, item := range e.store.Snapshot(sess.ID) {
		if _, ok := selected[item.ItemUUID]; ok {
			out = append(out, item.ItemUUID)
		}
	}
	return out
}

// Summary recomputes the order summary from the latest snapshot and the
// session's selection. Never cached across snapshots.
func (e *SelectionEngine) Summary(sess *session.Checkout) models.OrderSummary {
	_, discount := sess.Promo()
	return ComputeSummary(e.store.Snapshot(sess.ID), sess.Selected(), discount, e.pricing)
}

// ComputeSummary derives the summary for a cart and selection. Selected
// ids absent from the cart contribute nothing: a removal racing a
// selection is tolerated, never an error. Invariant:
// total = subtotal + shipping + tax - discount.
func ComputeSummary(items []models.CartItem, selected map[string]struct{}, discount int64, pricing config.PricingConfig) models.OrderSummary {
	var summary models.OrderSummary

	for _, item := range items {
		if _, ok := selected[item.ItemUUID]; !ok {
			continue
		}
		summary.Subtotal += item.Price * int64(item.Quantity)
		summary.ItemCount++
	}

	if summary.ItemCount == 0 {
		// Empty selection: checkout is blocked upstream of here, and no
		// shipping or discount applies to nothing.
		return summary
	}

	if summary.Subtotal < pricing.FreeShippingThreshold {
		summary.Shipping = pricing.ShippingFee
	}
	if pricing.TaxRateBasisPoints > 0 {
		summary.Tax = summary.Subtotal * pricing.TaxRateBasisPoints / 10000
	}
	summary.Discount = discount
	summary.Total = summary.Subtotal + summary.Shipping + summary.Tax - summary.Discount
	return summary
}
