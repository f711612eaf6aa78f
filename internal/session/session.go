package session

import (
	"sync"
	"time"

	"storefront-checkout/internal/models"

	"github.com/google/uuid"
)

// Checkout owns all client-local pipeline state for one storefront
// session: the selection set, the applied promo, the resolved checkout
// items and the submission phase. It is the scoped context selection and
// checkout operate on; no pipeline state is ambient or global.
type Checkout struct {
	ID string

	mu            sync.Mutex
	selection     map[string]struct{}
	promoCode     string
	promoDiscount int64
	resolved      []models.CheckoutItem
	form          models.BillingForm
	phase         models.SubmissionPhase
	failReason    string
	lastSeen      time.Time
}

func newCheckout(id string) *Checkout {
	return &Checkout{
		ID:        id,
		selection: make(map[string]struct{}),
		phase:     models.PhaseIdle,
		lastSeen:  time.Now(),
	}
}

// Toggle flips one cart item in or out of the selection.
func (c *Checkout) Toggle(itemUUID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.selection[itemUUID]; ok {
		delete(c.selection, itemUUID)
	} else {
		c.selection[itemUUID] = struct{}{}
	}
}

// SelectAll replaces the selection with the given item set.
func (c *Checkout) SelectAll(itemUUIDs []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.selection = make(map[string]struct{}, len(itemUUIDs))
	for _, id := range itemUUIDs {
		c.selection[id] = struct{}{}
	}
}

// ClearSelection empties the selection set.
func (c *Checkout) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selection = make(map[string]struct{})
}

// Selected returns a copy of the selection set.
func (c *Checkout) Selected() map[string]struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]struct{}, len(c.selection))
	for id := range c.selection {
		out[id] = struct{}{}
	}
	return out
}

// ApplyPromo records a promo code and the discount granted for it. The
// code travels with the order; the server stays authoritative on price.
func (c *Checkout) ApplyPromo(code string, discount int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.promoCode = code
	c.promoDiscount = discount
}

// Promo returns the applied promo code and discount, if any.
func (c *Checkout) Promo() (string, int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.promoCode, c.promoDiscount
}

// SetResolved parks the freshly priced checkout items for the submitter.
func (c *Checkout) SetResolved(items []models.CheckoutItem) {
	stored := make([]models.CheckoutItem, len(items))
	copy(stored, items)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.resolved = stored
}

// Resolved returns the parked checkout items.
func (c *Checkout) Resolved() []models.CheckoutItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]models.CheckoutItem, len(c.resolved))
	copy(out, c.resolved)
	return out
}

// SaveForm preserves the billing form so a failed submission never costs
// the buyer their input.
func (c *Checkout) SaveForm(form models.BillingForm) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form = form
}

// Form returns the last saved billing form.
func (c *Checkout) Form() models.BillingForm {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// BeginSubmission transitions Idle/Failed/Succeeded -> Validating. Exactly
// one submission per session may be in flight: a phase that is neither
// Idle nor terminal means one is still running.
func (c *Checkout) BeginSubmission() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != models.PhaseIdle && !c.phase.IsTerminal() {
		return models.ErrSubmissionInFlight
	}
	c.phase = models.PhaseValidating
	c.failReason = ""
	return nil
}

// MarkSubmitting transitions Validating -> Submitting.
func (c *Checkout) MarkSubmitting() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.phase = models.PhaseSubmitting
}

// FinishSucceeded records the terminal success and clears the consumed
// selection and resolved items.
func (c *Checkout) FinishSucceeded() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.phase = models.PhaseSucceeded
	c.selection = make(map[string]struct{})
	c.resolved = nil
	c.promoCode = ""
	c.promoDiscount = 0
}

// FinishFailed records the failure reason. Form and resolved items stay
// untouched so the buyer can correct and resubmit.
func (c *Checkout) FinishFailed(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.phase = models.PhaseFailed
	c.failReason = reason
}

// AbortValidation returns to Idle after a local validation failure.
func (c *Checkout) AbortValidation() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.phase = models.PhaseIdle
}

// Phase returns the current submission phase and last failure reason.
func (c *Checkout) Phase() (models.SubmissionPhase, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase, c.failReason
}

func (c *Checkout) touch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastSeen = time.Now()
}

func (c *Checkout) expired(ttl time.Duration, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return now.Sub(c.lastSeen) > ttl
}

// Registry tracks live checkout sessions by id.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Checkout
	ttl      time.Duration
}

func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		sessions: make(map[string]*Checkout),
		ttl:      ttl,
	}
}

// GetOrCreate returns the session for id, creating one when id is empty or
// unknown. Sessions are ephemeral and rebuilt freely; only the server-side
// cart and orders are durable.
func (r *Registry) GetOrCreate(id string) *Checkout {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id != "" {
		if sess, ok := r.sessions[id]; ok {
			sess.touch()
			return sess
		}
	} else {
		id = uuid.New().String()
	}

	sess := newCheckout(id)
	r.sessions[id] = sess
	return sess
}

// Get returns an existing session or nil.
func (r *Registry) Get(id string) *Checkout {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[id]
	if !ok {
		return nil
	}
	sess.touch()
	return sess
}

// SweepExpired drops sessions idle past the TTL and returns their ids so
// state held elsewhere for them can be released too.
func (r *Registry) SweepExpired(now time.Time) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []string
	for id, sess := range r.sessions {
		if sess.expired(r.ttl, now) {
			delete(r.sessions, id)
			removed = append(removed, id)
		}
	}
	return removed
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
