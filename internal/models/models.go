package models

import "time"

// ItemType distinguishes purchasable products from bookable services.
type ItemType string

const (
	ItemTypeProduct ItemType = "product"
	ItemTypeService ItemType = "service"
)

// CartItem is one priced line of the server-authoritative cart.
// It is owned by the remote cart; the cartstore only projects it.
type CartItem struct {
	ItemUUID    string   `json:"item_uuid"`
	ItemType    ItemType `json:"item_type"`
	ItemName    string   `json:"item_name"`
	ItemSlug    string   `json:"item_slug"`
	BrandName   string   `json:"brand_name"`
	VariantName string   `json:"variant_name"`
	VariantID   int64    `json:"variant_id"`
	Image       string   `json:"image"`
	Quantity    int      `json:"quantity"`
	Price       int64    `json:"price"`
	Subtotal    int64    `json:"subtotal"`
}

// OrderSummary is derived from the selection and the cart snapshot.
// Always recomputed, never stored: total = subtotal + shipping + tax - discount.
type OrderSummary struct {
	Subtotal  int64 `json:"subtotal"`
	Shipping  int64 `json:"shipping"`
	Tax       int64 `json:"tax"`
	Discount  int64 `json:"discount"`
	Total     int64 `json:"total"`
	ItemCount int   `json:"item_count"`
}

// CheckoutItem is a freshly priced line resolved for checkout. It is
// independent of CartItem: the buy-now path produces one with a
// caller-supplied quantity that never touched the cart.
type CheckoutItem struct {
	ItemUUID string `json:"item_uuid"`
	ItemSlug string `json:"item_slug"`
	ItemName string `json:"item_name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	Subtotal int64  `json:"subtotal"`
}

// Address is a saved delivery address. Orders copy its fields by value;
// editing or deleting an address never alters a past order.
type Address struct {
	ID         int64  `json:"id"`
	Label      string `json:"label"`
	Address    string `json:"address"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postal_code,omitempty"`
	Latitude   string `json:"latitude,omitempty"`
	Longitude  string `json:"longitude,omitempty"`
}

// AddressFields carries the mutable fields for address create/update.
type AddressFields struct {
	Label      string `json:"label"`
	Address    string `json:"address"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postal_code,omitempty"`
	Latitude   string `json:"latitude,omitempty"`
	Longitude  string `json:"longitude,omitempty"`
}

// Order statuses as reported by the marketplace. Opaque to this service:
// it renders them, it never transitions them.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "UNPAID"
	PaymentStatusPaid   PaymentStatus = "PAID"
)

// Order is the durable result of checkout, created exactly once per
// successful submission and immutable from this side thereafter.
type Order struct {
	OrderCode     string        `json:"order_code"`
	Address       string        `json:"address"`
	Price         int64         `json:"price"`
	PreviousPrice int64         `json:"previous_price"`
	PromoCode     string        `json:"promo_code,omitempty"`
	PaymentMethod string        `json:"payment_method"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	Status        OrderStatus   `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	OrderedItems  []OrderedItem `json:"ordered_items"`
}

// OrderedItem mirrors CheckoutItem plus per-item fulfilment state.
type OrderedItem struct {
	ItemUUID string      `json:"item_uuid"`
	ItemSlug string      `json:"item_slug"`
	ItemName string      `json:"item_name"`
	Price    int64       `json:"price"`
	Quantity int         `json:"quantity"`
	Subtotal int64       `json:"subtotal"`
	Status   OrderStatus `json:"status"`
	Reviews  []Review    `json:"reviews,omitempty"`
}

// Review is carried on ordered items for display only.
type Review struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

// BillingForm holds the buyer-entered fields for order submission.
type BillingForm struct {
	Name          string `json:"name"`
	Mobile        string `json:"mobile"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	Latitude      string `json:"latitude,omitempty"`
	Longitude     string `json:"longitude,omitempty"`
	PromoCode     string `json:"code,omitempty"`
	PaymentMethod string `json:"payment_method"`
}

// OrderLine is the product reference shape the order endpoint accepts.
type OrderLine struct {
	ProductSlug string `json:"product_slug"`
	Quantity    int    `json:"quantity"`
}

// SubmissionPhase is the order submitter's state machine.
type SubmissionPhase string

const (
	PhaseIdle       SubmissionPhase = "IDLE"
	PhaseValidating SubmissionPhase = "VALIDATING"
	PhaseSubmitting SubmissionPhase = "SUBMITTING"
	PhaseSucceeded  SubmissionPhase = "SUCCEEDED"
	PhaseFailed     SubmissionPhase = "FAILED"
)

func (p SubmissionPhase) IsTerminal() bool {
	return p == PhaseSucceeded || p == PhaseFailed
}
