package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"storefront-checkout/internal/cartstore"
	"storefront-checkout/internal/models"
	"storefront-checkout/internal/service"
	"storefront-checkout/internal/session"
	"storefront-checkout/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains the storefront HTTP handlers.
type Handler struct {
	sessions  *session.Registry
	cart      *cartstore.Store
	selection *service.SelectionEngine
	resolver  *service.CheckoutResolver
	addresses *service.AddressManager
	submitter *service.OrderSubmitter
	history   *service.OrderHistory
}

// NewHandler creates a new HTTP handler
func NewHandler(
	sessions *session.Registry,
	cart *cartstore.Store,
	selection *service.SelectionEngine,
	resolver *service.CheckoutResolver,
	addresses *service.AddressManager,
	submitter *service.OrderSubmitter,
	history *service.OrderHistory,
) *Handler {
	return &Handler{
		sessions:  sessions,
		cart:      cart,
		selection: selection,
		resolver:  resolver,
		addresses: addresses,
		submitter: submitter,
		history:   history,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/cart", h.getCart)
		v1.POST("/cart/items", h.addCartItem)
		v1.PATCH("/cart/items/:uuid", h.updateCartItem)
		v1.DELETE("/cart/items", h.removeCartItems)

		v1.POST("/cart/selection/toggle", h.toggleSelection)
		v1.POST("/cart/selection/all", h.selectAll)
		v1.DELETE("/cart/selection", h.clearSelection)
		v1.GET("/cart/summary", h.getSummary)
		v1.POST("/cart/promo", h.applyPromo)

		v1.GET("/checkout/details", h.resolveCheckout)
		v1.GET("/checkout/state", h.checkoutState)

		v1.GET("/address", h.listAddresses)
		v1.POST("/address", h.createAddress)
		v1.PATCH("/address/:id", h.updateAddress)
		v1.DELETE("/address/:id", h.deleteAddress)

		v1.POST("/order", h.submitOrder)
		v1.GET("/order", h.listOrders)
		v1.GET("/order/:code", h.getOrder)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// sess resolves the caller's checkout session, creating one on demand.
// The id is echoed back so the storefront can hold on to it.
func (h *Handler) sess(c *gin.Context) *session.Checkout {
	s := h.sessions.GetOrCreate(c.GetHeader("X-Session-ID"))
	c.Header("X-Session-ID", s.ID)
	return s
}

func token(c *gin.Context) string {
	return c.GetHeader("Authorization")
}

// respondError maps the error taxonomy to status codes. Every subsystem
// fails independently; nothing here can take down another view.
func respondError(c *gin.Context, err error) {
	var fieldErrs models.FieldErrors
	if errors.As(err, &fieldErrs) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "validation failed",
			"fields": fieldErrs,
		})
		return
	}

	var transient *models.TransientFetchError
	if errors.As(err, &transient) {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":     transient.Error(),
			"retryable": true,
		})
		return
	}

	var invalidQty *models.InvalidQuantityError
	if errors.As(err, &invalidQty) {
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidQty.Error()})
		return
	}

	var conflict *models.MutationConflictError
	if errors.As(err, &conflict) {
		c.JSON(http.StatusConflict, gin.H{"error": conflict.Error()})
		return
	}

	var rejection *models.OrderSubmissionError
	if errors.As(err, &rejection) {
		c.JSON(http.StatusConflict, gin.H{"error": rejection.Reason})
		return
	}

	switch {
	case errors.Is(err, models.ErrNoItemsSelected):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":    err.Error(),
			"redirect": "selection",
		})
	case errors.Is(err, models.ErrSubmissionInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrDeleteNotConfirmed):
		c.JSON(http.StatusPreconditionRequired, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// getCart returns the cart projection: items, pending rows and summary.
func (h *Handler) getCart(c *gin.Context) {
	s := h.sess(c)

	items, err := h.cart.Fetch(c.Request.Context(), s.ID, token(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":   items,
		"pending": h.cart.Pending(s.ID),
		"summary": h.selection.Summary(s),
	})
}

type addItemRequest struct {
	Slug     string `json:"slug" binding:"required"`
	Quantity int    `json:"quantity"`
}

func (h *Handler) addCartItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	s := h.sess(c)
	if err := h.cart.Add(c.Request.Context(), s.ID, token(c), req.Slug, req.Quantity); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "added"})
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) updateCartItem(c *gin.Context) {
	var req updateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	s := h.sess(c)
	if err := h.cart.UpdateQuantity(c.Request.Context(), s.ID, token(c), c.Param("uuid"), req.Quantity); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

type removeItemsRequest struct {
	UUIDs []string `json:"uuids" binding:"required"`
}

func (h *Handler) removeCartItems(c *gin.Context) {
	var req removeItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	s := h.sess(c)
	if err := h.cart.Remove(c.Request.Context(), s.ID, token(c), req.UUIDs); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

type toggleRequest struct {
	ItemUUID string `json:"item_uuid" binding:"required"`
}

func (h *Handler) toggleSelection(c *gin.Context) {
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	s := h.sess(c)
	h.selection.Toggle(s, req.ItemUUID)
	c.JSON(http.StatusOK, gin.H{"summary": h.selection.Summary(s)})
}

func (h *Handler) selectAll(c *gin.Context) {
	s := h.sess(c)
	h.selection.SelectAll(s)
	c.JSON(http.StatusOK, gin.H{"summary": h.selection.Summary(s)})
}

func (h *Handler) clearSelection(c *gin.Context) {
	s := h.sess(c)
	h.selection.Clear(s)
	c.JSON(http.StatusOK, gin.H{"summary": h.selection.Summary(s)})
}

func (h *Handler) getSummary(c *gin.Context) {
	s := h.sess(c)
	c.JSON(http.StatusOK, h.selection.Summary(s))
}

type promoRequest struct {
	Code     string `json:"code" binding:"required"`
	Discount int64  `json:"discount"`
}

func (h *Handler) applyPromo(c *gin.Context) {
	var req promoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	s := h.sess(c)
	s.ApplyPromo(req.Code, req.Discount)
	c.JSON(http.StatusOK, gin.H{"summary": h.selection.Summary(s)})
}

// resolveCheckout is the one cross-page contract: repeated items params
// name cart lines; presence of quantity switches to the buy-now path for
// a single item, with non-numeric quantity coerced to 1.
func (h *Handler) resolveCheckout(c *gin.Context) {
	s := h.sess(c)
	itemUUIDs := c.QueryArray("items")

	if rawQty, buyNow := c.GetQuery("quantity"); buyNow {
		quantity, err := strconv.Atoi(rawQty)
		if err != nil || quantity < 1 {
			quantity = 1
		}
		var itemUUID string
		if len(itemUUIDs) > 0 {
			itemUUID = itemUUIDs[0]
		}

		items, err := h.resolver.ResolveBuyNow(c.Request.Context(), s, token(c), itemUUID, quantity)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": items})
		return
	}

	// Without explicit items the session's current selection is the input.
	if len(itemUUIDs) == 0 {
		itemUUIDs = h.selection.SelectedUUIDs(s)
	}

	items, err := h.resolver.ResolveCart(c.Request.Context(), s, token(c), itemUUIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) checkoutState(c *gin.Context) {
	s := h.sess(c)
	phase, reason := s.Phase()
	c.JSON(http.StatusOK, gin.H{
		"phase":  phase,
		"reason": reason,
		"items":  s.Resolved(),
		"form":   s.Form(),
	})
}

func (h *Handler) listAddresses(c *gin.Context) {
	s := h.sess(c)
	addrs, err := h.addresses.List(c.Request.Context(), token(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"addresses": addrs,
		"pending":   h.addresses.PendingRows(s.ID),
	})
}

func (h *Handler) createAddress(c *gin.Context) {
	var fields models.AddressFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	addr, err := h.addresses.Create(c.Request.Context(), token(c), fields)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, addr)
}

func (h *Handler) updateAddress(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid address id"})
		return
	}

	var fields models.AddressFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	s := h.sess(c)
	addr, err := h.addresses.Update(c.Request.Context(), s.ID, token(c), id, fields)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, addr)
}

func (h *Handler) deleteAddress(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid address id"})
		return
	}

	s := h.sess(c)
	confirmed := c.GetHeader("X-Confirm-Delete") == "true"
	if err := h.addresses.Delete(c.Request.Context(), s.ID, token(c), id, confirmed); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) submitOrder(c *gin.Context) {
	var form models.BillingForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	s := h.sess(c)
	order, err := h.submitter.Submit(c.Request.Context(), s, token(c), form)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) listOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	orders, err := h.history.List(c.Request.Context(), token(c), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) getOrder(c *gin.Context) {
	order, err := h.history.Get(c.Request.Context(), token(c), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
