package service

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"storefront-checkout/internal/models"
	"storefront-checkout/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession() *session.Checkout {
	return session.NewRegistry(time.Hour).GetOrCreate("")
}

func TestResolveCartEmptyInputFailsFast(t *testing.T) {
	fm := newFakeMarketplace(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.CheckoutItem{})
	})
	defer fm.Close()

	resolver := NewCheckoutResolver(fm.client())

	_, err := resolver.ResolveCart(context.Background(), newSession(), "", nil)
	assert.ErrorIs(t, err, models.ErrNoItemsSelected)
	assert.Equal(t, int64(0), fm.Hits(), "empty input must not reach the network")
}

func TestResolveCartReturnsFreshItems(t *testing.T) {
	fm := newFakeMarketplace(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, []string{"u1", "u2"}, r.URL.Query()["items"])
		writeJSON(w, http.StatusOK, []models.CheckoutItem{
			{ItemUUID: "u1", ItemSlug: "bottle", Price: 400, Quantity: 2, Subtotal: 800},
			{ItemUUID: "u2", ItemSlug: "bib", Price: 150, Quantity: 1, Subtotal: 150},
		})
	})
	defer fm.Close()

	resolver := NewCheckoutResolver(fm.client())
	sess := newSession()

	items, err := resolver.ResolveCart(context.Background(), sess, "", []string{"u1", "u2"})
	require.NoError(t, err)
	require.Len(t, items, 2)

	// The result is parked on the session for the submitter.
	assert.Equal(t, items, sess.Resolved())
}

func TestResolveCartAllLinesVanished(t *testing.T) {
	fm := newFakeMarketplace(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.CheckoutItem{})
	})
	defer fm.Close()

	resolver := NewCheckoutResolver(fm.client())

	_, err := resolver.ResolveCart(context.Background(), newSession(), "", []string{"u1"})
	assert.ErrorIs(t, err, models.ErrNoItemsSelected)
}

func TestResolveBuyNowSingleItem(t *testing.T) {
	fm := newFakeMarketplace(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var lines []struct {
			UUID     string `json:"uuid"`
			Quantity int    `json:"quantity"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&lines))
		require.Len(t, lines, 1)
		assert.Equal(t, "ux", lines[0].UUID)
		assert.Equal(t, 3, lines[0].Quantity)

		writeJSON(w, http.StatusOK, []models.CheckoutItem{
			{ItemUUID: "ux", ItemSlug: "X", Price: 900, Quantity: 3, Subtotal: 2700},
		})
	})
	defer fm.Close()

	resolver := NewCheckoutResolver(fm.client())

	items, err := resolver.ResolveBuyNow(context.Background(), newSession(), "", "ux", 3)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "X", items[0].ItemSlug)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestResolveBuyNowCoercesQuantity(t *testing.T) {
	fm := newFakeMarketplace(func(w http.ResponseWriter, r *http.Request) {
		var lines []struct {
			UUID     string `json:"uuid"`
			Quantity int    `json:"quantity"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&lines))
		assert.Equal(t, 1, lines[0].Quantity)

		writeJSON(w, http.StatusOK, []models.CheckoutItem{
			{ItemUUID: "ux", ItemSlug: "X", Price: 900, Quantity: 1, Subtotal: 900},
		})
	})
	defer fm.Close()

	resolver := NewCheckoutResolver(fm.client())

	_, err := resolver.ResolveBuyNow(context.Background(), newSession(), "", "ux", 0)
	require.NoError(t, err)
}

func TestResolveBuyNowMissingReference(t *testing.T) {
	fm := newFakeMarketplace(func(w http.ResponseWriter, r *http.Request) {})
	defer fm.Close()

	resolver := NewCheckoutResolver(fm.client())

	_, err := resolver.ResolveBuyNow(context.Background(), newSession(), "", "", 2)
	assert.ErrorIs(t, err, models.ErrNoItemsSelected)
	assert.Equal(t, int64(0), fm.Hits())
}

func TestResolveCartIsRepeatable(t *testing.T) {
	fm := newFakeMarketplace(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.CheckoutItem{
			{ItemUUID: "u1", ItemSlug: "bottle", Price: 400, Quantity: 2, Subtotal: 800},
		})
	})
	defer fm.Close()

	resolver := NewCheckoutResolver(fm.client())
	sess := newSession()

	first, err := resolver.ResolveCart(context.Background(), sess, "", []string{"u1"})
	require.NoError(t, err)
	second, err := resolver.ResolveCart(context.Background(), sess, "", []string{"u1"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
