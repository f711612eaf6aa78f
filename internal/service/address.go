package service

import (
	"context"
	"strconv"

	"storefront-checkout/internal/cartstore"
	"storefront-checkout/internal/models"
	"storefront-checkout/internal/upstream"
	"storefront-checkout/internal/util"

	"go.uber.org/zap"
)

// AddressManager handles saved delivery addresses. Addresses have no
// relation to cart contents; orders copy their fields by value.
type AddressManager struct {
	client *upstream.Client
	locks  *cartstore.LockTable
	logger *zap.Logger
}

func NewAddressManager(client *upstream.Client) *AddressManager {
	return &AddressManager{
		client: client,
		locks:  cartstore.NewLockTable(),
		logger: util.GetLogger(),
	}
}

func addressRow(id int64) string {
	return "addr:" + strconv.FormatInt(id, 10)
}

// List returns the caller's saved addresses.
func (m *AddressManager) List(ctx context.Context, token string) ([]models.Address, error) {
	ctx, span := util.StartSpan(ctx, "AddressManager.List")
	defer span.End()

	return m.client.ListAddresses(ctx, token)
}

// Create validates and saves a new address.
func (m *AddressManager) Create(ctx context.Context, token string, fields models.AddressFields) (*models.Address, error) {
	ctx, span := util.StartSpan(ctx, "AddressManager.Create")
	defer span.End()

	if fe := ValidateAddressFields(fields); fe != nil {
		util.AddressMutationsTotal.WithLabelValues("create", "invalid").Inc()
		return nil, fe
	}

	addr, err := m.client.CreateAddress(ctx, token, fields)
	if err != nil {
		util.AddressMutationsTotal.WithLabelValues("create", "error").Inc()
		return nil, err
	}
	util.AddressMutationsTotal.WithLabelValues("create", "ok").Inc()
	return addr, nil
}

// Update validates and edits a saved address. The row is serialized while
// the edit is in flight.
func (m *AddressManager) Update(ctx context.Context, sessionID, token string, id int64, fields models.AddressFields) (*models.Address, error) {
	ctx, span := util.StartSpan(ctx, "AddressManager.Update")
	defer span.End()

	if fe := ValidateAddressFields(fields); fe != nil {
		util.AddressMutationsTotal.WithLabelValues("update", "invalid").Inc()
		return nil, fe
	}

	row := addressRow(id)
	if err := m.locks.Acquire(sessionID, row); err != nil {
		return nil, err
	}
	defer m.locks.Release(sessionID, row)

	addr, err := m.client.UpdateAddress(ctx, token, id, fields)
	if err != nil {
		util.AddressMutationsTotal.WithLabelValues("update", "error").Inc()
		return nil, err
	}
	util.AddressMutationsTotal.WithLabelValues("update", "ok").Inc()
	return addr, nil
}

// Delete removes a saved address. The confirmation flag is the blocking
// confirm step; without it the destructive call is never issued. The row
// stays disabled while the delete is in flight.
func (m *AddressManager) Delete(ctx context.Context, sessionID, token string, id int64, confirmed bool) error {
	ctx, span := util.StartSpan(ctx, "AddressManager.Delete")
	defer span.End()

	if !confirmed {
		return models.ErrDeleteNotConfirmed
	}

	row := addressRow(id)
	if err := m.locks.Acquire(sessionID, row); err != nil {
		return err
	}
	defer m.locks.Release(sessionID, row)

	if err := m.client.DeleteAddress(ctx, token, id); err != nil {
		util.AddressMutationsTotal.WithLabelValues("delete", "error").Inc()
		return err
	}

	util.AddressMutationsTotal.WithLabelValues("delete", "ok").Inc()
	m.logger.Info("Address deleted", zap.Int64("address_id", id))
	return nil
}

// PendingRows lists addresses with a mutation in flight for a session.
func (m *AddressManager) PendingRows(sessionID string) []string {
	return m.locks.Pending(sessionID)
}

// BillingDefaults copies an address into billing form defaults. The order
// will store a text snapshot, so later edits to the address never alter
// past orders.
func BillingDefaults(addr models.Address, form models.BillingForm) models.BillingForm {
	form.Address = addr.Address
	if addr.City != "" {
		form.Address += ", " + addr.City
	}
	if addr.Province != "" {
		form.Address += ", " + addr.Province
	}
	form.Latitude = addr.Latitude
	form.Longitude = addr.Longitude
	return form
}
