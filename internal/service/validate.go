package service

import (
	"net/mail"
	"regexp"
	"strings"

	"storefront-checkout/internal/models"
)

var coordinatePattern = regexp.MustCompile(`^[+-]?\d+(\.\d+)?$`)

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// ValidateBilling checks the billing form locally. A non-empty result
// means no network call is made for this submission attempt.
func ValidateBilling(form models.BillingForm) models.FieldErrors {
	fe := models.FieldErrors{}

	if len(strings.TrimSpace(form.Name)) < 2 {
		fe["name"] = "name must be at least 2 characters"
	}
	if digitCount(form.Mobile) < 10 {
		fe["mobile"] = "mobile number must contain at least 10 digits"
	}
	if _, err := mail.ParseAddress(form.Email); err != nil {
		fe["email"] = "a valid email address is required"
	}
	if len(strings.TrimSpace(form.Address)) < 5 {
		fe["address"] = "address must be at least 5 characters"
	}
	if form.Latitude != "" && !coordinatePattern.MatchString(form.Latitude) {
		fe["latitude"] = "latitude must be a signed decimal number"
	}
	if form.Longitude != "" && !coordinatePattern.MatchString(form.Longitude) {
		fe["longitude"] = "longitude must be a signed decimal number"
	}
	if strings.TrimSpace(form.PaymentMethod) == "" {
		fe["payment_method"] = "payment method is required"
	}

	if len(fe) == 0 {
		return nil
	}
	return fe
}

// ValidateAddressFields checks address input before it reaches the wire.
func ValidateAddressFields(fields models.AddressFields) models.FieldErrors {
	fe := models.FieldErrors{}

	if len(strings.TrimSpace(fields.Address)) < 5 {
		fe["address"] = "address must be at least 5 characters"
	}
	if len(strings.TrimSpace(fields.Label)) < 2 {
		fe["label"] = "label must be at least 2 characters"
	}
	if fields.Latitude != "" && !coordinatePattern.MatchString(fields.Latitude) {
		fe["latitude"] = "latitude must be a signed decimal number"
	}
	if fields.Longitude != "" && !coordinatePattern.MatchString(fields.Longitude) {
		fe["longitude"] = "longitude must be a signed decimal number"
	}

	if len(fe) == 0 {
		return nil
	}
	return fe
}
