package ordine

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/taldoflemis/usersnack/cucina"
)

// FieldErrors keys validation messages by the wire field name, matching the
// shape the remote service uses for its own rejections.
type FieldErrors = cucina.FieldErrors

const (
	FieldCustomerName    = "customer_name"
	FieldDeliveryAddress = "delivery_address"
	FieldCustomerPhone   = "customer_phone"
	FieldCustomerEmail   = "customer_email"
)

// CustomerInfo is created fresh per submission attempt and discarded after
// success or failure. Phone, Email and Notes are optional.
type CustomerInfo struct {
	Name    string
	Address string
	Phone   string
	Email   string
	Notes   string
}

// Validate is purely local and synchronous; a non-empty result aborts
// submission before any network call.
func (c CustomerInfo) Validate() FieldErrors {
	errs := FieldErrors{}

	if strings.TrimSpace(c.Name) == "" {
		errs[FieldCustomerName] = append(errs[FieldCustomerName], "Name is required")
	}
	if strings.TrimSpace(c.Address) == "" {
		errs[FieldDeliveryAddress] = append(errs[FieldDeliveryAddress], "Address is required")
	}
	if c.Phone != "" && !ValidPhone(c.Phone) {
		errs[FieldCustomerPhone] = append(errs[FieldCustomerPhone], "Please enter a valid phone number")
	}
	if c.Email != "" && !ValidEmail(c.Email) {
		errs[FieldCustomerEmail] = append(errs[FieldCustomerEmail], "Please enter a valid email address")
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

var (
	phonePattern = regexp.MustCompile(`^\+?[0-9\s\-()]+$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// ValidPhone accepts an optional leading plus and common separators, and
// requires at least ten digits.
func ValidPhone(phone string) bool {
	if !phonePattern.MatchString(phone) {
		return false
	}

	digits := 0
	for _, r := range phone {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	return digits >= 10
}

// ValidEmail checks the loose local@domain.tld shape; real verification is
// the service's problem.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}
