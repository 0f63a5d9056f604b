package checkout

import (
	"fmt"
	"regexp"

	"github.com/raynott/decmart/api"
)

// ValidationError is a client-side input rejection, reported before any
// request leaves the machine.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

var (
	phonePattern   = regexp.MustCompile(`^[0-9]{10}$`)
	pincodePattern = regexp.MustCompile(`^[0-9]{6}$`)
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// minPasswordLength is the weakest password the client will submit.
const minPasswordLength = 6

// ValidateShipping checks the delivery details before order creation.
func ValidateShipping(s api.ShippingInfo) error {
	if s.Address == "" {
		return &ValidationError{Field: "address", Reason: "required"}
	}
	if s.City == "" {
		return &ValidationError{Field: "city", Reason: "required"}
	}
	if s.State == "" {
		return &ValidationError{Field: "state", Reason: "required"}
	}
	if !pincodePattern.MatchString(s.Pincode) {
		return &ValidationError{Field: "pincode", Reason: "must be 6 digits"}
	}
	if !phonePattern.MatchString(s.Phone) {
		return &ValidationError{Field: "phone", Reason: "must be 10 digits"}
	}
	return nil
}

// ValidateRegistration checks account details before registering.
func ValidateRegistration(req api.RegisterRequest) error {
	if req.Name == "" {
		return &ValidationError{Field: "name", Reason: "required"}
	}
	if err := ValidateEmail(req.Email); err != nil {
		return err
	}
	if len(req.Password) < minPasswordLength {
		return &ValidationError{
			Field:  "password",
			Reason: fmt.Sprintf("must be at least %d characters", minPasswordLength),
		}
	}
	return nil
}

// ValidateEmail checks the basic shape of an email address.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return &ValidationError{Field: "email", Reason: "not a valid address"}
	}
	return nil
}
