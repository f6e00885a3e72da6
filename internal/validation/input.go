package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validation limits.
const (
	MinDisplayNameLength = 2
	MaxDisplayNameLength = 100
	MinSlugLength        = 2
	MaxSlugLength        = 64
	MaxLabelLength       = 200
	MaxAddressLength     = 500
	MaxNotesLength       = 2000
	MaxDefectReport      = 5000
	MaxRejectReason      = 1000
	MinQuantity          = 1
	MaxQuantity          = 100000
)

var (
	slugRegex  = regexp.MustCompile(`^[a-z0-9]+(?:[-_][a-z0-9]+)*$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
	emailLocal = regexp.MustCompile(`^[a-z0-9._+-]+$`)
	emailHost  = regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
)

// ValidateLength checks the rune length of a string.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s must be at least %d characters", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s must be at most %d characters", fieldName, max)
	}
	return nil
}

// ValidateNonEmpty checks that a string is not blank.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s must not be empty", fieldName)
	}
	return nil
}

// ValidateEmail checks the email format.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}

	email = strings.ToLower(strings.TrimSpace(email))
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("invalid email format")
	}

	local, host := parts[0], parts[1]
	if len(local) == 0 || len(local) > 64 {
		return fmt.Errorf("email local part must be 1 to 64 characters")
	}
	if len(host) == 0 || len(host) > 255 {
		return fmt.Errorf("email domain must be 1 to 255 characters")
	}
	if !emailLocal.MatchString(local) || !emailHost.MatchString(host) {
		return fmt.Errorf("email contains invalid characters")
	}
	return nil
}

// ValidateSlug checks a catalog slug: lowercase latin, digits, hyphens
// and underscores between segments.
func ValidateSlug(fieldName, slug string) error {
	if err := ValidateLength(fieldName, slug, MinSlugLength, MaxSlugLength); err != nil {
		return err
	}
	if !slugRegex.MatchString(slug) {
		return fmt.Errorf("%s may contain only lowercase letters, digits, hyphens and underscores", fieldName)
	}
	return nil
}

// ValidateDisplayName checks a human-facing name.
func ValidateDisplayName(displayName string) error {
	if displayName == "" {
		return fmt.Errorf("display name is required")
	}
	return ValidateLength("display name", strings.TrimSpace(displayName), MinDisplayNameLength, MaxDisplayNameLength)
}

// ValidatePhone checks an optional phone number.
func ValidatePhone(phone *string) error {
	if phone == nil || *phone == "" {
		return nil
	}
	cleaned := strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, strings.TrimSpace(*phone))
	if !phoneRegex.MatchString(cleaned) {
		return fmt.Errorf("phone number has an invalid format")
	}
	return nil
}

// ValidateQuantity checks the print run size.
func ValidateQuantity(quantity int) error {
	if quantity < MinQuantity {
		return fmt.Errorf("quantity must be at least %d", MinQuantity)
	}
	if quantity > MaxQuantity {
		return fmt.Errorf("quantity must be at most %d", MaxQuantity)
	}
	return nil
}

// ValidatePrice checks a price in Tomans.
func ValidatePrice(fieldName string, price int64) error {
	if price < 0 {
		return fmt.Errorf("%s must not be negative", fieldName)
	}
	return nil
}

// ValidateShippingAddress checks an optional address.
func ValidateShippingAddress(address *string) error {
	if address == nil || *address == "" {
		return nil
	}
	return ValidateLength("shipping address", strings.TrimSpace(*address), 0, MaxAddressLength)
}

// ValidateDefectReport checks the validator's defect description.
func ValidateDefectReport(report string) error {
	if err := ValidateNonEmpty("defect report", report); err != nil {
		return err
	}
	return ValidateLength("defect report", strings.TrimSpace(report), 0, MaxDefectReport)
}

// ValidateRejectReason checks the admin's payment rejection reason.
func ValidateRejectReason(reason string) error {
	if err := ValidateNonEmpty("rejection reason", reason); err != nil {
		return err
	}
	return ValidateLength("rejection reason", strings.TrimSpace(reason), 0, MaxRejectReason)
}
