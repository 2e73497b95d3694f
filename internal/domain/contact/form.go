// Package contact validates and submits the storefront contact form.
package contact

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xenking/storefront/internal/domain/inputerr"
)

// Whitespace covers the Unicode separators and BOM alongside ASCII space.
var emailRe = regexp.MustCompile(`^[^\s\v\p{Z}\x{FEFF}@]+@[^\s\v\p{Z}\x{FEFF}@]+\.[^\s\v\p{Z}\x{FEFF}@]+$`)

// Form is a contact form submission.
type Form struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// FromFields builds a Form from submitted field values keyed by field name.
// Unknown keys are ignored.
func FromFields(fields map[string]string) Form {
	return Form{
		Name:    fields["name"],
		Email:   fields["email"],
		Subject: fields["subject"],
		Message: fields["message"],
	}
}

// Fields returns the form keyed by field name, in the same shape FromFields
// accepts.
func (f Form) Fields() map[string]string {
	return map[string]string{
		"name":    f.Name,
		"email":   f.Email,
		"subject": f.Subject,
		"message": f.Message,
	}
}

// IsZero reports whether every field is empty.
func (f Form) IsZero() bool {
	return f == Form{}
}

// Validate checks required fields in display order, then the email shape.
// Only the first problem is reported.
func (f Form) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"name", f.Name},
		{"email", f.Email},
		{"subject", f.Subject},
		{"message", f.Message},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return inputerr.Validation(r.name, fmt.Sprintf("Please fill in the %s field", r.name))
		}
	}
	return ValidateEmail(f.Email)
}

// ValidateEmail accepts local@domain.tld with no embedded whitespace.
func ValidateEmail(s string) error {
	if !emailRe.MatchString(s) {
		return inputerr.Format("email", s, "Please enter a valid email address")
	}
	return nil
}
