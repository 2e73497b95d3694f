package view

import (
	"github.com/xenking/storefront/internal/checkout"
	"github.com/xenking/storefront/internal/domain/contact"
	"github.com/xenking/storefront/internal/domain/inputerr"
)

// Section is a top-level area of the storefront.
type Section string

const (
	SectionHome     Section = "home"
	SectionProducts Section = "products"
	SectionContact  Section = "contact"
)

// Sections lists every section in navigation order.
var Sections = []Section{SectionHome, SectionProducts, SectionContact}

// ParseSection validates a section name.
func ParseSection(s string) (Section, error) {
	for _, sec := range Sections {
		if string(sec) == s {
			return sec, nil
		}
	}
	return "", inputerr.Format("section", s, "Unknown section: "+s)
}

// User is the rendered login state.
type User struct {
	Authenticated bool
	Identity      string
	Label         string
}

// UserLabel returns the header label for identity.
func UserLabel(identity string, ok bool) User {
	if !ok {
		return User{Label: "Login"}
	}
	return User{Authenticated: true, Identity: identity, Label: "Welcome, " + identity}
}

// Checkout is the rendered checkout button.
type Checkout struct {
	State checkout.State
	Label string
}

// ProjectCheckout renders the button label for state.
func ProjectCheckout(state checkout.State) Checkout {
	if state == checkout.StatePending {
		return Checkout{State: state, Label: "Processing..."}
	}
	return Checkout{State: state, Label: "Checkout"}
}

// Contact is the rendered contact form.
type Contact struct {
	Phase       contact.Phase
	Form        contact.Form
	ShowSuccess bool
}

// Page is the complete render model of one storefront session.
type Page struct {
	// Version increases with every render.
	Version   uint64
	Section   Section
	LoginOpen bool
	User      User
	Cart      CartView
	Checkout  Checkout
	Products  []ProductView
	Contact   Contact
	Toasts    []Toast
}

// Sink receives every rendered page.
type Sink interface {
	Render(p Page)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(p Page)

func (f SinkFunc) Render(p Page) { f(p) }

type discard struct{}

func (discard) Render(Page) {}

// Discard is a Sink that drops every page.
var Discard Sink = discard{}
