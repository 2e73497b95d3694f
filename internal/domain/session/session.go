// Package session holds the mock authentication state of one storefront
// session. It is a demonstration check against a single configured pair and
// must never be used as real authentication.
package session

import (
	"crypto/subtle"

	"github.com/xenking/storefront/internal/domain/inputerr"
)

// Credentials is the username and password pair accepted by Login.
type Credentials struct {
	Username string
	Password string
}

// DefaultCredentials is the demo pair used when none are configured.
var DefaultCredentials = Credentials{Username: "admin", Password: "password"}

// State is the authentication state of a session.
type State struct {
	accepted      Credentials
	authenticated bool
	identity      string
}

// New creates an unauthenticated State accepting creds.
func New(creds Credentials) *State {
	return &State{accepted: creds}
}

// Login authenticates the session when username and password match the
// accepted pair. A failed attempt leaves the current state untouched.
func (s *State) Login(username, password string) error {
	if username == "" || password == "" {
		return inputerr.Validation("credentials", "please fill in all fields")
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.accepted.Username))
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.accepted.Password))
	if userOK&passOK != 1 {
		return &inputerr.AuthError{Message: "invalid credentials"}
	}
	s.authenticated = true
	s.identity = username
	return nil
}

// Logout clears the session unconditionally.
func (s *State) Logout() {
	s.authenticated = false
	s.identity = ""
}

// IsAuthenticated reports whether Login succeeded since the last Logout.
func (s *State) IsAuthenticated() bool { return s.authenticated }

// Identity returns the logged in username.
func (s *State) Identity() (string, bool) {
	return s.identity, s.authenticated
}
