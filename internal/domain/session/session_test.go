package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/storefront/internal/domain/inputerr"
)

func TestLogin(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		wantKind inputerr.Kind
	}{
		{name: "accepted pair", username: "admin", password: "password"},
		{name: "wrong password", username: "admin", password: "wrong", wantKind: inputerr.KindAuth},
		{name: "wrong username", username: "root", password: "password", wantKind: inputerr.KindAuth},
		{name: "prefix of password", username: "admin", password: "pass", wantKind: inputerr.KindAuth},
		{name: "empty username", username: "", password: "password", wantKind: inputerr.KindValidation},
		{name: "empty password", username: "admin", password: "", wantKind: inputerr.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(DefaultCredentials)
			err := s.Login(tt.username, tt.password)

			if tt.wantKind == "" {
				require.NoError(t, err)
				assert.True(t, s.IsAuthenticated())
				id, ok := s.Identity()
				assert.True(t, ok)
				assert.Equal(t, "admin", id)
				return
			}

			require.Error(t, err)
			assert.Equal(t, tt.wantKind, inputerr.KindOf(err))
			assert.False(t, s.IsAuthenticated())
			_, ok := s.Identity()
			assert.False(t, ok)
		})
	}
}

func TestLogin_FailureKeepsExistingSession(t *testing.T) {
	s := New(DefaultCredentials)
	require.NoError(t, s.Login("admin", "password"))

	require.Error(t, s.Login("admin", "wrong"))
	assert.True(t, s.IsAuthenticated())
}

func TestLogout(t *testing.T) {
	s := New(Credentials{Username: "demo", Password: "demo"})
	require.NoError(t, s.Login("demo", "demo"))

	s.Logout()
	s.Logout()

	assert.False(t, s.IsAuthenticated())
	id, _ := s.Identity()
	assert.Empty(t, id)
}
