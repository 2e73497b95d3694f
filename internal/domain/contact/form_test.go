package contact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/storefront/internal/domain/inputerr"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"a@b.com", true},
		{"first.last@shop.example.org", true},
		{"a@b", false},
		{"a b@c.com", false},
		{"a@b .com", false},
		{"a\u00a0b@c.com", false},
		{"a@b\u2003c.com", false},
		{"a@b.c\u2028om", false},
		{"a\vb@c.com", false},
		{"\ufeffa@b.com", false},
		{"josé@café.fr", true},
		{"@b.com", false},
		{"a@@b.com", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, inputerr.KindFormat, inputerr.KindOf(err))
			assert.Equal(t, "Please enter a valid email address", inputerr.Message(err))
		})
	}
}

func TestValidate(t *testing.T) {
	valid := Form{Name: "Ada", Email: "ada@example.com", Subject: "Hi", Message: "Hello"}

	tests := []struct {
		name    string
		mutate  func(f *Form)
		wantMsg string
	}{
		{name: "valid", mutate: func(*Form) {}},
		{name: "missing name", mutate: func(f *Form) { f.Name = "" }, wantMsg: "Please fill in the name field"},
		{name: "blank subject", mutate: func(f *Form) { f.Subject = "   " }, wantMsg: "Please fill in the subject field"},
		{name: "missing message", mutate: func(f *Form) { f.Message = "" }, wantMsg: "Please fill in the message field"},
		{
			name:    "first missing field wins",
			mutate:  func(f *Form) { f.Email = ""; f.Message = "" },
			wantMsg: "Please fill in the email field",
		},
		{name: "bad email", mutate: func(f *Form) { f.Email = "ada@example" }, wantMsg: "Please enter a valid email address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid
			tt.mutate(&f)
			err := f.Validate()
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, inputerr.Message(err))
		})
	}
}

func TestFromFields(t *testing.T) {
	f := FromFields(map[string]string{
		"name":    "Ada",
		"email":   "ada@example.com",
		"subject": "Hi",
		"message": "Hello",
		"extra":   "ignored",
	})

	assert.Equal(t, Form{Name: "Ada", Email: "ada@example.com", Subject: "Hi", Message: "Hello"}, f)
	assert.Equal(t, f, FromFields(f.Fields()))
	assert.True(t, Form{}.IsZero())
}
