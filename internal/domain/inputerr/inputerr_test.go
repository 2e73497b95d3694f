package inputerr

import (
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "validation", err: Validation("username", "please fill in all fields"), want: KindValidation},
		{name: "auth", err: &AuthError{}, want: KindAuth},
		{name: "format", err: Format("price", "abc", ""), want: KindFormat},
		{name: "wrapped format", err: errors.Wrap(Format("email", "a@b", ""), "submit contact"), want: KindFormat},
		{name: "plain error", err: errors.New("boom"), want: ""},
		{name: "nil", err: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestMessage_StripsWrapping(t *testing.T) {
	err := errors.Wrap(Validation("name", "Please fill in the name field"), "validate contact form")

	assert.Equal(t, "Please fill in the name field", Message(err))
	assert.Contains(t, err.Error(), "validate contact form")
}

func TestDefaultMessages(t *testing.T) {
	assert.Equal(t, "price is required", (&ValidationError{Field: "price"}).Error())
	assert.Equal(t, "invalid credentials", (&AuthError{}).Error())
	assert.Equal(t, `invalid price "12,00"`, (&FormatError{Field: "price", Value: "12,00"}).Error())
	assert.Equal(t, "", Message(nil))
}
