package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/campus-eats/appkit/pkg/errors"
)

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantErr  bool
	}{
		{"valid", "a@campus.ac.kr", "secret1", false},
		{"missing email", "", "secret1", true},
		{"missing password", "a@campus.ac.kr", "", true},
		{"short password", "a@campus.ac.kr", "12345", true},
		{"exactly six", "a@campus.ac.kr", "123456", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCredentials(tt.email, tt.password)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSignUpInput_Validate(t *testing.T) {
	valid := func() SignUpInput {
		return SignUpInput{
			Email:    "a@campus.ac.kr",
			Password: "secret1",
			UserID:   "alice01",
			Name:     "Alice",
			Phone:    "010-1234-5678",
		}
	}

	in := valid()
	require.NoError(t, in.Validate())

	in = valid()
	in.UserID = "   "
	assert.Error(t, in.Validate())

	in = valid()
	in.Name = ""
	assert.Error(t, in.Validate())

	in = valid()
	in.Phone = "\t"
	assert.Error(t, in.Validate())

	// Profile fields come back trimmed.
	in = valid()
	in.Name = "  Alice  "
	in.Phone = " 010-1234-5678 "
	require.NoError(t, in.Validate())
	assert.Equal(t, "Alice", in.Name)
	assert.Equal(t, "010-1234-5678", in.Phone)
}

type stubProvider struct {
	Provider
	user *User
}

func (s *stubProvider) CurrentUser() *User { return s.user }

func TestKeyFunc(t *testing.T) {
	p := &stubProvider{}
	key := KeyFunc(p)

	assert.Equal(t, GuestKey, key())

	p.user = &User{Email: "a@campus.ac.kr"}
	assert.Equal(t, "a@campus.ac.kr", key())

	p.user = nil
	assert.Equal(t, GuestKey, key())
}
