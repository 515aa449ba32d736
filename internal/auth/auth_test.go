package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	a, err := New("admin", "s3cret", "test-signing-secret", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name     string
		username string
		password string
		wantErr  bool
	}{
		{"correct credentials", "admin", "s3cret", false},
		{"wrong password", "admin", "wrong", true},
		{"wrong username", "nobody", "s3cret", true},
		{"both wrong", "nobody", "wrong", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := a.Login(tt.username, tt.password)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCredentials)
				assert.Empty(t, token)
				return
			}
			assert.NoError(t, err)
			assert.NotEmpty(t, token)
		})
	}
}

func TestValidate(t *testing.T) {
	a, err := New("admin", "s3cret", "test-signing-secret", time.Hour)
	require.NoError(t, err)

	token, err := a.Login("admin", "s3cret")
	require.NoError(t, err)

	claims, err := a.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)

	_, err = a.Validate("not-a-token")
	assert.Error(t, err)

	_, err = a.Validate("")
	assert.Error(t, err)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	a, err := New("admin", "s3cret", "test-signing-secret", -time.Second)
	require.NoError(t, err)

	token, err := a.Login("admin", "s3cret")
	require.NoError(t, err)

	_, err = a.Validate(token)
	assert.Error(t, err)
}

func TestValidateRejectsTokenFromDifferentSecret(t *testing.T) {
	a, err := New("admin", "s3cret", "secret-one", time.Hour)
	require.NoError(t, err)
	token, err := a.Login("admin", "s3cret")
	require.NoError(t, err)

	b, err := New("admin", "s3cret", "secret-two", time.Hour)
	require.NoError(t, err)

	_, err = b.Validate(token)
	assert.Error(t, err)
}

func TestMaskURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"https host and path", "https://example.com/status", "https://e***/***"},
		{"http host only, no path", "http://example.com", "http://e***/***"},
		{"host only with slash path", "http://example.com/", "http://e***/***"},
		{"with query and fragment", "https://example.com/a?x=1#frag", "https://e***/***"},
		{"short multi-char host", "http://a.com/foo", "http://a***/***"},
		{"one-letter host", "http://a/foo", "http://*/***"},
		{"missing host", "not-a-url", "***"},
		{"empty string", "", "***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskURL(tt.in))
		})
	}
}
