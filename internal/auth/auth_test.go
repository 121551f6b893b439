package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage/memory"
)

func newTestAuthenticator() *PasswordAuthenticator {
	a := NewPasswordAuthenticator(memory.New())
	a.cost = bcrypt.MinCost
	return a
}

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	a := newTestAuthenticator()

	user, err := a.Register(ctx, "  Alice@Example.com ", "Alice", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "correct horse", user.PasswordHash)

	got, err := a.Authenticate(ctx, "alice@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	byID, err := a.User(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", byID.DisplayName)
}

func TestRegisterErrors(t *testing.T) {
	ctx := context.Background()
	a := newTestAuthenticator()

	_, err := a.Register(ctx, "bob@example.com", "Bob", "short")
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = a.Register(ctx, "bob@example.com", "Bob", "long enough")
	require.NoError(t, err)
	_, err = a.Register(ctx, "BOB@example.com", "Bobby", "long enough")
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestAuthenticateFailures(t *testing.T) {
	ctx := context.Background()
	a := newTestAuthenticator()
	_, err := a.Register(ctx, "carol@example.com", "Carol", "password123")
	require.NoError(t, err)

	_, err = a.Authenticate(ctx, "carol@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = a.Authenticate(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	user := models.NewUser("dave@example.com", "Dave", "hash")

	token, err := m.Generate(user)
	require.NoError(t, err)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "dave@example.com", claims.Email)
	assert.Equal(t, user.ID, claims.Subject)
}

func TestJWTRejects(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	user := models.NewUser("erin@example.com", "Erin", "hash")

	tests := []struct {
		name  string
		token func(t *testing.T) string
	}{
		{
			name: "garbage",
			token: func(t *testing.T) string {
				return "not-a-token"
			},
		},
		{
			name: "wrong secret",
			token: func(t *testing.T) string {
				token, err := NewJWTManager("other-secret", time.Hour).Generate(user)
				require.NoError(t, err)
				return token
			},
		},
		{
			name: "expired",
			token: func(t *testing.T) string {
				old := NewJWTManager("test-secret", time.Minute)
				old.now = func() time.Time { return time.Now().Add(-time.Hour) }
				token, err := old.Generate(user)
				require.NoError(t, err)
				return token
			},
		},
		{
			name: "wrong algorithm",
			token: func(t *testing.T) string {
				token := jwt.NewWithClaims(jwt.SigningMethodHS512, &Claims{
					UserID:           user.ID,
					RegisteredClaims: jwt.RegisteredClaims{Issuer: tokenIssuer},
				})
				signed, err := token.SignedString([]byte("test-secret"))
				require.NoError(t, err)
				return signed
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Validate(tt.token(t))
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
