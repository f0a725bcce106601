package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-service/internal/model"
)

func signToken(t *testing.T, secret string, claims *Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestParseValidToken(t *testing.T) {
	parser := NewParser("test-secret")
	driverID := uuid.New()

	claims := &Claims{
		UserID:   uuid.New(),
		Role:     model.RoleDriver,
		DriverID: &driverID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	parsed, err := parser.Parse(signToken(t, "test-secret", claims))
	require.NoError(t, err)

	assert.Equal(t, claims.UserID, parsed.UserID)
	assert.Equal(t, model.RoleDriver, parsed.Role)
	require.NotNil(t, parsed.DriverID)
	assert.Equal(t, driverID, *parsed.DriverID)
}

func TestParseWrongSecret(t *testing.T) {
	parser := NewParser("test-secret")

	claims := &Claims{
		UserID: uuid.New(),
		Role:   model.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	_, err := parser.Parse(signToken(t, "other-secret", claims))
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseExpiredToken(t *testing.T) {
	parser := NewParser("test-secret")

	claims := &Claims{
		UserID: uuid.New(),
		Role:   model.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}

	_, err := parser.Parse(signToken(t, "test-secret", claims))
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseGarbage(t *testing.T) {
	parser := NewParser("test-secret")

	_, err := parser.Parse("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}
