package jwt_test

import (
	"testing"
	"time"

	"woreda_portal/internal/domain/models"
	jwtlib "woreda_portal/internal/lib/jwt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewToken(t *testing.T) {
	user := models.User{
		ID:       uuid.New(),
		Username: "admin",
		IsAdmin:  true,
	}
	secret := "test-secret"

	tokenString, err := jwtlib.NewToken(user, secret, time.Hour)
	require.NoError(t, err)

	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)

	assert.Equal(t, user.ID.String(), claims["uid"])
	assert.Equal(t, "admin", claims["username"])
	assert.Equal(t, true, claims["is_admin"])

	exp, ok := claims["exp"].(float64)
	require.True(t, ok)
	assert.InDelta(t, time.Now().Add(time.Hour).Unix(), int64(exp), 5)
}

func TestNewToken_WrongSecretRejected(t *testing.T) {
	user := models.User{ID: uuid.New(), Username: "admin"}

	tokenString, err := jwtlib.NewToken(user, "right-secret", time.Hour)
	require.NoError(t, err)

	_, err = jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte("wrong-secret"), nil
	})
	assert.Error(t, err)
}
