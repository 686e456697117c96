package services

import (
	"testing"

	"rental-pricing-api/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthService() *AuthService {
	return NewAuthService(config.JWTConfig{
		Secret:      "test-secret-key",
		ExpiryHours: 24,
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestAuthService()

	token, err := svc.GenerateToken("dashboard", ScopePredict)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "dashboard", claims.Service)
	assert.Equal(t, ScopePredict, claims.Scope)
	assert.Equal(t, "dashboard", claims.Subject)
	assert.NotNil(t, claims.ExpiresAt)
	assert.NotNil(t, claims.IssuedAt)
}

func TestValidateTokenInvalid(t *testing.T) {
	svc := newTestAuthService()

	_, err := svc.ValidateToken("invalid.token.string")
	assert.Error(t, err)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	svc1 := NewAuthService(config.JWTConfig{Secret: "secret-1", ExpiryHours: 24})
	svc2 := NewAuthService(config.JWTConfig{Secret: "secret-2", ExpiryHours: 24})

	token, err := svc1.GenerateToken("dashboard", ScopePredict)
	require.NoError(t, err)

	_, err = svc2.ValidateToken(token)
	assert.Error(t, err)
}

func TestAuthorizeScope(t *testing.T) {
	svc := newTestAuthService()

	good, _ := svc.GenerateToken("dashboard", ScopePredict)
	_, err := svc.Authorize(good, ScopePredict)
	assert.NoError(t, err)

	other, _ := svc.GenerateToken("dashboard", "preview")
	_, err = svc.Authorize(other, ScopePredict)
	require.Error(t, err)
	assert.Equal(t, KindUnauthorized, KindOf(err))

	_, err = svc.Authorize("garbage", ScopePredict)
	assert.Equal(t, KindUnauthorized, KindOf(err))
}

func TestDisabledAuthService(t *testing.T) {
	svc := NewAuthService(config.JWTConfig{})
	assert.False(t, svc.Enabled())

	_, err := svc.GenerateToken("dashboard", ScopePredict)
	assert.Error(t, err)

	var nilSvc *AuthService
	assert.False(t, nilSvc.Enabled())
}
