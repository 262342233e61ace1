package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/univertix/ouvidoria-backend/internal/config"
	"github.com/univertix/ouvidoria-backend/internal/dto"
	"github.com/univertix/ouvidoria-backend/internal/models"
	"github.com/univertix/ouvidoria-backend/internal/services"
)

func newAuthService(t *testing.T) *services.AuthService {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:        "test-signing-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: 7 * 24 * time.Hour,
	}
	return services.NewAuthService(testDB(t), cfg)
}

func registerRequest() *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Email:    "maria@univertix.edu",
		Password: "correct horse",
		FullName: "Maria Souza",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAuthService(t)

	reg, err := svc.Register(registerRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, reg.AccessToken)
	assert.NotEmpty(t, reg.RefreshToken)
	assert.Equal(t, "maria@univertix.edu", reg.User.Email)
	assert.Equal(t, models.RoleUser, reg.User.Role)

	login, err := svc.Login(&dto.LoginRequest{Email: "maria@univertix.edu", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)

	_, err = svc.Login(&dto.LoginRequest{Email: "maria@univertix.edu", Password: "wrong horse"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	_, err = svc.Login(&dto.LoginRequest{Email: "nobody@univertix.edu", Password: "correct horse"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestRegister_DuplicateEmailRejected(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.Register(registerRequest())
	require.NoError(t, err)

	_, err = svc.Register(registerRequest())
	assert.ErrorIs(t, err, services.ErrEmailTaken)
}

func TestRegister_ShortPasswordRejected(t *testing.T) {
	svc := newAuthService(t)

	req := registerRequest()
	req.Password = "short"
	_, err := svc.Register(req)
	assert.Error(t, err)
}

func TestRefresh_RotatesToken(t *testing.T) {
	svc := newAuthService(t)

	reg, err := svc.Register(registerRequest())
	require.NoError(t, err)

	refreshed, err := svc.Refresh(&dto.RefreshRequest{RefreshToken: reg.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.NotEqual(t, reg.RefreshToken, refreshed.RefreshToken)

	// the spent token is revoked on rotation
	_, err = svc.Refresh(&dto.RefreshRequest{RefreshToken: reg.RefreshToken})
	assert.ErrorIs(t, err, services.ErrInvalidToken)

	_, err = svc.Refresh(&dto.RefreshRequest{RefreshToken: refreshed.RefreshToken})
	assert.NoError(t, err)
}

func TestLogout_RevokesRefreshToken(t *testing.T) {
	svc := newAuthService(t)

	reg, err := svc.Register(registerRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Logout(&dto.LogoutRequest{RefreshToken: reg.RefreshToken}))

	_, err = svc.Refresh(&dto.RefreshRequest{RefreshToken: reg.RefreshToken})
	assert.ErrorIs(t, err, services.ErrInvalidToken)
}
