package service

import (
	"context"
	"testing"

	"github.com/PauloRoberto1224/gestaocontratopy/internal/config"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/dto"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAuthConfig() *config.Config {
	return &config.Config{
		JWTSecret:          "test-secret-key-for-unit-tests",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		DefaultPhoneRegion: "BR",
	}
}

func newAuthFixture(t *testing.T) (AuthService, *stubUserRepo) {
	t.Helper()
	repo := newStubUserRepo()
	svc := NewAuthService(repo, testAuthConfig())
	email := "ana@example.com"
	_, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Username: "ana", Name: "Ana Lima", Email: &email, Password: "s3cret-pass", Role: model.RoleManager,
	})
	require.NoError(t, err)
	return svc, repo
}

func TestLogin_ByUsernameAndEmail(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	resp, err := svc.Login(ctx, dto.LoginRequest{Username: "ana", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 8*3600, resp.ExpiresIn)
	assert.Equal(t, model.RoleManager, resp.User.Role)

	token, err := jwt.Parse(resp.AccessToken, func(*jwt.Token) (interface{}, error) {
		return []byte(testAuthConfig().JWTSecret), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "manager", claims["role"])
	assert.Equal(t, "ana", claims["username"])

	_, err = svc.Login(ctx, dto.LoginRequest{Username: "ANA@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
}

func TestLogin_WrongPasswordOrInactive(t *testing.T) {
	svc, repo := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, dto.LoginRequest{Username: "ana", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	for id := range repo.users {
		require.NoError(t, svc.DeactivateUser(ctx, id))
	}
	_, err = svc.Login(ctx, dto.LoginRequest{Username: "ana", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefresh(t *testing.T) {
	svc, repo := newAuthFixture(t)
	ctx := context.Background()
	login, err := svc.Login(ctx, dto.LoginRequest{Username: "ana", Password: "s3cret-pass"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = svc.Refresh(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	for id := range repo.users {
		require.NoError(t, repo.SoftDelete(ctx, id))
	}
	_, err = svc.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCreateUser_NormalizesPhone(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, dto.CreateUserRequest{
		Username: "caio", Name: "Caio Reis", Phone: strPtr("(11) 98765-4321"), Password: "another-pass", Role: model.RoleViewer,
	})
	require.NoError(t, err)
	require.NotNil(t, u.Phone)
	assert.Equal(t, "+5511987654321", *u.Phone)

	_, err = svc.CreateUser(ctx, dto.CreateUserRequest{
		Username: "duda", Name: "Duda", Phone: strPtr("123"), Password: "another-pass", Role: model.RoleViewer,
	})
	requireValidation(t, err, "phone")

	_, err = svc.CreateUser(ctx, dto.CreateUserRequest{Username: "caio", Name: "Caio 2", Password: "another-pass", Role: model.RoleViewer})
	requireValidation(t, err, "username")
}

func TestUpdateUser(t *testing.T) {
	svc, repo := newAuthFixture(t)
	ctx := context.Background()
	var id uuid.UUID
	for k := range repo.users {
		id = k
	}

	u, err := svc.UpdateUser(ctx, id, dto.UpdateUserRequest{Role: model.RoleAdmin, Phone: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, u.Role)
	assert.Nil(t, u.Phone)

	_, err = svc.UpdateUser(ctx, uuid.New(), dto.UpdateUserRequest{})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.DeactivateUser(ctx, id))
	list, err := svc.ListUsers(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, list)
	require.NoError(t, svc.ReactivateUser(ctx, id))
	list, err = svc.ListUsers(ctx, false)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
