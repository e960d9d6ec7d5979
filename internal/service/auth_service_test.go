package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/hostel-issues/internal/auth"
	"github.com/spec-kit/hostel-issues/internal/config"
	"github.com/spec-kit/hostel-issues/internal/domain"
	apperrors "github.com/spec-kit/hostel-issues/pkg/util/errorutil"
)

func newTestAuthService(users *userRepoMock) (*AuthService, *auth.TokenManager) {
	tokens := auth.NewTokenManager("test-secret", 15)
	return NewAuthService(config.AuthConfig{BcryptCost: 4}, users, tokens), tokens
}

func TestAuthService_Register(t *testing.T) {
	users := &userRepoMock{
		GetByEmailFunc: func(context.Context, string) (*domain.User, error) { return nil, pgx.ErrNoRows },
	}
	var created *domain.User
	users.CreateFunc = func(_ context.Context, u *domain.User) error {
		u.ID = "u-1"
		created = u
		return nil
	}
	svc, tokens := newTestAuthService(users)

	session, err := svc.Register(context.Background(), RegisterInput{
		Name:     " Asha ",
		Email:    "Asha@Example.com",
		Password: "secret1",
		Room:     ptr(" 201 "),
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "asha@example.com", created.Email)
	assert.Equal(t, domain.RoleResident, created.Role)
	assert.Equal(t, "201", *created.Room)
	assert.NotEqual(t, "secret1", created.PasswordHash)

	claims, err := tokens.ParseToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.Subject)
	assert.Equal(t, domain.RoleResident, claims.Role)
}

func TestAuthService_Register_Rejections(t *testing.T) {
	existing := &domain.User{ID: "u-1", Email: "asha@example.com"}
	tests := []struct {
		name     string
		input    RegisterInput
		wantCode string
	}{
		{name: "missing name", input: RegisterInput{Email: "a@b.co", Password: "secret1"}, wantCode: apperrors.CodeInvalidArgument},
		{name: "bad email", input: RegisterInput{Name: "A", Email: "nope", Password: "secret1"}, wantCode: apperrors.CodeInvalidArgument},
		{name: "short password", input: RegisterInput{Name: "A", Email: "a@b.co", Password: "123"}, wantCode: apperrors.CodeInvalidArgument},
		{name: "email taken", input: RegisterInput{Name: "A", Email: "ASHA@example.com", Password: "secret1"}, wantCode: apperrors.CodeConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &userRepoMock{
				GetByEmailFunc: func(context.Context, string) (*domain.User, error) { return existing, nil },
			}
			svc, _ := newTestAuthService(users)
			_, err := svc.Register(context.Background(), tt.input)
			assert.True(t, apperrors.HasCode(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	hash, err := auth.HashPassword("secret1", 4)
	require.NoError(t, err)
	user := &domain.User{ID: "u-1", Name: "Meera", Email: "meera@example.com", PasswordHash: hash, Role: domain.RoleStaff}
	users := &userRepoMock{
		GetByEmailFunc: func(_ context.Context, email string) (*domain.User, error) {
			if email == user.Email {
				return user, nil
			}
			return nil, pgx.ErrNoRows
		},
	}
	svc, tokens := newTestAuthService(users)

	session, err := svc.Login(context.Background(), " MEERA@example.com", "secret1")
	require.NoError(t, err)
	claims, err := tokens.ParseToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStaff, claims.Role)

	_, err = svc.Login(context.Background(), "meera@example.com", "wrong-pass")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))

	_, err = svc.Login(context.Background(), "ghost@example.com", "secret1")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
}
