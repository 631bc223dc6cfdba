package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/assinei/assinei-backend/internal/document"
	"github.com/assinei/assinei-backend/internal/models"
)

func TestService_CreateHashesPassword(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	u, err := svc.Create(ctx, CreateInput{Name: "Ana", Email: "Ana@Empresa.com", Password: "senhaforte1"})
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	require.Equal(t, "ana@empresa.com", u.Email, "email normalized to lower case")
	require.Equal(t, models.RoleUser, u.Role)
	require.NotEqual(t, "senhaforte1", u.PasswordHash)
	require.NotEmpty(t, u.PasswordHash)
}

func TestService_CreateDuplicateEmail(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Name: "Ana", Email: "ana@empresa.com", Password: "senhaforte1"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Name: "Outra", Email: "ana@empresa.com", Password: "senhaforte2"})
	require.ErrorIs(t, err, document.ErrConflict)
}

func TestService_Authenticate(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Name: "Ana", Email: "ana@empresa.com", Password: "senhaforte1"})
	require.NoError(t, err)

	u, err := svc.Authenticate(ctx, "ana@empresa.com", "senhaforte1")
	require.NoError(t, err)
	require.Equal(t, created.ID, u.ID)

	_, err = svc.Authenticate(ctx, "ana@empresa.com", "errada")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "ninguem@empresa.com", "senhaforte1")
	require.ErrorIs(t, err, ErrInvalidCredentials, "unknown email looks the same as a wrong password")
}

func TestService_Exists(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	u, err := svc.Create(ctx, CreateInput{Name: "Ana", Email: "ana@empresa.com", Password: "senhaforte1"})
	require.NoError(t, err)

	ok, err := svc.Exists(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = svc.Exists(ctx, "no-such-user")
	require.NoError(t, err)
	require.False(t, ok)
}
