package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fake repo for testing
type fakeRepo struct {
	store map[string]*Session
}

func (f *fakeRepo) Create(ctx context.Context, s *Session) error {
	if f.store == nil {
		f.store = map[string]*Session{}
	}
	f.store[s.RefreshToken] = s
	return nil
}

func (f *fakeRepo) GetByRefresh(ctx context.Context, refresh string) (*Session, error) {
	s, ok := f.store[refresh]
	if !ok {
		return nil, nil
	}
	return s, nil
}

func (f *fakeRepo) DeleteByRefresh(ctx context.Context, refresh string) error {
	delete(f.store, refresh)
	return nil
}

func (f *fakeRepo) DeleteByUser(ctx context.Context, userID string) error {
	for tok, s := range f.store {
		if s.UserID == userID {
			delete(f.store, tok)
		}
	}
	return nil
}

func TestCreateAndValidateSession(t *testing.T) {
	svc := NewService(&fakeRepo{})
	ctx := context.Background()

	r, err := svc.CreateSession(ctx, "u1", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, r)

	sess, err := svc.ValidateRefresh(ctx, r)
	require.NoError(t, err)
	require.NotNil(t, sess)
	require.Equal(t, "u1", sess.UserID)

	require.NoError(t, svc.DeleteRefresh(ctx, r))
	sess, err = svc.ValidateRefresh(ctx, r)
	require.NoError(t, err)
	require.Nil(t, sess)
}

func TestValidateRefresh_Expired(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &Session{
		RefreshToken: "old",
		UserID:       "u1",
		ExpiresAt:    time.Now().UTC().Add(-time.Minute),
	}))

	sess, err := svc.ValidateRefresh(ctx, "old")
	require.NoError(t, err)
	require.Nil(t, sess)
	require.NotContains(t, repo.store, "old", "expired session cleaned up")
}

func TestRotate(t *testing.T) {
	svc := NewService(&fakeRepo{})
	ctx := context.Background()

	old, err := svc.CreateSession(ctx, "u1", time.Hour)
	require.NoError(t, err)

	sess, fresh, err := svc.Rotate(ctx, old, time.Hour)
	require.NoError(t, err)
	require.NotNil(t, sess)
	require.Equal(t, "u1", sess.UserID)
	require.NotEmpty(t, fresh)
	require.NotEqual(t, old, fresh)

	// old token is dead, new one works
	got, err := svc.ValidateRefresh(ctx, old)
	require.NoError(t, err)
	require.Nil(t, got)
	got, err = svc.ValidateRefresh(ctx, fresh)
	require.NoError(t, err)
	require.NotNil(t, got)

	// rotating a dead token fails closed
	sess, fresh, err = svc.Rotate(ctx, old, time.Hour)
	require.NoError(t, err)
	require.Nil(t, sess)
	require.Empty(t, fresh)
}
