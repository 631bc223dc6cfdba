package sessions

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Service wraps repository operations with refresh token lifecycle logic.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service { return &Service{repo: r} }

func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// CreateSession stores a new refresh session and returns the refresh token.
func (s *Service) CreateSession(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	tok, err := newToken()
	if err != nil {
		return "", err
	}
	sess := &Session{
		RefreshToken: tok,
		UserID:       userID,
		ExpiresAt:    time.Now().UTC().Add(ttl),
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return "", err
	}
	return tok, nil
}

// ValidateRefresh returns the session when the refresh token is known and not
// expired, and (nil, nil) otherwise.
func (s *Service) ValidateRefresh(ctx context.Context, refresh string) (*Session, error) {
	sess, err := s.repo.GetByRefresh(ctx, refresh)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}
	if time.Now().UTC().After(sess.ExpiresAt) {
		_ = s.repo.DeleteByRefresh(ctx, refresh)
		return nil, nil
	}
	return sess, nil
}

// Rotate invalidates the old refresh token and issues a fresh one for the
// same user. Returns (nil session, "", nil) when the old token was invalid.
func (s *Service) Rotate(ctx context.Context, refresh string, ttl time.Duration) (*Session, string, error) {
	sess, err := s.ValidateRefresh(ctx, refresh)
	if err != nil || sess == nil {
		return nil, "", err
	}
	if err := s.repo.DeleteByRefresh(ctx, refresh); err != nil {
		return nil, "", err
	}
	tok, err := s.CreateSession(ctx, sess.UserID, ttl)
	if err != nil {
		return nil, "", err
	}
	return sess, tok, nil
}

func (s *Service) DeleteRefresh(ctx context.Context, refresh string) error {
	return s.repo.DeleteByRefresh(ctx, refresh)
}

// DeleteAllForUser drops every refresh session of the account.
func (s *Service) DeleteAllForUser(ctx context.Context, userID string) error {
	return s.repo.DeleteByUser(ctx, userID)
}
