package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/catalog_api/internal/events"
	"github.com/Skotchmaster/catalog_api/internal/hash"
	"github.com/Skotchmaster/catalog_api/internal/logging"
	"github.com/Skotchmaster/catalog_api/internal/models"
	"github.com/Skotchmaster/catalog_api/internal/repo"
	"github.com/Skotchmaster/catalog_api/internal/tokens"
)

const (
	TokenName = "api-token"
	TokenType = "Bearer"
)

type AuthService struct {
	Repo     *repo.GormRepo
	Secret   []byte
	TokenTTL time.Duration
	Events   events.Publisher
	Now      func() time.Time
}

// Principal is the authenticated caller: the user and the token row it presented.
type Principal struct {
	User    *models.User
	TokenID uint
}

type LoginResult struct {
	Token     string
	TokenType string
	ExpiresAt time.Time
	User      *models.User
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			hash.BurnCompare(password)
			l.Warn("login_failed", "status", 422, "reason", "unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 422, "reason", "wrong password", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	if n, err := s.Repo.PruneExpiredTokens(ctx, user.ID, now); err != nil {
		l.Warn("prune_tokens_failed", "user_id", user.ID, "error", err)
	} else if n > 0 {
		l.Debug("pruned_expired_tokens", "user_id", user.ID, "count", n)
	}

	jti := tokens.NewJTI()
	exp := now.Add(s.TokenTTL)
	raw, err := tokens.Sign(user.ID, jti, now, exp, s.Secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	row := &models.AuthToken{
		UserID:    user.ID,
		Name:      TokenName,
		JTI:       jti,
		TokenHash: tokens.Sha256Hex(raw),
		ExpiresAt: exp,
	}
	if err := s.Repo.CreateToken(ctx, row); err != nil {
		return nil, fmt.Errorf("store token: %w", err)
	}

	events.Emit(ctx, s.Events, events.Event{Type: events.UserLoggedIn, ActorID: user.ID, OccurredAt: now})
	l.Info("login_success", "user_id", user.ID, "token_id", row.ID)

	return &LoginResult{Token: raw, TokenType: TokenType, ExpiresAt: exp, User: user}, nil
}

// Logout revokes only the token the caller authenticated with.
func (s *AuthService) Logout(ctx context.Context, p *Principal) error {
	if p == nil || p.User == nil {
		return ErrUnauthenticated
	}
	l := logging.FromContext(ctx).With("svc", "auth.logout", "user_id", p.User.ID)

	if err := s.Repo.DeleteToken(ctx, p.TokenID); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("delete token: %w", err)
	}

	events.Emit(ctx, s.Events, events.Event{Type: events.UserLoggedOut, ActorID: p.User.ID})
	l.Info("logout_success", "token_id", p.TokenID)
	return nil
}

// CurrentUser resolves a raw bearer token. Any failure is ErrUnauthenticated;
// the cause is only logged.
func (s *AuthService) CurrentUser(ctx context.Context, raw string) (*Principal, error) {
	l := logging.FromContext(ctx).With("svc", "auth.current_user")

	claims, err := tokens.ClaimsFromToken(raw, s.Secret)
	if err != nil {
		l.Debug("token_rejected", "reason", "bad signature or claims", "error", err)
		return nil, ErrUnauthenticated
	}
	userID, err := claims.UserID()
	if err != nil {
		l.Debug("token_rejected", "reason", "bad subject")
		return nil, ErrUnauthenticated
	}

	row, err := s.Repo.GetTokenByJTI(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Debug("token_rejected", "reason", "revoked", "user_id", userID)
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("get token: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(row.TokenHash), []byte(tokens.Sha256Hex(raw))) != 1 ||
		row.UserID != userID || row.User == nil {
		l.Warn("token_rejected", "reason", "token does not match stored row", "token_id", row.ID)
		return nil, ErrUnauthenticated
	}

	now := s.now()
	if !row.ExpiresAt.After(now) {
		l.Debug("token_rejected", "reason", "expired", "token_id", row.ID)
		return nil, ErrUnauthenticated
	}

	if err := s.Repo.TouchToken(ctx, row.ID, now); err != nil {
		l.Warn("touch_token_failed", "token_id", row.ID, "error", err)
	}

	return &Principal{User: row.User, TokenID: row.ID}, nil
}
