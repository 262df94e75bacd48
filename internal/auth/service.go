package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/smkpro/smkpro-backend/internal/merge"
	pkgauth "github.com/smkpro/smkpro-backend/pkg/auth"
	"github.com/smkpro/smkpro-backend/pkg/auth/session"
	"github.com/smkpro/smkpro-backend/pkg/config"
	"github.com/smkpro/smkpro-backend/pkg/db"
	"github.com/smkpro/smkpro-backend/pkg/db/models"
	pkgerrors "github.com/smkpro/smkpro-backend/pkg/errors"
	"github.com/smkpro/smkpro-backend/pkg/logger"
	"github.com/smkpro/smkpro-backend/pkg/security"
)

// rateLimiter is the redis surface used for login throttling.
type rateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// sessionManager is the refresh-token surface the service needs.
type sessionManager interface {
	Generate(ctx context.Context, userID string) (string, error)
	Rotate(ctx context.Context, userID, provided string) (string, error)
	Revoke(ctx context.Context, userID string) error
}

// Service covers account lifecycle: registration, login (which folds the
// guest cart into the account), token refresh and logout.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo     *Repository
	merger   merge.Service
	sessions sessionManager
	limiter  rateLimiter
	logger   *logger.Logger
	jwtCfg   config.JWTConfig
	rateCfg  config.AuthRateLimitConfig
	now      func() time.Time
}

// NewService builds the auth service. limiter may be nil to disable login
// throttling (tests).
func NewService(repo *Repository, merger merge.Service, sessions sessionManager, limiter rateLimiter, logg *logger.Logger, jwtCfg config.JWTConfig, rateCfg config.AuthRateLimitConfig) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user repo is required")
	}
	if merger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "merge service is required")
	}
	if sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session manager is required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{
		repo:     repo,
		merger:   merger,
		sessions: sessions,
		limiter:  limiter,
		logger:   logg,
		jwtCfg:   jwtCfg,
		rateCfg:  rateCfg,
		now:      time.Now,
	}, nil
}

// Register creates the account with a bcrypt password hash.
func (s *service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	hash, err := security.HashPassword(input.Password, bcrypt.DefaultCost)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid password")
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Phone:        strings.TrimSpace(input.Phone),
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if db.IsUniqueViolation(err, "users_email_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email is already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	s.logger.Info(s.logger.WithUserID(ctx, user.ID.String()), "user registered")
	return user, nil
}

// Login authenticates, merges the anonymous session's cart and wishlist
// into the account, then issues tokens. The merge runs before tokens are
// handed out so the first authenticated cart read already sees the merged
// lines; merge failures are logged but never block the login.
func (s *service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	if err := s.allowLogin(ctx, email, input.IP); err != nil {
		return nil, err
	}

	user, err := s.authenticate(ctx, email, input.Password)
	if err != nil {
		return nil, err
	}

	if input.SessionID != "" {
		if err := s.merger.Merge(ctx, input.SessionID, user.ID); err != nil {
			s.logger.Error(ctx, "guest cart merge failed during login", err)
		}
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info(s.logger.WithUserID(ctx, user.ID.String()), "user logged in")
	return &LoginResult{User: *user, Tokens: *tokens}, nil
}

// Refresh rotates the refresh token and mints a fresh access token. The
// expired access token is only used to identify the user; its signature is
// still verified.
func (s *service) Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error) {
	claims, err := pkgauth.ParseAccessTokenAllowExpired(s.jwtCfg, accessToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid access token")
	}

	rotated, err := s.sessions.Rotate(ctx, claims.UserID.String(), refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate refresh token")
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "unknown user")
	}

	access, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	return &TokenPair{AccessToken: access, RefreshToken: rotated}, nil
}

// Logout revokes the user's refresh token.
func (s *service) Logout(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if err := s.sessions.Revoke(ctx, userID.String()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke refresh token")
	}
	return nil
}

func (s *service) allowLogin(ctx context.Context, email, ip string) error {
	if s.limiter == nil {
		return nil
	}
	checks := []struct {
		scope string
		limit int64
	}{
		{scope: "login:email:" + email, limit: int64(s.rateCfg.LoginEmailLimit)},
		{scope: "login:ip:" + ip, limit: int64(s.rateCfg.LoginIPLimit)},
	}
	for _, check := range checks {
		if check.limit <= 0 || strings.HasSuffix(check.scope, ":") {
			continue
		}
		allowed, _, err := s.limiter.FixedWindowAllow(ctx, check.scope, check.limit, s.rateCfg.LoginWindow)
		if err != nil {
			// Redis being down should not lock everyone out.
			s.logger.Warn(ctx, fmt.Sprintf("login rate limit check failed: %v", err))
			continue
		}
		if !allowed {
			return pkgerrors.New(pkgerrors.CodeRateLimit, "too many login attempts")
		}
	}
	return nil
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	match, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !match {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}
	return user, nil
}

func (s *service) issueTokens(ctx context.Context, user *models.User) (*TokenPair, error) {
	access, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	refresh, err := s.sessions.Generate(ctx, user.ID.String())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store refresh token")
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
