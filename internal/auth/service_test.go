package auth

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/smkpro/smkpro-backend/internal/cart"
	"github.com/smkpro/smkpro-backend/internal/identity"
	"github.com/smkpro/smkpro-backend/internal/merge"
	"github.com/smkpro/smkpro-backend/internal/wishlist"
	pkgauth "github.com/smkpro/smkpro-backend/pkg/auth"
	"github.com/smkpro/smkpro-backend/pkg/auth/session"
	"github.com/smkpro/smkpro-backend/pkg/config"
	"github.com/smkpro/smkpro-backend/pkg/db"
	"github.com/smkpro/smkpro-backend/pkg/db/models"
	pkgerrors "github.com/smkpro/smkpro-backend/pkg/errors"
	"github.com/smkpro/smkpro-backend/pkg/logger"
)

type stubSessionManager struct {
	refreshToken string
	stored       string
	revoked      []string
}

func (s *stubSessionManager) Generate(ctx context.Context, userID string) (string, error) {
	s.stored = s.refreshToken
	return s.refreshToken, nil
}

func (s *stubSessionManager) Rotate(ctx context.Context, userID, provided string) (string, error) {
	if provided != s.stored {
		return "", session.ErrInvalidRefreshToken
	}
	s.stored = s.refreshToken + "-rotated"
	return s.stored, nil
}

func (s *stubSessionManager) Revoke(ctx context.Context, userID string) error {
	s.revoked = append(s.revoked, userID)
	return nil
}

type stubLimiter struct {
	allowed bool
	err     error
}

func (s *stubLimiter) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	return s.allowed, 0, s.err
}

type authFixture struct {
	conn     *gorm.DB
	svc      Service
	sessions *stubSessionManager
	cartRepo *cart.Repository
	jwtCfg   config.JWTConfig
}

func setupAuthTest(t *testing.T, limiter rateLimiter) *authFixture {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(
		&models.User{}, &models.Product{}, &models.Variation{},
		&models.CartItem{}, &models.WishlistItem{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	cartRepo := cart.NewRepository(conn)
	merger, err := merge.NewService(db.NewWithConn(conn), cartRepo, wishlist.NewRepository(conn), logg, nil)
	if err != nil {
		t.Fatalf("merge service: %v", err)
	}

	sessions := &stubSessionManager{refreshToken: "refresh-token"}
	jwtCfg := config.JWTConfig{Secret: "secret", Issuer: "smkpro", ExpirationMinutes: 30}
	rateCfg := config.AuthRateLimitConfig{LoginWindow: time.Minute, LoginEmailLimit: 5, LoginIPLimit: 20}

	svc, err := NewService(NewRepository(conn), merger, sessions, limiter, logg, jwtCfg, rateCfg)
	if err != nil {
		t.Fatalf("auth service: %v", err)
	}
	return &authFixture{conn: conn, svc: svc, sessions: sessions, cartRepo: cartRepo, jwtCfg: jwtCfg}
}

func (f *authFixture) register(t *testing.T, email, password string) *models.User {
	t.Helper()
	user, err := f.svc.Register(context.Background(), RegisterInput{
		Email:     email,
		Password:  password,
		FirstName: "Asha",
		LastName:  "K",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return user
}

func TestRegisterAndLogin(t *testing.T) {
	f := setupAuthTest(t, nil)
	f.register(t, "Asha@Example.com", "strong-password")

	result, err := f.svc.Login(context.Background(), LoginInput{
		Email:    "asha@example.com",
		Password: "strong-password",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Tokens.RefreshToken != "refresh-token" {
		t.Fatalf("unexpected refresh token %q", result.Tokens.RefreshToken)
	}

	claims, err := pkgauth.ParseAccessToken(f.jwtCfg, result.Tokens.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != result.User.ID {
		t.Fatalf("claims user mismatch")
	}
	if claims.Email != "asha@example.com" {
		t.Fatalf("expected lowercased email claim, got %q", claims.Email)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := setupAuthTest(t, nil)
	f.register(t, "asha@example.com", "strong-password")

	_, err := f.svc.Register(context.Background(), RegisterInput{
		Email:    "asha@example.com",
		Password: "another-password",
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	f := setupAuthTest(t, nil)
	f.register(t, "asha@example.com", "strong-password")

	_, err := f.svc.Login(context.Background(), LoginInput{
		Email:    "asha@example.com",
		Password: "wrong",
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	f := setupAuthTest(t, nil)

	_, err := f.svc.Login(context.Background(), LoginInput{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginInactiveAccount(t *testing.T) {
	f := setupAuthTest(t, nil)
	user := f.register(t, "asha@example.com", "strong-password")
	if err := f.conn.Model(&models.User{}).
		Where("id = ?", user.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	_, err := f.svc.Login(context.Background(), LoginInput{
		Email:    "asha@example.com",
		Password: "strong-password",
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginMergesGuestCart(t *testing.T) {
	f := setupAuthTest(t, nil)
	user := f.register(t, "asha@example.com", "strong-password")

	product := &models.Product{Name: "shirt", Slug: "shirt", IsAvailable: true, Stock: 5}
	if err := f.conn.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	guest, _ := identity.Session("guest-1")
	line := &models.CartItem{
		OwnerKey:  guest.OwnerKey(),
		ProductID: product.ID,
		Quantity:  2,
		IsActive:  true,
	}
	if err := f.conn.Create(line).Error; err != nil {
		t.Fatalf("seed cart line: %v", err)
	}

	_, err := f.svc.Login(context.Background(), LoginInput{
		Email:     "asha@example.com",
		Password:  "strong-password",
		SessionID: "guest-1",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	owner, _ := identity.User(user.ID)
	lines, err := f.cartRepo.ListActiveByOwner(context.Background(), owner.OwnerKey())
	if err != nil {
		t.Fatalf("list cart: %v", err)
	}
	if len(lines) != 1 || lines[0].Quantity != 2 {
		t.Fatalf("expected merged cart line, got %+v", lines)
	}
}

func TestLoginRateLimited(t *testing.T) {
	f := setupAuthTest(t, &stubLimiter{allowed: false})
	f.register(t, "asha@example.com", "strong-password")

	_, err := f.svc.Login(context.Background(), LoginInput{
		Email:    "asha@example.com",
		Password: "strong-password",
		IP:       "10.0.0.1",
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeRateLimit) {
		t.Fatalf("expected rate limit, got %v", err)
	}
}

func TestLoginLimiterFailureIsNotFatal(t *testing.T) {
	f := setupAuthTest(t, &stubLimiter{err: errors.New("redis down")})
	f.register(t, "asha@example.com", "strong-password")

	if _, err := f.svc.Login(context.Background(), LoginInput{
		Email:    "asha@example.com",
		Password: "strong-password",
		IP:       "10.0.0.1",
	}); err != nil {
		t.Fatalf("expected login to survive limiter outage, got %v", err)
	}
}

func TestRefreshRotatesTokens(t *testing.T) {
	f := setupAuthTest(t, nil)
	f.register(t, "asha@example.com", "strong-password")

	result, err := f.svc.Login(context.Background(), LoginInput{
		Email:    "asha@example.com",
		Password: "strong-password",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	pair, err := f.svc.Refresh(context.Background(), result.Tokens.AccessToken, result.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if pair.RefreshToken != "refresh-token-rotated" {
		t.Fatalf("unexpected rotated token %q", pair.RefreshToken)
	}
	if _, err := pkgauth.ParseAccessToken(f.jwtCfg, pair.AccessToken); err != nil {
		t.Fatalf("parse new access token: %v", err)
	}

	_, err = f.svc.Refresh(context.Background(), result.Tokens.AccessToken, result.Tokens.RefreshToken)
	if !pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected stale refresh to be rejected, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	f := setupAuthTest(t, nil)
	user := f.register(t, "asha@example.com", "strong-password")

	if err := f.svc.Logout(context.Background(), user.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(f.sessions.revoked) != 1 || f.sessions.revoked[0] != user.ID.String() {
		t.Fatalf("expected revoke for %s, got %v", user.ID, f.sessions.revoked)
	}
}

func TestLogoutRequiresUser(t *testing.T) {
	f := setupAuthTest(t, nil)
	if err := f.svc.Logout(context.Background(), uuid.Nil); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
