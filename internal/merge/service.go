package merge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/smkpro/smkpro-backend/internal/cart"
	"github.com/smkpro/smkpro-backend/internal/identity"
	"github.com/smkpro/smkpro-backend/internal/wishlist"
	"github.com/smkpro/smkpro-backend/pkg/db"
	"github.com/smkpro/smkpro-backend/pkg/db/models"
	pkgerrors "github.com/smkpro/smkpro-backend/pkg/errors"
	"github.com/smkpro/smkpro-backend/pkg/logger"
	"github.com/smkpro/smkpro-backend/pkg/metrics"
)

// Service folds an anonymous session's cart and wishlist into a user's
// on login. Best effort: each line migrates in its own transaction and a
// failed line never blocks the rest.
type Service interface {
	Merge(ctx context.Context, sessionID string, userID uuid.UUID) error
}

type service struct {
	client    *db.Client
	cartRepo  *cart.Repository
	wishRepo  *wishlist.Repository
	logger    *logger.Logger
	collector *metrics.StorefrontMetrics
}

// NewService builds the merge service.
func NewService(client *db.Client, cartRepo *cart.Repository, wishRepo *wishlist.Repository, logg *logger.Logger, collector *metrics.StorefrontMetrics) (Service, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "db client is required")
	}
	if cartRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart repo is required")
	}
	if wishRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist repo is required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{
		client:    client,
		cartRepo:  cartRepo,
		wishRepo:  wishRepo,
		logger:    logg,
		collector: collector,
	}, nil
}

// Merge migrates every session-owned cart line and wishlist like to the
// user. Per-line failures are collected and returned together so the caller
// can log them; a partially merged cart is still a usable cart.
func (s *service) Merge(ctx context.Context, sessionID string, userID uuid.UUID) error {
	guest, err := identity.Session(sessionID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid session identity")
	}
	user, err := identity.User(userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user identity")
	}

	start := time.Now()
	ctx = s.logger.WithFields(ctx, map[string]any{
		"session_id": sessionID,
		"user_id":    userID.String(),
	})

	merged := multierr.Append(
		s.mergeCart(ctx, guest, user),
		s.mergeWishlist(ctx, guest, user),
	)

	s.collector.IncCartsMerged()
	s.collector.ObserveMergeDuration(time.Since(start))

	if merged != nil {
		s.logger.Error(ctx, "cart merge completed with failures", merged)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, merged, "merge carried over with failures")
	}
	s.logger.Info(ctx, "guest cart merged into user cart")
	return nil
}

func (s *service) mergeCart(ctx context.Context, guest, user identity.Identity) error {
	lines, err := s.cartRepo.ListActiveByOwner(ctx, guest.OwnerKey())
	if err != nil {
		return fmt.Errorf("list guest cart lines: %w", err)
	}

	var merged error
	for _, line := range lines {
		if err := s.mergeCartLine(ctx, line, user); err != nil {
			merged = multierr.Append(merged, fmt.Errorf("cart line %s: %w", line.ID, err))
		}
	}
	return merged
}

// mergeCartLine moves one guest line to the user. When the user already
// carries the same (product, variation set) line the quantities are summed
// and the guest row deleted; otherwise the row is re-owned in place. A
// unique violation on re-own means a matching user line landed concurrently,
// so the move retries once as sum-and-delete.
func (s *service) mergeCartLine(ctx context.Context, line models.CartItem, user identity.Identity) error {
	return s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.cartRepo.WithTx(tx)

		target, err := repo.FindActiveLine(ctx, user.OwnerKey(), line.ProductID, line.VariationHash)
		switch {
		case err == nil:
			return s.sumAndDelete(ctx, repo, line, target)
		case errors.Is(err, gorm.ErrRecordNotFound):
			// fall through to re-own
		default:
			return fmt.Errorf("find user cart line: %w", err)
		}

		if err := repo.ReassignOwner(ctx, line.ID, user.OwnerKey()); err != nil {
			if db.IsUniqueViolation(err, "cart_items_owner_product_variation_key") {
				target, lookupErr := repo.FindActiveLine(ctx, user.OwnerKey(), line.ProductID, line.VariationHash)
				if lookupErr != nil {
					return fmt.Errorf("reload user cart line after conflict: %w", lookupErr)
				}
				return s.sumAndDelete(ctx, repo, line, target)
			}
			return fmt.Errorf("reassign cart line owner: %w", err)
		}
		s.collector.IncMergedLine("reowned")
		return nil
	})
}

func (s *service) sumAndDelete(ctx context.Context, repo *cart.Repository, guest models.CartItem, target *models.CartItem) error {
	if err := repo.AddQuantity(ctx, target.ID, guest.Quantity); err != nil {
		return fmt.Errorf("sum cart quantities: %w", err)
	}
	if err := repo.Delete(ctx, guest.ID); err != nil {
		return fmt.Errorf("delete merged guest line: %w", err)
	}
	s.collector.IncMergedLine("summed")
	return nil
}

func (s *service) mergeWishlist(ctx context.Context, guest, user identity.Identity) error {
	likes, err := s.wishRepo.ListByOwner(ctx, guest.OwnerKey())
	if err != nil {
		return fmt.Errorf("list guest wishlist: %w", err)
	}

	var merged error
	for _, like := range likes {
		if err := s.mergeWishlistLike(ctx, like, user); err != nil {
			merged = multierr.Append(merged, fmt.Errorf("wishlist item %s: %w", like.ID, err))
		}
	}
	return merged
}

// mergeWishlistLike re-owns the like unless the user already has one for
// the product, in which case the guest row is simply dropped.
func (s *service) mergeWishlistLike(ctx context.Context, like models.WishlistItem, user identity.Identity) error {
	return s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.wishRepo.WithTx(tx)

		exists, err := repo.Exists(ctx, user.OwnerKey(), like.ProductID)
		if err != nil {
			return fmt.Errorf("check user wishlist: %w", err)
		}
		if exists {
			return repo.Delete(ctx, like.ID)
		}

		if err := repo.ReassignOwner(ctx, like.ID, user.OwnerKey()); err != nil {
			if db.IsUniqueViolation(err, "wishlist_items_owner_product_key") {
				return repo.Delete(ctx, like.ID)
			}
			return fmt.Errorf("reassign wishlist owner: %w", err)
		}
		return nil
	})
}
