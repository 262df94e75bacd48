package merge

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/smkpro/smkpro-backend/internal/cart"
	"github.com/smkpro/smkpro-backend/internal/identity"
	"github.com/smkpro/smkpro-backend/internal/variations"
	"github.com/smkpro/smkpro-backend/internal/wishlist"
	"github.com/smkpro/smkpro-backend/pkg/db"
	"github.com/smkpro/smkpro-backend/pkg/db/models"
	"github.com/smkpro/smkpro-backend/pkg/logger"
)

type mergeFixture struct {
	conn     *gorm.DB
	svc      Service
	cartRepo *cart.Repository
	wishRepo *wishlist.Repository
}

func setupMergeTest(t *testing.T) *mergeFixture {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Product{}, &models.Variation{}, &models.CartItem{}, &models.WishlistItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cartRepo := cart.NewRepository(conn)
	wishRepo := wishlist.NewRepository(conn)
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	svc, err := NewService(db.NewWithConn(conn), cartRepo, wishRepo, logg, nil)
	if err != nil {
		t.Fatalf("merge service: %v", err)
	}
	return &mergeFixture{conn: conn, svc: svc, cartRepo: cartRepo, wishRepo: wishRepo}
}

func (f *mergeFixture) seedProduct(t *testing.T, name string) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:        name,
		Slug:        name,
		Price:       decimal.RequireFromString("100.00"),
		Stock:       50,
		Weight:      decimal.RequireFromString("1.00"),
		IsAvailable: true,
	}
	if err := f.conn.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func (f *mergeFixture) seedCartLine(t *testing.T, owner identity.Identity, product *models.Product, sel variations.Selection, qty int) {
	t.Helper()
	hash, err := variations.Hash(sel)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	line := &models.CartItem{
		OwnerKey:      owner.OwnerKey(),
		ProductID:     product.ID,
		Quantity:      qty,
		Variations:    sel,
		VariationHash: hash,
		IsActive:      true,
	}
	if err := f.conn.Create(line).Error; err != nil {
		t.Fatalf("seed cart line: %v", err)
	}
}

func (f *mergeFixture) seedLike(t *testing.T, owner identity.Identity, product *models.Product) {
	t.Helper()
	like := &models.WishlistItem{OwnerKey: owner.OwnerKey(), ProductID: product.ID, IsActive: true}
	if err := f.conn.Create(like).Error; err != nil {
		t.Fatalf("seed like: %v", err)
	}
}

func red() variations.Selection {
	return variations.Selection{{Category: "color", Value: "red"}}
}

func TestMergeSumsMatchingLinesAndReownsTheRest(t *testing.T) {
	f := setupMergeTest(t)
	p := f.seedProduct(t, "p")
	q := f.seedProduct(t, "q")
	r := f.seedProduct(t, "r")

	userID := uuid.New()
	guest, _ := identity.Session("guest-1")
	user, _ := identity.User(userID)

	f.seedCartLine(t, guest, p, red(), 2)
	f.seedCartLine(t, guest, q, nil, 1)
	f.seedCartLine(t, user, p, red(), 1)
	f.seedCartLine(t, user, r, nil, 1)

	if err := f.svc.Merge(context.Background(), "guest-1", userID); err != nil {
		t.Fatalf("merge: %v", err)
	}

	guestLines, err := f.cartRepo.ListActiveByOwner(context.Background(), guest.OwnerKey())
	if err != nil {
		t.Fatalf("list guest: %v", err)
	}
	if len(guestLines) != 0 {
		t.Fatalf("expected empty guest cart, got %d lines", len(guestLines))
	}

	userLines, err := f.cartRepo.ListActiveByOwner(context.Background(), user.OwnerKey())
	if err != nil {
		t.Fatalf("list user: %v", err)
	}
	if len(userLines) != 3 {
		t.Fatalf("expected 3 user lines, got %d", len(userLines))
	}

	byProduct := map[uuid.UUID]int{}
	for _, line := range userLines {
		byProduct[line.ProductID] += line.Quantity
	}
	if byProduct[p.ID] != 3 {
		t.Fatalf("expected summed quantity 3 for p, got %d", byProduct[p.ID])
	}
	if byProduct[q.ID] != 1 || byProduct[r.ID] != 1 {
		t.Fatalf("unexpected quantities %+v", byProduct)
	}
}

func TestMergeKeepsDifferentSelectionsSeparate(t *testing.T) {
	f := setupMergeTest(t)
	p := f.seedProduct(t, "p")

	userID := uuid.New()
	guest, _ := identity.Session("guest-1")
	user, _ := identity.User(userID)

	f.seedCartLine(t, guest, p, red(), 1)
	f.seedCartLine(t, user, p, variations.Selection{{Category: "color", Value: "blue"}}, 1)

	if err := f.svc.Merge(context.Background(), "guest-1", userID); err != nil {
		t.Fatalf("merge: %v", err)
	}

	userLines, err := f.cartRepo.ListActiveByOwner(context.Background(), user.OwnerKey())
	if err != nil {
		t.Fatalf("list user: %v", err)
	}
	if len(userLines) != 2 {
		t.Fatalf("expected separate lines per selection, got %d", len(userLines))
	}
}

func TestMergeWishlistDedupes(t *testing.T) {
	f := setupMergeTest(t)
	p := f.seedProduct(t, "p")
	q := f.seedProduct(t, "q")

	userID := uuid.New()
	guest, _ := identity.Session("guest-1")
	user, _ := identity.User(userID)

	f.seedLike(t, guest, p)
	f.seedLike(t, guest, q)
	f.seedLike(t, user, p)

	if err := f.svc.Merge(context.Background(), "guest-1", userID); err != nil {
		t.Fatalf("merge: %v", err)
	}

	guestLikes, err := f.wishRepo.ListByOwner(context.Background(), guest.OwnerKey())
	if err != nil {
		t.Fatalf("list guest likes: %v", err)
	}
	if len(guestLikes) != 0 {
		t.Fatalf("expected empty guest wishlist, got %d", len(guestLikes))
	}

	userLikes, err := f.wishRepo.ListByOwner(context.Background(), user.OwnerKey())
	if err != nil {
		t.Fatalf("list user likes: %v", err)
	}
	if len(userLikes) != 2 {
		t.Fatalf("expected 2 user likes, got %d", len(userLikes))
	}
}

func TestMergeEmptyGuestIsNoop(t *testing.T) {
	f := setupMergeTest(t)
	userID := uuid.New()

	if err := f.svc.Merge(context.Background(), "guest-1", userID); err != nil {
		t.Fatalf("merge: %v", err)
	}
}
