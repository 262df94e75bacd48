package wishlist

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/smkpro/smkpro-backend/internal/identity"
	"github.com/smkpro/smkpro-backend/internal/products"
	"github.com/smkpro/smkpro-backend/pkg/db/models"
	pkgerrors "github.com/smkpro/smkpro-backend/pkg/errors"
)

func setupWishlistTest(t *testing.T) (*gorm.DB, Service) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Product{}, &models.Variation{}, &models.WishlistItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	catalog, err := products.NewService(products.NewRepository(conn))
	if err != nil {
		t.Fatalf("product service: %v", err)
	}
	svc, err := NewService(NewRepository(conn), catalog)
	if err != nil {
		t.Fatalf("wishlist service: %v", err)
	}
	return conn, svc
}

func seedProduct(t *testing.T, conn *gorm.DB, name, slug string) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:        name,
		Slug:        slug,
		Price:       decimal.RequireFromString("100.00"),
		Stock:       5,
		Weight:      decimal.RequireFromString("1.00"),
		IsAvailable: true,
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func TestToggleFlipsLike(t *testing.T) {
	conn, svc := setupWishlistTest(t)
	product := seedProduct(t, conn, "Mug", "mug")
	owner, _ := identity.Session("sess-1")
	ctx := context.Background()

	liked, err := svc.Toggle(ctx, owner, product.ID)
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !liked {
		t.Fatal("expected product to be liked")
	}

	liked, err = svc.Toggle(ctx, owner, product.ID)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if liked {
		t.Fatal("expected product to be unliked")
	}

	var count int64
	conn.Model(&models.WishlistItem{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no rows, got %d", count)
	}
}

func TestAddIsIdempotent(t *testing.T) {
	conn, svc := setupWishlistTest(t)
	product := seedProduct(t, conn, "Mug", "mug")
	owner, _ := identity.Session("sess-1")
	ctx := context.Background()

	if err := svc.Add(ctx, owner, product.ID); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := svc.Add(ctx, owner, product.ID); err != nil {
		t.Fatalf("second add: %v", err)
	}

	var count int64
	conn.Model(&models.WishlistItem{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected one row, got %d", count)
	}
}

func TestToggleUnknownProduct(t *testing.T) {
	_, svc := setupWishlistTest(t)
	owner, _ := identity.Session("sess-1")

	_, err := svc.Toggle(context.Background(), owner, uuid.New())
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListIsScopedToOwner(t *testing.T) {
	conn, svc := setupWishlistTest(t)
	mug := seedProduct(t, conn, "Mug", "mug")
	hat := seedProduct(t, conn, "Hat", "hat")
	alice, _ := identity.Session("alice")
	bob, _ := identity.Session("bob")
	ctx := context.Background()

	if err := svc.Add(ctx, alice, mug.ID); err != nil {
		t.Fatalf("alice add: %v", err)
	}
	if err := svc.Add(ctx, bob, hat.ID); err != nil {
		t.Fatalf("bob add: %v", err)
	}

	items, err := svc.List(ctx, alice)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].ProductID != mug.ID {
		t.Fatalf("unexpected items %+v", items)
	}
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	conn, svc := setupWishlistTest(t)
	product := seedProduct(t, conn, "Mug", "mug")
	owner, _ := identity.Session("sess-1")

	if err := svc.Remove(context.Background(), owner, product.ID); err != nil {
		t.Fatalf("remove absent: %v", err)
	}
}
