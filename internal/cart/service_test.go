package cart

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/smkpro/smkpro-backend/internal/identity"
	"github.com/smkpro/smkpro-backend/internal/products"
	"github.com/smkpro/smkpro-backend/internal/variations"
	"github.com/smkpro/smkpro-backend/pkg/db/models"
	pkgerrors "github.com/smkpro/smkpro-backend/pkg/errors"
)

func setupCartTest(t *testing.T) (*gorm.DB, Service) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Product{}, &models.Variation{}, &models.CartItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	catalog, err := products.NewService(products.NewRepository(conn))
	if err != nil {
		t.Fatalf("product service: %v", err)
	}
	svc, err := NewService(NewRepository(conn), catalog, decimal.NewFromFloat(0.02))
	if err != nil {
		t.Fatalf("cart service: %v", err)
	}
	return conn, svc
}

func seedShirt(t *testing.T, conn *gorm.DB, stock int) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:        "Atlantic Shirt",
		Slug:        "atlantic-shirt",
		Price:       decimal.RequireFromString("500.00"),
		Stock:       stock,
		Weight:      decimal.RequireFromString("0.50"),
		IsAvailable: true,
		Variations: []models.Variation{
			{Category: "color", Value: "red", IsActive: true},
			{Category: "color", Value: "blue", IsActive: true},
			{Category: "size", Value: "m", IsActive: true},
		},
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func redM() variations.Selection {
	return variations.Selection{
		{Category: "color", Value: "red"},
		{Category: "size", Value: "m"},
	}
}

func TestAddItemTwiceIncrementsQuantity(t *testing.T) {
	conn, svc := setupCartTest(t)
	product := seedShirt(t, conn, 10)
	owner, _ := identity.Session("sess-1")
	ctx := context.Background()

	first, err := svc.AddItem(ctx, owner, product.ID, redM())
	if err != nil {
		t.Fatalf("first add: %v", err)
	}
	if first.Quantity != 1 {
		t.Fatalf("expected quantity 1, got %d", first.Quantity)
	}

	// same selection in a different order lands on the same line
	second, err := svc.AddItem(ctx, owner, product.ID, variations.Selection{
		{Category: "size", Value: "M"},
		{Category: "Color", Value: "Red"},
	})
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if second.ID != first.ID {
		t.Fatal("expected the same cart line")
	}
	if second.Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", second.Quantity)
	}

	var count int64
	conn.Model(&models.CartItem{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected one row, got %d", count)
	}
}

func TestAddItemDifferentSelectionCreatesNewLine(t *testing.T) {
	conn, svc := setupCartTest(t)
	product := seedShirt(t, conn, 10)
	owner, _ := identity.Session("sess-1")
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, owner, product.ID, redM()); err != nil {
		t.Fatalf("add red: %v", err)
	}
	if _, err := svc.AddItem(ctx, owner, product.ID, variations.Selection{
		{Category: "color", Value: "blue"},
		{Category: "size", Value: "m"},
	}); err != nil {
		t.Fatalf("add blue: %v", err)
	}

	var count int64
	conn.Model(&models.CartItem{}).Count(&count)
	if count != 2 {
		t.Fatalf("expected two rows, got %d", count)
	}
}

func TestAddItemRejectsUnknownVariation(t *testing.T) {
	conn, svc := setupCartTest(t)
	product := seedShirt(t, conn, 10)
	owner, _ := identity.Session("sess-1")

	_, err := svc.AddItem(context.Background(), owner, product.ID, variations.Selection{
		{Category: "color", Value: "green"},
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestIncrementCapsAtStock(t *testing.T) {
	conn, svc := setupCartTest(t)
	product := seedShirt(t, conn, 2)
	owner, _ := identity.Session("sess-1")
	ctx := context.Background()

	line, err := svc.AddItem(ctx, owner, product.ID, redM())
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	line, err = svc.IncrementItem(ctx, owner, line.ID)
	if err != nil {
		t.Fatalf("increment to 2: %v", err)
	}
	if line.Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", line.Quantity)
	}

	_, err = svc.IncrementItem(ctx, owner, line.ID)
	if !pkgerrors.HasCode(err, pkgerrors.CodeStockExceeded) {
		t.Fatalf("expected stock exceeded, got %v", err)
	}

	// quantity never overshoots
	reloaded, err := svc.ListItems(ctx, owner)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got := reloaded.Lines[0].Item.Quantity; got != 2 {
		t.Fatalf("expected quantity 2 after failed increment, got %d", got)
	}
}

func TestIncrementForeignLineForbidden(t *testing.T) {
	conn, svc := setupCartTest(t)
	product := seedShirt(t, conn, 10)
	owner, _ := identity.Session("sess-1")
	other, _ := identity.Session("sess-2")
	ctx := context.Background()

	line, err := svc.AddItem(ctx, owner, product.ID, redM())
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if _, err := svc.IncrementItem(ctx, other, line.ID); !pkgerrors.HasCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := svc.RemoveItem(ctx, other, line.ID); !pkgerrors.HasCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden on remove, got %v", err)
	}
}

func TestDecrementRemovesAtOne(t *testing.T) {
	conn, svc := setupCartTest(t)
	product := seedShirt(t, conn, 10)
	owner, _ := identity.Session("sess-1")
	ctx := context.Background()

	line, err := svc.AddItem(ctx, owner, product.ID, redM())
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	gone, err := svc.DecrementOrRemove(ctx, owner, line.ID)
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if gone != nil {
		t.Fatal("expected line removal at quantity 1")
	}

	var count int64
	conn.Model(&models.CartItem{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected empty cart, got %d rows", count)
	}
}

func TestListItemsTotals(t *testing.T) {
	conn, svc := setupCartTest(t)
	product := seedShirt(t, conn, 10)
	owner, _ := identity.Session("sess-1")
	ctx := context.Background()

	line, err := svc.AddItem(ctx, owner, product.ID, redM())
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.IncrementItem(ctx, owner, line.ID); err != nil {
		t.Fatalf("increment: %v", err)
	}

	contents, err := svc.ListItems(ctx, owner)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if contents.Totals.Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", contents.Totals.Quantity)
	}
	if !contents.Totals.Subtotal.Equal(decimal.RequireFromString("1000.00")) {
		t.Fatalf("unexpected subtotal %s", contents.Totals.Subtotal)
	}
	if !contents.Totals.Tax.Equal(decimal.RequireFromString("20.00")) {
		t.Fatalf("unexpected tax %s", contents.Totals.Tax)
	}
	if !contents.Totals.GrandTotal.Equal(decimal.RequireFromString("1020.00")) {
		t.Fatalf("unexpected grand total %s", contents.Totals.GrandTotal)
	}
}
