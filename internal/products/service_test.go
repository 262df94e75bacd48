package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/smkpro/smkpro-backend/internal/variations"
	"github.com/smkpro/smkpro-backend/pkg/db/models"
	pkgerrors "github.com/smkpro/smkpro-backend/pkg/errors"
)

func setupCatalogTest(t *testing.T) (*gorm.DB, Service, *Repository) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Product{}, &models.Variation{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	repo := NewRepository(conn)
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("catalog service: %v", err)
	}
	return conn, svc, repo
}

func seedShirt(t *testing.T, conn *gorm.DB) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:        "shirt",
		Slug:        "shirt",
		Price:       decimal.RequireFromString("500.00"),
		Stock:       10,
		Weight:      decimal.RequireFromString("0.50"),
		IsAvailable: true,
		Variations: []models.Variation{
			{Category: "color", Value: "red", IsActive: true},
			{Category: "color", Value: "blue", IsActive: true},
			{Category: "size", Value: "m", IsActive: true},
			{Category: "size", Value: "xl", IsActive: false},
		},
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func TestGetBySlug(t *testing.T) {
	conn, svc, _ := setupCatalogTest(t)
	seedShirt(t, conn)

	product, err := svc.GetBySlug(context.Background(), "shirt")
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if product.Name != "shirt" {
		t.Fatalf("unexpected product %q", product.Name)
	}
	if len(product.Variations) != 3 {
		t.Fatalf("expected only active variations, got %d", len(product.Variations))
	}

	_, err = svc.GetBySlug(context.Background(), "missing")
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListOnlyAvailable(t *testing.T) {
	conn, svc, _ := setupCatalogTest(t)
	seedShirt(t, conn)
	hidden := &models.Product{Name: "archived", Slug: "archived", IsAvailable: false}
	if err := conn.Create(hidden).Error; err != nil {
		t.Fatalf("seed hidden product: %v", err)
	}

	list, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Slug != "shirt" {
		t.Fatalf("expected only the available product, got %+v", list)
	}
}

func TestValidateSelection(t *testing.T) {
	conn, svc, _ := setupCatalogTest(t)
	product := seedShirt(t, conn)

	normalized, err := svc.ValidateSelection(context.Background(), product.ID, variations.Selection{
		{Category: "Size", Value: "M"},
		{Category: "color", Value: "red"},
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(normalized) != 2 || normalized[0].Category != "color" {
		t.Fatalf("expected normalized sorted selection, got %+v", normalized)
	}

	_, err = svc.ValidateSelection(context.Background(), product.ID, variations.Selection{
		{Category: "color", Value: "green"},
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for unknown value, got %v", err)
	}

	// inactive vocabulary entries must not validate
	_, err = svc.ValidateSelection(context.Background(), product.ID, variations.Selection{
		{Category: "size", Value: "xl"},
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for inactive value, got %v", err)
	}
}

func TestValidateSelectionUnknownProduct(t *testing.T) {
	_, svc, _ := setupCatalogTest(t)
	_, err := svc.ValidateSelection(context.Background(), uuid.New(), nil)
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDecrementStockGuard(t *testing.T) {
	conn, _, repo := setupCatalogTest(t)
	product := seedShirt(t, conn)

	ok, err := repo.DecrementStock(context.Background(), product.ID, 7)
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if !ok {
		t.Fatal("expected decrement to succeed")
	}

	ok, err = repo.DecrementStock(context.Background(), product.ID, 4)
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if ok {
		t.Fatal("expected guard to refuse overselling")
	}

	var fresh models.Product
	if err := conn.First(&fresh, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if fresh.Stock != 3 {
		t.Fatalf("expected stock 3, got %d", fresh.Stock)
	}
}
