//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"testing"

	"github.com/storelane/storelane/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.OrderItem{},
		&models.Order{},
		&models.OrderCounter{},
		&models.CartItem{},
		&models.Cart{},
		&models.Product{},
		&models.Category{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := db.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderCounter{},
	); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresProductSearchAndStock(t *testing.T) {
	db := setupPostgresIntegrationDB(t)

	category := &models.Category{
		Slug: "pg-category",
		Name: "Postgres Category",
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}

	productRepo := NewProductRepository(db)
	product := &models.Product{
		CategoryID:  category.ID,
		Slug:        "pg-product-rocket",
		Name:        "Rocket Booster",
		Description: "rocket booster package",
		PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(99)),
		Stock:       10,
		InStock:     true,
		IsActive:    true,
	}
	if err := productRepo.Create(product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	// ILIKE 大小写不敏感搜索
	productRows, productTotal, err := productRepo.List(ProductListFilter{
		Page:   1,
		Search: "ROCKET",
	})
	if err != nil {
		t.Fatalf("product list search failed: %v", err)
	}
	if productTotal != 1 || len(productRows) != 1 {
		t.Fatalf("product list search want 1 got total=%d len=%d", productTotal, len(productRows))
	}

	affected, err := productRepo.TryDecrementStock(product.ID, 10)
	if err != nil {
		t.Fatalf("decrement stock failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("decrement affected want 1 got %d", affected)
	}

	var got models.Product
	if err := db.First(&got, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if got.Stock != 0 || got.InStock {
		t.Fatalf("stock want 0/in_stock=false got %d/%v", got.Stock, got.InStock)
	}
}

func TestPostgresDailySequence(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewOrderRepository(db)

	for want := uint64(1); want <= 3; want++ {
		got, err := repo.NextDailySequence("20260831")
		if err != nil {
			t.Fatalf("next sequence failed: %v", err)
		}
		if got != want {
			t.Fatalf("sequence want %d got %d", want, got)
		}
	}
}
