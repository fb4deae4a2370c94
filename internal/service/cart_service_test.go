package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/storelane/storelane/internal/models"
	"github.com/storelane/storelane/internal/repository"
)

func setupCartServiceTest(t *testing.T) (*CartService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:cart_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Category{}, &models.Product{}, &models.Cart{}, &models.CartItem{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	cartRepo := repository.NewCartRepository(db)
	productRepo := repository.NewProductRepository(db)
	return NewCartService(cartRepo, productRepo), db
}

func seedProduct(t *testing.T, db *gorm.DB, slug string, price string, discount *string, stock int) *models.Product {
	t.Helper()
	priceMoney, err := models.NewMoneyFromString(price)
	if err != nil {
		t.Fatalf("parse price failed: %v", err)
	}
	product := &models.Product{
		CategoryID:  1,
		Slug:        slug,
		Name:        "商品 " + slug,
		PriceAmount: priceMoney,
		Images:      models.StringArray{"https://img.example.com/" + slug + ".png"},
		Stock:       stock,
		InStock:     stock > 0,
		IsActive:    true,
	}
	if discount != nil {
		d, err := models.NewMoneyFromString(*discount)
		if err != nil {
			t.Fatalf("parse discount failed: %v", err)
		}
		product.DiscountPrice = &d
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("seed product failed: %v", err)
	}
	return product
}

func TestGetCartCreatesLazily(t *testing.T) {
	svc, _ := setupCartServiceTest(t)

	view, err := svc.GetCart(7)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if view.CartID == 0 {
		t.Fatalf("cart not created")
	}
	if len(view.Items) != 0 {
		t.Fatalf("new cart items want 0 got %d", len(view.Items))
	}

	again, err := svc.GetCart(7)
	if err != nil {
		t.Fatalf("get cart again failed: %v", err)
	}
	if again.CartID != view.CartID {
		t.Fatalf("cart id changed: %d -> %d", view.CartID, again.CartID)
	}
}

func TestAddItemValidations(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := seedProduct(t, db, "widget", "10.00", nil, 5)

	if _, err := svc.AddItem(AddCartItemInput{UserID: 1, ProductID: product.ID, Quantity: 0}); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("zero quantity want ErrInvalidQuantity got %v", err)
	}
	if _, err := svc.AddItem(AddCartItemInput{UserID: 1, ProductID: 9999, Quantity: 1}); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("unknown product want ErrProductNotFound got %v", err)
	}

	view, err := svc.AddItem(AddCartItemInput{UserID: 1, ProductID: product.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	if len(view.Items) != 1 || view.Items[0].Quantity != 2 {
		t.Fatalf("unexpected cart view: %+v", view.Items)
	}
	if got := view.Items[0].ProductImage; got == "" {
		t.Fatalf("product image missing")
	}
}

func TestAddItemAccumulatesAgainstStock(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := seedProduct(t, db, "limited", "10.00", nil, 5)

	if _, err := svc.AddItem(AddCartItemInput{UserID: 2, ProductID: product.ID, Quantity: 3}); err != nil {
		t.Fatalf("first add failed: %v", err)
	}

	// 已有 3，再加 3 超过库存 5
	_, err := svc.AddItem(AddCartItemInput{UserID: 2, ProductID: product.ID, Quantity: 3})
	var stockErr *StockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("want StockError got %v", err)
	}
	if stockErr.Available != 5 || stockErr.Requested != 6 {
		t.Fatalf("stock error detail want 5/6 got %d/%d", stockErr.Available, stockErr.Requested)
	}
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("StockError should match ErrInsufficientStock")
	}

	// 合计不超过库存则累加到同一行
	view, err := svc.AddItem(AddCartItemInput{UserID: 2, ProductID: product.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("second add failed: %v", err)
	}
	if len(view.Items) != 1 || view.Items[0].Quantity != 5 {
		t.Fatalf("quantity want 5 got %+v", view.Items)
	}
}

func TestCartUsesDiscountPrice(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	discount := "8.00"
	product := seedProduct(t, db, "sale", "10.00", &discount, 10)

	view, err := svc.AddItem(AddCartItemInput{UserID: 3, ProductID: product.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	if got := view.Items[0].UnitPrice.String(); got != "8.00" {
		t.Fatalf("unit price want 8.00 got %s", got)
	}
	if got := view.Pricing.Subtotal.String(); got != "16.00" {
		t.Fatalf("subtotal want 16.00 got %s", got)
	}
	if got := view.Pricing.Tax.String(); got != "1.60" {
		t.Fatalf("tax want 1.60 got %s", got)
	}
	if got := view.Pricing.Total.String(); got != "22.60" {
		t.Fatalf("total want 22.60 got %s", got)
	}
}

func TestUpdateItemQuantity(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := seedProduct(t, db, "adjustable", "10.00", nil, 4)

	view, err := svc.AddItem(AddCartItemInput{UserID: 4, ProductID: product.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	itemID := view.Items[0].ItemID

	if _, err := svc.UpdateItemQuantity(4, itemID, 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("zero quantity want ErrInvalidQuantity got %v", err)
	}
	if _, err := svc.UpdateItemQuantity(4, 9999, 2); !errors.Is(err, ErrCartItemNotFound) {
		t.Fatalf("missing item want ErrCartItemNotFound got %v", err)
	}
	if _, err := svc.UpdateItemQuantity(4, itemID, 5); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("over stock want ErrInsufficientStock got %v", err)
	}

	updated, err := svc.UpdateItemQuantity(4, itemID, 4)
	if err != nil {
		t.Fatalf("update quantity failed: %v", err)
	}
	if updated.Items[0].Quantity != 4 {
		t.Fatalf("quantity want 4 got %d", updated.Items[0].Quantity)
	}

	// 其他用户无法操作该行
	if _, err := svc.UpdateItemQuantity(5, itemID, 1); !errors.Is(err, ErrCartItemNotFound) {
		t.Fatalf("cross-user update want ErrCartItemNotFound got %v", err)
	}
}

func TestRemoveItemIdempotent(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := seedProduct(t, db, "removable", "10.00", nil, 10)

	view, err := svc.AddItem(AddCartItemInput{UserID: 6, ProductID: product.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	itemID := view.Items[0].ItemID

	after, err := svc.RemoveItem(6, itemID)
	if err != nil {
		t.Fatalf("remove item failed: %v", err)
	}
	if len(after.Items) != 0 {
		t.Fatalf("items want 0 got %d", len(after.Items))
	}

	// 再删一次不报错
	if _, err := svc.RemoveItem(6, itemID); err != nil {
		t.Fatalf("double remove failed: %v", err)
	}
}

func TestClearCartIdempotent(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	first := seedProduct(t, db, "clear-a", "10.00", nil, 10)
	second := seedProduct(t, db, "clear-b", "20.00", nil, 10)

	if _, err := svc.AddItem(AddCartItemInput{UserID: 8, ProductID: first.ID, Quantity: 1}); err != nil {
		t.Fatalf("add first failed: %v", err)
	}
	if _, err := svc.AddItem(AddCartItemInput{UserID: 8, ProductID: second.ID, Quantity: 2}); err != nil {
		t.Fatalf("add second failed: %v", err)
	}

	view, err := svc.ClearCart(8)
	if err != nil {
		t.Fatalf("clear cart failed: %v", err)
	}
	if len(view.Items) != 0 {
		t.Fatalf("items want 0 got %d", len(view.Items))
	}
	if !view.Pricing.Subtotal.Decimal.Equal(decimal.Zero) {
		t.Fatalf("subtotal want 0 got %s", view.Pricing.Subtotal.String())
	}

	if _, err := svc.ClearCart(8); err != nil {
		t.Fatalf("double clear failed: %v", err)
	}
}
