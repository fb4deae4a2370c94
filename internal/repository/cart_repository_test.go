package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/storelane/storelane/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupCartRepositoryTest(t *testing.T) *GormCartRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:cart_repo_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.Cart{}, &models.CartItem{}); err != nil {
		t.Fatalf("migrate cart failed: %v", err)
	}
	return NewCartRepository(db)
}

func TestGetOrCreateByUserIdempotent(t *testing.T) {
	repo := setupCartRepositoryTest(t)

	first, err := repo.GetOrCreateByUser(1)
	if err != nil {
		t.Fatalf("get or create failed: %v", err)
	}
	if first == nil || first.ID == 0 {
		t.Fatalf("cart should be created: %+v", first)
	}

	second, err := repo.GetOrCreateByUser(1)
	if err != nil {
		t.Fatalf("second get or create failed: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("repeat call should return same cart, want %d got %d", first.ID, second.ID)
	}

	missing, err := repo.GetByUser(2)
	if err != nil {
		t.Fatalf("get by user failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("user 2 should have no cart")
	}
}

func TestUpsertItemAccumulatesQuantity(t *testing.T) {
	repo := setupCartRepositoryTest(t)
	cart, err := repo.GetOrCreateByUser(1)
	if err != nil {
		t.Fatalf("get or create failed: %v", err)
	}

	first := &models.CartItem{CartID: cart.ID, ProductID: 2, Quantity: 2}
	if err := repo.UpsertItem(first); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	second := &models.CartItem{CartID: cart.ID, ProductID: 2, Quantity: 3}
	if err := repo.UpsertItem(second); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}
	if second.Quantity != 5 {
		t.Fatalf("accumulated quantity want 5 got %d", second.Quantity)
	}
	if second.ID != first.ID {
		t.Fatalf("same product should reuse cart item row")
	}

	items, err := repo.ListItems(cart.ID)
	if err != nil {
		t.Fatalf("list items failed: %v", err)
	}
	if len(items) != 1 || items[0].Quantity != 5 {
		t.Fatalf("stored items mismatch: %+v", items)
	}
}

func TestUpdateItemQuantityReportsMissingItem(t *testing.T) {
	repo := setupCartRepositoryTest(t)
	cart, err := repo.GetOrCreateByUser(1)
	if err != nil {
		t.Fatalf("get or create failed: %v", err)
	}

	affected, err := repo.UpdateItemQuantity(cart.ID, 99, 4)
	if err != nil {
		t.Fatalf("update quantity failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("affected want 0 got %d", affected)
	}

	item := &models.CartItem{CartID: cart.ID, ProductID: 7, Quantity: 1}
	if err := repo.UpsertItem(item); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	affected, err = repo.UpdateItemQuantity(cart.ID, item.ID, 4)
	if err != nil {
		t.Fatalf("update quantity failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("affected want 1 got %d", affected)
	}
}

func TestItemScopedToCart(t *testing.T) {
	repo := setupCartRepositoryTest(t)
	cartA, _ := repo.GetOrCreateByUser(1)
	cartB, _ := repo.GetOrCreateByUser(2)

	item := &models.CartItem{CartID: cartA.ID, ProductID: 3, Quantity: 1}
	if err := repo.UpsertItem(item); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	// 其他用户的购物车不可见该项
	got, err := repo.GetItem(cartB.ID, item.ID)
	if err != nil {
		t.Fatalf("get item failed: %v", err)
	}
	if got != nil {
		t.Fatalf("item should not be visible from another cart")
	}

	affected, err := repo.DeleteItem(cartB.ID, item.ID)
	if err != nil {
		t.Fatalf("delete from wrong cart failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("delete from wrong cart affected want 0 got %d", affected)
	}
}

func TestDeleteAndClearItems(t *testing.T) {
	repo := setupCartRepositoryTest(t)
	cart, _ := repo.GetOrCreateByUser(5)

	itemA := &models.CartItem{CartID: cart.ID, ProductID: 1, Quantity: 1}
	itemB := &models.CartItem{CartID: cart.ID, ProductID: 2, Quantity: 1}
	if err := repo.UpsertItem(itemA); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := repo.UpsertItem(itemB); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	affected, err := repo.DeleteItem(cart.ID, itemA.ID)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("delete affected want 1 got %d", affected)
	}

	affected, err = repo.DeleteItem(cart.ID, itemA.ID)
	if err != nil {
		t.Fatalf("repeat delete failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("repeat delete affected want 0 got %d", affected)
	}

	if err := repo.ClearItems(cart.ID); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	items, err := repo.ListItems(cart.ID)
	if err != nil {
		t.Fatalf("list after clear failed: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("cart should be empty got %d items", len(items))
	}
}

func TestUpsertItemAfterDeleteReusesKey(t *testing.T) {
	repo := setupCartRepositoryTest(t)
	cart, _ := repo.GetOrCreateByUser(6)

	item := &models.CartItem{CartID: cart.ID, ProductID: 9, Quantity: 2}
	if err := repo.UpsertItem(item); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if _, err := repo.DeleteItem(cart.ID, item.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	// 删除后同商品可重新加购，(cart_id, product_id) 唯一键不冲突
	again := &models.CartItem{CartID: cart.ID, ProductID: 9, Quantity: 3}
	if err := repo.UpsertItem(again); err != nil {
		t.Fatalf("re-add after delete failed: %v", err)
	}
	if again.Quantity != 3 {
		t.Fatalf("re-add quantity want 3 got %d", again.Quantity)
	}

	if err := repo.ClearItems(cart.ID); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if err := repo.UpsertItem(&models.CartItem{CartID: cart.ID, ProductID: 9, Quantity: 1}); err != nil {
		t.Fatalf("re-add after clear failed: %v", err)
	}
	items, err := repo.ListItems(cart.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 1 || items[0].Quantity != 1 {
		t.Fatalf("want single item with quantity 1 got %+v", items)
	}
}
