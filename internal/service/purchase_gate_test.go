package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/storelane/storelane/internal/constants"
	"github.com/storelane/storelane/internal/models"
	"github.com/storelane/storelane/internal/repository"
)

func setupPurchaseGateTest(t *testing.T) (*PurchaseGateService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:purchase_gate_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Order{}, &models.OrderItem{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return NewPurchaseGateService(repository.NewOrderRepository(db)), db
}

func seedOrderWithProduct(t *testing.T, db *gorm.DB, userID uint, status string, productID uint) {
	t.Helper()
	amount, err := models.NewMoneyFromString("10.00")
	if err != nil {
		t.Fatalf("parse money failed: %v", err)
	}
	order := &models.Order{
		OrderNo:         fmt.Sprintf("ORD-20260831-%06d", time.Now().UnixNano()%1000000),
		UserID:          userID,
		Status:          status,
		Currency:        constants.SiteCurrencyDefault,
		PaymentMethod:   constants.PaymentMethodCard,
		SubtotalAmount:  amount,
		TaxAmount:       amount,
		ShippingAmount:  amount,
		TotalAmount:     amount,
		ShippingAddress: models.JSON{"line1": "1 Main St"},
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("seed order failed: %v", err)
	}
	pid := productID
	item := &models.OrderItem{
		OrderID:     order.ID,
		ProductID:   &pid,
		ProductName: "商品",
		UnitPrice:   amount,
		Quantity:    1,
		TotalPrice:  amount,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("seed order item failed: %v", err)
	}
}

func TestCanReviewRequiresDeliveredOrder(t *testing.T) {
	svc, db := setupPurchaseGateTest(t)

	seedOrderWithProduct(t, db, 1, constants.OrderStatusDelivered, 100)
	seedOrderWithProduct(t, db, 1, constants.OrderStatusPending, 200)
	seedOrderWithProduct(t, db, 2, constants.OrderStatusDelivered, 300)

	ok, err := svc.CanReview(1, 100)
	if err != nil {
		t.Fatalf("can review failed: %v", err)
	}
	if !ok {
		t.Fatalf("delivered purchase should allow review")
	}

	// 未送达订单不授予资格
	ok, err = svc.CanReview(1, 200)
	if err != nil {
		t.Fatalf("can review failed: %v", err)
	}
	if ok {
		t.Fatalf("pending purchase should not allow review")
	}

	// 他人的已送达订单不授予资格
	ok, err = svc.CanReview(1, 300)
	if err != nil {
		t.Fatalf("can review failed: %v", err)
	}
	if ok {
		t.Fatalf("another user's purchase should not allow review")
	}

	// 零值入参直接拒绝
	if ok, _ := svc.CanReview(0, 100); ok {
		t.Fatalf("zero user should not allow review")
	}
	if ok, _ := svc.CanReview(1, 0); ok {
		t.Fatalf("zero product should not allow review")
	}
}
