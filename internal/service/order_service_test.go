package service

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/storelane/storelane/internal/constants"
	"github.com/storelane/storelane/internal/models"
	"github.com/storelane/storelane/internal/repository"
)

func setupOrderServiceTest(t *testing.T) (*OrderService, *CartService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:order_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderCounter{},
	); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	orderRepo := repository.NewOrderRepository(db)
	cartRepo := repository.NewCartRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderSvc := NewOrderService(orderRepo, cartRepo, productRepo, nil)
	cartSvc := NewCartService(cartRepo, productRepo)
	return orderSvc, cartSvc, db
}

func testAddress() models.JSON {
	return models.JSON{
		"name":    "张三",
		"line1":   "1 Main St",
		"city":    "Springfield",
		"country": "US",
	}
}

func TestCreateOrderValidations(t *testing.T) {
	orderSvc, cartSvc, db := setupOrderServiceTest(t)

	// 购物车不存在
	if _, err := orderSvc.CreateOrder(CreateOrderInput{
		UserID:          1,
		PaymentMethod:   constants.PaymentMethodCard,
		ShippingAddress: testAddress(),
	}); !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("missing cart want ErrCartNotFound got %v", err)
	}

	// 空购物车
	if _, err := cartSvc.GetCart(1); err != nil {
		t.Fatalf("create cart failed: %v", err)
	}
	if _, err := orderSvc.CreateOrder(CreateOrderInput{
		UserID:          1,
		PaymentMethod:   constants.PaymentMethodCard,
		ShippingAddress: testAddress(),
	}); !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("empty cart want ErrCartEmpty got %v", err)
	}

	product := seedProduct(t, db, "order-widget", "10.00", nil, 10)
	if _, err := cartSvc.AddItem(AddCartItemInput{UserID: 1, ProductID: product.ID, Quantity: 1}); err != nil {
		t.Fatalf("add item failed: %v", err)
	}

	if _, err := orderSvc.CreateOrder(CreateOrderInput{
		UserID:          1,
		PaymentMethod:   "wire",
		ShippingAddress: testAddress(),
	}); !errors.Is(err, ErrPaymentMethodInvalid) {
		t.Fatalf("bad payment method want ErrPaymentMethodInvalid got %v", err)
	}
	if _, err := orderSvc.CreateOrder(CreateOrderInput{
		UserID:        1,
		PaymentMethod: constants.PaymentMethodCard,
	}); !errors.Is(err, ErrShippingAddressRequired) {
		t.Fatalf("missing address want ErrShippingAddressRequired got %v", err)
	}
}

func TestCreateOrderHappyPath(t *testing.T) {
	orderSvc, cartSvc, db := setupOrderServiceTest(t)
	discount := "8.00"
	cheap := seedProduct(t, db, "order-sale", "10.00", &discount, 10)
	dear := seedProduct(t, db, "order-dear", "30.00", nil, 3)

	if _, err := cartSvc.AddItem(AddCartItemInput{UserID: 5, ProductID: cheap.ID, Quantity: 2}); err != nil {
		t.Fatalf("add cheap failed: %v", err)
	}
	if _, err := cartSvc.AddItem(AddCartItemInput{UserID: 5, ProductID: dear.ID, Quantity: 2}); err != nil {
		t.Fatalf("add dear failed: %v", err)
	}

	order, err := orderSvc.CreateOrder(CreateOrderInput{
		UserID:          5,
		PaymentMethod:   constants.PaymentMethodPaypal,
		ShippingAddress: testAddress(),
		ClientIP:        "203.0.113.9",
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	day := time.Now().Format("20060102")
	wantPrefix := fmt.Sprintf("ORD-%s-", day)
	if !strings.HasPrefix(order.OrderNo, wantPrefix) || len(order.OrderNo) != len(wantPrefix)+6 {
		t.Fatalf("order no format wrong: %s", order.OrderNo)
	}
	if order.Status != constants.OrderStatusPending {
		t.Fatalf("status want pending got %s", order.Status)
	}
	// 16.00 + 60.00 = 76.00，免运费，税 7.60
	if got := order.SubtotalAmount.String(); got != "76.00" {
		t.Fatalf("subtotal want 76.00 got %s", got)
	}
	if got := order.TaxAmount.String(); got != "7.60" {
		t.Fatalf("tax want 7.60 got %s", got)
	}
	if got := order.ShippingAmount.String(); got != "0.00" {
		t.Fatalf("shipping want 0.00 got %s", got)
	}
	if got := order.TotalAmount.String(); got != "83.60" {
		t.Fatalf("total want 83.60 got %s", got)
	}
	if len(order.Items) != 2 {
		t.Fatalf("items want 2 got %d", len(order.Items))
	}
	for _, item := range order.Items {
		if item.ProductName == "" || item.ProductImage == "" {
			t.Fatalf("snapshot incomplete: %+v", item)
		}
	}

	// 库存已扣减
	var gotCheap models.Product
	if err := db.First(&gotCheap, cheap.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if gotCheap.Stock != 8 {
		t.Fatalf("cheap stock want 8 got %d", gotCheap.Stock)
	}
	var gotDear models.Product
	if err := db.First(&gotDear, dear.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if gotDear.Stock != 1 {
		t.Fatalf("dear stock want 1 got %d", gotDear.Stock)
	}

	// 购物车已清空
	view, err := cartSvc.GetCart(5)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(view.Items) != 0 {
		t.Fatalf("cart items want 0 got %d", len(view.Items))
	}
}

func TestCreateOrderRollsBackOnStockConflict(t *testing.T) {
	orderSvc, cartSvc, db := setupOrderServiceTest(t)
	plenty := seedProduct(t, db, "order-plenty", "10.00", nil, 10)
	scarce := seedProduct(t, db, "order-scarce", "20.00", nil, 2)

	if _, err := cartSvc.AddItem(AddCartItemInput{UserID: 9, ProductID: plenty.ID, Quantity: 2}); err != nil {
		t.Fatalf("add plenty failed: %v", err)
	}
	if _, err := cartSvc.AddItem(AddCartItemInput{UserID: 9, ProductID: scarce.ID, Quantity: 2}); err != nil {
		t.Fatalf("add scarce failed: %v", err)
	}

	// 他人抢先买走稀缺商品
	if err := db.Model(&models.Product{}).Where("id = ?", scarce.ID).
		Updates(map[string]interface{}{"stock": 1, "in_stock": true}).Error; err != nil {
		t.Fatalf("shrink stock failed: %v", err)
	}

	_, err := orderSvc.CreateOrder(CreateOrderInput{
		UserID:          9,
		PaymentMethod:   constants.PaymentMethodCard,
		ShippingAddress: testAddress(),
	})
	var stockErr *StockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("want StockError got %v", err)
	}
	if stockErr.Available != 1 || stockErr.Requested != 2 {
		t.Fatalf("stock error detail want 1/2 got %d/%d", stockErr.Available, stockErr.Requested)
	}

	// 无任何残留：plenty 库存未扣、没有订单、购物车保留
	var gotPlenty models.Product
	if err := db.First(&gotPlenty, plenty.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if gotPlenty.Stock != 10 {
		t.Fatalf("plenty stock want 10 got %d", gotPlenty.Stock)
	}
	var orderCount int64
	if err := db.Model(&models.Order{}).Count(&orderCount).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	if orderCount != 0 {
		t.Fatalf("order count want 0 got %d", orderCount)
	}
	view, err := cartSvc.GetCart(9)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(view.Items) != 2 {
		t.Fatalf("cart items want 2 got %d", len(view.Items))
	}
}

func TestCreateOrderSequentialNumbers(t *testing.T) {
	orderSvc, cartSvc, db := setupOrderServiceTest(t)
	product := seedProduct(t, db, "order-seq", "10.00", nil, 100)

	var previous string
	for i := 0; i < 3; i++ {
		if _, err := cartSvc.AddItem(AddCartItemInput{UserID: 11, ProductID: product.ID, Quantity: 1}); err != nil {
			t.Fatalf("add item failed: %v", err)
		}
		order, err := orderSvc.CreateOrder(CreateOrderInput{
			UserID:          11,
			PaymentMethod:   constants.PaymentMethodCOD,
			ShippingAddress: testAddress(),
		})
		if err != nil {
			t.Fatalf("create order %d failed: %v", i, err)
		}
		if order.OrderNo == previous {
			t.Fatalf("duplicate order no %s", order.OrderNo)
		}
		previous = order.OrderNo
	}
	if !strings.HasSuffix(previous, "-000003") {
		t.Fatalf("third order no want suffix -000003 got %s", previous)
	}
}

func TestGetUserOrderScopesOwner(t *testing.T) {
	orderSvc, cartSvc, db := setupOrderServiceTest(t)
	product := seedProduct(t, db, "order-owner", "10.00", nil, 10)

	if _, err := cartSvc.AddItem(AddCartItemInput{UserID: 21, ProductID: product.ID, Quantity: 1}); err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	order, err := orderSvc.CreateOrder(CreateOrderInput{
		UserID:          21,
		PaymentMethod:   constants.PaymentMethodCard,
		ShippingAddress: testAddress(),
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	got, err := orderSvc.GetUserOrder(21, order.ID)
	if err != nil {
		t.Fatalf("get own order failed: %v", err)
	}
	if got.OrderNo != order.OrderNo {
		t.Fatalf("order no mismatch")
	}

	if _, err := orderSvc.GetUserOrder(22, order.ID); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("other user want ErrOrderNotFound got %v", err)
	}
	if _, err := orderSvc.GetUserOrder(21, order.ID+100); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("missing order want ErrOrderNotFound got %v", err)
	}
}

func TestConcurrentCheckoutSingleWinner(t *testing.T) {
	orderSvc, cartSvc, db := setupOrderServiceTest(t)
	scarce := seedProduct(t, db, "order-last-unit", "10.00", nil, 1)

	const buyers = 5
	for i := 0; i < buyers; i++ {
		if _, err := cartSvc.AddItem(AddCartItemInput{UserID: uint(100 + i), ProductID: scarce.ID, Quantity: 1}); err != nil {
			t.Fatalf("add item for buyer %d failed: %v", i, err)
		}
	}

	var wg sync.WaitGroup
	errs := make([]error, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = orderSvc.CreateOrder(CreateOrderInput{
				UserID:          uint(100 + i),
				PaymentMethod:   constants.PaymentMethodCOD,
				ShippingAddress: testAddress(),
			})
		}(i)
	}
	wg.Wait()

	var success, stockFail int
	for _, err := range errs {
		if err == nil {
			success++
			continue
		}
		var stockErr *StockError
		if !errors.As(err, &stockErr) {
			t.Fatalf("unexpected error: %v", err)
		}
		stockFail++
	}
	if success != 1 || stockFail != buyers-1 {
		t.Fatalf("want 1 winner and %d stock failures got %d/%d", buyers-1, success, stockFail)
	}

	var fresh models.Product
	if err := db.First(&fresh, scarce.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if fresh.Stock != 0 {
		t.Fatalf("final stock want 0 got %d", fresh.Stock)
	}
	if fresh.InStock {
		t.Fatalf("in_stock should flip false at zero stock")
	}
	var orderCount int64
	if err := db.Model(&models.Order{}).Count(&orderCount).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	if orderCount != 1 {
		t.Fatalf("order count want 1 got %d", orderCount)
	}
}
