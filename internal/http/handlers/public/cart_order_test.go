package public

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/storelane/storelane/internal/constants"
	"github.com/storelane/storelane/internal/models"
	"github.com/storelane/storelane/internal/provider"
	"github.com/storelane/storelane/internal/repository"
	"github.com/storelane/storelane/internal/service"
)

func setupCartOrderTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:public_cart_order_%d?mode=memory&cache=shared", time.Now().UnixNano())
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
		&models.User{},
	); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	orderRepo := repository.NewOrderRepository(db)
	cartRepo := repository.NewCartRepository(db)
	productRepo := repository.NewProductRepository(db)

	h := &Handler{Container: &provider.Container{
		CartService:         service.NewCartService(cartRepo, productRepo),
		OrderService:        service.NewOrderService(orderRepo, cartRepo, productRepo, nil),
		PurchaseGateService: service.NewPurchaseGateService(orderRepo),
	}}

	r := gin.New()
	// 测试里以固定用户 1 代替登录中间件
	r.Use(func(c *gin.Context) {
		c.Set("user_id", uint(1))
		c.Next()
	})
	r.GET("/cart", h.GetCart)
	r.POST("/cart/items", h.AddCartItem)
	r.POST("/orders", h.CreateOrder)
	r.GET("/products/:id/can-review", h.CanReviewProduct)
	return r, db
}

func seedCartOrderProduct(t *testing.T, db *gorm.DB, slug string, price string, stock int) *models.Product {
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
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("seed product failed: %v", err)
	}
	return product
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}, header map[string]string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body failed: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v body=%s", err, w.Body.String())
	}
	return w, resp
}

func errorCode(t *testing.T, resp map[string]interface{}) string {
	t.Helper()
	errBody, ok := resp["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("response has no error body: %v", resp)
	}
	code, _ := errBody["code"].(string)
	return code
}

func shippingAddressBody() map[string]interface{} {
	return map[string]interface{}{
		"name":    "李四",
		"line1":   "42 Harbor Rd",
		"city":    "Portland",
		"country": "US",
	}
}

func TestAddCartItemAndPricing(t *testing.T) {
	r, db := setupCartOrderTest(t)
	product := seedCartOrderProduct(t, db, "thermos", "24.00", 10)

	w, resp := doJSON(t, r, http.MethodPost, "/cart/items", gin.H{
		"product_id": product.ID,
		"quantity":   2,
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("add item status = %d body=%s", w.Code, w.Body.String())
	}
	if success, _ := resp["success"].(bool); !success {
		t.Fatalf("add item success = false: %v", resp)
	}
	data := resp["data"].(map[string]interface{})
	items := data["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("items len = %d", len(items))
	}
	pricing := data["pricing"].(map[string]interface{})
	// 48.00 未过免运费线，税 4.80 运费 5.00
	if pricing["subtotal"] != "48.00" || pricing["tax"] != "4.80" || pricing["shipping"] != "5.00" || pricing["total"] != "57.80" {
		t.Fatalf("pricing = %v", pricing)
	}

	// 再加一件跨过 50.00，免运费
	w, resp = doJSON(t, r, http.MethodPost, "/cart/items", gin.H{
		"product_id": product.ID,
		"quantity":   1,
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("second add status = %d", w.Code)
	}
	pricing = resp["data"].(map[string]interface{})["pricing"].(map[string]interface{})
	if pricing["subtotal"] != "72.00" || pricing["shipping"] != "0.00" || pricing["total"] != "79.20" {
		t.Fatalf("pricing after second add = %v", pricing)
	}
}

func TestAddCartItemInvalidQuantity(t *testing.T) {
	r, db := setupCartOrderTest(t)
	product := seedCartOrderProduct(t, db, "kettle", "18.00", 5)

	// 0 与负数同样走 INVALID_QUANTITY，不被参数绑定拦下
	for _, quantity := range []int{-1, 0} {
		w, resp := doJSON(t, r, http.MethodPost, "/cart/items", gin.H{
			"product_id": product.ID,
			"quantity":   quantity,
		}, nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("quantity %d status = %d body=%s", quantity, w.Code, w.Body.String())
		}
		if success, _ := resp["success"].(bool); success {
			t.Fatalf("quantity %d expected failure envelope: %v", quantity, resp)
		}
		if code := errorCode(t, resp); code != "INVALID_QUANTITY" {
			t.Fatalf("quantity %d error code = %q", quantity, code)
		}
	}
}

func TestAddCartItemInsufficientStockDetails(t *testing.T) {
	r, db := setupCartOrderTest(t)
	product := seedCartOrderProduct(t, db, "tripod", "30.00", 3)

	w, resp := doJSON(t, r, http.MethodPost, "/cart/items", gin.H{
		"product_id": product.ID,
		"quantity":   4,
	}, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	if code := errorCode(t, resp); code != "INSUFFICIENT_STOCK" {
		t.Fatalf("error code = %q", code)
	}
	details := resp["error"].(map[string]interface{})["details"].(map[string]interface{})
	if details["available"] != float64(3) || details["requested"] != float64(4) {
		t.Fatalf("details = %v", details)
	}
	if details["product_id"] != float64(product.ID) {
		t.Fatalf("details product_id = %v", details["product_id"])
	}
}

func TestCreateOrderFromCart(t *testing.T) {
	r, db := setupCartOrderTest(t)
	product := seedCartOrderProduct(t, db, "monitor", "120.00", 6)

	if w, _ := doJSON(t, r, http.MethodPost, "/cart/items", gin.H{
		"product_id": product.ID,
		"quantity":   2,
	}, nil); w.Code != http.StatusOK {
		t.Fatalf("add item status = %d", w.Code)
	}

	w, resp := doJSON(t, r, http.MethodPost, "/orders", gin.H{
		"payment_method":   constants.PaymentMethodCard,
		"shipping_address": shippingAddressBody(),
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create order status = %d body=%s", w.Code, w.Body.String())
	}
	data := resp["data"].(map[string]interface{})
	orderNo, _ := data["order_no"].(string)
	wantPrefix := fmt.Sprintf("ORD-%s-", time.Now().Format("20060102"))
	if len(orderNo) != len(wantPrefix)+6 || orderNo[:len(wantPrefix)] != wantPrefix {
		t.Fatalf("order_no = %q", orderNo)
	}
	if data["status"] != constants.OrderStatusPending {
		t.Fatalf("status = %v", data["status"])
	}
	// 240.00 小计，税 24.00，免运费
	if data["subtotal_amount"] != "240.00" || data["tax_amount"] != "24.00" || data["shipping_amount"] != "0.00" || data["total_amount"] != "264.00" {
		t.Fatalf("amounts = %v %v %v %v", data["subtotal_amount"], data["tax_amount"], data["shipping_amount"], data["total_amount"])
	}
	items := data["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("order items len = %d", len(items))
	}
	line := items[0].(map[string]interface{})
	if line["product_name"] != product.Name || line["quantity"] != float64(2) {
		t.Fatalf("order line = %v", line)
	}

	// 库存已扣减
	var fresh models.Product
	if err := db.First(&fresh, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if fresh.Stock != 4 {
		t.Fatalf("stock after order = %d", fresh.Stock)
	}

	// 购物车已清空
	w, resp = doJSON(t, r, http.MethodGet, "/cart", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get cart status = %d", w.Code)
	}
	if left := resp["data"].(map[string]interface{})["items"].([]interface{}); len(left) != 0 {
		t.Fatalf("cart not cleared: %v", left)
	}
}

func TestCreateOrderEmptyCart(t *testing.T) {
	r, _ := setupCartOrderTest(t)

	// 惰性创建一个空购物车
	if w, _ := doJSON(t, r, http.MethodGet, "/cart", nil, nil); w.Code != http.StatusOK {
		t.Fatalf("get cart status = %d", w.Code)
	}

	w, resp := doJSON(t, r, http.MethodPost, "/orders", gin.H{
		"payment_method":   constants.PaymentMethodCOD,
		"shipping_address": shippingAddressBody(),
	}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	if code := errorCode(t, resp); code != "CART_EMPTY" {
		t.Fatalf("error code = %q", code)
	}
}

func TestCreateOrderStockConflictDetails(t *testing.T) {
	r, db := setupCartOrderTest(t)
	product := seedCartOrderProduct(t, db, "keyboard", "45.00", 5)

	if w, _ := doJSON(t, r, http.MethodPost, "/cart/items", gin.H{
		"product_id": product.ID,
		"quantity":   5,
	}, nil); w.Code != http.StatusOK {
		t.Fatalf("add item status = %d", w.Code)
	}

	// 下单前被别人买走 3 件
	if err := db.Model(&models.Product{}).Where("id = ?", product.ID).
		Update("stock", 2).Error; err != nil {
		t.Fatalf("shrink stock failed: %v", err)
	}

	w, resp := doJSON(t, r, http.MethodPost, "/orders", gin.H{
		"payment_method":   constants.PaymentMethodCard,
		"shipping_address": shippingAddressBody(),
	}, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	if code := errorCode(t, resp); code != "INSUFFICIENT_STOCK" {
		t.Fatalf("error code = %q", code)
	}
	details := resp["error"].(map[string]interface{})["details"].(map[string]interface{})
	if details["available"] != float64(2) || details["requested"] != float64(5) {
		t.Fatalf("details = %v", details)
	}

	// 下单失败不动库存
	var fresh models.Product
	if err := db.First(&fresh, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if fresh.Stock != 2 {
		t.Fatalf("stock after failed order = %d", fresh.Stock)
	}
}

func TestCanReviewProductGate(t *testing.T) {
	r, db := setupCartOrderTest(t)
	product := seedCartOrderProduct(t, db, "speaker", "60.00", 8)

	if w, _ := doJSON(t, r, http.MethodPost, "/cart/items", gin.H{
		"product_id": product.ID,
		"quantity":   1,
	}, nil); w.Code != http.StatusOK {
		t.Fatalf("add item status = %d", w.Code)
	}
	w, resp := doJSON(t, r, http.MethodPost, "/orders", gin.H{
		"payment_method":   constants.PaymentMethodPaypal,
		"shipping_address": shippingAddressBody(),
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create order status = %d body=%s", w.Code, w.Body.String())
	}
	orderID := uint(resp["data"].(map[string]interface{})["id"].(float64))

	// 未送达不可评价
	w, resp = doJSON(t, r, http.MethodGet, fmt.Sprintf("/products/%d/can-review", product.ID), nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("can-review status = %d", w.Code)
	}
	if can := resp["data"].(map[string]interface{})["can_review"].(bool); can {
		t.Fatalf("can_review = true before delivery")
	}

	now := time.Now()
	if err := db.Model(&models.Order{}).Where("id = ?", orderID).Updates(map[string]interface{}{
		"status":       constants.OrderStatusDelivered,
		"delivered_at": &now,
	}).Error; err != nil {
		t.Fatalf("mark delivered failed: %v", err)
	}

	w, resp = doJSON(t, r, http.MethodGet, fmt.Sprintf("/products/%d/can-review", product.ID), nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("can-review status = %d", w.Code)
	}
	if can := resp["data"].(map[string]interface{})["can_review"].(bool); !can {
		t.Fatalf("can_review = false after delivery")
	}
}
