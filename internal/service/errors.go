package service

import (
	"errors"
	"fmt"
)

// 通用业务错误
var (
	ErrNotFound      = errors.New("record not found")
	ErrSlugExists    = errors.New("slug already exists")
	ErrCategoryInUse = errors.New("category has products")
)

// 商品与库存错误
var (
	ErrProductNotFound     = errors.New("product not found")
	ErrProductNotAvailable = errors.New("product not available")
	ErrProductPriceInvalid = errors.New("product price invalid")
	ErrInvalidQuantity     = errors.New("invalid quantity")
)

// 购物车错误
var (
	ErrCartNotFound     = errors.New("cart not found")
	ErrCartEmpty        = errors.New("cart is empty")
	ErrCartItemNotFound = errors.New("cart item not found")
)

// 订单错误
var (
	ErrOrderNotFound           = errors.New("order not found")
	ErrOrderCreateFailed       = errors.New("order create failed")
	ErrOrderUpdateFailed       = errors.New("order update failed")
	ErrOrderFetchFailed        = errors.New("order fetch failed")
	ErrShippingAddressRequired = errors.New("shipping address required")
	ErrPaymentMethodInvalid    = errors.New("payment method invalid")
)

// 认证错误
var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrInvalidPassword      = errors.New("invalid password")
	ErrUserExists           = errors.New("user already exists")
	ErrUserDisabled         = errors.New("user disabled")
	ErrEmailInvalid         = errors.New("email invalid")
	ErrCaptchaInvalid       = errors.New("captcha invalid")
	ErrCaptchaRequired      = errors.New("captcha required")
	ErrCaptchaConfigInvalid = errors.New("captcha config invalid")
)

// ErrInsufficientStock 库存不足哨兵，便于 errors.Is 匹配
var ErrInsufficientStock = errors.New("insufficient stock")

// StockError 库存不足详情
type StockError struct {
	ProductID   uint
	ProductName string
	Available   int
	Requested   int
}

// Error 实现 error 接口
func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: available %d, requested %d", e.ProductID, e.Available, e.Requested)
}

// Unwrap 支持 errors.Is(err, ErrInsufficientStock)
func (e *StockError) Unwrap() error {
	return ErrInsufficientStock
}

// ErrInvalidTransition 状态流转非法哨兵
var ErrInvalidTransition = errors.New("invalid status transition")

// TransitionError 状态流转非法详情
type TransitionError struct {
	From string
	To   string
}

// Error 实现 error 接口
func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}

// Unwrap 支持 errors.Is(err, ErrInvalidTransition)
func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
