package public

import (
	"strconv"
	"strings"

	"github.com/storelane/storelane/internal/cache"
	handlershared "github.com/storelane/storelane/internal/http/handlers/shared"
	"github.com/storelane/storelane/internal/http/response"
	"github.com/storelane/storelane/internal/models"
	"github.com/storelane/storelane/internal/repository"
	"github.com/storelane/storelane/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateOrderRequest 创建订单请求
type CreateOrderRequest struct {
	PaymentMethod   string      `json:"payment_method" binding:"required"`
	ShippingAddress models.JSON `json:"shipping_address" binding:"required"`
}

// CreateOrder 从购物车创建订单。
// 携带 Idempotency-Key 请求头时，同一键在有效期内只创建一次。
func (h *Handler) CreateOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeValidationFailed, "invalid request body", err)
		return
	}

	idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
	if idemKey != "" {
		reserved, err := cache.ReserveIdempotencyKey(c.Request.Context(), uid, idemKey)
		if err != nil {
			handlershared.RequestLog(c).Warnw("order_idempotency_reserve_failed", "error", err)
		} else if !reserved {
			h.respondIdempotentReplay(c, uid, idemKey)
			return
		}
	}

	order, err := h.OrderService.CreateOrder(service.CreateOrderInput{
		UserID:          uid,
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: req.ShippingAddress,
		ClientIP:        c.ClientIP(),
	})
	if err != nil {
		if idemKey != "" {
			if releaseErr := cache.ReleaseIdempotencyKey(c.Request.Context(), uid, idemKey); releaseErr != nil {
				handlershared.RequestLog(c).Warnw("order_idempotency_release_failed", "error", releaseErr)
			}
		}
		respondOrderCreateError(c, err)
		return
	}

	if idemKey != "" {
		if err := cache.StoreIdempotentOrder(c.Request.Context(), uid, idemKey, order.ID); err != nil {
			handlershared.RequestLog(c).Warnw("order_idempotency_store_failed", "error", err)
		}
	}

	response.Created(c, order)
}

// respondIdempotentReplay 返回幂等键首次创建出的订单
func (h *Handler) respondIdempotentReplay(c *gin.Context, uid uint, idemKey string) {
	orderID, exists, err := cache.GetIdempotentOrder(c.Request.Context(), uid, idemKey)
	if err != nil || !exists {
		respondError(c, response.CodeConflict, "duplicate request", err)
		return
	}
	if orderID == 0 {
		// 首次请求仍在处理中
		respondError(c, response.CodeConflict, "request is being processed", nil)
		return
	}
	order, err := h.OrderService.GetUserOrder(uid, orderID)
	if err != nil {
		respondOrderQueryError(c, err)
		return
	}
	response.Success(c, order)
}

// ListOrders 获取当前用户订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	status := strings.TrimSpace(c.Query("status"))
	orderNo := strings.TrimSpace(c.Query("order_no"))

	orders, total, err := h.OrderService.ListUserOrders(repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   uid,
		Status:   status,
		OrderNo:  orderNo,
	})
	if err != nil {
		respondOrderQueryError(c, err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, orders, pagination)
}

// GetOrder 获取订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeValidationFailed, "invalid order id", nil)
		return
	}

	order, err := h.OrderService.GetUserOrder(uid, uint(orderID))
	if err != nil {
		respondOrderQueryError(c, err)
		return
	}

	response.Success(c, order)
}

// GetOrderByOrderNo 按订单号获取订单详情
func (h *Handler) GetOrderByOrderNo(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	orderNo := strings.TrimSpace(c.Param("order_no"))
	if orderNo == "" {
		respondError(c, response.CodeValidationFailed, "invalid order no", nil)
		return
	}

	order, err := h.OrderService.GetUserOrderByNo(uid, orderNo)
	if err != nil {
		respondOrderQueryError(c, err)
		return
	}

	response.Success(c, order)
}
