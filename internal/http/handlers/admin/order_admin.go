package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/storelane/storelane/internal/http/response"
	"github.com/storelane/storelane/internal/models"
	"github.com/storelane/storelane/internal/repository"
	"github.com/storelane/storelane/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminOrderListItem 管理端订单列表返回
type AdminOrderListItem struct {
	models.Order
	UserEmail       string `json:"user_email,omitempty"`
	UserDisplayName string `json:"user_display_name,omitempty"`
}

// AdminOrderDetail 管理端订单详情返回
type AdminOrderDetail struct {
	models.Order
	UserEmail       string `json:"user_email,omitempty"`
	UserDisplayName string `json:"user_display_name,omitempty"`
}

// parseAdminOrderFilter 解析订单列表与统计共用的筛选参数
func parseAdminOrderFilter(c *gin.Context) (repository.OrderListFilter, bool) {
	filter := repository.OrderListFilter{
		Status:  strings.TrimSpace(c.Query("status")),
		OrderNo: strings.TrimSpace(c.Query("order_no")),
	}

	createdFrom, err := parseTimeNullable(strings.TrimSpace(c.Query("created_from")))
	if err != nil {
		respondError(c, response.CodeValidationFailed, "invalid created_from", err)
		return filter, false
	}
	createdTo, err := parseTimeNullable(strings.TrimSpace(c.Query("created_to")))
	if err != nil {
		respondError(c, response.CodeValidationFailed, "invalid created_to", err)
		return filter, false
	}
	filter.CreatedFrom = createdFrom
	filter.CreatedTo = createdTo

	if userIDStr := strings.TrimSpace(c.Query("user_id")); userIDStr != "" {
		if parsed, err := strconv.ParseUint(userIDStr, 10, 64); err == nil {
			filter.UserID = uint(parsed)
		}
	}
	return filter, true
}

// AdminListOrders 管理端订单列表
func (h *Handler) AdminListOrders(c *gin.Context) {
	filter, ok := parseAdminOrderFilter(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	filter.Page = page
	filter.PageSize = pageSize

	orders, total, err := h.OrderService.ListAdminOrders(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "order fetch failed", err)
		return
	}

	userMap := map[uint]models.User{}
	userIDs := make([]uint, 0, len(orders))
	seen := map[uint]struct{}{}
	for _, order := range orders {
		if order.UserID == 0 {
			continue
		}
		if _, ok := seen[order.UserID]; ok {
			continue
		}
		seen[order.UserID] = struct{}{}
		userIDs = append(userIDs, order.UserID)
	}
	if len(userIDs) > 0 {
		users, err := h.UserRepo.ListByIDs(userIDs)
		if err != nil {
			respondError(c, response.CodeInternal, "order fetch failed", err)
			return
		}
		for _, user := range users {
			userMap[user.ID] = user
		}
	}

	items := make([]AdminOrderListItem, 0, len(orders))
	for _, order := range orders {
		var email, displayName string
		if user, ok := userMap[order.UserID]; ok {
			email = user.Email
			displayName = user.DisplayName
		}
		items = append(items, AdminOrderListItem{
			Order:           order,
			UserEmail:       email,
			UserDisplayName: displayName,
		})
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, items, pagination)
}

// AdminGetOrder 管理端订单详情
func (h *Handler) AdminGetOrder(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeValidationFailed, "invalid order id", nil)
		return
	}

	order, err := h.OrderService.GetOrder(uint(orderID))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeOrderNotFound, "order not found", nil)
		default:
			respondError(c, response.CodeInternal, "order fetch failed", err)
		}
		return
	}

	var email, displayName string
	if order.UserID != 0 {
		user, err := h.UserRepo.GetByID(order.UserID)
		if err != nil {
			respondError(c, response.CodeInternal, "order fetch failed", err)
			return
		}
		if user != nil {
			email = user.Email
			displayName = user.DisplayName
		}
	}

	response.Success(c, AdminOrderDetail{
		Order:           *order,
		UserEmail:       email,
		UserDisplayName: displayName,
	})
}

// AdminOrderStats 管理端订单统计，复用列表筛选条件。
// 未指定状态时已取消订单不计入营收。
func (h *Handler) AdminOrderStats(c *gin.Context) {
	filter, ok := parseAdminOrderFilter(c)
	if !ok {
		return
	}

	stats, err := h.OrderService.AdminOrderStats(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "order stats failed", err)
		return
	}
	response.Success(c, stats)
}

// AdminUpdateOrderStatusRequest 管理端更新订单状态请求
type AdminUpdateOrderStatusRequest struct {
	Status         string `json:"status" binding:"required"`
	TrackingNumber string `json:"tracking_number"`
}

// AdminUpdateOrderStatus 管理端流转订单状态。
// 非法流转返回 INVALID_TRANSITION，附带 from/to 详情。
func (h *Handler) AdminUpdateOrderStatus(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeValidationFailed, "invalid order id", nil)
		return
	}

	var req AdminUpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeValidationFailed, "invalid request body", err)
		return
	}

	order, err := h.OrderStatusService.Transition(service.TransitionOrderInput{
		OrderID:        uint(orderID),
		TargetStatus:   req.Status,
		TrackingNumber: req.TrackingNumber,
	})
	if err != nil {
		var transitionErr *service.TransitionError
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeOrderNotFound, "order not found", nil)
		case errors.As(err, &transitionErr):
			respondErrorWithDetails(c, response.CodeInvalidTransition, transitionErr.Error(), gin.H{
				"from": transitionErr.From,
				"to":   transitionErr.To,
			}, nil)
		default:
			respondError(c, response.CodeInternal, "order update failed", err)
		}
		return
	}

	response.Success(c, order)
}
