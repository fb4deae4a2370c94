package public

import (
	"errors"
	"strconv"
	"strings"

	"github.com/storelane/storelane/internal/http/response"
	"github.com/storelane/storelane/internal/models"
	"github.com/storelane/storelane/internal/service"

	"github.com/gin-gonic/gin"
)

// PublicProductView 公共商品响应结构
type PublicProductView struct {
	models.Product
	CanReview bool `json:"can_review"`
}

// GetCategories 获取分类列表
func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.CategoryService.List()
	if err != nil {
		respondError(c, response.CodeInternal, "category fetch failed", err)
		return
	}
	response.Success(c, categories)
}

// GetProducts 获取商品列表
func (h *Handler) GetProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	categoryID := c.Query("category_id")
	search := strings.TrimSpace(c.Query("search"))
	stockStatus := strings.TrimSpace(c.Query("stock_status"))

	products, total, err := h.ProductService.ListPublic(categoryID, search, stockStatus, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "product fetch failed", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, products, pagination)
}

// GetProduct 获取商品详情。
// 已登录用户附带 can_review：仅当其某个已送达订单包含该商品时为 true。
func (h *Handler) GetProduct(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		respondError(c, response.CodeProductNotFound, "product not found", nil)
		return
	}

	product, err := h.ProductService.GetPublicBySlug(slug)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeProductNotFound, "product not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "product fetch failed", err)
		return
	}

	view := PublicProductView{Product: *product}
	if uid, ok := optionalUserID(c); ok {
		canReview, err := h.PurchaseGateService.CanReview(uid, product.ID)
		if err != nil {
			respondError(c, response.CodeInternal, "product fetch failed", err)
			return
		}
		view.CanReview = canReview
	}

	response.Success(c, view)
}

// CanReviewProduct 查询当前用户是否可评价指定商品
func (h *Handler) CanReviewProduct(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || productID == 0 {
		respondError(c, response.CodeProductNotFound, "product not found", nil)
		return
	}

	canReview, err := h.PurchaseGateService.CanReview(uid, uint(productID))
	if err != nil {
		respondError(c, response.CodeInternal, "review check failed", err)
		return
	}
	response.Success(c, gin.H{"can_review": canReview})
}

// optionalUserID 读取可选登录态，未登录时不报错
func optionalUserID(c *gin.Context) (uint, bool) {
	value, ok := c.Get("user_id")
	if !ok {
		return 0, false
	}
	switch v := value.(type) {
	case uint:
		return v, v != 0
	case int:
		if v > 0 {
			return uint(v), true
		}
	case float64:
		if v > 0 {
			return uint(v), true
		}
	}
	return 0, false
}
