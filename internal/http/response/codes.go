package response

import "net/http"

// 业务错误码
const (
	CodeProductNotFound   = "PRODUCT_NOT_FOUND"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeInvalidQuantity   = "INVALID_QUANTITY"
	CodeCartNotFound      = "CART_NOT_FOUND"
	CodeCartEmpty         = "CART_EMPTY"
	CodeItemNotFound      = "ITEM_NOT_FOUND"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeOrderNotFound     = "ORDER_NOT_FOUND"

	CodeCategoryNotFound = "CATEGORY_NOT_FOUND"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeSlugExists       = "SLUG_EXISTS"
	CodeCategoryInUse    = "CATEGORY_IN_USE"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeNotFound         = "NOT_FOUND"
	CodeTooManyRequests  = "TOO_MANY_REQUESTS"
	CodeConflict         = "CONFLICT"
	CodeInternal         = "INTERNAL_ERROR"
)

// httpStatusByCode 错误码对应的 HTTP 状态
var httpStatusByCode = map[string]int{
	CodeProductNotFound:   http.StatusNotFound,
	CodeInsufficientStock: http.StatusConflict,
	CodeInvalidQuantity:   http.StatusBadRequest,
	CodeCartNotFound:      http.StatusNotFound,
	CodeCartEmpty:         http.StatusBadRequest,
	CodeItemNotFound:      http.StatusNotFound,
	CodeInvalidTransition: http.StatusConflict,
	CodeOrderNotFound:     http.StatusNotFound,
	CodeCategoryNotFound:  http.StatusNotFound,
	CodeValidationFailed:  http.StatusBadRequest,
	CodeSlugExists:        http.StatusConflict,
	CodeCategoryInUse:     http.StatusConflict,
	CodeUnauthorized:      http.StatusUnauthorized,
	CodeForbidden:         http.StatusForbidden,
	CodeNotFound:          http.StatusNotFound,
	CodeTooManyRequests:   http.StatusTooManyRequests,
	CodeConflict:          http.StatusConflict,
	CodeInternal:          http.StatusInternalServerError,
}

// HTTPStatus 返回错误码默认的 HTTP 状态，未知错误码按 500 处理
func HTTPStatus(code string) int {
	if status, ok := httpStatusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
