package public

import (
	"errors"

	handlershared "github.com/storelane/storelane/internal/http/handlers/shared"
	"github.com/storelane/storelane/internal/http/response"
	"github.com/storelane/storelane/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   string
	msg    string
}

func respondError(c *gin.Context, code string, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

// respondDomainError 优先处理携带结构化详情的业务错误，其余按规则表匹配。
func respondDomainError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode string, fallbackMsg string) {
	var stockErr *service.StockError
	if errors.As(err, &stockErr) {
		handlershared.RespondErrorWithDetails(c, response.CodeInsufficientStock, stockErr.Error(), gin.H{
			"product_id": stockErr.ProductID,
			"available":  stockErr.Available,
			"requested":  stockErr.Requested,
		}, nil)
		return
	}
	var transitionErr *service.TransitionError
	if errors.As(err, &transitionErr) {
		handlershared.RespondErrorWithDetails(c, response.CodeInvalidTransition, transitionErr.Error(), gin.H{
			"from": transitionErr.From,
			"to":   transitionErr.To,
		}, nil)
		return
	}
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var cartErrorRules = []mappedHandlerError{
	{target: service.ErrProductNotFound, code: response.CodeProductNotFound, msg: "product not found"},
	{target: service.ErrInvalidQuantity, code: response.CodeInvalidQuantity, msg: "quantity must be positive"},
	{target: service.ErrCartNotFound, code: response.CodeCartNotFound, msg: "cart not found"},
	{target: service.ErrCartItemNotFound, code: response.CodeItemNotFound, msg: "cart item not found"},
}

var orderCreateErrorRules = []mappedHandlerError{
	{target: service.ErrCartNotFound, code: response.CodeCartNotFound, msg: "cart not found"},
	{target: service.ErrCartEmpty, code: response.CodeCartEmpty, msg: "cart is empty"},
	{target: service.ErrProductNotFound, code: response.CodeProductNotFound, msg: "product not found"},
	{target: service.ErrPaymentMethodInvalid, code: response.CodeValidationFailed, msg: "payment method invalid"},
	{target: service.ErrShippingAddressRequired, code: response.CodeValidationFailed, msg: "shipping address required"},
}

var orderQueryErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeOrderNotFound, msg: "order not found"},
}

func respondCartError(c *gin.Context, err error) {
	respondDomainError(c, err, cartErrorRules, response.CodeInternal, "cart operation failed")
}

func respondOrderCreateError(c *gin.Context, err error) {
	respondDomainError(c, err, orderCreateErrorRules, response.CodeInternal, "order create failed")
}

func respondOrderQueryError(c *gin.Context, err error) {
	respondDomainError(c, err, orderQueryErrorRules, response.CodeInternal, "order fetch failed")
}
