package shared

import (
	"github.com/storelane/storelane/internal/http/response"
	"github.com/storelane/storelane/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 返回错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code string, msg string, err error) {
	RespondErrorWithDetails(c, code, msg, nil, err)
}

// RespondErrorWithDetails 返回带结构化详情的错误响应。
func RespondErrorWithDetails(c *gin.Context, code string, msg string, details interface{}, err error) {
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", code,
			"message", msg,
			"error", err,
		)
	}
	response.ErrorWithDetails(c, code, msg, details)
}
