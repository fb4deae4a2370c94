package admin

import (
	handlershared "github.com/storelane/storelane/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code string, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func respondErrorWithDetails(c *gin.Context, code string, msg string, details interface{}, err error) {
	handlershared.RespondErrorWithDetails(c, code, msg, details, err)
}

func normalizePagination(page, pageSize int) (int, int) {
	return handlershared.NormalizePagination(page, pageSize)
}
