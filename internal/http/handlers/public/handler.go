package public

import "github.com/storelane/storelane/internal/provider"

// Handler 前台 API 处理器，覆盖公开目录、用户账号、购物车与订单接口
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
