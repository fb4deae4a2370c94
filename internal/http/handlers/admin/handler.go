package admin

import "github.com/storelane/storelane/internal/provider"

// Handler 管理端 API 处理器，直接复用容器里的服务
type Handler struct {
	*provider.Container
}

// New 创建管理端处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
