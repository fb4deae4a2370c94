package admin

import (
	"github.com/storelane/storelane/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetCaptchaSettings 获取验证码配置
func (h *Handler) GetCaptchaSettings(c *gin.Context) {
	cfg := h.Config.Captcha
	response.Success(c, gin.H{
		"provider": cfg.Provider,
		"scenes": gin.H{
			"admin_login": cfg.Scenes.AdminLogin,
			"user_login":  cfg.Scenes.UserLogin,
			"register":    cfg.Scenes.Register,
		},
		"image": cfg.Image,
	})
}
