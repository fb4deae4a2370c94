package admin

import (
	handlershared "github.com/storelane/storelane/internal/http/handlers/shared"
)

// CaptchaPayloadRequest 管理端验证码请求载荷
type CaptchaPayloadRequest = handlershared.CaptchaPayloadRequest
