package public

import (
	"github.com/Eric920418/shoe-sub000/internal/constants"
	"github.com/Eric920418/shoe-sub000/internal/http/response"

	"github.com/gin-gonic/gin"
)

// StoreConfigResponse 前台运行时配置
type StoreConfigResponse struct {
	ShippingFee       string `json:"shipping_fee"`
	AutoCompleteDays  int    `json:"auto_complete_days"`
	GuestOrderCaptcha bool   `json:"guest_order_captcha"`
}

// GetStoreConfig 返回前台需要的运行时配置
func (h *Handler) GetStoreConfig(c *gin.Context) {
	captchaEnabled := false
	if h.CaptchaService != nil {
		captchaEnabled = h.CaptchaService.SceneEnabled(constants.CaptchaSceneGuestCreateOrder)
	}
	response.Success(c, StoreConfigResponse{
		ShippingFee:       h.Config.Order.ShippingFee,
		AutoCompleteDays:  h.Config.Order.AutoCompleteDays,
		GuestOrderCaptcha: captchaEnabled,
	})
}
