package public

import (
	"errors"
	"strconv"
	"strings"

	"github.com/Eric920418/shoe-sub000/internal/constants"
	"github.com/Eric920418/shoe-sub000/internal/http/response"
	"github.com/Eric920418/shoe-sub000/internal/models"
	"github.com/Eric920418/shoe-sub000/internal/repository"
	"github.com/Eric920418/shoe-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// OrderItemRequest 订单项请求
type OrderItemRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	VariantID *uint  `json:"variant_id"`
	Size      string `json:"size" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

// CreateOrderRequest 会员创建订单请求
type CreateOrderRequest struct {
	Items         []OrderItemRequest `json:"items"`
	FromCart      bool               `json:"from_cart"`
	CreditsToUse  string             `json:"credits_to_use"`
	CouponCode    string             `json:"coupon_code"`
	ShippingInfo  models.JSON        `json:"shipping_info"`
	PaymentMethod string             `json:"payment_method"`
}

// CreateGuestOrderRequest 游客创建订单请求
type CreateGuestOrderRequest struct {
	CaptchaPayloadRequest
	Items         []OrderItemRequest `json:"items"`
	CouponCode    string             `json:"coupon_code"`
	ShippingInfo  models.JSON        `json:"shipping_info"`
	PaymentMethod string             `json:"payment_method"`
	GuestEmail    string             `json:"guest_email"`
	GuestPassword string             `json:"guest_password"`
	GuestLocale   string             `json:"guest_locale"`
}

func toServiceOrderItems(items []OrderItemRequest) []service.OrderItemInput {
	var result []service.OrderItemInput
	for _, item := range items {
		result = append(result, service.OrderItemInput{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Size:      item.Size,
			Quantity:  item.Quantity,
		})
	}
	return result
}

// CreateOrder 会员创建订单
func (h *Handler) CreateOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	order, err := h.OrderService.CreateOrder(service.CreateOrderInput{
		UserID:        uid,
		Items:         toServiceOrderItems(req.Items),
		FromCart:      req.FromCart,
		CreditsToUse:  req.CreditsToUse,
		CouponCode:    req.CouponCode,
		ShippingInfo:  req.ShippingInfo,
		PaymentMethod: req.PaymentMethod,
		ClientIP:      c.ClientIP(),
	})
	if err != nil {
		respondOrderCreateError(c, err)
		return
	}

	response.Success(c, order)
}

// PreviewOrder 下单前试算（只读，不扣库存不核销优惠）
func (h *Handler) PreviewOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	quote, err := h.OrderService.PreviewOrder(service.CreateOrderInput{
		UserID:       uid,
		Items:        toServiceOrderItems(req.Items),
		FromCart:     req.FromCart,
		CreditsToUse: req.CreditsToUse,
		CouponCode:   req.CouponCode,
	})
	if err != nil {
		respondOrderCreateError(c, err)
		return
	}

	response.Success(c, quote)
}

// CreateGuestOrder 游客创建订单
func (h *Handler) CreateGuestOrder(c *gin.Context) {
	var req CreateGuestOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if h.CaptchaService != nil {
		if err := h.CaptchaService.Verify(constants.CaptchaSceneGuestCreateOrder, req.toServicePayload()); err != nil {
			switch {
			case errors.Is(err, service.ErrCaptchaRequired):
				respondError(c, response.CodeBadRequest, "error.captcha_required", nil)
			case errors.Is(err, service.ErrCaptchaInvalid):
				respondError(c, response.CodeBadRequest, "error.captcha_invalid", nil)
			default:
				respondError(c, response.CodeInternal, "error.captcha_unavailable", err)
			}
			return
		}
	}

	order, err := h.OrderService.CreateOrder(service.CreateOrderInput{
		Items:         toServiceOrderItems(req.Items),
		CouponCode:    req.CouponCode,
		ShippingInfo:  req.ShippingInfo,
		PaymentMethod: req.PaymentMethod,
		GuestEmail:    req.GuestEmail,
		GuestPassword: req.GuestPassword,
		GuestLocale:   req.GuestLocale,
		ClientIP:      c.ClientIP(),
	})
	if err != nil {
		respondOrderCreateError(c, err)
		return
	}

	response.Success(c, order)
}

// ListOrders 获取我的订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	orders, total, err := h.OrderService.GetMyOrders(uid, repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.TrimSpace(c.Query("status")),
		OrderNo:  strings.TrimSpace(c.Query("order_no")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.order_fetch_failed", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, orders, pagination)
}

// GetOrder 获取我的订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	order, err := h.OrderService.GetOrder(uid, uint(id))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "error.order_not_found", nil)
		case errors.Is(err, service.ErrOrderAccessDenied):
			respondError(c, response.CodeForbidden, "error.order_access_denied", nil)
		default:
			respondError(c, response.CodeInternal, "error.order_fetch_failed", err)
		}
		return
	}

	response.Success(c, order)
}

// CancelOrder 取消我的订单
func (h *Handler) CancelOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	order, err := h.OrderService.CancelOrder(uid, uint(id))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "error.order_not_found", nil)
		case errors.Is(err, service.ErrOrderAccessDenied):
			respondError(c, response.CodeForbidden, "error.order_access_denied", nil)
		case errors.Is(err, service.ErrOrderStatusInvalid):
			respondError(c, response.CodeBadRequest, "error.order_status_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.order_update_failed", err)
		}
		return
	}

	response.Success(c, order)
}

// GuestOrderLookupRequest 游客订单查询请求
type GuestOrderLookupRequest struct {
	OrderNo  string `json:"order_no" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password"`
}

// LookupGuestOrder 游客按订单号+邮箱查询订单
func (h *Handler) LookupGuestOrder(c *gin.Context) {
	var req GuestOrderLookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	order, err := h.OrderService.GetGuestOrder(req.OrderNo, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "error.order_not_found", nil)
		case errors.Is(err, service.ErrOrderAccessDenied):
			respondError(c, response.CodeForbidden, "error.order_access_denied", nil)
		default:
			respondError(c, response.CodeInternal, "error.order_fetch_failed", err)
		}
		return
	}

	response.Success(c, order)
}
