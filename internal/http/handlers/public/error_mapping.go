package public

import (
	"errors"

	"github.com/Eric920418/shoe-sub000/internal/http/response"
	"github.com/Eric920418/shoe-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var orderItemErrorRules = []mappedHandlerError{
	{target: service.ErrOrderEmpty, code: response.CodeBadRequest, key: "error.order_empty"},
	{target: service.ErrCartEmpty, code: response.CodeBadRequest, key: "error.cart_empty"},
	{target: service.ErrOrderQuantityInvalid, code: response.CodeBadRequest, key: "error.order_item_invalid"},
	{target: service.ErrProductNotFound, code: response.CodeBadRequest, key: "error.product_not_found"},
	{target: service.ErrProductInactive, code: response.CodeBadRequest, key: "error.product_inactive"},
	{target: service.ErrVariantNotFound, code: response.CodeBadRequest, key: "error.variant_not_found"},
	{target: service.ErrVariantInactive, code: response.CodeBadRequest, key: "error.variant_inactive"},
	{target: service.ErrSizeNotFound, code: response.CodeBadRequest, key: "error.size_not_found"},
	{target: service.ErrStockInsufficient, code: response.CodeBadRequest, key: "error.stock_insufficient"},
}

var orderCouponErrorRules = []mappedHandlerError{
	{target: service.ErrCouponNotFound, code: response.CodeBadRequest, key: "error.coupon_not_found"},
	{target: service.ErrCouponInvalid, code: response.CodeBadRequest, key: "error.coupon_invalid"},
	{target: service.ErrCouponInactive, code: response.CodeBadRequest, key: "error.coupon_inactive"},
	{target: service.ErrCouponNotStarted, code: response.CodeBadRequest, key: "error.coupon_not_started"},
	{target: service.ErrCouponExpired, code: response.CodeBadRequest, key: "error.coupon_expired"},
	{target: service.ErrCouponUsageLimit, code: response.CodeBadRequest, key: "error.coupon_usage_limit"},
	{target: service.ErrCouponPerUserLimit, code: response.CodeBadRequest, key: "error.coupon_per_user_limit"},
	{target: service.ErrCouponMinAmount, code: response.CodeBadRequest, key: "error.coupon_min_amount"},
}

var orderCreditErrorRules = []mappedHandlerError{
	{target: service.ErrCreditInvalidAmount, code: response.CodeBadRequest, key: "error.credit_amount_invalid"},
	{target: service.ErrCreditInsufficient, code: response.CodeBadRequest, key: "error.credit_insufficient"},
}

var guestOrderErrorRules = []mappedHandlerError{
	{target: service.ErrGuestEmailRequired, code: response.CodeBadRequest, key: "error.guest_email_required"},
	{target: service.ErrGuestOrderNeedsItems, code: response.CodeBadRequest, key: "error.guest_order_needs_items"},
	{target: service.ErrGuestCreditNotAllowed, code: response.CodeBadRequest, key: "error.guest_credit_not_allowed"},
	{target: service.ErrUserInvalid, code: response.CodeBadRequest, key: "error.email_invalid"},
}

func respondOrderCreateError(c *gin.Context, err error) {
	rules := concatMappedHandlerErrors(orderItemErrorRules, orderCouponErrorRules, orderCreditErrorRules, guestOrderErrorRules)
	respondWithMappedError(c, err, rules, response.CodeInternal, "error.order_create_failed")
}

var cartErrorRules = []mappedHandlerError{
	{target: service.ErrOrderQuantityInvalid, code: response.CodeBadRequest, key: "error.cart_item_invalid"},
	{target: service.ErrProductNotFound, code: response.CodeBadRequest, key: "error.product_not_found"},
	{target: service.ErrProductInactive, code: response.CodeBadRequest, key: "error.product_inactive"},
	{target: service.ErrVariantNotFound, code: response.CodeBadRequest, key: "error.variant_not_found"},
	{target: service.ErrVariantInactive, code: response.CodeBadRequest, key: "error.variant_inactive"},
	{target: service.ErrSizeNotFound, code: response.CodeBadRequest, key: "error.size_not_found"},
	{target: service.ErrStockInsufficient, code: response.CodeBadRequest, key: "error.stock_insufficient"},
	{target: service.ErrNotFound, code: response.CodeNotFound, key: "error.not_found"},
}

func respondCartError(c *gin.Context, err error) {
	respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "error.cart_save_failed")
}

var returnCreateErrorRules = []mappedHandlerError{
	{target: service.ErrReturnEmpty, code: response.CodeBadRequest, key: "error.return_empty"},
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, key: "error.order_not_found"},
	{target: service.ErrOrderAccessDenied, code: response.CodeForbidden, key: "error.order_access_denied"},
	{target: service.ErrReturnOrderState, code: response.CodeBadRequest, key: "error.return_order_state"},
	{target: service.ErrReturnOpenExists, code: response.CodeBadRequest, key: "error.return_open_exists"},
	{target: service.ErrReturnQuantityExceeded, code: response.CodeBadRequest, key: "error.return_quantity_exceeded"},
}

func respondReturnCreateError(c *gin.Context, err error) {
	respondWithMappedError(c, err, returnCreateErrorRules, response.CodeInternal, "error.return_save_failed")
}
