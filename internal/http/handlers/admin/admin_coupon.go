package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/Eric920418/shoe-sub000/internal/http/response"
	"github.com/Eric920418/shoe-sub000/internal/repository"
	"github.com/Eric920418/shoe-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

func respondCouponError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCouponNotFound):
		respondError(c, response.CodeNotFound, "error.coupon_not_found", nil)
	case errors.Is(err, service.ErrCouponInvalid):
		respondError(c, response.CodeBadRequest, "error.coupon_invalid", nil)
	default:
		respondError(c, response.CodeInternal, "error.coupon_save_failed", err)
	}
}

// ListAdminCoupons 优惠券列表
func (h *Handler) ListAdminCoupons(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	coupons, total, err := h.CouponService.ListCoupons(repository.CouponListFilter{
		Page:     page,
		PageSize: pageSize,
		Code:     strings.TrimSpace(c.Query("code")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.coupon_fetch_failed", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, coupons, pagination)
}

// CreateCoupon 创建优惠券
func (h *Handler) CreateCoupon(c *gin.Context) {
	var input service.CouponInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	coupon, err := h.CouponService.CreateCoupon(input)
	if err != nil {
		respondCouponError(c, err)
		return
	}

	response.Success(c, coupon)
}

// UpdateCoupon 更新优惠券
func (h *Handler) UpdateCoupon(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input service.CouponInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	coupon, err := h.CouponService.UpdateCoupon(id, input)
	if err != nil {
		respondCouponError(c, err)
		return
	}

	response.Success(c, coupon)
}

// DeleteCoupon 删除优惠券
func (h *Handler) DeleteCoupon(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.CouponService.DeleteCoupon(id); err != nil {
		respondCouponError(c, err)
		return
	}

	response.Success(c, nil)
}

// ListCouponUsages 优惠券使用记录
func (h *Handler) ListCouponUsages(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	var userID uint
	if raw := strings.TrimSpace(c.Query("user_id")); raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 64); err == nil {
			userID = uint(parsed)
		}
	}

	usages, total, err := h.CouponService.ListUsages(repository.CouponUsageListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   userID,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.coupon_fetch_failed", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, usages, pagination)
}
