package admin

import (
	"errors"
	"strings"

	"github.com/Eric920418/shoe-sub000/internal/http/response"
	"github.com/Eric920418/shoe-sub000/internal/models"
	"github.com/Eric920418/shoe-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// TierRequest 会员等级创建/更新请求
type TierRequest struct {
	Name                  string  `json:"name" binding:"required"`
	MinSpent              string  `json:"min_spent"`
	MaxSpent              *string `json:"max_spent"`
	Discount              string  `json:"discount"`
	PointsMultiplier      string  `json:"points_multiplier"`
	FreeShippingThreshold *string `json:"free_shipping_threshold"`
	BirthdayGift          string  `json:"birthday_gift"`
	SortOrder             int     `json:"sort_order"`
	IsActive              *bool   `json:"is_active"`
}

func (r TierRequest) toServiceInput() (service.TierInput, error) {
	input := service.TierInput{
		Name:         strings.TrimSpace(r.Name),
		BirthdayGift: r.BirthdayGift,
		SortOrder:    r.SortOrder,
		IsActive:     r.IsActive,
	}

	minSpent := r.MinSpent
	if minSpent == "" {
		minSpent = "0"
	}
	parsedMin, err := models.NewMoneyFromString(minSpent)
	if err != nil {
		return input, err
	}
	input.MinSpent = parsedMin

	if r.MaxSpent != nil {
		parsedMax, err := models.NewMoneyFromString(*r.MaxSpent)
		if err != nil {
			return input, err
		}
		input.MaxSpent = &parsedMax
	}
	if r.FreeShippingThreshold != nil {
		parsed, err := models.NewMoneyFromString(*r.FreeShippingThreshold)
		if err != nil {
			return input, err
		}
		input.FreeShippingThreshold = &parsed
	}

	discount := r.Discount
	if discount == "" {
		discount = "1"
	}
	input.Discount, err = decimal.NewFromString(discount)
	if err != nil {
		return input, err
	}

	multiplier := r.PointsMultiplier
	if multiplier == "" {
		multiplier = "1"
	}
	input.PointsMultiplier, err = decimal.NewFromString(multiplier)
	if err != nil {
		return input, err
	}

	return input, nil
}

func respondTierError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTierNotFound):
		respondError(c, response.CodeNotFound, "error.tier_not_found", nil)
	case errors.Is(err, service.ErrTierInvalid):
		respondError(c, response.CodeBadRequest, "error.tier_invalid", nil)
	case errors.Is(err, service.ErrTierRangeOverlap):
		respondError(c, response.CodeBadRequest, "error.tier_range_overlap", nil)
	default:
		respondError(c, response.CodeInternal, "error.tier_save_failed", err)
	}
}

// ListAdminTiers 会员等级列表（含停用）
func (h *Handler) ListAdminTiers(c *gin.Context) {
	tiers, err := h.MembershipService.ListTiers()
	if err != nil {
		respondError(c, response.CodeInternal, "error.tier_fetch_failed", err)
		return
	}

	response.Success(c, tiers)
}

// CreateTier 创建会员等级
func (h *Handler) CreateTier(c *gin.Context) {
	var req TierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	input, err := req.toServiceInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.tier_invalid", err)
		return
	}

	tier, err := h.MembershipService.CreateTier(input)
	if err != nil {
		respondTierError(c, err)
		return
	}

	response.Success(c, tier)
}

// UpdateTier 更新会员等级
func (h *Handler) UpdateTier(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req TierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	input, err := req.toServiceInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.tier_invalid", err)
		return
	}

	tier, err := h.MembershipService.UpdateTier(id, input)
	if err != nil {
		respondTierError(c, err)
		return
	}

	response.Success(c, tier)
}

// DeleteTier 删除会员等级
func (h *Handler) DeleteTier(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.MembershipService.DeleteTier(id); err != nil {
		respondTierError(c, err)
		return
	}

	response.Success(c, nil)
}
