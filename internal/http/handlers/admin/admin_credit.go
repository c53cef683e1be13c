package admin

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/Eric920418/shoe-sub000/internal/http/response"
	"github.com/Eric920418/shoe-sub000/internal/models"
	"github.com/Eric920418/shoe-sub000/internal/repository"
	"github.com/Eric920418/shoe-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// IssueCreditRequest 授予购物金请求
type IssueCreditRequest struct {
	UserID           uint       `json:"user_id"`
	Amount           string     `json:"amount" binding:"required"`
	Source           string     `json:"source"`
	ValidFrom        *time.Time `json:"valid_from"`
	ValidUntil       *time.Time `json:"valid_until"`
	MaxUsagePerOrder *string    `json:"max_usage_per_order"`
	MinOrderAmount   *string    `json:"min_order_amount"`
	Remark           string     `json:"remark"`
}

func (r IssueCreditRequest) toServiceInput() (service.IssueCreditInput, error) {
	input := service.IssueCreditInput{
		UserID: r.UserID,
		Source: strings.TrimSpace(r.Source),
		Remark: r.Remark,
	}

	amount, err := models.NewMoneyFromString(r.Amount)
	if err != nil {
		return input, err
	}
	input.Amount = amount

	if r.ValidFrom != nil {
		input.ValidFrom = *r.ValidFrom
	}
	if r.ValidUntil != nil {
		input.ValidUntil = *r.ValidUntil
	}
	if r.MaxUsagePerOrder != nil {
		parsed, err := models.NewMoneyFromString(*r.MaxUsagePerOrder)
		if err != nil {
			return input, err
		}
		input.MaxUsagePerOrder = &parsed
	}
	if r.MinOrderAmount != nil {
		parsed, err := models.NewMoneyFromString(*r.MinOrderAmount)
		if err != nil {
			return input, err
		}
		input.MinOrderAmount = &parsed
	}

	return input, nil
}

func respondCreditError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		respondError(c, response.CodeNotFound, "error.user_not_found", nil)
	case errors.Is(err, service.ErrCreditGrantNotFound):
		respondError(c, response.CodeNotFound, "error.credit_not_found", nil)
	case errors.Is(err, service.ErrCreditInvalidAmount):
		respondError(c, response.CodeBadRequest, "error.credit_amount_invalid", nil)
	default:
		respondError(c, response.CodeInternal, "error.credit_save_failed", err)
	}
}

// IssueCredit 给单个用户授予购物金
func (h *Handler) IssueCredit(c *gin.Context) {
	var req IssueCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	input, err := req.toServiceInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.credit_amount_invalid", err)
		return
	}

	grant, err := h.CreditService.IssueGrant(input)
	if err != nil {
		respondCreditError(c, err)
		return
	}

	response.Success(c, grant)
}

// BatchIssueCreditRequest 批量授予购物金请求
type BatchIssueCreditRequest struct {
	UserIDs []uint `json:"user_ids" binding:"required"`
	IssueCreditRequest
}

// BatchIssueCredit 按同一模板给多个用户授予购物金（营销活动发放）
func (h *Handler) BatchIssueCredit(c *gin.Context) {
	var req BatchIssueCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	template, err := req.toServiceInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.credit_amount_invalid", err)
		return
	}

	grants, err := h.CreditService.BatchIssueGrants(req.UserIDs, template)
	if err != nil {
		respondCreditError(c, err)
		return
	}

	response.Success(c, grants)
}

// DeactivateCredit 停用一笔购物金授予
func (h *Handler) DeactivateCredit(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	grant, err := h.CreditService.Deactivate(id)
	if err != nil {
		respondCreditError(c, err)
		return
	}

	response.Success(c, grant)
}

// ListAdminCredits 购物金授予列表
func (h *Handler) ListAdminCredits(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	var userID uint
	if raw := strings.TrimSpace(c.Query("user_id")); raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 64); err == nil {
			userID = uint(parsed)
		}
	}

	filter := repository.CreditGrantListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   userID,
		Source:   strings.TrimSpace(c.Query("source")),
	}
	if c.Query("usable") == "true" {
		now := time.Now()
		filter.OnlyUsable = true
		filter.Now = &now
	}

	grants, total, err := h.CreditService.ListGrants(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.credit_fetch_failed", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, grants, pagination)
}
