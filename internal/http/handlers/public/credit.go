package public

import (
	"errors"
	"strconv"
	"time"

	"github.com/Eric920418/shoe-sub000/internal/http/response"
	"github.com/Eric920418/shoe-sub000/internal/models"
	"github.com/Eric920418/shoe-sub000/internal/repository"
	"github.com/Eric920418/shoe-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// GetCreditBalance 获取当前可用购物金余额
func (h *Handler) GetCreditBalance(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	balance, err := h.CreditService.UsableBalance(uid, time.Now())
	if err != nil {
		respondError(c, response.CodeInternal, "error.credit_fetch_failed", err)
		return
	}

	response.Success(c, gin.H{"balance": balance})
}

// ListCreditGrants 获取我的购物金授予记录
func (h *Handler) ListCreditGrants(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.CreditGrantListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   uid,
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

// CreditPlanRequest 购物金抵扣试算请求
type CreditPlanRequest struct {
	Amount        models.Money `json:"amount"`
	OrderSubtotal models.Money `json:"order_subtotal"`
}

// PlanCreditAllocation 试算一笔订单可用的购物金分配（只读，不扣减）
func (h *Handler) PlanCreditAllocation(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req CreditPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	allocations, err := h.CreditService.PlanAllocation(uid, req.Amount, req.OrderSubtotal, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCreditInvalidAmount):
			respondError(c, response.CodeBadRequest, "error.credit_amount_invalid", nil)
		case errors.Is(err, service.ErrCreditInsufficient):
			respondError(c, response.CodeBadRequest, "error.credit_insufficient", nil)
		default:
			respondError(c, response.CodeInternal, "error.credit_fetch_failed", err)
		}
		return
	}

	response.Success(c, allocations)
}
