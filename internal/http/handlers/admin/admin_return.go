package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/Eric920418/shoe-sub000/internal/http/response"
	"github.com/Eric920418/shoe-sub000/internal/models"
	"github.com/Eric920418/shoe-sub000/internal/repository"
	"github.com/Eric920418/shoe-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// ListAdminReturns 退货单列表
func (h *Handler) ListAdminReturns(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	var userID, orderID uint
	if raw := strings.TrimSpace(c.Query("user_id")); raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 64); err == nil {
			userID = uint(parsed)
		}
	}
	if raw := strings.TrimSpace(c.Query("order_id")); raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 64); err == nil {
			orderID = uint(parsed)
		}
	}

	returns, total, err := h.ReturnService.ListReturns(repository.ReturnListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   userID,
		OrderID:  orderID,
		Status:   strings.TrimSpace(c.Query("status")),
		ReturnNo: strings.TrimSpace(c.Query("return_no")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.return_fetch_failed", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, returns, pagination)
}

// GetAdminReturn 退货单详情
func (h *Handler) GetAdminReturn(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ret, err := h.ReturnService.GetReturnAdmin(id)
	if err != nil {
		if errors.Is(err, service.ErrReturnNotFound) {
			respondError(c, response.CodeNotFound, "error.return_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.return_fetch_failed", err)
		return
	}

	response.Success(c, ret)
}

// UpdateReturnStatusRequest 更新退货单状态请求
type UpdateReturnStatusRequest struct {
	Status       string  `json:"status" binding:"required"`
	AdminRemark  string  `json:"admin_remark"`
	RefundAmount *string `json:"refund_amount"` // 完成时覆盖退款金额（可选）
}

// UpdateReturnStatus 推进退货单状态。completed 会触发库存回补与退款购物金签发。
func (h *Handler) UpdateReturnStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateReturnStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	input := service.UpdateStatusInput{
		ReturnID:    id,
		Status:      req.Status,
		AdminRemark: req.AdminRemark,
	}
	if req.RefundAmount != nil {
		parsed, err := models.NewMoneyFromString(*req.RefundAmount)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.return_refund_invalid", err)
			return
		}
		input.RefundAmount = &parsed
	}

	ret, err := h.ReturnService.UpdateStatus(input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReturnNotFound):
			respondError(c, response.CodeNotFound, "error.return_not_found", nil)
		case errors.Is(err, service.ErrReturnTransitionInvalid):
			respondError(c, response.CodeBadRequest, "error.return_transition_invalid", nil)
		case errors.Is(err, service.ErrReturnRefundInvalid):
			respondError(c, response.CodeBadRequest, "error.return_refund_invalid", nil)
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "error.order_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.return_save_failed", err)
		}
		return
	}

	response.Success(c, ret)
}
