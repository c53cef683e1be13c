package public

import (
	"errors"
	"strconv"
	"strings"

	"github.com/Eric920418/shoe-sub000/internal/http/response"
	"github.com/Eric920418/shoe-sub000/internal/repository"
	"github.com/Eric920418/shoe-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// ReturnItemRequest 退货明细请求
type ReturnItemRequest struct {
	OrderItemID uint `json:"order_item_id" binding:"required"`
	Quantity    int  `json:"quantity" binding:"required"`
}

// CreateReturnRequest 创建退货申请请求
type CreateReturnRequest struct {
	OrderID uint                `json:"order_id" binding:"required"`
	Reason  string              `json:"reason"`
	Items   []ReturnItemRequest `json:"items" binding:"required"`
}

// CreateReturn 创建退货申请
func (h *Handler) CreateReturn(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req CreateReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	var items []service.ReturnItemInput
	for _, item := range req.Items {
		items = append(items, service.ReturnItemInput{
			OrderItemID: item.OrderItemID,
			Quantity:    item.Quantity,
		})
	}

	ret, err := h.ReturnService.CreateReturn(service.CreateReturnInput{
		UserID:  uid,
		OrderID: req.OrderID,
		Reason:  req.Reason,
		Items:   items,
	})
	if err != nil {
		respondReturnCreateError(c, err)
		return
	}

	response.Success(c, ret)
}

// ListReturns 获取我的退货单列表
func (h *Handler) ListReturns(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	returns, total, err := h.ReturnService.ListMyReturns(uid, repository.ReturnListFilter{
		Page:     page,
		PageSize: pageSize,
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

// GetReturn 获取我的退货单详情
func (h *Handler) GetReturn(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	ret, err := h.ReturnService.GetReturn(uid, uint(id))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReturnNotFound):
			respondError(c, response.CodeNotFound, "error.return_not_found", nil)
		case errors.Is(err, service.ErrOrderAccessDenied):
			respondError(c, response.CodeForbidden, "error.order_access_denied", nil)
		default:
			respondError(c, response.CodeInternal, "error.return_fetch_failed", err)
		}
		return
	}

	response.Success(c, ret)
}

// CancelReturn 撤销我的退货申请
func (h *Handler) CancelReturn(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	ret, err := h.ReturnService.CancelReturn(uid, uint(id))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReturnNotFound):
			respondError(c, response.CodeNotFound, "error.return_not_found", nil)
		case errors.Is(err, service.ErrOrderAccessDenied):
			respondError(c, response.CodeForbidden, "error.order_access_denied", nil)
		case errors.Is(err, service.ErrReturnTransitionInvalid):
			respondError(c, response.CodeBadRequest, "error.return_transition_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.return_save_failed", err)
		}
		return
	}

	response.Success(c, ret)
}
