package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/Eric920418/shoe-sub000/internal/cache"
	"github.com/Eric920418/shoe-sub000/internal/http/response"
	"github.com/Eric920418/shoe-sub000/internal/logger"
	"github.com/Eric920418/shoe-sub000/internal/repository"
	"github.com/Eric920418/shoe-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// ListAdminUsers 用户列表
func (h *Handler) ListAdminUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	users, total, err := h.UserAuthService.ListUsers(repository.UserListFilter{
		Page:     page,
		PageSize: pageSize,
		Keyword:  strings.TrimSpace(c.Query("keyword")),
		Status:   strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.user_fetch_failed", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, users, pagination)
}

// GetAdminUser 用户详情（含当前等级）
func (h *Handler) GetAdminUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, tier, err := h.MembershipService.GetUserMembership(id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondError(c, response.CodeNotFound, "error.user_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.user_fetch_failed", err)
		return
	}

	response.Success(c, gin.H{
		"user": user,
		"tier": tier,
	})
}

// SetUserStatusRequest 设置用户状态请求
type SetUserStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetUserStatus 启用/禁用用户
func (h *Handler) SetUserStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req SetUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	user, err := h.UserAuthService.SetUserStatus(id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, response.CodeNotFound, "error.user_not_found", nil)
		case errors.Is(err, service.ErrUserInvalid):
			respondError(c, response.CodeBadRequest, "error.user_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.user_save_failed", err)
		}
		return
	}

	// 状态变更后使会员端鉴权缓存失效，避免被禁用用户在 TTL 内继续访问
	if err := cache.DelUserAuthState(c.Request.Context(), user.ID); err != nil {
		logger.Warnw("user_auth_state_invalidate_failed", "user_id", user.ID, "error", err)
	}

	response.Success(c, user)
}

// AdjustPointsRequest 手工调整积分请求
type AdjustPointsRequest struct {
	Points int64  `json:"points" binding:"required"`
	Remark string `json:"remark"`
}

// AdjustUserPoints 手工调整用户积分
func (h *Handler) AdjustUserPoints(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AdjustPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if err := h.MembershipService.AdminAdjustPoints(id, req.Points, req.Remark); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, response.CodeNotFound, "error.user_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.points_adjust_failed", err)
		}
		return
	}

	response.Success(c, nil)
}

// ListUserPointTransactions 查看指定用户的积分流水
func (h *Handler) ListUserPointTransactions(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	transactions, total, err := h.MembershipService.ListPointTransactions(repository.PointTransactionListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   id,
		Type:     strings.TrimSpace(c.Query("type")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.membership_fetch_failed", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, transactions, pagination)
}
