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

// GetMembership 获取我的会员信息（累计消费、积分、当前等级）
func (h *Handler) GetMembership(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	user, tier, err := h.MembershipService.GetUserMembership(uid)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, response.CodeNotFound, "error.user_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.membership_fetch_failed", err)
		}
		return
	}

	response.Success(c, gin.H{
		"user": user,
		"tier": tier,
	})
}

// ListPointTransactions 获取我的积分流水
func (h *Handler) ListPointTransactions(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	transactions, total, err := h.MembershipService.ListPointTransactions(repository.PointTransactionListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   uid,
		Type:     strings.TrimSpace(c.Query("type")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.membership_fetch_failed", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, transactions, pagination)
}

// ListTiers 获取启用中的会员等级（公开）
func (h *Handler) ListTiers(c *gin.Context) {
	tiers, err := h.MembershipService.ListActiveTiers()
	if err != nil {
		respondError(c, response.CodeInternal, "error.tier_fetch_failed", err)
		return
	}

	response.Success(c, tiers)
}
