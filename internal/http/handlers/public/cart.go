package public

import (
	"strconv"

	"github.com/Eric920418/shoe-sub000/internal/http/response"
	"github.com/Eric920418/shoe-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// CartLineRequest 购物车行请求
type CartLineRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	VariantID *uint  `json:"variant_id"`
	Size      string `json:"size" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

// ListCart 获取购物车
func (h *Handler) ListCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	items, err := h.CartService.ListCart(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "error.cart_fetch_failed", err)
		return
	}

	response.Success(c, items)
}

// AddToCart 添加商品到购物车
func (h *Handler) AddToCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req CartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	item, err := h.CartService.AddToCart(uid, service.CartLineInput{
		ProductID: req.ProductID,
		VariantID: req.VariantID,
		Size:      req.Size,
		Quantity:  req.Quantity,
	})
	if err != nil {
		respondCartError(c, err)
		return
	}

	response.Success(c, item)
}

// UpdateCartItemRequest 更新购物车数量请求
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateCartItem 更新购物车行数量，0 表示删除
func (h *Handler) UpdateCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if err := h.CartService.UpdateQuantity(uid, uint(id), req.Quantity); err != nil {
		respondCartError(c, err)
		return
	}

	response.Success(c, nil)
}

// RemoveCartItem 删除购物车行
func (h *Handler) RemoveCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if err := h.CartService.RemoveItem(uid, uint(id)); err != nil {
		respondCartError(c, err)
		return
	}

	response.Success(c, nil)
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	if err := h.CartService.Clear(uid); err != nil {
		respondError(c, response.CodeInternal, "error.cart_save_failed", err)
		return
	}

	response.Success(c, nil)
}
