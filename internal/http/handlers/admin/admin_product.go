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

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return 0, false
	}
	return uint(id), true
}

func respondProductError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		respondError(c, response.CodeNotFound, "error.product_not_found", nil)
	case errors.Is(err, service.ErrVariantNotFound):
		respondError(c, response.CodeNotFound, "error.variant_not_found", nil)
	case errors.Is(err, service.ErrProductSlugTaken):
		respondError(c, response.CodeBadRequest, "error.product_slug_taken", nil)
	case errors.Is(err, service.ErrProductInvalid):
		respondError(c, response.CodeBadRequest, "error.product_invalid", nil)
	default:
		respondError(c, response.CodeInternal, "error.product_save_failed", err)
	}
}

// ListAdminProducts 商品列表（含下架）
func (h *Handler) ListAdminProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	products, total, err := h.ProductService.ListProducts(repository.ProductListFilter{
		Page:         page,
		PageSize:     pageSize,
		Brand:        strings.TrimSpace(c.Query("brand")),
		Search:       strings.TrimSpace(c.Query("search")),
		WithVariants: true,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.product_fetch_failed", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, products, pagination)
}

// GetAdminProduct 商品详情
func (h *Handler) GetAdminProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.ProductService.GetProduct(id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondError(c, response.CodeNotFound, "error.product_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.product_fetch_failed", err)
		return
	}

	response.Success(c, product)
}

// CreateProduct 创建商品
func (h *Handler) CreateProduct(c *gin.Context) {
	var input service.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	product, err := h.ProductService.CreateProduct(input)
	if err != nil {
		respondProductError(c, err)
		return
	}

	response.Success(c, product)
}

// UpdateProduct 更新商品
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input service.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	product, err := h.ProductService.UpdateProduct(id, input)
	if err != nil {
		respondProductError(c, err)
		return
	}

	response.Success(c, product)
}

// SetProductActiveRequest 上下架请求
type SetProductActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// SetProductActive 商品上下架
func (h *Handler) SetProductActive(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req SetProductActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if err := h.ProductService.SetProductActive(id, *req.IsActive); err != nil {
		respondProductError(c, err)
		return
	}

	response.Success(c, nil)
}

// CreateVariant 为商品新增款式
func (h *Handler) CreateVariant(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input service.VariantInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	variant, err := h.ProductService.CreateVariant(productID, input)
	if err != nil {
		respondProductError(c, err)
		return
	}

	response.Success(c, variant)
}

// UpdateVariant 更新款式
func (h *Handler) UpdateVariant(c *gin.Context) {
	variantID, ok := parseIDParam(c, "variantId")
	if !ok {
		return
	}

	var input service.VariantInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	variant, err := h.ProductService.UpdateVariant(variantID, input)
	if err != nil {
		respondProductError(c, err)
		return
	}

	response.Success(c, variant)
}

// UpsertSizeRow 写入商品尺码库存
func (h *Handler) UpsertSizeRow(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input service.SizeRowInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	row, err := h.ProductService.UpsertSizeRow(productID, input)
	if err != nil {
		respondProductError(c, err)
		return
	}

	response.Success(c, row)
}
