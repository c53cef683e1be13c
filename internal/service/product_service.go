package service

import (
	"strings"

	"github.com/Eric920418/shoe-sub000/internal/logger"
	"github.com/Eric920418/shoe-sub000/internal/models"
	"github.com/Eric920418/shoe-sub000/internal/repository"
)

// ProductService 商品服务
type ProductService struct {
	productRepo repository.ProductRepository
}

// NewProductService 创建商品服务
func NewProductService(productRepo repository.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// ProductInput 商品创建/更新入参
type ProductInput struct {
	Slug        string             `json:"slug"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Brand       string             `json:"brand"`
	Price       string             `json:"price"`
	Images      models.StringArray `json:"images"`
	Tags        models.StringArray `json:"tags"`
	IsActive    *bool              `json:"is_active"`
	SortOrder   int                `json:"sort_order"`
}

// VariantInput 款式创建/更新入参
type VariantInput struct {
	Name            string `json:"name"`
	SKU             string `json:"sku"`
	PriceAdjustment string `json:"price_adjustment"`
	Stock           int    `json:"stock"`
	IsActive        *bool  `json:"is_active"`
}

// SizeRowInput 尺码库存入参
type SizeRowInput struct {
	Size  string `json:"size"`
	Stock int    `json:"stock"`
}

// GetProduct 获取商品（含款式与尺码表）
func (s *ProductService) GetProduct(id uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// GetProductBySlug 按 slug 获取上架商品
func (s *ProductService) GetProductBySlug(slug string) (*models.Product, error) {
	product, err := s.productRepo.GetBySlug(strings.TrimSpace(slug))
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// ListProducts 分页查询商品
func (s *ProductService) ListProducts(filter repository.ProductListFilter) ([]models.Product, int64, error) {
	return s.productRepo.List(filter)
}

// CreateProduct 创建商品
func (s *ProductService) CreateProduct(input ProductInput) (*models.Product, error) {
	product, err := s.buildProduct(input)
	if err != nil {
		return nil, err
	}
	existing, err := s.productRepo.GetBySlug(product.Slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrProductSlugTaken
	}
	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}
	logger.Infow("product_created", "product_id", product.ID, "slug", product.Slug)
	return product, nil
}

// UpdateProduct 更新商品基础信息
func (s *ProductService) UpdateProduct(id uint, input ProductInput) (*models.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	updated, err := s.buildProduct(input)
	if err != nil {
		return nil, err
	}
	if updated.Slug != product.Slug {
		existing, err := s.productRepo.GetBySlug(updated.Slug)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != product.ID {
			return nil, ErrProductSlugTaken
		}
	}
	product.Slug = updated.Slug
	product.Name = updated.Name
	product.Description = updated.Description
	product.Brand = updated.Brand
	product.Price = updated.Price
	product.Images = updated.Images
	product.Tags = updated.Tags
	product.IsActive = updated.IsActive
	product.SortOrder = updated.SortOrder
	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// SetProductActive 上架/下架商品
func (s *ProductService) SetProductActive(id uint, active bool) error {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrProductNotFound
	}
	product.IsActive = active
	return s.productRepo.Update(product)
}

// CreateVariant 为商品添加款式
func (s *ProductService) CreateVariant(productID uint, input VariantInput) (*models.ProductVariant, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	variant, err := s.buildVariant(productID, input)
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.CreateVariant(variant); err != nil {
		return nil, err
	}
	return variant, nil
}

// UpdateVariant 更新款式
func (s *ProductService) UpdateVariant(variantID uint, input VariantInput) (*models.ProductVariant, error) {
	variant, err := s.productRepo.GetVariantByID(variantID)
	if err != nil {
		return nil, err
	}
	if variant == nil {
		return nil, ErrVariantNotFound
	}
	updated, err := s.buildVariant(variant.ProductID, input)
	if err != nil {
		return nil, err
	}
	variant.Name = updated.Name
	variant.SKU = updated.SKU
	variant.PriceAdjustment = updated.PriceAdjustment
	variant.Stock = updated.Stock
	variant.IsActive = updated.IsActive
	return variant, s.productRepo.UpdateVariant(variant)
}

// UpsertSizeRow 设置商品某尺码的库存
func (s *ProductService) UpsertSizeRow(productID uint, input SizeRowInput) (*models.SizeChartRow, error) {
	size := strings.TrimSpace(input.Size)
	if size == "" || input.Stock < 0 {
		return nil, ErrSizeNotFound
	}
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	row := &models.SizeChartRow{
		ProductID: productID,
		Size:      size,
		Stock:     input.Stock,
	}
	if err := s.productRepo.UpsertSizeRow(row); err != nil {
		return nil, err
	}
	return s.productRepo.GetSizeRow(productID, size)
}

func (s *ProductService) buildProduct(input ProductInput) (*models.Product, error) {
	slug := strings.ToLower(strings.TrimSpace(input.Slug))
	name := strings.TrimSpace(input.Name)
	if slug == "" || name == "" {
		return nil, ErrProductInvalid
	}
	price, err := models.NewMoneyFromString(strings.TrimSpace(input.Price))
	if err != nil || price.IsNegative() {
		return nil, ErrProductInvalid
	}
	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	return &models.Product{
		Slug:        slug,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Brand:       strings.TrimSpace(input.Brand),
		Price:       price,
		Images:      input.Images,
		Tags:        input.Tags,
		IsActive:    isActive,
		SortOrder:   input.SortOrder,
	}, nil
}

func (s *ProductService) buildVariant(productID uint, input VariantInput) (*models.ProductVariant, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || input.Stock < 0 {
		return nil, ErrProductInvalid
	}
	adjustment := models.ZeroMoney()
	if strings.TrimSpace(input.PriceAdjustment) != "" {
		parsed, err := models.NewMoneyFromString(strings.TrimSpace(input.PriceAdjustment))
		if err != nil {
			return nil, ErrProductInvalid
		}
		adjustment = parsed
	}
	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	return &models.ProductVariant{
		ProductID:       productID,
		Name:            name,
		SKU:             strings.TrimSpace(input.SKU),
		PriceAdjustment: adjustment,
		Stock:           input.Stock,
		IsActive:        isActive,
	}, nil
}
