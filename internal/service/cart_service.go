package service

import (
	"strings"

	"github.com/Eric920418/shoe-sub000/internal/models"
	"github.com/Eric920418/shoe-sub000/internal/repository"
)

// CartService 购物车服务（仅登录会员）
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo}
}

// CartLineInput 购物车行入参
type CartLineInput struct {
	ProductID uint   `json:"product_id"`
	VariantID *uint  `json:"variant_id"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

// AddToCart 添加商品到购物车，同一商品+款式+尺码累加数量
func (s *CartService) AddToCart(userID uint, input CartLineInput) (*models.CartItem, error) {
	if input.Quantity <= 0 {
		return nil, ErrOrderQuantityInvalid
	}
	size := strings.TrimSpace(input.Size)
	if size == "" {
		return nil, ErrSizeNotFound
	}

	product, err := s.productRepo.GetByID(input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if !product.IsActive {
		return nil, ErrProductInactive
	}
	if input.VariantID != nil {
		variant, err := s.productRepo.GetVariantByID(*input.VariantID)
		if err != nil {
			return nil, err
		}
		if variant == nil || variant.ProductID != product.ID {
			return nil, ErrVariantNotFound
		}
		if !variant.IsActive {
			return nil, ErrVariantInactive
		}
	}
	sizeRow, err := s.productRepo.GetSizeRow(product.ID, size)
	if err != nil {
		return nil, err
	}
	if sizeRow == nil {
		return nil, ErrSizeNotFound
	}

	quantity := input.Quantity
	existing, err := s.cartRepo.GetLine(userID, input.ProductID, input.VariantID, size)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		quantity += existing.Quantity
	}
	// 库存在下单时加锁复核，这里只做提示性校验
	if sizeRow.Stock < quantity {
		return nil, ErrStockInsufficient
	}

	item := &models.CartItem{
		UserID:    userID,
		ProductID: input.ProductID,
		VariantID: input.VariantID,
		Size:      size,
		Quantity:  quantity,
	}
	if err := s.cartRepo.Upsert(item); err != nil {
		return nil, err
	}
	return s.cartRepo.GetLine(userID, input.ProductID, input.VariantID, size)
}

// UpdateQuantity 修改购物车行数量，0 表示删除
func (s *CartService) UpdateQuantity(userID, itemID uint, quantity int) error {
	if quantity < 0 {
		return ErrOrderQuantityInvalid
	}
	items, err := s.cartRepo.ListByUser(userID)
	if err != nil {
		return err
	}
	for _, item := range items {
		if item.ID != itemID {
			continue
		}
		if quantity == 0 {
			return s.cartRepo.DeleteByID(userID, itemID)
		}
		item.Quantity = quantity
		line := item
		line.Product = nil
		line.Variant = nil
		return s.cartRepo.Upsert(&line)
	}
	return ErrNotFound
}

// RemoveItem 删除购物车行
func (s *CartService) RemoveItem(userID, itemID uint) error {
	return s.cartRepo.DeleteByID(userID, itemID)
}

// Clear 清空购物车
func (s *CartService) Clear(userID uint) error {
	return s.cartRepo.ClearByUser(userID)
}

// ListCart 获取购物车（含商品与款式）
func (s *CartService) ListCart(userID uint) ([]models.CartItem, error) {
	return s.cartRepo.ListByUser(userID)
}
