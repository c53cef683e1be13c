package repository

import (
	"errors"

	"github.com/Eric920418/shoe-sub000/internal/models"

	"gorm.io/gorm"
)

// CartRepository 购物车数据访问接口
type CartRepository interface {
	ListByUser(userID uint) ([]models.CartItem, error)
	GetLine(userID, productID uint, variantID *uint, size string) (*models.CartItem, error)
	Upsert(item *models.CartItem) error
	DeleteByID(userID, itemID uint) error
	ClearByUser(userID uint) error
	WithTx(tx *gorm.DB) *GormCartRepository
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCartRepository) WithTx(tx *gorm.DB) *GormCartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

// ListByUser 获取用户购物车项
func (r *GormCartRepository) ListByUser(userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.Preload("Product").Preload("Variant").
		Where("user_id = ?", userID).
		Order("updated_at desc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormCartRepository) lineQuery(userID, productID uint, variantID *uint, size string) *gorm.DB {
	query := r.db.Where("user_id = ? AND product_id = ? AND size = ?", userID, productID, size)
	if variantID == nil {
		return query.Where("variant_id IS NULL")
	}
	return query.Where("variant_id = ?", *variantID)
}

// GetLine 按用户+商品+款式+尺码获取购物车项
func (r *GormCartRepository) GetLine(userID, productID uint, variantID *uint, size string) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.lineQuery(userID, productID, variantID, size).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// Upsert 添加或更新购物车项
func (r *GormCartRepository) Upsert(item *models.CartItem) error {
	if item == nil {
		return nil
	}
	existing, err := r.GetLine(item.UserID, item.ProductID, item.VariantID, item.Size)
	if err != nil {
		return err
	}
	if existing == nil {
		return r.db.Create(item).Error
	}
	updates := map[string]interface{}{
		"quantity":   item.Quantity,
		"updated_at": item.UpdatedAt,
	}
	return r.db.Model(existing).Updates(updates).Error
}

// DeleteByID 删除购物车项（校验归属）
func (r *GormCartRepository) DeleteByID(userID, itemID uint) error {
	return r.db.Where("user_id = ? AND id = ?", userID, itemID).Delete(&models.CartItem{}).Error
}

// ClearByUser 清空购物车
func (r *GormCartRepository) ClearByUser(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}
