package repository

import (
	"errors"

	"github.com/Eric920418/shoe-sub000/internal/models"

	"gorm.io/gorm"
)

// TierRepository 会员等级数据访问接口
type TierRepository interface {
	ListActive() ([]models.MembershipTier, error)
	ListAll() ([]models.MembershipTier, error)
	GetByID(id uint) (*models.MembershipTier, error)
	Create(tier *models.MembershipTier) error
	Update(tier *models.MembershipTier) error
	Delete(id uint) error
	WithTx(tx *gorm.DB) *GormTierRepository
}

// GormTierRepository GORM 实现
type GormTierRepository struct {
	db *gorm.DB
}

// NewTierRepository 创建会员等级仓库
func NewTierRepository(db *gorm.DB) *GormTierRepository {
	return &GormTierRepository{db: db}
}

// WithTx 绑定事务
func (r *GormTierRepository) WithTx(tx *gorm.DB) *GormTierRepository {
	if tx == nil {
		return r
	}
	return &GormTierRepository{db: tx}
}

// ListActive 获取启用的等级（按区间下界升序）
func (r *GormTierRepository) ListActive() ([]models.MembershipTier, error) {
	var tiers []models.MembershipTier
	if err := r.db.Where("is_active = ?", true).
		Order("min_spent ASC, id ASC").
		Find(&tiers).Error; err != nil {
		return nil, err
	}
	return tiers, nil
}

// ListAll 获取全部等级（含停用）
func (r *GormTierRepository) ListAll() ([]models.MembershipTier, error) {
	var tiers []models.MembershipTier
	if err := r.db.Order("min_spent ASC, id ASC").Find(&tiers).Error; err != nil {
		return nil, err
	}
	return tiers, nil
}

// GetByID 根据 ID 获取等级
func (r *GormTierRepository) GetByID(id uint) (*models.MembershipTier, error) {
	if id == 0 {
		return nil, nil
	}
	var tier models.MembershipTier
	if err := r.db.First(&tier, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tier, nil
}

// Create 创建等级
func (r *GormTierRepository) Create(tier *models.MembershipTier) error {
	return r.db.Create(tier).Error
}

// Update 更新等级
func (r *GormTierRepository) Update(tier *models.MembershipTier) error {
	return r.db.Save(tier).Error
}

// Delete 删除等级（软删除）
func (r *GormTierRepository) Delete(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Delete(&models.MembershipTier{}, id).Error
}
