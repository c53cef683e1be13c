package repository

import (
	"errors"
	"time"

	"github.com/Eric920418/shoe-sub000/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreditRepository 购物金数据访问接口
type CreditRepository interface {
	GetGrantByID(id uint) (*models.CreditGrant, error)
	ListUsableGrantsForUpdate(userID uint, now time.Time) ([]models.CreditGrant, error)
	ListUsableGrants(userID uint, now time.Time) ([]models.CreditGrant, error)
	CreateGrant(grant *models.CreditGrant) error
	UpdateGrant(grant *models.CreditGrant) error
	ListGrants(filter CreditGrantListFilter) ([]models.CreditGrant, int64, error)
	CreateUsage(usage *models.CreditUsage) error
	UpdateUsage(usage *models.CreditUsage) error
	ListUsagesByOrder(orderID uint) ([]models.CreditUsage, error)
	WithTx(tx *gorm.DB) *GormCreditRepository
}

// GormCreditRepository GORM 购物金仓储实现
type GormCreditRepository struct {
	db *gorm.DB
}

// NewCreditRepository 创建购物金仓储
func NewCreditRepository(db *gorm.DB) *GormCreditRepository {
	return &GormCreditRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCreditRepository) WithTx(tx *gorm.DB) *GormCreditRepository {
	if tx == nil {
		return r
	}
	return &GormCreditRepository{db: tx}
}

// GetGrantByID 按 ID 获取授予记录
func (r *GormCreditRepository) GetGrantByID(id uint) (*models.CreditGrant, error) {
	if id == 0 {
		return nil, nil
	}
	var grant models.CreditGrant
	if err := r.db.First(&grant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &grant, nil
}

// usableGrantQuery 当前时刻可用于抵扣的授予（过期优先消耗，同到期时间按 ID 升序保证确定性）
func (r *GormCreditRepository) usableGrantQuery(userID uint, now time.Time) *gorm.DB {
	return r.db.Model(&models.CreditGrant{}).
		Where("user_id = ?", userID).
		Where("is_active = ? AND is_used = ?", true, false).
		Where("balance > 0").
		Where("valid_from <= ? AND valid_until >= ?", now, now).
		Order("valid_until ASC, id ASC")
}

// ListUsableGrantsForUpdate 加锁获取可用授予（分配购物金时串行化同一用户的并发订单）
func (r *GormCreditRepository) ListUsableGrantsForUpdate(userID uint, now time.Time) ([]models.CreditGrant, error) {
	if userID == 0 {
		return []models.CreditGrant{}, nil
	}
	var grants []models.CreditGrant
	if err := r.usableGrantQuery(userID, now).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Find(&grants).Error; err != nil {
		return nil, err
	}
	return grants, nil
}

// ListUsableGrants 获取可用授予（只读展示）
func (r *GormCreditRepository) ListUsableGrants(userID uint, now time.Time) ([]models.CreditGrant, error) {
	if userID == 0 {
		return []models.CreditGrant{}, nil
	}
	var grants []models.CreditGrant
	if err := r.usableGrantQuery(userID, now).Find(&grants).Error; err != nil {
		return nil, err
	}
	return grants, nil
}

// CreateGrant 创建授予记录
func (r *GormCreditRepository) CreateGrant(grant *models.CreditGrant) error {
	return r.db.Create(grant).Error
}

// UpdateGrant 更新授予记录
func (r *GormCreditRepository) UpdateGrant(grant *models.CreditGrant) error {
	return r.db.Save(grant).Error
}

// ListGrants 分页查询授予记录
func (r *GormCreditRepository) ListGrants(filter CreditGrantListFilter) ([]models.CreditGrant, int64, error) {
	query := r.db.Model(&models.CreditGrant{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Source != "" {
		query = query.Where("source = ?", filter.Source)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.OnlyUsable {
		now := time.Now()
		if filter.Now != nil {
			now = *filter.Now
		}
		query = query.Where("is_used = ? AND balance > 0", false).
			Where("valid_from <= ? AND valid_until >= ?", now, now)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var grants []models.CreditGrant
	if err := query.Order("valid_until ASC, id ASC").Find(&grants).Error; err != nil {
		return nil, 0, err
	}
	return grants, total, nil
}

// CreateUsage 创建核销记录
func (r *GormCreditRepository) CreateUsage(usage *models.CreditUsage) error {
	return r.db.Create(usage).Error
}

// UpdateUsage 更新核销记录
func (r *GormCreditRepository) UpdateUsage(usage *models.CreditUsage) error {
	return r.db.Save(usage).Error
}

// ListUsagesByOrder 按订单获取核销记录
func (r *GormCreditRepository) ListUsagesByOrder(orderID uint) ([]models.CreditUsage, error) {
	if orderID == 0 {
		return []models.CreditUsage{}, nil
	}
	var usages []models.CreditUsage
	if err := r.db.Where("order_id = ?", orderID).Order("id ASC").Find(&usages).Error; err != nil {
		return nil, err
	}
	return usages, nil
}
