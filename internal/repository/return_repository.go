package repository

import (
	"errors"
	"strings"

	"github.com/Eric920418/shoe-sub000/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReturnRepository 退货单数据访问接口
type ReturnRepository interface {
	Create(ret *models.Return) error
	Update(ret *models.Return) error
	GetByID(id uint) (*models.Return, error)
	GetByIDForUpdate(id uint) (*models.Return, error)
	GetByReturnNo(returnNo string) (*models.Return, error)
	List(filter ReturnListFilter) ([]models.Return, int64, error)
	CountOpenByOrder(orderID uint) (int64, error)
	WithTx(tx *gorm.DB) *GormReturnRepository
}

// GormReturnRepository GORM 退货单仓储实现
type GormReturnRepository struct {
	db *gorm.DB
}

// NewReturnRepository 创建退货单仓储
func NewReturnRepository(db *gorm.DB) *GormReturnRepository {
	return &GormReturnRepository{db: db}
}

// WithTx 绑定事务
func (r *GormReturnRepository) WithTx(tx *gorm.DB) *GormReturnRepository {
	if tx == nil {
		return r
	}
	return &GormReturnRepository{db: tx}
}

// Create 创建退货单（含明细）
func (r *GormReturnRepository) Create(ret *models.Return) error {
	return r.db.Create(ret).Error
}

// Update 更新退货单
func (r *GormReturnRepository) Update(ret *models.Return) error {
	return r.db.Save(ret).Error
}

// GetByID 按 ID 获取退货单（含明细）
func (r *GormReturnRepository) GetByID(id uint) (*models.Return, error) {
	if id == 0 {
		return nil, nil
	}
	var ret models.Return
	if err := r.db.Preload("Items").First(&ret, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ret, nil
}

// GetByIDForUpdate 按 ID 加锁获取退货单（状态流转串行化）
func (r *GormReturnRepository) GetByIDForUpdate(id uint) (*models.Return, error) {
	if id == 0 {
		return nil, nil
	}
	var ret models.Return
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		First(&ret, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ret, nil
}

// GetByReturnNo 按退货单编号获取退货单
func (r *GormReturnRepository) GetByReturnNo(returnNo string) (*models.Return, error) {
	returnNo = strings.TrimSpace(returnNo)
	if returnNo == "" {
		return nil, nil
	}
	var ret models.Return
	if err := r.db.Preload("Items").Where("return_no = ?", returnNo).First(&ret).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ret, nil
}

// List 分页查询退货单
func (r *GormReturnRepository) List(filter ReturnListFilter) ([]models.Return, int64, error) {
	query := r.db.Model(&models.Return{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.OrderID != 0 {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ReturnNo != "" {
		query = query.Where("return_no LIKE ?", "%"+filter.ReturnNo+"%")
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var rets []models.Return
	if err := query.Preload("Items").Order("id DESC").Find(&rets).Error; err != nil {
		return nil, 0, err
	}
	return rets, total, nil
}

// CountOpenByOrder 统计订单上未完结的退货单数量
func (r *GormReturnRepository) CountOpenByOrder(orderID uint) (int64, error) {
	if orderID == 0 {
		return 0, nil
	}
	var count int64
	if err := r.db.Model(&models.Return{}).
		Where("order_id = ?", orderID).
		Where("status NOT IN ?", []string{"rejected", "completed", "cancelled"}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
