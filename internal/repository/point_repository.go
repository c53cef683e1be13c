package repository

import (
	"errors"
	"strings"

	"github.com/Eric920418/shoe-sub000/internal/models"

	"gorm.io/gorm"
)

// PointRepository 积分流水数据访问接口
type PointRepository interface {
	CreateTransaction(txn *models.PointTransaction) error
	GetTransactionByReference(reference string) (*models.PointTransaction, error)
	ListTransactions(filter PointTransactionListFilter) ([]models.PointTransaction, int64, error)
	WithTx(tx *gorm.DB) *GormPointRepository
}

// GormPointRepository GORM 积分仓储实现
type GormPointRepository struct {
	db *gorm.DB
}

// NewPointRepository 创建积分仓储
func NewPointRepository(db *gorm.DB) *GormPointRepository {
	return &GormPointRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPointRepository) WithTx(tx *gorm.DB) *GormPointRepository {
	if tx == nil {
		return r
	}
	return &GormPointRepository{db: tx}
}

// CreateTransaction 创建积分流水
func (r *GormPointRepository) CreateTransaction(txn *models.PointTransaction) error {
	return r.db.Create(txn).Error
}

// GetTransactionByReference 按业务引用获取流水（完成订单幂等判断）
func (r *GormPointRepository) GetTransactionByReference(reference string) (*models.PointTransaction, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, nil
	}
	var txn models.PointTransaction
	if err := r.db.Where("reference = ?", reference).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// ListTransactions 分页查询积分流水
func (r *GormPointRepository) ListTransactions(filter PointTransactionListFilter) ([]models.PointTransaction, int64, error) {
	query := r.db.Model(&models.PointTransaction{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.OrderID != 0 {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
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

	var txns []models.PointTransaction
	if err := query.Order("id desc").Find(&txns).Error; err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}
