package repository

import (
	"errors"

	"github.com/Eric920418/shoe-sub000/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepository 商品数据访问接口
type ProductRepository interface {
	GetByID(id uint) (*models.Product, error)
	GetByIDForUpdate(id uint) (*models.Product, error)
	GetBySlug(slug string) (*models.Product, error)
	GetVariantByID(id uint) (*models.ProductVariant, error)
	GetVariantByIDForUpdate(id uint) (*models.ProductVariant, error)
	GetSizeRow(productID uint, size string) (*models.SizeChartRow, error)
	GetSizeRowForUpdate(productID uint, size string) (*models.SizeChartRow, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	CreateVariant(variant *models.ProductVariant) error
	UpdateVariant(variant *models.ProductVariant) error
	UpsertSizeRow(row *models.SizeChartRow) error
	UpdateSizeRow(row *models.SizeChartRow) error
	List(filter ProductListFilter) ([]models.Product, int64, error)
	WithTx(tx *gorm.DB) *GormProductRepository
}

// GormProductRepository GORM 商品仓储实现
type GormProductRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓库
func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// WithTx 绑定事务
func (r *GormProductRepository) WithTx(tx *gorm.DB) *GormProductRepository {
	if tx == nil {
		return r
	}
	return &GormProductRepository{db: tx}
}

// GetByID 按 ID 获取商品
func (r *GormProductRepository) GetByID(id uint) (*models.Product, error) {
	if id == 0 {
		return nil, nil
	}
	var product models.Product
	if err := r.db.Preload("Variants").Preload("SizeChart").First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// GetByIDForUpdate 按 ID 加锁获取商品（扣减库存）
func (r *GormProductRepository) GetByIDForUpdate(id uint) (*models.Product, error) {
	if id == 0 {
		return nil, nil
	}
	var product models.Product
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// GetBySlug 按 slug 获取商品
func (r *GormProductRepository) GetBySlug(slug string) (*models.Product, error) {
	if slug == "" {
		return nil, nil
	}
	var product models.Product
	if err := r.db.Preload("Variants").Preload("SizeChart").
		Where("slug = ?", slug).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// GetVariantByID 按 ID 获取款式
func (r *GormProductRepository) GetVariantByID(id uint) (*models.ProductVariant, error) {
	if id == 0 {
		return nil, nil
	}
	var variant models.ProductVariant
	if err := r.db.First(&variant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &variant, nil
}

// GetVariantByIDForUpdate 按 ID 加锁获取款式
func (r *GormProductRepository) GetVariantByIDForUpdate(id uint) (*models.ProductVariant, error) {
	if id == 0 {
		return nil, nil
	}
	var variant models.ProductVariant
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&variant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &variant, nil
}

// GetSizeRow 获取商品尺码行
func (r *GormProductRepository) GetSizeRow(productID uint, size string) (*models.SizeChartRow, error) {
	if productID == 0 || size == "" {
		return nil, nil
	}
	var row models.SizeChartRow
	if err := r.db.Where("product_id = ? AND size = ?", productID, size).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// GetSizeRowForUpdate 加锁获取商品尺码行
func (r *GormProductRepository) GetSizeRowForUpdate(productID uint, size string) (*models.SizeChartRow, error) {
	if productID == 0 || size == "" {
		return nil, nil
	}
	var row models.SizeChartRow
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ? AND size = ?", productID, size).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// Create 创建商品
func (r *GormProductRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

// Update 更新商品
func (r *GormProductRepository) Update(product *models.Product) error {
	return r.db.Save(product).Error
}

// CreateVariant 创建款式
func (r *GormProductRepository) CreateVariant(variant *models.ProductVariant) error {
	return r.db.Create(variant).Error
}

// UpdateVariant 更新款式
func (r *GormProductRepository) UpdateVariant(variant *models.ProductVariant) error {
	return r.db.Save(variant).Error
}

// UpsertSizeRow 创建或更新尺码行
func (r *GormProductRepository) UpsertSizeRow(row *models.SizeChartRow) error {
	if row == nil {
		return nil
	}
	var existing models.SizeChartRow
	err := r.db.Where("product_id = ? AND size = ?", row.ProductID, row.Size).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(row).Error
	}
	if err != nil {
		return err
	}
	existing.Stock = row.Stock
	return r.db.Save(&existing).Error
}

// UpdateSizeRow 更新尺码行
func (r *GormProductRepository) UpdateSizeRow(row *models.SizeChartRow) error {
	return r.db.Save(row).Error
}

// List 分页查询商品
func (r *GormProductRepository) List(filter ProductListFilter) ([]models.Product, int64, error) {
	query := r.db.Model(&models.Product{})
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}
	if filter.Brand != "" {
		query = query.Where("brand = ?", filter.Brand)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		op := likeOperator(r.db)
		query = query.Where("name "+op+" ? OR slug "+op+" ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	if filter.WithVariants {
		query = query.Preload("Variants").Preload("SizeChart")
	}

	var products []models.Product
	if err := query.Order("sort_order DESC, id DESC").Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}
