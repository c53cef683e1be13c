package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品表（鞋款）。Stock 为商品级汇总库存，购买、取消、退货各路径对称增减。
type Product struct {
	ID          uint           `gorm:"primarykey" json:"id"`                               // 主键
	Slug        string         `gorm:"uniqueIndex;not null" json:"slug"`                   // 唯一标识
	Name        string         `gorm:"type:varchar(200);not null" json:"name"`             // 鞋款名称
	Description string         `gorm:"type:text" json:"description"`                       // 描述
	Brand       string         `gorm:"type:varchar(100);index" json:"brand"`               // 品牌
	Price       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"` // 基础售价
	Stock       int            `gorm:"not null;default:0" json:"stock"`                    // 商品级汇总库存
	Images      StringArray    `gorm:"type:json" json:"images"`                            // 图片数组
	Tags        StringArray    `gorm:"type:json" json:"tags"`                              // 标签数组
	IsActive    bool           `gorm:"default:true;index" json:"is_active"`                // 是否上架
	SortOrder   int            `gorm:"default:0;index" json:"sort_order"`                  // 排序权重
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                            // 创建时间
	UpdatedAt   time.Time      `json:"updated_at"`                                         // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                     // 软删除时间

	// 关联
	Variants  []ProductVariant `gorm:"foreignKey:ProductID" json:"variants,omitempty"`   // 款式列表（配色等）
	SizeChart []SizeChartRow   `gorm:"foreignKey:ProductID" json:"size_chart,omitempty"` // 尺码库存表
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}
