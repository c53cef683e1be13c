package models

import (
	"time"

	"gorm.io/gorm"
)

// ProductVariant 商品款式（配色/材质），在基础售价上做加价
type ProductVariant struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                          // 主键
	ProductID       uint           `gorm:"index;not null" json:"product_id"`                              // 商品ID
	Name            string         `gorm:"type:varchar(200);not null" json:"name"`                        // 款式名称
	SKU             string         `gorm:"type:varchar(100);uniqueIndex" json:"sku"`                      // 款式编码
	PriceAdjustment Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price_adjustment"` // 款式加价（可为负）
	Stock           int            `gorm:"not null;default:0" json:"stock"`                               // 款式库存
	IsActive        bool           `gorm:"default:true;index" json:"is_active"`                           // 是否启用
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt       time.Time      `json:"updated_at"`                                                    // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                                // 软删除时间
}

// TableName 指定表名
func (ProductVariant) TableName() string {
	return "product_variants"
}
