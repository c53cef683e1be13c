package models

import (
	"time"

	"gorm.io/gorm"
)

// SizeChartRow 尺码库存表（商品+尺码唯一）
type SizeChartRow struct {
	ID        uint           `gorm:"primarykey" json:"id"`                                          // 主键
	ProductID uint           `gorm:"not null;uniqueIndex:idx_size_product_size" json:"product_id"`  // 商品ID
	Size      string         `gorm:"type:varchar(20);not null;uniqueIndex:idx_size_product_size" json:"size"` // 尺码
	Stock     int            `gorm:"not null;default:0" json:"stock"`                               // 该尺码库存
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt time.Time      `json:"updated_at"`                                                    // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                                // 软删除时间
}

// TableName 指定表名
func (SizeChartRow) TableName() string {
	return "size_chart_rows"
}
