package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderItem 订单项表（下单时的商品快照，后续改价不影响历史订单）
type OrderItem struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                     // 主键
	OrderID     uint           `gorm:"index;not null" json:"order_id"`                           // 订单ID
	ProductID   uint           `gorm:"index;not null" json:"product_id"`                         // 商品ID
	VariantID   *uint          `gorm:"index" json:"variant_id,omitempty"`                        // 款式ID（无款式商品为空）
	ProductName string         `gorm:"type:varchar(200);not null" json:"product_name"`           // 商品名称快照
	VariantName string         `gorm:"type:varchar(200)" json:"variant_name,omitempty"`          // 款式名称快照
	Size        string         `gorm:"type:varchar(20);not null" json:"size"`                    // 尺码
	UnitPrice   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`  // 单价（含款式加价）
	Quantity    int            `gorm:"not null" json:"quantity"`                                 // 数量
	TotalPrice  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"` // 小计
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                                  // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`                                  // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                           // 软删除时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
