package models

import (
	"time"

	"gorm.io/gorm"
)

// CreditUsage 购物金核销记录（按授予逐笔记账，用于追溯与取消订单回补）
type CreditUsage struct {
	ID         uint           `gorm:"primarykey" json:"id"`                       // 主键
	GrantID    uint           `gorm:"index;not null" json:"grant_id"`             // 购物金授予ID
	UserID     uint           `gorm:"index;not null" json:"user_id"`              // 用户ID
	OrderID    uint           `gorm:"index;not null" json:"order_id"`             // 订单ID
	Amount     Money          `gorm:"type:decimal(20,2);not null" json:"amount"`  // 核销金额
	IsReleased bool           `gorm:"not null;default:false" json:"is_released"`  // 是否已因订单取消回补
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`                    // 创建时间
	UpdatedAt  time.Time      `gorm:"index" json:"updated_at"`                    // 更新时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                             // 软删除时间
}

// TableName 指定表名
func (CreditUsage) TableName() string {
	return "credit_usages"
}
