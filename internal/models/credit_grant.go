package models

import (
	"time"

	"gorm.io/gorm"
)

// CreditGrant 购物金授予记录（Amount 不可变，Balance 只减不增；记录永不删除）
type CreditGrant struct {
	ID               uint           `gorm:"primarykey" json:"id"`                                     // 主键
	UserID           uint           `gorm:"index;not null" json:"user_id"`                            // 用户ID
	Amount           Money          `gorm:"type:decimal(20,2);not null" json:"amount"`                // 授予金额（历史事实）
	Balance          Money          `gorm:"type:decimal(20,2);not null" json:"balance"`               // 剩余余额
	Source           string         `gorm:"type:varchar(30);index;not null" json:"source"`            // 来源（campaign/refund/admin_grant/birthday/review）
	SourceOrderID    *uint          `gorm:"index" json:"source_order_id,omitempty"`                   // 来源订单ID（退款购物金）
	ValidFrom        time.Time      `gorm:"index;not null" json:"valid_from"`                         // 生效时间（含）
	ValidUntil       time.Time      `gorm:"index;not null" json:"valid_until"`                        // 过期时间（含）
	MaxUsagePerOrder *Money         `gorm:"type:decimal(20,2)" json:"max_usage_per_order,omitempty"`  // 单笔订单使用上限（空表示不限）
	MinOrderAmount   *Money         `gorm:"type:decimal(20,2)" json:"min_order_amount,omitempty"`     // 使用门槛：订单小计下限（空表示不限）
	IsActive         bool           `gorm:"not null;default:true;index" json:"is_active"`             // 是否启用（管理员可停用，不删除）
	IsUsed           bool           `gorm:"not null;default:false;index" json:"is_used"`              // 余额是否已耗尽
	Remark           string         `gorm:"type:varchar(500)" json:"remark,omitempty"`                // 备注
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`                                  // 创建时间
	UpdatedAt        time.Time      `gorm:"index" json:"updated_at"`                                  // 更新时间
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`                                           // 软删除时间
}

// TableName 指定表名
func (CreditGrant) TableName() string {
	return "credit_grants"
}

// UsableAt 判断授予在给定时刻是否可用于抵扣
func (g *CreditGrant) UsableAt(now time.Time) bool {
	if !g.IsActive || g.IsUsed {
		return false
	}
	if !g.Balance.IsPositive() {
		return false
	}
	if now.Before(g.ValidFrom) || now.After(g.ValidUntil) {
		return false
	}
	return true
}
