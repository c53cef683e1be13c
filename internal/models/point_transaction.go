package models

import (
	"time"

	"gorm.io/gorm"
)

// PointTransaction 积分流水表（仅追加；Reference 唯一，用于完成订单幂等）
type PointTransaction struct {
	ID        uint           `gorm:"primarykey" json:"id"`                          // 主键
	UserID    uint           `gorm:"index;not null" json:"user_id"`                 // 用户ID
	OrderID   *uint          `gorm:"index" json:"order_id,omitempty"`               // 关联订单ID
	Type      string         `gorm:"type:varchar(30);index;not null" json:"type"`   // 类型（order_reward/campaign_reward/admin_adjust/redeem）
	Points    int64          `gorm:"not null" json:"points"`                        // 积分变动（负数为扣减）
	Reference string         `gorm:"uniqueIndex;not null" json:"reference"`         // 业务引用（幂等键）
	Remark    string         `gorm:"type:varchar(500)" json:"remark,omitempty"`     // 备注
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                       // 创建时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                // 软删除时间
}

// TableName 指定表名
func (PointTransaction) TableName() string {
	return "point_transactions"
}
