package models

import (
	"time"

	"gorm.io/gorm"
)

// Return 退货退款单
type Return struct {
	ID           uint           `gorm:"primarykey" json:"id"`                                        // 主键
	ReturnNo     string         `gorm:"uniqueIndex;not null" json:"return_no"`                       // 退货单编号
	OrderID      uint           `gorm:"index;not null" json:"order_id"`                              // 订单ID
	UserID       uint           `gorm:"index;not null" json:"user_id"`                               // 用户ID（游客退货为 0）
	Status       string         `gorm:"index;not null" json:"status"`                                // 状态
	Reason       string         `gorm:"type:varchar(500)" json:"reason"`                             // 退货原因
	AdminRemark  string         `gorm:"type:varchar(500)" json:"admin_remark,omitempty"`             // 审核备注
	RefundAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"refund_amount"`  // 退款金额（创建时按明细计算，完成时可被覆盖）
	RefundedAt   *time.Time     `gorm:"index" json:"refunded_at"`                                    // 退款完成时间
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`                                     // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                              // 软删除时间

	Items []ReturnItem `gorm:"foreignKey:ReturnID" json:"items,omitempty"` // 退货明细
}

// TableName 指定表名
func (Return) TableName() string {
	return "returns"
}

// ReturnItem 退货明细
type ReturnItem struct {
	ID          uint           `gorm:"primarykey" json:"id"`                 // 主键
	ReturnID    uint           `gorm:"index;not null" json:"return_id"`      // 退货单ID
	OrderItemID uint           `gorm:"index;not null" json:"order_item_id"`  // 订单项ID
	Quantity    int            `gorm:"not null" json:"quantity"`             // 退货数量（不超过购买数量）
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`              // 创建时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                       // 软删除时间
}

// TableName 指定表名
func (ReturnItem) TableName() string {
	return "return_items"
}
