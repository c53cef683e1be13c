package models

import (
	"time"

	"gorm.io/gorm"
)

// User 用户表
type User struct {
	ID               uint           `gorm:"primarykey" json:"id"`                                        // 主键
	Email            string         `gorm:"uniqueIndex;not null" json:"email"`                           // 邮箱
	PasswordHash     string         `gorm:"not null" json:"-"`                                           // 密码哈希（不返回给前端）
	DisplayName      string         `gorm:"default:''" json:"display_name"`                              // 昵称
	Locale           string         `gorm:"default:'zh-CN'" json:"locale"`                               // 语言偏好
	Status           string         `gorm:"default:'active'" json:"status"`                              // 账号状态
	TotalSpent       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_spent"`    // 历史累计消费（完成订单口径）
	TotalOrders      int            `gorm:"not null;default:0" json:"total_orders"`                      // 完成订单数
	MembershipTierID *uint          `gorm:"index" json:"membership_tier_id,omitempty"`                   // 会员等级ID
	MembershipPoints int64          `gorm:"not null;default:0" json:"membership_points"`                 // 会员积分余额
	IsFirstTimeBuyer bool           `gorm:"not null;default:true" json:"is_first_time_buyer"`            // 是否从未完成过订单
	FirstPurchaseAt  *time.Time     `json:"first_purchase_at,omitempty"`                                 // 首单完成时间
	BirthdayMonth    int            `gorm:"not null;default:0" json:"birthday_month"`                    // 生日月份（0 表示未填写）
	LastLoginAt      *time.Time     `json:"last_login_at"`                                               // 最后登录时间
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt        time.Time      `gorm:"index" json:"updated_at"`                                     // 更新时间
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`                                              // 软删除时间

	// 关联
	MembershipTier *MembershipTier `gorm:"foreignKey:MembershipTierID" json:"membership_tier,omitempty"` // 会员等级
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
