package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MembershipTier 会员等级表（按历史累计消费划分区间，区间不允许重叠）
type MembershipTier struct {
	ID                    uint            `gorm:"primarykey" json:"id"`                                             // 主键
	Name                  string          `gorm:"uniqueIndex;not null" json:"name"`                                 // 等级名称
	MinSpent              Money           `gorm:"type:decimal(20,2);not null;default:0" json:"min_spent"`           // 区间下界（含）
	MaxSpent              *Money          `gorm:"type:decimal(20,2)" json:"max_spent,omitempty"`                    // 区间上界（不含，空表示无上界）
	Discount              decimal.Decimal `gorm:"type:decimal(10,4);not null;default:1" json:"discount"`            // 会员折扣率（1 表示无折扣）
	PointsMultiplier      decimal.Decimal `gorm:"type:decimal(10,4);not null;default:1" json:"points_multiplier"`   // 积分倍率
	FreeShippingThreshold *Money          `gorm:"type:decimal(20,2)" json:"free_shipping_threshold,omitempty"`      // 免运费门槛（空表示不免运费）
	BirthdayGift          string          `gorm:"type:varchar(200)" json:"birthday_gift,omitempty"`                 // 生日礼遇描述
	SortOrder             int             `gorm:"default:0;index" json:"sort_order"`                                // 排序权重
	IsActive              bool            `gorm:"not null;default:true;index" json:"is_active"`                     // 是否启用
	CreatedAt             time.Time       `gorm:"index" json:"created_at"`                                          // 创建时间
	UpdatedAt             time.Time       `gorm:"index" json:"updated_at"`                                          // 更新时间
	DeletedAt             gorm.DeletedAt  `gorm:"index" json:"-"`                                                   // 软删除时间
}

// TableName 指定表名
func (MembershipTier) TableName() string {
	return "membership_tiers"
}

// Contains 判断累计消费是否落在该等级区间内
func (t *MembershipTier) Contains(totalSpent Money) bool {
	if totalSpent.LessThan(t.MinSpent.Decimal) {
		return false
	}
	if t.MaxSpent == nil {
		return true
	}
	return totalSpent.LessThan(t.MaxSpent.Decimal)
}
