package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表
type Order struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                          // 主键
	OrderNo        string         `gorm:"uniqueIndex;not null" json:"order_no"`                          // 订单编号
	UserID         uint           `gorm:"index;not null" json:"user_id,omitempty"`                       // 用户ID（游客订单为 0）
	GuestEmail     string         `gorm:"index" json:"guest_email,omitempty"`                            // 游客邮箱
	GuestPassword  string         `gorm:"type:varchar(200)" json:"-"`                                    // 游客订单查询密码
	GuestLocale    string         `gorm:"type:varchar(20)" json:"guest_locale,omitempty"`                // 游客语言
	Status         string         `gorm:"index;not null" json:"status"`                                  // 订单状态
	PaymentStatus  string         `gorm:"index;not null" json:"payment_status"`                          // 支付状态（与订单状态独立）
	PaymentMethod  string         `gorm:"type:varchar(50)" json:"payment_method,omitempty"`              // 支付方式（不透明标识，由外部收单方解释）
	Subtotal       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`         // 商品小计
	ShippingFee    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"shipping_fee"`     // 运费
	CouponDiscount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"coupon_discount"`  // 优惠券抵扣金额
	CreditDiscount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"credit_discount"`  // 购物金抵扣金额
	DiscountAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"`  // 优惠总额
	TotalAmount    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`     // 实付金额（下限为 0）
	CouponID       *uint          `gorm:"index" json:"coupon_id,omitempty"`                              // 优惠券ID
	ShippingJSON   JSON           `gorm:"type:json" json:"shipping_info"`                                // 收货信息快照
	ClientIP       string         `gorm:"type:varchar(64)" json:"client_ip,omitempty"`                   // 下单客户端IP
	PaidAt         *time.Time     `gorm:"index" json:"paid_at"`                                          // 支付时间
	DeliveredAt    *time.Time     `gorm:"index" json:"delivered_at"`                                     // 送达时间
	CompletedAt    *time.Time     `gorm:"index" json:"completed_at"`                                     // 完成时间
	CancelledAt    *time.Time     `gorm:"index" json:"cancelled_at"`                                     // 取消时间
	RefundedAt     *time.Time     `gorm:"index" json:"refunded_at"`                                      // 退款时间
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                                       // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                                // 软删除时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// IsGuest 是否游客订单
func (o *Order) IsGuest() bool {
	return o.UserID == 0
}
