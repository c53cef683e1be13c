package repository

import "time"

// ProductListFilter 查询商品列表的过滤条件
type ProductListFilter struct {
	Page         int
	PageSize     int
	Brand        string
	Search       string
	OnlyActive   bool
	WithVariants bool
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page          int
	PageSize      int
	UserID        uint
	Status        string
	PaymentStatus string
	OrderNo       string
	GuestEmail    string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}

// ReturnListFilter 查询退货单列表的过滤条件
type ReturnListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	OrderID     uint
	Status      string
	ReturnNo    string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// CreditGrantListFilter 查询购物金授予列表的过滤条件
type CreditGrantListFilter struct {
	Page       int
	PageSize   int
	UserID     uint
	Source     string
	IsActive   *bool
	OnlyUsable bool
	Now        *time.Time
}

// PointTransactionListFilter 查询积分流水列表的过滤条件
type PointTransactionListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	OrderID     uint
	Type        string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// CouponListFilter 查询优惠券列表的过滤条件
type CouponListFilter struct {
	ID       uint
	Code     string
	IsActive *bool
	Page     int
	PageSize int
}

// CouponUsageListFilter 查询优惠券使用记录列表的过滤条件
type CouponUsageListFilter struct {
	Page     int
	PageSize int
	UserID   uint
}

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page          int
	PageSize      int
	Keyword       string
	Status        string
	TierID        uint
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
	LastLoginFrom *time.Time
	LastLoginTo   *time.Time
}

// AuthzAuditLogListFilter 查询权限审计日志列表的过滤条件
type AuthzAuditLogListFilter struct {
	Page            int
	PageSize        int
	OperatorAdminID uint
	TargetAdminID   uint
	Action          string
	Role            string
	Object          string
	Method          string
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
}
