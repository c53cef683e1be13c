package constants

// 订单状态常量
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
	OrderStatusRefunded   = "refunded"
)

// 支付状态常量（与订单状态独立推进）
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// 退货退款状态常量
const (
	ReturnStatusRequested  = "requested"
	ReturnStatusApproved   = "approved"
	ReturnStatusRejected   = "rejected"
	ReturnStatusReceived   = "received"
	ReturnStatusProcessing = "processing"
	ReturnStatusCompleted  = "completed"
	ReturnStatusCancelled  = "cancelled"
)

// 购物金来源常量
const (
	CreditSourceCampaign   = "campaign"
	CreditSourceRefund     = "refund"
	CreditSourceAdminGrant = "admin_grant"
	CreditSourceBirthday   = "birthday"
	CreditSourceReview     = "review"
)

// 积分流水类型常量
const (
	PointTxnTypeOrderReward    = "order_reward"
	PointTxnTypeCampaignReward = "campaign_reward"
	PointTxnTypeAdminAdjust    = "admin_adjust"
	PointTxnTypeRedeem         = "redeem"
)

// 会员积分规则常量
const (
	// PointBaseRate 每 1 元消费的基础积分（乘以等级倍率后向下取整）
	PointBaseRate = 1
	// TierUpgradeBonusPoints 升级奖励积分（每次完成订单触发升级时发放一次）
	TierUpgradeBonusPoints = 100
	// RefundCreditValidMonths 退款购物金有效期（月）
	RefundCreditValidMonths = 6
)

// 优惠券类型常量
const (
	CouponTypeFixed   = "fixed"
	CouponTypePercent = "percent"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 验证码校验场景常量
const (
	CaptchaSceneGuestCreateOrder = "guest_create_order"
	CaptchaSceneAdminLogin       = "admin_login"

	// 验证码提供方
	CaptchaProviderNone  = "none"
	CaptchaProviderImage = "image"
)

// 队列常量
const (
	QueueDefault          = "default"
	TaskOrderAutoComplete = "order:auto_complete"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "ss"
)

// 站点语言常量
const (
	LocaleZhCN = "zh-CN"
	LocaleEnUS = "en-US"
)

// 支持的站点语言顺序（含回退顺序）
var SupportedLocales = []string{LocaleZhCN, LocaleEnUS}
