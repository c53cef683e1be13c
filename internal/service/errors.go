package service

import "errors"

// 通用错误
var (
	ErrNotFound  = errors.New("资源不存在")
	ErrForbidden = errors.New("无权访问该资源")
)

// 认证错误
var (
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrInvalidPassword    = errors.New("密码错误")
	ErrUserDisabled       = errors.New("账号已被禁用")
	ErrEmailTaken         = errors.New("邮箱已被注册")
	ErrWeakPassword       = errors.New("密码强度不足")
)

// 用户错误
var (
	ErrUserNotFound = errors.New("用户不存在")
	ErrUserInvalid  = errors.New("用户参数无效")
)

// 商品错误
var (
	ErrProductNotFound   = errors.New("商品不存在")
	ErrProductInvalid    = errors.New("商品参数无效")
	ErrProductSlugTaken  = errors.New("商品标识已存在")
	ErrProductInactive   = errors.New("商品已下架")
	ErrVariantNotFound   = errors.New("商品款式不存在")
	ErrVariantInactive   = errors.New("商品款式已停用")
	ErrSizeNotFound      = errors.New("商品尺码不存在")
	ErrStockInsufficient = errors.New("商品库存不足")
)

// 订单错误
var (
	ErrOrderNotFound        = errors.New("订单不存在")
	ErrOrderEmpty           = errors.New("订单不能为空")
	ErrOrderQuantityInvalid = errors.New("订单商品数量无效")
	ErrOrderStatusInvalid   = errors.New("订单状态不允许该操作")
	ErrOrderUpdateFailed    = errors.New("订单更新失败")
	ErrOrderAccessDenied    = errors.New("无权访问该订单")
	ErrGuestOrderNeedsItems = errors.New("游客订单必须显式提供商品明细")
	ErrGuestEmailRequired   = errors.New("游客订单必须提供邮箱")
	ErrCartEmpty            = errors.New("购物车为空")
)

// 购物金错误
var (
	ErrCreditGrantNotFound   = errors.New("购物金记录不存在")
	ErrCreditInvalidAmount   = errors.New("购物金金额无效")
	ErrCreditInsufficient    = errors.New("可用购物金不足")
	ErrGuestCreditNotAllowed = errors.New("游客订单不能使用购物金")
)

// 会员等级与积分错误
var (
	ErrTierNotFound     = errors.New("会员等级不存在")
	ErrTierInvalid      = errors.New("会员等级配置无效")
	ErrTierRangeOverlap = errors.New("会员等级消费区间存在重叠")
	ErrTierNotResolved  = errors.New("无法解析会员等级")
)

// 退货退款错误
var (
	ErrReturnNotFound          = errors.New("退货单不存在")
	ErrReturnEmpty             = errors.New("退货明细不能为空")
	ErrReturnOrderState        = errors.New("订单状态不支持退货")
	ErrReturnQuantityExceeded  = errors.New("退货数量超过购买数量")
	ErrReturnTransitionInvalid = errors.New("退货单状态流转非法")
	ErrReturnOpenExists        = errors.New("订单已有进行中的退货单")
	ErrReturnRefundInvalid     = errors.New("退款金额无效")
)

// 优惠券错误
var (
	ErrCouponNotFound     = errors.New("优惠券不存在")
	ErrCouponInvalid      = errors.New("优惠券无效")
	ErrCouponInactive     = errors.New("优惠券已停用")
	ErrCouponNotStarted   = errors.New("优惠券未到生效时间")
	ErrCouponExpired      = errors.New("优惠券已过期")
	ErrCouponUsageLimit   = errors.New("优惠券已达使用上限")
	ErrCouponPerUserLimit = errors.New("优惠券已达每人使用上限")
	ErrCouponMinAmount    = errors.New("未达到优惠券使用门槛")
)

// 验证码错误
var (
	ErrCaptchaRequired      = errors.New("需要验证码")
	ErrCaptchaInvalid       = errors.New("验证码错误")
	ErrCaptchaConfigInvalid = errors.New("验证码配置无效")
)
