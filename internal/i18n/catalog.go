package i18n

import "github.com/Eric920418/shoe-sub000/internal/constants"

var catalogs = map[string]map[string]string{
	constants.LocaleZhCN: {
		"error.bad_request":           "请求参数有误",
		"error.unauthorized":          "请先登录",
		"error.forbidden":             "无权执行该操作",
		"error.not_found":             "资源不存在",
		"error.internal":              "服务器内部错误",
		"error.too_many_requests":     "请求过于频繁，请稍后再试",
		"error.user_id_invalid":       "用户标识无效",
		"error.user_id_type_invalid":  "用户标识类型错误",
		"error.admin_id_invalid":      "管理员标识无效",
		"error.admin_id_type_invalid": "管理员标识类型错误",

		"error.invalid_credentials":      "邮箱或密码错误",
		"error.password_invalid":         "密码错误",
		"error.user_disabled":            "账号已被禁用",
		"error.email_taken":              "邮箱已被注册",
		"error.email_invalid":            "邮箱格式无效",
		"error.weak_password":            "密码强度不足",
		"error.password_min_length":      "密码长度至少 %d 位",
		"error.password_require_upper":   "密码需要包含大写字母",
		"error.password_require_lower":   "密码需要包含小写字母",
		"error.password_require_number":  "密码需要包含数字",
		"error.password_require_special": "密码需要包含特殊字符",
		"error.login_rate_limited":       "登录尝试过多，请稍后再试",

		"error.captcha_required":        "需要验证码",
		"error.captcha_invalid":         "验证码错误",
		"error.captcha_unavailable":     "验证码服务不可用",
		"error.captcha_generate_failed": "验证码生成失败",

		"error.product_not_found":     "商品不存在",
		"error.product_invalid":       "商品参数无效",
		"error.product_slug_taken":    "商品标识已存在",
		"error.product_inactive":      "商品已下架",
		"error.variant_not_found":     "商品款式不存在",
		"error.variant_inactive":      "商品款式已停用",
		"error.size_not_found":        "商品尺码不存在",
		"error.stock_insufficient":    "商品库存不足",
		"error.product_fetch_failed":  "商品查询失败",
		"error.product_save_failed":   "商品保存失败",

		"error.cart_empty":        "购物车为空",
		"error.cart_item_invalid": "购物车参数无效",
		"error.cart_fetch_failed": "购物车查询失败",
		"error.cart_save_failed":  "购物车保存失败",

		"error.order_not_found":         "订单不存在",
		"error.order_empty":             "订单不能为空",
		"error.order_item_invalid":      "订单商品无效",
		"error.order_status_invalid":    "订单状态不允许该操作",
		"error.order_access_denied":     "无权访问该订单",
		"error.order_create_failed":     "订单创建失败",
		"error.order_fetch_failed":      "订单查询失败",
		"error.order_update_failed":     "订单更新失败",
		"error.guest_order_needs_items": "游客订单必须提供商品明细",
		"error.guest_email_required":    "游客订单必须提供邮箱",

		"error.credit_not_found":          "购物金记录不存在",
		"error.credit_amount_invalid":     "购物金金额无效",
		"error.credit_insufficient":       "可用购物金不足",
		"error.guest_credit_not_allowed":  "游客订单不能使用购物金",
		"error.credit_fetch_failed":       "购物金查询失败",
		"error.credit_save_failed":        "购物金保存失败",

		"error.tier_not_found":          "会员等级不存在",
		"error.tier_invalid":            "会员等级配置无效",
		"error.tier_range_overlap":      "会员等级消费区间存在重叠",
		"error.tier_not_resolved":       "无法解析会员等级",
		"error.tier_fetch_failed":       "会员等级查询失败",
		"error.tier_save_failed":        "会员等级保存失败",
		"error.membership_fetch_failed": "会员信息查询失败",
		"error.points_adjust_failed":    "积分调整失败",

		"error.return_not_found":          "退货单不存在",
		"error.return_empty":              "退货明细无效",
		"error.return_order_state":        "订单状态不支持退货",
		"error.return_quantity_exceeded":  "退货数量超过购买数量",
		"error.return_transition_invalid": "退货单状态流转非法",
		"error.return_open_exists":        "订单已有进行中的退货单",
		"error.return_refund_invalid":     "退款金额无效",
		"error.return_fetch_failed":       "退货单查询失败",
		"error.return_save_failed":        "退货单保存失败",

		"error.coupon_not_found":      "优惠券不存在",
		"error.coupon_invalid":        "优惠券无效",
		"error.coupon_inactive":       "优惠券已停用",
		"error.coupon_not_started":    "优惠券未到生效时间",
		"error.coupon_expired":        "优惠券已过期",
		"error.coupon_usage_limit":    "优惠券已达使用上限",
		"error.coupon_per_user_limit": "优惠券已达每人使用上限",
		"error.coupon_min_amount":     "未达到优惠券使用门槛",
		"error.coupon_fetch_failed":   "优惠券查询失败",
		"error.coupon_save_failed":    "优惠券保存失败",

		"error.user_not_found":    "用户不存在",
		"error.user_invalid":      "用户参数无效",
		"error.user_fetch_failed": "用户查询失败",
		"error.user_save_failed":  "用户保存失败",
	},
	constants.LocaleEnUS: {
		"error.bad_request":           "Invalid request",
		"error.unauthorized":          "Please sign in first",
		"error.forbidden":             "You are not allowed to perform this action",
		"error.not_found":             "Resource not found",
		"error.internal":              "Internal server error",
		"error.too_many_requests":     "Too many requests, please try again later",
		"error.user_id_invalid":       "Invalid user identifier",
		"error.user_id_type_invalid":  "Invalid user identifier type",
		"error.admin_id_invalid":      "Invalid admin identifier",
		"error.admin_id_type_invalid": "Invalid admin identifier type",

		"error.invalid_credentials":      "Incorrect email or password",
		"error.password_invalid":         "Incorrect password",
		"error.user_disabled":            "Account is disabled",
		"error.email_taken":              "Email is already registered",
		"error.email_invalid":            "Invalid email address",
		"error.weak_password":            "Password is too weak",
		"error.password_min_length":      "Password must be at least %d characters",
		"error.password_require_upper":   "Password must contain an uppercase letter",
		"error.password_require_lower":   "Password must contain a lowercase letter",
		"error.password_require_number":  "Password must contain a number",
		"error.password_require_special": "Password must contain a special character",
		"error.login_rate_limited":       "Too many login attempts, please try again later",

		"error.captcha_required":        "Captcha is required",
		"error.captcha_invalid":         "Incorrect captcha",
		"error.captcha_unavailable":     "Captcha service unavailable",
		"error.captcha_generate_failed": "Failed to generate captcha",

		"error.product_not_found":    "Product not found",
		"error.product_invalid":      "Invalid product parameters",
		"error.product_slug_taken":   "Product slug already exists",
		"error.product_inactive":     "Product is not available",
		"error.variant_not_found":    "Product variant not found",
		"error.variant_inactive":     "Product variant is not available",
		"error.size_not_found":       "Size not found for this product",
		"error.stock_insufficient":   "Insufficient stock",
		"error.product_fetch_failed": "Failed to fetch product",
		"error.product_save_failed":  "Failed to save product",

		"error.cart_empty":        "Cart is empty",
		"error.cart_item_invalid": "Invalid cart parameters",
		"error.cart_fetch_failed": "Failed to fetch cart",
		"error.cart_save_failed":  "Failed to save cart",

		"error.order_not_found":         "Order not found",
		"error.order_empty":             "Order must contain items",
		"error.order_item_invalid":      "Invalid order item",
		"error.order_status_invalid":    "Order status does not allow this operation",
		"error.order_access_denied":     "You are not allowed to access this order",
		"error.order_create_failed":     "Failed to create order",
		"error.order_fetch_failed":      "Failed to fetch order",
		"error.order_update_failed":     "Failed to update order",
		"error.guest_order_needs_items": "Guest orders must provide explicit items",
		"error.guest_email_required":    "Guest orders must provide an email",

		"error.credit_not_found":         "Store credit record not found",
		"error.credit_amount_invalid":    "Invalid store credit amount",
		"error.credit_insufficient":      "Insufficient usable store credit",
		"error.guest_credit_not_allowed": "Guest orders cannot use store credit",
		"error.credit_fetch_failed":      "Failed to fetch store credit",
		"error.credit_save_failed":       "Failed to save store credit",

		"error.tier_not_found":          "Membership tier not found",
		"error.tier_invalid":            "Invalid membership tier configuration",
		"error.tier_range_overlap":      "Membership tier spending ranges overlap",
		"error.tier_not_resolved":       "Unable to resolve membership tier",
		"error.tier_fetch_failed":       "Failed to fetch membership tiers",
		"error.tier_save_failed":        "Failed to save membership tier",
		"error.membership_fetch_failed": "Failed to fetch membership profile",
		"error.points_adjust_failed":    "Failed to adjust points",

		"error.return_not_found":          "Return request not found",
		"error.return_empty":              "Invalid return items",
		"error.return_order_state":        "Order status does not allow returns",
		"error.return_quantity_exceeded":  "Return quantity exceeds purchased quantity",
		"error.return_transition_invalid": "Invalid return status transition",
		"error.return_open_exists":        "Order already has an open return",
		"error.return_refund_invalid":     "Invalid refund amount",
		"error.return_fetch_failed":       "Failed to fetch return request",
		"error.return_save_failed":        "Failed to save return request",

		"error.coupon_not_found":      "Coupon not found",
		"error.coupon_invalid":        "Invalid coupon",
		"error.coupon_inactive":       "Coupon is inactive",
		"error.coupon_not_started":    "Coupon is not active yet",
		"error.coupon_expired":        "Coupon has expired",
		"error.coupon_usage_limit":    "Coupon usage limit reached",
		"error.coupon_per_user_limit": "Coupon per-user limit reached",
		"error.coupon_min_amount":     "Order subtotal below coupon threshold",
		"error.coupon_fetch_failed":   "Failed to fetch coupon",
		"error.coupon_save_failed":    "Failed to save coupon",

		"error.user_not_found":    "User not found",
		"error.user_invalid":      "Invalid user parameters",
		"error.user_fetch_failed": "Failed to fetch user",
		"error.user_save_failed":  "Failed to save user",
	},
}
