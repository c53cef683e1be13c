package service

import (
	"github.com/Eric920418/shoe-sub000/internal/logger"
	"github.com/Eric920418/shoe-sub000/internal/models"
)

// ReferralNotifier 推荐分佣通知接口。
// 每笔会员订单完成后尽力触发，失败只记录日志，不影响订单流程。
type ReferralNotifier interface {
	NotifyOrderCompleted(userID, orderID uint, amount models.Money) error
}

// LogReferralNotifier 仅写日志的默认实现，外部奖励系统接入时替换
type LogReferralNotifier struct{}

// NewLogReferralNotifier 创建默认推荐通知器
func NewLogReferralNotifier() *LogReferralNotifier {
	return &LogReferralNotifier{}
}

// NotifyOrderCompleted 记录订单完成事件
func (n *LogReferralNotifier) NotifyOrderCompleted(userID, orderID uint, amount models.Money) error {
	logger.Infow("referral_order_completed",
		"user_id", userID,
		"order_id", orderID,
		"order_amount", amount.String(),
	)
	return nil
}
