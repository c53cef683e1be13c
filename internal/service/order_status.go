package service

import (
	"strings"

	"github.com/Eric920418/shoe-sub000/internal/constants"
)

// orderStatusTransitions 订单状态流转表。
// cancelled 仅发货前可进入；refunded 仅由退货完成驱动。
var orderStatusTransitions = map[string][]string{
	constants.OrderStatusPending:    {constants.OrderStatusConfirmed, constants.OrderStatusCancelled},
	constants.OrderStatusConfirmed:  {constants.OrderStatusProcessing, constants.OrderStatusCancelled},
	constants.OrderStatusProcessing: {constants.OrderStatusShipped, constants.OrderStatusCancelled},
	constants.OrderStatusShipped:    {constants.OrderStatusDelivered},
	constants.OrderStatusDelivered:  {constants.OrderStatusCompleted},
	constants.OrderStatusCompleted:  {constants.OrderStatusRefunded},
	constants.OrderStatusCancelled:  {},
	constants.OrderStatusRefunded:   {},
}

// returnStatusTransitions 退货单状态流转表。
var returnStatusTransitions = map[string][]string{
	constants.ReturnStatusRequested:  {constants.ReturnStatusApproved, constants.ReturnStatusRejected, constants.ReturnStatusCancelled},
	constants.ReturnStatusApproved:   {constants.ReturnStatusReceived, constants.ReturnStatusCancelled},
	constants.ReturnStatusReceived:   {constants.ReturnStatusProcessing},
	constants.ReturnStatusProcessing: {constants.ReturnStatusCompleted, constants.ReturnStatusCancelled},
	constants.ReturnStatusRejected:   {},
	constants.ReturnStatusCompleted:  {},
	constants.ReturnStatusCancelled:  {},
}

func normalizeStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}

// canTransitionOrder 判断订单状态流转是否合法
func canTransitionOrder(from, to string) bool {
	return containsStatus(orderStatusTransitions[normalizeStatus(from)], normalizeStatus(to))
}

// canTransitionReturn 判断退货单状态流转是否合法
func canTransitionReturn(from, to string) bool {
	return containsStatus(returnStatusTransitions[normalizeStatus(from)], normalizeStatus(to))
}

// isTerminalReturnStatus 判断退货单状态是否终态
func isTerminalReturnStatus(status string) bool {
	return len(returnStatusTransitions[normalizeStatus(status)]) == 0
}

func containsStatus(candidates []string, status string) bool {
	for _, candidate := range candidates {
		if candidate == status {
			return true
		}
	}
	return false
}
