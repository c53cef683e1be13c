package queue

import (
	"encoding/json"

	"github.com/Eric920418/shoe-sub000/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderAutoComplete 送达订单自动确认收货任务
	TaskOrderAutoComplete = constants.TaskOrderAutoComplete
)

// OrderAutoCompletePayload 自动确认收货任务载荷
type OrderAutoCompletePayload struct {
	OrderID uint `json:"order_id"`
}

// NewOrderAutoCompleteTask 创建自动确认收货任务
func NewOrderAutoCompleteTask(payload OrderAutoCompletePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderAutoComplete, body), nil
}
