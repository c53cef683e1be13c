package worker

import (
	"context"
	"encoding/json"

	"github.com/Eric920418/shoe-sub000/internal/logger"
	"github.com/Eric920418/shoe-sub000/internal/provider"
	"github.com/Eric920418/shoe-sub000/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderAutoComplete, c.handleOrderAutoComplete)
}

func (c *Consumer) handleOrderAutoComplete(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_auto_complete_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderAutoCompletePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_auto_complete_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_auto_complete_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if c.OrderService == nil {
		logger.Warnw("worker_order_auto_complete_skip_order_service_nil", "order_id", payload.OrderID)
		return nil
	}
	// 非送达状态由服务内部静默跳过，保证重复投递幂等
	if err := c.OrderService.CompleteOrder(payload.OrderID); err != nil {
		logger.Warnw("worker_order_auto_complete_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	return nil
}
