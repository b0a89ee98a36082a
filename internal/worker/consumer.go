package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pintuan-next/internal/constants"
	"github.com/pintuan-next/internal/logger"
	"github.com/pintuan-next/internal/provider"
	"github.com/pintuan-next/internal/queue"

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
	mux.HandleFunc(queue.TaskGroupExpire, c.handleGroupExpire)
}

// handleGroupExpire 处理拼团到期任务。
// 任务在开团时按截止时间延迟投递，拼团已流转时这里是无害的空转。
func (c *Consumer) handleGroupExpire(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_group_expire_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.GroupExpirePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_group_expire_unmarshal_failed", "error", err)
		return err
	}
	if payload.GroupID == 0 {
		logger.Debugw("worker_group_expire_skip_invalid_payload", "group_id", payload.GroupID)
		return nil
	}
	if c.ExpiryService == nil {
		logger.Warnw("worker_group_expire_skip_expiry_service_nil", "group_id", payload.GroupID)
		return nil
	}

	won, err := c.ExpiryService.ExpireGroup(payload.GroupID, time.Now(), constants.GroupActorScheduler)
	if err != nil {
		logger.Warnw("worker_group_expire_failed", "group_id", payload.GroupID, "error", err)
		return err
	}
	if won {
		logger.Infow("worker_group_expired", "group_id", payload.GroupID)
	}
	return nil
}
