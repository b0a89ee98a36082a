package queue

import (
	"encoding/json"

	"github.com/pintuan-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskGroupExpire 拼团到期处理任务
	TaskGroupExpire = constants.TaskGroupExpire
)

// GroupExpirePayload 拼团到期任务载荷
type GroupExpirePayload struct {
	GroupID uint `json:"group_id"`
}

// NewGroupExpireTask 创建拼团到期任务
func NewGroupExpireTask(payload GroupExpirePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGroupExpire, body), nil
}
