package public

import "github.com/pintuan-next/internal/provider"

// Handler 消费者侧接口处理器入口
type Handler struct {
	*provider.Container
}

// New 创建消费者侧处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
