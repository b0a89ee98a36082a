package models

import (
	"time"
)

// GroupEvent 拼团状态流转记录（只追加）
type GroupEvent struct {
	ID         uint      `gorm:"primarykey" json:"id"`           // 主键
	GroupID    uint      `gorm:"not null;index" json:"group_id"` // 拼团ID
	FromStatus string    `gorm:"not null" json:"from_status"`    // 流转前状态
	ToStatus   string    `gorm:"not null" json:"to_status"`      // 流转后状态
	Actor      string    `gorm:"not null" json:"actor"`          // 触发方（consumer/store/scheduler/system）
	UnitsAt    int       `gorm:"not null" json:"units_at"`       // 流转时有效预订数量
	CreatedAt  time.Time `gorm:"index" json:"created_at"`        // 创建时间
}

// TableName 指定表名
func (GroupEvent) TableName() string {
	return "group_events"
}
