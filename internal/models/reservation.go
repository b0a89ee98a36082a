package models

import (
	"time"
)

// Reservation 预订表
// IsValidated 是单向闩：一旦置为 true 不再回退，核销与取消都以它为准。
// 同一用户在同一拼团内最多一条 active 预订。
type Reservation struct {
	ID          uint       `gorm:"primarykey" json:"id"`                         // 主键
	GroupID     uint       `gorm:"not null;index:idx_group_user" json:"group_id"` // 拼团ID
	UserID      uint       `gorm:"not null;index:idx_group_user" json:"user_id"`  // 用户ID
	Units       int        `gorm:"not null" json:"units"`                        // 预订数量
	Status      string     `gorm:"index;not null" json:"status"`                 // 预订状态（active/cancelled）
	IsValidated bool       `gorm:"not null;default:false" json:"is_validated"`   // 是否已核销
	ValidatedAt *time.Time `json:"validated_at,omitempty"`                       // 核销时间（一次性写入）
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`                       // 取消时间
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`                      // 创建时间
	UpdatedAt   time.Time  `json:"updated_at"`                                   // 更新时间
}

// TableName 指定表名
func (Reservation) TableName() string {
	return "reservations"
}
