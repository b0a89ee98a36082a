package models

import (
	"time"

	"gorm.io/gorm"
)

// Group 拼团表
// 状态单向推进：active → pickup → validated → completed，或 active → expired。
// CurrentUnits 为有效预订数量之和的缓存，在每次预订变更事务内同步维护。
type Group struct {
	ID           uint           `gorm:"primarykey" json:"id"`                                        // 主键
	GroupNo      string         `gorm:"uniqueIndex;not null" json:"group_no"`                        // 拼团编号
	ProductID    uint           `gorm:"not null;index" json:"product_id"`                            // 商品ID
	StoreID      uint           `gorm:"not null;index" json:"store_id"`                              // 店铺ID
	CreatorID    uint           `gorm:"not null" json:"creator_id"`                                  // 发起人ID（店铺侧操作员）
	TargetUnits  int            `gorm:"not null" json:"target_units"`                                // 成团数量阈值
	MaxUnits     int            `gorm:"not null;default:0" json:"max_units"`                         // 容量硬上限（0 表示不限制）
	CurrentUnits int            `gorm:"not null;default:0" json:"current_units"`                     // 当前有效预订数量（缓存）
	NormalPrice  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"normal_price"`   // 原价
	GroupPrice   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"group_price"`    // 拼团价
	Status       string         `gorm:"index;not null" json:"status"`                                // 拼团状态
	QRCode       string         `gorm:"uniqueIndex;default:null" json:"qr_code,omitempty"`           // 核销码（进入 pickup 时一次性签发）
	ExpiresAt    time.Time      `gorm:"index;not null" json:"expires_at"`                            // 截止时间
	PickupAt     *time.Time     `json:"pickup_at,omitempty"`                                         // 成团时间
	ValidatedAt  *time.Time     `json:"validated_at,omitempty"`                                      // 全部核销时间
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`                                      // 关单时间
	ExpiredAt    *time.Time     `json:"expired_at,omitempty"`                                        // 过期时间
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt    time.Time      `json:"updated_at"`                                                  // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                              // 软删除时间

	// 关联
	Product      *Product      `gorm:"foreignKey:ProductID" json:"product,omitempty"`      // 商品信息
	Reservations []Reservation `gorm:"foreignKey:GroupID" json:"reservations,omitempty"`   // 预订列表
}

// TableName 指定表名
func (Group) TableName() string {
	return "groups"
}
