package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品表（由外部商品目录服务同步，核心只保留开团所需字段）
type Product struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                       // 主键
	StoreID     uint           `gorm:"not null;index" json:"store_id"`                             // 所属店铺ID
	Title       string         `gorm:"not null" json:"title"`                                      // 商品标题
	NormalPrice Money          `gorm:"type:decimal(20,2);not null;default:0" json:"normal_price"` // 原价
	IsActive    bool           `gorm:"not null;default:true;index" json:"is_active"`               // 是否上架
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                                    // 创建时间
	UpdatedAt   time.Time      `json:"updated_at"`                                                 // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                             // 软删除时间
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}
