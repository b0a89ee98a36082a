package repository

import (
	"github.com/pintuan-next/internal/models"

	"gorm.io/gorm"
)

// GroupEventRepository 拼团流转记录数据访问接口
type GroupEventRepository interface {
	Append(event *models.GroupEvent) error
	ListByGroup(groupID uint) ([]models.GroupEvent, error)
	WithTx(tx *gorm.DB) *GormGroupEventRepository
}

// GormGroupEventRepository GORM 实现
type GormGroupEventRepository struct {
	db *gorm.DB
}

// NewGroupEventRepository 创建拼团流转记录仓库
func NewGroupEventRepository(db *gorm.DB) *GormGroupEventRepository {
	return &GormGroupEventRepository{db: db}
}

// WithTx 绑定事务
func (r *GormGroupEventRepository) WithTx(tx *gorm.DB) *GormGroupEventRepository {
	if tx == nil {
		return r
	}
	return &GormGroupEventRepository{db: tx}
}

// Append 追加流转记录
func (r *GormGroupEventRepository) Append(event *models.GroupEvent) error {
	return r.db.Create(event).Error
}

// ListByGroup 查询拼团的流转记录
func (r *GormGroupEventRepository) ListByGroup(groupID uint) ([]models.GroupEvent, error) {
	var events []models.GroupEvent
	if err := r.db.Where("group_id = ?", groupID).
		Order("created_at ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
