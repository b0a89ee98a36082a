package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/pintuan-next/internal/constants"
	"github.com/pintuan-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GroupRepository 拼团数据访问接口
type GroupRepository interface {
	Create(group *models.Group) error
	GetByID(id uint) (*models.Group, error)
	GetByIDForUpdate(id uint) (*models.Group, error)
	GetByGroupNo(groupNo string) (*models.Group, error)
	GetByQRCodeForUpdate(code string) (*models.Group, error)
	List(filter GroupListFilter) ([]models.Group, int64, error)
	ListExpiredActiveIDs(now time.Time, limit int) ([]uint, error)
	UpdateStatusCAS(id uint, fromStatus, toStatus string, updates map[string]interface{}) (bool, error)
	UpdateCurrentUnits(id uint, units int, now time.Time) error
	WithTx(tx *gorm.DB) *GormGroupRepository
}

// GormGroupRepository GORM 实现
type GormGroupRepository struct {
	db *gorm.DB
}

// NewGroupRepository 创建拼团仓库
func NewGroupRepository(db *gorm.DB) *GormGroupRepository {
	return &GormGroupRepository{db: db}
}

// WithTx 绑定事务
func (r *GormGroupRepository) WithTx(tx *gorm.DB) *GormGroupRepository {
	if tx == nil {
		return r
	}
	return &GormGroupRepository{db: tx}
}

// Create 创建拼团
func (r *GormGroupRepository) Create(group *models.Group) error {
	return r.db.Create(group).Error
}

// GetByID 根据 ID 获取拼团
func (r *GormGroupRepository) GetByID(id uint) (*models.Group, error) {
	var group models.Group
	if err := r.db.Preload("Product").First(&group, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &group, nil
}

// GetByIDForUpdate 按 ID 加锁获取拼团。
// 同一拼团的写事务以该行锁串行，事务内读到的预订合计才可作为流转依据。
func (r *GormGroupRepository) GetByIDForUpdate(id uint) (*models.Group, error) {
	var group models.Group
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&group, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &group, nil
}

// GetByGroupNo 根据拼团编号获取拼团
func (r *GormGroupRepository) GetByGroupNo(groupNo string) (*models.Group, error) {
	groupNo = strings.TrimSpace(groupNo)
	if groupNo == "" {
		return nil, nil
	}
	var group models.Group
	if err := r.db.Preload("Product").Where("group_no = ?", groupNo).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &group, nil
}

// GetByQRCodeForUpdate 根据核销码加锁获取拼团
func (r *GormGroupRepository) GetByQRCodeForUpdate(code string) (*models.Group, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	var group models.Group
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("qr_code = ?", code).
		First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &group, nil
}

// List 查询拼团列表
func (r *GormGroupRepository) List(filter GroupListFilter) ([]models.Group, int64, error) {
	query := r.db.Model(&models.Group{})
	if filter.StoreID != 0 {
		query = query.Where("store_id = ?", filter.StoreID)
	}
	if filter.ProductID != 0 {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if groupNo := strings.TrimSpace(filter.GroupNo); groupNo != "" {
		query = query.Where("group_no = ?", groupNo)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.WithProduct {
		query = query.Preload("Product")
	}
	var groups []models.Group
	if err := applyPagination(query.Order("created_at DESC"), filter.Page, filter.PageSize).
		Find(&groups).Error; err != nil {
		return nil, 0, err
	}
	return groups, total, nil
}

// ListExpiredActiveIDs 列出已过截止时间仍为 active 的拼团 ID
func (r *GormGroupRepository) ListExpiredActiveIDs(now time.Time, limit int) ([]uint, error) {
	if limit <= 0 {
		limit = 200
	}
	var ids []uint
	if err := r.db.Model(&models.Group{}).
		Where("status = ? AND expires_at <= ?", constants.GroupStatusActive, now).
		Order("expires_at ASC").
		Limit(limit).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// UpdateStatusCAS 以旧状态为条件推进拼团状态，返回是否命中。
// rowsAffected == 1 表示本次调用赢得了该次状态流转。
func (r *GormGroupRepository) UpdateStatusCAS(id uint, fromStatus, toStatus string, updates map[string]interface{}) (bool, error) {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = toStatus
	result := r.db.Model(&models.Group{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// UpdateCurrentUnits 更新有效预订数量缓存
func (r *GormGroupRepository) UpdateCurrentUnits(id uint, units int, now time.Time) error {
	return r.db.Model(&models.Group{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"current_units": units,
			"updated_at":    now,
		}).Error
}
