package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/pintuan-next/internal/constants"
	"github.com/pintuan-next/internal/models"

	"gorm.io/gorm"
)

// ReservationRepository 预订数据访问接口
type ReservationRepository interface {
	Create(reservation *models.Reservation) error
	GetByID(id uint) (*models.Reservation, error)
	GetActiveByGroupAndUser(groupID, userID uint) (*models.Reservation, error)
	List(filter ReservationListFilter) ([]models.Reservation, int64, error)
	SumActiveUnits(groupID uint) (int, error)
	CountActiveUnvalidated(groupID uint) (int64, error)
	AddUnits(id uint, delta int, now time.Time) error
	MarkCancelled(id uint, now time.Time) error
	MarkValidatedCAS(id uint, now time.Time) (bool, error)
	WithTx(tx *gorm.DB) *GormReservationRepository
}

// GormReservationRepository GORM 实现
type GormReservationRepository struct {
	db *gorm.DB
}

// NewReservationRepository 创建预订仓库
func NewReservationRepository(db *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: db}
}

// WithTx 绑定事务
func (r *GormReservationRepository) WithTx(tx *gorm.DB) *GormReservationRepository {
	if tx == nil {
		return r
	}
	return &GormReservationRepository{db: tx}
}

// Create 创建预订
func (r *GormReservationRepository) Create(reservation *models.Reservation) error {
	return r.db.Create(reservation).Error
}

// GetByID 根据 ID 获取预订
func (r *GormReservationRepository) GetByID(id uint) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := r.db.First(&reservation, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reservation, nil
}

// GetActiveByGroupAndUser 获取用户在拼团内的有效预订
func (r *GormReservationRepository) GetActiveByGroupAndUser(groupID, userID uint) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := r.db.Where("group_id = ? AND user_id = ? AND status = ?",
		groupID, userID, constants.ReservationStatusActive).First(&reservation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reservation, nil
}

// List 查询预订列表
func (r *GormReservationRepository) List(filter ReservationListFilter) ([]models.Reservation, int64, error) {
	query := r.db.Model(&models.Reservation{})
	if filter.GroupID != 0 {
		query = query.Where("group_id = ?", filter.GroupID)
	}
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.OnlyActive {
		query = query.Where("status = ?", constants.ReservationStatusActive)
	} else if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reservations []models.Reservation
	if err := applyPagination(query.Order("created_at ASC"), filter.Page, filter.PageSize).
		Find(&reservations).Error; err != nil {
		return nil, 0, err
	}
	return reservations, total, nil
}

// SumActiveUnits 统计有效预订数量之和
func (r *GormReservationRepository) SumActiveUnits(groupID uint) (int, error) {
	var sum *int64
	if err := r.db.Model(&models.Reservation{}).
		Where("group_id = ? AND status = ?", groupID, constants.ReservationStatusActive).
		Select("SUM(units)").
		Scan(&sum).Error; err != nil {
		return 0, err
	}
	if sum == nil {
		return 0, nil
	}
	return int(*sum), nil
}

// CountActiveUnvalidated 统计待核销的有效预订数
func (r *GormReservationRepository) CountActiveUnvalidated(groupID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Reservation{}).
		Where("group_id = ? AND status = ? AND is_validated = ?", groupID, constants.ReservationStatusActive, false).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// AddUnits 追加预订数量（同一用户在同团加购）
func (r *GormReservationRepository) AddUnits(id uint, delta int, now time.Time) error {
	return r.db.Model(&models.Reservation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"units":      gorm.Expr("units + ?", delta),
			"updated_at": now,
		}).Error
}

// MarkCancelled 将预订标记为已取消
func (r *GormReservationRepository) MarkCancelled(id uint, now time.Time) error {
	return r.db.Model(&models.Reservation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       constants.ReservationStatusCancelled,
			"cancelled_at": now,
			"updated_at":   now,
		}).Error
}

// MarkValidatedCAS 核销闩：仅当未核销时置位，返回是否命中。
// 并发重复扫码时只有一次调用返回 true。
func (r *GormReservationRepository) MarkValidatedCAS(id uint, now time.Time) (bool, error) {
	result := r.db.Model(&models.Reservation{}).
		Where("id = ? AND is_validated = ?", id, false).
		Updates(map[string]interface{}{
			"is_validated": true,
			"validated_at": now,
			"updated_at":   now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
