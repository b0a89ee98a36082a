package service

import (
	"context"
	"time"

	"github.com/pintuan-next/internal/cache"
	"github.com/pintuan-next/internal/constants"
	"github.com/pintuan-next/internal/logger"
	"github.com/pintuan-next/internal/metrics"
	"github.com/pintuan-next/internal/models"
	"github.com/pintuan-next/internal/repository"

	"gorm.io/gorm"
)

// ReservationService 预订服务，维护拼团内的预订台账
type ReservationService struct {
	groupRepo       repository.GroupRepository
	reservationRepo repository.ReservationRepository
	eventRepo       repository.GroupEventRepository
	maxRetries      int
	retryBase       time.Duration
	maxUnitsPerUser int
}

// NewReservationService 创建预订服务
func NewReservationService(groupRepo repository.GroupRepository, reservationRepo repository.ReservationRepository, eventRepo repository.GroupEventRepository, maxRetries, retryBaseMs, maxUnitsPerUser int) *ReservationService {
	if maxUnitsPerUser <= 0 {
		maxUnitsPerUser = 999
	}
	return &ReservationService{
		groupRepo:       groupRepo,
		reservationRepo: reservationRepo,
		eventRepo:       eventRepo,
		maxRetries:      maxRetries,
		retryBase:       time.Duration(retryBaseMs) * time.Millisecond,
		maxUnitsPerUser: maxUnitsPerUser,
	}
}

// ReserveResult 预订结果
type ReserveResult struct {
	Reservation *models.Reservation `json:"reservation"`
	GroupStatus string              `json:"group_status"`
	TotalUnits  int                 `json:"total_units"`
	Promoted    bool                `json:"promoted"`
}

// Reserve 在拼团内登记预订。
// 接受与否以提交时刻为准：截止时间、状态、容量都在事务内复核。
// 事务先取组行锁，同一拼团的写入串行后 SUM 口径才是权威值，
// Postgres READ COMMITTED 下两个临界预订不会同时读到旧合计。
// 本次预订使有效数量达到阈值时，在同一事务内推进拼团到 pickup 并签发核销码。
func (s *ReservationService) Reserve(groupID, userID uint, units int) (*ReserveResult, error) {
	if userID == 0 {
		return nil, ErrNotReservationOwner
	}
	if units <= 0 || units > s.maxUnitsPerUser {
		metrics.ReservationsTotal.WithLabelValues("rejected").Inc()
		return nil, ErrInvalidUnits
	}

	var result *ReserveResult
	err := runWithRetry(s.maxRetries, s.retryBase, func() error {
		result = nil
		return models.DB.Transaction(func(tx *gorm.DB) error {
			groupRepo := s.groupRepo.WithTx(tx)
			reservationRepo := s.reservationRepo.WithTx(tx)
			eventRepo := s.eventRepo.WithTx(tx)

			group, err := groupRepo.GetByIDForUpdate(groupID)
			if err != nil {
				return err
			}
			if group == nil {
				return ErrGroupNotFound
			}
			now := time.Now()
			if group.Status != constants.GroupStatusActive {
				return ErrGroupNotActive
			}
			if !now.Before(group.ExpiresAt) {
				return ErrGroupNotActive
			}

			sum, err := reservationRepo.SumActiveUnits(groupID)
			if err != nil {
				return err
			}
			if group.MaxUnits > 0 && sum+units > group.MaxUnits {
				return ErrCapacityExceeded
			}

			existing, err := reservationRepo.GetActiveByGroupAndUser(groupID, userID)
			if err != nil {
				return err
			}
			var reservation *models.Reservation
			if existing != nil {
				// 同一用户重复预订视为加购，合并到既有预订
				if err := reservationRepo.AddUnits(existing.ID, units, now); err != nil {
					return err
				}
				existing.Units += units
				existing.UpdatedAt = now
				reservation = existing
			} else {
				reservation = &models.Reservation{
					GroupID: groupID,
					UserID:  userID,
					Units:   units,
					Status:  constants.ReservationStatusActive,
				}
				if err := reservationRepo.Create(reservation); err != nil {
					return err
				}
			}

			total := sum + units
			if err := groupRepo.UpdateCurrentUnits(groupID, total, now); err != nil {
				return err
			}

			promoted := false
			status := group.Status
			if total >= group.TargetUnits {
				_, won, err := promoteToPickup(groupRepo, eventRepo, group, total, constants.GroupActorConsumer, now)
				if err != nil {
					return err
				}
				promoted = won
				status = constants.GroupStatusPickup
			}

			result = &ReserveResult{
				Reservation: reservation,
				GroupStatus: status,
				TotalUnits:  total,
				Promoted:    promoted,
			}
			return nil
		})
	})
	if err != nil {
		if isTransientConflict(err) {
			metrics.ReservationsTotal.WithLabelValues("conflict").Inc()
		} else {
			metrics.ReservationsTotal.WithLabelValues("rejected").Inc()
		}
		return nil, err
	}

	metrics.ReservationsTotal.WithLabelValues("accepted").Inc()
	if err := cache.InvalidateGroup(context.Background(), groupID); err != nil {
		logger.Warnw("group_cache_invalidate_failed", "group_id", groupID, "error", err)
	}
	logger.Infow("reservation_accepted",
		"group_id", groupID,
		"user_id", userID,
		"units", units,
		"total_units", result.TotalUnits,
		"group_status", result.GroupStatus,
	)
	return result, nil
}

// Cancel 取消预订并释放数量。
// 仅在拼团 active 期间允许；成团后退出走客服流程，状态机不回退。
// 对已取消的预订重复取消按幂等处理。
func (s *ReservationService) Cancel(reservationID, userID uint) error {
	err := runWithRetry(s.maxRetries, s.retryBase, func() error {
		return models.DB.Transaction(func(tx *gorm.DB) error {
			groupRepo := s.groupRepo.WithTx(tx)
			reservationRepo := s.reservationRepo.WithTx(tx)

			reservation, err := reservationRepo.GetByID(reservationID)
			if err != nil {
				return err
			}
			if reservation == nil {
				return ErrReservationNotFound
			}
			if reservation.UserID != userID {
				return ErrNotReservationOwner
			}
			if reservation.Status == constants.ReservationStatusCancelled {
				return nil
			}
			if reservation.IsValidated {
				return ErrReservationAlreadyValidated
			}

			group, err := groupRepo.GetByIDForUpdate(reservation.GroupID)
			if err != nil {
				return err
			}
			if group == nil {
				return ErrGroupNotFound
			}
			if group.Status != constants.GroupStatusActive {
				return ErrGroupTerminal
			}

			now := time.Now()
			if err := reservationRepo.MarkCancelled(reservation.ID, now); err != nil {
				return err
			}
			sum, err := reservationRepo.SumActiveUnits(group.ID)
			if err != nil {
				return err
			}
			return groupRepo.UpdateCurrentUnits(group.ID, sum, now)
		})
	})
	if err != nil {
		return err
	}

	reservation, lookupErr := s.reservationRepo.GetByID(reservationID)
	if lookupErr == nil && reservation != nil {
		if cacheErr := cache.InvalidateGroup(context.Background(), reservation.GroupID); cacheErr != nil {
			logger.Warnw("group_cache_invalidate_failed", "group_id", reservation.GroupID, "error", cacheErr)
		}
	}
	logger.Infow("reservation_cancelled", "reservation_id", reservationID, "user_id", userID)
	return nil
}

// UnitsFor 查询拼团内有效预订数量之和，与成团阈值判断读同一口径
func (s *ReservationService) UnitsFor(groupID uint) (int, error) {
	return s.reservationRepo.SumActiveUnits(groupID)
}

// UserUnits 查询用户在拼团内的有效预订数量，无预订返回 0
func (s *ReservationService) UserUnits(groupID, userID uint) (int, error) {
	reservation, err := s.reservationRepo.GetActiveByGroupAndUser(groupID, userID)
	if err != nil {
		return 0, err
	}
	if reservation == nil {
		return 0, nil
	}
	return reservation.Units, nil
}

// GetUserReservation 查询用户在拼团内的有效预订
func (s *ReservationService) GetUserReservation(groupID, userID uint) (*models.Reservation, error) {
	group, err := s.groupRepo.GetByID(groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	reservation, err := s.reservationRepo.GetActiveByGroupAndUser(groupID, userID)
	if err != nil {
		return nil, err
	}
	if reservation == nil {
		return nil, ErrNoActiveReservation
	}
	return reservation, nil
}
