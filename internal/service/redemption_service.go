package service

import (
	"context"
	"strings"
	"time"

	"github.com/pintuan-next/internal/cache"
	"github.com/pintuan-next/internal/constants"
	"github.com/pintuan-next/internal/logger"
	"github.com/pintuan-next/internal/metrics"
	"github.com/pintuan-next/internal/models"
	"github.com/pintuan-next/internal/repository"

	"gorm.io/gorm"
)

// RedemptionService 核销服务，店铺扫码提货走这里
type RedemptionService struct {
	groupRepo       repository.GroupRepository
	reservationRepo repository.ReservationRepository
	eventRepo       repository.GroupEventRepository
	maxRetries      int
	retryBase       time.Duration
}

// NewRedemptionService 创建核销服务
func NewRedemptionService(groupRepo repository.GroupRepository, reservationRepo repository.ReservationRepository, eventRepo repository.GroupEventRepository, maxRetries, retryBaseMs int) *RedemptionService {
	return &RedemptionService{
		groupRepo:       groupRepo,
		reservationRepo: reservationRepo,
		eventRepo:       eventRepo,
		maxRetries:      maxRetries,
		retryBase:       time.Duration(retryBaseMs) * time.Millisecond,
	}
}

// RedeemResult 核销结果
type RedeemResult struct {
	GroupID       uint   `json:"group_id"`
	GroupNo       string `json:"group_no"`
	ReservationID uint   `json:"reservation_id"`
	UserID        uint   `json:"user_id"`
	Units         int    `json:"units"`
	AllValidated  bool   `json:"all_validated"`
	GroupStatus   string `json:"group_status"`
}

// Redeem 核销用户在拼团内的预订。
// 核销位是单向闩：置位走 CAS，同一预订的并发重复核销只有一次成功。
// 事务先按核销码取组行锁，同一拼团的核销串行后置位后的未核销计数才可信，
// 两个并发的收尾核销不会互相漏看对方而把拼团卡死在 pickup。
// 最后一个预订核销完成后，同一事务内推进拼团到 validated。
func (s *RedemptionService) Redeem(code string, storeID, userID uint) (*RedeemResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		metrics.RedemptionsTotal.WithLabelValues("rejected").Inc()
		return nil, ErrCodeNotFound
	}
	if userID == 0 {
		metrics.RedemptionsTotal.WithLabelValues("rejected").Inc()
		return nil, ErrNoActiveReservation
	}

	var result *RedeemResult
	err := runWithRetry(s.maxRetries, s.retryBase, func() error {
		result = nil
		return models.DB.Transaction(func(tx *gorm.DB) error {
			groupRepo := s.groupRepo.WithTx(tx)
			reservationRepo := s.reservationRepo.WithTx(tx)
			eventRepo := s.eventRepo.WithTx(tx)

			group, err := groupRepo.GetByQRCodeForUpdate(code)
			if err != nil {
				return err
			}
			if group == nil {
				return ErrCodeNotFound
			}
			if group.StoreID != storeID {
				return ErrWrongStore
			}
			if group.Status != constants.GroupStatusPickup {
				return ErrGroupNotInPickup
			}

			reservation, err := reservationRepo.GetActiveByGroupAndUser(group.ID, userID)
			if err != nil {
				return err
			}
			if reservation == nil {
				return ErrNoActiveReservation
			}
			if reservation.IsValidated {
				return ErrReservationAlreadyValidated
			}

			now := time.Now()
			won, err := reservationRepo.MarkValidatedCAS(reservation.ID, now)
			if err != nil {
				return err
			}
			if !won {
				return ErrReservationAlreadyValidated
			}

			settled, err := settleIfAllValidated(groupRepo, reservationRepo, eventRepo, group, constants.GroupActorStore, now)
			if err != nil {
				return err
			}

			status := group.Status
			if settled {
				status = constants.GroupStatusValidated
			}
			result = &RedeemResult{
				GroupID:       group.ID,
				GroupNo:       group.GroupNo,
				ReservationID: reservation.ID,
				UserID:        userID,
				Units:         reservation.Units,
				AllValidated:  settled,
				GroupStatus:   status,
			}
			return nil
		})
	})
	if err != nil {
		metrics.RedemptionsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	metrics.RedemptionsTotal.WithLabelValues("validated").Inc()
	if cacheErr := cache.InvalidateGroup(context.Background(), result.GroupID); cacheErr != nil {
		logger.Warnw("group_cache_invalidate_failed", "group_id", result.GroupID, "error", cacheErr)
	}
	logger.Infow("reservation_redeemed",
		"group_id", result.GroupID,
		"reservation_id", result.ReservationID,
		"user_id", userID,
		"store_id", storeID,
		"all_validated", result.AllValidated,
	)
	return result, nil
}
