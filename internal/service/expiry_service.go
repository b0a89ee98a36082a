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

// ExpiryService 过期服务，负责把过了截止时间仍未成团的拼团置为 expired
type ExpiryService struct {
	groupRepo       repository.GroupRepository
	reservationRepo repository.ReservationRepository
	eventRepo       repository.GroupEventRepository
	batchSize       int
}

// NewExpiryService 创建过期服务
func NewExpiryService(groupRepo repository.GroupRepository, reservationRepo repository.ReservationRepository, eventRepo repository.GroupEventRepository, batchSize int) *ExpiryService {
	if batchSize <= 0 {
		batchSize = 200
	}
	return &ExpiryService{
		groupRepo:       groupRepo,
		reservationRepo: reservationRepo,
		eventRepo:       eventRepo,
		batchSize:       batchSize,
	}
}

// SweepExpired 扫描并处理到期拼团，返回本次实际置为 expired 的拼团 ID。
// 与延迟任务、读取路径上的惰性过期互为兜底，重复触发是无害的。
func (s *ExpiryService) SweepExpired(now time.Time) ([]uint, error) {
	started := time.Now()
	ids, err := s.groupRepo.ListExpiredActiveIDs(now, s.batchSize)
	if err != nil {
		return nil, err
	}

	expired := make([]uint, 0, len(ids))
	for _, id := range ids {
		won, err := s.ExpireGroup(id, now, constants.GroupActorScheduler)
		if err != nil {
			logger.Errorw("group_expire_failed", "group_id", id, "error", err)
			continue
		}
		if won {
			expired = append(expired, id)
		}
	}

	metrics.ExpirySweepDuration.Observe(time.Since(started).Seconds())
	if len(expired) > 0 {
		logger.Infow("expiry_sweep_done", "scanned", len(ids), "expired", len(expired))
	}
	return expired, nil
}

// ExpireGroup 将单个拼团置为 expired，返回本次调用是否完成了流转。
// 拼团不存在、已流转或尚未到期都按无事发生处理，调用方可随意重试。
// 若发现拼团已达阈值却仍停在 active（例如流转中途崩溃），改为补发成团。
func (s *ExpiryService) ExpireGroup(groupID uint, now time.Time, actor string) (bool, error) {
	var won bool
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		groupRepo := s.groupRepo.WithTx(tx)
		reservationRepo := s.reservationRepo.WithTx(tx)
		eventRepo := s.eventRepo.WithTx(tx)

		// 组行锁与预订写事务串行，补发成团读到的合计不会缺临界预订
		group, err := groupRepo.GetByIDForUpdate(groupID)
		if err != nil {
			return err
		}
		if group == nil || group.Status != constants.GroupStatusActive {
			return nil
		}
		if group.ExpiresAt.After(now) {
			return nil
		}

		sum, err := reservationRepo.SumActiveUnits(group.ID)
		if err != nil {
			return err
		}
		if sum >= group.TargetUnits {
			_, _, err := promoteToPickup(groupRepo, eventRepo, group, sum, constants.GroupActorSystem, now)
			return err
		}

		ok, err := advanceStatusCAS(groupRepo, group, constants.GroupStatusExpired, map[string]interface{}{
			"current_units": sum,
			"expired_at":    now,
			"updated_at":    now,
		})
		if err != nil || !ok {
			return err
		}
		if err := eventRepo.Append(&models.GroupEvent{
			GroupID:    group.ID,
			FromStatus: constants.GroupStatusActive,
			ToStatus:   constants.GroupStatusExpired,
			Actor:      actor,
			UnitsAt:    sum,
			CreatedAt:  now,
		}); err != nil {
			return err
		}
		won = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if won {
		metrics.GroupTransitionsTotal.WithLabelValues(constants.GroupStatusExpired).Inc()
		if cacheErr := cache.InvalidateGroup(context.Background(), groupID); cacheErr != nil {
			logger.Warnw("group_cache_invalidate_failed", "group_id", groupID, "error", cacheErr)
		}
		logger.Infow("group_expired", "group_id", groupID, "actor", actor)
	}
	return won, nil
}
