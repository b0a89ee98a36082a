package service

import (
	"context"
	"time"

	"github.com/pintuan-next/internal/cache"
	"github.com/pintuan-next/internal/constants"
	"github.com/pintuan-next/internal/logger"
	"github.com/pintuan-next/internal/metrics"
	"github.com/pintuan-next/internal/models"
	"github.com/pintuan-next/internal/queue"
	"github.com/pintuan-next/internal/repository"

	"github.com/shopspring/decimal"
)

// GroupService 拼团服务，覆盖开团、查询与关单
type GroupService struct {
	groupRepo       repository.GroupRepository
	productRepo     repository.ProductRepository
	storeRepo       repository.StoreRepository
	reservationRepo repository.ReservationRepository
	eventRepo       repository.GroupEventRepository
	expiryService   *ExpiryService
	queueClient     *queue.Client
	cacheTTL        time.Duration
}

// NewGroupService 创建拼团服务
func NewGroupService(groupRepo repository.GroupRepository, productRepo repository.ProductRepository, storeRepo repository.StoreRepository, reservationRepo repository.ReservationRepository, eventRepo repository.GroupEventRepository, expiryService *ExpiryService, queueClient *queue.Client, cacheTTLSeconds int) *GroupService {
	if cacheTTLSeconds <= 0 {
		cacheTTLSeconds = 30
	}
	return &GroupService{
		groupRepo:       groupRepo,
		productRepo:     productRepo,
		storeRepo:       storeRepo,
		reservationRepo: reservationRepo,
		eventRepo:       eventRepo,
		expiryService:   expiryService,
		queueClient:     queueClient,
		cacheTTL:        time.Duration(cacheTTLSeconds) * time.Second,
	}
}

// CreateGroupInput 开团输入
type CreateGroupInput struct {
	StoreID         uint
	CreatorID       uint
	ProductID       uint
	TargetUnits     int
	MaxUnits        int
	GroupPrice      models.Money
	DurationMinutes int
}

// CreateGroup 开团。拼团价必须低于原价，容量上限不得低于成团阈值。
func (s *GroupService) CreateGroup(input CreateGroupInput) (*models.Group, error) {
	if input.StoreID == 0 || input.ProductID == 0 {
		return nil, ErrGroupParamsInvalid
	}
	if input.TargetUnits < 1 || input.DurationMinutes < 1 {
		return nil, ErrGroupParamsInvalid
	}
	if input.MaxUnits < 0 || (input.MaxUnits > 0 && input.MaxUnits < input.TargetUnits) {
		return nil, ErrGroupParamsInvalid
	}

	store, err := s.storeRepo.GetByID(input.StoreID)
	if err != nil {
		return nil, err
	}
	if store == nil || !store.IsActive {
		return nil, ErrStoreNotFound
	}
	product, err := s.productRepo.GetActiveByIDAndStore(input.ProductID, input.StoreID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if input.GroupPrice.Decimal.LessThanOrEqual(decimal.Zero) || input.GroupPrice.Decimal.GreaterThanOrEqual(product.NormalPrice.Decimal) {
		return nil, ErrGroupPriceInvalid
	}

	now := time.Now()
	group := &models.Group{
		GroupNo:     generateGroupNo(),
		ProductID:   product.ID,
		StoreID:     input.StoreID,
		CreatorID:   input.CreatorID,
		TargetUnits: input.TargetUnits,
		MaxUnits:    input.MaxUnits,
		NormalPrice: product.NormalPrice,
		GroupPrice:  input.GroupPrice,
		Status:      constants.GroupStatusActive,
		ExpiresAt:   now.Add(time.Duration(input.DurationMinutes) * time.Minute),
	}
	if err := s.groupRepo.Create(group); err != nil {
		return nil, err
	}
	if err := s.eventRepo.Append(&models.GroupEvent{
		GroupID:    group.ID,
		FromStatus: "",
		ToStatus:   constants.GroupStatusActive,
		Actor:      constants.GroupActorStore,
		UnitsAt:    0,
		CreatedAt:  now,
	}); err != nil {
		return nil, err
	}

	// 截止后留一秒余量再触发到期任务，避免和临界预订打架
	delay := time.Until(group.ExpiresAt) + time.Second
	if err := s.queueClient.EnqueueGroupExpire(queue.GroupExpirePayload{GroupID: group.ID}, delay); err != nil {
		logger.Warnw("group_expire_task_enqueue_failed", "group_id", group.ID, "error", err)
	}

	metrics.GroupTransitionsTotal.WithLabelValues(constants.GroupStatusActive).Inc()
	logger.Infow("group_created",
		"group_id", group.ID,
		"group_no", group.GroupNo,
		"store_id", group.StoreID,
		"product_id", group.ProductID,
		"target_units", group.TargetUnits,
		"expires_at", group.ExpiresAt,
	)
	group.Product = product
	return group, nil
}

// GetGroup 查询拼团详情。
// 读取路径上做惰性过期：已过截止时间仍为 active 的拼团先行流转再返回，
// 客户端在两次扫描之间也不会看到陈旧的 active 状态。
func (s *GroupService) GetGroup(groupID uint) (*models.Group, error) {
	now := time.Now()

	var cached models.Group
	hit, err := cache.GetJSON(context.Background(), cache.GroupKey(groupID), &cached)
	if err != nil {
		logger.Warnw("group_cache_read_failed", "group_id", groupID, "error", err)
	}
	if hit && !(cached.Status == constants.GroupStatusActive && !now.Before(cached.ExpiresAt)) {
		return &cached, nil
	}

	group, err := s.groupRepo.GetByID(groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	if group.Status == constants.GroupStatusActive && !now.Before(group.ExpiresAt) {
		if _, err := s.expiryService.ExpireGroup(group.ID, now, constants.GroupActorSystem); err != nil {
			return nil, err
		}
		group, err = s.groupRepo.GetByID(groupID)
		if err != nil {
			return nil, err
		}
		if group == nil {
			return nil, ErrGroupNotFound
		}
	}

	if err := cache.SetJSON(context.Background(), cache.GroupKey(groupID), group, s.cacheTTL); err != nil {
		logger.Warnw("group_cache_write_failed", "group_id", groupID, "error", err)
	}
	return group, nil
}

// GetGroupByNo 根据拼团编号查询
func (s *GroupService) GetGroupByNo(groupNo string) (*models.Group, error) {
	group, err := s.groupRepo.GetByGroupNo(groupNo)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return s.GetGroup(group.ID)
}

// ListGroups 查询拼团列表
func (s *GroupService) ListGroups(filter repository.GroupListFilter) ([]models.Group, int64, error) {
	return s.groupRepo.List(filter)
}

// ListParticipants 查询拼团的有效预订列表
func (s *GroupService) ListParticipants(groupID uint, page, pageSize int) ([]models.Reservation, int64, error) {
	group, err := s.groupRepo.GetByID(groupID)
	if err != nil {
		return nil, 0, err
	}
	if group == nil {
		return nil, 0, ErrGroupNotFound
	}
	return s.reservationRepo.List(repository.ReservationListFilter{
		Page:       page,
		PageSize:   pageSize,
		GroupID:    groupID,
		OnlyActive: true,
	})
}

// ListEvents 查询拼团状态流转记录
func (s *GroupService) ListEvents(groupID uint) ([]models.GroupEvent, error) {
	group, err := s.groupRepo.GetByID(groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return s.eventRepo.ListByGroup(groupID)
}

// CompleteGroup 店铺在履约完成后关单，validated → completed
func (s *GroupService) CompleteGroup(groupID, storeID uint) (*models.Group, error) {
	group, err := s.groupRepo.GetByID(groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	if group.StoreID != storeID {
		return nil, ErrStoreNotOwner
	}

	now := time.Now()
	won, err := advanceStatusCAS(s.groupRepo, group, constants.GroupStatusCompleted, map[string]interface{}{
		"completed_at": now,
		"updated_at":   now,
	})
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, ErrGroupStatusInvalid
	}
	if err := s.eventRepo.Append(&models.GroupEvent{
		GroupID:    group.ID,
		FromStatus: constants.GroupStatusValidated,
		ToStatus:   constants.GroupStatusCompleted,
		Actor:      constants.GroupActorStore,
		UnitsAt:    group.CurrentUnits,
		CreatedAt:  now,
	}); err != nil {
		return nil, err
	}

	metrics.GroupTransitionsTotal.WithLabelValues(constants.GroupStatusCompleted).Inc()
	if cacheErr := cache.InvalidateGroup(context.Background(), group.ID); cacheErr != nil {
		logger.Warnw("group_cache_invalidate_failed", "group_id", group.ID, "error", cacheErr)
	}
	logger.Infow("group_completed", "group_id", group.ID, "group_no", group.GroupNo, "store_id", storeID)
	return s.groupRepo.GetByID(group.ID)
}
