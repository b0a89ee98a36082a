package provider

import (
	"github.com/pintuan-next/internal/authz"
	"github.com/pintuan-next/internal/cache"
	"github.com/pintuan-next/internal/config"
	"github.com/pintuan-next/internal/logger"
	"github.com/pintuan-next/internal/models"
	"github.com/pintuan-next/internal/queue"
	"github.com/pintuan-next/internal/repository"
	"github.com/pintuan-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	StoreRepo       repository.StoreRepository
	ProductRepo     repository.ProductRepository
	GroupRepo       repository.GroupRepository
	ReservationRepo repository.ReservationRepository
	GroupEventRepo  repository.GroupEventRepository

	// Services
	AuthzService       *authz.Service
	AuthService        *service.AuthService
	GroupService       *service.GroupService
	ReservationService *service.ReservationService
	RedemptionService  *service.RedemptionService
	ExpiryService      *service.ExpiryService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.initRepositories()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.StoreRepo = repository.NewStoreRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.GroupRepo = repository.NewGroupRepository(db)
	c.ReservationRepo = repository.NewReservationRepository(db)
	c.GroupEventRepo = repository.NewGroupEventRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	groupCfg := c.Config.Group
	c.AuthService = service.NewAuthService(c.Config, c.StoreRepo)
	c.ExpiryService = service.NewExpiryService(c.GroupRepo, c.ReservationRepo, c.GroupEventRepo, groupCfg.SweepBatchSize)
	c.GroupService = service.NewGroupService(c.GroupRepo, c.ProductRepo, c.StoreRepo, c.ReservationRepo, c.GroupEventRepo, c.ExpiryService, c.QueueClient, groupCfg.CacheTTLSeconds)
	c.ReservationService = service.NewReservationService(c.GroupRepo, c.ReservationRepo, c.GroupEventRepo, groupCfg.ReserveMaxRetries, groupCfg.ReserveRetryBaseMs, groupCfg.MaxUnitsPerReservation)
	c.RedemptionService = service.NewRedemptionService(c.GroupRepo, c.ReservationRepo, c.GroupEventRepo, groupCfg.ReserveMaxRetries, groupCfg.ReserveRetryBaseMs)
}
