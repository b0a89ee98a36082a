package router

import (
	"fmt"
	"strings"

	"github.com/pintuan-next/internal/cache"
	"github.com/pintuan-next/internal/config"
	publichandlers "github.com/pintuan-next/internal/http/handlers/public"
	storehandlers "github.com/pintuan-next/internal/http/handlers/store"
	"github.com/pintuan-next/internal/logger"
	"github.com/pintuan-next/internal/metrics"
	"github.com/pintuan-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按消费者/商家分组）
	publicHandler := publichandlers.New(c)
	storeHandler := storehandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "pt"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:store_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxRequests,
		MessageKey:    "error.login_too_many",
	}
	reserveRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:reserve", redisPrefix),
		WindowSeconds: cfg.Security.ReserveRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.ReserveRateLimit.MaxRequests,
	}
	redeemRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:redeem", redisPrefix),
		WindowSeconds: cfg.Security.RedeemRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.RedeemRateLimit.MaxRequests,
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口（无需登录即可浏览拼团）
		public := apiV1.Group("/public")
		{
			public.GET("/groups", publicHandler.ListGroups)
			public.GET("/groups/:id", publicHandler.GetGroup)
			public.GET("/groups/:id/participants", publicHandler.ListGroupParticipants)
			public.GET("/groups/by-group-no/:group_no", publicHandler.GetGroupByNo)
		}

		// 内部接口（上游平台签发用户令牌）
		apiV1.POST("/internal/user-tokens", publicHandler.IssueUserToken)

		// 用户接口（需鉴权）
		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey))
		{
			user.POST("/groups/:id/reservations",
				RateLimitMiddleware(redisClient, reserveRule, KeyByIP), publicHandler.Reserve)
			user.DELETE("/groups/:id/reservations", publicHandler.CancelReservation)
			user.GET("/groups/:id/reservations/me", publicHandler.GetMyReservation)
			user.GET("/groups/:id/voucher", publicHandler.GetVoucher)
		}

		// 商家接口
		store := apiV1.Group("/store")
		{
			// 登录接口（无需鉴权）
			store.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("slug")), storeHandler.Login)

			// 需要鉴权的接口
			authorized := store.Use(StoreJWTAuthMiddleware(cfg.JWT.SecretKey, c.StoreRepo), StoreRBACMiddleware(c.AuthzService))
			{
				authorized.GET("/profile", storeHandler.Profile)
				authorized.POST("/groups", storeHandler.CreateGroup)
				authorized.GET("/groups", storeHandler.ListGroups)
				authorized.GET("/groups/:id", storeHandler.GetGroup)
				authorized.GET("/groups/:id/participants", storeHandler.ListParticipants)
				authorized.GET("/groups/:id/events", storeHandler.ListEvents)
				authorized.POST("/groups/:id/complete", storeHandler.CompleteGroup)
				authorized.POST("/redeem",
					RateLimitMiddleware(redisClient, redeemRule, KeyByIP), storeHandler.Redeem)
			}
		}
	}

	// 健康检查与指标
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	return r
}
