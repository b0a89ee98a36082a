package main

import (
	"github.com/pintuan-next/internal/config"
	"github.com/pintuan-next/internal/logger"
	"github.com/pintuan-next/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// 演示数据：店铺 + 可开团商品。拼团本身通过商家接口开团创建。
func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加店铺
	storeSeeds := []struct {
		Name   string
		Slug   string
		APIKey string
	}{
		{Name: "转角烘焙", Slug: "corner-bakery", APIKey: "corner-bakery-key"},
		{Name: "山泉果园", Slug: "hillspring-orchard", APIKey: "hillspring-orchard-key"},
	}

	storeIDs := map[string]uint{}
	for _, seed := range storeSeeds {
		var existing models.Store
		if err := models.DB.Where("slug = ?", seed.Slug).First(&existing).Error; err == nil {
			stdLog.Printf("Store already exists: %s", seed.Slug)
			storeIDs[seed.Slug] = existing.ID
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(seed.APIKey), bcrypt.DefaultCost)
		if err != nil {
			stdLog.Printf("Failed to hash api key for %s: %v", seed.Slug, err)
			continue
		}
		store := models.Store{
			Name:       seed.Name,
			Slug:       seed.Slug,
			APIKeyHash: string(hash),
			IsActive:   true,
		}
		if err := models.DB.Create(&store).Error; err != nil {
			stdLog.Printf("Failed to create store %s: %v", seed.Slug, err)
			continue
		}
		stdLog.Printf("Created store: %s (api key: %s)", seed.Slug, seed.APIKey)
		storeIDs[seed.Slug] = store.ID
	}

	// 添加商品
	productSeeds := []struct {
		StoreSlug string
		Title     string
		Price     float64
	}{
		{StoreSlug: "corner-bakery", Title: "全麦吐司（整条）", Price: 28.00},
		{StoreSlug: "corner-bakery", Title: "肉松贝果 4 只装", Price: 36.00},
		{StoreSlug: "hillspring-orchard", Title: "阳光玫瑰葡萄 2 斤", Price: 59.90},
		{StoreSlug: "hillspring-orchard", Title: "红心猕猴桃 12 枚", Price: 45.00},
	}

	for _, seed := range productSeeds {
		storeID, ok := storeIDs[seed.StoreSlug]
		if !ok {
			stdLog.Printf("Skip product %s: store %s missing", seed.Title, seed.StoreSlug)
			continue
		}
		var existing models.Product
		if err := models.DB.Where("store_id = ? AND title = ?", storeID, seed.Title).First(&existing).Error; err == nil {
			stdLog.Printf("Product already exists: %s", seed.Title)
			continue
		}
		product := models.Product{
			StoreID:     storeID,
			Title:       seed.Title,
			NormalPrice: models.NewMoneyFromDecimal(decimal.NewFromFloat(seed.Price)),
			IsActive:    true,
		}
		if err := models.DB.Create(&product).Error; err != nil {
			stdLog.Printf("Failed to create product %s: %v", seed.Title, err)
			continue
		}
		stdLog.Printf("Created product: %s", seed.Title)
	}

	stdLog.Println("Seed data ready: 2 stores, 4 products")
	stdLog.Println("Store login: POST /api/v1/store/login with slug + api key")
}
