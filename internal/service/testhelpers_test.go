package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/pintuan-next/internal/constants"
	"github.com/pintuan-next/internal/models"
	"github.com/pintuan-next/internal/queue"
	"github.com/pintuan-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type serviceTestEnv struct {
	db              *gorm.DB
	groupRepo       *repository.GormGroupRepository
	reservationRepo *repository.GormReservationRepository
	eventRepo       *repository.GormGroupEventRepository
	storeRepo       *repository.GormStoreRepository
	productRepo     *repository.GormProductRepository
	groupSvc        *GroupService
	reservationSvc  *ReservationService
	redemptionSvc   *RedemptionService
	expirySvc       *ExpiryService
}

func setupServiceTest(t *testing.T) *serviceTestEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:pintuan_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	// 内存库串行化访问，避免并发用例触发 SQLITE_BUSY
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.Store{}, &models.Product{}, &models.Group{}, &models.Reservation{}, &models.GroupEvent{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	groupRepo := repository.NewGroupRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	eventRepo := repository.NewGroupEventRepository(db)
	storeRepo := repository.NewStoreRepository(db)
	productRepo := repository.NewProductRepository(db)

	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("new queue client failed: %v", err)
	}

	expirySvc := NewExpiryService(groupRepo, reservationRepo, eventRepo, 100)
	return &serviceTestEnv{
		db:              db,
		groupRepo:       groupRepo,
		reservationRepo: reservationRepo,
		eventRepo:       eventRepo,
		storeRepo:       storeRepo,
		productRepo:     productRepo,
		groupSvc:        NewGroupService(groupRepo, productRepo, storeRepo, reservationRepo, eventRepo, expirySvc, queueClient, 30),
		reservationSvc:  NewReservationService(groupRepo, reservationRepo, eventRepo, 5, 5, 999),
		redemptionSvc:   NewRedemptionService(groupRepo, reservationRepo, eventRepo, 5, 5),
		expirySvc:       expirySvc,
	}
}

func createTestStore(t *testing.T, db *gorm.DB, slug string) models.Store {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("store-secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash api key failed: %v", err)
	}
	row := models.Store{
		Name:       "测试店铺 " + slug,
		Slug:       slug,
		APIKeyHash: string(hash),
		IsActive:   true,
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("create store failed: %v", err)
	}
	return row
}

func createTestProduct(t *testing.T, db *gorm.DB, storeID uint, price string) models.Product {
	t.Helper()

	amount, err := decimal.NewFromString(price)
	if err != nil {
		t.Fatalf("parse price failed: %v", err)
	}
	row := models.Product{
		StoreID:     storeID,
		Title:       "测试商品",
		NormalPrice: models.NewMoneyFromDecimal(amount),
		IsActive:    true,
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return row
}

func createTestGroup(t *testing.T, db *gorm.DB, storeID, productID uint, targetUnits, maxUnits int, expiresIn time.Duration) models.Group {
	t.Helper()

	row := models.Group{
		GroupNo:     generateGroupNo(),
		ProductID:   productID,
		StoreID:     storeID,
		CreatorID:   1,
		TargetUnits: targetUnits,
		MaxUnits:    maxUnits,
		NormalPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		GroupPrice:  models.NewMoneyFromDecimal(decimal.NewFromInt(80)),
		Status:      constants.GroupStatusActive,
		ExpiresAt:   time.Now().Add(expiresIn),
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("create group failed: %v", err)
	}
	return row
}

func reloadGroup(t *testing.T, db *gorm.DB, id uint) models.Group {
	t.Helper()

	var group models.Group
	if err := db.First(&group, id).Error; err != nil {
		t.Fatalf("reload group failed: %v", err)
	}
	return group
}
