package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/pintuan-next/internal/constants"
	"github.com/pintuan-next/internal/models"
	"github.com/pintuan-next/internal/provider"
	"github.com/pintuan-next/internal/queue"
	"github.com/pintuan-next/internal/repository"
	"github.com/pintuan-next/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

func setupConsumerTest(t *testing.T) (*Consumer, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:worker_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Group{}, &models.Reservation{}, &models.GroupEvent{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	groupRepo := repository.NewGroupRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	eventRepo := repository.NewGroupEventRepository(db)
	container := &provider.Container{
		GroupRepo:       groupRepo,
		ReservationRepo: reservationRepo,
		GroupEventRepo:  eventRepo,
		ExpiryService:   service.NewExpiryService(groupRepo, reservationRepo, eventRepo, 100),
	}
	return NewConsumer(container), db
}

func newGroupExpireTask(t *testing.T, groupID uint) *asynq.Task {
	t.Helper()

	body, err := json.Marshal(queue.GroupExpirePayload{GroupID: groupID})
	if err != nil {
		t.Fatalf("marshal payload failed: %v", err)
	}
	return asynq.NewTask(queue.TaskGroupExpire, body)
}

func TestHandleGroupExpire(t *testing.T) {
	consumer, db := setupConsumerTest(t)

	group := models.Group{
		GroupNo:     "PT20260101000000000001",
		ProductID:   1,
		StoreID:     1,
		CreatorID:   1,
		TargetUnits: 10,
		Status:      constants.GroupStatusActive,
		ExpiresAt:   time.Now().Add(-time.Minute),
	}
	if err := db.Create(&group).Error; err != nil {
		t.Fatalf("create group failed: %v", err)
	}

	if err := consumer.handleGroupExpire(context.Background(), newGroupExpireTask(t, group.ID)); err != nil {
		t.Fatalf("handle group expire failed: %v", err)
	}

	var reloaded models.Group
	if err := db.First(&reloaded, group.ID).Error; err != nil {
		t.Fatalf("reload group failed: %v", err)
	}
	if reloaded.Status != constants.GroupStatusExpired {
		t.Fatalf("expected expired status, got %s", reloaded.Status)
	}

	// 重复投递不应报错，也不应重复记事件
	if err := consumer.handleGroupExpire(context.Background(), newGroupExpireTask(t, group.ID)); err != nil {
		t.Fatalf("repeated delivery failed: %v", err)
	}
	var events int64
	if err := db.Table("group_events").Where("group_id = ?", group.ID).Count(&events).Error; err != nil {
		t.Fatalf("count events failed: %v", err)
	}
	if events != 1 {
		t.Fatalf("expected one expire event, got %d", events)
	}
}

func TestHandleGroupExpireInvalidPayload(t *testing.T) {
	consumer, _ := setupConsumerTest(t)

	task := asynq.NewTask(queue.TaskGroupExpire, []byte(`{"group_id":0}`))
	if err := consumer.handleGroupExpire(context.Background(), task); err != nil {
		t.Fatalf("zero group id should be skipped, got %v", err)
	}

	bad := asynq.NewTask(queue.TaskGroupExpire, []byte(`{`))
	if err := consumer.handleGroupExpire(context.Background(), bad); err == nil {
		t.Fatalf("malformed payload should fail")
	}
}
