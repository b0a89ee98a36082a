package service

import (
	"testing"
	"time"

	"github.com/pintuan-next/internal/constants"
	"github.com/pintuan-next/internal/models"
)

func TestSweepExpiresGroupBelowTarget(t *testing.T) {
	env := setupServiceTest(t)
	store := createTestStore(t, env.db, "shop-a")
	product := createTestProduct(t, env.db, store.ID, "100.00")
	group := createTestGroup(t, env.db, store.ID, product.ID, 10, 0, time.Hour)

	if _, err := env.reservationSvc.Reserve(group.ID, 101, 7); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}

	expired, err := env.expirySvc.SweepExpired(time.Now().Add(2 * time.Hour))
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if len(expired) != 1 || expired[0] != group.ID {
		t.Fatalf("expected group %d expired, got %v", group.ID, expired)
	}

	reloaded := reloadGroup(t, env.db, group.ID)
	if reloaded.Status != constants.GroupStatusExpired {
		t.Fatalf("expected expired status, got %s", reloaded.Status)
	}
	if reloaded.QRCode != "" {
		t.Fatalf("expired group must not carry a voucher, got %q", reloaded.QRCode)
	}
	if reloaded.ExpiredAt == nil {
		t.Fatalf("expected expired_at set")
	}
}

func TestSweepLeavesLiveGroupsAlone(t *testing.T) {
	env := setupServiceTest(t)
	store := createTestStore(t, env.db, "shop-a")
	product := createTestProduct(t, env.db, store.ID, "100.00")
	group := createTestGroup(t, env.db, store.ID, product.ID, 10, 0, time.Hour)

	expired, err := env.expirySvc.SweepExpired(time.Now())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if len(expired) != 0 {
		t.Fatalf("expected no expirations, got %v", expired)
	}
	if reloaded := reloadGroup(t, env.db, group.ID); reloaded.Status != constants.GroupStatusActive {
		t.Fatalf("expected active status, got %s", reloaded.Status)
	}
}

func TestSweepIsIdempotent(t *testing.T) {
	env := setupServiceTest(t)
	store := createTestStore(t, env.db, "shop-a")
	product := createTestProduct(t, env.db, store.ID, "100.00")
	group := createTestGroup(t, env.db, store.ID, product.ID, 10, 0, -time.Minute)

	later := time.Now().Add(time.Minute)
	first, err := env.expirySvc.SweepExpired(later)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("expected one expiration, got %v", first)
	}
	second, err := env.expirySvc.SweepExpired(later)
	if err != nil {
		t.Fatalf("second sweep failed: %v", err)
	}
	if len(second) != 0 {
		t.Fatalf("second sweep should find nothing, got %v", second)
	}

	var expireEvents int64
	if err := env.db.Table("group_events").
		Where("group_id = ? AND to_status = ?", group.ID, constants.GroupStatusExpired).
		Count(&expireEvents).Error; err != nil {
		t.Fatalf("count events failed: %v", err)
	}
	if expireEvents != 1 {
		t.Fatalf("expected exactly one expire event, got %d", expireEvents)
	}
}

func TestExpireGroupRecoversStuckPromotion(t *testing.T) {
	env := setupServiceTest(t)
	store := createTestStore(t, env.db, "shop-a")
	product := createTestProduct(t, env.db, store.ID, "100.00")
	group := createTestGroup(t, env.db, store.ID, product.ID, 3, 0, -time.Minute)

	// 模拟达到阈值却停在 active 的拼团（例如流转中途崩溃）
	for i, units := range []int{2, 1} {
		if err := env.reservationRepo.Create(&models.Reservation{
			GroupID: group.ID,
			UserID:  uint(201 + i),
			Units:   units,
			Status:  constants.ReservationStatusActive,
		}); err != nil {
			t.Fatalf("seed reservation failed: %v", err)
		}
	}

	won, err := env.expirySvc.ExpireGroup(group.ID, time.Now(), constants.GroupActorScheduler)
	if err != nil {
		t.Fatalf("expire failed: %v", err)
	}
	if won {
		t.Fatalf("group at threshold must not be expired")
	}
	reloaded := reloadGroup(t, env.db, group.ID)
	if reloaded.Status != constants.GroupStatusPickup {
		t.Fatalf("expected recovery promotion to pickup, got %s", reloaded.Status)
	}
	if reloaded.QRCode == "" {
		t.Fatalf("expected voucher issued on recovery promotion")
	}
}

func TestExpireGroupUnknownIsNoop(t *testing.T) {
	env := setupServiceTest(t)

	won, err := env.expirySvc.ExpireGroup(4242, time.Now(), constants.GroupActorScheduler)
	if err != nil {
		t.Fatalf("expire failed: %v", err)
	}
	if won {
		t.Fatalf("expected no-op for unknown group")
	}
}
