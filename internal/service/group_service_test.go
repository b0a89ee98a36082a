package service

import (
	"errors"
	"testing"
	"time"

	"github.com/pintuan-next/internal/constants"
	"github.com/pintuan-next/internal/models"

	"github.com/shopspring/decimal"
)

func money(t *testing.T, value string) models.Money {
	t.Helper()

	amount, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("parse money failed: %v", err)
	}
	return models.NewMoneyFromDecimal(amount)
}

func TestCreateGroup(t *testing.T) {
	env := setupServiceTest(t)
	store := createTestStore(t, env.db, "shop-a")
	product := createTestProduct(t, env.db, store.ID, "100.00")

	group, err := env.groupSvc.CreateGroup(CreateGroupInput{
		StoreID:         store.ID,
		CreatorID:       1,
		ProductID:       product.ID,
		TargetUnits:     10,
		MaxUnits:        20,
		GroupPrice:      money(t, "79.90"),
		DurationMinutes: 120,
	})
	if err != nil {
		t.Fatalf("create group failed: %v", err)
	}
	if group.Status != constants.GroupStatusActive {
		t.Fatalf("expected active status, got %s", group.Status)
	}
	if group.GroupNo == "" || group.QRCode != "" {
		t.Fatalf("unexpected group identity fields: no=%q qr=%q", group.GroupNo, group.QRCode)
	}
	if group.NormalPrice.String() != "100.00" {
		t.Fatalf("expected normal price copied from product, got %s", group.NormalPrice.String())
	}
	until := time.Until(group.ExpiresAt)
	if until < 119*time.Minute || until > 121*time.Minute {
		t.Fatalf("unexpected deadline distance: %s", until)
	}

	events, err := env.groupSvc.ListEvents(group.ID)
	if err != nil {
		t.Fatalf("list events failed: %v", err)
	}
	if len(events) != 1 || events[0].ToStatus != constants.GroupStatusActive {
		t.Fatalf("expected creation event, got %+v", events)
	}
}

func TestCreateGroupValidation(t *testing.T) {
	env := setupServiceTest(t)
	store := createTestStore(t, env.db, "shop-a")
	other := createTestStore(t, env.db, "shop-b")
	product := createTestProduct(t, env.db, store.ID, "100.00")

	base := CreateGroupInput{
		StoreID:         store.ID,
		CreatorID:       1,
		ProductID:       product.ID,
		TargetUnits:     10,
		GroupPrice:      money(t, "80.00"),
		DurationMinutes: 60,
	}

	bad := base
	bad.TargetUnits = 0
	if _, err := env.groupSvc.CreateGroup(bad); !errors.Is(err, ErrGroupParamsInvalid) {
		t.Fatalf("zero target: expected ErrGroupParamsInvalid, got %v", err)
	}

	bad = base
	bad.MaxUnits = 5
	if _, err := env.groupSvc.CreateGroup(bad); !errors.Is(err, ErrGroupParamsInvalid) {
		t.Fatalf("max below target: expected ErrGroupParamsInvalid, got %v", err)
	}

	bad = base
	bad.DurationMinutes = 0
	if _, err := env.groupSvc.CreateGroup(bad); !errors.Is(err, ErrGroupParamsInvalid) {
		t.Fatalf("zero duration: expected ErrGroupParamsInvalid, got %v", err)
	}

	bad = base
	bad.GroupPrice = money(t, "100.00")
	if _, err := env.groupSvc.CreateGroup(bad); !errors.Is(err, ErrGroupPriceInvalid) {
		t.Fatalf("price at normal: expected ErrGroupPriceInvalid, got %v", err)
	}

	bad = base
	bad.StoreID = other.ID
	if _, err := env.groupSvc.CreateGroup(bad); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("foreign product: expected ErrProductNotFound, got %v", err)
	}

	bad = base
	bad.ProductID = 9999
	if _, err := env.groupSvc.CreateGroup(bad); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("unknown product: expected ErrProductNotFound, got %v", err)
	}
}

func TestGetGroupLazyExpiry(t *testing.T) {
	env := setupServiceTest(t)
	store := createTestStore(t, env.db, "shop-a")
	product := createTestProduct(t, env.db, store.ID, "100.00")
	group := createTestGroup(t, env.db, store.ID, product.ID, 10, 0, -time.Minute)

	got, err := env.groupSvc.GetGroup(group.ID)
	if err != nil {
		t.Fatalf("get group failed: %v", err)
	}
	if got.Status != constants.GroupStatusExpired {
		t.Fatalf("stale active group must read as expired, got %s", got.Status)
	}
}

func TestGetGroupByNo(t *testing.T) {
	env := setupServiceTest(t)
	store := createTestStore(t, env.db, "shop-a")
	product := createTestProduct(t, env.db, store.ID, "100.00")
	group := createTestGroup(t, env.db, store.ID, product.ID, 10, 0, time.Hour)

	got, err := env.groupSvc.GetGroupByNo(group.GroupNo)
	if err != nil {
		t.Fatalf("get by no failed: %v", err)
	}
	if got.ID != group.ID {
		t.Fatalf("expected group %d, got %d", group.ID, got.ID)
	}
	if _, err := env.groupSvc.GetGroupByNo("PT00000000000000000000"); !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("expected ErrGroupNotFound, got %v", err)
	}
}

func TestCompleteGroup(t *testing.T) {
	env := setupServiceTest(t)
	store := createTestStore(t, env.db, "shop-a")
	product := createTestProduct(t, env.db, store.ID, "100.00")
	groupID, code := setupPickupGroup(t, env, store.ID, product.ID)

	// 未全部核销时不能关单
	if _, err := env.groupSvc.CompleteGroup(groupID, store.ID); !errors.Is(err, ErrGroupStatusInvalid) {
		t.Fatalf("expected ErrGroupStatusInvalid before settlement, got %v", err)
	}

	if _, err := env.redemptionSvc.Redeem(code, store.ID, 101); err != nil {
		t.Fatalf("redeem failed: %v", err)
	}
	if _, err := env.redemptionSvc.Redeem(code, store.ID, 102); err != nil {
		t.Fatalf("redeem failed: %v", err)
	}

	completed, err := env.groupSvc.CompleteGroup(groupID, store.ID)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if completed.Status != constants.GroupStatusCompleted || completed.CompletedAt == nil {
		t.Fatalf("unexpected completed group: %+v", completed)
	}

	// 关单后不可重复关单
	if _, err := env.groupSvc.CompleteGroup(groupID, store.ID); !errors.Is(err, ErrGroupStatusInvalid) {
		t.Fatalf("expected ErrGroupStatusInvalid on repeat, got %v", err)
	}
}

func TestCompleteGroupWrongStore(t *testing.T) {
	env := setupServiceTest(t)
	store := createTestStore(t, env.db, "shop-a")
	other := createTestStore(t, env.db, "shop-b")
	product := createTestProduct(t, env.db, store.ID, "100.00")
	groupID, _ := setupPickupGroup(t, env, store.ID, product.ID)

	if _, err := env.groupSvc.CompleteGroup(groupID, other.ID); !errors.Is(err, ErrStoreNotOwner) {
		t.Fatalf("expected ErrStoreNotOwner, got %v", err)
	}
}

func TestListParticipants(t *testing.T) {
	env := setupServiceTest(t)
	store := createTestStore(t, env.db, "shop-a")
	product := createTestProduct(t, env.db, store.ID, "100.00")
	group := createTestGroup(t, env.db, store.ID, product.ID, 10, 0, time.Hour)

	if _, err := env.reservationSvc.Reserve(group.ID, 101, 2); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	cancelled, err := env.reservationSvc.Reserve(group.ID, 102, 1)
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if err := env.reservationSvc.Cancel(cancelled.Reservation.ID, 102); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	participants, total, err := env.groupSvc.ListParticipants(group.ID, 1, 20)
	if err != nil {
		t.Fatalf("list participants failed: %v", err)
	}
	if total != 1 || len(participants) != 1 || participants[0].UserID != 101 {
		t.Fatalf("expected single active participant 101, got total=%d %+v", total, participants)
	}
}
