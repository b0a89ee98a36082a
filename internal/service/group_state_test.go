package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pintuan-next/internal/constants"
)

func TestCanTransition(t *testing.T) {
	allowed := [][2]string{
		{constants.GroupStatusActive, constants.GroupStatusPickup},
		{constants.GroupStatusActive, constants.GroupStatusExpired},
		{constants.GroupStatusPickup, constants.GroupStatusValidated},
		{constants.GroupStatusValidated, constants.GroupStatusCompleted},
	}
	for _, pair := range allowed {
		if !canTransition(pair[0], pair[1]) {
			t.Fatalf("expected %s -> %s allowed", pair[0], pair[1])
		}
	}

	denied := [][2]string{
		{constants.GroupStatusPickup, constants.GroupStatusActive},
		{constants.GroupStatusPickup, constants.GroupStatusExpired},
		{constants.GroupStatusValidated, constants.GroupStatusPickup},
		{constants.GroupStatusExpired, constants.GroupStatusActive},
		{constants.GroupStatusCompleted, constants.GroupStatusActive},
		{constants.GroupStatusActive, constants.GroupStatusValidated},
	}
	for _, pair := range denied {
		if canTransition(pair[0], pair[1]) {
			t.Fatalf("expected %s -> %s denied", pair[0], pair[1])
		}
	}
}

func TestAdvanceStatusCASHonorsTransitionTable(t *testing.T) {
	env := setupServiceTest(t)
	store := createTestStore(t, env.db, "shop-a")
	product := createTestProduct(t, env.db, store.ID, "100.00")
	group := createTestGroup(t, env.db, store.ID, product.ID, 10, 0, time.Hour)

	// active -> validated 不在流转表内，落库前即被拒绝
	if _, err := advanceStatusCAS(env.groupRepo, &group, constants.GroupStatusValidated, nil); !errors.Is(err, ErrGroupStatusInvalid) {
		t.Fatalf("expected ErrGroupStatusInvalid for off-table transition, got %v", err)
	}
	if reloaded := reloadGroup(t, env.db, group.ID); reloaded.Status != constants.GroupStatusActive {
		t.Fatalf("off-table transition must not touch the row, got %s", reloaded.Status)
	}

	won, err := advanceStatusCAS(env.groupRepo, &group, constants.GroupStatusExpired, map[string]interface{}{
		"expired_at": time.Now(),
	})
	if err != nil {
		t.Fatalf("advance to expired failed: %v", err)
	}
	if !won {
		t.Fatalf("expected table transition to win the CAS")
	}
	if reloaded := reloadGroup(t, env.db, group.ID); reloaded.Status != constants.GroupStatusExpired {
		t.Fatalf("expected expired status, got %s", reloaded.Status)
	}
}

func TestGenerateGroupNo(t *testing.T) {
	no := generateGroupNo()
	if !strings.HasPrefix(no, constants.GroupNoPrefix) {
		t.Fatalf("expected prefix %s, got %s", constants.GroupNoPrefix, no)
	}
	if len(no) != len(constants.GroupNoPrefix)+14+6 {
		t.Fatalf("unexpected group no length: %s", no)
	}
}

func TestGenerateVoucherCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code := generateVoucherCode()
		if !strings.HasPrefix(code, constants.VoucherPrefix) {
			t.Fatalf("expected prefix %s, got %s", constants.VoucherPrefix, code)
		}
		if len(code) < len(constants.VoucherPrefix)+32 {
			t.Fatalf("voucher code too short: %s", code)
		}
		if seen[code] {
			t.Fatalf("duplicate voucher code: %s", code)
		}
		seen[code] = true
	}
}
