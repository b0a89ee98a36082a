package authz

import (
	"fmt"
	"testing"
	"time"

	"github.com/pintuan-next/internal/constants"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzTest(t *testing.T) *Service {
	t.Helper()

	dsn := fmt.Sprintf("file:authz_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}
	return svc
}

func TestStoreRolePolicies(t *testing.T) {
	svc := setupAuthzTest(t)
	if err := svc.BindStoreRole(7, constants.RoleStore); err != nil {
		t.Fatalf("bind store role failed: %v", err)
	}

	allowed, err := svc.EnforceStore(7, "/store/redeem", "POST")
	if err != nil {
		t.Fatalf("enforce failed: %v", err)
	}
	if !allowed {
		t.Fatalf("store role should access /store/redeem")
	}

	allowed, err = svc.EnforceStore(7, "/api/v1/store/groups/42/complete", "POST")
	if err != nil {
		t.Fatalf("enforce failed: %v", err)
	}
	if !allowed {
		t.Fatalf("api prefix should be normalized away")
	}

	allowed, err = svc.EnforceStore(7, "/platform/stores", "POST")
	if err != nil {
		t.Fatalf("enforce failed: %v", err)
	}
	if allowed {
		t.Fatalf("store role must not access platform endpoints")
	}
}

func TestPlatformRoleInheritsStore(t *testing.T) {
	svc := setupAuthzTest(t)
	if err := svc.BindStoreRole(1, constants.RolePlatform); err != nil {
		t.Fatalf("bind platform role failed: %v", err)
	}

	for _, object := range []string{"/store/redeem", "/platform/stores"} {
		allowed, err := svc.EnforceStore(1, object, "POST")
		if err != nil {
			t.Fatalf("enforce failed: %v", err)
		}
		if !allowed {
			t.Fatalf("platform role should access %s", object)
		}
	}
}

func TestEnforceUnboundStore(t *testing.T) {
	svc := setupAuthzTest(t)

	allowed, err := svc.EnforceStore(99, "/store/redeem", "POST")
	if err != nil {
		t.Fatalf("enforce failed: %v", err)
	}
	if allowed {
		t.Fatalf("unbound store must be denied")
	}
}

func TestNormalizeHelpers(t *testing.T) {
	role, err := NormalizeRole("store")
	if err != nil || role != "role:store" {
		t.Fatalf("unexpected normalize role result: %s %v", role, err)
	}
	if _, err := NormalizeRole("  "); err == nil {
		t.Fatalf("empty role must fail")
	}
	if got := NormalizeObject("api/v1/store/redeem"); got != "/store/redeem" {
		t.Fatalf("unexpected normalize object result: %s", got)
	}
	if got := NormalizeAction(" post "); got != "POST" {
		t.Fatalf("unexpected normalize action result: %s", got)
	}
}
