package service

import (
	"errors"
	"testing"

	"github.com/pintuan-next/internal/config"
	"github.com/pintuan-next/internal/constants"
)

func newTestAuthService(t *testing.T, env *serviceTestEnv) *AuthService {
	t.Helper()

	cfg := &config.Config{}
	cfg.JWT.SecretKey = "test-store-secret"
	cfg.JWT.ExpireHours = 2
	cfg.UserJWT.SecretKey = "test-user-secret"
	cfg.UserJWT.ExpireHours = 24
	return NewAuthService(cfg, env.storeRepo)
}

func TestStoreLogin(t *testing.T) {
	env := setupServiceTest(t)
	store := createTestStore(t, env.db, "shop-a")
	authSvc := newTestAuthService(t, env)

	got, token, _, err := authSvc.StoreLogin("shop-a", "store-secret")
	if err != nil {
		t.Fatalf("store login failed: %v", err)
	}
	if got.ID != store.ID || token == "" {
		t.Fatalf("unexpected login result: store=%d token=%q", got.ID, token)
	}

	claims, err := authSvc.ParseStoreJWT(token)
	if err != nil {
		t.Fatalf("parse store jwt failed: %v", err)
	}
	if claims.StoreID != store.ID || claims.Role != constants.RoleStore || claims.Slug != "shop-a" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestStoreLoginRejectsBadCredentials(t *testing.T) {
	env := setupServiceTest(t)
	createTestStore(t, env.db, "shop-a")
	authSvc := newTestAuthService(t, env)

	if _, _, _, err := authSvc.StoreLogin("shop-a", "wrong"); !errors.Is(err, ErrStoreLoginFailed) {
		t.Fatalf("expected ErrStoreLoginFailed for wrong key, got %v", err)
	}
	if _, _, _, err := authSvc.StoreLogin("no-such-shop", "store-secret"); !errors.Is(err, ErrStoreLoginFailed) {
		t.Fatalf("expected ErrStoreLoginFailed for unknown store, got %v", err)
	}
}

func TestStoreLoginRejectsInactiveStore(t *testing.T) {
	env := setupServiceTest(t)
	store := createTestStore(t, env.db, "shop-a")
	if err := env.db.Model(&store).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate store failed: %v", err)
	}
	authSvc := newTestAuthService(t, env)

	if _, _, _, err := authSvc.StoreLogin("shop-a", "store-secret"); !errors.Is(err, ErrStoreLoginFailed) {
		t.Fatalf("expected ErrStoreLoginFailed for inactive store, got %v", err)
	}
}

func TestUserJWTRoundTrip(t *testing.T) {
	env := setupServiceTest(t)
	authSvc := newTestAuthService(t, env)

	token, _, err := authSvc.GenerateUserJWT(4242)
	if err != nil {
		t.Fatalf("generate user jwt failed: %v", err)
	}
	claims, err := authSvc.ParseUserJWT(token)
	if err != nil {
		t.Fatalf("parse user jwt failed: %v", err)
	}
	if claims.UserID != 4242 {
		t.Fatalf("expected user 4242, got %d", claims.UserID)
	}

	// 两套密钥不能互换
	if _, err := authSvc.ParseStoreJWT(token); err == nil {
		t.Fatalf("user token must not validate as store token")
	}
}
