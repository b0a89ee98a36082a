package models

import (
	"strings"

	"github.com/pintuan-next/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

// InitDefaultStore 初始化默认店铺账号（开发环境便利，生产由运营侧开通）
func InitDefaultStore(name, apiKey string) error {
	var count int64
	DB.Model(&Store{}).Count(&count)
	if count > 0 {
		return nil
	}

	if name == "" {
		name = "演示店铺"
	}
	if apiKey == "" {
		apiKey = "pintuan-demo-key"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(apiKey), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	store := Store{
		Name:       name,
		Slug:       "demo-store",
		APIKeyHash: string(hash),
		IsActive:   true,
	}
	if err := DB.Create(&store).Error; err != nil {
		return err
	}

	if strings.EqualFold(apiKey, "pintuan-demo-key") {
		logger.Warnw("default_store_created_with_default_key", "store_id", store.ID)
		logger.Warnw("default_store_key_change_required", "store_id", store.ID)
	} else {
		logger.Warnw("default_store_created", "store_id", store.ID, "key_hidden", true)
	}
	return nil
}
