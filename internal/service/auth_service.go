package service

import (
	"errors"
	"time"

	"github.com/pintuan-next/internal/config"
	"github.com/pintuan-next/internal/constants"
	"github.com/pintuan-next/internal/logger"
	"github.com/pintuan-next/internal/models"
	"github.com/pintuan-next/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService 认证服务，负责店铺凭证校验与消费者令牌签发
type AuthService struct {
	cfg       *config.Config
	storeRepo repository.StoreRepository
}

// NewAuthService 创建认证服务
func NewAuthService(cfg *config.Config, storeRepo repository.StoreRepository) *AuthService {
	return &AuthService{
		cfg:       cfg,
		storeRepo: storeRepo,
	}
}

// HashAPIKey 使用 bcrypt 加密店铺密钥
func (s *AuthService) HashAPIKey(apiKey string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(apiKey), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// StoreClaims 店铺侧 JWT 声明
type StoreClaims struct {
	StoreID uint   `json:"store_id"`
	Slug    string `json:"slug"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

// UserClaims 消费者侧 JWT 声明
type UserClaims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// StoreLogin 店铺凭证登录，换取店铺侧访问令牌。
// 店铺不存在、停用和密钥错误统一返回同一个错误，不泄露具体原因。
func (s *AuthService) StoreLogin(slug, apiKey string) (*models.Store, string, time.Time, error) {
	store, err := s.storeRepo.GetBySlug(slug)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if store == nil || !store.IsActive {
		return nil, "", time.Time{}, ErrStoreLoginFailed
	}
	if err := bcrypt.CompareHashAndPassword([]byte(store.APIKeyHash), []byte(apiKey)); err != nil {
		return nil, "", time.Time{}, ErrStoreLoginFailed
	}

	token, expiresAt, err := s.GenerateStoreJWT(store)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	logger.Infow("store_login", "store_id", store.ID, "slug", store.Slug)
	return store, token, expiresAt, nil
}

// GenerateStoreJWT 生成店铺侧 JWT
func (s *AuthService) GenerateStoreJWT(store *models.Store) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(time.Duration(s.cfg.JWT.ExpireHours) * time.Hour)
	claims := StoreClaims{
		StoreID: store.ID,
		Slug:    store.Slug,
		Role:    constants.RoleStore,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseStoreJWT 解析店铺侧 JWT
func (s *AuthService) ParseStoreJWT(tokenString string) (*StoreClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &StoreClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*StoreClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("无效的 token")
}

// GenerateUserJWT 生成消费者侧 JWT
func (s *AuthService) GenerateUserJWT(userID uint) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(time.Duration(s.cfg.UserJWT.ExpireHours) * time.Hour)
	claims := UserClaims{
		UserID: userID,
		Role:   "user",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.UserJWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseUserJWT 解析消费者侧 JWT
func (s *AuthService) ParseUserJWT(tokenString string) (*UserClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.UserJWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("无效的 token")
}
