package store

import (
	"github.com/pintuan-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Slug   string `json:"slug" binding:"required"`
	APIKey string `json:"api_key" binding:"required"`
}

// Login 商家登录，校验 API Key 并签发商家令牌
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	storeRecord, token, expiresAt, err := h.AuthService.StoreLogin(req.Slug, req.APIKey)
	if err != nil {
		respondWithMappedError(c, err, loginErrorRules, response.CodeInternal, "error.store_login_failed")
		return
	}
	response.Success(c, gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"store": gin.H{
			"id":   storeRecord.ID,
			"slug": storeRecord.Slug,
			"name": storeRecord.Name,
		},
	})
}

// Profile 查询当前商家信息
func (h *Handler) Profile(c *gin.Context) {
	storeID, ok := getStoreID(c)
	if !ok {
		return
	}
	storeRecord, err := h.StoreRepo.GetByID(storeID)
	if err != nil || storeRecord == nil {
		respondError(c, response.CodeNotFound, "error.store_not_found", err)
		return
	}
	response.Success(c, gin.H{
		"id":        storeRecord.ID,
		"slug":      storeRecord.Slug,
		"name":      storeRecord.Name,
		"is_active": storeRecord.IsActive,
	})
}
