package store

import (
	"strings"

	"github.com/pintuan-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

type redeemRequest struct {
	Code   string `json:"code" binding:"required"`
	UserID uint   `json:"user_id" binding:"required"`
}

// Redeem 扫码核销。
// 店员扫描拼团核销码并录入提货用户，逐人核销，全员核销后拼团自动进入 validated。
func (h *Handler) Redeem(c *gin.Context) {
	storeID, ok := getStoreID(c)
	if !ok {
		return
	}
	var req redeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	result, err := h.RedemptionService.Redeem(strings.TrimSpace(req.Code), storeID, req.UserID)
	if err != nil {
		respondWithMappedError(c, err, redeemErrorRules, response.CodeInternal, "error.redeem_failed")
		return
	}
	response.Success(c, result)
}
