package public

import (
	"crypto/subtle"
	"strings"

	"github.com/pintuan-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

type issueUserTokenRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

// IssueUserToken 为上游平台签发消费者令牌。
// 仅供内部调用，必须携带配置中的 internal_api_key，密钥未配置时接口关闭。
func (h *Handler) IssueUserToken(c *gin.Context) {
	configured := h.Config.Security.InternalAPIKey
	if configured == "" {
		respondError(c, response.CodeNotFound, "error.not_found", nil)
		return
	}
	provided := strings.TrimSpace(c.GetHeader("X-Internal-Key"))
	if subtle.ConstantTimeCompare([]byte(provided), []byte(configured)) != 1 {
		respondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return
	}

	var req issueUserTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	token, expiresAt, err := h.AuthService.GenerateUserJWT(req.UserID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.token_issue_failed", err)
		return
	}
	response.Success(c, gin.H{
		"token":      token,
		"expires_at": expiresAt,
	})
}
