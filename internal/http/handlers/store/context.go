package store

import (
	handlershared "github.com/pintuan-next/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func getStoreID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUintWithKeys(c, "store_id", "error.store_id_invalid", "error.store_id_type_invalid")
}
