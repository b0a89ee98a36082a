package public

import (
	"errors"

	"github.com/pintuan-next/internal/http/response"
	"github.com/pintuan-next/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

var groupQueryErrorRules = []mappedHandlerError{
	{target: service.ErrGroupNotFound, code: response.CodeNotFound, key: "error.group_not_found"},
}

var reserveErrorRules = []mappedHandlerError{
	{target: service.ErrGroupNotFound, code: response.CodeNotFound, key: "error.group_not_found"},
	{target: service.ErrGroupNotActive, code: response.CodeConflict, key: "error.group_not_active"},
	{target: service.ErrCapacityExceeded, code: response.CodeConflict, key: "error.capacity_exceeded"},
	{target: service.ErrInvalidUnits, code: response.CodeBadRequest, key: "error.invalid_units"},
	{target: service.ErrNotReservationOwner, code: response.CodeForbidden, key: "error.reservation_not_owner"},
}

var cancelErrorRules = []mappedHandlerError{
	{target: service.ErrReservationNotFound, code: response.CodeNotFound, key: "error.reservation_not_found"},
	{target: service.ErrNotReservationOwner, code: response.CodeForbidden, key: "error.reservation_not_owner"},
	{target: service.ErrReservationAlreadyValidated, code: response.CodeConflict, key: "error.reservation_validated"},
	{target: service.ErrGroupNotFound, code: response.CodeNotFound, key: "error.group_not_found"},
	{target: service.ErrGroupTerminal, code: response.CodeConflict, key: "error.group_terminal"},
}

var voucherErrorRules = []mappedHandlerError{
	{target: service.ErrGroupNotFound, code: response.CodeNotFound, key: "error.group_not_found"},
	{target: service.ErrNoActiveReservation, code: response.CodeForbidden, key: "error.no_active_reservation"},
	{target: service.ErrGroupNotInPickup, code: response.CodeConflict, key: "error.group_not_in_pickup"},
}
