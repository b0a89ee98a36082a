package store

import (
	"errors"

	"github.com/pintuan-next/internal/http/response"
	"github.com/pintuan-next/internal/service"

	"github.com/gin-gonic/gin"
)

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

var loginErrorRules = []mappedHandlerError{
	{target: service.ErrStoreLoginFailed, code: response.CodeUnauthorized, key: "error.store_login_failed"},
}

var createGroupErrorRules = []mappedHandlerError{
	{target: service.ErrGroupParamsInvalid, code: response.CodeBadRequest, key: "error.group_params_invalid"},
	{target: service.ErrGroupPriceInvalid, code: response.CodeBadRequest, key: "error.group_price_invalid"},
	{target: service.ErrStoreNotFound, code: response.CodeNotFound, key: "error.store_not_found"},
	{target: service.ErrProductNotFound, code: response.CodeNotFound, key: "error.product_not_found"},
}

var completeGroupErrorRules = []mappedHandlerError{
	{target: service.ErrGroupNotFound, code: response.CodeNotFound, key: "error.group_not_found"},
	{target: service.ErrStoreNotOwner, code: response.CodeForbidden, key: "error.store_not_owner"},
	{target: service.ErrGroupStatusInvalid, code: response.CodeConflict, key: "error.group_status_invalid"},
}

var groupQueryErrorRules = []mappedHandlerError{
	{target: service.ErrGroupNotFound, code: response.CodeNotFound, key: "error.group_not_found"},
	{target: service.ErrStoreNotOwner, code: response.CodeForbidden, key: "error.store_not_owner"},
}

var redeemErrorRules = []mappedHandlerError{
	{target: service.ErrCodeNotFound, code: response.CodeNotFound, key: "error.voucher_not_found"},
	{target: service.ErrWrongStore, code: response.CodeForbidden, key: "error.voucher_wrong_store"},
	{target: service.ErrGroupNotInPickup, code: response.CodeConflict, key: "error.group_not_in_pickup"},
	{target: service.ErrNoActiveReservation, code: response.CodeConflict, key: "error.no_active_reservation"},
	{target: service.ErrReservationAlreadyValidated, code: response.CodeConflict, key: "error.reservation_validated"},
}
