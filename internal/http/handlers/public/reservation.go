package public

import (
	"errors"

	"github.com/pintuan-next/internal/constants"
	handlershared "github.com/pintuan-next/internal/http/handlers/shared"
	"github.com/pintuan-next/internal/http/response"
	"github.com/pintuan-next/internal/service"

	"github.com/gin-gonic/gin"
)

type reserveRequest struct {
	Units int `json:"units" binding:"required"`
}

// Reserve 在拼团内预订份数。
// 同一用户重复预订按加购处理，成团与否由返回的 promoted 标记。
func (h *Handler) Reserve(c *gin.Context) {
	groupID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req reserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.invalid_units", err)
		return
	}

	result, err := h.ReservationService.Reserve(groupID, userID, req.Units)
	if err != nil {
		respondWithMappedError(c, err, reserveErrorRules, response.CodeInternal, "error.reservation_failed")
		return
	}
	response.Success(c, gin.H{
		"reservation_id": result.Reservation.ID,
		"units":          result.Reservation.Units,
		"total_units":    result.TotalUnits,
		"group_status":   result.GroupStatus,
		"promoted":       result.Promoted,
	})
}

// CancelReservation 取消本人在拼团内的预订。
// 已取消或不存在的预订按幂等处理，直接返回成功。
func (h *Handler) CancelReservation(c *gin.Context) {
	groupID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	reservation, err := h.ReservationService.GetUserReservation(groupID, userID)
	if err != nil {
		if errors.Is(err, service.ErrNoActiveReservation) {
			response.Success(c, gin.H{"cancelled": true})
			return
		}
		respondWithMappedError(c, err, cancelErrorRules, response.CodeInternal, "error.cancel_failed")
		return
	}

	if err := h.ReservationService.Cancel(reservation.ID, userID); err != nil {
		respondWithMappedError(c, err, cancelErrorRules, response.CodeInternal, "error.cancel_failed")
		return
	}
	response.Success(c, gin.H{"cancelled": true})
}

// GetMyReservation 查询本人在拼团内的有效预订
func (h *Handler) GetMyReservation(c *gin.Context) {
	groupID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	reservation, err := h.ReservationService.GetUserReservation(groupID, userID)
	if err != nil {
		respondWithMappedError(c, err, voucherErrorRules, response.CodeInternal, "error.reservation_fetch_failed")
		return
	}
	response.Success(c, gin.H{
		"reservation_id": reservation.ID,
		"group_id":       reservation.GroupID,
		"units":          reservation.Units,
		"is_validated":   reservation.IsValidated,
		"validated_at":   reservation.ValidatedAt,
		"created_at":     reservation.CreatedAt,
	})
}

// GetVoucher 获取提货凭证。
// 核销码只发放给持有有效预订的成员，且拼团必须已进入提货或核销完成阶段。
func (h *Handler) GetVoucher(c *gin.Context) {
	groupID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	reservation, err := h.ReservationService.GetUserReservation(groupID, userID)
	if err != nil {
		respondWithMappedError(c, err, voucherErrorRules, response.CodeInternal, "error.voucher_fetch_failed")
		return
	}

	group, err := h.GroupService.GetGroup(groupID)
	if err != nil {
		respondWithMappedError(c, err, voucherErrorRules, response.CodeInternal, "error.voucher_fetch_failed")
		return
	}
	if group.Status != constants.GroupStatusPickup && group.Status != constants.GroupStatusValidated {
		respondError(c, response.CodeConflict, "error.group_not_in_pickup", nil)
		return
	}

	response.Success(c, gin.H{
		"group_id":     group.ID,
		"group_no":     group.GroupNo,
		"group_status": group.Status,
		"qr_code":      group.QRCode,
		"units":        reservation.Units,
		"is_validated": reservation.IsValidated,
		"pickup_at":    group.PickupAt,
	})
}
