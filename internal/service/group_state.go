package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/pintuan-next/internal/constants"
	"github.com/pintuan-next/internal/logger"
	"github.com/pintuan-next/internal/metrics"
	"github.com/pintuan-next/internal/models"
	"github.com/pintuan-next/internal/repository"
)

// allowedTransitions 拼团状态机流转表，状态只能单向推进
var allowedTransitions = map[string]map[string]bool{
	constants.GroupStatusActive: {
		constants.GroupStatusPickup:  true,
		constants.GroupStatusExpired: true,
	},
	constants.GroupStatusPickup: {
		constants.GroupStatusValidated: true,
	},
	constants.GroupStatusValidated: {
		constants.GroupStatusCompleted: true,
	},
}

func canTransition(from, to string) bool {
	nexts, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return nexts[to]
}

// advanceStatusCAS 按流转表推进拼团状态，表外流转一律拒绝。
// 返回 true 表示本次调用赢得了该次流转，语义同 UpdateStatusCAS。
func advanceStatusCAS(groupRepo repository.GroupRepository, group *models.Group, toStatus string, updates map[string]interface{}) (bool, error) {
	if !canTransition(group.Status, toStatus) {
		return false, ErrGroupStatusInvalid
	}
	return groupRepo.UpdateStatusCAS(group.ID, group.Status, toStatus, updates)
}

func generateGroupNo() string {
	now := time.Now().Format("20060102150405")
	return fmt.Sprintf("%s%s%s", constants.GroupNoPrefix, now, randNumeric(6))
}

// generateVoucherCode 生成核销码，随机部分足够长以保证不可猜测
func generateVoucherCode() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%s%d%s", constants.VoucherPrefix, time.Now().UnixNano(), randNumeric(8))
	}
	return fmt.Sprintf("%s%s", constants.VoucherPrefix, strings.ToUpper(hex.EncodeToString(buf)))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(fmt.Sprintf("%d", n.Int64()))
	}
	return b.String()
}

// promoteToPickup 以 CAS 方式将 active 拼团推进到 pickup 并签发核销码。
// 并发达到阈值时只有命中 CAS 的一方执行签发，落败方读取已签发的码，
// 因此核销码对同一拼团恰好生成一次。须在事务内调用。
func promoteToPickup(groupRepo *repository.GormGroupRepository, eventRepo *repository.GormGroupEventRepository, group *models.Group, units int, actor string, now time.Time) (string, bool, error) {
	code := generateVoucherCode()
	won, err := advanceStatusCAS(groupRepo, group, constants.GroupStatusPickup, map[string]interface{}{
		"qr_code":       code,
		"current_units": units,
		"pickup_at":     now,
		"updated_at":    now,
	})
	if err != nil {
		return "", false, err
	}
	if !won {
		current, err := groupRepo.GetByID(group.ID)
		if err != nil {
			return "", false, err
		}
		if current == nil {
			return "", false, ErrGroupNotFound
		}
		return current.QRCode, false, nil
	}

	if err := eventRepo.Append(&models.GroupEvent{
		GroupID:    group.ID,
		FromStatus: constants.GroupStatusActive,
		ToStatus:   constants.GroupStatusPickup,
		Actor:      actor,
		UnitsAt:    units,
		CreatedAt:  now,
	}); err != nil {
		return "", false, err
	}

	metrics.GroupTransitionsTotal.WithLabelValues(constants.GroupStatusPickup).Inc()
	logger.Infow("group_promoted_to_pickup",
		"group_id", group.ID,
		"group_no", group.GroupNo,
		"units", units,
		"target_units", group.TargetUnits,
		"actor", actor,
	)
	return code, true, nil
}

// settleIfAllValidated 当拼团内所有有效预订均已核销时推进 pickup → validated。
// 须在核销事务内调用。
func settleIfAllValidated(groupRepo *repository.GormGroupRepository, reservationRepo *repository.GormReservationRepository, eventRepo *repository.GormGroupEventRepository, group *models.Group, actor string, now time.Time) (bool, error) {
	pending, err := reservationRepo.CountActiveUnvalidated(group.ID)
	if err != nil {
		return false, err
	}
	if pending > 0 {
		return false, nil
	}

	won, err := advanceStatusCAS(groupRepo, group, constants.GroupStatusValidated, map[string]interface{}{
		"validated_at": now,
		"updated_at":   now,
	})
	if err != nil || !won {
		return false, err
	}

	if err := eventRepo.Append(&models.GroupEvent{
		GroupID:    group.ID,
		FromStatus: constants.GroupStatusPickup,
		ToStatus:   constants.GroupStatusValidated,
		Actor:      actor,
		UnitsAt:    group.CurrentUnits,
		CreatedAt:  now,
	}); err != nil {
		return false, err
	}

	metrics.GroupTransitionsTotal.WithLabelValues(constants.GroupStatusValidated).Inc()
	logger.Infow("group_all_validated", "group_id", group.ID, "group_no", group.GroupNo)
	return true, nil
}
