package public

import (
	"strconv"
	"strings"
	"time"

	handlershared "github.com/pintuan-next/internal/http/handlers/shared"
	"github.com/pintuan-next/internal/http/response"
	"github.com/pintuan-next/internal/models"
	"github.com/pintuan-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// GroupView 消费者侧拼团视图。
// 不暴露核销码与发起人，核销码只通过凭证接口发放给持有预订的用户。
type GroupView struct {
	ID           uint            `json:"id"`
	GroupNo      string          `json:"group_no"`
	ProductID    uint            `json:"product_id"`
	StoreID      uint            `json:"store_id"`
	TargetUnits  int             `json:"target_units"`
	MaxUnits     int             `json:"max_units"`
	CurrentUnits int             `json:"current_units"`
	NormalPrice  models.Money    `json:"normal_price"`
	GroupPrice   models.Money    `json:"group_price"`
	Status       string          `json:"status"`
	ExpiresAt    time.Time       `json:"expires_at"`
	PickupAt     *time.Time      `json:"pickup_at,omitempty"`
	ValidatedAt  *time.Time      `json:"validated_at,omitempty"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	ExpiredAt    *time.Time      `json:"expired_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	Product      *models.Product `json:"product,omitempty"`
}

// ParticipantView 参团成员视图
type ParticipantView struct {
	UserID      uint       `json:"user_id"`
	Units       int        `json:"units"`
	IsValidated bool       `json:"is_validated"`
	ValidatedAt *time.Time `json:"validated_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func buildGroupView(group *models.Group) GroupView {
	return GroupView{
		ID:           group.ID,
		GroupNo:      group.GroupNo,
		ProductID:    group.ProductID,
		StoreID:      group.StoreID,
		TargetUnits:  group.TargetUnits,
		MaxUnits:     group.MaxUnits,
		CurrentUnits: group.CurrentUnits,
		NormalPrice:  group.NormalPrice,
		GroupPrice:   group.GroupPrice,
		Status:       group.Status,
		ExpiresAt:    group.ExpiresAt,
		PickupAt:     group.PickupAt,
		ValidatedAt:  group.ValidatedAt,
		CompletedAt:  group.CompletedAt,
		ExpiredAt:    group.ExpiredAt,
		CreatedAt:    group.CreatedAt,
		Product:      group.Product,
	}
}

func buildParticipantViews(reservations []models.Reservation) []ParticipantView {
	views := make([]ParticipantView, 0, len(reservations))
	for _, reservation := range reservations {
		views = append(views, ParticipantView{
			UserID:      reservation.UserID,
			Units:       reservation.Units,
			IsValidated: reservation.IsValidated,
			ValidatedAt: reservation.ValidatedAt,
			CreatedAt:   reservation.CreatedAt,
		})
	}
	return views
}

// GetGroup 查询拼团详情
func (h *Handler) GetGroup(c *gin.Context) {
	groupID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	group, err := h.GroupService.GetGroup(groupID)
	if err != nil {
		respondWithMappedError(c, err, groupQueryErrorRules, response.CodeInternal, "error.group_fetch_failed")
		return
	}
	response.Success(c, buildGroupView(group))
}

// GetGroupByNo 根据拼团编号查询拼团详情
func (h *Handler) GetGroupByNo(c *gin.Context) {
	groupNo := strings.TrimSpace(c.Param("group_no"))
	if groupNo == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	group, err := h.GroupService.GetGroupByNo(groupNo)
	if err != nil {
		respondWithMappedError(c, err, groupQueryErrorRules, response.CodeInternal, "error.group_fetch_failed")
		return
	}
	response.Success(c, buildGroupView(group))
}

// ListGroups 查询拼团列表
func (h *Handler) ListGroups(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	storeID, _ := strconv.ParseUint(c.Query("store_id"), 10, 64)
	productID, _ := strconv.ParseUint(c.Query("product_id"), 10, 64)

	groups, total, err := h.GroupService.ListGroups(repository.GroupListFilter{
		Page:        page,
		PageSize:    pageSize,
		StoreID:     uint(storeID),
		ProductID:   uint(productID),
		Status:      strings.TrimSpace(c.Query("status")),
		WithProduct: true,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.group_fetch_failed", err)
		return
	}

	views := make([]GroupView, 0, len(groups))
	for i := range groups {
		views = append(views, buildGroupView(&groups[i]))
	}
	totalPage := (total + int64(pageSize) - 1) / int64(pageSize)
	response.SuccessWithPage(c, views, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPage,
	})
}

// ListGroupParticipants 查询参团成员
func (h *Handler) ListGroupParticipants(c *gin.Context) {
	groupID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	reservations, total, err := h.GroupService.ListParticipants(groupID, page, pageSize)
	if err != nil {
		respondWithMappedError(c, err, groupQueryErrorRules, response.CodeInternal, "error.group_fetch_failed")
		return
	}
	totalPage := (total + int64(pageSize) - 1) / int64(pageSize)
	response.SuccessWithPage(c, buildParticipantViews(reservations), response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPage,
	})
}
