package store

import (
	"strconv"
	"strings"

	handlershared "github.com/pintuan-next/internal/http/handlers/shared"
	"github.com/pintuan-next/internal/http/response"
	"github.com/pintuan-next/internal/models"
	"github.com/pintuan-next/internal/repository"
	"github.com/pintuan-next/internal/service"

	"github.com/gin-gonic/gin"
)

type createGroupRequest struct {
	ProductID       uint         `json:"product_id" binding:"required"`
	TargetUnits     int          `json:"target_units" binding:"required"`
	MaxUnits        int          `json:"max_units"`
	GroupPrice      models.Money `json:"group_price"`
	DurationMinutes int          `json:"duration_minutes" binding:"required"`
}

// CreateGroup 开团
func (h *Handler) CreateGroup(c *gin.Context) {
	storeID, ok := getStoreID(c)
	if !ok {
		return
	}
	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.group_params_invalid", err)
		return
	}

	group, err := h.GroupService.CreateGroup(service.CreateGroupInput{
		StoreID:         storeID,
		CreatorID:       storeID,
		ProductID:       req.ProductID,
		TargetUnits:     req.TargetUnits,
		MaxUnits:        req.MaxUnits,
		GroupPrice:      req.GroupPrice,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		respondWithMappedError(c, err, createGroupErrorRules, response.CodeInternal, "error.group_create_failed")
		return
	}
	response.Success(c, group)
}

// ListGroups 查询本店拼团列表
func (h *Handler) ListGroups(c *gin.Context) {
	storeID, ok := getStoreID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	groups, total, err := h.GroupService.ListGroups(repository.GroupListFilter{
		Page:        page,
		PageSize:    pageSize,
		StoreID:     storeID,
		Status:      strings.TrimSpace(c.Query("status")),
		GroupNo:     strings.TrimSpace(c.Query("group_no")),
		WithProduct: true,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.group_fetch_failed", err)
		return
	}
	totalPage := (total + int64(pageSize) - 1) / int64(pageSize)
	response.SuccessWithPage(c, groups, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPage,
	})
}

// getOwnedGroup 加载拼团并校验归属，失败时已写响应
func (h *Handler) getOwnedGroup(c *gin.Context) (*models.Group, bool) {
	storeID, ok := getStoreID(c)
	if !ok {
		return nil, false
	}
	groupID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return nil, false
	}
	group, err := h.GroupService.GetGroup(groupID)
	if err != nil {
		respondWithMappedError(c, err, groupQueryErrorRules, response.CodeInternal, "error.group_fetch_failed")
		return nil, false
	}
	if group.StoreID != storeID {
		respondError(c, response.CodeForbidden, "error.store_not_owner", nil)
		return nil, false
	}
	return group, true
}

// GetGroup 查询本店拼团详情，商家侧可见核销码
func (h *Handler) GetGroup(c *gin.Context) {
	group, ok := h.getOwnedGroup(c)
	if !ok {
		return
	}
	response.Success(c, group)
}

// ListParticipants 查询本店拼团的参团成员
func (h *Handler) ListParticipants(c *gin.Context) {
	group, ok := h.getOwnedGroup(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	reservations, total, err := h.GroupService.ListParticipants(group.ID, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.group_fetch_failed", err)
		return
	}
	totalPage := (total + int64(pageSize) - 1) / int64(pageSize)
	response.SuccessWithPage(c, reservations, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPage,
	})
}

// ListEvents 查询本店拼团的状态流转记录
func (h *Handler) ListEvents(c *gin.Context) {
	group, ok := h.getOwnedGroup(c)
	if !ok {
		return
	}
	events, err := h.GroupService.ListEvents(group.ID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.group_fetch_failed", err)
		return
	}
	response.Success(c, events)
}

// CompleteGroup 全员核销后由商家关单
func (h *Handler) CompleteGroup(c *gin.Context) {
	storeID, ok := getStoreID(c)
	if !ok {
		return
	}
	groupID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	group, err := h.GroupService.CompleteGroup(groupID, storeID)
	if err != nil {
		respondWithMappedError(c, err, completeGroupErrorRules, response.CodeInternal, "error.group_complete_failed")
		return
	}
	response.Success(c, group)
}
