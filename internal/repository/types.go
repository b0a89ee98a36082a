package repository

import "time"

// GroupListFilter 查询拼团列表的过滤条件
type GroupListFilter struct {
	Page        int
	PageSize    int
	StoreID     uint
	ProductID   uint
	Status      string
	GroupNo     string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	WithProduct bool
}

// ReservationListFilter 查询预订列表的过滤条件
type ReservationListFilter struct {
	Page       int
	PageSize   int
	GroupID    uint
	UserID     uint
	Status     string
	OnlyActive bool
}
