package service

import "errors"

// 服务层错误定义，处理器据此映射响应码
var (
	ErrInvalidUnits                = errors.New("预订数量不合法")
	ErrGroupNotFound               = errors.New("拼团不存在")
	ErrGroupNotActive              = errors.New("拼团已不可预订")
	ErrCapacityExceeded            = errors.New("拼团容量已满")
	ErrGroupTerminal               = errors.New("拼团已进入不可变更状态")
	ErrReservationNotFound         = errors.New("预订不存在")
	ErrNotReservationOwner         = errors.New("无权操作该预订")
	ErrReservationAlreadyValidated = errors.New("预订已核销")
	ErrNoActiveReservation         = errors.New("用户在该拼团内没有有效预订")
	ErrCodeNotFound                = errors.New("核销码不存在")
	ErrWrongStore                  = errors.New("核销码不属于当前店铺")
	ErrGroupNotInPickup            = errors.New("拼团未处于待核销状态")
	ErrGroupStatusInvalid          = errors.New("拼团状态不允许该操作")
	ErrGroupParamsInvalid          = errors.New("拼团参数不合法")
	ErrGroupPriceInvalid           = errors.New("拼团价必须低于原价")
	ErrProductNotFound             = errors.New("商品不存在或未上架")
	ErrStoreNotFound               = errors.New("店铺不存在")
	ErrStoreLoginFailed            = errors.New("店铺凭证校验失败")
	ErrStoreNotOwner               = errors.New("拼团不属于当前店铺")
)
