package i18n

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// LocaleZhCN 简体中文
	LocaleZhCN = "zh-CN"
	// LocaleEnUS 英语
	LocaleEnUS = "en-US"
	// DefaultLocale 默认语言
	DefaultLocale = LocaleZhCN
)

// messages 错误消息目录（按语言 -> key）
var messages = map[string]map[string]string{
	LocaleZhCN: {
		"error.bad_request":              "请求参数无效",
		"error.unauthorized":             "未登录或登录已失效",
		"error.forbidden":                "没有权限执行该操作",
		"error.internal":                 "服务内部错误",
		"error.rate_limited":             "请求过于频繁，请 %d 秒后重试",
		"error.rate_limit_unavailable":   "限流服务不可用",
		"error.login_too_many":           "登录尝试过于频繁，请 %d 秒后重试",
		"error.auth_header_missing":      "缺少认证信息",
		"error.auth_header_invalid":      "认证信息格式错误",
		"error.token_invalid":            "登录凭证无效或已过期",
		"error.jwt_secret_missing":       "服务端未配置签名密钥",
		"error.user_id_invalid":          "用户标识无效",
		"error.user_id_type_invalid":     "用户标识类型无效",
		"error.store_id_invalid":         "店铺标识无效",
		"error.store_id_type_invalid":    "店铺标识类型无效",
		"error.store_not_found":          "店铺不存在",
		"error.store_login_failed":       "店铺编号或密钥不正确",
		"error.product_not_found":        "商品不存在或已下架",
		"error.group_not_found":          "拼团不存在",
		"error.group_not_active":         "拼团已结束或已过期，无法预订",
		"error.group_terminal":           "拼团已进入终态，无法取消预订",
		"error.group_not_in_pickup":      "拼团尚未进入提货状态",
		"error.group_status_invalid":     "拼团状态不允许该操作",
		"error.group_params_invalid":     "拼团参数无效",
		"error.group_price_invalid":      "拼团价不能高于原价",
		"error.capacity_exceeded":        "预订数量超出拼团容量上限",
		"error.invalid_units":            "预订数量无效",
		"error.reservation_not_found":    "预订记录不存在",
		"error.reservation_not_owner":    "只能操作本人的预订",
		"error.reservation_validated":    "预订已核销，无法重复操作",
		"error.no_active_reservation":    "该用户在本团没有待核销的预订",
		"error.voucher_not_found":        "核销码不存在",
		"error.voucher_wrong_store":      "核销码不属于当前店铺",
		"error.group_fetch_failed":       "拼团信息获取失败",
		"error.group_create_failed":      "拼团创建失败",
		"error.group_complete_failed":    "拼团关单失败",
		"error.store_not_owner":          "该拼团不属于当前店铺",
		"error.reservation_failed":       "预订失败，请重试",
		"error.cancel_failed":            "取消预订失败，请重试",
		"error.reservation_fetch_failed": "预订信息获取失败",
		"error.voucher_fetch_failed":     "提货凭证获取失败",
		"error.redeem_failed":            "核销失败，请重试",
		"error.token_issue_failed":       "令牌签发失败",
		"error.not_found":                "资源不存在",
		"error.queue_unavailable":        "任务队列不可用",
	},
	LocaleEnUS: {
		"error.bad_request":              "invalid request parameters",
		"error.unauthorized":             "unauthorized",
		"error.forbidden":                "forbidden",
		"error.internal":                 "internal server error",
		"error.rate_limited":             "too many requests, retry in %d seconds",
		"error.rate_limit_unavailable":   "rate limiter unavailable",
		"error.login_too_many":           "too many login attempts, retry in %d seconds",
		"error.auth_header_missing":      "authorization header missing",
		"error.auth_header_invalid":      "authorization header malformed",
		"error.token_invalid":            "token invalid or expired",
		"error.jwt_secret_missing":       "jwt secret not configured",
		"error.user_id_invalid":          "invalid user id",
		"error.user_id_type_invalid":     "invalid user id type",
		"error.store_id_invalid":         "invalid store id",
		"error.store_id_type_invalid":    "invalid store id type",
		"error.store_not_found":          "store not found",
		"error.store_login_failed":       "invalid store id or api key",
		"error.product_not_found":        "product not found or inactive",
		"error.group_not_found":          "group not found",
		"error.group_not_active":         "group is closed or expired",
		"error.group_terminal":           "group already reached a terminal state",
		"error.group_not_in_pickup":      "group is not in pickup state",
		"error.group_status_invalid":     "operation not allowed in current group state",
		"error.group_params_invalid":     "invalid group parameters",
		"error.group_price_invalid":      "group price must not exceed normal price",
		"error.capacity_exceeded":        "reservation exceeds group capacity",
		"error.invalid_units":            "invalid reservation units",
		"error.reservation_not_found":    "reservation not found",
		"error.reservation_not_owner":    "reservation belongs to another user",
		"error.reservation_validated":    "reservation already validated",
		"error.no_active_reservation":    "no active reservation for this user",
		"error.voucher_not_found":        "voucher code not found",
		"error.voucher_wrong_store":      "voucher belongs to another store",
		"error.group_fetch_failed":       "failed to fetch group",
		"error.group_create_failed":      "failed to create group",
		"error.group_complete_failed":    "failed to complete group",
		"error.store_not_owner":          "group belongs to another store",
		"error.reservation_failed":       "reservation failed, please retry",
		"error.cancel_failed":            "cancellation failed, please retry",
		"error.reservation_fetch_failed": "failed to fetch reservation",
		"error.voucher_fetch_failed":     "failed to fetch voucher",
		"error.redeem_failed":            "redemption failed, please retry",
		"error.token_issue_failed":       "failed to issue token",
		"error.not_found":                "resource not found",
		"error.queue_unavailable":        "task queue unavailable",
	},
}

// ResolveLocale 从请求头解析语言，默认 zh-CN。
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return DefaultLocale
	}
	raw := strings.TrimSpace(c.GetHeader("Accept-Language"))
	if raw == "" {
		return DefaultLocale
	}
	// 只取第一个语言标签
	if idx := strings.IndexAny(raw, ",;"); idx > 0 {
		raw = raw[:idx]
	}
	raw = strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(strings.ToLower(raw), "en"):
		return LocaleEnUS
	case strings.HasPrefix(strings.ToLower(raw), "zh"):
		return LocaleZhCN
	default:
		return DefaultLocale
	}
}

// T 按语言翻译消息 key，未命中时回退默认语言，再回退 key 本身。
func T(locale, key string) string {
	if catalog, ok := messages[locale]; ok {
		if msg, ok := catalog[key]; ok {
			return msg
		}
	}
	if catalog, ok := messages[DefaultLocale]; ok {
		if msg, ok := catalog[key]; ok {
			return msg
		}
	}
	return key
}

// Sprintf 翻译后格式化消息
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}
