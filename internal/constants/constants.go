package constants

// 拼团状态常量
const (
	GroupStatusActive    = "active"
	GroupStatusPickup    = "pickup"
	GroupStatusValidated = "validated"
	GroupStatusCompleted = "completed"
	GroupStatusExpired   = "expired"
)

// 预订状态常量
const (
	ReservationStatusActive    = "active"
	ReservationStatusCancelled = "cancelled"
)

// 拼团事件操作方常量
const (
	GroupActorConsumer  = "consumer"
	GroupActorStore     = "store"
	GroupActorScheduler = "scheduler"
	GroupActorSystem    = "system"
)

// 队列名称常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 异步任务类型常量
const (
	TaskGroupExpire = "group:expire"
)

// 鉴权角色常量
const (
	RoleStore    = "store"
	RolePlatform = "platform"
)

// 编号前缀常量
const (
	GroupNoPrefix = "PT"
	VoucherPrefix = "PTQR"
)
