package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 业务指标
var (
	// ReservationsTotal 预订操作计数，result 取 accepted/rejected/conflict
	ReservationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pintuan_reservations_total",
		Help: "Total reservation attempts by result.",
	}, []string{"result"})

	// RedemptionsTotal 核销操作计数，result 取 validated/rejected
	RedemptionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pintuan_redemptions_total",
		Help: "Total redemption attempts by result.",
	}, []string{"result"})

	// GroupTransitionsTotal 拼团状态流转计数，to 为目标状态
	GroupTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pintuan_group_transitions_total",
		Help: "Total group status transitions by target status.",
	}, []string{"to"})

	// ExpirySweepDuration 过期扫描耗时
	ExpirySweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pintuan_expiry_sweep_duration_seconds",
		Help:    "Duration of expiry sweep runs.",
		Buckets: prometheus.DefBuckets,
	})
)

// Handler 暴露 Prometheus 抓取端点
func Handler() http.Handler {
	return promhttp.Handler()
}
