package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 生成门控各阶段的Prometheus指标
var (
	// CacheLookups 精确缓存查询计数，result: hit / miss
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roadmap_cache_lookups_total",
			Help: "Total number of exact-match result cache lookups",
		},
		[]string{"result"},
	)

	// SemanticMatches 语义匹配结果计数，result: reused / no_match
	SemanticMatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roadmap_semantic_matches_total",
			Help: "Total number of semantic similarity search outcomes",
		},
		[]string{"result"},
	)

	// Generations 生成器调用计数，status: success / failure
	Generations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roadmap_generations_total",
			Help: "Total number of generator invocations",
		},
		[]string{"status"},
	)

	// ResolveDuration 一次resolve全流程耗时
	ResolveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "roadmap_resolve_duration_seconds",
			Help:    "Duration of the full roadmap resolve pipeline",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Handler 返回Prometheus指标的HTTP处理器
func Handler() http.Handler {
	return promhttp.Handler()
}
