package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "post_manager"

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Inbound HTTP requests by route and status.",
	}, []string{"service", "method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Inbound HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"service", "method", "route"})

	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Outbound posts API calls by method and status (status=error on transport failure).",
	}, []string{"method", "status"})

	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Outbound posts API call latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})

	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "list_cache_lookups_total",
		Help:      "Post list cache lookups by result (hit, miss).",
	}, []string{"result"})

	CacheInvalidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "list_cache_invalidations_total",
		Help:      "Post list cache invalidations by origin (local, remote).",
	}, []string{"origin"})
)

// GinMiddleware 는 라우트 템플릿 기준으로 요청 수와 지연 시간을 기록한다.
func GinMiddleware(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequests.WithLabelValues(service, c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPDuration.WithLabelValues(service, c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler 는 /metrics 엔드포인트 핸들러다.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// ObserveUpstream 은 posts API 호출 1건을 기록한다. status 가 0 이면 전송 실패로 본다.
func ObserveUpstream(method string, status int, d time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	UpstreamRequests.WithLabelValues(method, label).Inc()
	UpstreamDuration.WithLabelValues(method).Observe(d.Seconds())
}
