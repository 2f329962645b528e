package rate_limiter

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var RateLimitExceededTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "dispatch_http_rate_limited_total",
		Help: "Requests rejected by the global HTTP rate limiter",
	},
	[]string{"method", "route"},
)
