package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(httpRequestsTotal) }

var httpRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests served, labeled by route pattern and status code.",
	},
	[]string{"route", "code"},
)

func IncHTTPRequest(route, code string) {
	httpRequestsTotal.WithLabelValues(route, code).Inc()
}
