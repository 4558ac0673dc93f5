package api

import "github.com/prometheus/client_golang/prometheus"

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appkit_api_requests_total",
			Help: "API requests by method and response status class",
		},
		[]string{"method", "status"},
	)

	requestRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "appkit_api_request_retries_total",
			Help: "Requests retried after a 401-triggered token refresh",
		},
	)

	refreshesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appkit_token_refreshes_total",
			Help: "Token refresh cycles by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal, requestRetries, refreshesTotal)
}
