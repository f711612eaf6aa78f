package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CartFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_fetches_total",
		Help: "Total number of cart snapshot fetches",
	}, []string{"result"}) // hit, miss, error

	CartStaleResponsesDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cart_stale_responses_discarded_total",
		Help: "Total number of superseded cart fetch responses discarded",
	})

	CartMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Total number of cart mutations",
	}, []string{"op", "result"}) // add/update/remove, ok/error

	CartMutationConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cart_mutation_conflicts_total",
		Help: "Total number of mutations refused because the row was in flight",
	})

	CheckoutResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_resolutions_total",
		Help: "Total number of checkout item-set resolutions",
	}, []string{"path", "result"}) // cart/buy_now, ok/empty/error

	OrdersSubmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_submitted_total",
		Help: "Total number of order submission attempts that reached the upstream",
	})

	OrdersSucceededTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_succeeded_total",
		Help: "Total number of orders accepted by the marketplace",
	})

	OrdersRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_rejected_total",
		Help: "Total number of order submissions rejected",
	}, []string{"reason"}) // validation, empty_items, in_flight, upstream

	AddressMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "address_mutations_total",
		Help: "Total number of address create/update/delete operations",
	}, []string{"op", "result"})

	SessionsExpiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_sessions_expired_total",
		Help: "Total number of checkout sessions swept after their TTL",
	})

	UpstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upstream_request_duration_seconds",
		Help:    "Latency of marketplace API requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
