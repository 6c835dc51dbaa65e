package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders created",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of failed order creations",
	}, []string{"reason"})

	OrdersCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_cancelled_total",
		Help: "Total number of cancelled orders",
	})

	CartMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Total number of cart mutations",
	}, []string{"op"})

	FavoriteTogglesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "favorite_toggles_total",
		Help: "Total number of favorite toggles",
	}, []string{"state"})

	StorageWriteFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storage_write_failures_total",
		Help: "Total number of rejected storage writes",
	}, []string{"reason"})

	StorageCorruptionsHealed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storage_corruptions_healed_total",
		Help: "Total number of corrupt payloads reset to their fallback",
	})

	CatalogQueryLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_query_latency_seconds",
		Help:    "Latency of catalog filter/sort queries",
		Buckets: prometheus.DefBuckets,
	})
)
