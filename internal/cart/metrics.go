package cart

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var mutationCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "bookstore_cart_mutations_total",
		Help: "Cart mutations by operation and result.",
	},
	[]string{"operation", "result"},
)

func countMutation(operation string, ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	mutationCounter.WithLabelValues(operation, result).Inc()
}
