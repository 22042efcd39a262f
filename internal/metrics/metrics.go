package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal *prometheus.CounterVec
	votesTotal        *prometheus.CounterVec
	registerOnce      sync.Once
)

// Register initializes Prometheus metrics on the default registry.
func Register() {
	registerOnce.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookclub",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests processed by the book club API.",
		}, []string{"method", "path", "status"})

		votesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookclub",
			Name:      "votes_total",
			Help:      "Total votes recorded in the ledger, per poll.",
		}, []string{"poll_id"})
	})
}

// IncRequest increments the http_requests_total counter with the given labels.
func IncRequest(method, path string, status int) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}

// IncVote increments votes_total for a poll.
func IncVote(pollID int64) {
	if votesTotal == nil {
		return
	}
	votesTotal.WithLabelValues(strconv.FormatInt(pollID, 10)).Inc()
}
