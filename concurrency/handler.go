// concurrency/handler.go
/* Package concurrency provides utilities to bound the number of in-flight
requests the client issues at once. A channel-backed semaphore hands out
permits; metrics capture request and retry volume for observability. */
package concurrency

import (
	"sync"
	"time"

	"github.com/boxtools/go-box-client/logger"
)

// ConcurrencyHandler controls the number of concurrent HTTP requests.
type ConcurrencyHandler struct {
	sem     chan struct{}
	logger  logger.Logger
	Metrics *ConcurrencyMetrics
}

// ConcurrencyMetrics captures metrics related to the client's request volume.
type ConcurrencyMetrics struct {
	TotalRequests  int64         // Total number of request attempts made
	TotalRetries   int64         // Total number of retry attempts
	PermitWaitTime time.Duration // Total time spent waiting for permits
	Lock           sync.Mutex
}

// NewConcurrencyHandler initializes a new ConcurrencyHandler with the given
// concurrency limit, logger, and metrics. The handler ensures no more than
// limit requests are in flight at the same time.
func NewConcurrencyHandler(limit int, log logger.Logger, metrics *ConcurrencyMetrics) *ConcurrencyHandler {
	if limit < 1 {
		limit = 1
	}
	if metrics == nil {
		metrics = &ConcurrencyMetrics{}
	}
	return &ConcurrencyHandler{
		sem:     make(chan struct{}, limit),
		logger:  log,
		Metrics: metrics,
	}
}

// RecordRetry increments the retry counter.
func (ch *ConcurrencyHandler) RecordRetry() {
	ch.Metrics.Lock.Lock()
	ch.Metrics.TotalRetries++
	ch.Metrics.Lock.Unlock()
}
