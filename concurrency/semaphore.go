// concurrency/semaphore.go
package concurrency

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AcquireConcurrencyPermit acquires a permit to regulate the number of
// concurrent requests. It generates a unique request ID for tracking and
// blocks until a permit is available or the context is done. The permit wait
// time and total request count are recorded in the handler's metrics.
func (ch *ConcurrencyHandler) AcquireConcurrencyPermit(ctx context.Context) (uuid.UUID, error) {
	requestID := uuid.New()
	acquisitionStart := time.Now()

	select {
	case ch.sem <- struct{}{}:
		waited := time.Since(acquisitionStart)
		ch.Metrics.Lock.Lock()
		ch.Metrics.PermitWaitTime += waited
		ch.Metrics.TotalRequests++
		ch.Metrics.Lock.Unlock()

		utilized := len(ch.sem)
		ch.logger.Debug("Acquired concurrency permit",
			zap.String("RequestID", requestID.String()),
			zap.Duration("AcquisitionTime", waited),
			zap.Int("UtilizedPermits", utilized),
			zap.Int("AvailablePermits", cap(ch.sem)-utilized),
		)
		return requestID, nil

	case <-ctx.Done():
		ch.logger.Warn("Failed to acquire concurrency permit", zap.Error(ctx.Err()))
		return requestID, ctx.Err()
	}
}

// ReleaseConcurrencyPermit returns a permit back to the semaphore pool,
// allowing other requests to proceed.
func (ch *ConcurrencyHandler) ReleaseConcurrencyPermit(requestID uuid.UUID) {
	<-ch.sem

	utilized := len(ch.sem)
	ch.logger.Debug("Released concurrency permit",
		zap.String("RequestID", requestID.String()),
		zap.Int("UtilizedPermits", utilized),
		zap.Int("AvailablePermits", cap(ch.sem)-utilized),
	)
}
