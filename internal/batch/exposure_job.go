package batch

import (
	"context"
	"credit-engine/internal/domain/credit"
	"credit-engine/internal/event"
	"credit-engine/internal/infrastructure/monitoring"
	"credit-engine/internal/pkg/apperrors"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
)

const defaultWorkers = 8

type ActiveCustomerLister interface {
	ListCustomerIDsWithActiveLoans(ctx context.Context, asOf time.Time) ([]int64, error)
}

type ExposureReader interface {
	Exposure(ctx context.Context, customerID int64) (*credit.ExposureReport, error)
}

// ExposureSnapshotJob recomputes every active customer's exposure against the
// approved limit, exports the totals as gauges and raises an event for each
// customer found over the limit.
type ExposureSnapshotJob struct {
	loans     ActiveCustomerLister
	exposures ExposureReader
	publisher event.EventPublisher
	workers   int
	logger    *slog.Logger
	now       func() time.Time
}

func NewExposureSnapshotJob(
	loans ActiveCustomerLister,
	exposures ExposureReader,
	publisher event.EventPublisher,
	logger *slog.Logger,
) *ExposureSnapshotJob {
	if loans == nil || exposures == nil || publisher == nil || logger == nil {
		panic("ExposureSnapshotJob dependencies cannot be nil")
	}
	return &ExposureSnapshotJob{
		loans:     loans,
		exposures: exposures,
		publisher: publisher,
		workers:   defaultWorkers,
		logger:    logger.With("job", "ExposureSnapshot"),
		now:       time.Now,
	}
}

func (j *ExposureSnapshotJob) Run(ctx context.Context) error {
	startTime := j.now()
	j.logger.InfoContext(ctx, "Starting exposure snapshot job.")

	customerIDs, err := j.loans.ListCustomerIDsWithActiveLoans(ctx, startTime)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to list customers with active loans, aborting job.", slog.Any("error", err))
		return fmt.Errorf("cannot run job, failed to list active customers: %w", err)
	}
	j.logger.InfoContext(ctx, "Fetched customers with active loans.", slog.Int("count", len(customerIDs)))

	var (
		wg                             sync.WaitGroup
		mu                             sync.Mutex
		processed, overLimit, errCount atomic.Int32
		totalExposure                  = decimal.Zero
	)
	ids := make(chan int64)

	for w := 0; w < j.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for customerID := range ids {
				logCtx := j.logger.With(slog.Int64("customerID", customerID))

				report, expErr := j.exposures.Exposure(ctx, customerID)
				if expErr != nil {
					if errors.Is(expErr, apperrors.ErrNotFound) {
						logCtx.WarnContext(ctx, "Customer vanished during exposure snapshot", slog.Any("error", expErr))
					} else {
						logCtx.ErrorContext(ctx, "Failed to compute exposure", slog.Any("error", expErr))
						errCount.Add(1)
					}
					continue
				}

				mu.Lock()
				totalExposure = totalExposure.Add(report.Exposure)
				mu.Unlock()
				processed.Add(1)

				if !report.OverLimit {
					continue
				}
				overLimit.Add(1)
				logCtx.WarnContext(ctx, "Customer exposure exceeds approved limit",
					slog.String("exposure", report.Exposure.String()),
					slog.String("approvedLimit", report.ApprovedLimit.String()),
				)
				pubErr := j.publisher.PublishExposureExceeded(ctx, event.ExposureExceededEvent{
					Timestamp:     j.now(),
					CustomerID:    customerID,
					Exposure:      report.Exposure,
					ApprovedLimit: report.ApprovedLimit,
					ActiveLoans:   report.ActiveLoans,
				})
				if pubErr != nil {
					logCtx.ErrorContext(ctx, "Failed to publish exposure exceeded event", slog.Any("error", pubErr))
				}
			}
		}()
	}

feed:
	for _, id := range customerIDs {
		select {
		case ids <- id:
		case <-ctx.Done():
			break feed
		}
	}
	close(ids)
	wg.Wait()

	total, _ := totalExposure.Float64()
	monitoring.RecordExposureSnapshot(int(processed.Load()), int(overLimit.Load()), total)

	summaryLog := j.logger.With(
		slog.Duration("duration", j.now().Sub(startTime)),
		slog.Int("customers_with_active_loans", len(customerIDs)),
		slog.Int("customers_processed", int(processed.Load())),
		slog.Int("customers_over_limit", int(overLimit.Load())),
		slog.String("total_exposure", totalExposure.String()),
		slog.Int("errors_encountered", int(errCount.Load())),
	)

	if ctxErr := ctx.Err(); ctxErr != nil {
		summaryLog.WarnContext(ctx, "Exposure snapshot job interrupted.", slog.Any("error", ctxErr))
		return fmt.Errorf("exposure snapshot interrupted: %w", ctxErr)
	}
	if n := errCount.Load(); n > 0 {
		summaryLog.WarnContext(ctx, "Exposure snapshot job finished with errors.")
		return fmt.Errorf("job completed with %d errors", n)
	}
	summaryLog.InfoContext(ctx, "Exposure snapshot job finished successfully.")
	return nil
}
