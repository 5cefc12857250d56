package service

import (
	"context"
	"time"

	"github.com/dayanaadylkhanova/travel-portal/internal/entity"
	"github.com/dayanaadylkhanova/travel-portal/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// AccountResult is the outcome of one per-account export call.
type AccountResult struct {
	AccountNumber string
	Set           entity.InvoiceSet
	Err           error
}

// AccountResults keeps the order of the grant's account list.
type AccountResults []AccountResult

// Lines merges the lines of every successful account.
func (rs AccountResults) Lines() []entity.InvoiceLine {
	n := 0
	for _, r := range rs {
		n += len(r.Set.Lines)
	}
	out := make([]entity.InvoiceLine, 0, n)
	for _, r := range rs {
		if r.Err == nil {
			out = append(out, r.Set.Lines...)
		}
	}
	return out
}

func (rs AccountResults) Failed() int {
	n := 0
	for _, r := range rs {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// Fetcher calls the record source once per account with bounded fan-out.
type Fetcher struct {
	log         *zap.Logger
	source      RecordSource
	concurrency int
	timeout     time.Duration
}

func NewFetcher(log *zap.Logger, source RecordSource, concurrency int, timeout time.Duration) *Fetcher {
	if concurrency <= 0 {
		concurrency = 5
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{log: log, source: source, concurrency: concurrency, timeout: timeout}
}

// Fetch never fails as a whole: an account that errors or times out
// contributes zero lines and is reported in its AccountResult.
func (f *Fetcher) Fetch(ctx context.Context, accounts []string, rng entity.DateRange) AccountResults {
	results := make(AccountResults, len(accounts))

	var g errgroup.Group
	g.SetLimit(f.concurrency)
	for i, accno := range accounts {
		i, accno := i, accno
		g.Go(func() error {
			set, err := f.FetchOne(ctx, accno, rng, f.timeout)
			results[i] = AccountResult{AccountNumber: accno, Set: set, Err: err}
			if err != nil {
				f.log.Warn("account export failed, skipping",
					zap.String("accno", accno), zap.Error(err))
				return nil
			}
			f.log.Debug("account export done",
				zap.String("accno", accno), zap.Int("records", len(set.Lines)))
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// FetchOne issues a single bounded call for accno.
func (f *Fetcher) FetchOne(ctx context.Context, accno string, rng entity.DateRange, timeout time.Duration) (entity.InvoiceSet, error) {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	set, err := f.source.FetchInvoiceLines(cctx, accno, rng)
	metrics.AccountFetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.AccountFetches.WithLabelValues("error").Inc()
		return entity.InvoiceSet{}, err
	}
	metrics.AccountFetches.WithLabelValues("ok").Inc()
	return set, nil
}
