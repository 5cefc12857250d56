package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/dayanaadylkhanova/travel-portal/internal/cache"
	"github.com/dayanaadylkhanova/travel-portal/internal/entity"
	"github.com/dayanaadylkhanova/travel-portal/internal/metrics"
	"go.uber.org/zap"
)

// Action is the legacy name of a data-access operation.
type Action string

const (
	ActionStats    Action = "getDynamicStats"
	ActionFiles    Action = "getAvailableFiles"
	ActionPreview  Action = "previewFile"
	ActionDownload Action = "downloadFile"

	previewRows = 20
)

// Request is one of StatsRequest, FilesRequest, PreviewRequest, DownloadRequest.
type Request interface {
	Action() Action
	sealedRequest()
}

type StatsRequest struct {
	Domain string
	Range  entity.DateRange
}

type FilesRequest struct {
	Domain string
	Range  entity.DateRange
}

type PreviewRequest struct {
	Domain    string
	AccountNo string
	Range     entity.DateRange
}

type DownloadRequest struct {
	Domain    string
	AccountNo string
	Range     entity.DateRange
}

func (StatsRequest) Action() Action    { return ActionStats }
func (FilesRequest) Action() Action    { return ActionFiles }
func (PreviewRequest) Action() Action  { return ActionPreview }
func (DownloadRequest) Action() Action { return ActionDownload }

func (StatsRequest) sealedRequest()    {}
func (FilesRequest) sealedRequest()    {}
func (PreviewRequest) sealedRequest()  {}
func (DownloadRequest) sealedRequest() {}

// Result is one of StatsResult, FilesResult, PreviewResult, DownloadResult.
type Result interface{ sealedResult() }

type StatsResult struct {
	Stats  entity.StatisticsResult
	Range  entity.DateRange
	Cached bool
}

type FilesResult struct {
	CompanyName string
	Files       []entity.FileInfo
	Range       entity.DateRange
	Cached      bool
}

type PreviewResult struct {
	AccountNo    string
	Columns      []string
	Rows         []entity.InvoiceLine
	TotalRecords int
	Range        entity.DateRange
}

type DownloadResult struct {
	AccountNo string
	FileName  string
	Columns   []string
	Rows      []entity.InvoiceLine
	Range     entity.DateRange
}

func (StatsResult) sealedResult()    {}
func (FilesResult) sealedResult()    {}
func (PreviewResult) sealedResult()  {}
func (DownloadResult) sealedResult() {}

// ParseRequest maps the legacy action/query form onto a typed request.
func ParseRequest(q url.Values, now time.Time, windowYears int) (Request, error) {
	domain := strings.TrimSpace(q.Get("domain"))
	if domain == "" {
		return nil, fmt.Errorf("%w: company domain is required", ErrInvalidRequest)
	}
	rng, err := ParseDateRange(q.Get("fromDate"), q.Get("toDate"), now, windowYears)
	if err != nil {
		return nil, err
	}
	accno := strings.TrimSpace(q.Get("accno"))

	switch Action(q.Get("action")) {
	case ActionStats:
		return StatsRequest{Domain: domain, Range: rng}, nil
	case ActionFiles:
		return FilesRequest{Domain: domain, Range: rng}, nil
	case ActionPreview:
		if accno == "" {
			return nil, fmt.Errorf("%w: accno required", ErrInvalidRequest)
		}
		return PreviewRequest{Domain: domain, AccountNo: accno, Range: rng}, nil
	case ActionDownload:
		if accno == "" {
			return nil, fmt.Errorf("%w: accno required", ErrInvalidRequest)
		}
		return DownloadRequest{Domain: domain, AccountNo: accno, Range: rng}, nil
	default:
		return nil, fmt.Errorf("%w: invalid action %q", ErrInvalidRequest, q.Get("action"))
	}
}

type FunctionConfig struct {
	CacheTTL        time.Duration
	FetchTimeout    time.Duration
	DownloadTimeout time.Duration
	// ComputeTimeout bounds one shared stats or files computation, which
	// outlives the request that started it.
	ComputeTimeout  time.Duration
}

// Function is the data-access layer: authorization, per-account export,
// aggregation and name resolution behind the response cache.
type Function struct {
	log        *zap.Logger
	authorizer *Authorizer
	fetcher    *Fetcher
	names      *NameResolver
	cache      ResponseCache
	breaker    *Breaker
	cfg        FunctionConfig
}

func NewFunction(
	log *zap.Logger,
	authorizer *Authorizer,
	fetcher *Fetcher,
	names *NameResolver,
	rc ResponseCache,
	breaker *Breaker,
	cfg FunctionConfig,
) *Function {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 30 * time.Second
	}
	if cfg.DownloadTimeout <= 0 {
		cfg.DownloadTimeout = 120 * time.Second
	}
	if cfg.ComputeTimeout <= 0 {
		cfg.ComputeTimeout = 2 * time.Minute
	}
	return &Function{
		log:        log,
		authorizer: authorizer,
		fetcher:    fetcher,
		names:      names,
		cache:      rc,
		breaker:    breaker,
		cfg:        cfg,
	}
}

// Dispatch routes a typed request to its handler.
func (f *Function) Dispatch(ctx context.Context, req Request) (Result, error) {
	var (
		res Result
		err error
	)
	switch r := req.(type) {
	case StatsRequest:
		res, err = f.Stats(ctx, r)
	case FilesRequest:
		res, err = f.Files(ctx, r)
	case PreviewRequest:
		res, err = f.Preview(ctx, r)
	case DownloadRequest:
		res, err = f.Download(ctx, r)
	default:
		panic(fmt.Sprintf("service: unhandled request type %T", req))
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.FunctionRequests.WithLabelValues(string(req.Action()), outcome).Inc()
	return res, err
}

func (f *Function) Stats(ctx context.Context, req StatsRequest) (StatsResult, error) {
	key := cacheKey(ActionStats, req.Domain, req.Range)
	v, cached, err := f.cache.GetOrCompute(ctx, key, f.cfg.CacheTTL, func() (any, bool, error) {
		cctx, cancel := f.detach(ctx)
		defer cancel()
		complete := false
		v, err := f.guard(func() (any, error) {
			stats, ok, err := f.computeStats(cctx, req)
			complete = ok
			return stats, err
		})
		return v, complete, err
	})
	if err != nil {
		return StatsResult{}, err
	}
	stats := v.(entity.StatisticsResult)
	if cached {
		f.log.Debug("stats served from cache", zap.String("domain", req.Domain))
	}
	return StatsResult{Stats: stats, Range: req.Range, Cached: cached}, nil
}

// computeStats reports complete=false when some account could not be
// exported; such a result is served but not cached.
func (f *Function) computeStats(ctx context.Context, req StatsRequest) (entity.StatisticsResult, bool, error) {
	grant, err := f.authorizer.Authorize(ctx, req.Domain)
	if err != nil {
		return entity.StatisticsResult{}, false, err
	}

	results := f.fetcher.Fetch(ctx, grant.AccountNumbers, req.Range)
	flights := FilterFlights(results.Lines())
	f.log.Info("flight records collected",
		zap.String("domain", req.Domain),
		zap.Int("accounts", len(results)),
		zap.Int("failed_accounts", results.Failed()),
		zap.Int("flights", len(flights)))
	if err := interrupted(ctx, req.Domain); err != nil {
		return entity.StatisticsResult{}, false, err
	}

	raw, err := Aggregate(flights)
	if err != nil {
		return entity.StatisticsResult{}, false, err
	}
	named := f.names.Apply(ctx, raw)
	if err := interrupted(ctx, req.Domain); err != nil {
		return entity.StatisticsResult{}, false, err
	}
	return named, results.Failed() == 0, nil
}

type filesValue struct {
	company string
	files   []entity.FileInfo
}

func (f *Function) Files(ctx context.Context, req FilesRequest) (FilesResult, error) {
	key := cacheKey(ActionFiles, req.Domain, req.Range)
	v, cached, err := f.cache.GetOrCompute(ctx, key, f.cfg.CacheTTL, func() (any, bool, error) {
		cctx, cancel := f.detach(ctx)
		defer cancel()
		complete := false
		v, err := f.guard(func() (any, error) {
			fv, ok, err := f.computeFiles(cctx, req)
			complete = ok
			return fv, err
		})
		return v, complete, err
	})
	if err != nil {
		return FilesResult{}, err
	}
	fv := v.(filesValue)
	return FilesResult{CompanyName: fv.company, Files: fv.files, Range: req.Range, Cached: cached}, nil
}

func (f *Function) computeFiles(ctx context.Context, req FilesRequest) (filesValue, bool, error) {
	grant, err := f.authorizer.Authorize(ctx, req.Domain)
	if err != nil {
		return filesValue{}, false, err
	}
	results := f.fetcher.Fetch(ctx, grant.AccountNumbers, req.Range)
	if err := interrupted(ctx, req.Domain); err != nil {
		return filesValue{}, false, err
	}

	files := make([]entity.FileInfo, 0, len(results))
	for _, r := range results {
		if r.Err != nil || len(r.Set.Lines) == 0 {
			continue
		}
		files = append(files, fileInfo(r.AccountNumber, r.Set.Lines))
	}
	return filesValue{company: grant.CompanyName, files: files}, results.Failed() == 0, nil
}

func fileInfo(accno string, lines []entity.InvoiceLine) entity.FileInfo {
	earliest, latest := lines[0].InvoiceDate, lines[0].InvoiceDate
	for _, l := range lines[1:] {
		if l.InvoiceDate.Before(earliest) {
			earliest = l.InvoiceDate
		}
		if l.InvoiceDate.After(latest) {
			latest = l.InvoiceDate
		}
	}
	return entity.FileInfo{
		ID:          accno + "-data",
		Name:        fmt.Sprintf("%s_InvoiceData_%s.csv", accno, earliest.UTC().Format("2006-01-02")),
		Category:    "Invoice Data",
		Size:        fmt.Sprintf("%dKB", int(math.Round(float64(len(lines))*0.8))),
		LastUpdated: latest,
		AccountNo:   accno,
		RecordCount: len(lines),
		Owner:       "Company",
	}
}

func (f *Function) Preview(ctx context.Context, req PreviewRequest) (PreviewResult, error) {
	v, err := f.guard(func() (any, error) {
		if _, err := f.authorizer.Verify(ctx, req.Domain, req.AccountNo); err != nil {
			return nil, err
		}
		return f.exportOne(ctx, req.AccountNo, req.Range, f.cfg.FetchTimeout)
	})
	if err != nil {
		return PreviewResult{}, err
	}
	set := v.(entity.InvoiceSet)
	rows := set.Lines
	if len(rows) > previewRows {
		rows = rows[:previewRows]
	}
	return PreviewResult{
		AccountNo:    req.AccountNo,
		Columns:      set.Columns,
		Rows:         rows,
		TotalRecords: len(set.Lines),
		Range:        req.Range,
	}, nil
}

func (f *Function) Download(ctx context.Context, req DownloadRequest) (DownloadResult, error) {
	v, err := f.guard(func() (any, error) {
		if _, err := f.authorizer.Verify(ctx, req.Domain, req.AccountNo); err != nil {
			return nil, err
		}
		return f.exportOne(ctx, req.AccountNo, req.Range, f.cfg.DownloadTimeout)
	})
	if err != nil {
		return DownloadResult{}, err
	}
	set := v.(entity.InvoiceSet)
	return DownloadResult{
		AccountNo: req.AccountNo,
		FileName:  fmt.Sprintf("%s_InvoiceData_%s_%s.csv", req.AccountNo, req.Range.FromISO(), req.Range.ToISO()),
		Columns:   set.Columns,
		Rows:      set.Lines,
		Range:     req.Range,
	}, nil
}

// exportOne is used for single-account operations where the export is the
// whole answer, so its failure is fatal.
func (f *Function) exportOne(ctx context.Context, accno string, rng entity.DateRange, timeout time.Duration) (entity.InvoiceSet, error) {
	set, err := f.fetcher.FetchOne(ctx, accno, rng, timeout)
	if err != nil {
		return entity.InvoiceSet{}, fmt.Errorf("%w: export for account %s: %v", ErrUpstream, accno, err)
	}
	return set, nil
}

// detach runs a shared computation independently of the request that
// started it, so a disconnecting caller cannot truncate it for the others.
func (f *Function) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), f.cfg.ComputeTimeout)
}

// interrupted turns an expired computation into an upstream error so that
// per-account failures it caused are never aggregated into a result.
func interrupted(ctx context.Context, domain string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: computation for %s interrupted: %w", ErrUpstream, domain, err)
	}
	return nil
}

func (f *Function) guard(fn func() (any, error)) (any, error) {
	if f.breaker == nil {
		return fn()
	}
	return f.breaker.Execute(fn)
}

func cacheKey(a Action, domain string, rng entity.DateRange) string {
	return cache.Key(string(a), strings.ToLower(domain), rng.FromISO(), rng.ToISO())
}

// IsFatal reports whether err must be surfaced to the caller as a hard
// failure rather than degraded to fallback data.
func IsFatal(err error) bool {
	return errors.Is(err, ErrAuthorizationDenied) ||
		errors.Is(err, ErrConfiguration) ||
		errors.Is(err, ErrAccessDenied) ||
		errors.Is(err, ErrInvalidRequest)
}
