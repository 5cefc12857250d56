package service

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/dayanaadylkhanova/travel-portal/internal/entity"
	"github.com/dayanaadylkhanova/travel-portal/internal/metrics"
	"go.uber.org/zap"
)

// NameResolver maps codes to display names: reference store, then the
// static table, then the code itself. It never fails.
type NameResolver struct {
	log          *zap.Logger
	airlines     NameStore
	destinations NameStore // optional
	timeout      time.Duration
}

func NewNameResolver(log *zap.Logger, airlines, destinations NameStore, timeout time.Duration) *NameResolver {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &NameResolver{log: log, airlines: airlines, destinations: destinations, timeout: timeout}
}

func (r *NameResolver) ResolveAirlines(ctx context.Context, codes []string) map[string]string {
	return r.resolve(ctx, "airline", r.airlines, FallbackAirlineName, codes)
}

func (r *NameResolver) ResolveDestinations(ctx context.Context, codes []string) map[string]string {
	return r.resolve(ctx, "destination", r.destinations, FallbackDestinationName, codes)
}

func (r *NameResolver) resolve(
	ctx context.Context,
	kind string,
	store NameStore,
	fallback func(string) (string, bool),
	codes []string,
) map[string]string {
	uniq := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		c = normCode(c)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		uniq = append(uniq, c)
	}

	ref := r.lookup(ctx, kind, store, uniq)

	out := make(map[string]string, len(uniq))
	for _, c := range uniq {
		if n := strings.TrimSpace(ref[c]); n != "" {
			out[c] = n
			continue
		}
		if n, ok := fallback(c); ok {
			out[c] = n
			continue
		}
		out[c] = c
	}
	return out
}

// lookup issues one batched query for all codes; errors degrade to an empty map.
func (r *NameResolver) lookup(ctx context.Context, kind string, store NameStore, codes []string) map[string]string {
	if store == nil || len(codes) == 0 {
		metrics.NameLookups.WithLabelValues("skipped").Inc()
		return nil
	}
	lctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	names, err := store.LookupNames(lctx, codes)
	if err != nil {
		metrics.NameLookups.WithLabelValues("error").Inc()
		r.log.Warn("name lookup failed, using fallback table",
			zap.String("kind", kind), zap.Strings("codes", codes), zap.Error(err))
		return nil
	}
	metrics.NameLookups.WithLabelValues("ok").Inc()

	ref := make(map[string]string, len(names))
	for k, v := range names {
		ref[normCode(k)] = v
	}
	return ref
}

// Apply returns a copy of res with airline and destination names filled in.
func (r *NameResolver) Apply(ctx context.Context, res entity.StatisticsResult) entity.StatisticsResult {
	airlines := r.ResolveAirlines(ctx, statCodes(res.AllAirlines))
	destinations := r.ResolveDestinations(ctx, statCodes(res.AllDestinations))

	out := res
	out.AllAirlines = withNames(res.AllAirlines, airlines)
	out.AllDestinations = withNames(res.AllDestinations, destinations)
	out.PrimaryAirline = primary(out.AllAirlines)
	out.PrimaryDestination = primary(out.AllDestinations)
	out.TopRoutes = slices.Clone(res.TopRoutes)
	return out
}

func statCodes(stats []entity.NamedStat) []string {
	out := make([]string, len(stats))
	for i, s := range stats {
		out[i] = s.Code
	}
	return out
}

func withNames(stats []entity.NamedStat, names map[string]string) []entity.NamedStat {
	out := make([]entity.NamedStat, len(stats))
	for i, s := range stats {
		if n, ok := names[s.Code]; ok {
			s.Name = n
		}
		out[i] = s
	}
	return out
}
