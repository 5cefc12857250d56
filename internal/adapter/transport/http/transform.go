package http_server

import (
	"strconv"
	"time"

	"github.com/dayanaadylkhanova/travel-portal/internal/entity"
	"github.com/dayanaadylkhanova/travel-portal/internal/service"
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

const (
	noDataLabel    = "No data available"
	noRoutesLabel  = "No routes found"
	routesLabel    = "Forskjellige flyreiser"
	demoSuffix     = "Demo data (Function unavailable)"
	unavailableErr = "Data temporarily unavailable"
	demoMessage    = "Using demo data. Please check Azure Function connection."
	retryMessage   = "Please try again or contact support if the issue persists"
	moneyFormat    = "# ###,##"
	isoDay         = "2006-01-02"
)

// statsResponse maps the internal statistics onto the dashboard contract.
func statsResponse(res service.StatsResult) entity.StatsResponse {
	st := res.Stats
	rng := entity.NewDateRangeDTO(res.Range)
	return entity.StatsResponse{
		Data: entity.StatsCards{
			MostUsedAirline: entity.Card[entity.NamedStat]{
				Value:   st.PrimaryAirline.Code,
				Label:   primaryLabel(st.PrimaryAirline, "flights", service.FallbackAirlineName),
				Details: namedDetails(st.AllAirlines, service.FallbackAirlineName),
			},
			MostVisitedDestination: entity.Card[entity.NamedStat]{
				Value:   st.PrimaryDestination.Code,
				Label:   primaryLabel(st.PrimaryDestination, "visits", service.FallbackDestinationName),
				Details: namedDetails(st.AllDestinations, service.FallbackDestinationName),
			},
			UniqueRoutes: entity.Card[entity.RouteDetail]{
				Value:   strconv.Itoa(st.UniqueRouteCount),
				Label:   routesCardLabel(st.UniqueRouteCount),
				Details: routeDetails(st.TopRoutes),
			},
		},
		TotalFlights: st.TotalFlightRecords,
		DateRange:    &rng,
		TotalSum:     totalSum(st.TotalAmount, st.Currency),
		Cached:       res.Cached,
	}
}

func primaryLabel(p entity.NamedStat, unit string, fallback func(string) (string, bool)) string {
	if p.Count == 0 {
		return noDataLabel
	}
	return displayName(p, fallback) + "\n" + humanize.Comma(int64(p.Count)) + " " + unit
}

// displayName prefers a resolved name that differs from the code.
func displayName(s entity.NamedStat, fallback func(string) (string, bool)) string {
	if s.Name != "" && s.Name != s.Code {
		return s.Name
	}
	if n, ok := fallback(s.Code); ok {
		return n
	}
	return s.Code
}

func namedDetails(stats []entity.NamedStat, fallback func(string) (string, bool)) []entity.NamedStat {
	out := make([]entity.NamedStat, len(stats))
	for i, s := range stats {
		s.Name = displayName(s, fallback)
		out[i] = s
	}
	return out
}

func routesCardLabel(n int) string {
	if n == 0 {
		return noRoutesLabel
	}
	return routesLabel
}

func routeDetails(routes []entity.RouteStat) []entity.RouteDetail {
	out := make([]entity.RouteDetail, len(routes))
	for i, r := range routes {
		d := entity.RouteDetail{Route: r.Route, From: r.Origin, To: r.Destination, Frequency: r.Frequency}
		if !r.LastUsed.IsZero() {
			d.LastUsed = r.LastUsed.UTC().Format(isoDay)
		}
		out[i] = d
	}
	return out
}

func totalSum(amount decimal.Decimal, currency string) *entity.TotalSum {
	return &entity.TotalSum{
		Value:          amount.StringFixed(2),
		Currency:       currency,
		FormattedValue: currency + " " + humanize.FormatFloat(moneyFormat, amount.InexactFloat64()),
	}
}

// demoStatsResponse is served when the data backend is unreachable so the
// dashboard still has something to render. It is always flagged as demo.
func demoStatsResponse(rng entity.DateRange) entity.StatsResponse {
	dto := entity.NewDateRangeDTO(rng)
	return entity.StatsResponse{
		Data: entity.StatsCards{
			MostUsedAirline: entity.Card[entity.NamedStat]{
				Value:   "WF",
				Label:   "Widerøe\n" + demoSuffix,
				Details: []entity.NamedStat{{Code: "WF", Name: "Widerøe", Count: 24, Percentage: 45}},
			},
			MostVisitedDestination: entity.Card[entity.NamedStat]{
				Value:   "OSL",
				Label:   "Oslo Airport\n" + demoSuffix,
				Details: []entity.NamedStat{{Code: "OSL", Name: "Oslo Airport", Count: 42, Percentage: 38}},
			},
			UniqueRoutes: entity.Card[entity.RouteDetail]{
				Value:   "147",
				Label:   demoSuffix,
				Details: []entity.RouteDetail{},
			},
		},
		DateRange: &dto,
		IsDemo:    true,
		Error:     unavailableErr,
		Message:   demoMessage,
	}
}

func filesResponse(res service.FilesResult) entity.FilesResponse {
	rng := entity.NewDateRangeDTO(res.Range)
	files := res.Files
	if files == nil {
		files = []entity.FileInfo{}
	}
	return entity.FilesResponse{
		Files:       files,
		CompanyName: res.CompanyName,
		TotalFiles:  len(files),
		DateRange:   &rng,
		Cached:      res.Cached,
	}
}

func unavailableFilesResponse(rng entity.DateRange) entity.FilesResponse {
	dto := entity.NewDateRangeDTO(rng)
	return entity.FilesResponse{
		Files:     []entity.FileInfo{},
		DateRange: &dto,
		Error:     unavailableErr,
		Message:   retryMessage,
	}
}

func previewResponse(res service.PreviewResult) entity.PreviewResponse {
	rows := make([]map[string]any, 0, len(res.Rows))
	for _, l := range res.Rows {
		rows = append(rows, rowMap(res.Columns, l.Values))
	}
	return entity.PreviewResponse{
		Preview:          rows,
		Columns:          res.Columns,
		TotalPreviewRows: len(rows),
		TotalRecords:     res.TotalRecords,
		AccountNo:        res.AccountNo,
		DateRange:        entity.NewDateRangeDTO(res.Range),
	}
}

func rowMap(cols []string, vals []any) map[string]any {
	m := make(map[string]any, len(cols))
	for i, c := range cols {
		if i < len(vals) {
			m[c] = vals[i]
		} else {
			m[c] = nil
		}
	}
	return m
}

func functionStatsPayload(res service.StatsResult) entity.FunctionStatsPayload {
	return entity.FunctionStatsPayload{
		Stats:        res.Stats,
		TotalFlights: res.Stats.TotalFlightRecords,
		DateRange:    entity.NewDateRangeDTO(res.Range),
		Cached:       res.Cached,
	}
}

func timestamp(now time.Time) string { return now.UTC().Format(time.RFC3339) }
