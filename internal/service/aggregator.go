package service

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/dayanaadylkhanova/travel-portal/internal/entity"
	"github.com/shopspring/decimal"
)

const (
	// DefaultCurrency is used when no flight line names a currency.
	DefaultCurrency = "NOK"
	maxTopRoutes    = 20
)

// counter counts codes and remembers first-seen order for stable ties.
type counter struct {
	order  []string
	counts map[string]int
}

func newCounter() *counter { return &counter{counts: make(map[string]int)} }

func (c *counter) inc(code string) {
	if _, ok := c.counts[code]; !ok {
		c.order = append(c.order, code)
	}
	c.counts[code]++
}

// sorted returns counts by count desc, ties by first appearance.
func (c *counter) sorted() []entity.CodeCount {
	out := make([]entity.CodeCount, len(c.order))
	for i, code := range c.order {
		out[i] = entity.CodeCount{Code: code, Count: c.counts[code]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

func normCode(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

// Aggregate computes statistics over flight lines. Names are left equal to
// the codes; NameResolver fills them in. A nil slice is a programmer error.
func Aggregate(flights []entity.InvoiceLine) (entity.StatisticsResult, error) {
	if flights == nil {
		return entity.StatisticsResult{}, ErrNilInput
	}

	airlines := newCounter()
	destinations := newCounter()
	routes := newCounter()
	legs := make(map[string][2]string)
	lastUsed := make(map[string]time.Time)
	total := decimal.Zero
	currency := ""

	for _, f := range flights {
		if c := normCode(f.CarrierCode); c != "" {
			airlines.inc(c)
		}
		from, to := normCode(f.OriginCode), normCode(f.DestinationCode)
		if from != "" {
			destinations.inc(from)
		}
		if to != "" {
			destinations.inc(to)
		}
		if from != "" && to != "" {
			key := from + "-" + to
			routes.inc(key)
			legs[key] = [2]string{from, to}
			if f.InvoiceDate.After(lastUsed[key]) {
				lastUsed[key] = f.InvoiceDate
			}
		}
		if amt, ok := parseAmount(f.Amount); ok {
			total = total.Add(amt)
		}
		if currency == "" {
			currency = strings.TrimSpace(f.Currency)
		}
	}
	if currency == "" {
		currency = DefaultCurrency
	}

	n := len(flights)
	res := entity.StatisticsResult{
		AllAirlines:        namedStats(airlines.sorted(), n),
		AllDestinations:    namedStats(destinations.sorted(), n),
		TotalAmount:        total,
		Currency:           currency,
		TotalFlightRecords: n,
	}
	res.PrimaryAirline = primary(res.AllAirlines)
	res.PrimaryDestination = primary(res.AllDestinations)

	rs := routes.sorted()
	res.UniqueRouteCount = len(rs)
	if len(rs) > maxTopRoutes {
		rs = rs[:maxTopRoutes]
	}
	res.TopRoutes = make([]entity.RouteStat, len(rs))
	for i, r := range rs {
		l := legs[r.Code]
		res.TopRoutes[i] = entity.RouteStat{
			Route:       r.Code,
			Origin:      l[0],
			Destination: l[1],
			Frequency:   r.Count,
			LastUsed:    lastUsed[r.Code],
		}
	}
	return res, nil
}

func namedStats(counts []entity.CodeCount, total int) []entity.NamedStat {
	out := make([]entity.NamedStat, len(counts))
	for i, c := range counts {
		out[i] = entity.NamedStat{
			Code:       c.Code,
			Name:       c.Code,
			Count:      c.Count,
			Percentage: Percentage(c.Count, total),
		}
	}
	return out
}

func primary(stats []entity.NamedStat) entity.NamedStat {
	if len(stats) == 0 {
		return entity.NoDataStat
	}
	return stats[0]
}

// Percentage is round(count/total*100) clamped to [0,100]; 0 when total is 0.
func Percentage(count, total int) int {
	if total <= 0 || count <= 0 {
		return 0
	}
	p := int(math.Round(float64(count) / float64(total) * 100))
	if p > 100 {
		return 100
	}
	return p
}

func parseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
