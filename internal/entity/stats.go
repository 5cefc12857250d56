package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CodeCount is an occurrence count for one normalized code.
type CodeCount struct {
	Code  string
	Count int
}

type NamedStat struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

type RouteStat struct {
	Route       string    `json:"route"`
	Origin      string    `json:"from"`
	Destination string    `json:"to"`
	Frequency   int       `json:"frequency"`
	LastUsed    time.Time `json:"lastUsed"` // latest invoice date on the route
}

// StatisticsResult is built once per computation and never mutated after.
type StatisticsResult struct {
	PrimaryAirline     NamedStat       `json:"primaryAirline"`
	AllAirlines        []NamedStat     `json:"allAirlines"`
	PrimaryDestination NamedStat       `json:"primaryDestination"`
	AllDestinations    []NamedStat     `json:"allDestinations"`
	UniqueRouteCount   int             `json:"uniqueRouteCount"`
	TopRoutes          []RouteStat     `json:"topRoutes"`
	TotalAmount        decimal.Decimal `json:"totalAmount"`
	Currency           string          `json:"currency"`
	TotalFlightRecords int             `json:"totalFlightRecords"`
}

// NoDataStat is the primary stat used when nothing was counted.
var NoDataStat = NamedStat{Code: "N/A", Name: "no data"}
