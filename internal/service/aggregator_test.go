package service

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/dayanaadylkhanova/travel-portal/internal/entity"
)

func flight(carrier, from, to string) entity.InvoiceLine {
	return entity.InvoiceLine{CarrierCode: carrier, OriginCode: from, DestinationCode: to}
}

func TestAggregate_NilInputIsProgrammerError(t *testing.T) {
	if _, err := Aggregate(nil); !errors.Is(err, ErrNilInput) {
		t.Fatalf("expected ErrNilInput, got %v", err)
	}
}

func TestAggregate_Empty(t *testing.T) {
	res, err := Aggregate([]entity.InvoiceLine{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := entity.NamedStat{Code: "N/A", Name: "no data", Count: 0, Percentage: 0}
	if res.PrimaryAirline != want || res.PrimaryDestination != want {
		t.Fatalf("expected placeholder primaries, got %+v / %+v", res.PrimaryAirline, res.PrimaryDestination)
	}
	if res.TotalFlightRecords != 0 || res.UniqueRouteCount != 0 {
		t.Fatalf("unexpected totals: %+v", res)
	}
	if res.Currency != DefaultCurrency || !res.TotalAmount.IsZero() {
		t.Fatalf("expected zero %s, got %s %s", DefaultCurrency, res.TotalAmount, res.Currency)
	}
}

func TestAggregate_CarrierCaseInsensitive(t *testing.T) {
	res, err := Aggregate([]entity.InvoiceLine{flight("wf", "", ""), flight(" WF ", "", "")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.AllAirlines) != 1 {
		t.Fatalf("expected one carrier, got %+v", res.AllAirlines)
	}
	if a := res.AllAirlines[0]; a.Code != "WF" || a.Count != 2 || a.Percentage != 100 {
		t.Fatalf("unexpected carrier stat %+v", a)
	}
}

func TestAggregate_DestinationsCountBothLegs(t *testing.T) {
	res, _ := Aggregate([]entity.InvoiceLine{
		flight("WF", "OSL", "BOO"),
		flight("WF", "BOO", ""),
		flight("", "", "OSL"),
	})
	got := map[string]int{}
	for _, d := range res.AllDestinations {
		got[d.Code] = d.Count
	}
	if got["OSL"] != 2 || got["BOO"] != 2 || len(got) != 2 {
		t.Fatalf("unexpected destination counts %v", got)
	}
	// OSL was seen first, so it wins the tie.
	if res.PrimaryDestination.Code != "OSL" {
		t.Fatalf("expected OSL as primary on tie, got %s", res.PrimaryDestination.Code)
	}
}

func TestAggregate_RoutesNeedBothLegs(t *testing.T) {
	res, _ := Aggregate([]entity.InvoiceLine{
		flight("WF", "osl", "boo"),
		flight("WF", "OSL", "BOO"),
		flight("SK", "OSL", ""),
		flight("SK", "", "TRD"),
	})
	if res.UniqueRouteCount != 1 {
		t.Fatalf("expected one unique route, got %d", res.UniqueRouteCount)
	}
	want := entity.RouteStat{Route: "OSL-BOO", Origin: "OSL", Destination: "BOO", Frequency: 2}
	if len(res.TopRoutes) != 1 || res.TopRoutes[0] != want {
		t.Fatalf("unexpected routes %+v", res.TopRoutes)
	}
}

func TestAggregate_TopRoutesTruncatedTo20(t *testing.T) {
	var lines []entity.InvoiceLine
	for i := 0; i < 25; i++ {
		for j := 0; j <= i; j++ {
			lines = append(lines, flight("WF", fmt.Sprintf("A%02d", i), "OSL"))
		}
	}
	res, _ := Aggregate(lines)
	if res.UniqueRouteCount != 25 {
		t.Fatalf("expected 25 unique routes, got %d", res.UniqueRouteCount)
	}
	if len(res.TopRoutes) != 20 {
		t.Fatalf("expected 20 top routes, got %d", len(res.TopRoutes))
	}
	if res.TopRoutes[0].Route != "A24-OSL" || res.TopRoutes[0].Frequency != 25 {
		t.Fatalf("unexpected top route %+v", res.TopRoutes[0])
	}
	for i := 1; i < len(res.TopRoutes); i++ {
		if res.TopRoutes[i].Frequency > res.TopRoutes[i-1].Frequency {
			t.Fatalf("routes not sorted at %d", i)
		}
	}
}

func TestAggregate_AmountAndCurrency(t *testing.T) {
	lines := []entity.InvoiceLine{
		{CarrierCode: "WF", Amount: "100.50"},
		{CarrierCode: "WF", Amount: "abc", Currency: " EUR "},
		{CarrierCode: "SK", Amount: "", Currency: "SEK"},
		{CarrierCode: "SK", Amount: "-0.50"},
	}
	res, _ := Aggregate(lines)
	if res.TotalAmount.String() != "100" {
		t.Fatalf("expected total 100, got %s", res.TotalAmount)
	}
	if res.Currency != "EUR" {
		t.Fatalf("expected first currency EUR, got %q", res.Currency)
	}
}

func TestAggregate_PercentagesAndTies(t *testing.T) {
	res, _ := Aggregate([]entity.InvoiceLine{
		flight("SK", "", ""),
		flight("WF", "", ""),
		flight("WF", "", ""),
		flight("DY", "", ""),
	})
	got := make([]string, len(res.AllAirlines))
	for i, a := range res.AllAirlines {
		got[i] = fmt.Sprintf("%s:%d:%d", a.Code, a.Count, a.Percentage)
		if a.Percentage < 0 || a.Percentage > 100 {
			t.Fatalf("percentage out of range %+v", a)
		}
	}
	want := []string{"WF:2:50", "SK:1:25", "DY:1:25"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestAggregate_PercentageClampedForRepeatedLeg(t *testing.T) {
	res, _ := Aggregate([]entity.InvoiceLine{flight("", "OSL", "OSL")})
	if p := res.PrimaryDestination; p.Count != 2 || p.Percentage != 100 {
		t.Fatalf("expected count 2 clamped to 100%%, got %+v", p)
	}
}

func TestAggregate_Idempotent(t *testing.T) {
	lines := []entity.InvoiceLine{
		flight("WF", "OSL", "BOO"),
		flight("sk", "BGO", "OSL"),
		{CarrierCode: "DY", Amount: "12.3", Currency: "NOK"},
	}
	a, _ := Aggregate(lines)
	b, _ := Aggregate(lines)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("aggregate is not idempotent:\n%+v\n%+v", a, b)
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		count, total, want int
	}{
		{0, 0, 0},
		{1, 0, 0},
		{2, 3, 67},
		{1, 3, 33},
		{1, 200, 1},
		{1, 201, 0},
		{3, 2, 100},
	}
	for _, tc := range tests {
		if got := Percentage(tc.count, tc.total); got != tc.want {
			t.Fatalf("Percentage(%d,%d)=%d, want %d", tc.count, tc.total, got, tc.want)
		}
	}
}

func TestFilterFlights(t *testing.T) {
	in := []entity.InvoiceLine{
		{CarrierCode: "WF", Amount: "1"},
		{Amount: "2"},
		{OriginCode: "  "},
		{DestinationCode: "OSL", Amount: "3"},
		{OriginCode: "BOO", Amount: "4"},
	}
	out := FilterFlights(in)
	if len(out) != 3 {
		t.Fatalf("expected 3 flights, got %d", len(out))
	}
	for i, want := range []string{"1", "3", "4"} {
		if out[i].Amount != want {
			t.Fatalf("order not preserved: %+v", out)
		}
	}
}

func TestAggregate_RouteLastUsed(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 5, d, 0, 0, 0, 0, time.UTC) }
	res, _ := Aggregate([]entity.InvoiceLine{
		{CarrierCode: "WF", OriginCode: "OSL", DestinationCode: "BOO", InvoiceDate: day(9)},
		{CarrierCode: "WF", OriginCode: "OSL", DestinationCode: "BOO", InvoiceDate: day(2)},
		{CarrierCode: "WF", OriginCode: "OSL", DestinationCode: "BOO"},
	})
	if len(res.TopRoutes) != 1 || !res.TopRoutes[0].LastUsed.Equal(day(9)) {
		t.Fatalf("expected last used %v, got %+v", day(9), res.TopRoutes)
	}
}
