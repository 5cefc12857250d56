package http_server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dayanaadylkhanova/travel-portal/internal/entity"
	"github.com/dayanaadylkhanova/travel-portal/internal/service"
	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fakeFunction struct {
	got []service.Request
	res service.Result
	err error
}

func (f *fakeFunction) Dispatch(_ context.Context, req service.Request) (service.Result, error) {
	f.got = append(f.got, req)
	return f.res, f.err
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

var fixedNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func newTestServer(fn Function, key string) (*Server, *Sessions) {
	sessions := NewSessions(testSecret, time.Hour)
	sessions.now = func() time.Time { return fixedNow }
	domains := NewDomainMapper(map[string]string{"cipherbergen.no": "cipher.no"})
	srv := NewServer(zap.NewNop(), fn, fakePinger{}, sessions, domains, Options{
		FunctionKey: key,
		WindowYears: 3,
		Now:         func() time.Time { return fixedNow },
	})
	return srv, sessions
}

func do(t *testing.T, h http.Handler, path, token string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, s *Sessions, email string) string {
	t.Helper()
	tok, err := s.Issue(email, "Kari Nordmann", "")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return tok
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func sampleStats() service.StatsResult {
	return service.StatsResult{
		Stats: entity.StatisticsResult{
			PrimaryAirline: entity.NamedStat{Code: "WF", Name: "Widerøe", Count: 2, Percentage: 67},
			AllAirlines: []entity.NamedStat{
				{Code: "WF", Name: "Widerøe", Count: 2, Percentage: 67},
				{Code: "XQ", Name: "XQ", Count: 1, Percentage: 33},
			},
			PrimaryDestination: entity.NamedStat{Code: "OSL", Name: "Oslo Lufthavn", Count: 2, Percentage: 67},
			AllDestinations:    []entity.NamedStat{{Code: "OSL", Name: "Oslo Lufthavn", Count: 2, Percentage: 67}},
			UniqueRouteCount:   1,
			TopRoutes: []entity.RouteStat{{
				Route: "OSL-BOO", Origin: "OSL", Destination: "BOO", Frequency: 1,
				LastUsed: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
			}},
			TotalAmount:        decimal.RequireFromString("1234.5"),
			Currency:           "NOK",
			TotalFlightRecords: 3,
		},
		Range: entity.DateRange{
			From: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		},
		Cached: true,
	}
}

func TestHealthAndReady(t *testing.T) {
	srv, _ := newTestServer(&fakeFunction{}, "")
	if rec := do(t, srv.Handler(), "/healthz", "", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("healthz: %d", rec.Code)
	}
	if rec := do(t, srv.Handler(), "/readyz", "", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("readyz: %d", rec.Code)
	}

	srv.ready = fakePinger{err: errors.New("down")}
	if rec := do(t, srv.Handler(), "/readyz", "", nil); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz with failing db: %d", rec.Code)
	}
}

func TestStats_RequiresSession(t *testing.T) {
	fn := &fakeFunction{}
	srv, sessions := newTestServer(fn, "")

	rec := do(t, srv.Handler(), "/api/stats", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if body := decode[entity.ErrorResponse](t, rec); body.Error != "Authentication required" {
		t.Fatalf("unexpected body %+v", body)
	}

	sessions.now = func() time.Time { return fixedNow.Add(-2 * time.Hour) }
	stale := login(t, sessions, "kari@cipher.no")
	sessions.now = func() time.Time { return fixedNow }

	rec = do(t, srv.Handler(), "/api/stats", stale, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired session, got %d", rec.Code)
	}
	if body := decode[entity.ErrorResponse](t, rec); body.Error != "Session expired" {
		t.Fatalf("unexpected body %+v", body)
	}

	rec = do(t, srv.Handler(), "/api/stats", "not-a-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token, got %d", rec.Code)
	}
	if len(fn.got) != 0 {
		t.Fatalf("function must not be called without a session")
	}
}

func TestStats_BearerHeader(t *testing.T) {
	fn := &fakeFunction{res: sampleStats()}
	srv, sessions := newTestServer(fn, "")
	tok := login(t, sessions, "kari@cipher.no")

	rec := do(t, srv.Handler(), "/api/stats", "", map[string]string{"Authorization": "Bearer " + tok})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
}

func TestStats_ReshapesResult(t *testing.T) {
	fn := &fakeFunction{res: sampleStats()}
	srv, sessions := newTestServer(fn, "")
	tok := login(t, sessions, "kari@CipherBergen.no")

	rec := do(t, srv.Handler(), "/api/stats?fromDate=2024-03-01&toDate=2024-03-31", tok, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}

	req, ok := fn.got[0].(service.StatsRequest)
	if !ok || req.Domain != "cipher.no" {
		t.Fatalf("expected mapped domain cipher.no, got %#v", fn.got[0])
	}
	if req.Range.FromISO() != "2024-03-01" || req.Range.ToISO() != "2024-03-31" || req.Range.IsDefault {
		t.Fatalf("unexpected range %+v", req.Range)
	}

	body := decode[entity.StatsResponse](t, rec)
	a := body.Data.MostUsedAirline
	if a.Value != "WF" || a.Label != "Widerøe\n2 flights" {
		t.Fatalf("unexpected airline card %+v", a)
	}
	if len(a.Details) != 2 || a.Details[1].Name != "XQ" {
		t.Fatalf("unexpected airline details %+v", a.Details)
	}
	if d := body.Data.MostVisitedDestination; d.Label != "Oslo Lufthavn\n2 visits" {
		t.Fatalf("unexpected destination label %q", d.Label)
	}
	u := body.Data.UniqueRoutes
	if u.Value != "1" || u.Label != "Forskjellige flyreiser" || u.Details[0].LastUsed != "2024-03-09" {
		t.Fatalf("unexpected routes card %+v", u)
	}
	if body.TotalFlights != 3 || !body.Cached || body.IsDemo {
		t.Fatalf("unexpected flags %+v", body)
	}
	if body.TotalSum == nil || body.TotalSum.Value != "1234.50" || body.TotalSum.FormattedValue != "NOK 1 234,50" {
		t.Fatalf("unexpected total sum %+v", body.TotalSum)
	}
	if body.DateRange == nil || body.DateRange.From != "2024-03-01" {
		t.Fatalf("unexpected date range %+v", body.DateRange)
	}
}

func TestStats_LargeCounts(t *testing.T) {
	res := sampleStats()
	res.Stats.UniqueRouteCount = 1234
	res.Stats.PrimaryAirline.Count = 1500
	fn := &fakeFunction{res: res}
	srv, sessions := newTestServer(fn, "")

	rec := do(t, srv.Handler(), "/api/stats", login(t, sessions, "kari@cipher.no"), nil)
	body := decode[entity.StatsResponse](t, rec)
	if v := body.Data.UniqueRoutes.Value; v != "1234" {
		t.Fatalf("routes value must stay numeric, got %q", v)
	}
	if l := body.Data.MostUsedAirline.Label; l != "Widerøe\n1,500 flights" {
		t.Fatalf("unexpected airline label %q", l)
	}
}

func TestStats_DefaultRangeFlagged(t *testing.T) {
	res := sampleStats()
	res.Range = service.DefaultDateRange(fixedNow, 3)
	fn := &fakeFunction{res: res}
	srv, sessions := newTestServer(fn, "")

	rec := do(t, srv.Handler(), "/api/stats", login(t, sessions, "kari@cipher.no"), nil)
	body := decode[entity.StatsResponse](t, rec)
	if body.DateRange == nil || !body.DateRange.IsDefault || body.DateRange.From != "2021-06-15" {
		t.Fatalf("expected default range, got %+v", body.DateRange)
	}
}

func TestStats_ErrorPolicy(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		query      string
		wantStatus int
		wantDemo   bool
	}{
		{name: "denied", err: service.ErrAuthorizationDenied, wantStatus: http.StatusForbidden},
		{name: "configuration", err: service.ErrConfiguration, wantStatus: http.StatusInternalServerError},
		{name: "upstream", err: service.ErrUpstream, wantStatus: http.StatusOK, wantDemo: true},
		{name: "unclassified", err: errors.New("boom"), wantStatus: http.StatusOK, wantDemo: true},
		{name: "bad date", query: "?fromDate=2024-02-01&toDate=2024-01-01", wantStatus: http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fn := &fakeFunction{err: tc.err}
			srv, sessions := newTestServer(fn, "")
			rec := do(t, srv.Handler(), "/api/stats"+tc.query, login(t, sessions, "kari@cipher.no"), nil)
			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tc.wantStatus, rec.Code, rec.Body)
			}
			if !tc.wantDemo {
				if body := decode[entity.ErrorResponse](t, rec); body.Error == "" {
					t.Fatalf("expected error body, got %s", rec.Body)
				}
				return
			}
			body := decode[entity.StatsResponse](t, rec)
			if !body.IsDemo || body.Error == "" || body.Message == "" {
				t.Fatalf("demo payload must be flagged, got %+v", body)
			}
			if !strings.Contains(body.Data.MostUsedAirline.Label, "Demo data") {
				t.Fatalf("demo label missing: %q", body.Data.MostUsedAirline.Label)
			}
		})
	}
}

func TestFiles(t *testing.T) {
	fn := &fakeFunction{res: service.FilesResult{
		CompanyName: "Cipher AS",
		Files:       []entity.FileInfo{{ID: "1001-data", AccountNo: "1001", RecordCount: 2}},
		Range:       sampleStats().Range,
	}}
	srv, sessions := newTestServer(fn, "")
	tok := login(t, sessions, "kari@cipher.no")

	rec := do(t, srv.Handler(), "/api/files", tok, nil)
	body := decode[entity.FilesResponse](t, rec)
	if rec.Code != http.StatusOK || body.TotalFiles != 1 || body.CompanyName != "Cipher AS" {
		t.Fatalf("unexpected files response %d %+v", rec.Code, body)
	}

	fn.err = service.ErrUpstream
	rec = do(t, srv.Handler(), "/api/files", tok, nil)
	body = decode[entity.FilesResponse](t, rec)
	if rec.Code != http.StatusOK || body.Error != "Data temporarily unavailable" || body.Files == nil {
		t.Fatalf("expected degraded files response, got %d %s", rec.Code, rec.Body)
	}
}

func TestPreview(t *testing.T) {
	fn := &fakeFunction{res: service.PreviewResult{
		AccountNo:    "1001",
		Columns:      []string{"CARRCD", "AMOUNT"},
		Rows:         []entity.InvoiceLine{{Values: []any{"WF", "10.00"}}},
		TotalRecords: 30,
	}}
	srv, sessions := newTestServer(fn, "")
	tok := login(t, sessions, "kari@cipher.no")

	rec := do(t, srv.Handler(), "/api/preview/1001", tok, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if req := fn.got[0].(service.PreviewRequest); req.AccountNo != "1001" {
		t.Fatalf("accno not forwarded: %+v", req)
	}
	body := decode[entity.PreviewResponse](t, rec)
	if body.TotalRecords != 30 || body.TotalPreviewRows != 1 || body.Preview[0]["CARRCD"] != "WF" {
		t.Fatalf("unexpected preview %+v", body)
	}

	fn.err = service.ErrAccessDenied
	if rec := do(t, srv.Handler(), "/api/preview/9999", tok, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	fn.err = service.ErrUpstream
	if rec := do(t, srv.Handler(), "/api/preview/1001", tok, nil); rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestDownload(t *testing.T) {
	fn := &fakeFunction{res: service.DownloadResult{
		AccountNo: "1001",
		FileName:  "1001_InvoiceData_2024-03-01_2024-03-31.csv",
		Columns:   []string{"CARRCD", "NOTE", "INVODATE"},
		Rows: []entity.InvoiceLine{
			{Values: []any{"WF", "a,b", time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)}},
			{Values: []any{"SK", nil}},
		},
	}}
	srv, sessions := newTestServer(fn, "")

	rec := do(t, srv.Handler(), "/api/download/1001", login(t, sessions, "kari@cipher.no"), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "1001_InvoiceData_2024-03-01_2024-03-31.csv") {
		t.Fatalf("unexpected disposition %q", cd)
	}
	want := "CARRCD,NOTE,INVODATE\nWF,\"a,b\",2024-03-02\nSK,,\n"
	if rec.Body.String() != want {
		t.Fatalf("unexpected csv:\n%q\nwant\n%q", rec.Body.String(), want)
	}
}

func TestSession(t *testing.T) {
	srv, sessions := newTestServer(&fakeFunction{}, "")
	rec := do(t, srv.Handler(), "/api/session", login(t, sessions, "kari@cipherbergen.no"), nil)
	body := decode[entity.SessionResponse](t, rec)
	if body.UserDomain != "cipherbergen.no" || body.MappedDomain != "cipher.no" || body.DisplayName != "Kari Nordmann" {
		t.Fatalf("unexpected session %+v", body)
	}
}

func TestFunctionEndpoint(t *testing.T) {
	fn := &fakeFunction{res: sampleStats()}
	srv, _ := newTestServer(fn, "secret-key")
	path := "/api/function?action=getDynamicStats&domain=CipherBergen.no"

	if rec := do(t, srv.Handler(), path, "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", rec.Code)
	}

	rec := do(t, srv.Handler(), path, "", map[string]string{functionKeyHeader: "secret-key"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	if req := fn.got[0].(service.StatsRequest); req.Domain != "cipher.no" || !req.Range.IsDefault {
		t.Fatalf("unexpected forwarded request %+v", req)
	}
	body := decode[entity.FunctionStatsPayload](t, rec)
	if body.TotalFlights != 3 || body.Stats.PrimaryAirline.Code != "WF" || !body.Cached {
		t.Fatalf("unexpected payload %+v", body)
	}

	rec = do(t, srv.Handler(), "/api/function?action=nope&domain=cipher.no", "", map[string]string{functionKeyHeader: "secret-key"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown action, got %d", rec.Code)
	}

	fn.err = service.ErrUpstream
	rec = do(t, srv.Handler(), path, "", map[string]string{functionKeyHeader: "secret-key"})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on upstream failure, got %d", rec.Code)
	}
	if body := decode[entity.ErrorResponse](t, rec); body.Action != "getDynamicStats" || body.Timestamp == "" {
		t.Fatalf("unexpected error body %+v", body)
	}
}

func TestFunctionEndpoint_DisabledWithoutKey(t *testing.T) {
	srv, _ := newTestServer(&fakeFunction{}, "")
	rec := do(t, srv.Handler(), "/api/function?action=getDynamicStats&domain=cipher.no", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when no key is configured, got %d", rec.Code)
	}
}

func TestDomainMapper(t *testing.T) {
	m := NewDomainMapper(map[string]string{" MartinLund.onmicrosoft.com ": "Cipher.no"})
	if got := m.Map("martinlund.onmicrosoft.com"); got != "cipher.no" {
		t.Fatalf("got %q", got)
	}
	if got := m.Map(" Other.NO"); got != "other.no" {
		t.Fatalf("unmapped domain should pass through normalized, got %q", got)
	}
}
