package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dayanaadylkhanova/travel-portal/internal/entity"
	"github.com/dayanaadylkhanova/travel-portal/internal/service/mocks"
	"github.com/golang/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func setOf(lines ...entity.InvoiceLine) entity.InvoiceSet {
	return entity.InvoiceSet{Columns: []string{"CARRCD", "FDESTCD", "TDESTCD"}, Lines: lines}
}

func TestFetcher_FailedAccountIsSkippedAndLogged(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockRecordSource(ctrl)
	rng := DefaultDateRange(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 3)

	src.EXPECT().FetchInvoiceLines(gomock.Any(), "1", rng).
		Return(setOf(flight("WF", "OSL", "BOO")), nil)
	src.EXPECT().FetchInvoiceLines(gomock.Any(), "2", rng).
		Return(entity.InvoiceSet{}, errors.New("procedure failed"))
	src.EXPECT().FetchInvoiceLines(gomock.Any(), "3", rng).
		Return(setOf(flight("SK", "BGO", "OSL"), flight("DY", "", "")), nil)

	core, logs := observer.New(zapcore.WarnLevel)
	f := NewFetcher(zap.New(core), src, 2, time.Second)

	res := f.Fetch(context.Background(), []string{"1", "2", "3"}, rng)
	if len(res) != 3 {
		t.Fatalf("expected 3 results, got %d", len(res))
	}
	if res.Failed() != 1 || res[1].Err == nil {
		t.Fatalf("expected account 2 to fail, got %+v", res)
	}
	lines := res.Lines()
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines from accounts 1 and 3, got %d", len(lines))
	}
	if lines[0].CarrierCode != "WF" || lines[1].CarrierCode != "SK" {
		t.Fatalf("lines not merged in account order: %+v", lines)
	}

	warns := logs.FilterMessage("account export failed, skipping").All()
	if len(warns) != 1 {
		t.Fatalf("expected one warning, got %d", len(warns))
	}
	if got := warns[0].ContextMap()["accno"]; got != "2" {
		t.Fatalf("warning should name the account, got %v", got)
	}
}

func TestFetcher_RespectsConcurrencyLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockRecordSource(ctrl)

	var inflight, peak int32
	src.EXPECT().FetchInvoiceLines(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string, entity.DateRange) (entity.InvoiceSet, error) {
			n := atomic.AddInt32(&inflight, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&inflight, -1)
			return setOf(), nil
		}).
		Times(8)

	f := NewFetcher(zap.NewNop(), src, 2, time.Second)
	f.Fetch(context.Background(), []string{"1", "2", "3", "4", "5", "6", "7", "8"}, entity.DateRange{})

	if p := atomic.LoadInt32(&peak); p > 2 {
		t.Fatalf("expected at most 2 concurrent calls, saw %d", p)
	}
}

func TestFetcher_TimeoutCountsAsFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockRecordSource(ctrl)
	src.EXPECT().FetchInvoiceLines(gomock.Any(), "slow", gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string, _ entity.DateRange) (entity.InvoiceSet, error) {
			<-ctx.Done()
			return entity.InvoiceSet{}, ctx.Err()
		})
	src.EXPECT().FetchInvoiceLines(gomock.Any(), "fast", gomock.Any()).
		Return(setOf(flight("WF", "", "")), nil)

	f := NewFetcher(zap.NewNop(), src, 5, 20*time.Millisecond)
	res := f.Fetch(context.Background(), []string{"slow", "fast"}, entity.DateRange{})

	if !errors.Is(res[0].Err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error for slow account, got %v", res[0].Err)
	}
	if len(res.Lines()) != 1 {
		t.Fatalf("expected lines from the fast account only")
	}
}

func TestFetcher_AllFailedYieldsEmptyLines(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockRecordSource(ctrl)
	src.EXPECT().FetchInvoiceLines(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(entity.InvoiceSet{}, errors.New("down")).Times(2)

	f := NewFetcher(zap.NewNop(), src, 5, time.Second)
	res := f.Fetch(context.Background(), []string{"1", "2"}, entity.DateRange{})
	lines := res.Lines()
	if lines == nil || len(lines) != 0 {
		t.Fatalf("expected empty non-nil lines, got %#v", lines)
	}
}
