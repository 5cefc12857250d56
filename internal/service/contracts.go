package service

import (
	"context"
	"time"

	"github.com/dayanaadylkhanova/travel-portal/internal/entity"
)

//go:generate mockgen -destination=mocks/mock_contracts.go -package=mocks . AccessStore,RecordSource,NameStore

// AccessStore: порт к таблице доступа компаний (domain -> accounts).
type AccessStore interface {
	// LookupGrant returns found=false when no active row exists for domain.
	LookupGrant(ctx context.Context, domain string) (rec entity.AccessRecord, found bool, err error)
}

// RecordSource: порт к процедуре выгрузки строк счетов.
type RecordSource interface {
	FetchInvoiceLines(ctx context.Context, accountNumber string, rng entity.DateRange) (entity.InvoiceSet, error)
}

// NameStore: порт к справочнику названий (батчевый запрос).
type NameStore interface {
	LookupNames(ctx context.Context, codes []string) (map[string]string, error)
}

// ResponseCache is satisfied by *cache.Cache.
type ResponseCache interface {
	GetOrCompute(
		ctx context.Context,
		key string,
		ttl time.Duration,
		compute func() (value any, keep bool, err error),
	) (value any, cached bool, err error)
}
