package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dayanaadylkhanova/travel-portal/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func New(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool, log: log}, nil
}

// LookupGrant implements service.AccessStore
func (s *Store) LookupGrant(ctx context.Context, domain string) (entity.AccessRecord, bool, error) {
	const q = `SELECT company_name, acc_no_list FROM company_access WHERE company_domain = $1 AND is_active`

	var (
		company *string
		raw     any
	)
	err := s.pool.QueryRow(ctx, q, domain).Scan(&company, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return entity.AccessRecord{}, false, nil
	}
	if err != nil {
		return entity.AccessRecord{}, false, err
	}

	rec := entity.AccessRecord{Domain: domain, IsActive: true}
	if company != nil {
		rec.CompanyName = *company
	}
	if err := setAccountList(&rec, raw); err != nil {
		// Ошибка формата уходит в авторизатор как сырая строка, он её и отклонит.
		s.log.Warn("unexpected acc_no_list type", zap.String("domain", domain), zap.Error(err))
		rec.RawAccountList = fmt.Sprint(raw)
	}
	return rec, true, nil
}

// setAccountList accepts json/text columns (validated by the authorizer)
// and native arrays.
func setAccountList(rec *entity.AccessRecord, raw any) error {
	switch v := raw.(type) {
	case nil:
		rec.RawAccountList = ""
	case string:
		rec.RawAccountList = v
	case []byte:
		rec.RawAccountList = string(v)
	case []string:
		rec.AccountNumbers = append([]string{}, v...)
	case []any:
		out := make([]string, 0, len(v))
		for i, it := range v {
			switch it.(type) {
			case string, float64, int16, int32, int64:
				out = append(out, strings.TrimSpace(textValue(it)))
			default:
				return fmt.Errorf("item %d has type %T", i, it)
			}
		}
		rec.AccountNumbers = out
	default:
		return fmt.Errorf("type %T", raw)
	}
	return nil
}

// FetchInvoiceLines implements service.RecordSource. The export procedure
// returns a wide row; the known columns are picked by name, the rest are
// kept for preview and CSV.
func (s *Store) FetchInvoiceLines(ctx context.Context, accno string, rng entity.DateRange) (entity.InvoiceSet, error) {
	const q = `SELECT * FROM api_export_invoice_lines($1::text, $2::date, $3::date)`

	rows, err := s.pool.Query(ctx, q, accno, rng.From, rng.To)
	if err != nil {
		return entity.InvoiceSet{}, err
	}
	defer rows.Close()

	fds := rows.FieldDescriptions()
	cols := make([]string, len(fds))
	for i, fd := range fds {
		cols[i] = fd.Name
	}
	idx := indexColumns(cols)

	var lines []entity.InvoiceLine
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return entity.InvoiceSet{}, err
		}
		lines = append(lines, lineFromValues(idx, vals))
	}
	if err := rows.Err(); err != nil {
		return entity.InvoiceSet{}, err
	}
	return entity.InvoiceSet{Columns: cols, Lines: lines}, nil
}

// LookupNames implements service.NameStore for airlines.
func (s *Store) LookupNames(ctx context.Context, codes []string) (map[string]string, error) {
	const q = `SELECT upper(airlcode), airlname FROM tas_airl WHERE upper(airlcode) = ANY($1)`

	rows, err := s.pool.Query(ctx, q, codes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string, len(codes))
	for rows.Next() {
		var (
			code string
			name *string
		)
		if err := rows.Scan(&code, &name); err != nil {
			return nil, err
		}
		if name != nil {
			out[code] = strings.TrimSpace(*name)
		}
	}
	return out, rows.Err()
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

func (s *Store) Close() { s.pool.Close() }
