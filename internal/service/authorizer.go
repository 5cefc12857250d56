package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dayanaadylkhanova/travel-portal/internal/entity"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Authorizer resolves a company domain into its active access grant.
type Authorizer struct {
	log     *zap.Logger
	store   AccessStore
	timeout time.Duration
}

func NewAuthorizer(log *zap.Logger, store AccessStore, timeout time.Duration) *Authorizer {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Authorizer{log: log, store: store, timeout: timeout}
}

// Authorize returns ErrAuthorizationDenied for unknown or inactive domains,
// ErrConfiguration for a malformed account list and ErrUpstream when the
// store cannot be reached in time.
func (a *Authorizer) Authorize(ctx context.Context, domain string) (entity.AccessGrant, error) {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return entity.AccessGrant{}, fmt.Errorf("%w: empty domain", ErrInvalidRequest)
	}

	lctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	rec, found, err := a.store.LookupGrant(lctx, domain)
	if err != nil {
		return entity.AccessGrant{}, fmt.Errorf("%w: access lookup for %s: %v", ErrUpstream, domain, err)
	}
	if !found || !rec.IsActive {
		a.log.Info("domain not authorized", zap.String("domain", domain))
		return entity.AccessGrant{}, fmt.Errorf("%w: %s", ErrAuthorizationDenied, domain)
	}

	accounts := rec.AccountNumbers
	if accounts == nil {
		accounts, err = parseAccountList(rec.RawAccountList)
		if err != nil {
			a.log.Error("malformed account list in access store",
				zap.String("domain", domain), zap.Error(err))
			return entity.AccessGrant{}, fmt.Errorf("%w: domain %s: %v", ErrConfiguration, domain, err)
		}
	}
	if len(accounts) == 0 {
		a.log.Error("active grant without accounts", zap.String("domain", domain))
		return entity.AccessGrant{}, fmt.Errorf("%w: domain %s has no account numbers", ErrConfiguration, domain)
	}

	return entity.AccessGrant{
		Domain:         domain,
		CompanyName:    rec.CompanyName,
		AccountNumbers: accounts,
		IsActive:       true,
	}, nil
}

// Verify authorizes domain and checks that accno belongs to its grant.
func (a *Authorizer) Verify(ctx context.Context, domain, accno string) (entity.AccessGrant, error) {
	grant, err := a.Authorize(ctx, domain)
	if err != nil {
		return entity.AccessGrant{}, err
	}
	if !grant.Has(strings.TrimSpace(accno)) {
		return entity.AccessGrant{}, fmt.Errorf("%w: account %s", ErrAccessDenied, accno)
	}
	return grant, nil
}

// parseAccountList accepts a JSON array of strings or numbers. Numbers are
// kept as their literal text so formats round-trip exactly.
func parseAccountList(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("empty account list")
	}
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("account list is not a JSON array: %w", err)
	}
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for i, it := range items {
		var s string
		switch {
		case len(it) > 0 && it[0] == '"':
			if err := json.Unmarshal(it, &s); err != nil {
				return nil, fmt.Errorf("account list item %d: %w", i, err)
			}
		case len(it) > 0 && (it[0] == '-' || (it[0] >= '0' && it[0] <= '9')):
			s = string(it)
		default:
			return nil, fmt.Errorf("account list item %d: unsupported value %s", i, it)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out, nil
}
