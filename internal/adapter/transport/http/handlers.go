package http_server

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dayanaadylkhanova/travel-portal/internal/entity"
	"github.com/dayanaadylkhanova/travel-portal/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const functionKeyHeader = "x-functions-key"

func (s *Server) handleSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := sessionFrom(r.Context())
		writeJSON(w, http.StatusOK, entity.SessionResponse{
			Email:        c.Email,
			DisplayName:  c.Name,
			UserDomain:   c.UserDomain(),
			MappedDomain: s.domains.Map(c.UserDomain()),
		})
	}
}

func (s *Server) handleStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		domain, rng, ok := s.scope(w, r)
		if !ok {
			return
		}
		res, err := s.fn.Dispatch(r.Context(), service.StatsRequest{Domain: domain, Range: rng})
		if err != nil {
			if s.writeFatal(w, domain, err) {
				return
			}
			s.log.Warn("stats unavailable, serving demo data", zap.String("domain", domain), zap.Error(err))
			writeJSON(w, http.StatusOK, demoStatsResponse(rng))
			return
		}
		writeJSON(w, http.StatusOK, statsResponse(res.(service.StatsResult)))
	}
}

func (s *Server) handleFiles() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		domain, rng, ok := s.scope(w, r)
		if !ok {
			return
		}
		res, err := s.fn.Dispatch(r.Context(), service.FilesRequest{Domain: domain, Range: rng})
		if err != nil {
			if s.writeFatal(w, domain, err) {
				return
			}
			s.log.Warn("files unavailable", zap.String("domain", domain), zap.Error(err))
			writeJSON(w, http.StatusOK, unavailableFilesResponse(rng))
			return
		}
		writeJSON(w, http.StatusOK, filesResponse(res.(service.FilesResult)))
	}
}

func (s *Server) handlePreview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		domain, rng, ok := s.scope(w, r)
		if !ok {
			return
		}
		accno := chi.URLParam(r, "accno")
		res, err := s.fn.Dispatch(r.Context(), service.PreviewRequest{Domain: domain, AccountNo: accno, Range: rng})
		if err != nil {
			if !s.writeFatal(w, domain, err) {
				s.log.Error("preview failed", zap.String("accno", accno), zap.Error(err))
				writeError(w, http.StatusInternalServerError, unavailableErr, retryMessage)
			}
			return
		}
		writeJSON(w, http.StatusOK, previewResponse(res.(service.PreviewResult)))
	}
}

func (s *Server) handleDownload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		domain, rng, ok := s.scope(w, r)
		if !ok {
			return
		}
		accno := chi.URLParam(r, "accno")
		res, err := s.fn.Dispatch(r.Context(), service.DownloadRequest{Domain: domain, AccountNo: accno, Range: rng})
		if err != nil {
			if !s.writeFatal(w, domain, err) {
				s.log.Error("download failed", zap.String("accno", accno), zap.Error(err))
				writeError(w, http.StatusInternalServerError, unavailableErr, retryMessage)
			}
			return
		}
		s.writeDownload(w, res.(service.DownloadResult))
	}
}

// handleFunction serves the raw data-access contract to server-side callers.
func (s *Server) handleFunction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := service.ParseRequest(r.URL.Query(), s.opts.Now(), s.opts.WindowYears)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error(), "")
			return
		}
		domain := s.domains.Map(r.URL.Query().Get("domain"))
		req = withDomain(req, domain)

		res, err := s.fn.Dispatch(r.Context(), req)
		if err != nil {
			if s.writeFatal(w, domain, err) {
				return
			}
			s.log.Error("function action failed",
				zap.String("action", string(req.Action())), zap.String("domain", domain), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, entity.ErrorResponse{
				Error:     "Internal server error",
				Message:   err.Error(),
				Action:    string(req.Action()),
				Timestamp: timestamp(s.opts.Now()),
			})
			return
		}

		switch v := res.(type) {
		case service.StatsResult:
			writeJSON(w, http.StatusOK, functionStatsPayload(v))
		case service.FilesResult:
			writeJSON(w, http.StatusOK, filesResponse(v))
		case service.PreviewResult:
			writeJSON(w, http.StatusOK, previewResponse(v))
		case service.DownloadResult:
			s.writeDownload(w, v)
		default:
			panic(fmt.Sprintf("http_server: unhandled result type %T", res))
		}
	}
}

// scope resolves the caller's data-access domain and date range.
func (s *Server) scope(w http.ResponseWriter, r *http.Request) (string, entity.DateRange, bool) {
	c := sessionFrom(r.Context())
	domain := s.domains.Map(c.UserDomain())
	if domain == "" {
		writeError(w, http.StatusForbidden, "Session has no company domain", "")
		return "", entity.DateRange{}, false
	}
	q := r.URL.Query()
	rng, err := service.ParseDateRange(q.Get("fromDate"), q.Get("toDate"), s.opts.Now(), s.opts.WindowYears)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range", err.Error())
		return "", entity.DateRange{}, false
	}
	return domain, rng, true
}

// writeFatal answers errors that must reach the caller as hard failures.
// It reports false for upstream errors, which each handler degrades itself.
func (s *Server) writeFatal(w http.ResponseWriter, domain string, err error) bool {
	switch {
	case errors.Is(err, service.ErrAuthorizationDenied):
		writeError(w, http.StatusForbidden, fmt.Sprintf("Company domain %s not authorized", domain), "")
	case errors.Is(err, service.ErrAccessDenied):
		writeError(w, http.StatusForbidden, "Access denied to this account", "")
	case errors.Is(err, service.ErrConfiguration):
		s.log.Error("access configuration error", zap.String("domain", domain), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Invalid access configuration", "Contact support: the company access list is malformed")
	case errors.Is(err, service.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error(), "")
	default:
		return false
	}
	return true
}

func (s *Server) writeDownload(w http.ResponseWriter, res service.DownloadResult) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.FileName))
	w.WriteHeader(http.StatusOK)
	if err := writeCSV(w, res.Columns, res.Rows); err != nil {
		s.log.Warn("csv write interrupted", zap.String("accno", res.AccountNo), zap.Error(err))
	}
}

func withDomain(req service.Request, domain string) service.Request {
	switch v := req.(type) {
	case service.StatsRequest:
		v.Domain = domain
		return v
	case service.FilesRequest:
		v.Domain = domain
		return v
	case service.PreviewRequest:
		v.Domain = domain
		return v
	case service.DownloadRequest:
		v.Domain = domain
		return v
	}
	return req
}

func requireFunctionKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := strings.TrimSpace(r.Header.Get(functionKeyHeader))
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				writeError(w, http.StatusUnauthorized, "Unauthorized", "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
