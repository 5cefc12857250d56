package http_server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/dayanaadylkhanova/travel-portal/internal/metrics"
	"github.com/dayanaadylkhanova/travel-portal/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Function is the data-access layer the handlers delegate to.
type Function interface {
	Dispatch(ctx context.Context, req service.Request) (service.Result, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Addr            string
	FunctionKey     string
	CORSOrigins     []string
	RateLimitPerMin int
	WindowYears     int
	Now             func() time.Time
}

type Server struct {
	log      *zap.Logger
	fn       Function
	ready    Pinger
	sessions *Sessions
	domains  DomainMapper
	opts     Options
	handler  http.Handler
	httpSrv  *http.Server
}

func NewServer(log *zap.Logger, fn Function, ready Pinger, sessions *Sessions, domains DomainMapper, opts Options) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	s := &Server{log: log, fn: fn, ready: ready, sessions: sessions, domains: domains, opts: opts}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(zapLogger(log))
	r.Use(observeDuration)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	r.Get("/readyz", s.handleReady())
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type", functionKeyHeader},
			ExposedHeaders:   []string{"Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
		if opts.RateLimitPerMin > 0 {
			r.Use(httprate.Limit(opts.RateLimitPerMin, time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
					writeError(w, http.StatusTooManyRequests, "Too many requests", "")
				}),
			))
		}

		if opts.FunctionKey != "" {
			r.With(requireFunctionKey(opts.FunctionKey)).Get("/api/function", s.handleFunction())
		}

		r.Group(func(r chi.Router) {
			r.Use(sessions.Middleware)
			r.Get("/api/session", s.handleSession())
			r.Get("/api/stats", s.handleStats())
			r.Get("/api/files", s.handleFiles())
			r.Get("/api/preview/{accno}", s.handlePreview())
			r.Get("/api/download/{accno}", s.handleDownload())
		})
	})

	s.handler = r
	s.httpSrv = &http.Server{
		Addr:              opts.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) Start() error {
	s.log.Info("http listen", zap.String("addr", s.opts.Addr))
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func zapLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info("http",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.Duration("latency", time.Since(start)),
			)
		})
	}
}

// observeDuration labels by route pattern, not raw path, to keep cardinality flat.
func observeDuration(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.HTTPRequestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}

func (s *Server) handleReady() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.ready == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready.Ping(ctx); err != nil {
			s.log.Warn("readiness check failed", zap.Error(err))
			writeError(w, http.StatusServiceUnavailable, "Database unavailable", "")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
