package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr   string        `validate:"required"`
	DatabaseURL  string        `validate:"required"`
	LogLevel     string        `validate:"oneof=debug info warn error"`
	MaxCPU       int           `validate:"gte=0"`
	ShutdownWait time.Duration `validate:"gt=0"`

	SessionSecret string        `validate:"required,min=32"`
	SessionTTL    time.Duration `validate:"gt=0"`
	FunctionKey   string

	CacheTTL        time.Duration `validate:"gt=0"`
	CacheMaxEntries int           `validate:"gte=0"`

	FetchConcurrency   int           `validate:"gte=1,lte=64"`
	FetchTimeout       time.Duration `validate:"gt=0"`
	LookupTimeout      time.Duration `validate:"gt=0"`
	DownloadTimeout    time.Duration `validate:"gt=0"`
	ComputeTimeout     time.Duration `validate:"gt=0"`
	DefaultWindowYears int           `validate:"gte=1,lte=20"`

	DomainAliases   map[string]string
	CORSOrigins     []string `validate:"min=1,dive,required"`
	RateLimitPerMin int      `validate:"gte=0"`
}

const defaultDomainAliases = "martinlund.onmicrosoft.com=cipher.no,cipherbergen.no=cipher.no"

// Parse reads the environment; a .env file in the working directory, if
// present, fills variables that are not already set.
func Parse() (*Config, error) {
	_ = godotenv.Load()

	var errs []error
	c := &Config{}
	c.ListenAddr = getenv("LISTEN_ADDR", ":3000")
	c.DatabaseURL = getenv("DATABASE_URL", "")
	c.LogLevel = strings.ToLower(getenv("LOG_LEVEL", "info"))
	c.MaxCPU = intVar(&errs, "MAX_CPU", "0")
	c.ShutdownWait = durationVar(&errs, "SHUTDOWN_WAIT", "5s")

	c.SessionSecret = getenv("SESSION_SECRET", "")
	c.SessionTTL = durationVar(&errs, "SESSION_TTL", "8h")
	c.FunctionKey = getenv("FUNCTION_KEY", "")

	c.CacheTTL = durationVar(&errs, "CACHE_TTL", "5m")
	c.CacheMaxEntries = intVar(&errs, "CACHE_MAX_ENTRIES", "1000")

	c.FetchConcurrency = intVar(&errs, "FETCH_CONCURRENCY", "5")
	c.FetchTimeout = durationVar(&errs, "FETCH_TIMEOUT", "30s")
	c.LookupTimeout = durationVar(&errs, "LOOKUP_TIMEOUT", "10s")
	c.DownloadTimeout = durationVar(&errs, "DOWNLOAD_TIMEOUT", "120s")
	c.ComputeTimeout = durationVar(&errs, "COMPUTE_TIMEOUT", "2m")
	c.DefaultWindowYears = intVar(&errs, "DEFAULT_WINDOW_YEARS", "3")

	aliases, err := ParseAliases(getenv("DOMAIN_ALIASES", defaultDomainAliases))
	if err != nil {
		errs = append(errs, err)
	}
	c.DomainAliases = aliases
	c.CORSOrigins = splitList(getenv("CORS_ORIGINS", "*"))
	c.RateLimitPerMin = intVar(&errs, "RATE_LIMIT_PER_MIN", "120")

	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs = append(errs, fmt.Errorf("%s: failed %q check", fe.Field(), fe.Tag()))
			}
		} else {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return c, nil
}

// ParseAliases reads "login.domain=data.domain" pairs separated by commas.
func ParseAliases(s string) (map[string]string, error) {
	out := make(map[string]string)
	for _, pair := range splitList(s) {
		from, to, ok := strings.Cut(pair, "=")
		from, to = strings.TrimSpace(from), strings.TrimSpace(to)
		if !ok || from == "" || to == "" {
			return nil, fmt.Errorf("DOMAIN_ALIASES: bad pair %q", pair)
		}
		out[strings.ToLower(from)] = strings.ToLower(to)
	}
	return out, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func intVar(errs *[]error, k, def string) int {
	n, err := strconv.Atoi(getenv(k, def))
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s must be an integer", k))
	}
	return n
}

func durationVar(errs *[]error, k, def string) time.Duration {
	d, err := time.ParseDuration(getenv(k, def))
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s must be a duration", k))
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
