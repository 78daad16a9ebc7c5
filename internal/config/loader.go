package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// LookupFunc reports the value of a named setting. os.LookupEnv is one.
type LookupFunc func(name string) (string, bool)

// Load reads configuration from environment variables, applies defaults
// for unset values and validates the result.
func Load() (*Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom is Load with settings read through lookup instead of the
// process environment.
func LoadFrom(lookup LookupFunc) (*Config, error) {
	cfg := &Config{}

	if err := fill(reflect.ValueOf(cfg).Elem(), lookup); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

var durationType = reflect.TypeOf(time.Duration(0))

// fill walks the struct v and sets every field tagged with env. Nested
// structs are walked recursively.
func fill(v reflect.Value, lookup LookupFunc) error {
	t := v.Type()

	for i := range t.NumField() {
		field := t.Field(i)
		dst := v.Field(i)
		if !dst.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct {
			if err := fill(dst, lookup); err != nil {
				return err
			}
			continue
		}

		name := field.Tag.Get("env")
		if name == "" {
			continue
		}

		value, ok := lookupNonEmpty(lookup, name)
		if !ok && field.Tag.Get("envAlt") != "" {
			value, ok = lookupNonEmpty(lookup, field.Tag.Get("envAlt"))
		}
		if !ok {
			if field.Tag.Get("required") == "true" {
				return fmt.Errorf("required environment variable %s is not set", name)
			}
			value = field.Tag.Get("default")
		}
		if value == "" {
			continue
		}

		if err := parseInto(dst, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", name, value, err)
		}
	}

	return nil
}

func lookupNonEmpty(lookup LookupFunc, name string) (string, bool) {
	v, ok := lookup(name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// parseInto converts value to dst's type and stores it.
func parseInto(dst reflect.Value, value string) error {
	if dst.Type() == durationType {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		dst.SetInt(int64(d))
		return nil
	}

	switch dst.Kind() {
	case reflect.String:
		dst.SetString(value)

	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		dst.SetInt(n)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		dst.SetBool(b)

	case reflect.Slice:
		items := splitList(value)
		out := reflect.MakeSlice(dst.Type(), len(items), len(items))
		for i, item := range items {
			if err := parseInto(out.Index(i), item); err != nil {
				return fmt.Errorf("list element %q: %w", item, err)
			}
		}
		dst.Set(out)

	default:
		return fmt.Errorf("unsupported field type: %s", dst.Kind())
	}

	return nil
}

// splitList splits comma-separated values, dropping empty entries.
func splitList(value string) []string {
	var out []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []string
	errs = append(errs, c.Database.problems()...)
	errs = append(errs, c.Server.problems()...)
	errs = append(errs, c.Tables.problems()...)
	errs = append(errs, c.Rate.problems()...)
	errs = append(errs, c.Security.problems()...)
	errs = append(errs, c.Logging.problems()...)

	if len(errs) > 0 {
		return errors.New("validation failed:\n  - " + strings.Join(errs, "\n  - "))
	}
	return nil
}

func (d *DatabaseConfig) problems() []string {
	var p []string
	if d.MaxConns <= 0 {
		p = append(p, "DB_MAX_CONNS must be positive")
	}
	if d.MinConns < 0 {
		p = append(p, "DB_MIN_CONNS must be non-negative")
	}
	if d.MaxConns < d.MinConns {
		p = append(p, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)", d.MaxConns, d.MinConns))
	}
	return p
}

func (s *ServerConfig) problems() []string {
	var p []string
	if s.Port <= 0 || s.Port > 65535 {
		p = append(p, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", s.Port))
	}
	if s.ReadTimeout < 0 {
		p = append(p, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if s.ShutdownTimeout <= 0 {
		p = append(p, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	return p
}

func (t *TablesConfig) problems() []string {
	var p []string
	if t.DefinitionsFile == "" {
		p = append(p, "TABLES_FILE is required")
	}
	if t.PageSize <= 0 {
		p = append(p, fmt.Sprintf("TABLE_PAGE_SIZE (%d) must be positive", t.PageSize))
	}
	for _, size := range t.PageSizeOptions {
		if size <= 0 {
			p = append(p, fmt.Sprintf("TABLE_PAGE_SIZE_OPTIONS contains %d; sizes must be positive", size))
			break
		}
	}
	if t.LoadTimeout <= 0 {
		p = append(p, "TABLES_LOAD_TIMEOUT must be positive")
	}
	if t.ReloadInterval < 0 {
		p = append(p, "TABLES_RELOAD_INTERVAL must be non-negative")
	}
	if t.MaxConcurrentLoads <= 0 {
		p = append(p, "TABLES_MAX_CONCURRENT_LOADS must be positive")
	}
	return p
}

func (r *RateLimitConfig) problems() []string {
	if r.Enabled && r.RequestsPerMinute <= 0 {
		return []string{"RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled"}
	}
	return nil
}

func (s *SecurityConfig) problems() []string {
	if s.RequireAPIKey && len(s.APIKeys) == 0 {
		return []string{"REQUIRE_API_KEY is true but API_KEYS is empty; configure at least one API key or disable auth"}
	}
	return nil
}

func (l *LoggingConfig) problems() []string {
	var p []string
	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "error":
	default:
		p = append(p, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", l.Level))
	}
	switch strings.ToLower(l.Format) {
	case "text", "json":
	default:
		p = append(p, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", l.Format))
	}
	return p
}

// LogValue implements slog.LogValuer. The database URL and API keys are
// masked.
func (c *Config) LogValue() slog.Value {
	dbURL := ""
	if c.Database.URL != "" {
		dbURL = "[MASKED]"
	}
	return slog.GroupValue(
		slog.String("addr", c.Server.Addr()),
		slog.Group("database",
			slog.String("url", dbURL),
			slog.Int("max_conns", c.Database.MaxConns),
		),
		slog.Group("tables",
			slog.String("file", c.Tables.DefinitionsFile),
			slog.Int("page_size", c.Tables.PageSize),
			slog.String("root", c.Tables.RootSentinel),
			slog.Bool("load_on_start", c.Tables.LoadOnStart),
			slog.Duration("reload_interval", c.Tables.ReloadInterval),
			slog.Int("max_concurrent_loads", c.Tables.MaxConcurrentLoads),
		),
		slog.Group("rate",
			slog.Bool("enabled", c.Rate.Enabled),
			slog.Int("per_minute", c.Rate.RequestsPerMinute),
		),
		slog.Group("security",
			slog.Bool("require_api_key", c.Security.RequireAPIKey),
			slog.Int("api_keys", len(c.Security.APIKeys)),
		),
		slog.String("log_level", c.Logging.Level),
	)
}
