package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
)

// ErrInvalidConfig возвращается при некорректной конфигурации
var ErrInvalidConfig = errors.New("config: invalid configuration")

// EnvPrefix префикс переменных окружения для переопределения секретов
const EnvPrefix = "BAYLEDGER"

// Config конфигурация сервиса
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Logs       LogsConfig       `toml:"logs"`
	Metrics    MetricsConfig    `toml:"metrics"`
	Cache      CacheConfig      `toml:"cache"`
	Remote     RemoteConfig     `toml:"remote"`
	Membership MembershipConfig `toml:"membership"`
	Notifier   NotifierConfig   `toml:"notifier"`
	Sync       SyncConfig       `toml:"sync"`
	Telemetry  TelemetryConfig  `toml:"telemetry"`
	Booking    BookingConfig    `toml:"booking"`
	Pricing    PricingConfig    `toml:"pricing"`
	Resources  []ResourceConfig `toml:"resources"`
	Hours      HoursConfig      `toml:"hours"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// CacheConfig локальный SQLite кэш
type CacheConfig struct {
	Path string `toml:"path"`
}

// RemoteConfig удаленное PostgreSQL хранилище
type RemoteConfig struct {
	Enabled         bool   `toml:"enabled"`
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
	ConnectTimeout  int    `toml:"connect_timeout"`
}

// DSN строка подключения lib/pq
func (c RemoteConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/" + c.DBName,
	}
	q := url.Values{}
	q.Set("sslmode", c.SSLMode)
	if c.ConnectTimeout > 0 {
		q.Set("connect_timeout", fmt.Sprintf("%d", c.ConnectTimeout))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

type MembershipConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"`
}

// NotifierConfig kind = "amqp" | "log"
type NotifierConfig struct {
	Kind       string `toml:"kind"`
	AMQPURL    string `toml:"amqp_url"`
	Exchange   string `toml:"exchange"`
	RoutingKey string `toml:"routing_key"`
}

type SyncConfig struct {
	IntervalSeconds      int `toml:"interval_seconds"`
	ProbeIntervalSeconds int `toml:"probe_interval_seconds"`
	MaxRetries           int `toml:"max_retries"`
	InitialBackoffMs     int `toml:"initial_backoff_ms"`
	MaxBackoffMs         int `toml:"max_backoff_ms"`
	BatchSize            int `toml:"batch_size"`
}

type TelemetryConfig struct {
	Endpoint string `toml:"endpoint"`
	Insecure bool   `toml:"insecure"`
}

type BookingConfig struct {
	TimeUnitMinutes  int `toml:"time_unit_minutes"`
	SlotStepMinutes  int `toml:"slot_step_minutes"`
	MaxDurationUnits int `toml:"max_duration_units"`
}

type PricingConfig struct {
	HourlyRate int64                 `toml:"hourly_rate"`
	Durations  []DurationPriceConfig `toml:"durations"`
	Peak       PeakConfig            `toml:"peak"`
	Tiers      []TierConfig          `toml:"tiers"`
}

type DurationPriceConfig struct {
	Units int   `toml:"units"`
	Price int64 `toml:"price"`
}

// PeakConfig mode = "multiplier" | "flat"
type PeakConfig struct {
	Mode              string       `toml:"mode"`
	MultiplierPercent int          `toml:"multiplier_percent"`
	FlatSurcharge     int64        `toml:"flat_surcharge"`
	Weekday           WindowConfig `toml:"weekday"`
	Weekend           WindowConfig `toml:"weekend"`
}

type WindowConfig struct {
	StartHour int `toml:"start_hour"`
	EndHour   int `toml:"end_hour"`
}

type TierConfig struct {
	Name            string `toml:"name"`
	DiscountPercent int    `toml:"discount_percent"`
	Unlimited       bool   `toml:"unlimited"`
}

type ResourceConfig struct {
	ID       int64  `toml:"id"`
	Label    string `toml:"label"`
	Category string `toml:"category"`
	Capacity int    `toml:"capacity"`
}

type HoursConfig struct {
	Monday    DayHoursConfig `toml:"monday"`
	Tuesday   DayHoursConfig `toml:"tuesday"`
	Wednesday DayHoursConfig `toml:"wednesday"`
	Thursday  DayHoursConfig `toml:"thursday"`
	Friday    DayHoursConfig `toml:"friday"`
	Saturday  DayHoursConfig `toml:"saturday"`
	Sunday    DayHoursConfig `toml:"sunday"`
}

type DayHoursConfig struct {
	Open   string `toml:"open"`
	Close  string `toml:"close"`
	Closed bool   `toml:"closed"`
}

// envOverrides секреты и адреса, которые удобнее передавать через окружение
type envOverrides struct {
	RemotePassword string `envconfig:"REMOTE_PASSWORD"`
	RemoteHost     string `envconfig:"REMOTE_HOST"`
	CachePath      string `envconfig:"CACHE_PATH"`
	MembershipURL  string `envconfig:"MEMBERSHIP_URL"`
	AMQPURL        string `envconfig:"AMQP_URL"`
	OTLPEndpoint   string `envconfig:"OTLP_ENDPOINT"`
	LogLevel       string `envconfig:"LOG_LEVEL"`
}

// Load читает TOML файл, применяет значения по умолчанию и переопределения из окружения
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(string(data))
}

// Parse разбирает TOML из строки
func Parse(data string) (*Config, error) {
	var cfg Config
	if _, err := toml.Decode(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode toml: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("config: process env: %w", err)
	}

	if env.RemotePassword != "" {
		c.Remote.Password = env.RemotePassword
	}
	if env.RemoteHost != "" {
		c.Remote.Host = env.RemoteHost
	}
	if env.CachePath != "" {
		c.Cache.Path = env.CachePath
	}
	if env.MembershipURL != "" {
		c.Membership.URL = env.MembershipURL
	}
	if env.AMQPURL != "" {
		c.Notifier.AMQPURL = env.AMQPURL
	}
	if env.OTLPEndpoint != "" {
		c.Telemetry.Endpoint = env.OTLPEndpoint
	}
	if env.LogLevel != "" {
		c.Logs.Level = env.LogLevel
	}
	return nil
}

func (c *Config) applyDefaults() {
	setDefault(&c.Server.HTTPPort, 8080)
	setDefault(&c.Server.ReadTimeout, 10)
	setDefault(&c.Server.WriteTimeout, 10)
	setDefault(&c.Server.IdleTimeout, 60)
	setDefault(&c.Server.ShutdownTimeout, 15)

	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "bayledger"
	}
	if c.Cache.Path == "" {
		c.Cache.Path = "data/bayledger.db"
	}

	setDefault(&c.Remote.Port, 5432)
	if c.Remote.SSLMode == "" {
		c.Remote.SSLMode = "disable"
	}
	setDefault(&c.Remote.MaxOpenConns, 5)
	setDefault(&c.Remote.MaxIdleConns, 2)
	setDefault(&c.Remote.ConnMaxLifetime, 300)
	setDefault(&c.Remote.ConnectTimeout, 5)

	setDefault(&c.Membership.Timeout, 3)

	if c.Notifier.Kind == "" {
		c.Notifier.Kind = "log"
	}
	if c.Notifier.Exchange == "" {
		c.Notifier.Exchange = "bayledger.events"
	}
	if c.Notifier.RoutingKey == "" {
		c.Notifier.RoutingKey = "waitlist.notified"
	}

	setDefault(&c.Sync.IntervalSeconds, 30)
	setDefault(&c.Sync.ProbeIntervalSeconds, 10)
	setDefault(&c.Sync.MaxRetries, 3)
	setDefault(&c.Sync.InitialBackoffMs, 200)
	setDefault(&c.Sync.MaxBackoffMs, 5000)
	setDefault(&c.Sync.BatchSize, 100)

	setDefault(&c.Booking.TimeUnitMinutes, 60)
	setDefault(&c.Booking.SlotStepMinutes, c.Booking.TimeUnitMinutes)
	setDefault(&c.Booking.MaxDurationUnits, 8)

	if c.Pricing.Peak.Mode == "" {
		c.Pricing.Peak.Mode = "multiplier"
	}
	setDefault(&c.Pricing.Peak.MultiplierPercent, 100)

	for i := range c.Resources {
		if c.Resources[i].Category == "" {
			c.Resources[i].Category = "general"
		}
		setDefault(&c.Resources[i].Capacity, 1)
	}
}

// Validate проверяет конфигурацию целиком и возвращает все найденные проблемы
func (c *Config) Validate() error {
	var problems []string

	if len(c.Resources) == 0 {
		problems = append(problems, "at least one [[resources]] entry is required")
	}
	seen := make(map[int64]bool, len(c.Resources))
	for _, r := range c.Resources {
		if seen[r.ID] {
			problems = append(problems, fmt.Sprintf("duplicate resource id %d", r.ID))
		}
		seen[r.ID] = true
		if r.Category != "general" && r.Category != "members_only" {
			problems = append(problems, fmt.Sprintf("resource %d: unknown category %q", r.ID, r.Category))
		}
	}

	if c.Booking.TimeUnitMinutes <= 0 || c.Booking.SlotStepMinutes <= 0 || c.Booking.MaxDurationUnits <= 0 {
		problems = append(problems, "booking: time unit, slot step and max duration must be positive")
	}

	if c.Pricing.HourlyRate < 0 {
		problems = append(problems, "pricing: hourly_rate must not be negative")
	}
	for _, d := range c.Pricing.Durations {
		if d.Units <= 0 || d.Price < 0 {
			problems = append(problems, fmt.Sprintf("pricing: invalid duration entry units=%d price=%d", d.Units, d.Price))
		}
	}
	switch c.Pricing.Peak.Mode {
	case "multiplier":
		if c.Pricing.Peak.MultiplierPercent < 100 {
			problems = append(problems, "pricing.peak: multiplier_percent must be >= 100")
		}
	case "flat":
		if c.Pricing.Peak.FlatSurcharge < 0 {
			problems = append(problems, "pricing.peak: flat_surcharge must not be negative")
		}
	default:
		problems = append(problems, fmt.Sprintf("pricing.peak: unknown mode %q", c.Pricing.Peak.Mode))
	}
	for _, w := range []WindowConfig{c.Pricing.Peak.Weekday, c.Pricing.Peak.Weekend} {
		if w.StartHour < 0 || w.EndHour > 24 || w.StartHour > w.EndHour {
			problems = append(problems, fmt.Sprintf("pricing.peak: invalid window %d-%d", w.StartHour, w.EndHour))
		}
	}
	for _, t := range c.Pricing.Tiers {
		if t.Name == "" || t.DiscountPercent < 0 || t.DiscountPercent > 100 {
			problems = append(problems, fmt.Sprintf("pricing: invalid tier %q", t.Name))
		}
	}

	if _, err := c.WeeklyHours(); err != nil {
		problems = append(problems, err.Error())
	}

	switch c.Notifier.Kind {
	case "log":
	case "amqp":
		if c.Notifier.AMQPURL == "" {
			problems = append(problems, "notifier: amqp_url is required for kind=amqp")
		}
	default:
		problems = append(problems, fmt.Sprintf("notifier: unknown kind %q", c.Notifier.Kind))
	}

	if c.Remote.Enabled && (c.Remote.Host == "" || c.Remote.DBName == "") {
		problems = append(problems, "remote: host and dbname are required when enabled")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

func setDefault(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}
