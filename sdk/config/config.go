package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Default configuration constants tuned for worker processes.
const (
	DefaultNATSHost = "localhost"
	DefaultNATSPort = "4222"

	DefaultRequestTimeout = 10 * time.Second
	// DefaultPollTimeout is longer than the frontend's long-poll window so an
	// empty poll comes back as a response, not a timeout.
	DefaultPollTimeout   = 70 * time.Second
	DefaultDrainTimeout  = 30 * time.Second
	DefaultReconnectWait = 2 * time.Second
	DefaultPingInterval  = 2 * time.Minute

	DefaultMaxReconnects = -1 // reconnect forever
	DefaultMaxPingsOut   = 2

	DefaultFrontendService = "cadence-frontend"

	DefaultPollers       = 2
	DefaultMaxConcurrent = 100

	DefaultLogLevel       = "info"
	DefaultLogFormat      = "json"
	DefaultMetricsAddress = ":9464"
)

// NATSConfig holds NATS-specific configuration knobs.
type NATSConfig struct {
	URL           string        `json:"url"             env:"URL"`
	Host          string        `json:"host"            env:"HOST"`
	Port          string        `json:"port"            env:"PORT"`
	MaxReconnects int           `json:"max_reconnects"  env:"MAX_RECONNECTS"`
	ReconnectWait time.Duration `json:"reconnect_wait"  env:"RECONNECT_WAIT"`
	DrainTimeout  time.Duration `json:"drain_timeout"   env:"DRAIN_TIMEOUT"`
	PingInterval  time.Duration `json:"ping_interval"   env:"PING_INTERVAL"`
	MaxPingsOut   int           `json:"max_pings_out"   env:"MAX_PINGS_OUT"`
	ClientName    string        `json:"client_name"     env:"CLIENT_NAME"`
}

// TimeoutConfig encapsulates per-call timeouts.
type TimeoutConfig struct {
	RequestTimeout time.Duration `json:"request_timeout" env:"REQUEST_TIMEOUT"`
	PollTimeout    time.Duration `json:"poll_timeout"    env:"POLL_TIMEOUT"`
}

// FrontendConfig names the service the worker talks to.
type FrontendConfig struct {
	Service   string `json:"service"   env:"SERVICE"`
	Namespace string `json:"namespace" env:"NAMESPACE"`
}

// WorkerConfig is used by cmd/cadence-worker to build a worker.
type WorkerConfig struct {
	Domain        string `json:"domain"         env:"DOMAIN"`
	TaskList      string `json:"task_list"      env:"TASK_LIST"`
	Identity      string `json:"identity"       env:"IDENTITY"`
	Pollers       int    `json:"pollers"        env:"POLLERS"`
	MaxConcurrent int    `json:"max_concurrent" env:"MAX_CONCURRENT"`
}

type LogConfig struct {
	Level  string `json:"level"  env:"LEVEL"`
	Format string `json:"format" env:"FORMAT"`
	// OTelExporter selects an OTLP log exporter: "", "http" or "grpc".
	OTelExporter string `json:"otel_exporter" env:"OTEL_EXPORTER"`
	OTelEndpoint string `json:"otel_endpoint" env:"OTEL_ENDPOINT"`
}

type MetricsConfig struct {
	Enabled bool   `json:"enabled" env:"ENABLED"`
	Address string `json:"address" env:"ADDRESS"`
}

// Config is the public configuration users can construct or load from env.
type Config struct {
	NATS     NATSConfig     `json:"nats"     envPrefix:"NATS_"`
	Timeouts TimeoutConfig  `json:"timeouts" envPrefix:"TIMEOUTS_"`
	Frontend FrontendConfig `json:"frontend" envPrefix:"FRONTEND_"`
	Worker   WorkerConfig   `json:"worker"   envPrefix:"WORKER_"`
	Log      LogConfig      `json:"log"      envPrefix:"LOG_"`
	Metrics  MetricsConfig  `json:"metrics"  envPrefix:"METRICS_"`
}

// Default returns a Config with every default applied and no env read.
func Default() *Config {
	return &Config{
		NATS: NATSConfig{
			Host:          DefaultNATSHost,
			Port:          DefaultNATSPort,
			MaxReconnects: DefaultMaxReconnects,
			ReconnectWait: DefaultReconnectWait,
			DrainTimeout:  DefaultDrainTimeout,
			PingInterval:  DefaultPingInterval,
			MaxPingsOut:   DefaultMaxPingsOut,
			ClientName:    "cadence-go-worker",
		},
		Timeouts: TimeoutConfig{
			RequestTimeout: DefaultRequestTimeout,
			PollTimeout:    DefaultPollTimeout,
		},
		Frontend: FrontendConfig{
			Service: DefaultFrontendService,
		},
		Worker: WorkerConfig{
			Pollers:       DefaultPollers,
			MaxConcurrent: DefaultMaxConcurrent,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Metrics: MetricsConfig{
			Address: DefaultMetricsAddress,
		},
	}
}

// Load loads configuration from environment variables applying defaults.
func Load() (*Config, error) {
	cfg := Default()
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if cfg.NATS.URL == "" {
		cfg.NATS.URL = fmt.Sprintf("nats://%s:%s", cfg.NATS.Host, cfg.NATS.Port)
	}
	return cfg, nil
}

// Validate reports every invalid value at once.
func (c *Config) Validate() error {
	var errs []error
	if c.NATS.URL == "" && c.NATS.Host == "" {
		errs = append(errs, errors.New("nats: url or host is required"))
	}
	if c.Timeouts.RequestTimeout <= 0 {
		errs = append(errs, errors.New("timeouts: request timeout must be positive"))
	}
	if c.Timeouts.PollTimeout < c.Timeouts.RequestTimeout {
		errs = append(errs, errors.New("timeouts: poll timeout must not be shorter than the request timeout"))
	}
	if c.Frontend.Service == "" {
		errs = append(errs, errors.New("frontend: service is required"))
	}
	if c.Worker.Pollers < 0 || c.Worker.MaxConcurrent < 0 {
		errs = append(errs, errors.New("worker: pollers and max concurrent must not be negative"))
	}
	switch c.Log.OTelExporter {
	case "", "http", "grpc":
	default:
		errs = append(errs, fmt.Errorf("log: unknown otel exporter %q", c.Log.OTelExporter))
	}
	return errors.Join(errs...)
}

// ValidateWorker additionally requires the values a polling worker needs.
func (c *Config) ValidateWorker() error {
	var errs []error
	if c.Worker.Domain == "" {
		errs = append(errs, errors.New("worker: domain is required"))
	}
	if c.Worker.TaskList == "" {
		errs = append(errs, errors.New("worker: task list is required"))
	}
	return errors.Join(append([]error{c.Validate()}, errs...)...)
}

// Interface implementation for the NATS transport.
func (c *Config) Endpoint() string                 { return c.NATS.URL }
func (c *Config) NATSMaxReconnects() int           { return c.NATS.MaxReconnects }
func (c *Config) NATSReconnectWait() time.Duration { return c.NATS.ReconnectWait }
func (c *Config) NATSDrainTimeout() time.Duration  { return c.NATS.DrainTimeout }
func (c *Config) NATSPingInterval() time.Duration  { return c.NATS.PingInterval }
func (c *Config) NATSMaxPingsOut() int             { return c.NATS.MaxPingsOut }
func (c *Config) NATSClientName() string           { return c.NATS.ClientName }
func (c *Config) Namespace() string                { return c.Frontend.Namespace }
func (c *Config) RequestTimeout() time.Duration    { return c.Timeouts.RequestTimeout }
