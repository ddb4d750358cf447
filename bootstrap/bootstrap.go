// Package bootstrap wires the client's dependencies from configuration.
package bootstrap

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/artpar/commercekit/adapters/clock"
	"github.com/artpar/commercekit/adapters/httpclient"
	"github.com/artpar/commercekit/adapters/idgen"
	"github.com/artpar/commercekit/adapters/memory"
	"github.com/artpar/commercekit/adapters/metrics"
	"github.com/artpar/commercekit/adapters/oauth"
	"github.com/artpar/commercekit/app"
	"github.com/artpar/commercekit/config"
	"github.com/artpar/commercekit/core/model"
)

// Version is the client version, reported in the user agent.
var Version = "dev"

// App holds the wired client and its collaborators.
type App struct {
	Config     *config.Config
	Client     *app.Client
	Adapter    *httpclient.Adapter
	Tokens     *oauth.Provider
	TokenStore *memory.TokenStore
	Context    *model.Context

	// Registry is nil when metrics are disabled.
	Registry *prometheus.Registry
	Metrics  *metrics.Collector

	mu     sync.RWMutex
	logger zerolog.Logger
	out    io.Writer
	holder *config.Holder
}

// Option customizes initialization.
type Option func(*App)

// WithOutput sets the log destination. The default is stderr.
func WithOutput(w io.Writer) Option {
	return func(a *App) { a.out = w }
}

// New creates the application from cfg.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{Config: cfg, out: os.Stderr}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = SetupLogger(cfg.Logging, a.out)

	if cfg.Metrics.Enabled {
		a.Registry = prometheus.NewRegistry()
		a.Metrics = metrics.New(a.Registry)
		a.logger.Debug().Msg("prometheus metrics enabled")
	}

	ctx, err := NewModelContext(cfg.Context, a.logger)
	if err != nil {
		return nil, fmt.Errorf("init context: %w", err)
	}
	a.Context = ctx

	a.Adapter = httpclient.New(httpclient.Config{
		BaseURL:    cfg.API.URL,
		UserAgent:  cfg.API.UserAgent + "/" + Version,
		Timeout:    cfg.API.Timeout,
		BatchLimit: cfg.API.BatchLimit,
		Headers:    cfg.API.Headers,
	},
		httpclient.WithLogger(a.logger),
		httpclient.WithIDGenerator(idgen.UUID{}),
		httpclient.WithMetrics(a.Metrics),
	)

	a.TokenStore = memory.NewTokenStore()
	a.Tokens, err = oauth.NewProvider(oauthConfig(cfg), a.Adapter,
		oauth.WithStore(a.TokenStore),
		oauth.WithClock(clock.Real{}),
		oauth.WithMetrics(a.Metrics),
		oauth.WithLogger(a.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("init oauth: %w", err)
	}

	a.Client = app.NewClient(app.ClientDeps{
		Adapter: a.Adapter,
		Tokens:  a.Tokens,
		Logger:  a.logger,
	}, app.ClientConfig{
		ProjectKey: cfg.API.ProjectKey,
		Context:    a.Context,
	})

	a.logger.Debug().
		Str("api_url", cfg.API.URL).
		Str("project_key", cfg.API.ProjectKey).
		Msg("client initialized")
	return a, nil
}

// NewWithHotReload loads the config file at path and re-applies it whenever
// the file changes or the process receives SIGHUP.
func NewWithHotReload(path string, opts ...Option) (*App, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	a, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}

	holder, err := config.NewHolder(path, a.Logger())
	if err != nil {
		return nil, err
	}
	holder.SetMetrics(a.Metrics)
	holder.OnChange(a.Apply)
	if err := holder.WatchFile(); err != nil {
		holder.Stop()
		return nil, err
	}
	holder.WatchSignals()
	a.holder = holder
	return a, nil
}

// Apply re-applies the reloadable parts of cfg: log level and format,
// project key, OAuth credentials and the model context.
func (a *App) Apply(cfg *config.Config) {
	logger := SetupLogger(cfg.Logging, a.out)

	ctx, err := NewModelContext(cfg.Context, logger)
	if err != nil {
		logger.Error().Err(err).Msg("invalid context config, keeping previous")
		ctx = a.Context
	}

	if err := a.Tokens.Reconfigure(oauthConfig(cfg)); err != nil {
		logger.Error().Err(err).Msg("invalid oauth config, keeping previous")
	}
	a.Adapter.SetLogger(logger)
	a.Client.UpdateConfig(cfg.API.ProjectKey, ctx)

	a.mu.Lock()
	a.logger = logger
	a.Config = cfg
	a.Context = ctx
	a.mu.Unlock()
}

// Logger returns the current logger.
func (a *App) Logger() zerolog.Logger {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.logger
}

// Shutdown stops config watching.
func (a *App) Shutdown() error {
	if a.holder != nil {
		a.holder.Stop()
	}
	return nil
}

func oauthConfig(cfg *config.Config) oauth.Config {
	return oauth.Config{
		TokenURL:    cfg.OAuth.URL,
		Credentials: cfg.OAuth.Credentials(),
		Leeway:      cfg.OAuth.Leeway,
	}
}

// NewModelContext builds the model context described by cfg. Shape errors
// reported in graceful mode are logged at warn.
func NewModelContext(cfg config.ContextConfig, logger zerolog.Logger) (*model.Context, error) {
	locale, err := language.Parse(cfg.Locale)
	if err != nil {
		return nil, fmt.Errorf("locale %q: %w", cfg.Locale, err)
	}
	tags := make([]language.Tag, 0, len(cfg.Languages))
	for _, l := range cfg.Languages {
		tag, err := language.Parse(l)
		if err != nil {
			return nil, fmt.Errorf("language %q: %w", l, err)
		}
		tags = append(tags, tag)
	}
	return model.NewContext(
		model.WithLocale(locale),
		model.WithLanguages(tags...),
		model.WithGraceful(cfg.Graceful),
		model.WithErrorHandler(func(err error) {
			logger.Warn().Err(err).Msg("model shape error")
		}),
	), nil
}

// SetupLogger builds a logger writing to out in the configured format and
// level. Unknown levels fall back to info.
func SetupLogger(cfg config.LoggingConfig, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
