package upstream

import (
	"log/slog"
	"net/http"

	"github.com/barnslig/mediacccde-graphql/health"
	"github.com/barnslig/mediacccde-graphql/metric"
	"github.com/barnslig/mediacccde-graphql/pkg/cache"
	"github.com/barnslig/mediacccde-graphql/pkg/worker"
)

// Source names used in logs, metrics and health checks.
const (
	SourceMedia   = "media"
	SourceMirrors = "mirrors"
	SourceNews    = "news"
)

// Sources bundles the data sources the resolvers read from.
type Sources struct {
	Media   *MediaAPI
	Mirrors *MirrorAPI
	News    *NewsAPI
}

// Options holds the shared collaborators of all sources. Every field is optional.
type Options struct {
	HTTPClient *http.Client
	Cache      cache.Store
	Registry   *metric.MetricsRegistry
	Logger     *slog.Logger
}

// NewSources creates the three data sources. Media and news responses are
// cached for the configured TTL; the mirror list is always fetched fresh.
func NewSources(config Config, opts Options) (*Sources, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	common := []ClientOption{WithHTTPClient(opts.HTTPClient), WithLogger(opts.Logger)}
	var fanoutOpts []worker.Option
	if opts.Registry != nil {
		common = append(common, WithMetrics(opts.Registry.CoreMetrics()))
		fanoutOpts = append(fanoutOpts, worker.WithMetricsRegistry(opts.Registry, "related_events"))
	}

	cached := append(common[:len(common):len(common)], WithCache(opts.Cache, config.CacheTTL()))

	mediaClient, err := NewClient(SourceMedia, config.MediaBaseURL, config, cached...)
	if err != nil {
		return nil, err
	}
	mirrorClient, err := NewClient(SourceMirrors, config.MirrorBaseURL, config, common...)
	if err != nil {
		return nil, err
	}
	newsClient, err := NewClient(SourceNews, config.NewsURL, config, cached...)
	if err != nil {
		return nil, err
	}

	fanout, err := worker.NewFanout(config.FanoutLimit, fanoutOpts...)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Upstream sources ready",
		"media_base_url", config.MediaBaseURL,
		"cache_ttl", config.CacheTTL(),
		"fanout_limit", fanout.Limit())

	return &Sources{
		Media:   NewMediaAPI(mediaClient, fanout),
		Mirrors: NewMirrorAPI(mirrorClient),
		News:    NewNewsAPI(newsClient),
	}, nil
}

// Checkers returns one health checker per source.
func (s *Sources) Checkers() []health.Checker {
	clients := []*Client{s.Media.Client(), s.Mirrors.Client(), s.News.Client()}

	checkers := make([]health.Checker, 0, len(clients))
	for _, c := range clients {
		c := c
		checkers = append(checkers, func() health.Status {
			return c.Health("upstream." + c.Source())
		})
	}
	return checkers
}
