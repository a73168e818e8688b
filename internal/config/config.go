package config

import "time"

// FetcherConfig controls the static page fetcher and its header profiles
type FetcherConfig struct {
	TimeoutSecs      int    `json:"timeout_secs,omitempty" yaml:"timeout_secs,omitempty" validate:"omitempty,min=1"`
	MaxBodyBytes     int    `json:"max_body_bytes,omitempty" yaml:"max_body_bytes,omitempty" validate:"omitempty,min=1024"`
	MaxRedirects     int    `json:"max_redirects,omitempty" yaml:"max_redirects,omitempty" validate:"omitempty,min=0"`
	InsecureSkipTLS  bool   `json:"insecure_skip_tls" yaml:"insecure_skip_tls"`
	Proxy            string `json:"proxy,omitempty" yaml:"proxy,omitempty" validate:"omitempty,url"`
	PrimaryUserAgent string `json:"primary_user_agent,omitempty" yaml:"primary_user_agent,omitempty"`
	AltUserAgent     string `json:"alt_user_agent,omitempty" yaml:"alt_user_agent,omitempty"`
}

func NewDefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		TimeoutSecs:      DefaultFetcherTimeoutSecs,
		MaxBodyBytes:     DefaultFetcherMaxBodyBytes,
		MaxRedirects:     DefaultFetcherMaxRedirects,
		InsecureSkipTLS:  DefaultFetcherInsecureSkipTLS,
		PrimaryUserAgent: DefaultFetcherPrimaryUserAgent,
		AltUserAgent:     DefaultFetcherAltUserAgent,
	}
}

// Timeout returns the per-attempt timeout.
func (c FetcherConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// DiscoveryConfig bounds the candidate frontier of a single root
type DiscoveryConfig struct {
	SitemapCap          int      `json:"sitemap_cap,omitempty" yaml:"sitemap_cap,omitempty" validate:"omitempty,min=1"`
	SitemapTimeoutSecs  int      `json:"sitemap_timeout_secs,omitempty" yaml:"sitemap_timeout_secs,omitempty" validate:"omitempty,min=1"`
	HyperlinkCapPerPage int      `json:"hyperlink_cap_per_page,omitempty" yaml:"hyperlink_cap_per_page,omitempty" validate:"omitempty,min=1"`
	MaxHyperlinkPages   int      `json:"max_hyperlink_pages,omitempty" yaml:"max_hyperlink_pages,omitempty" validate:"omitempty,min=1"`
	Fanout              int      `json:"fanout,omitempty" yaml:"fanout,omitempty" validate:"omitempty,min=1,max=64"`
	RequestsPerSecond   float64  `json:"requests_per_second,omitempty" yaml:"requests_per_second,omitempty" validate:"omitempty,min=0"`
	SameSiteOnly        bool     `json:"same_site_only" yaml:"same_site_only"`
	ScriptRoutes        bool     `json:"script_routes" yaml:"script_routes"`
	CommonPaths         []string `json:"common_paths,omitempty" yaml:"common_paths,omitempty" validate:"omitempty,dive,startswith=/"`
}

func NewDefaultDiscoveryConfig() DiscoveryConfig {
	return DiscoveryConfig{
		SitemapCap:          DefaultDiscoverySitemapCap,
		SitemapTimeoutSecs:  DefaultDiscoverySitemapTimeoutSecs,
		HyperlinkCapPerPage: DefaultDiscoveryHyperlinkCapPerPage,
		MaxHyperlinkPages:   DefaultDiscoveryMaxHyperlinkPages,
		Fanout:              DefaultDiscoveryFanout,
		RequestsPerSecond:   DefaultDiscoveryRequestsPerSecond,
		SameSiteOnly:        false,
		ScriptRoutes:        DefaultDiscoveryScriptRoutes,
	}
}

// SitemapTimeout returns the timeout of each sitemap probe.
func (c DiscoveryConfig) SitemapTimeout() time.Duration {
	return time.Duration(c.SitemapTimeoutSecs) * time.Second
}

// RendererConfig controls the headless browser fallback
type RendererConfig struct {
	Enabled           bool   `json:"enabled" yaml:"enabled"`
	BrowserPath       string `json:"browser_path,omitempty" yaml:"browser_path,omitempty"`
	PoolSize          int    `json:"pool_size,omitempty" yaml:"pool_size,omitempty" validate:"omitempty,min=1,max=16"`
	NavTimeoutSecs    int    `json:"nav_timeout_secs,omitempty" yaml:"nav_timeout_secs,omitempty" validate:"omitempty,min=1"`
	SettleTimeoutSecs int    `json:"settle_timeout_secs,omitempty" yaml:"settle_timeout_secs,omitempty" validate:"omitempty,min=1"`
	SettleDelayMs     int    `json:"settle_delay_ms,omitempty" yaml:"settle_delay_ms,omitempty" validate:"omitempty,min=0"`
	UserAgent         string `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
}

func NewDefaultRendererConfig() RendererConfig {
	return RendererConfig{
		Enabled:           DefaultRendererEnabled,
		PoolSize:          DefaultRendererPoolSize,
		NavTimeoutSecs:    DefaultRendererNavTimeoutSecs,
		SettleTimeoutSecs: DefaultRendererSettleTimeoutSecs,
		SettleDelayMs:     DefaultRendererSettleDelayMs,
	}
}

// EngineConfig controls parallelism across roots
type EngineConfig struct {
	Concurrency int `json:"concurrency,omitempty" yaml:"concurrency,omitempty" validate:"omitempty,min=1,max=256"`
}

func NewDefaultEngineConfig() EngineConfig {
	return EngineConfig{Concurrency: DefaultEngineConcurrency}
}

// HarvesterConfig selects and configures the root URL source for keyword runs
type HarvesterConfig struct {
	Provider       string `json:"provider,omitempty" yaml:"provider,omitempty" validate:"omitempty,oneof=places maps"`
	APIKeyEnv      string `json:"api_key_env,omitempty" yaml:"api_key_env,omitempty"`
	EnvFile        string `json:"env_file,omitempty" yaml:"env_file,omitempty"`
	PlacesEndpoint string `json:"places_endpoint,omitempty" yaml:"places_endpoint,omitempty" validate:"omitempty,url"`
	MapsBaseURL    string `json:"maps_base_url,omitempty" yaml:"maps_base_url,omitempty" validate:"omitempty,url"`
	ScrollPauseMs  int    `json:"scroll_pause_ms,omitempty" yaml:"scroll_pause_ms,omitempty" validate:"omitempty,min=100"`
	MaxScrolls     int    `json:"max_scrolls,omitempty" yaml:"max_scrolls,omitempty" validate:"omitempty,min=1"`
	TimeoutSecs    int    `json:"timeout_secs,omitempty" yaml:"timeout_secs,omitempty" validate:"omitempty,min=1"`
}

func NewDefaultHarvesterConfig() HarvesterConfig {
	return HarvesterConfig{
		Provider:       DefaultHarvesterProvider,
		APIKeyEnv:      DefaultHarvesterAPIKeyEnv,
		EnvFile:        ".env",
		PlacesEndpoint: DefaultHarvesterPlacesEndpoint,
		MapsBaseURL:    DefaultHarvesterMapsBaseURL,
		ScrollPauseMs:  DefaultHarvesterScrollPauseMs,
		MaxScrolls:     DefaultHarvesterMaxScrolls,
		TimeoutSecs:    DefaultHarvesterTimeoutSecs,
	}
}

// OutputConfig controls persisted result files
type OutputConfig struct {
	Dir     string `json:"dir,omitempty" yaml:"dir,omitempty"`
	Parquet bool   `json:"parquet" yaml:"parquet"`
}

func NewDefaultOutputConfig() OutputConfig {
	return OutputConfig{
		Dir:     DefaultOutputDir,
		Parquet: DefaultOutputParquet,
	}
}

// HistoryConfig controls the SQLite run history
type HistoryConfig struct {
	Enabled      bool   `json:"enabled" yaml:"enabled"`
	SQLiteDBPath string `json:"sqlite_db_path,omitempty" yaml:"sqlite_db_path,omitempty" validate:"required_if=Enabled true"`
}

func NewDefaultHistoryConfig() HistoryConfig {
	return HistoryConfig{
		Enabled:      DefaultHistoryEnabled,
		SQLiteDBPath: DefaultHistoryDBPath,
	}
}
