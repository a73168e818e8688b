package config

const (
	// Log Defaults
	DefaultLogFile       = ""
	DefaultLogFormat     = "console"
	DefaultLogLevel      = "info"
	DefaultMaxLogBackups = 3
	DefaultMaxLogSizeMB  = 100

	// Fetcher Defaults
	DefaultFetcherTimeoutSecs      = 10
	DefaultFetcherMaxBodyBytes     = 5 * 1024 * 1024
	DefaultFetcherMaxRedirects     = 10
	DefaultFetcherInsecureSkipTLS  = true
	DefaultFetcherPrimaryUserAgent = "curl/8.0"
	DefaultFetcherAltUserAgent     = "PostmanRuntime/7.49.0"

	// Discovery Defaults
	DefaultDiscoverySitemapCap          = 5
	DefaultDiscoverySitemapTimeoutSecs  = 5
	DefaultDiscoveryHyperlinkCapPerPage = 10
	DefaultDiscoveryMaxHyperlinkPages   = 25
	DefaultDiscoveryFanout              = 4
	DefaultDiscoveryRequestsPerSecond   = 0
	DefaultDiscoveryScriptRoutes        = true

	// Renderer Defaults
	DefaultRendererEnabled           = true
	DefaultRendererPoolSize          = 2
	DefaultRendererNavTimeoutSecs    = 30
	DefaultRendererSettleTimeoutSecs = 8
	DefaultRendererSettleDelayMs     = 8000

	// Engine Defaults
	DefaultEngineConcurrency = 4

	// Harvester Defaults
	DefaultHarvesterProvider       = "places"
	DefaultHarvesterAPIKeyEnv      = "GOOGLE_PLACES_API_KEY"
	DefaultHarvesterPlacesEndpoint = "https://places.googleapis.com/v1/places:searchText"
	DefaultHarvesterMapsBaseURL    = "https://www.google.com/maps/search/"
	DefaultHarvesterScrollPauseMs  = 1200
	DefaultHarvesterMaxScrolls     = 50
	DefaultHarvesterTimeoutSecs    = 30

	// Output Defaults
	DefaultOutputDir     = "."
	DefaultOutputParquet = false

	// History Defaults
	DefaultHistoryEnabled = false
	DefaultHistoryDBPath  = "data/contacthound.db"

	// Resource Limiter Defaults
	DefaultResourceLimiterEnabled            = true
	DefaultResourceLimiterSystemMemThreshold = 0.9
)
