package constants

// Viper configuration keys.
const (
	ViperAPIAddr       = "api.addr"
	ViperDashboardAddr = "dashboard.addr"
	ViperDatabaseDSN   = "database.dsn"
	ViperBackendURL    = "backend.url"
	ViperSnapshotPath  = "backend.snapshot_path"
	ViperSecretKey     = "auth.secret"
	ViperLogLevel      = "log.level"
	ViperCORSOrigin    = "api.cors_origin"

	ViperSeedBusinessesPath = "seed.businesses_path"
	ViperSeedReviewsPath    = "seed.reviews_path"
)

// Cookie and context keys shared between middleware and handlers.
const (
	CookieKeySecretToken = "secret_token"
	CtxKeyRequestID      = "request_id"
)
