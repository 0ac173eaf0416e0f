package constants

import "time"

const (
	UsernameMinLength  = 2
	UsernameMaxLength  = 40
	PasswordMinLength  = 8
	PasswordMaxLength  = 72
	EmailMaxLength     = 50
	BioMaxLength       = 300
	JWTSecretMinLength = 32

	OTPLength                 = 4
	ResetTokenSize            = 20
	ResetTokenWindow          = time.Hour
	ResetTokenCleanupInterval = time.Hour

	BcryptCost = 12

	MaxPostLength    = 5000
	MaxCommentLength = 1000
	MaxMessageLength = 4000

	DefaultSuggestionLimit = 20
	MaxSuggestionLimit     = 100

	DefaultMaxRequestSize = 1 << 20
	MaxUploadSizeBytes    = 10 * 1024 * 1024

	RateLimitCleanupInterval = 5 * time.Minute

	DBPoolMaxOpenConns    = 25
	DBPoolMinOpenConns    = 5
	DBPoolConnMaxLifetime = time.Hour
	DBPoolConnMaxIdleTime = 30 * time.Minute
	DBPoolHealthCheck     = time.Minute
	DBPoolConnectTimeout  = 5 * time.Second
	DBPoolMaxAttempts     = 10
	DBPoolRetryDelay      = time.Second
	DBPoolMetricsInterval = 30 * time.Second

	ServerReadHeaderTimeout = 5 * time.Second
	ServerReadTimeout       = 10 * time.Second
	ServerWriteTimeout      = 10 * time.Second
	ServerIdleTimeout       = 120 * time.Second

	ShutdownTimeout = 30 * time.Second
	DrainTimeout    = 10 * time.Second

	DefaultHTTPPort       = "8080"
	DefaultRequestTimeout = 5 * time.Second
	DefaultAccessTokenTTL = 24 * time.Hour

	DefaultWebSocketWriteWait   = 10 * time.Second
	DefaultWebSocketPongWait    = 60 * time.Second
	DefaultWebSocketPingPeriod  = 54 * time.Second
	DefaultWebSocketMaxMsgSize  = 1 << 20
	DefaultWebSocketSendBufSize = 256

	LoggerMaxSize    = 100
	LoggerMaxBackups = 3
	LoggerMaxAge     = 28
)

type TraceIDKeyType string

const TraceIDKey TraceIDKeyType = "trace_id"
