package constants

type contextKey string

const (
	PoolKey   contextKey = "pool"
	LoggerKey contextKey = "logger"
)
