package config

const (
	delimiter = "."

	// EnvPrefix prefixes the environment variables overriding the keys,
	// e.g. RECORDS_LOG_LEVEL for log.level.
	EnvPrefix = "RECORDS"

	KeyLogPrefix = "log"

	KeyLogFormat = KeyLogPrefix + delimiter + "format"
	KeyLogLevel  = KeyLogPrefix + delimiter + "level"

	KeyCachePrefix = "cache"

	KeyCacheEnabled     = KeyCachePrefix + delimiter + "enabled"
	KeyCacheNumCounters = KeyCachePrefix + delimiter + "num_counters"
	KeyCacheMaxCost     = KeyCachePrefix + delimiter + "max_cost"
	KeyCacheTTL         = KeyCachePrefix + delimiter + "ttl"

	KeyRetryPrefix = "retry"

	KeyRetryTimes           = KeyRetryPrefix + delimiter + "times"
	KeyRetryInitialInterval = KeyRetryPrefix + delimiter + "initial_interval"
	KeyRetryMaxInterval     = KeyRetryPrefix + delimiter + "max_interval"
	KeyRetryMultiplier      = KeyRetryPrefix + delimiter + "multiplier"
)
