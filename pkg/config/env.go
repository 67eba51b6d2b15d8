package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvCurrency                = "CURRENCY"
	EnvDepositStandardHold     = "DEPOSIT_STANDARD_HOLD"
	EnvDepositLuxuryHold       = "DEPOSIT_LUXURY_HOLD"
	EnvLuxuryPriceThreshold    = "LUXURY_PRICE_THRESHOLD"
	EnvDepositUpgradeSurcharge = "DEPOSIT_UPGRADE_SURCHARGE"
	EnvDepositLockTTL          = "DEPOSIT_LOCK_TTL"

	EnvStrikeSuspendThreshold = "STRIKE_SUSPEND_THRESHOLD"
	EnvTrustReticketOnRepeat  = "TRUST_RETICKET_ON_REPEAT"

	EnvHighSeasonFactor   = "HIGH_SEASON_FACTOR"
	EnvNormalSeasonFactor = "NORMAL_SEASON_FACTOR"

	EnvGatewayBaseURL = "PAYMENT_GATEWAY_BASE_URL"
	EnvGatewayAPIKey  = "PAYMENT_GATEWAY_API_KEY"
	EnvGatewayTimeout = "PAYMENT_GATEWAY_TIMEOUT"

	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvGeminiModel  = "GEMINI_MODEL"

	EnvNotificationsTopic   = "KAFKA_NOTIFICATIONS_TOPIC"
	EnvChatMessagesTopic    = "KAFKA_CHAT_MESSAGES_TOPIC"
	EnvChatMessagesDLQTopic = "KAFKA_CHAT_MESSAGES_DLQ_TOPIC"
	EnvChatMessagesGroupID  = "KAFKA_CHAT_MESSAGES_GROUP_ID"
)
