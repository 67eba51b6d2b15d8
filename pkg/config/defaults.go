package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "dira"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort = "8080"

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 100
)

// Deposit constants. Hold amounts and the surcharge are in minor currency
// units (agorot); the luxury threshold compares against a listing's
// nightly price in whole shekels.
const (
	DefaultCurrency                = "ILS"
	DefaultDepositStandardHold     = int64(200000)
	DefaultDepositLuxuryHold       = int64(500000)
	DefaultLuxuryPriceThreshold    = int64(1000)
	DefaultDepositUpgradeSurcharge = int64(3000)
	DefaultDepositLockTTL          = 10 * time.Second
)

const (
	DefaultStrikeSuspendThreshold = 3.0
	DefaultTrustReticketOnRepeat  = false
)

const (
	DefaultHighSeasonFactor   = 1.2
	DefaultNormalSeasonFactor = 1.0

	DefaultParkingPremium    = 0.03
	DefaultRenovationPremium = 0.10

	DefaultZoneRent = int64(1800)
)

// June through September: the local high season for short-term sublets.
var DefaultHighSeasonMonths = []time.Month{
	time.June, time.July, time.August, time.September,
}

// Base monthly rent per room, keyed by canonical zone id, whole shekels.
var DefaultZoneBaseRents = map[string]int64{
	"tel-aviv":   2600,
	"ramat-gan":  2300,
	"herzliya":   2500,
	"jerusalem":  2100,
	"haifa":      1500,
	"beer-sheva": 1200,
}

var DefaultAssetTypeMultipliers = map[string]float64{
	"apartment":        1.0,
	"studio":           0.85,
	"garden-apartment": 1.1,
	"duplex":           1.2,
	"private-house":    1.25,
	"penthouse":        1.35,
}

const (
	DefaultGatewayBaseURL = "http://localhost:9090"
	DefaultGatewayTimeout = 10 * time.Second

	DefaultGeminiModel = "gemini-2.5-flash"
)

const (
	DefaultNotificationsTopic   = "dira.notifications"
	DefaultChatMessagesTopic    = "dira.chat-messages"
	DefaultChatMessagesDLQTopic = "dira.chat-messages.dlq"
	DefaultChatMessagesGroupID  = "dira-safety"
)
