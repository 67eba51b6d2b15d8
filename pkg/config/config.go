package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"dira/pkg/client"
	"dira/pkg/logger"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	Currency                string
	DepositStandardHold     int64
	DepositLuxuryHold       int64
	LuxuryPriceThreshold    int64
	DepositUpgradeSurcharge int64
	DepositLockTTL          time.Duration

	StrikeSuspendThreshold float64
	TrustReticketOnRepeat  bool

	HighSeasonMonths     []time.Month
	HighSeasonFactor     float64
	NormalSeasonFactor   float64
	ParkingPremium       float64
	RenovationPremium    float64
	ZoneBaseRents        map[string]int64
	DefaultZoneRent      int64
	AssetTypeMultipliers map[string]float64

	GatewayBaseURL string
	GatewayAPIKey  string
	GatewayTimeout time.Duration

	GeminiAPIKey string
	GeminiModel  string

	NotificationsTopic   string
	ChatMessagesTopic    string
	ChatMessagesDLQTopic string
	ChatMessagesGroupID  string

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		Currency:                getEnvStr(EnvCurrency, DefaultCurrency),
		DepositStandardHold:     getEnvInt64(EnvDepositStandardHold, DefaultDepositStandardHold),
		DepositLuxuryHold:       getEnvInt64(EnvDepositLuxuryHold, DefaultDepositLuxuryHold),
		LuxuryPriceThreshold:    getEnvInt64(EnvLuxuryPriceThreshold, DefaultLuxuryPriceThreshold),
		DepositUpgradeSurcharge: getEnvInt64(EnvDepositUpgradeSurcharge, DefaultDepositUpgradeSurcharge),
		DepositLockTTL:          getEnvDuration(EnvDepositLockTTL, DefaultDepositLockTTL),

		StrikeSuspendThreshold: getEnvFloat(EnvStrikeSuspendThreshold, DefaultStrikeSuspendThreshold),
		TrustReticketOnRepeat:  getEnvBool(EnvTrustReticketOnRepeat, DefaultTrustReticketOnRepeat),

		HighSeasonMonths:     DefaultHighSeasonMonths,
		HighSeasonFactor:     getEnvFloat(EnvHighSeasonFactor, DefaultHighSeasonFactor),
		NormalSeasonFactor:   getEnvFloat(EnvNormalSeasonFactor, DefaultNormalSeasonFactor),
		ParkingPremium:       DefaultParkingPremium,
		RenovationPremium:    DefaultRenovationPremium,
		ZoneBaseRents:        DefaultZoneBaseRents,
		DefaultZoneRent:      DefaultZoneRent,
		AssetTypeMultipliers: DefaultAssetTypeMultipliers,

		GatewayBaseURL: getEnvStr(EnvGatewayBaseURL, DefaultGatewayBaseURL),
		GatewayAPIKey:  getEnvStr(EnvGatewayAPIKey, ""),
		GatewayTimeout: getEnvDuration(EnvGatewayTimeout, DefaultGatewayTimeout),

		GeminiAPIKey: getEnvStr(EnvGeminiAPIKey, ""),
		GeminiModel:  getEnvStr(EnvGeminiModel, DefaultGeminiModel),

		NotificationsTopic:   getEnvStr(EnvNotificationsTopic, DefaultNotificationsTopic),
		ChatMessagesTopic:    getEnvStr(EnvChatMessagesTopic, DefaultChatMessagesTopic),
		ChatMessagesDLQTopic: getEnvStr(EnvChatMessagesDLQTopic, DefaultChatMessagesDLQTopic),
		ChatMessagesGroupID:  getEnvStr(EnvChatMessagesGroupID, DefaultChatMessagesGroupID),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, logger.INFO),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errs = append(errs, "MongoURI cannot be empty")
	} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errs = append(errs, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", cfg.MongoURI))
	}

	if cfg.MongoDatabaseName == "" {
		errs = append(errs, "MongoDatabaseName cannot be empty")
	}

	for name, d := range map[string]time.Duration{
		"MongoConnTimeout": cfg.MongoConnTimeout,
		"RateLimitWindow":  cfg.RateLimitWindow,
		"RequestTimeout":   cfg.RequestTimeout,
		"IdempotencyTTL":   cfg.IdempotencyTTL,
		"ReadTimeout":      cfg.ReadTimeout,
		"WriteTimeout":     cfg.WriteTimeout,
		"IdleTimeout":      cfg.IdleTimeout,
		"ShutdownTimeout":  cfg.ShutdownTimeout,
		"DepositLockTTL":   cfg.DepositLockTTL,
		"GatewayTimeout":   cfg.GatewayTimeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Sprintf("%s must be positive, got: %s", name, d))
		}
	}

	if cfg.RateLimitRequests <= 0 {
		errs = append(errs, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errs = append(errs, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if cfg.Currency == "" {
		errs = append(errs, "Currency cannot be empty")
	}
	if cfg.DepositStandardHold <= 0 {
		errs = append(errs, fmt.Sprintf("DepositStandardHold must be positive, got: %d", cfg.DepositStandardHold))
	}
	if cfg.DepositLuxuryHold <= cfg.DepositStandardHold {
		errs = append(errs, fmt.Sprintf("DepositLuxuryHold (%d) must exceed DepositStandardHold (%d)", cfg.DepositLuxuryHold, cfg.DepositStandardHold))
	}
	if cfg.LuxuryPriceThreshold <= 0 {
		errs = append(errs, fmt.Sprintf("LuxuryPriceThreshold must be positive, got: %d", cfg.LuxuryPriceThreshold))
	}
	if cfg.DepositUpgradeSurcharge < 0 {
		errs = append(errs, fmt.Sprintf("DepositUpgradeSurcharge cannot be negative, got: %d", cfg.DepositUpgradeSurcharge))
	}

	if cfg.StrikeSuspendThreshold <= 0 {
		errs = append(errs, fmt.Sprintf("StrikeSuspendThreshold must be positive, got: %g", cfg.StrikeSuspendThreshold))
	}

	if cfg.HighSeasonFactor < 1 {
		errs = append(errs, fmt.Sprintf("HighSeasonFactor must be >= 1, got: %g", cfg.HighSeasonFactor))
	}
	if cfg.NormalSeasonFactor <= 0 {
		errs = append(errs, fmt.Sprintf("NormalSeasonFactor must be positive, got: %g", cfg.NormalSeasonFactor))
	}
	for _, m := range cfg.HighSeasonMonths {
		if m < time.January || m > time.December {
			errs = append(errs, fmt.Sprintf("HighSeasonMonths contains invalid month: %d", m))
		}
	}
	if cfg.DefaultZoneRent <= 0 {
		errs = append(errs, fmt.Sprintf("DefaultZoneRent must be positive, got: %d", cfg.DefaultZoneRent))
	}
	for zone, rent := range cfg.ZoneBaseRents {
		if rent <= 0 {
			errs = append(errs, fmt.Sprintf("ZoneBaseRents[%s] must be positive, got: %d", zone, rent))
		}
	}

	if len(errs) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, e := range errs {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, e)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"currency", cfg.Currency,
		"deposit_standard_hold", cfg.DepositStandardHold,
		"deposit_luxury_hold", cfg.DepositLuxuryHold,
		"luxury_price_threshold", cfg.LuxuryPriceThreshold,
		"deposit_upgrade_surcharge", cfg.DepositUpgradeSurcharge,
		"strike_suspend_threshold", cfg.StrikeSuspendThreshold,
		"trust_reticket_on_repeat", cfg.TrustReticketOnRepeat,
		"high_season_factor", cfg.HighSeasonFactor,
		"normal_season_factor", cfg.NormalSeasonFactor,
		"gateway_base_url", cfg.GatewayBaseURL,
		"gateway_key_set", cfg.GatewayAPIKey != "",
		"gemini_model", cfg.GeminiModel,
		"gemini_key_set", cfg.GeminiAPIKey != "",
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown()
}
