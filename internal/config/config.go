package config

import (
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig
	MongoDB     MongoDBConfig
	JWT         JWTConfig
	Fraud       FraudConfig
	Draw        DrawConfig
	Extraction  ExtractionConfig
	Geocoding   GeocodingConfig
	VectorStore VectorStoreConfig
	WhatsApp    WhatsAppConfig
	LogLevel    string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	AllowedHosts []string
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// JWTConfig holds JWT-specific configuration for the admin surface
type JWTConfig struct {
	Secret    string
	ExpiresIn int // seconds
}

// FraudConfig holds the distance thresholds (km) between fraud tiers
type FraudConfig struct {
	ValidKm      float64
	ReviewKm     float64
	SuspiciousKm float64
}

// DrawConfig holds daily draw scheduling configuration
type DrawConfig struct {
	ScheduleHourUTC   int
	ScheduleMinuteUTC int
}

// ExtractionConfig holds document-extraction service configuration
type ExtractionConfig struct {
	BaseURL        string
	APIKey         string
	TimeoutSeconds int
	Mock           bool
}

// GeocodingConfig holds geocoding service configuration
type GeocodingConfig struct {
	BaseURL        string
	UserAgent      string
	TimeoutSeconds int
	Mock           bool
}

// VectorStoreConfig holds vector index service configuration
type VectorStoreConfig struct {
	BaseURL        string
	Collection     string
	TimeoutSeconds int
	Enabled        bool
}

// WhatsAppConfig holds WhatsApp relay service configuration
type WhatsAppConfig struct {
	ServiceURL     string
	TimeoutSeconds int
	Mock           bool
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	setDefaults()
	bindEnvAliases()

	if err := viper.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults sets default values for configuration
func setDefaults() {
	viper.SetDefault("Server.Port", "8001")
	viper.SetDefault("Server.AllowedHosts", []string{"*"})
	viper.SetDefault("MongoDB.URI", "mongodb://localhost:27017")
	viper.SetDefault("MongoDB.Database", "retail_rewards")
	viper.SetDefault("JWT.ExpiresIn", 24*60*60) // 24 hours
	viper.SetDefault("LogLevel", "info")
	viper.SetDefault("Fraud.ValidKm", 50.0)
	viper.SetDefault("Fraud.ReviewKm", 100.0)
	viper.SetDefault("Fraud.SuspiciousKm", 200.0)
	viper.SetDefault("Draw.ScheduleHourUTC", 0)
	viper.SetDefault("Draw.ScheduleMinuteUTC", 0)
	viper.SetDefault("Extraction.BaseURL", "https://api.va.landing.ai/v1/ade")
	viper.SetDefault("Extraction.TimeoutSeconds", 30)
	viper.SetDefault("Extraction.Mock", true)
	viper.SetDefault("Geocoding.BaseURL", "https://nominatim.openstreetmap.org")
	viper.SetDefault("Geocoding.UserAgent", "retail_rewards_app")
	viper.SetDefault("Geocoding.TimeoutSeconds", 10)
	viper.SetDefault("Geocoding.Mock", true)
	viper.SetDefault("VectorStore.BaseURL", "http://localhost:6333")
	viper.SetDefault("VectorStore.Collection", "receipts")
	viper.SetDefault("VectorStore.TimeoutSeconds", 10)
	viper.SetDefault("VectorStore.Enabled", false)
	viper.SetDefault("WhatsApp.ServiceURL", "http://localhost:3001")
	viper.SetDefault("WhatsApp.TimeoutSeconds", 30)
	viper.SetDefault("WhatsApp.Mock", true)
}

// bindEnvAliases maps the flat env var names used in deployment to their
// nested config keys.
func bindEnvAliases() {
	_ = viper.BindEnv("MongoDB.URI", "MONGO_URL")
	_ = viper.BindEnv("MongoDB.Database", "DB_NAME")
	_ = viper.BindEnv("JWT.Secret", "JWT_SECRET")
	_ = viper.BindEnv("Extraction.APIKey", "LANDINGAI_API_KEY")
	_ = viper.BindEnv("WhatsApp.ServiceURL", "WHATSAPP_SERVICE_URL")
	_ = viper.BindEnv("VectorStore.BaseURL", "QDRANT_URL")
	_ = viper.BindEnv("Server.Port", "PORT")
}
