package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "brainix-dev-secret"

// Config holds application configuration
type Config struct {
	Port        string
	Env         string
	PublicURL   string
	CORSOrigins string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBDSN      string
	DBLogLevel string

	// Session tokens are RS256 when ClerkJWTPublicKey is set, HS256 with JWTSecret otherwise.
	JWTSecret              string
	ClerkJWTPublicKey      string
	ClerkAuthorizedParties []string
	ClerkSecretKey         string
	ClerkAPIURL            string
	ClerkWebhookSecret     string

	StripeSecretKey     string
	StripeWebhookSecret string
	StripeAPIURL        string
	Currency            string

	SendgridAPIKey  string
	EmailSender     string
	EmailSenderName string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	UploadDir      string
	MaxUploadBytes int

	ElasticURLs     []string
	ElasticIndex    string
	ElasticUsername string
	ElasticPassword string

	PendingOrderTTL  time.Duration
	SchedulerEnabled bool
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:        getEnv("PORT", "3000"),
		Env:         getEnv("APP_ENV", "development"),
		PublicURL:   getEnv("PUBLIC_URL", "http://localhost:3000"),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:5173"),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "brainix"),
		DBDSN:      getEnv("DB_DSN", ""),
		DBLogLevel: getEnv("DB_LOG_LEVEL", "warn"),

		JWTSecret:              getEnv("JWT_SECRET", defaultJWTSecret),
		ClerkJWTPublicKey:      getEnv("CLERK_JWT_PUBLIC_KEY", ""),
		ClerkAuthorizedParties: getEnvList("CLERK_AUTHORIZED_PARTIES"),
		ClerkSecretKey:         getEnv("CLERK_SECRET_KEY", ""),
		ClerkAPIURL:            getEnv("CLERK_API_URL", "https://api.clerk.com"),
		ClerkWebhookSecret:     getEnv("CLERK_WEBHOOK_SECRET", ""),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		StripeAPIURL:        getEnv("STRIPE_API_URL", "https://api.stripe.com"),
		Currency:            strings.ToLower(getEnv("CURRENCY", "usd")),

		SendgridAPIKey:  getEnv("SENDGRID_API_KEY", ""),
		EmailSender:     getEnv("EMAIL_SENDER", "noreply@brainix.local"),
		EmailSenderName: getEnv("EMAIL_SENDER_NAME", "BrainiX"),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", ""),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getEnv("MINIO_BUCKET", "brainix-media"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),
		UploadDir:      getEnv("UPLOAD_DIR", "./public/uploads"),
		MaxUploadBytes: getEnvInt("MAX_UPLOAD_BYTES", 5*1024*1024),

		ElasticURLs:     getEnvList("ELASTICSEARCH_URLS"),
		ElasticIndex:    getEnv("ELASTICSEARCH_INDEX", "courses"),
		ElasticUsername: getEnv("ELASTICSEARCH_USERNAME", "elastic"),
		ElasticPassword: getEnv("ELASTICSEARCH_PASSWORD", ""),

		PendingOrderTTL:  getEnvDuration("PENDING_ORDER_TTL", 24*time.Hour),
		SchedulerEnabled: getEnvBool("SCHEDULER_ENABLED", true),
	}

	if AppConfig.ClerkJWTPublicKey == "" && AppConfig.JWTSecret == defaultJWTSecret {
		log.Println("Warning: Using default JWT_SECRET and no CLERK_JWT_PUBLIC_KEY. Update it in your environment.")
	}
	if AppConfig.StripeWebhookSecret == "" {
		log.Println("Warning: STRIPE_WEBHOOK_SECRET is empty, payment webhooks will be rejected.")
	}
	if AppConfig.ClerkWebhookSecret == "" {
		log.Println("Warning: CLERK_WEBHOOK_SECRET is empty, identity webhooks will be rejected.")
	}
}

// IsProduction reports whether APP_ENV is production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to bool: %v", key, err)
		return defaultValue
	}
	return boolValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to duration: %v", key, err)
		return defaultValue
	}
	return d
}

// getEnvList splits a comma separated variable, dropping blanks
func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
