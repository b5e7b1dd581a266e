package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	JWTSecret       string
	MongoURI        string
	DBName          string
	Environment     string
	AppId           string
	AttioBaseURL    string // Attio REST API root
	AirtableBaseURL string // Airtable REST API root
	BackupDSN       string // Postgres DSN for pre-sync backups, empty disables backups
	SkipAuth        bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	return &Config{
		Port:            getEnv("PORT", "8080"),
		JWTSecret:       getEnv("JWT_SECRET", "secret"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:          getEnv("DB_NAME", "syncbridge"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		AppId:           getEnv("APP_ID", "go-syncbridge"),
		AttioBaseURL:    getEnv("ATTIO_BASE_URL", "https://api.attio.com/v2"),
		AirtableBaseURL: getEnv("AIRTABLE_BASE_URL", "https://api.airtable.com/v0"),
		BackupDSN:       getEnv("BACKUP_POSTGRES_DSN", ""),
		SkipAuth:        getEnv("SKIP_AUTH", "false") == "true",
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
