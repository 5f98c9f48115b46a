package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vnkhanh/e-learning-backend/models"
)

type Config struct {
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	JWTSecret string
	TokenTTL  time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPEmail    string
	SMTPPassword string

	GeminiAPIKey      string
	GoogleCredentials string

	// AudioStorage selects where narration files go: "local" or "supabase".
	AudioStorage string
	AudioDir     string
	SupabaseURL  string
	SupabaseKey  string

	GenerateWorkers int
}

// Load reads the configuration from environment variables. Call
// godotenv.Load first so a .env file is honored in development.
func Load() *Config {
	ttlMinutes, err := strconv.Atoi(getenv("ACCESS_TOKEN_EXPIRE_MINUTES", "60"))
	if err != nil {
		ttlMinutes = 60
	}
	workers, err := strconv.Atoi(getenv("GENERATE_WORKERS", "4"))
	if err != nil || workers < 1 {
		workers = 4
	}

	return &Config{
		Port: getenv("PORT", "8080"),

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),

		JWTSecret: os.Getenv("SECRET_KEY"),
		TokenTTL:  time.Duration(ttlMinutes) * time.Minute,

		SMTPHost:     getenv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getenv("SMTP_PORT", "587"),
		SMTPEmail:    os.Getenv("SMTP_EMAIL"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),

		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GoogleCredentials: os.Getenv("GOOGLE_CREDENTIALS_JSON"),

		AudioStorage: getenv("AUDIO_STORAGE", "local"),
		AudioDir:     getenv("AUDIO_DIR", "audio_files"),
		SupabaseURL:  os.Getenv("SUPABASE_URL"),
		SupabaseKey:  os.Getenv("SUPABASE_KEY"),

		GenerateWorkers: workers,
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// OpenDB connects to PostgreSQL, tunes the connection pool and migrates
// the schema.
func OpenDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return nil, fmt.Errorf("cannot connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("cannot get sql.DB from gorm: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate runs AutoMigrate for every model. Shared with the test helpers.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Lesson{},
		&models.Quiz{},
		&models.Question{},
		&models.VerificationCode{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	return nil
}
