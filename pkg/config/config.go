package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Proposal store backends.
const (
	ProposalStoreMemory = "memory"
	ProposalStoreRedis  = "redis"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Log        LogConfig
	Scheduler  SchedulerConfig
	Exports    ExportsConfig
	Migrations MigrationsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SchedulerConfig controls the timetable generator endpoints.
type SchedulerConfig struct {
	Enabled       bool
	ProposalTTL   time.Duration
	ProposalStore string
	MaxClasses    int
	MaxTeachers   int
	Defaults      TimetableDefaults
}

// TimetableDefaults pre-fills timing fields omitted from a generate request.
type TimetableDefaults struct {
	Days                       []string
	SchoolStart                string
	SchoolEnd                  string
	PeriodDuration             int
	BreakStart                 string
	BreakDuration              int
	LunchStart                 string
	LunchDuration              int
	MaxPeriodsPerDay           int
	MaxPeriodsPerTeacherPerDay int
}

// ExportsConfig configures asynchronous timetable exports.
type ExportsConfig struct {
	Enabled           bool
	StorageDir        string
	SignedURLSecret   string
	SignedURLTTL      time.Duration
	CleanupInterval   time.Duration
	WorkerConcurrency int
	WorkerRetries     int
}

// MigrationsConfig toggles schema migration on boot.
type MigrationsConfig struct {
	AutoRun bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{Secret: v.GetString("JWT_SECRET")}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	store := strings.ToLower(strings.TrimSpace(v.GetString("SCHEDULER_PROPOSAL_STORE")))
	if store != ProposalStoreRedis {
		store = ProposalStoreMemory
	}
	cfg.Scheduler = SchedulerConfig{
		Enabled:       v.GetBool("ENABLE_SCHEDULER"),
		ProposalTTL:   parseDuration(v.GetString("SCHEDULER_PROPOSAL_TTL"), 30*time.Minute),
		ProposalStore: store,
		MaxClasses:    v.GetInt("SCHEDULER_MAX_CLASSES"),
		MaxTeachers:   v.GetInt("SCHEDULER_MAX_TEACHERS"),
		Defaults: TimetableDefaults{
			Days:                       splitAndTrim(v.GetString("TIMETABLE_DAYS")),
			SchoolStart:                v.GetString("TIMETABLE_SCHOOL_START"),
			SchoolEnd:                  v.GetString("TIMETABLE_SCHOOL_END"),
			PeriodDuration:             v.GetInt("TIMETABLE_PERIOD_MINUTES"),
			BreakStart:                 v.GetString("TIMETABLE_BREAK_START"),
			BreakDuration:              v.GetInt("TIMETABLE_BREAK_MINUTES"),
			LunchStart:                 v.GetString("TIMETABLE_LUNCH_START"),
			LunchDuration:              v.GetInt("TIMETABLE_LUNCH_MINUTES"),
			MaxPeriodsPerDay:           v.GetInt("TIMETABLE_MAX_PERIODS_PER_DAY"),
			MaxPeriodsPerTeacherPerDay: v.GetInt("TIMETABLE_MAX_PERIODS_PER_TEACHER_PER_DAY"),
		},
	}

	cfg.Exports = ExportsConfig{
		Enabled:           v.GetBool("ENABLE_EXPORTS"),
		StorageDir:        v.GetString("EXPORTS_STORAGE_DIR"),
		SignedURLSecret:   v.GetString("EXPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:      parseDuration(v.GetString("EXPORTS_SIGNED_URL_TTL"), 24*time.Hour),
		CleanupInterval:   parseDuration(v.GetString("EXPORTS_CLEANUP_INTERVAL"), time.Hour),
		WorkerConcurrency: v.GetInt("EXPORTS_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("EXPORTS_WORKER_RETRIES"),
	}

	cfg.Migrations = MigrationsConfig{AutoRun: v.GetBool("DB_AUTO_MIGRATE")}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "smart_mavi")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_SCHEDULER", true)
	v.SetDefault("SCHEDULER_PROPOSAL_TTL", "30m")
	v.SetDefault("SCHEDULER_PROPOSAL_STORE", ProposalStoreMemory)
	v.SetDefault("SCHEDULER_MAX_CLASSES", 64)
	v.SetDefault("SCHEDULER_MAX_TEACHERS", 256)

	v.SetDefault("TIMETABLE_DAYS", "SUNDAY,MONDAY,TUESDAY,WEDNESDAY,THURSDAY,FRIDAY")
	v.SetDefault("TIMETABLE_SCHOOL_START", "08:00")
	v.SetDefault("TIMETABLE_SCHOOL_END", "15:00")
	v.SetDefault("TIMETABLE_PERIOD_MINUTES", 45)
	v.SetDefault("TIMETABLE_BREAK_START", "10:15")
	v.SetDefault("TIMETABLE_BREAK_MINUTES", 15)
	v.SetDefault("TIMETABLE_LUNCH_START", "12:00")
	v.SetDefault("TIMETABLE_LUNCH_MINUTES", 30)
	v.SetDefault("TIMETABLE_MAX_PERIODS_PER_DAY", 8)
	v.SetDefault("TIMETABLE_MAX_PERIODS_PER_TEACHER_PER_DAY", 6)

	v.SetDefault("ENABLE_EXPORTS", true)
	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORTS_SIGNED_URL_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORTS_SIGNED_URL_TTL", "24h")
	v.SetDefault("EXPORTS_CLEANUP_INTERVAL", "1h")
	v.SetDefault("EXPORTS_WORKER_CONCURRENCY", 1)
	v.SetDefault("EXPORTS_WORKER_RETRIES", 3)
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
