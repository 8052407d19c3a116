package config

import (
	"flag"
	"regexp"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Storage backends.
const (
	StorageMemory = "memory"
	StorageFile   = "file"
	StorageSQL    = "sql"
	StorageMongo  = "mongo"
)

const (
	defaultBaseURL   = "localhost:8080"
	defaultDataFile  = "cases_data.json"
	defaultDSN       = "cases.sqlite"
	defaultMongoURI  = "mongodb://localhost:27017"
	defaultMongoDB   = "casekeeper"
	defaultTimezone  = "Asia/Bangkok"
	defaultSeedCount = 300
	defaultCORS      = "*"
)

type Config struct {
	// Server-side settings
	Storage           string `env:"STORAGE"`
	DataFile          string `env:"DATA_FILE"`
	DatabaseDSN       string `env:"DATABASE_URI"`
	MongoURI          string `env:"MONGO_URI"`
	MongoDB           string `env:"MONGO_DBNAME"`
	AdminPassword     string `env:"ADMIN_PASSWORD"`
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"`
	Timezone          string `env:"TIMEZONE"`
	SeedDemo          bool   `env:"SEED_DEMO"`
	SeedCount         int    `env:"SEED_COUNT"`
	StaticDir         string `env:"STATIC_DIR"`
	CORSOrigins       string `env:"CORS_ORIGINS"` // comma-separated, "*" for any
	LogJSON           bool   `env:"LOG_JSON"`

	// Shared settings
	BaseURL     string `env:"BASE_URL"`
	EnableHTTPS bool   `env:"ENABLE_HTTPS"`

	// Client-side settings
	ServerURL   string         `env:"-"`
	ClientActor string         `env:"CLIENT_ACTOR"`
	Version     bool           `env:"-"` // show version and exit (flag only)
	Location    *time.Location `env:"-"`
}

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// flags override env values; env values become flag defaults
	// Server flags
	flag.StringVar(&cfg.Storage, "storage", cfg.Storage, "storage backend: memory, file, sql or mongo")
	flag.StringVar(&cfg.DataFile, "data-file", cfg.DataFile, "path to the JSON data file (file storage)")
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN: postgres://... or a SQLite path (sql storage)")
	flag.StringVar(&cfg.MongoURI, "mongo-uri", cfg.MongoURI, "MongoDB connection URI (mongo storage)")
	flag.StringVar(&cfg.MongoDB, "mongo-db", cfg.MongoDB, "MongoDB database name (mongo storage)")
	flag.StringVar(&cfg.AdminPassword, "admin-password", cfg.AdminPassword, "admin secret required by PUT and DELETE")
	flag.StringVar(&cfg.AdminPasswordHash, "admin-password-hash", cfg.AdminPasswordHash, "bcrypt hash of the admin secret")
	flag.StringVar(&cfg.Timezone, "tz", cfg.Timezone, "IANA time zone for all timestamps")
	flag.BoolVar(&cfg.SeedDemo, "seed", cfg.SeedDemo, "fill an empty store with demo cases")
	flag.IntVar(&cfg.SeedCount, "seed-count", cfg.SeedCount, "number of demo cases to generate")
	flag.StringVar(&cfg.StaticDir, "static", cfg.StaticDir, "directory with the web front-end")
	flag.StringVar(&cfg.CORSOrigins, "cors-origins", cfg.CORSOrigins, "comma-separated origins allowed to call the API (\"*\" for any)")
	flag.BoolVar(&cfg.LogJSON, "log-json", cfg.LogJSON, "production JSON logging")
	// Shared/client flags
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "server address in host:port form")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "enable HTTPS (client: prefer https scheme for BaseURL)")
	// Client flags
	flag.StringVar(&cfg.ClientActor, "actor", cfg.ClientActor, "default name recorded for borrow/return (client)")
	flag.BoolVar(&cfg.Version, "version", cfg.Version, "Show version and exit")

	flag.Parse()

	cfg.applyDefaults()
	return cfg
}

func (cfg *Config) applyDefaults() {
	switch cfg.Storage {
	case StorageMemory, StorageFile, StorageSQL, StorageMongo:
	default:
		cfg.Storage = StorageFile
	}
	if cfg.DataFile == "" {
		cfg.DataFile = defaultDataFile
	}
	if cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = defaultDSN
	}
	if cfg.MongoURI == "" {
		cfg.MongoURI = defaultMongoURI
	}
	if cfg.MongoDB == "" {
		cfg.MongoDB = defaultMongoDB
	}
	if cfg.SeedCount <= 0 {
		cfg.SeedCount = defaultSeedCount
	}
	if len(cfg.AllowedOrigins()) == 0 {
		cfg.CORSOrigins = defaultCORS
	}

	if cfg.Timezone == "" {
		cfg.Timezone = defaultTimezone
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		cfg.Timezone = defaultTimezone
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	cfg.Location = loc

	// validate BaseURL: must be in "address:port" (no scheme, no path). Otherwise use default.
	hostPortRe := regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)
	if !hostPortRe.MatchString(cfg.BaseURL) {
		cfg.BaseURL = defaultBaseURL
	}

	if cfg.EnableHTTPS {
		cfg.ServerURL = "https://" + cfg.BaseURL
	} else {
		cfg.ServerURL = "http://" + cfg.BaseURL
	}
}

// AllowedOrigins splits CORSOrigins into trimmed, non-empty origins.
func (cfg *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(cfg.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
