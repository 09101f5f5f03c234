package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string

	StoreDriver string
	MySQLDSN    string
	SQLitePath  string

	RedisAddr string
	RedisDB   int
	RedisPass string
	CacheTTL  time.Duration

	CSVPath        string
	CKANBase       string
	CKANResourceID string
	CKANPackageID  string
	CKANKey        string
	CKANRPS        int

	Workers       int
	IngestOnStart bool
	CORSOrigins   []string
}

// Load reads configuration from the environment, after merging an optional
// .env file (existing variables win).
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("could not read .env")
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		LogLevel:    env("LOG_LEVEL", "info"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),

		StoreDriver: strings.ToLower(env("STORE_DRIVER", DriverMySQL)),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/hotspots?charset=utf8mb4&loc=UTC"),
		SQLitePath:  env("SQLITE_PATH", "hotspots.db"),

		RedisAddr: env("REDIS_ADDR", ""),
		RedisPass: env("REDIS_PASSWORD", ""),
		RedisDB:   atoi("REDIS_DB", 0),
		CacheTTL:  time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,

		CSVPath:        env("CSV_PATH", "data/cultural-hotspots.csv"),
		CKANBase:       env("CKAN_BASE_URL", ""),
		CKANResourceID: env("CKAN_RESOURCE_ID", ""),
		CKANPackageID:  env("CKAN_PACKAGE_ID", ""),
		CKANKey:        env("CKAN_API_KEY", ""),
		CKANRPS:        atoi("CKAN_RPS", 5),

		Workers:       atoi("INGEST_WORKERS", 4),
		IngestOnStart: boolean("INGEST_ON_START", true),
		CORSOrigins:   list("CORS_ORIGINS"),
	}
	switch c.StoreDriver {
	case DriverMySQL, DriverSQLite, DriverMemory:
	default:
		log.Warn().Str("driver", c.StoreDriver).Msg("unknown STORE_DRIVER; using memory")
		c.StoreDriver = DriverMemory
	}
	if c.CKANBase != "" && c.CKANResourceID == "" && c.CKANPackageID == "" {
		log.Warn().Msg("CKAN_BASE_URL set without CKAN_RESOURCE_ID or CKAN_PACKAGE_ID; falling back to CSV_PATH")
	}
	return c
}

// UseCKAN reports whether ingestion should pull from the open-data portal.
func (c Config) UseCKAN() bool {
	return c.CKANBase != "" && (c.CKANResourceID != "" || c.CKANPackageID != "")
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoi(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Warn().Str("key", k).Str("value", v).Msg("not an integer; using default")
	}
	return def
}

func boolean(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func list(k string) []string {
	var out []string
	for _, p := range strings.Split(os.Getenv(k), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
