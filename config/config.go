package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"grade-report-server-go/db"
)

// Config holds the settings of the server and the export command.
type Config struct {
	Port string

	Store         string // "redis" or "postgres"
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	DatabaseDSN   string
	SeedData      bool

	Locale          string
	FontPath        string
	FontFamily      string
	ChartWidth      int
	ChartHeight     int
	ExportName      string
	ExportExtension string

	LogLevel string
}

// Load reads an optional .env file and then the environment. Values that
// fail to parse fall back to their defaults with a warning.
func Load(logger logrus.FieldLogger, files ...string) *Config {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warnf("Error loading env file: %v", err)
	}

	e := env{log: logger}
	return &Config{
		Port:            e.str("PORT", "8080"),
		Store:           strings.ToLower(e.str("STORE", "redis")),
		RedisAddr:       e.str("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword:   e.str("REDIS_PASSWORD", ""),
		RedisDB:         e.int("REDIS_DB", 8),
		DatabaseDSN:     e.str("DATABASE_DSN", ""),
		SeedData:        e.bool("SEED_DATA", false),
		Locale:          e.str("REPORT_LOCALE", "en"),
		FontPath:        e.str("FONT_PATH", ""),
		FontFamily:      e.str("FONT_FAMILY", "Microsoft JhengHei"),
		ChartWidth:      e.int("CHART_WIDTH", 800),
		ChartHeight:     e.int("CHART_HEIGHT", 600),
		ExportName:      e.str("EXPORT_DEFAULT_NAME", "report"),
		ExportExtension: e.str("EXPORT_EXTENSION", ".xls"),
		LogLevel:        e.str("LOG_LEVEL", "info"),
	}
}

// StoreOptions returns the store settings in the form db.OpenStore takes.
func (c *Config) StoreOptions() db.StoreOptions {
	return db.StoreOptions{
		Backend: c.Store,
		Redis: db.RedisOptions{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		},
		PostgresDSN: c.DatabaseDSN,
	}
}

type env struct {
	log logrus.FieldLogger
}

func (e env) str(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func (e env) int(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.log.Warnf("Invalid %s=%q, using %d", key, v, def)
		return def
	}
	return n
}

func (e env) bool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.log.Warnf("Invalid %s=%q, using %t", key, v, def)
		return def
	}
	return b
}

// NewLogger returns a text logger at the named level (info when unknown).
func NewLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logger.Warnf("Unknown log level %q, using info", level)
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}
