package utils

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

type Config struct {
	port   string
	dbPath string

	calendarID   int64
	ownerAccount string

	location *time.Location

	metricCollectionInterval time.Duration
}

func NewConfig() *Config {
	return &Config{
		port: func() string {
			port := os.Getenv("PORT")
			if port == "" {
				port = "8080"
			}
			slog.Debug("env", "PORT", port)
			return port
		}(),

		dbPath: func() string {
			dbPath := os.Getenv("DB_PATH")
			if dbPath == "" {
				dbPath = "./sqlite.db"
			}
			slog.Debug("env", "DB_PATH", dbPath)
			return dbPath
		}(),

		calendarID: func() int64 {
			raw := os.Getenv("CALENDAR_ID")
			if raw == "" {
				slog.Warn("CALENDAR_ID is not set, using 1")
				return 1
			}
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				slog.Error("invalid CALENDAR_ID", "value", raw, "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "CALENDAR_ID", id)
			return id
		}(),
		ownerAccount: func() string {
			ownerAccount := os.Getenv("OWNER_ACCOUNT")
			if ownerAccount == "" {
				slog.Error("OWNER_ACCOUNT is not set")
				os.Exit(1)
			}
			slog.Debug("env", "OWNER_ACCOUNT", ownerAccount)
			return ownerAccount
		}(),

		location: func() *time.Location {
			timezoneStr := os.Getenv("TIMEZONE")
			var loc *time.Location
			var err error
			switch timezoneStr {
			case "":
				slog.Warn("TIMEZONE is not set, using local timezone", "timezone", time.Local)
				loc = time.Local
			case "UTC":
				loc = time.UTC
			default:
				loc, err = time.LoadLocation(timezoneStr)
				if err != nil {
					slog.Error("invalid timezone", "timezone", timezoneStr, "error", err)
					os.Exit(1)
				}
			}
			slog.Debug("env", "TIMEZONE", timezoneStr)
			return loc
		}(),

		metricCollectionInterval: func() time.Duration {
			raw := os.Getenv("METRIC_COLLECTION_INTERVAL")
			if raw == "" {
				raw = "15s"
			}
			interval, err := time.ParseDuration(raw)
			if err != nil {
				slog.Error("invalid METRIC_COLLECTION_INTERVAL", "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "METRIC_COLLECTION_INTERVAL", interval)
			return interval
		}(),
	}
}

// Get PORT env, default to 8080
func (c *Config) GetPort() string {
	return c.port
}

// Get DB_PATH env, default to ./sqlite.db
func (c *Config) GetDBPath() string {
	return c.dbPath
}

// Get CALENDAR_ID env, default to 1
func (c *Config) GetCalendarID() int64 {
	return c.calendarID
}

// Get OWNER_ACCOUNT env
func (c *Config) GetOwnerAccount() string {
	return c.ownerAccount
}

// Get TIMEZONE env
func (c *Config) GetLocation() *time.Location {
	return c.location
}

// Get METRIC_COLLECTION_INTERVAL env, default to 15s
func (c *Config) GetMetricCollectionInterval() time.Duration {
	return c.metricCollectionInterval
}
