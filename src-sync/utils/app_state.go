package utils

import (
	"database/sql"
	"log/slog"
	"os"
	"sync"
	"syncal/src-sync/model"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

type AppState struct {
	Config *Config
	RawDB  *sql.DB
	BunDB  *bun.DB

	// latencies flow here and end up in the Prometheus gauges
	MetricChans *Metric

	gracefulShutdownMu    sync.Mutex
	gracefulShutdownChans []chan struct{}
}

func NewAppState() *AppState {
	as := &AppState{
		Config:      NewConfig(),
		MetricChans: NewMetric(),
	}

	var err error
	as.RawDB, err = sql.Open(sqliteshim.ShimName, as.Config.GetDBPath()+"?mode=rwc")
	if err != nil {
		slog.Error("cannot open sqlite database", "error", err)
		os.Exit(1)
	}
	as.RawDB.SetMaxIdleConns(8)

	as.BunDB = bun.NewDB(as.RawDB, sqlitedialect.New())
	as.BunDB.AddQueryHook(bundebug.NewQueryHook(
		bundebug.FromEnv("BUNDEBUG"),
	))

	if err := model.CreateSchema(as.BunDB); err != nil {
		slog.Error("cannot create schema", "error", err)
		os.Exit(1)
	}

	return as
}

// CreateGracefulShutdownChan hands out a channel that closes when Shutdown
// runs, one per long-lived goroutine.
func (as *AppState) CreateGracefulShutdownChan() *chan struct{} {
	as.gracefulShutdownMu.Lock()
	defer as.gracefulShutdownMu.Unlock()
	ch := make(chan struct{})
	as.gracefulShutdownChans = append(as.gracefulShutdownChans, ch)
	return &ch
}

func (as *AppState) Shutdown() {
	as.gracefulShutdownMu.Lock()
	defer as.gracefulShutdownMu.Unlock()
	for _, ch := range as.gracefulShutdownChans {
		close(ch)
	}
	as.gracefulShutdownChans = nil

	if as.RawDB != nil {
		if err := as.RawDB.Close(); err != nil {
			slog.Warn("cannot close database", "error", err)
		}
	}
}
