package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"syncal/ical"
	"syncal/src-sync/mapping"
	"syncal/src-sync/metric"
	"syncal/src-sync/model"
	"syncal/src-sync/utils"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func init() {
	if err := godotenv.Load(); err != nil {
		slog.Info(err.Error())
	}
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.RFC1123Z,
		}),
	))
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage:
  syncal import <file.ics>   store the events of a calendar file
  syncal export [file.ics]   write the stored events as a calendar, stdout by default
`)
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	as := utils.NewAppState()

	go metric.Init(as)

	// expose the Prometheus metrics while a command runs
	go func() {
		muxer := http.NewServeMux()
		muxer.Handle("GET /metrics", promhttp.Handler())
		if err := http.ListenAndServe(":"+as.Config.GetPort(), muxer); err != nil {
			slog.Warn("cannot start metrics server", "error", err)
		}
	}()

	var err error
	switch os.Args[1] {
	case "import":
		if len(os.Args) != 3 {
			usage()
		}
		err = runImport(as, os.Args[2])
	case "export":
		switch len(os.Args) {
		case 2:
			err = runExport(as, os.Stdout)
		case 3:
			var f *os.File
			if f, err = os.Create(os.Args[2]); err == nil {
				err = runExport(as, f)
				f.Close()
			}
		default:
			usage()
		}
	default:
		usage()
	}

	as.Shutdown()
	if err != nil {
		slog.Error("command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func runImport(as *utils.AppState, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("runImport: %w", err)
	}
	defer file.Close()

	cal, err := ical.DecodeCalendar(file)
	if err != nil {
		return fmt.Errorf("runImport: %w", err)
	}

	builder := mapping.Builder{
		CalendarID:      as.Config.GetCalendarID(),
		OwnerAccount:    as.Config.GetOwnerAccount(),
		DefaultLocation: as.Config.GetLocation(),
	}
	store := model.NewEventStore(as.BunDB)
	ctx := context.Background()

	stored := 0
	for _, event := range cal.GetEvents() {
		builder.SyncID = event.UID + ".ics"
		data, err := builder.Build(event)
		if err != nil {
			slog.Warn("cannot map event, skipping", "uid", event.UID, "error", err)
			continue
		}

		start := time.Now()
		if err := store.Put(ctx, data); err != nil {
			return fmt.Errorf("runImport: %w", err)
		}
		as.MetricChans.DatabaseWrite <- float64(time.Since(start).Microseconds())
		stored++
	}

	slog.Info("import done", "file", path, "events", stored)
	return nil
}

func runExport(as *utils.AppState, w io.Writer) error {
	store := model.NewEventStore(as.BunDB)
	processor := mapping.Processor{
		OwnerAccount:    as.Config.GetOwnerAccount(),
		DefaultLocation: as.Config.GetLocation(),
	}
	ctx := context.Background()

	ids, err := store.ListMainIDs(ctx, as.Config.GetCalendarID())
	if err != nil {
		return fmt.Errorf("runExport: %w", err)
	}

	cal := ical.NewCalendar()
	for _, id := range ids {
		start := time.Now()
		data, err := store.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("runExport: %w", err)
		}
		as.MetricChans.DatabaseRead <- float64(time.Since(start).Microseconds())

		event, err := processor.Process(data)
		if err != nil {
			slog.Warn("cannot map record, skipping", "id", id, "error", err)
			continue
		}
		cal.AddEvent(event)
	}

	if err := ical.EncodeCalendar(w, &cal); err != nil {
		return fmt.Errorf("runExport: %w", err)
	}
	slog.Info("export done", "events", len(cal.GetEvents()))
	return nil
}
