package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	_ "modernc.org/sqlite"

	"coachdesk/internal/adapters/api"
	"coachdesk/internal/adapters/bus"
	"coachdesk/internal/adapters/storage"
	stateStore "coachdesk/internal/adapters/storage/state"
	"coachdesk/internal/application/orchestrators"
	"coachdesk/internal/application/view"
	"coachdesk/internal/config"
	"coachdesk/internal/domain/schedule"
	"coachdesk/internal/domain/syncbus"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	configPath := flag.String("config", "coachdesk.yaml", "path to the YAML config file")
	once := flag.Bool("once", false, "load the calendar once, print a summary and exit")
	anchorFlag := flag.String("anchor", "", "anchor date YYYY-MM-DD (default today)")
	viewFlag := flag.String("view", "", "granularity: day, week or month (default from config)")
	flag.Parse()

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.APIToken == "" {
		log.Println("WARNING: no API token configured — set COACHDESK_API_TOKEN for authenticated backends")
	}

	granularity := cfg.DefaultView
	if *viewFlag != "" {
		granularity = *viewFlag
	}
	if !schedule.IsValidView(granularity) {
		log.Fatalf("unknown view %q (want day, week or month)", granularity)
	}
	anchor := time.Now()
	if *anchorFlag != "" {
		anchor, err = time.ParseInLocation("2006-01-02", *anchorFlag, time.Local)
		if err != nil {
			log.Fatalf("bad -anchor date: %v", err)
		}
	}

	// WAL mode, foreign keys and busy timeout for multi-process access
	// to the shared state file.
	dsn := cfg.StateDB + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open state database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	if err := db.Ping(); err != nil {
		log.Fatalf("state database unreachable: %v", err)
	}
	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize state database: %v", err)
	}

	states := stateStore.NewSQLiteStore(db)
	client := api.NewClient(cfg.APIBaseURL, cfg.APIToken, &http.Client{Timeout: 30 * time.Second})

	// Two transports: in-memory for watchers in this process, the
	// sqlite slot so sibling coachdesk processes converge too.
	syncBus := bus.New(
		bus.NewMemoryTransport(),
		bus.NewSlotTransport(states, bus.DefaultSlot, bus.DefaultPollInterval),
	)

	holder := view.NewHolder()
	throttle := orchestrators.NewHolidayThrottle(states, client, cfg.CountryCode)
	loadDeps := orchestrators.LoadCalendarDeps{
		API:      client,
		Holder:   holder,
		Holidays: throttle,
		Prefs:    states,
	}

	slog.Info("coachdesk_starting", "version", version, "view", granularity, "state_db", cfg.StateDB)

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), time.Minute)
	err = orchestrators.ExecuteLoadCalendar(loadCtx, orchestrators.LoadCalendarInput{
		Anchor:    anchor,
		View:      granularity,
		TeacherID: cfg.TeacherID,
	}, loadDeps)
	cancelLoad()
	if err != nil {
		log.Fatalf("initial calendar load failed: %v", err)
	}

	if *once {
		snap := holder.Snapshot()
		for _, ev := range snap.Events {
			log.Printf("%s  %-9s %s (%s)", ev.Start.Format("Mon 2006-01-02 15:04"), ev.Status, ev.BatchName, ev.Subject)
		}
		log.Printf("%d events, %d batches, %d holidays", len(snap.Events), len(snap.Catalog), len(snap.Holidays))
		throttle.Wait()
		return
	}

	stopCh := make(chan struct{})

	orchestrators.StartCalendarWatcher(orchestrators.WatchCalendarDeps{
		Bus:       syncBus,
		Load:      loadDeps,
		TeacherID: cfg.TeacherID,
	}, stopCh)

	// Attendance and roster changes elsewhere refresh the analytics
	// overlay without touching the schedule itself.
	orchestrators.StartDomainWatcher(orchestrators.DomainWatcherDeps{
		Bus:      syncBus,
		Interest: []string{syncbus.DomainAttendance, syncbus.DomainStudents},
		Name:     "analytics",
		Reload: func(ctx context.Context) error {
			snap := holder.Snapshot()
			start, end, err := schedule.RangeForView(snap.Anchor, snap.View)
			if err != nil {
				return err
			}
			orchestrators.ExecuteLoadAnalytics(ctx, orchestrators.LoadAnalyticsInput{
				Start:       start,
				End:         end,
				TeacherID:   cfg.TeacherID,
				BypassCache: true,
			}, orchestrators.LoadAnalyticsDeps{API: client, Holder: holder})
			return nil
		},
	}, stopCh)

	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.RefreshCron, func() {
		snap := holder.Snapshot()
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := orchestrators.ExecuteLoadCalendar(ctx, orchestrators.LoadCalendarInput{
			Anchor:    snap.Anchor,
			View:      snap.View,
			TeacherID: cfg.TeacherID,
			Silent:    true,
		}, loadDeps); err != nil {
			slog.Warn("scheduled_refresh_failed", "error", err.Error())
		}
	})
	if err != nil {
		log.Fatalf("bad refresh schedule %q: %v", cfg.RefreshCron, err)
	}
	scheduler.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("coachdesk_stopping", "signal", sig.String())

	cronCtx := scheduler.Stop()
	close(stopCh)
	select {
	case <-cronCtx.Done():
	case <-time.After(5 * time.Second):
	}
	throttle.Wait()
}
