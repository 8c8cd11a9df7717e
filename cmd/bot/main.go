package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"RegimeSentinel/internal/collector"
	"RegimeSentinel/internal/config"
	"RegimeSentinel/internal/hmm"
	"RegimeSentinel/internal/notifier"
	"RegimeSentinel/internal/recorder"
	"RegimeSentinel/internal/regime"
	"RegimeSentinel/internal/scheduler"
	"RegimeSentinel/internal/track"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] RegimeSentinel starting...")

	once := flag.Bool("once", false, "classify once, print the report and exit")
	cfgPath := flag.String("config", "configs/config.yaml", "config file path")
	flag.Parse()

	if v := os.Getenv("CONFIG_PATH"); v != "" {
		*cfgPath = v
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(!*once); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init fetcher
	var fetcher collector.Fetcher
	switch cfg.DataSource.Provider {
	case "stooq":
		fetcher = collector.NewStooqFetcher("", cfg.Proxy)
	case "mock":
		fetcher = &collector.MockFetcher{Seed: cfg.HMM.Seed}
	default:
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	log.Printf("[INFO] data source: %s", fetcher.Name())

	start, err := cfg.StartTime()
	if err != nil {
		log.Fatalf("[FATAL] start date: %v", err)
	}
	col := collector.NewCollector(fetcher, cfg.DataSource.Symbol, start)

	// Init classifier
	cls := regime.NewClassifier(hmm.Config{
		MaxIter:  cfg.HMM.MaxIterations,
		Tol:      cfg.HMM.Tolerance,
		Seed:     cfg.HMM.Seed,
		VarFloor: cfg.HMM.Epsilon,
	})

	// Init track manager
	tm, err := track.NewManager(cfg.Track.StateFile)
	if err != nil {
		log.Fatalf("[FATAL] init track manager: %v", err)
	}

	// Init Telegram notifier (absent in one-shot mode without credentials)
	var tn *notifier.TelegramNotifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, col, cls, tm, tn, rec)

	if *once {
		log.Printf("[INFO] one-shot classification for %s since %s", cfg.DataSource.Symbol, cfg.DataSource.StartDate)
		if err := sched.RunWeeklyNow(); err != nil {
			log.Fatalf("[FATAL] classification: %v", err)
		}
		return
	}

	if err := sched.RegisterAll(cfg.Schedule.WeeklyCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Println("[INFO] Telegram polling started")

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing weekly task now")
		go func() {
			if err := sched.RunWeeklyNow(); err != nil {
				log.Printf("[ERROR] startup classification: %v", err)
			}
		}()
	}

	log.Println("[INFO] RegimeSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] RegimeSentinel stopped")
}
