package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"aircraft-fusion/internal/api"
	"aircraft-fusion/internal/config"
	"aircraft-fusion/internal/database"
	"aircraft-fusion/internal/feed"
	"aircraft-fusion/internal/fusion"
	"aircraft-fusion/internal/health"
	"aircraft-fusion/internal/lookup"
	"aircraft-fusion/internal/waypoints"
	"aircraft-fusion/pkg/models"
)

func main() {
	configFile := flag.String("config", "config.json", "Path to config file")
	adsbHost := flag.String("adsb-host", "", "ADS-B SBS feed host")
	adsbPort := flag.Int("adsb-port", 0, "ADS-B SBS feed port")
	httpAddr := flag.String("http-addr", "", "HTTP listen address")
	statesURL := flag.String("states-url", "", "State vector poll URL")
	flightsURL := flag.String("flights-url", "", "Flight record poll URL")
	synthetic := flag.Bool("synthetic", false, "Run with a synthetic feed instead of upstream receivers")
	noDatabase := flag.Bool("no-db", false, "Run without database connection")
	flag.Parse()

	logHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger := slog.New(logHandler)
	slog.SetDefault(logger)
	stdLogger := slog.NewLogLogger(logHandler, slog.LevelInfo)
	log.SetOutput(stdLogger.Writer())
	log.SetFlags(0)

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("[MAIN] Failed to load config: %v", err)
	}

	if *adsbHost != "" {
		cfg.ADSBHost = *adsbHost
	}
	if *adsbPort != 0 {
		cfg.ADSBPort = *adsbPort
	}
	if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}
	if *statesURL != "" {
		cfg.StatesURL = *statesURL
	}
	if *flightsURL != "" {
		cfg.FlightsURL = *flightsURL
	}
	if *synthetic {
		cfg.Synthetic = true
	}

	logger.Info("starting aircraft fusion service")

	var db *database.DB
	var repo *database.Repository

	if !*noDatabase && cfg.Database.Host != "" {
		dbCfg := database.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		}

		db, err = database.Connect(dbCfg)
		if err != nil {
			log.Printf("[MAIN] Database connection failed: %v (running without persistence)", err)
		} else {
			if err := db.Migrate(); err != nil {
				log.Printf("[MAIN] Database migration failed: %v", err)
			}
			repo = database.NewRepository(db)
		}
	} else {
		log.Printf("[MAIN] Running without database")
	}

	logger.Info("configuration loaded",
		"adsb_host", cfg.ADSBHost,
		"adsb_port", cfg.ADSBPort,
		"http_addr", cfg.HTTPAddr,
		"synthetic", cfg.Synthetic,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	groupCtx, groupCancel := context.WithCancel(ctx)
	defer groupCancel()

	var wg sync.WaitGroup
	var groupErr error
	var groupErrMu sync.Mutex

	setGroupErr := func(err error) {
		groupErrMu.Lock()
		if groupErr == nil {
			groupErr = err
		}
		groupErrMu.Unlock()
	}

	var airports *lookup.AirportLookup
	if repo != nil {
		airports = lookup.NewAirportLookup(repo, cfg.AirportAPIURL)
	} else {
		airports = lookup.NewAirportLookup(nil, cfg.AirportAPIURL)
	}

	paths := waypoints.NewTracker(airports)

	var engineRepo fusion.Repository
	if repo != nil {
		engineRepo = repo
	}
	engine := fusion.New(fusion.Options{
		Repo:  engineRepo,
		Paths: paths,
	})

	server := api.NewServer(engine, paths)
	server.SetNodeName(cfg.NodeName)
	readiness := health.NewReadiness()
	server.SetReadiness(readiness)
	server.StartHub()

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: server.Handler(),
	}

	runComponent := func(name string, fn func(context.Context) error) {
		readiness.MarkNotReady(name, "starting")
		wg.Add(1)
		go func() {
			defer wg.Done()
			readiness.MarkReady(name)
			logger.Info("component running", "component", name)
			defer readiness.MarkNotReady(name, "stopped")
			if err := fn(groupCtx); err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				logger.Error("component exited", "component", name, "error", err)
				setGroupErr(err)
				groupCancel()
				return
			}
			logger.Info("component exited", "component", name)
		}()
	}

	runComponent("fusion_engine", func(ctx context.Context) error {
		return engine.Run(ctx)
	})

	runComponent("waypoint_tracker", func(ctx context.Context) error {
		paths.Run(ctx)
		return ctx.Err()
	})

	if cfg.Synthetic {
		center := models.GeodeticPosition{Lat: cfg.CenterLat, Lon: cfg.CenterLon}
		synth := feed.NewSyntheticFeed(center, cfg.SyntheticCount, time.Second, engine)
		runComponent("synthetic_feed", func(ctx context.Context) error {
			synth.Run(ctx)
			return ctx.Err()
		})
	} else if cfg.ADSBHost != "" {
		adsb := feed.NewADSBClient(cfg.ADSBHost, cfg.ADSBPort, engine)
		server.AddFeed(adsb)
		runComponent("adsb_feed", func(ctx context.Context) error {
			adsb.Run(ctx)
			return ctx.Err()
		})
	}

	if cfg.StatesURL != "" {
		poller := feed.NewStatePoller("states", cfg.StatesURL, cfg.StatesInterval, engine)
		server.AddFeed(poller)
		runComponent("state_poller", func(ctx context.Context) error {
			poller.Run(ctx)
			return ctx.Err()
		})
	}

	if cfg.FlightsURL != "" {
		poller := feed.NewFlightPoller("flights", cfg.FlightsURL, cfg.FlightsInterval, engine)
		server.AddFeed(poller)
		runComponent("flight_poller", func(ctx context.Context) error {
			poller.Run(ctx)
			return ctx.Err()
		})
	}

	runComponent("http_server", func(ctx context.Context) error {
		errCh := make(chan error, 1)
		go func() {
			errCh <- httpServer.ListenAndServe()
		}()

		select {
		case <-ctx.Done():
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil && err != http.ErrServerClosed {
				return err
			}
			if err := <-errCh; err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		case err := <-errCh:
			if err == http.ErrServerClosed {
				return nil
			}
			return err
		}
	})

	wg.Wait()
	if err := groupErr; err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("service error", "error", err)
	}

	if db != nil {
		db.Close()
	}

	logger.Info("shutdown complete")
}
