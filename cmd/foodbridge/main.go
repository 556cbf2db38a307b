package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/foodbridge/cli/internal/api"
	"github.com/foodbridge/cli/internal/app"
	"github.com/foodbridge/cli/internal/credential"
	"github.com/foodbridge/cli/internal/geo"
	"github.com/foodbridge/cli/internal/model"
	"github.com/foodbridge/cli/internal/realtime"
	"github.com/foodbridge/cli/internal/session"
	"github.com/foodbridge/cli/internal/store"
)

func main() {
	configPath := flag.String("config", model.DefaultConfigPath(), "path to config file")
	debug := flag.Bool("debug", false, "write debug logs next to the config file")
	flag.Parse()

	if err := run(*configPath, *debug); err != nil {
		fmt.Fprintf(os.Stderr, "foodbridge: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, debug bool) error {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return err
	}

	dataDir := filepath.Dir(configPath)
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory %s: %w", dataDir, err)
	}

	var logger *log.Logger
	if debug {
		f, err := os.OpenFile(
			filepath.Join(dataDir, "debug.log"),
			os.O_CREATE|os.O_WRONLY|os.O_APPEND,
			0o644,
		)
		if err != nil {
			return fmt.Errorf("opening debug log: %w", err)
		}
		defer f.Close()
		logger = log.New(f, "", log.LstdFlags)
	}

	cache, err := store.NewSQLiteStore(filepath.Join(dataDir, "foodbridge.db"))
	if err != nil {
		return err
	}
	defer cache.Close()

	client := api.NewClient(cfg.API.BaseURL, time.Duration(cfg.API.TimeoutSec)*time.Second)
	authAPI := api.NewAuthAPI(client)
	foodAPI := api.NewFoodAPI(client)
	statsAPI := api.NewStatsAPI(client)

	creds := credential.NewStore()

	streamDialer := &realtime.Dialer{
		URL:    cfg.StreamURL(),
		Logger: logger,
	}

	sess := session.New(session.Config{
		Auth:        authAPI,
		Credentials: creds,
		Tokens:      client,
		Dialer: session.DialerFunc(func(token string) (session.Feed, error) {
			conn, err := streamDialer.Dial(token)
			if err != nil {
				return nil, err
			}
			return conn, nil
		}),
		History: cache,
		Logger:  logger,
	})
	client.OnUnauthorized(sess.HandleUnauthorized)

	var locator geo.Provider = geo.None{}
	if cfg.Geo.Endpoint != "" {
		locator = &geo.HTTPProvider{Endpoint: cfg.Geo.Endpoint}
	}

	root := app.New(app.Deps{
		Session:  sess,
		FoodAPI:  foodAPI,
		StatsAPI: statsAPI,
		Cache:    cache,
		Locator:  locator,
		RadiusKm: cfg.Geo.RadiusKm,
	})

	p := tea.NewProgram(root, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}

	return nil
}
