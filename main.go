package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	logger "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"gorm.io/gorm"

	"investtracker/src/config"
	"investtracker/src/connectors"
	"investtracker/src/database"
	"investtracker/src/repository"
	"investtracker/src/server"
	"investtracker/src/service"
)

func main() {
	app := cli.NewApp()
	app.Name = "investtracker"
	app.Usage = "Investment portfolio tracker API"

	app.Commands = []cli.Command{
		serveCMD,
		refreshPricesCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	serveCMD = cli.Command{
		Name:        "serve",
		Usage:       "run the HTTP API",
		Action:      serveAction,
		Description: `Serve the portfolio tracker API until interrupted`,
	}
	refreshPricesCMD = cli.Command{
		Name:        "refresh-prices",
		Usage:       "refresh instrument prices from the quotes service",
		Action:      refreshPricesAction,
		Description: `Fetch a fresh OHLC quote for every registered instrument`,
	}
)

// setup loads .env, builds the config, configures logging and connects to
// the database. The config is built once here and passed down explicitly.
func setup() (config.Config, *gorm.DB, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found, relying on process environment")
	}

	cfg := config.GetConfig()
	setupLogger(cfg)

	db, err := database.Connect(cfg)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, db, nil
}

func setupLogger(cfg config.Config) {
	level, err := logger.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = logger.DebugLevel
	}
	logger.SetLevel(level)

	if strings.EqualFold(cfg.LogFormat, "json") {
		logger.SetFormatter(&logger.JSONFormatter{})
	} else {
		logger.SetFormatter(&logger.TextFormatter{
			FullTimestamp: true,
		})
	}
}

func serveAction(_ *cli.Context) error {
	cfg, db, err := setup()
	if err != nil {
		logger.WithError(err).Error("Failed to initialize")
		return err
	}

	server.StartServer(cfg, db)
	return nil
}

func refreshPricesAction(_ *cli.Context) error {
	cfg, db, err := setup()
	if err != nil {
		logger.WithError(err).Error("Failed to initialize")
		return err
	}

	instruments := repository.NewInstrumentRepository(db)
	quotes := connectors.NewQuotesClient(cfg.QuotesBaseURL)

	return service.RefreshPrices(context.Background(), instruments, quotes)
}
