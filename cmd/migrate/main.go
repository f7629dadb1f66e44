package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"notes-service/internal/config"
	"notes-service/internal/logger"
	"notes-service/internal/repository/postgres"
)

func main() {
	configFile := flag.String("config", "config.yml", "path to config file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-config config.yml] up|down\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := config.LoadDotEnv(); err != nil {
		log.Fatal().Err(err).Msg("error loading .env")
	}

	appConfig, err := config.Load(*configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("error initializing config")
	}
	appLog := logger.New(appConfig.Logger)

	if appConfig.Database.Driver != "postgres" {
		appLog.Fatal().Str("driver", appConfig.Database.Driver).Msg("migrations are only supported for postgres")
	}

	switch cmd := flag.Arg(0); cmd {
	case "up":
		version, err := postgres.MigrateUp(appConfig.Database.DSN)
		if err != nil {
			appLog.Fatal().Err(err).Msg("migration up failed")
		}
		appLog.Info().Uint("schema_version", version).Msg("migrations applied")
	case "down":
		if err := postgres.MigrateDown(appConfig.Database.DSN); err != nil {
			appLog.Fatal().Err(err).Msg("migration down failed")
		}
		appLog.Info().Msg("migrations reverted")
	default:
		flag.Usage()
		os.Exit(2)
	}
}
