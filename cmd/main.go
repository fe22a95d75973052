// Package divvyapi provides the API to manage users, groups and shared expenses.
package main

import (
	"github.com/rs/zerolog/log"

	"github.com/go-divvy/divvy/cmd/httpserver"
	"github.com/go-divvy/divvy/db"
	"github.com/go-divvy/divvy/internal/middleware"
	"github.com/go-divvy/divvy/pkg/configpkg"
	"github.com/go-divvy/divvy/pkg/dbpkg"

	_ "github.com/lib/pq"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.CreateLogger(config)

	if err := dbpkg.Migrate(config.DBDriver, config.DBSource, db.MigrationFS, "migration"); err != nil {
		logger.Fatal().Err(err).Msg("cannot apply migrations")
	}

	conn, err := dbpkg.Setup(config.DBDriver, config.DBSource)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot connect to database")
	}

	server, err := httpserver.New(conn, logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	logger.Info().Msg("DIVVY API SERVER HAS STARTED")

	err = server.Engine.Run(config.ServerAddress)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot start server")
	}
}
