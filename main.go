package main

import (
	"context"
	"os"

	"github.com/golang-cafe/jobby/internal/authoriser"
	"github.com/golang-cafe/jobby/internal/config"
	"github.com/golang-cafe/jobby/internal/database"
	"github.com/golang-cafe/jobby/internal/handler"
	"github.com/golang-cafe/jobby/internal/job"
	"github.com/golang-cafe/jobby/internal/server"
	"github.com/golang-cafe/jobby/internal/user"

	"github.com/gorilla/mux"
)

func main() {
	logger := server.NewLogger(os.Getenv("ENV"))
	if err := config.LoadDotEnv(); err != nil {
		logger.Fatal().Err(err).Msg("unable to load .env")
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("unable to load config")
	}
	logger = server.NewLogger(cfg.Env)

	conn, err := database.GetDbConn(
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("unable to connect to postgres")
	}
	defer database.CloseDbConn(conn)
	if err := database.Migrate(context.Background(), conn); err != nil {
		logger.Fatal().Err(err).Msg("unable to migrate database")
	}

	svr, err := server.NewServer(cfg, conn, mux.NewRouter(), logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("unable to create server")
	}

	handler.RegisterRoutes(
		svr,
		authoriser.NewAuthoriser(cfg.JwtSigningKey, cfg.TokenTTL),
		user.NewRepository(conn, cfg.BcryptCost),
		job.NewRepository(conn),
	)

	logger.Fatal().Err(svr.Run()).Msg("server stopped")
}
