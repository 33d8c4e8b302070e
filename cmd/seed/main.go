package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	"github.com/golang-cafe/jobby/internal/config"
	"github.com/golang-cafe/jobby/internal/database"
	"github.com/golang-cafe/jobby/internal/job"
	"github.com/golang-cafe/jobby/internal/server"

	"github.com/dustin/go-humanize"
)

func main() {
	file := flag.String("file", "data/jobs.json", "json array of jobs to import")
	destroy := flag.Bool("d", false, "only delete existing jobs")
	flag.Parse()

	logger := server.NewLogger("dev")
	if err := config.LoadDotEnv(); err != nil {
		logger.Fatal().Err(err).Msg("unable to load .env")
	}
	dbCfg, err := config.LoadDatabaseConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("unable to load config")
	}
	conn, err := database.GetDbConn(dbCfg.User, dbCfg.Password, dbCfg.Host, dbCfg.Port, dbCfg.Name, dbCfg.SSLMode)
	if err != nil {
		logger.Fatal().Err(err).Msg("unable to connect to postgres")
	}
	defer database.CloseDbConn(conn)

	ctx := context.Background()
	if err := database.Migrate(ctx, conn); err != nil {
		logger.Fatal().Err(err).Msg("unable to migrate database")
	}
	jobRepo := job.NewRepository(conn)

	var fixtures []job.Job
	if !*destroy {
		raw, err := os.ReadFile(*file)
		if err != nil {
			logger.Fatal().Err(err).Msg("unable to read fixtures")
		}
		if err := json.Unmarshal(raw, &fixtures); err != nil {
			logger.Fatal().Err(err).Str("file", *file).Msg("unable to decode fixtures")
		}
		for i, f := range fixtures {
			if err := f.Validate(); err != nil {
				logger.Fatal().Err(err).Int("index", i).Msg("invalid fixture")
			}
		}
		logger.Info().Msgf("read %s of fixtures from %s", humanize.Bytes(uint64(len(raw))), *file)
	}

	deleted, err := jobRepo.DeleteAllJobs(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("unable to delete jobs")
	}
	logger.Info().Msgf("deleted %s jobs", humanize.Comma(deleted))
	if *destroy {
		return
	}

	for i := range fixtures {
		if err := jobRepo.SaveJob(ctx, &fixtures[i]); err != nil {
			logger.Fatal().Err(err).Str("title", fixtures[i].Title).Msg("unable to import job")
		}
	}
	logger.Info().Msgf("imported %s jobs", humanize.Comma(int64(len(fixtures))))
}
