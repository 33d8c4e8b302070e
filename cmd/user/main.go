package main

import (
	"context"
	"flag"

	"github.com/golang-cafe/jobby/internal/config"
	"github.com/golang-cafe/jobby/internal/database"
	"github.com/golang-cafe/jobby/internal/server"
	"github.com/golang-cafe/jobby/internal/user"
)

// Creates a user with an explicit role. This is the only way to get an
// admin, registration through the API always yields a student.
func main() {
	name := flag.String("name", "", "display name")
	email := flag.String("email", "", "login email")
	password := flag.String("password", "", "login password")
	roleFlag := flag.String("role", string(user.RoleAdmin), "student or admin")
	flag.Parse()

	logger := server.NewLogger("dev")
	role, err := user.ParseRole(*roleFlag)
	if err != nil {
		logger.Fatal().Err(err).Msg("unable to parse role")
	}
	req := user.RegisterRequest{Name: *name, Email: *email, Password: *password}
	if fields := req.Validate(); len(fields) > 0 {
		logger.Fatal().Strs("fields", fields).Msg("missing or invalid flags")
	}

	if err := config.LoadDotEnv(); err != nil {
		logger.Fatal().Err(err).Msg("unable to load .env")
	}
	dbCfg, err := config.LoadDatabaseConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("unable to load config")
	}
	bcryptCost, err := config.LoadBcryptCost()
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
	u, err := user.NewRepository(conn, bcryptCost).SaveUser(ctx, req.Name, req.Email, req.Password, role)
	if err != nil {
		logger.Fatal().Err(err).Str("email", req.Email).Msg("unable to create user")
	}
	logger.Info().
		Str("id", u.ID).
		Str("email", u.Email).
		Str("role", string(u.Role)).
		Msgf("user created %s", u.CreatedAtHumanised)
}
