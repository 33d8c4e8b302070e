package database

import (
	"context"
	"database/sql"
	"net"
	"net/url"
	"time"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"
)

// schema is applied on boot and by the CLIs. Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS job (
	id                          CHAR(27) NOT NULL PRIMARY KEY,
	title                       VARCHAR(255) NOT NULL,
	company_logo_url            VARCHAR(1024) NOT NULL DEFAULT '',
	company_website_url         VARCHAR(1024) NOT NULL DEFAULT '',
	rating                      DOUBLE PRECISION NOT NULL DEFAULT 0,
	location                    VARCHAR(255) NOT NULL,
	employment_type             VARCHAR(255) NOT NULL,
	package_per_annum           VARCHAR(255) NOT NULL DEFAULT '',
	job_description             TEXT NOT NULL,
	skills                      JSONB NOT NULL DEFAULT '[]',
	life_at_company_description TEXT NOT NULL DEFAULT '',
	life_at_company_image_url   VARCHAR(1024) NOT NULL DEFAULT '',
	created_at                  TIMESTAMP NOT NULL,
	updated_at                  TIMESTAMP NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS job_employment_type_idx ON job (employment_type)`,
	`CREATE INDEX IF NOT EXISTS job_created_at_id_idx ON job (created_at, id)`,
	`CREATE TABLE IF NOT EXISTS users (
	id                CHAR(27) NOT NULL PRIMARY KEY,
	name              VARCHAR(255) NOT NULL,
	email             VARCHAR(255) NOT NULL UNIQUE,
	password_hash     VARCHAR(255) NOT NULL,
	role              VARCHAR(16) NOT NULL DEFAULT 'student' CHECK (role IN ('student', 'admin')),
	short_bio         TEXT NOT NULL DEFAULT 'A passionate developer.',
	profile_image_url VARCHAR(1024) NOT NULL DEFAULT '/images/default-profile-img.png',
	created_at        TIMESTAMP NOT NULL
)`,
}

// GetDbConn tries to establish a connection to postgres and return the connection handler
func GetDbConn(databaseUser string, databasePassword string, databaseHost string, databasePort string, databaseName string, sslMode string) (*sql.DB, error) {
	databaseURL := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(databaseUser, databasePassword),
		Host:     net.JoinHostPort(databaseHost, databasePort),
		Path:     databaseName,
		RawQuery: url.Values{"sslmode": {sslMode}}.Encode(),
	}
	db, err := sql.Open("postgres", databaseURL.String())
	if err != nil {
		return nil, errors.Wrap(err, "unable to open postgres connection")
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "unable to reach postgres at %s", databaseURL.Host)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(20)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

// CloseDbConn closes db conn
func CloseDbConn(conn *sql.DB) {
	conn.Close()
}

// Migrate creates the job and users tables when missing.
func Migrate(ctx context.Context, conn *sql.DB) error {
	for _, stmt := range schema {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "unable to apply schema")
		}
	}
	return nil
}
