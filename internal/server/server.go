package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/getsentry/raven-go"
	"github.com/golang-cafe/jobby/internal/config"
	"github.com/golang-cafe/jobby/internal/middleware"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type Server struct {
	cfg      config.Config
	Conn     *sql.DB
	router   *mux.Router
	logger   zerolog.Logger
	bigCache *bigcache.BigCache
}

// NewLogger writes human readable lines in dev and JSON everywhere else.
func NewLogger(env string) zerolog.Logger {
	if env == "dev" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func cacheConfig(ttl time.Duration) bigcache.Config {
	cfg := bigcache.DefaultConfig(ttl)
	cfg.Shards = 64
	cfg.MaxEntriesInWindow = 1000
	cfg.MaxEntrySize = 4096
	cfg.HardMaxCacheSize = 64 // MB
	cfg.CleanWindow = ttl
	return cfg
}

func NewServer(cfg config.Config, conn *sql.DB, r *mux.Router, logger zerolog.Logger) (Server, error) {
	if cfg.SentryDSN != "" {
		if err := raven.SetDSN(cfg.SentryDSN); err != nil {
			return Server{}, errors.Wrap(err, "unable to configure sentry")
		}
		raven.SetEnvironment(cfg.Env)
	}
	bigCache, err := bigcache.New(context.Background(), cacheConfig(cfg.SimilarJobsCacheTTL))
	if err != nil {
		return Server{}, errors.Wrap(err, "unable to create cache")
	}
	return Server{
		cfg:      cfg,
		Conn:     conn,
		router:   r,
		logger:   logger,
		bigCache: bigCache,
	}, nil
}

func (s Server) RegisterRoute(path string, handler func(w http.ResponseWriter, r *http.Request), methods []string) {
	s.router.HandleFunc(path, handler).Methods(methods...)
}

func (s Server) GetConfig() config.Config {
	return s.cfg
}

func (s Server) Logger() zerolog.Logger {
	return s.logger
}

func (s Server) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.logger.Error().Err(err).Msg("unable to encode json response")
		}
	}
}

func (s Server) TEXT(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(status)
	w.Write([]byte(text))
}

// Log records err at error level and forwards it to sentry when configured.
func (s Server) Log(err error, msg string) {
	if s.cfg.SentryDSN != "" {
		raven.CaptureError(err, map[string]string{"ctx": msg})
	}
	s.logger.Error().Err(err).Msg(msg)
}

// Handler is the router wrapped in the middleware chain used by Run.
func (s Server) Handler() http.Handler {
	return middleware.LoggingMiddleware(
		s.logger,
		middleware.HeadersMiddleware(
			middleware.TimeoutMiddleware(s.cfg.RequestTimeout, s.router),
			s.cfg.Env,
		),
	)
}

func (s Server) Run() error {
	addr := fmt.Sprintf(":%s", s.cfg.Port)
	if s.cfg.Env == "dev" {
		s.logger.Info().Msgf("local env http://localhost:%s", s.cfg.Port)
		addr = fmt.Sprintf("localhost:%s", s.cfg.Port)
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       s.cfg.RequestTimeout,
		WriteTimeout:      s.cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return srv.ListenAndServe()
}

func (s Server) CacheGet(key string) ([]byte, bool) {
	out, err := s.bigCache.Get(key)
	if err != nil {
		return []byte{}, false
	}
	return out, true
}

func (s Server) CacheSet(key string, val []byte) error {
	return s.bigCache.Set(key, val)
}

func (s Server) CacheDelete(key string) error {
	err := s.bigCache.Delete(key)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return nil
	}
	return err
}

// CacheReset drops every cached entry.
func (s Server) CacheReset() error {
	return s.bigCache.Reset()
}
