package handler

import (
	"net/http"

	"github.com/golang-cafe/jobby/internal/middleware"
	"github.com/golang-cafe/jobby/internal/server"
)

func HealthHandler(svr server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svr.TEXT(w, http.StatusOK, "Jobby App API is running...")
	}
}

// RegisterRoutes mounts every API route on svr. Job mutations go through
// the authentication gate and then the admin gate.
func RegisterRoutes(svr server.Server, tokens Tokens, userRepo UserStore, jobRepo JobStore) {
	svr.RegisterRoute("/", HealthHandler(svr), []string{"GET"})

	svr.RegisterRoute("/api/auth/register", RegisterHandler(svr, userRepo, tokens), []string{"POST"})
	svr.RegisterRoute("/api/auth/login", LoginHandler(svr, userRepo, tokens), []string{"POST"})

	svr.RegisterRoute(
		"/api/profile",
		middleware.UserAuthenticatedMiddleware(tokens, userRepo, svr.Log, ProfileHandler(svr)),
		[]string{"GET"},
	)

	svr.RegisterRoute(
		"/api/jobs",
		middleware.UserAuthenticatedMiddleware(tokens, userRepo, svr.Log, ListJobsHandler(svr, jobRepo)),
		[]string{"GET"},
	)
	svr.RegisterRoute(
		"/api/jobs/{id}",
		middleware.UserAuthenticatedMiddleware(tokens, userRepo, svr.Log, GetJobHandler(svr, jobRepo)),
		[]string{"GET"},
	)
	svr.RegisterRoute(
		"/api/jobs",
		middleware.AdminAuthenticatedMiddleware(tokens, userRepo, svr.Log, CreateJobHandler(svr, jobRepo)),
		[]string{"POST"},
	)
	svr.RegisterRoute(
		"/api/jobs/{id}",
		middleware.AdminAuthenticatedMiddleware(tokens, userRepo, svr.Log, UpdateJobHandler(svr, jobRepo)),
		[]string{"PUT"},
	)
	svr.RegisterRoute(
		"/api/jobs/{id}",
		middleware.AdminAuthenticatedMiddleware(tokens, userRepo, svr.Log, DeleteJobHandler(svr, jobRepo)),
		[]string{"DELETE"},
	)
}
