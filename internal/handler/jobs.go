package handler

import (
	"bytes"
	"context"
	"encoding/gob"
	"encoding/json"
	"net/http"

	"github.com/golang-cafe/jobby/internal/job"
	"github.com/golang-cafe/jobby/internal/server"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

const maxBodyBytes = 1 << 20

type message struct {
	Message string `json:"message"`
}

var serverError = message{"Server Error"}

type validationFailure struct {
	Message       string   `json:"message"`
	MissingFields []string `json:"missing_fields"`
}

type jobQuerier interface {
	JobsByQuery(ctx context.Context, p job.Params) ([]job.Job, error)
}

type jobGetter interface {
	JobByID(ctx context.Context, id string) (job.Job, error)
}

type jobTypeLister interface {
	JobsByEmploymentType(ctx context.Context, employmentType string, limit int) ([]job.Job, error)
}

type jobGetTypeLister interface {
	jobGetter
	jobTypeLister
}

type jobSaver interface {
	SaveJob(ctx context.Context, j *job.Job) error
}

type jobGetUpdater interface {
	jobGetter
	UpdateJob(ctx context.Context, j *job.Job) error
}

type jobDeleter interface {
	DeleteJob(ctx context.Context, id string) error
}

// JobStore is everything the job routes need from storage.
type JobStore interface {
	jobQuerier
	jobGetTypeLister
	jobSaver
	jobGetUpdater
	jobDeleter
}

func ListJobsHandler(svr server.Server, jobRepo jobQuerier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := job.ParamsFromQuery(r.URL.Query())
		candidates, err := jobRepo.JobsByQuery(r.Context(), params)
		if err != nil {
			svr.Log(err, "unable to retrieve jobs by query")
			svr.JSON(w, http.StatusInternalServerError, serverError)
			return
		}
		matching := job.BuildFilter(params).Apply(candidates)
		jobs := make([]job.ListSummary, 0, len(matching))
		for _, j := range matching {
			jobs = append(jobs, job.ToListSummary(j))
		}
		svr.JSON(w, http.StatusOK, struct {
			Jobs []job.ListSummary `json:"jobs"`
		}{jobs})
	}
}

func similarCacheKey(employmentType string) string {
	return "similar:" + employmentType
}

// similarCandidates returns the first jobs of the given employment type,
// one more than shown so the job being viewed can be skipped. Results are
// cached until the next job mutation.
func similarCandidates(ctx context.Context, svr server.Server, jobRepo jobTypeLister, employmentType string) ([]job.Job, error) {
	key := similarCacheKey(employmentType)
	if buf, ok := svr.CacheGet(key); ok {
		var cached []job.Job
		if err := gob.NewDecoder(bytes.NewReader(buf)).Decode(&cached); err == nil {
			return cached, nil
		}
	}
	candidates, err := jobRepo.JobsByEmploymentType(ctx, employmentType, job.SimilarJobsLimit+1)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(candidates); err != nil {
		svr.Log(err, "unable to encode similar jobs for cache")
		return candidates, nil
	}
	if err := svr.CacheSet(key, buf.Bytes()); err != nil {
		svr.Log(err, "unable to cache similar jobs")
	}
	return candidates, nil
}

func invalidateJobCache(svr server.Server) {
	if err := svr.CacheReset(); err != nil {
		svr.Log(err, "unable to reset job cache")
	}
}

func GetJobHandler(svr server.Server, jobRepo jobGetTypeLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		j, err := jobRepo.JobByID(r.Context(), id)
		if errors.Is(err, job.ErrNotFound) {
			svr.JSON(w, http.StatusNotFound, message{"Job not found"})
			return
		}
		if err != nil {
			svr.Log(err, "unable to retrieve job by id")
			svr.JSON(w, http.StatusInternalServerError, serverError)
			return
		}
		candidates, err := similarCandidates(r.Context(), svr, jobRepo, j.EmploymentType)
		if err != nil {
			svr.Log(err, "unable to retrieve similar jobs")
			svr.JSON(w, http.StatusInternalServerError, serverError)
			return
		}
		similar := job.SelectSimilar(j, candidates, job.SimilarJobsLimit)
		similarJobs := make([]job.SimilarSummary, 0, len(similar))
		for _, s := range similar {
			similarJobs = append(similarJobs, job.ToSimilarSummary(s))
		}
		svr.JSON(w, http.StatusOK, struct {
			JobDetails  job.Detail           `json:"job_details"`
			SimilarJobs []job.SimilarSummary `json:"similar_jobs"`
		}{job.ToDetail(j), similarJobs})
	}
}

// writeValidationError answers 400 for a failed Validate.
func writeValidationError(svr server.Server, w http.ResponseWriter, err error, msg string) {
	var verr *job.ValidationError
	if errors.As(err, &verr) {
		svr.JSON(w, http.StatusBadRequest, validationFailure{Message: msg, MissingFields: verr.Fields})
		return
	}
	svr.Log(err, "unable to validate job request")
	svr.JSON(w, http.StatusBadRequest, message{"Invalid request body"})
}

func CreateJobHandler(svr server.Server, jobRepo jobSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := job.CreateRequest{}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			svr.JSON(w, http.StatusBadRequest, message{"Invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			writeValidationError(svr, w, err, "Please provide all required fields")
			return
		}
		j := req.Job()
		if err := jobRepo.SaveJob(r.Context(), &j); err != nil {
			svr.Log(err, "unable to save job")
			svr.JSON(w, http.StatusInternalServerError, serverError)
			return
		}
		invalidateJobCache(svr)
		svr.JSON(w, http.StatusCreated, j)
	}
}

func UpdateJobHandler(svr server.Server, jobRepo jobGetUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		req := job.UpdateRequest{}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			svr.JSON(w, http.StatusBadRequest, message{"Invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			writeValidationError(svr, w, err, "Required fields cannot be blank")
			return
		}
		existing, err := jobRepo.JobByID(r.Context(), id)
		if errors.Is(err, job.ErrNotFound) {
			svr.JSON(w, http.StatusNotFound, message{"Job not found"})
			return
		}
		if err != nil {
			svr.Log(err, "unable to retrieve job by id")
			svr.JSON(w, http.StatusInternalServerError, serverError)
			return
		}
		updated := req.Apply(existing)
		err = jobRepo.UpdateJob(r.Context(), &updated)
		if errors.Is(err, job.ErrNotFound) {
			svr.JSON(w, http.StatusNotFound, message{"Job not found"})
			return
		}
		if err != nil {
			svr.Log(err, "unable to update job")
			svr.JSON(w, http.StatusInternalServerError, serverError)
			return
		}
		invalidateJobCache(svr)
		svr.JSON(w, http.StatusOK, updated)
	}
}

func DeleteJobHandler(svr server.Server, jobRepo jobDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		err := jobRepo.DeleteJob(r.Context(), id)
		if errors.Is(err, job.ErrNotFound) {
			svr.JSON(w, http.StatusNotFound, message{"Job not found"})
			return
		}
		if err != nil {
			svr.Log(err, "unable to delete job")
			svr.JSON(w, http.StatusInternalServerError, serverError)
			return
		}
		invalidateJobCache(svr)
		svr.JSON(w, http.StatusOK, message{"Job removed"})
	}
}
