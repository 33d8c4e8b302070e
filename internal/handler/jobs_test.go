package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-cafe/jobby/internal/authoriser"
	"github.com/golang-cafe/jobby/internal/config"
	"github.com/golang-cafe/jobby/internal/job"
	"github.com/golang-cafe/jobby/internal/server"
	"github.com/golang-cafe/jobby/internal/user"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	handler      http.Handler
	jobs         *memJobStore
	users        *memUserStore
	tokens       authoriser.Authoriser
	adminToken   string
	studentToken string
}

func newTestAPI(t *testing.T) *testAPI {
	svr, err := server.NewServer(config.Config{
		Env:                 "dev",
		RequestTimeout:      5 * time.Second,
		SimilarJobsCacheTTL: time.Minute,
	}, nil, mux.NewRouter(), zerolog.Nop())
	require.NoError(t, err)

	api := &testAPI{
		jobs:   &memJobStore{},
		users:  &memUserStore{},
		tokens: authoriser.NewAuthoriser([]byte("test-signing-key"), time.Hour),
	}
	RegisterRoutes(svr, api.tokens, api.users, api.jobs)
	api.handler = svr.Handler()

	ctx := context.Background()
	admin, err := api.users.SaveUser(ctx, "Alex", "alex@example.com", "admin-pass", user.RoleAdmin)
	require.NoError(t, err)
	student, err := api.users.SaveUser(ctx, "Sam", "sam@example.com", "student-pass", user.RoleStudent)
	require.NoError(t, err)
	api.adminToken, err = api.tokens.Issue(admin.ID)
	require.NoError(t, err)
	api.studentToken, err = api.tokens.Issue(student.ID)
	require.NoError(t, err)
	return api
}

func (api *testAPI) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

func (api *testAPI) seed(t *testing.T, jobs ...job.Job) []job.Job {
	for i := range jobs {
		require.NoError(t, api.jobs.SaveJob(context.Background(), &jobs[i]))
	}
	return jobs
}

func validCreateBody() map[string]interface{} {
	return map[string]interface{}{
		"title":           "Backend Engineer",
		"location":        "Bangalore",
		"jobDescription":  "Design services and APIs.",
		"employmentType":  "Full Time",
		"packagePerAnnum": "14 LPA",
		"rating":          4,
		"skills":          "Go, PostgreSQL",
	}
}

type listResponse struct {
	Jobs []job.ListSummary `json:"jobs"`
}

type detailResponse struct {
	JobDetails  job.Detail           `json:"job_details"`
	SimilarJobs []job.SimilarSummary `json:"similar_jobs"`
}

func TestListJobs_NoToken_Unauthorized(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/jobs", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListJobs_ExpiredToken_Unauthorized(t *testing.T) {
	api := newTestAPI(t)
	expired, err := authoriser.NewAuthoriser([]byte("test-signing-key"), -time.Minute).Issue("user-2")
	require.NoError(t, err)

	rec := api.do(t, http.MethodGet, "/api/jobs", expired, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListJobs_InvalidToken_Unauthorized(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/jobs", "not-a-token", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListJobs_Filters_SummariesInStoreOrder(t *testing.T) {
	api := newTestAPI(t)
	api.seed(t,
		job.Job{Title: "Frontend Engineer", Location: "Delhi", EmploymentType: "Full Time", PackagePerAnnum: "21 LPA", JobDescription: "d"},
		job.Job{Title: "Devops Intern", Location: "Pune", EmploymentType: "Internship", PackagePerAnnum: "6 LPA", JobDescription: "d"},
		job.Job{Title: "Backend Engineer", Location: "Goa", EmploymentType: "Full Time", PackagePerAnnum: "", JobDescription: "d"},
		job.Job{Title: "Data Engineer", Location: "Goa", EmploymentType: "Part Time", PackagePerAnnum: "12 LPA", JobDescription: "d"},
	)

	rec := api.do(t, http.MethodGet, "/api/jobs?employment_type=Full%20Time,Part%20Time&minimum_package=1000000&search=ENGINEER", api.studentToken, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var res listResponse
	decode(t, rec, &res)
	require.Len(t, res.Jobs, 2)
	assert.Equal(t, "Frontend Engineer", res.Jobs[0].Title)
	assert.Equal(t, "21 LPA", res.Jobs[0].PackagePerAnnum)
	assert.Equal(t, "Data Engineer", res.Jobs[1].Title)
}

func TestListJobs_NoJobs_EmptyArray(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/jobs", api.studentToken, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"jobs":[]}`, rec.Body.String())
}

func TestListJobs_StoreFailure_OpaqueServerError(t *testing.T) {
	api := newTestAPI(t)
	api.jobs.failWith = errors.New("pq: connection refused")

	rec := api.do(t, http.MethodGet, "/api/jobs", api.studentToken, nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"Server Error"}`, rec.Body.String())
}

func TestCreateJob_Admin_CreatedThenReadable(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/jobs", api.adminToken, validCreateBody())

	require.Equal(t, http.StatusCreated, rec.Code)
	var created map[string]interface{}
	decode(t, rec, &created)
	id, ok := created["_id"].(string)
	require.True(t, ok)
	assert.Equal(t, "Backend Engineer", created["title"])
	assert.Equal(t, "", created["companyLogoUrl"])
	assert.Equal(t, []interface{}{
		map[string]interface{}{"name": "Go", "imageUrl": ""},
		map[string]interface{}{"name": "PostgreSQL", "imageUrl": ""},
	}, created["skills"])
	assert.Equal(t, map[string]interface{}{"description": "", "imageUrl": ""}, created["lifeAtCompany"])
	assert.Contains(t, created, "createdAt")
	assert.Contains(t, created, "updatedAt")

	rec = api.do(t, http.MethodGet, "/api/jobs/"+id, api.studentToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var detail detailResponse
	decode(t, rec, &detail)
	assert.Equal(t, "Backend Engineer", detail.JobDetails.Title)
	assert.Equal(t, "Bangalore", detail.JobDetails.Location)
	assert.Equal(t, "Full Time", detail.JobDetails.EmploymentType)
	assert.Empty(t, detail.SimilarJobs)
}

func TestCreateJob_MissingTitle_BadRequestNothingPersisted(t *testing.T) {
	api := newTestAPI(t)
	body := validCreateBody()
	delete(body, "title")

	rec := api.do(t, http.MethodPost, "/api/jobs", api.adminToken, body)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var res validationFailure
	decode(t, rec, &res)
	assert.Equal(t, []string{"title"}, res.MissingFields)

	rec = api.do(t, http.MethodGet, "/api/jobs", api.adminToken, nil)
	var list listResponse
	decode(t, rec, &list)
	assert.Empty(t, list.Jobs)
	assert.Equal(t, 0, api.jobs.count())
}

func TestCreateJob_MalformedBody_BadRequest(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/jobs", api.adminToken, `{"title":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, api.jobs.count())
}

func TestCreateJob_Student_Forbidden(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/jobs", api.studentToken, validCreateBody())

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, 0, api.jobs.count())
}

func TestCreateJob_NoToken_Unauthorized(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/jobs", "", validCreateBody())

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetJob_Missing_NotFound(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/jobs/nope", api.studentToken, nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Job not found"}`, rec.Body.String())
}

func TestGetJob_SimilarJobs_AtMostFourExcludingSelf(t *testing.T) {
	api := newTestAPI(t)
	var seeded []job.Job
	for i := 0; i < 6; i++ {
		seeded = append(seeded, job.Job{Title: fmt.Sprintf("Engineer %d", i), Location: "Goa", EmploymentType: "Full Time", JobDescription: "d"})
	}
	seeded = append(seeded, job.Job{Title: "Intern", Location: "Goa", EmploymentType: "Internship", JobDescription: "d"})
	seeded = api.seed(t, seeded...)

	rec := api.do(t, http.MethodGet, "/api/jobs/"+seeded[1].ID, api.studentToken, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var res detailResponse
	decode(t, rec, &res)
	require.Len(t, res.SimilarJobs, 4)
	got := []string{}
	for _, s := range res.SimilarJobs {
		assert.NotEqual(t, seeded[1].ID, s.ID)
		assert.Equal(t, "Full Time", s.EmploymentType)
		got = append(got, s.ID)
	}
	assert.Equal(t, []string{seeded[0].ID, seeded[2].ID, seeded[3].ID, seeded[4].ID}, got)
}

func TestGetJob_OneOtherOfType_ExactlyOneSimilar(t *testing.T) {
	api := newTestAPI(t)
	seeded := api.seed(t,
		job.Job{Title: "A", Location: "Goa", EmploymentType: "Internship", JobDescription: "d"},
		job.Job{Title: "B", Location: "Goa", EmploymentType: "Internship", JobDescription: "d"},
		job.Job{Title: "C", Location: "Goa", EmploymentType: "Full Time", JobDescription: "d"},
	)

	rec := api.do(t, http.MethodGet, "/api/jobs/"+seeded[0].ID, api.studentToken, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var res detailResponse
	decode(t, rec, &res)
	require.Len(t, res.SimilarJobs, 1)
	assert.Equal(t, seeded[1].ID, res.SimilarJobs[0].ID)
}

func TestGetJob_SimilarCandidates_CachedUntilMutation(t *testing.T) {
	api := newTestAPI(t)
	seeded := api.seed(t, job.Job{Title: "A", Location: "Goa", EmploymentType: "Internship", JobDescription: "d"})

	api.do(t, http.MethodGet, "/api/jobs/"+seeded[0].ID, api.studentToken, nil)
	api.do(t, http.MethodGet, "/api/jobs/"+seeded[0].ID, api.studentToken, nil)
	assert.Equal(t, 1, api.jobs.typeHits)

	body := validCreateBody()
	body["employmentType"] = "Internship"
	require.Equal(t, http.StatusCreated, api.do(t, http.MethodPost, "/api/jobs", api.adminToken, body).Code)

	rec := api.do(t, http.MethodGet, "/api/jobs/"+seeded[0].ID, api.studentToken, nil)
	assert.Equal(t, 2, api.jobs.typeHits)
	var res detailResponse
	decode(t, rec, &res)
	assert.Len(t, res.SimilarJobs, 1)
}

func TestUpdateJob_Skills_FullyReplaced(t *testing.T) {
	api := newTestAPI(t)
	seeded := api.seed(t, job.Job{
		Title:          "A",
		Location:       "Goa",
		EmploymentType: "Full Time",
		JobDescription: "d",
		Skills:         job.Skills{{Name: "Go", ImageURL: "go.png"}, {Name: "SQL"}, {Name: "Docker"}},
	})

	rec := api.do(t, http.MethodPut, "/api/jobs/"+seeded[0].ID, api.adminToken, map[string]string{"skills": "React,Node"})

	require.Equal(t, http.StatusOK, rec.Code)
	var updated job.Job
	decode(t, rec, &updated)
	assert.Equal(t, job.Skills{{Name: "React"}, {Name: "Node"}}, updated.Skills)
	assert.Equal(t, "A", updated.Title)
	assert.Equal(t, seeded[0].ID, updated.ID)

	stored, err := api.jobs.JobByID(context.Background(), seeded[0].ID)
	require.NoError(t, err)
	assert.Equal(t, job.Skills{{Name: "React"}, {Name: "Node"}}, stored.Skills)
}

func TestUpdateJob_Missing_NotFound(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPut, "/api/jobs/nope", api.adminToken, map[string]string{"title": "x"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateJob_BlankRequiredField_BadRequestUnchanged(t *testing.T) {
	api := newTestAPI(t)
	seeded := api.seed(t, job.Job{Title: "A", Location: "Goa", EmploymentType: "Full Time", JobDescription: "d"})

	rec := api.do(t, http.MethodPut, "/api/jobs/"+seeded[0].ID, api.adminToken, map[string]string{"title": ""})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	stored, err := api.jobs.JobByID(context.Background(), seeded[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "A", stored.Title)
}

func TestUpdateJob_Student_Forbidden(t *testing.T) {
	api := newTestAPI(t)
	seeded := api.seed(t, job.Job{Title: "A", Location: "Goa", EmploymentType: "Full Time", JobDescription: "d"})

	rec := api.do(t, http.MethodPut, "/api/jobs/"+seeded[0].ID, api.studentToken, map[string]string{"title": "B"})

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeleteJob_Missing_NotFound(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodDelete, "/api/jobs/nope", api.adminToken, nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteJob_Existing_RemovedThenNotFound(t *testing.T) {
	api := newTestAPI(t)
	seeded := api.seed(t, job.Job{Title: "A", Location: "Goa", EmploymentType: "Full Time", JobDescription: "d"})

	rec := api.do(t, http.MethodDelete, "/api/jobs/"+seeded[0].ID, api.adminToken, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Job removed"}`, rec.Body.String())

	rec = api.do(t, http.MethodGet, "/api/jobs/"+seeded[0].ID, api.studentToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteJob_Student_Forbidden(t *testing.T) {
	api := newTestAPI(t)
	seeded := api.seed(t, job.Job{Title: "A", Location: "Goa", EmploymentType: "Full Time", JobDescription: "d"})

	rec := api.do(t, http.MethodDelete, "/api/jobs/"+seeded[0].ID, api.studentToken, nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, 1, api.jobs.count())
}
