package job

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"
)

const jobColumns = `id, title, company_logo_url, company_website_url, rating, location, employment_type, package_per_annum, job_description, skills, life_at_company_description, life_at_company_image_url, created_at, updated_at`

// jobs are always read back in insertion order
const jobOrder = ` ORDER BY created_at ASC, id ASC`

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db}
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(s scanner) (Job, error) {
	j := Job{}
	err := s.Scan(
		&j.ID,
		&j.Title,
		&j.CompanyLogoURL,
		&j.CompanyWebsiteURL,
		&j.Rating,
		&j.Location,
		&j.EmploymentType,
		&j.PackagePerAnnum,
		&j.JobDescription,
		&j.Skills,
		&j.LifeAtCompany.Description,
		&j.LifeAtCompany.ImageURL,
		&j.CreatedAt,
		&j.UpdatedAt,
	)
	return j, err
}

func scanJobs(rows *sql.Rows) ([]Job, error) {
	defer rows.Close()
	jobs := []Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return jobs, errors.Wrap(err, "unable to scan job")
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return jobs, errors.Wrap(err, "unable to iterate jobs")
	}
	return jobs, nil
}

// jobsQuery narrows the rows by employment type in SQL. The salary and
// title dimensions are left to Filter, which callers apply to the result.
func jobsQuery(p Params) (string, []interface{}) {
	stmt := `SELECT ` + jobColumns + ` FROM job`
	var (
		where []string
		args  []interface{}
	)
	if len(p.EmploymentTypes) > 0 {
		args = append(args, pq.Array(p.EmploymentTypes))
		where = append(where, fmt.Sprintf("employment_type = ANY($%d)", len(args)))
	}
	if len(where) > 0 {
		stmt += ` WHERE ` + strings.Join(where, " AND ")
	}
	return stmt + jobOrder, args
}

// JobsByQuery returns the candidate jobs for p in store order. The result
// is a superset of the matches; run it through BuildFilter(p).Apply.
func (r *Repository) JobsByQuery(ctx context.Context, p Params) ([]Job, error) {
	stmt, args := jobsQuery(p)
	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to query jobs")
	}
	return scanJobs(rows)
}

func (r *Repository) JobByID(ctx context.Context, id string) (Job, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM job WHERE id = $1`, id)
	j, err := scanJob(row)
	if err == sql.ErrNoRows {
		return Job{}, ErrNotFound
	}
	if err != nil {
		return Job{}, errors.Wrapf(err, "unable to get job %s", id)
	}
	return j, nil
}

// JobsByEmploymentType returns the first limit jobs of the given type in
// store order.
func (r *Repository) JobsByEmploymentType(ctx context.Context, employmentType string, limit int) ([]Job, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT `+jobColumns+` FROM job WHERE employment_type = $1`+jobOrder+` LIMIT $2`,
		employmentType,
		limit,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to query jobs of type %s", employmentType)
	}
	return scanJobs(rows)
}

// SaveJob inserts j, assigning its ID and timestamps.
func (r *Repository) SaveJob(ctx context.Context, j *Job) error {
	id, err := ksuid.NewRandom()
	if err != nil {
		return errors.Wrap(err, "unable to generate job id")
	}
	now := time.Now().UTC()
	if j.Skills == nil {
		j.Skills = Skills{}
	}
	_, err = r.db.ExecContext(
		ctx,
		`INSERT INTO job (`+jobColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		id.String(),
		j.Title,
		j.CompanyLogoURL,
		j.CompanyWebsiteURL,
		j.Rating,
		j.Location,
		j.EmploymentType,
		j.PackagePerAnnum,
		j.JobDescription,
		j.Skills,
		j.LifeAtCompany.Description,
		j.LifeAtCompany.ImageURL,
		now,
		now,
	)
	if err != nil {
		return errors.Wrap(err, "unable to save job")
	}
	j.ID = id.String()
	j.CreatedAt = now
	j.UpdatedAt = now
	return nil
}

// UpdateJob overwrites every mutable column of j and refreshes UpdatedAt.
func (r *Repository) UpdateJob(ctx context.Context, j *Job) error {
	now := time.Now().UTC()
	if j.Skills == nil {
		j.Skills = Skills{}
	}
	res, err := r.db.ExecContext(
		ctx,
		`UPDATE job SET title = $1, company_logo_url = $2, company_website_url = $3, rating = $4, location = $5, employment_type = $6, package_per_annum = $7, job_description = $8, skills = $9, life_at_company_description = $10, life_at_company_image_url = $11, updated_at = $12 WHERE id = $13`,
		j.Title,
		j.CompanyLogoURL,
		j.CompanyWebsiteURL,
		j.Rating,
		j.Location,
		j.EmploymentType,
		j.PackagePerAnnum,
		j.JobDescription,
		j.Skills,
		j.LifeAtCompany.Description,
		j.LifeAtCompany.ImageURL,
		now,
		j.ID,
	)
	if err != nil {
		return errors.Wrapf(err, "unable to update job %s", j.ID)
	}
	if err := expectOneRow(res); err != nil {
		return err
	}
	j.UpdatedAt = now
	return nil
}

func (r *Repository) DeleteJob(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM job WHERE id = $1`, id)
	if err != nil {
		return errors.Wrapf(err, "unable to delete job %s", id)
	}
	return expectOneRow(res)
}

// DeleteAllJobs empties the job table and reports how many rows went.
func (r *Repository) DeleteAllJobs(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM job`)
	if err != nil {
		return 0, errors.Wrap(err, "unable to delete jobs")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "unable to count deleted jobs")
	}
	return n, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "unable to read affected rows")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
