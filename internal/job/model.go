package job

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// SimilarJobsLimit is the maximum number of similar jobs shown next to a job.
const SimilarJobsLimit = 4

var ErrNotFound = errors.New("job not found")

type Skill struct {
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

// Skills is persisted as a JSONB array and keeps submission order.
type Skills []Skill

func (s Skills) Value() (driver.Value, error) {
	if s == nil {
		s = Skills{}
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "unable to encode skills")
	}
	return string(b), nil
}

func (s *Skills) Scan(src interface{}) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*s = Skills{}
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.Errorf("unsupported type %T for skills", src)
	}
	out := Skills{}
	if err := json.Unmarshal(b, &out); err != nil {
		return errors.Wrap(err, "unable to decode skills")
	}
	*s = out
	return nil
}

// ParseSkills turns a comma separated list of names ("React, Node") into
// skills without images. Names are trimmed and blanks dropped.
func ParseSkills(raw string) Skills {
	skills := Skills{}
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		skills = append(skills, Skill{Name: name})
	}
	return skills
}

type LifeAtCompany struct {
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
}

// Job is the full stored record. Its JSON form is what admins get back
// from create and update and what the seeder reads.
type Job struct {
	ID                string        `json:"_id"`
	Title             string        `json:"title" validate:"required"`
	CompanyLogoURL    string        `json:"companyLogoUrl"`
	CompanyWebsiteURL string        `json:"companyWebsiteUrl"`
	Rating            float64       `json:"rating"`
	Location          string        `json:"location" validate:"required"`
	EmploymentType    string        `json:"employmentType" validate:"required"`
	PackagePerAnnum   string        `json:"packagePerAnnum"`
	JobDescription    string        `json:"jobDescription" validate:"required"`
	Skills            Skills        `json:"skills"`
	LifeAtCompany     LifeAtCompany `json:"lifeAtCompany"`
	CreatedAt         time.Time     `json:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}

// Validate checks the required fields of a record built outside of
// CreateRequest, such as a seeded fixture.
func (j Job) Validate() error {
	if err := validate.Struct(j); err != nil {
		return validationError(err)
	}
	return nil
}

// AnnualSalary is the yearly figure derived from PackagePerAnnum.
func (j Job) AnnualSalary() (int64, bool) {
	return ParseAnnualSalary(j.PackagePerAnnum)
}
