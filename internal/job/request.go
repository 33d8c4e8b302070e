package job

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationError lists the request fields, by their JSON name, that are
// missing or blank.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid fields: " + strings.Join(e.Fields, ", ")
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(err, "unable to validate request")
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return &ValidationError{Fields: fields}
}

// CreateRequest is the body of a job creation. Skills arrive as a comma
// separated string of names.
type CreateRequest struct {
	Title             string         `json:"title" validate:"required"`
	Location          string         `json:"location" validate:"required"`
	JobDescription    string         `json:"jobDescription" validate:"required"`
	EmploymentType    string         `json:"employmentType" validate:"required"`
	CompanyLogoURL    string         `json:"companyLogoUrl"`
	CompanyWebsiteURL string         `json:"companyWebsiteUrl"`
	PackagePerAnnum   string         `json:"packagePerAnnum"`
	Rating            float64        `json:"rating"`
	Skills            string         `json:"skills"`
	LifeAtCompany     *LifeAtCompany `json:"lifeAtCompany"`
}

func (rq CreateRequest) Validate() error {
	if err := validate.Struct(rq); err != nil {
		return validationError(err)
	}
	return nil
}

// Job builds the record to store. ID and timestamps are assigned by the
// repository.
func (rq CreateRequest) Job() Job {
	j := Job{
		Title:             rq.Title,
		CompanyLogoURL:    rq.CompanyLogoURL,
		CompanyWebsiteURL: rq.CompanyWebsiteURL,
		Rating:            rq.Rating,
		Location:          rq.Location,
		EmploymentType:    rq.EmploymentType,
		PackagePerAnnum:   rq.PackagePerAnnum,
		JobDescription:    rq.JobDescription,
		Skills:            ParseSkills(rq.Skills),
	}
	if rq.LifeAtCompany != nil {
		j.LifeAtCompany = *rq.LifeAtCompany
	}
	return j
}

// UpdateRequest is a partial update: nil fields are left untouched.
type UpdateRequest struct {
	Title             *string        `json:"title" validate:"omitnil,min=1"`
	Location          *string        `json:"location" validate:"omitnil,min=1"`
	JobDescription    *string        `json:"jobDescription" validate:"omitnil,min=1"`
	EmploymentType    *string        `json:"employmentType" validate:"omitnil,min=1"`
	CompanyLogoURL    *string        `json:"companyLogoUrl"`
	CompanyWebsiteURL *string        `json:"companyWebsiteUrl"`
	PackagePerAnnum   *string        `json:"packagePerAnnum"`
	Rating            *float64       `json:"rating"`
	Skills            *string        `json:"skills"`
	LifeAtCompany     *LifeAtCompany `json:"lifeAtCompany"`
}

func (rq UpdateRequest) Validate() error {
	if err := validate.Struct(rq); err != nil {
		return validationError(err)
	}
	return nil
}

// Apply merges the present fields into j. A present skills string replaces
// the whole list; an empty one clears it.
func (rq UpdateRequest) Apply(j Job) Job {
	if rq.Title != nil {
		j.Title = *rq.Title
	}
	if rq.Location != nil {
		j.Location = *rq.Location
	}
	if rq.JobDescription != nil {
		j.JobDescription = *rq.JobDescription
	}
	if rq.EmploymentType != nil {
		j.EmploymentType = *rq.EmploymentType
	}
	if rq.CompanyLogoURL != nil {
		j.CompanyLogoURL = *rq.CompanyLogoURL
	}
	if rq.CompanyWebsiteURL != nil {
		j.CompanyWebsiteURL = *rq.CompanyWebsiteURL
	}
	if rq.PackagePerAnnum != nil {
		j.PackagePerAnnum = *rq.PackagePerAnnum
	}
	if rq.Rating != nil {
		j.Rating = *rq.Rating
	}
	if rq.Skills != nil {
		j.Skills = ParseSkills(*rq.Skills)
	}
	if rq.LifeAtCompany != nil {
		j.LifeAtCompany = *rq.LifeAtCompany
	}
	return j
}
