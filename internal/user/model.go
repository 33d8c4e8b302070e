package user

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

const (
	DefaultShortBio        = "A passionate developer."
	DefaultProfileImageURL = "/images/default-profile-img.png"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidRole        = errors.New("invalid role")
)

type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// ParseRole accepts only the two known roles.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleStudent, RoleAdmin:
		return Role(s), nil
	}
	return "", errors.Wrapf(ErrInvalidRole, "%q", s)
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

type User struct {
	ID                 string
	Name               string
	Email              string
	Role               Role
	ShortBio           string
	ProfileImageURL    string
	CreatedAt          time.Time
	CreatedAtHumanised string
}

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

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Validate returns the JSON names of the fields that are missing or
// malformed, or nil when the request is usable.
func (rq RegisterRequest) Validate() []string {
	err := validate.Struct(rq)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return fields
}

// LoginRequest identifies the user by email under the username key.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// NormaliseEmail is applied before every lookup and insert so emails are
// unique regardless of case.
func NormaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
