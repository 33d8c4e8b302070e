package user

import (
	"context"
	"database/sql"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"
	"golang.org/x/crypto/bcrypt"
)

// postgres unique_violation
const uniqueViolation = "23505"

const userColumns = `id, name, email, role, short_bio, profile_image_url, created_at`

type Repository struct {
	db         *sql.DB
	bcryptCost int
}

func NewRepository(db *sql.DB, bcryptCost int) *Repository {
	return &Repository{db: db, bcryptCost: bcryptCost}
}

func scanUser(row *sql.Row, extra ...interface{}) (User, error) {
	u := User{}
	var role string
	dest := append([]interface{}{&u.ID, &u.Name, &u.Email, &role, &u.ShortBio, &u.ProfileImageURL, &u.CreatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return User{}, err
	}
	r, err := ParseRole(role)
	if err != nil {
		return User{}, errors.Wrapf(err, "user %s", u.ID)
	}
	u.Role = r
	u.CreatedAtHumanised = humanize.Time(u.CreatedAt.UTC())
	return u, nil
}

// SaveUser stores a new user with a bcrypt hash of password. Profile fields
// start from their defaults.
func (r *Repository) SaveUser(ctx context.Context, name, email, password string, role Role) (User, error) {
	if _, err := ParseRole(string(role)); err != nil {
		return User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), r.bcryptCost)
	if err != nil {
		return User{}, errors.Wrap(err, "unable to hash password")
	}
	userID, err := ksuid.NewRandom()
	if err != nil {
		return User{}, errors.Wrap(err, "unable to generate user id")
	}
	u := User{
		ID:              userID.String(),
		Name:            name,
		Email:           NormaliseEmail(email),
		Role:            role,
		ShortBio:        DefaultShortBio,
		ProfileImageURL: DefaultProfileImageURL,
		CreatedAt:       time.Now().UTC(),
	}
	_, err = r.db.ExecContext(
		ctx,
		`INSERT INTO users (id, name, email, password_hash, role, short_bio, profile_image_url, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID,
		u.Name,
		u.Email,
		string(hash),
		string(u.Role),
		u.ShortBio,
		u.ProfileImageURL,
		u.CreatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return User{}, ErrEmailTaken
	}
	if err != nil {
		return User{}, errors.Wrap(err, "unable to save user")
	}
	u.CreatedAtHumanised = humanize.Time(u.CreatedAt)
	return u, nil
}

// VerifyCredentials returns the user owning email when password matches
// its hash, ErrInvalidCredentials otherwise.
func (r *Repository) VerifyCredentials(ctx context.Context, email, password string) (User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+`, password_hash FROM users WHERE email = $1`, NormaliseEmail(email))
	var hash string
	u, err := scanUser(row, &hash)
	if err == sql.ErrNoRows {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, errors.Wrap(err, "unable to get user by email")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (r *Repository) UserByID(ctx context.Context, id string) (User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, errors.Wrapf(err, "unable to get user %s", id)
	}
	return u, nil
}
