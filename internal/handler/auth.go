package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/golang-cafe/jobby/internal/middleware"
	"github.com/golang-cafe/jobby/internal/server"
	"github.com/golang-cafe/jobby/internal/user"
	"github.com/pkg/errors"
)

type userSaver interface {
	SaveUser(ctx context.Context, name, email, password string, role user.Role) (user.User, error)
}

type credentialVerifier interface {
	VerifyCredentials(ctx context.Context, email, password string) (user.User, error)
}

// UserStore is everything the auth routes and gates need from storage.
type UserStore interface {
	userSaver
	credentialVerifier
	middleware.UserFinder
}

type tokenIssuer interface {
	Issue(userID string) (string, error)
}

// Tokens issues and validates bearer tokens.
type Tokens interface {
	tokenIssuer
	middleware.TokenValidator
}

// RegisterHandler signs up a student and logs them straight in.
func RegisterHandler(svr server.Server, userRepo userSaver, tokens tokenIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := user.RegisterRequest{}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			svr.JSON(w, http.StatusBadRequest, message{"Invalid request body"})
			return
		}
		if fields := req.Validate(); len(fields) > 0 {
			svr.JSON(w, http.StatusBadRequest, validationFailure{Message: "Please provide name, a valid email and password", MissingFields: fields})
			return
		}
		u, err := userRepo.SaveUser(r.Context(), req.Name, req.Email, req.Password, user.RoleStudent)
		if errors.Is(err, user.ErrEmailTaken) {
			svr.JSON(w, http.StatusBadRequest, message{"User already exists"})
			return
		}
		if err != nil {
			svr.Log(err, "unable to save user")
			svr.JSON(w, http.StatusInternalServerError, serverError)
			return
		}
		token, err := tokens.Issue(u.ID)
		if err != nil {
			svr.Log(err, "unable to issue token for new user")
			svr.JSON(w, http.StatusInternalServerError, serverError)
			return
		}
		svr.JSON(w, http.StatusCreated, struct {
			ID    string `json:"_id"`
			Name  string `json:"name"`
			Email string `json:"email"`
			Token string `json:"token"`
		}{u.ID, u.Name, u.Email, token})
	}
}

type loginFailure struct {
	ErrorMsg string `json:"error_msg"`
}

func LoginHandler(svr server.Server, userRepo credentialVerifier, tokens tokenIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := user.LoginRequest{}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			svr.JSON(w, http.StatusBadRequest, loginFailure{"Invalid request body"})
			return
		}
		if req.Username == "" || req.Password == "" {
			svr.JSON(w, http.StatusBadRequest, loginFailure{"Username and password are required"})
			return
		}
		u, err := userRepo.VerifyCredentials(r.Context(), req.Username, req.Password)
		if errors.Is(err, user.ErrInvalidCredentials) {
			svr.JSON(w, http.StatusUnauthorized, loginFailure{"Invalid username or password"})
			return
		}
		if err != nil {
			svr.Log(err, "unable to verify credentials")
			svr.JSON(w, http.StatusInternalServerError, serverError)
			return
		}
		token, err := tokens.Issue(u.ID)
		if err != nil {
			svr.Log(err, "unable to issue token")
			svr.JSON(w, http.StatusInternalServerError, serverError)
			return
		}
		svr.JSON(w, http.StatusOK, struct {
			JwtToken string `json:"jwt_token"`
		}{token})
	}
}

type profileDetails struct {
	Name            string `json:"name"`
	ProfileImageURL string `json:"profile_image_url"`
	ShortBio        string `json:"short_bio"`
}

// ProfileHandler answers with the profile of the user resolved by the
// authentication gate.
func ProfileHandler(svr server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := middleware.UserFromContext(r.Context())
		if !ok {
			svr.Log(errors.New("no user in request context"), "profile requested without authentication")
			svr.JSON(w, http.StatusInternalServerError, serverError)
			return
		}
		svr.JSON(w, http.StatusOK, struct {
			ProfileDetails profileDetails `json:"profile_details"`
		}{profileDetails{u.Name, u.ProfileImageURL, u.ShortBio}})
	}
}
