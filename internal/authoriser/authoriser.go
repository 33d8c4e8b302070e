package authoriser

import (
	"time"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
)

const issuer = "jobby"

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// UserJWT carries only the user id. Role and profile are looked up on
// every request so a demoted or deleted user loses access immediately.
type UserJWT struct {
	UserID string `json:"user_id"`
	jwt.StandardClaims
}

type Authoriser struct {
	signingKey []byte
	ttl        time.Duration
}

func NewAuthoriser(signingKey []byte, ttl time.Duration) Authoriser {
	return Authoriser{signingKey: signingKey, ttl: ttl}
}

// Issue signs an HS256 token for userID that expires after the configured ttl.
func (a Authoriser) Issue(userID string) (string, error) {
	now := time.Now().UTC()
	claims := UserJWT{
		UserID: userID,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(a.ttl).Unix(),
			IssuedAt:  now.Unix(),
			Issuer:    issuer,
			Subject:   userID,
		},
	}
	ss, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.signingKey)
	if err != nil {
		return "", errors.Wrap(err, "unable to sign token")
	}
	return ss, nil
}

// Validate returns the user id carried by token. Tokens that are past
// their expiry yield ErrTokenExpired, anything else unusable ErrTokenInvalid.
func (a Authoriser) Validate(token string) (string, error) {
	claims := &UserJWT{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.signingKey, nil
	})
	if err != nil {
		var verr *jwt.ValidationError
		if errors.As(err, &verr) && verr.Errors&jwt.ValidationErrorExpired != 0 {
			return "", ErrTokenExpired
		}
		return "", errors.Wrap(ErrTokenInvalid, err.Error())
	}
	if !tkn.Valid || claims.UserID == "" || claims.ExpiresAt == 0 || claims.Issuer != issuer {
		return "", ErrTokenInvalid
	}
	return claims.UserID, nil
}
