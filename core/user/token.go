package user

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/almajirisurvey/backend/core"
)

var (
	NowFunc = time.Now // mockable

	ErrInvalidToken = errors.New("invalid token")
)

// Claims represents the authorization claims transmitted via a JWT.
// The same payload is carried by both token classes; only the signing secret
// and expiry differ.
type Claims struct {
	UserID        string `json:"userId"`
	InterviewerID string `json:"interviewerId"`
	Role          string `json:"role"`
	LGA           string `json:"lga"`
	jwt.RegisteredClaims
}

// TokenPair is the access/refresh pair issued on every successful
// authentication or refresh. Tokens are stateless; there is no server-side
// revocation list, deactivation takes effect once a fresh check observes
// isActive=false.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenService mints and verifies the two token classes with independent
// secrets and expiries.
type TokenService struct {
	appName       string
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenService(conf *core.Config) *TokenService {
	return &TokenService{
		appName:       conf.AppName,
		accessSecret:  []byte(conf.Auth.AccessSecret),
		refreshSecret: []byte(conf.Auth.RefreshSecret),
		accessTTL:     conf.Auth.AccessTokenExpiry,
		refreshTTL:    conf.Auth.RefreshTokenExpiry,
	}
}

func (ts *TokenService) claims(usr User, ttl time.Duration) *Claims {
	now := NowFunc()
	return &Claims{
		UserID:        usr.ID,
		InterviewerID: usr.InterviewerID,
		Role:          usr.Role,
		LGA:           usr.LGA,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.appName,
			Subject:   usr.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}

func (ts *TokenService) sign(claims *Claims, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString(secret)
	return ss, errors.Wrap(err, "signing token")
}

// GeneratePair issues a fresh access+refresh token pair for usr.
func (ts *TokenService) GeneratePair(usr User) (TokenPair, error) {
	access, err := ts.sign(ts.claims(usr, ts.accessTTL), ts.accessSecret)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := ts.sign(ts.claims(usr, ts.refreshTTL), ts.refreshSecret)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (ts *TokenService) verify(token string, secret []byte) (*Claims, error) {
	claims := new(Claims)
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return NowFunc() }))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyAccess validates an access token and returns its claims; it fails
// closed on any signature or expiry problem.
func (ts *TokenService) VerifyAccess(token string) (*Claims, error) {
	return ts.verify(token, ts.accessSecret)
}

// VerifyRefresh validates a refresh token against the refresh secret.
func (ts *TokenService) VerifyRefresh(token string) (*Claims, error) {
	return ts.verify(token, ts.refreshSecret)
}
