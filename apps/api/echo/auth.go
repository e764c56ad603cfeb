package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/solomonake/student-crm-dashboard/core"
	"github.com/solomonake/student-crm-dashboard/core/identity"
	sessionsvc "github.com/solomonake/student-crm-dashboard/services/session"
)

const (
	contextTokenKey     = "userToken"
	contextPrincipalKey = "principal"
	tokenAudience       = "counselors"
)

var nowFunc = time.Now // mockable

// Claims represents the authorization claims transmitted via a JWT.
// The standard `jti` identifies the session so it can be revoked on logout.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	Email        string `json:"email,omitempty"`
	Name         string `json:"name,omitempty"`
}

func (c Claims) Principal() identity.Principal {
	return identity.Principal{UID: c.Subject, Email: c.Email, Name: c.Name}
}

// TokenIssuer signs and verifies the API tokens with the configured secret key.
type TokenIssuer struct {
	conf *core.Config
	key  []byte
}

func NewTokenIssuer(conf *core.Config) *TokenIssuer {
	return &TokenIssuer{conf: conf, key: []byte(conf.SecretKey)}
}

// Claims returns fresh claims for p. origIat carries the first issue time across refreshes.
func (ti *TokenIssuer) Claims(p identity.Principal, origIat ...int64) *Claims {
	now := nowFunc()
	nownix := now.Unix()

	oriat := nownix
	if len(origIat) > 0 {
		oriat = origIat[0]
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.NewString(),
			Issuer:    ti.conf.AppName,
			Subject:   p.UID,
			Audience:  tokenAudience,
			ExpiresAt: now.Add(ti.conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Email:        p.Email,
		Name:         p.Name,
	}
}

// Generate returns the signed JWT string representing claims.
func (ti *TokenIssuer) Generate(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), claims)
	ss, err := token.SignedString(ti.key)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func (ti *TokenIssuer) middleware() echo.MiddlewareFunc {
	return middleware.JWTWithConfig(middleware.JWTConfig{
		SigningKey:    ti.key,
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	})
}

// refresh issues a new token for p unless the refresh window of claims has passed.
func (ti *TokenIssuer) refresh(p identity.Principal, claims Claims) (string, error) {
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(ti.conf.Server.JWTRefreshExpirationDelta)
	if nowFunc().After(expTime) {
		return "", errRefreshExpired
	}
	token, err := ti.Generate(ti.Claims(p, claims.OrigIssuedAt))
	return token, errors.Wrap(err, "generating token")
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextPrincipal(ctx echo.Context) (identity.Principal, error) {
	if p, ok := ctx.Get(contextPrincipalKey).(identity.Principal); ok {
		return p, nil
	}
	return identity.Principal{}, errUnauthorized
}

// sessionMiddleware rejects revoked tokens and principals the provider no longer knows.
// It must run after the JWT middleware.
func sessionMiddleware(sessions sessionsvc.Store, provider identity.Provider) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			rctx := ctx.Request().Context()

			revoked, err := sessions.IsRevoked(rctx, claims.Id)
			if err != nil {
				return errors.Wrap(err, "checking session")
			}
			if revoked {
				return errUnauthorized
			}

			p, err := provider.Lookup(rctx, claims.Subject)
			if err != nil {
				if errors.Is(err, identity.ErrInvalidCredentials) {
					return errUnauthorized
				}
				return errors.Wrap(err, "looking up principal")
			}
			ctx.Set(contextPrincipalKey, p)
			return next(ctx)
		}
	}
}
