package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/example/farm-dashboard/internal/apperror"
	"github.com/example/farm-dashboard/internal/repository"
)

// ProfileLoader loads the profile behind a token subject.
type ProfileLoader interface {
	FindProfile(ctx context.Context, id string) (*repository.Profile, error)
}

// Principal is the authenticated caller.
type Principal struct {
	UserID  string
	Name    string
	IsAdmin bool
}

type contextKey string

const principalKey contextKey = "authPrincipal"

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext retrieves the authenticated caller from context.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	if p, ok := ctx.Value(principalKey).(Principal); ok && p.UserID != "" {
		return p, true
	}
	return Principal{}, false
}

// RequireAuth validates bearer tokens, loads the caller's profile and injects
// a Principal. Every failure is answered with the standard error envelope.
func RequireAuth(secret, audience string, profiles ProfileLoader) gin.HandlerFunc {
	secret = strings.TrimSpace(secret)
	audience = strings.TrimSpace(audience)

	parserOptions := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if audience != "" {
		parserOptions = append(parserOptions, jwt.WithAudience(audience))
	}
	parser := jwt.NewParser(parserOptions...)

	return func(c *gin.Context) {
		if secret == "" {
			abort(c, apperror.New(apperror.CodeAuthMisconfigured, apperror.Params{}, errors.New("missing JWT secret")))
			return
		}

		tokenString, err := extractBearerToken(c.Request.Header.Get("Authorization"))
		if err != nil {
			abort(c, apperror.New(apperror.CodeAuthTokenMissing, apperror.Params{}, err))
			return
		}

		claims := &jwt.RegisteredClaims{}
		token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if err != nil {
			abort(c, err)
			return
		}
		if !token.Valid || claims.Subject == "" {
			abort(c, apperror.New(apperror.CodeAuthTokenInvalid, apperror.Params{}, errors.New("missing subject")))
			return
		}

		profile, err := profiles.FindProfile(c.Request.Context(), claims.Subject)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				abort(c, apperror.New(apperror.CodeAuthProfileNotFound, apperror.Params{Resource: "profile"}, err))
				return
			}
			abort(c, apperror.QueryFailed("profile", err))
			return
		}
		if !profile.IsActive {
			abort(c, apperror.New(apperror.CodeAuthAccountInactive, apperror.Params{}, nil))
			return
		}

		principal := Principal{UserID: profile.ID, Name: profile.Name, IsAdmin: profile.IsAdmin()}
		c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), principal))
		c.Set(string(principalKey), principal)

		c.Next()
	}
}

func extractBearerToken(header string) (string, error) {
	if header == "" {
		return "", errors.New("authorization header required")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization header")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("token missing")
	}
	return token, nil
}

func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	resp := apperror.Resolve(err)
	c.AbortWithStatusJSON(resp.Status, resp)
}
