package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/go-divvy/divvy/pkg/tokenpkg"
	"github.com/go-divvy/divvy/pkg/web"
)

const (
	// AuthHeaderKey is the request header carrying the access token.
	AuthHeaderKey = "authorization"

	// AuthTypeBearer is the only supported authorization scheme.
	AuthTypeBearer = "bearer"

	// AuthPayloadKey is the gin context key holding the verified token payload.
	AuthPayloadKey = "authorization_payload"
)

var (
	// ErrAuthHeaderNotFound indicates that the authorization header is missing.
	ErrAuthHeaderNotFound = errors.New("authorization header is not provided")

	// ErrBadAuthHeaderFormat indicates that the authorization header is malformed.
	ErrBadAuthHeaderFormat = errors.New("invalid authorization header format")

	// ErrUnsupportedAuthType indicates an authorization scheme other than bearer.
	ErrUnsupportedAuthType = errors.New("unsupported authorization type")
)

// AddAuthorization creates a token for the email and sets the authorization
// header on the request. It is meant for tests that exercise protected routes.
func AddAuthorization(r *http.Request, tokenMaker tokenpkg.Maker, authType, email string, duration time.Duration) error {
	accessToken, _, err := tokenMaker.CreateToken(email, duration)
	if err != nil {
		return err
	}

	r.Header.Set(AuthHeaderKey, fmt.Sprintf("%s %s", authType, accessToken))

	return nil
}

// AuthMiddleware verifies the access token and stores its payload in the
// gin context under AuthPayloadKey.
func AuthMiddleware(tokenMaker tokenpkg.Maker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if len(authHeader) == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(ErrAuthHeaderNotFound))
			return
		}

		fields := strings.Fields(authHeader)
		if len(fields) < 2 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(ErrBadAuthHeaderFormat))
			return
		}

		authType := strings.ToLower(fields[0])
		if authType != AuthTypeBearer {
			c.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(ErrUnsupportedAuthType))
			return
		}

		accessToken := fields[1]

		payload, err := tokenMaker.VerifyToken(accessToken)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(err))
			return
		}

		c.Set(AuthPayloadKey, payload)
		c.Next()
	}
}
