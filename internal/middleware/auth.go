package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/franciscosanchezn/pizza-catalog-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys set by JWTAuth
const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
)

var allowedRoles = map[string]bool{
	"admin": true,
	"user":  true,
}

// JWTAuth checks the bearer token on every request. Tokens must be HMAC
// signed with jwtSecret, unexpired, and carry "sub" and "role" claims.
func JWTAuth(jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			abortUnauthorized(c, err)
			return
		}

		claims, err := parseToken(tokenString, jwtSecret)
		if err != nil {
			abortUnauthorized(c, err)
			return
		}

		subject, err := claims.GetSubject()
		if err != nil || subject == "" {
			abortUnauthorized(c, errors.New("token missing required 'sub' claim"))
			return
		}
		role, _ := claims["role"].(string)
		if !allowedRoles[role] {
			abortUnauthorized(c, fmt.Errorf("invalid role %q. Allowed roles: admin, user", role))
			return
		}

		c.Set(ContextUserID, subject)
		c.Set(ContextUserRole, role)
		c.Next()
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errors.New("missing Authorization header, a Bearer token is required")
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", errors.New("authorization header must use the Bearer scheme")
	}
	if strings.TrimSpace(token) == "" {
		return "", errors.New("bearer token is empty")
	}
	return token, nil
}

func parseToken(tokenString string, jwtSecret []byte) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	},
		// pinning the methods rejects "none" and RSA/HMAC confusion
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return nil, fmt.Errorf("token parsing failed: %w", err)
	}
	return claims, nil
}

func abortUnauthorized(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.NewAPIError(models.ErrUnauthorized, err.Error()))
}

// IssueToken signs a token that JWTAuth accepts
func IssueToken(jwtSecret []byte, subject, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	})
	return token.SignedString(jwtSecret)
}
