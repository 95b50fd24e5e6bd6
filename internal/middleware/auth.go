package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/retailops/inventory-recon-api/internal/models"
	appErrors "github.com/retailops/inventory-recon-api/pkg/errors"
	"github.com/retailops/inventory-recon-api/pkg/response"
)

const claimsKey = "auth_claims"

// Auth validates the bearer token issued by the identity collaborator and
// stores its claims in the request context.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "missing authorization header"))
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "malformed authorization header"))
			c.Abort()
			return
		}

		claims := &models.Claims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token"))
			c.Abort()
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireProfile allows only the listed user profiles through.
func RequireProfile(profiles ...models.UserProfile) gin.HandlerFunc {
	allowed := make(map[models.UserProfile]struct{}, len(profiles))
	for _, profile := range profiles {
		allowed[profile] = struct{}{}
	}
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "missing credentials"))
			c.Abort()
			return
		}
		if _, ok := allowed[claims.Profile]; !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "insufficient profile"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// ClaimsFrom extracts the validated claims from the request context.
func ClaimsFrom(c *gin.Context) (*models.Claims, bool) {
	raw, exists := c.Get(claimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := raw.(*models.Claims)
	return claims, ok
}
