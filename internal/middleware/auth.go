package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/inkcloud/review-service/internal/platform/logger"
	"go.uber.org/zap"
)

const (
	// IdentityKey holds the authenticated member's email in the gin context.
	IdentityKey = "authenticatedEmail"
	// RolesKey holds the authenticated member's roles in the gin context.
	RolesKey = "authenticatedRoles"
)

// Claims is the JWT payload issued by the identity provider. Roles arrive
// inside the realm_access claim.
type Claims struct {
	Email       string `json:"email"`
	RealmAccess struct {
		Roles []string `json:"roles"`
	} `json:"realm_access"`
	jwt.RegisteredClaims
}

// Auth validates the bearer token and places the resolved
// (identity, roles) pair into the request context. Handlers and usecases
// only ever see the resolved pair, never the token.
func Auth(jwtSecret string, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization token is not provided"})
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			log.Warn("Token validation failed", zap.String("path", c.FullPath()), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token is invalid"})
			return
		}
		if claims.Email == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "email not found in token claims"})
			return
		}

		c.Set(IdentityKey, claims.Email)
		c.Set(RolesKey, claims.RealmAccess.Roles)
		c.Next()
	}
}

// RequireRole aborts with 403 unless the authenticated member carries the
// role. Must run after Auth.
func RequireRole(role string, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !slices.Contains(Roles(c), role) {
			log.Warn("Role check failed",
				zap.String("path", c.FullPath()),
				zap.String("email", Identity(c)),
				zap.String("required_role", role))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}
		c.Next()
	}
}

// Identity returns the authenticated member's email, or "" on public
// routes.
func Identity(c *gin.Context) string {
	return c.GetString(IdentityKey)
}

// Roles returns the authenticated member's roles.
func Roles(c *gin.Context) []string {
	if v, ok := c.Get(RolesKey); ok {
		if roles, ok := v.([]string); ok {
			return roles
		}
	}
	return nil
}
