package middlewares

import (
	"net/http"
	"strings"

	"crewtime.app/crewtime/security"
	"crewtime.app/crewtime/web/common"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const IdentityKey = "identity"

func parseJwt(tokenStr string, jwtSecret []byte) (*jwt.Token, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &security.IdentityClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Ensure the signing method is HMAC (or switch to RSA/ECDSA)
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return jwtSecret, nil
	})
	return token, err
}

// Authentication checks for a valid Bearer token and places the caller
// identity (user, organization, role) into the gin context.
func Authentication(jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := ""

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			// Try to get from cookie
			cookie, err := c.Cookie("crewtime.ApplicationCookie")
			if err != nil {
				// Cookie not found either
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}

			tokenStr = cookie
		} else {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}

			tokenStr = parts[1]
		}

		// Parse and validate JWT
		token, err := parseJwt(tokenStr, jwtSecret)

		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse("invalid or expired token"))
			return
		}

		claims, ok := token.Claims.(*security.IdentityClaims)
		if !ok || claims.Identity.ID == "" || claims.OrganizationID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse("token carries no identity"))
			return
		}

		c.Set(IdentityKey, claims.Identity)
		c.Next()
	}
}

// GetIdentity returns the identity placed by Authentication, or nil.
func GetIdentity(c *gin.Context) *security.Identity {
	v, exists := c.Get(IdentityKey)
	if !exists {
		return nil
	}
	identity, ok := v.(security.Identity)
	if !ok {
		return nil
	}
	return &identity
}
