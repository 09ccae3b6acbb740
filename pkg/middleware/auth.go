package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"github.com/kart-io/admin-guard/pkg/admin"
	"github.com/kart-io/admin-guard/pkg/security/auth"
)

// Subject resolves the request subject from a Bearer token and attaches a
// request context for the authorization layer. Requests without a valid
// token proceed as guest; authorization gates decide what a guest may do.
func Subject(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := ""
		if token := bearerToken(c); token != "" {
			if sub, ok := parseSubject(token, secret); ok {
				subject = sub
				c.Request = c.Request.WithContext(auth.ContextWithToken(
					auth.ContextWithSubject(c.Request.Context(), sub), token))
			}
		}

		rc := admin.NewRequestContext(subject)
		c.Set(admin.GinContextKey, rc)
		c.Request = c.Request.WithContext(admin.WithRequestContext(c.Request.Context(), rc))
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func parseSubject(token, secret string) (string, bool) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}
