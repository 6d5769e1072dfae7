package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"instaclone/internal/shared/config"
)

// JWTAuth authenticates requests with an access token, taken from the
// Authorization header or, for browser clients, the "bearer" cookie.
// Failures use the bare {"detail": ...} wire shape of the token endpoints.
func JWTAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.JWT.Secret), nil
		})

		if err != nil || !token.Valid {
			// Expiry is only reported for tokens that actually verified;
			// the parser sets both bits on a forged token past its window.
			var ve *jwt.ValidationError
			if errors.As(err, &ve) &&
				ve.Errors&jwt.ValidationErrorExpired != 0 &&
				ve.Errors&(jwt.ValidationErrorSignatureInvalid|jwt.ValidationErrorUnverifiable|jwt.ValidationErrorMalformed) == 0 {
				c.JSON(http.StatusUnauthorized, gin.H{"detail": "Token expired"})
			} else {
				c.JSON(http.StatusForbidden, gin.H{"detail": "Could not validate credentials"})
			}
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"detail": "Could not validate credentials"})
			c.Abort()
			return
		}

		if !claims.VerifyAudience(cfg.TokenAudience(), true) ||
			!claims.VerifyIssuer(cfg.TokenIssuer(), true) {
			c.JSON(http.StatusForbidden, gin.H{"detail": "Could not validate credentials"})
			c.Abort()
			return
		}

		if scope, _ := claims["scope"].(string); scope != "" && scope != "access_token" {
			c.JSON(http.StatusForbidden, gin.H{"detail": "Could not validate credentials"})
			c.Abort()
			return
		}

		username, _ := claims["preferred_username"].(string)
		if username == "" {
			c.JSON(http.StatusForbidden, gin.H{"detail": "Could not validate credentials"})
			c.Abort()
			return
		}

		sub, _ := claims["sub"].(string)
		if !strings.HasPrefix(sub, "username:") {
			c.JSON(http.StatusForbidden, gin.H{"detail": "Could not validate credentials"})
			c.Abort()
			return
		}
		userID := strings.TrimPrefix(sub, "username:")

		email, _ := claims["email"].(string)
		jti, _ := claims["jti"].(string)

		c.Set("user_id", userID)
		c.Set("username", username)
		c.Set("user_email", email)
		c.Set("token_jti", jti)

		c.Next()
	}
}

// extractToken pulls the access token from the Authorization header,
// falling back to the session cookie.
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
		return ""
	}

	if cookie, err := c.Cookie("bearer"); err == nil {
		return cookie
	}
	return ""
}
