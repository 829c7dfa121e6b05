package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// ConsoleAuthConfig protège la console NPS par basic auth.
// Le mot de passe est stocké hashé (bcrypt) dans la configuration.
type ConsoleAuthConfig struct {
	Username     string
	PasswordHash string
}

// ConsoleAuth retourne un middleware basic auth pour les routes console.
// Sans credentials configurés, la console est fermée.
func ConsoleAuth(cfg ConsoleAuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.Username == "" || cfg.PasswordHash == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "console non configurée",
			})
			return
		}

		username, password, ok := c.Request.BasicAuth()
		if !ok {
			c.Header("WWW-Authenticate", `Basic realm="console"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentification requise",
			})
			return
		}

		if username != cfg.Username ||
			bcrypt.CompareHashAndPassword([]byte(cfg.PasswordHash), []byte(password)) != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "identifiants invalides",
			})
			return
		}

		c.Next()
	}
}
