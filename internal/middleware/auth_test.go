package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

func authRouter(token string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(BearerAuth(AuthConfig{TokenAPI: token}))
	r.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestBearerAuth(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"token valide", "Bearer secret-token", http.StatusOK},
		{"casse du schéma tolérée", "bearer secret-token", http.StatusOK},
		{"header absent", "", http.StatusUnauthorized},
		{"schéma manquant", "secret-token", http.StatusUnauthorized},
		{"mauvais token", "Bearer autre-token", http.StatusUnauthorized},
		{"schéma inattendu", "Basic secret-token", http.StatusUnauthorized},
	}

	router := authRouter("secret-token")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, attendu %d (body : %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func consoleRouter(cfg ConsoleAuthConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ConsoleAuth(cfg))
	r.GET("/console/nps", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestConsoleAuth(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("motdepasse"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	cfg := ConsoleAuthConfig{Username: "admin", PasswordHash: string(hash)}

	t.Run("credentials valides", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/console/nps", nil)
		req.SetBasicAuth("admin", "motdepasse")
		w := httptest.NewRecorder()
		consoleRouter(cfg).ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("status = %d, attendu 200", w.Code)
		}
	})

	t.Run("mauvais mot de passe", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/console/nps", nil)
		req.SetBasicAuth("admin", "faux")
		w := httptest.NewRecorder()
		consoleRouter(cfg).ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, attendu 401", w.Code)
		}
	})

	t.Run("sans credentials envoyés", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/console/nps", nil)
		w := httptest.NewRecorder()
		consoleRouter(cfg).ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, attendu 401", w.Code)
		}
		if w.Header().Get("WWW-Authenticate") == "" {
			t.Error("header WWW-Authenticate attendu")
		}
	})

	t.Run("console non configurée", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/console/nps", nil)
		req.SetBasicAuth("admin", "motdepasse")
		w := httptest.NewRecorder()
		consoleRouter(ConsoleAuthConfig{}).ServeHTTP(w, req)
		if w.Code != http.StatusForbidden {
			t.Errorf("status = %d, attendu 403", w.Code)
		}
	})
}

func TestRequestIDPropagated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	t.Run("id généré", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		if got := w.Header().Get(HeaderRequestID); len(got) != 8 {
			t.Errorf("request id %q, attendu 8 caractères", got)
		}
	})

	t.Run("id entrant repris", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderRequestID, "id-client")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if got := w.Header().Get(HeaderRequestID); got != "id-client" {
			t.Errorf("request id %q, attendu id-client", got)
		}
	})
}
