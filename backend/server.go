// ABOUTME: Development backend serving both endpoint families over sqlite
// ABOUTME: Org-scoped routes answer with the nested envelope, legacy routes flat
package backend

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// record is a stored entity: JSON blob keyed by account and resource.
type record struct {
	ID        string `gorm:"primaryKey"`
	Account   string `gorm:"index:idx_records_scope"`
	Resource  string `gorm:"index:idx_records_scope"`
	Data      []byte
	UpdatedAt time.Time
}

// settingRow is a singleton settings document.
type settingRow struct {
	Account   string `gorm:"primaryKey"`
	Name      string `gorm:"primaryKey"`
	Data      []byte
	UpdatedAt time.Time
}

// Server is the in-process API the client talks to during development and
// in tests.
type Server struct {
	db      *gorm.DB
	router  *gin.Engine
	secret  []byte
	anonKey string
}

// Option configures a Server.
type Option func(*Server)

// WithJWTSecret sets the signing secret for session tokens.
func WithJWTSecret(secret []byte) Option {
	return func(s *Server) { s.secret = secret }
}

// New opens the sqlite database and builds the route table. Use ":memory:"
// for tests.
func New(dbPath, anonKey string, opts ...Option) (*Server, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&record{}, &settingRow{}); err != nil {
		return nil, err
	}

	s := &Server{
		db:      db,
		anonKey: anonKey,
		secret:  []byte("fieldfolio-dev-secret"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.buildRouter()
	return s, nil
}

// Handler exposes the router for httptest servers.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on the given address until the listener fails.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// IssueToken mints a session token for the given account.
func (s *Server) IssueToken(account string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   account,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) buildRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.Default())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	org := r.Group("/org-data", s.authenticate)
	org.GET("/:resource", s.wrap(orgEnvelope, s.list))
	org.POST("/:resource", s.wrap(orgEnvelope, s.createOrUpdate))
	org.GET("/:resource/:id", s.wrap(orgEnvelope, s.get))
	org.POST("/:resource/:id", s.wrap(orgEnvelope, s.upsertByPath))
	org.POST("/:resource/:id/convert", s.wrap(orgEnvelope, s.convertQuote))
	org.DELETE("/:resource/:id", s.wrap(orgEnvelope, s.remove))

	legacy := r.Group("/", s.authenticate)
	legacy.GET("/:resource", s.wrap(flatEnvelope, s.list))
	legacy.POST("/:resource", s.wrap(flatEnvelope, s.createOrUpdate))
	legacy.PUT("/:resource", s.wrap(flatEnvelope, s.saveSettingByPath))
	legacy.GET("/:resource/:id", s.wrap(flatEnvelope, s.get))
	legacy.PUT("/:resource/:id", s.wrap(flatEnvelope, s.updateByPath))
	legacy.POST("/:resource/:id/convert", s.wrap(flatEnvelope, s.convertQuote))
	legacy.DELETE("/:resource/:id", s.wrap(flatEnvelope, s.remove))

	return r
}

// authenticate resolves the account from the bearer token. The anonymous
// key maps to a shared public account, mirroring approval-link access.
func (s *Server) authenticate(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" || token == header {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "missing bearer token"})
		return
	}
	if token == s.anonKey {
		c.Set("account", "public")
		c.Next()
		return
	}

	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid token"})
		return
	}
	claims := parsed.Claims.(*jwt.RegisteredClaims)
	if claims.Subject == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "token missing subject"})
		return
	}
	c.Set("account", claims.Subject)
	c.Next()
}
