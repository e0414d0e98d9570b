package auth

import (
	"fmt"
	"net/http"
	"strings"

	"craftstore/config"
	"craftstore/internal/util"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const adminRole = "admin"

// Middleware verifies bearer tokens against the identity provider's published
// key set and enforces the admin role claim. The security posture is an
// explicit mode chosen at startup, never an implicit nil-check fallback.
type Middleware struct {
	mode       config.AuthMode
	audience   string
	issuer     string
	rolesClaim string
	keys       keyfunc.Keyfunc
	logger     *zap.Logger
}

// New builds the middleware for the configured mode. In disabled mode every
// request passes; this is for development environments without an identity
// provider and is logged loudly.
func New(cfg config.AuthConfig) (*Middleware, error) {
	logger := util.GetLogger()

	m := &Middleware{
		mode:       cfg.Mode,
		audience:   cfg.Audience,
		rolesClaim: cfg.RolesClaim,
		logger:     logger,
	}

	if cfg.Mode == config.AuthModeDisabled {
		logger.Warn("Admin authorization DISABLED: AUTH_DOMAIN or AUTH_AUDIENCE not set; every admin request will be allowed")
		return m, nil
	}

	m.issuer = fmt.Sprintf("https://%s/", cfg.Domain)
	jwksURL := fmt.Sprintf("https://%s/.well-known/jwks.json", cfg.Domain)

	keys, err := keyfunc.NewDefault([]string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to load JWKS from %s: %w", jwksURL, err)
	}
	m.keys = keys

	logger.Info("Admin authorization enforced",
		zap.String("issuer", m.issuer),
		zap.String("audience", m.audience))
	return m, nil
}

// RequireAdmin gates a route group behind a valid bearer token carrying the
// admin role. Missing/invalid credential is 401; a valid credential without
// the role is 403.
func (m *Middleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.mode == config.AuthModeDisabled {
			c.Next()
			return
		}

		tokenString, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing bearer token"})
			return
		}

		token, err := jwt.Parse(tokenString, m.keys.Keyfunc,
			jwt.WithValidMethods([]string{"RS256"}),
			jwt.WithAudience(m.audience),
			jwt.WithIssuer(m.issuer),
		)
		if err != nil || !token.Valid {
			m.logger.Debug("Token verification failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid credential"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid credential"})
			return
		}

		if !HasAdminRole(claims, m.rolesClaim) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}

		c.Next()
	}
}

// HasAdminRole reports whether the given claim contains the admin role. The
// claim may be a list of roles or a single role string depending on the
// identity provider.
func HasAdminRole(claims jwt.MapClaims, claimName string) bool {
	raw, ok := claims[claimName]
	if !ok {
		return false
	}

	switch v := raw.(type) {
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok && s == adminRole {
				return true
			}
		}
	case []string:
		for _, s := range v {
			if s == adminRole {
				return true
			}
		}
	case string:
		return v == adminRole
	}
	return false
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token, token != ""
}
