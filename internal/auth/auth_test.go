package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"craftstore/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasAdminRole(t *testing.T) {
	const claim = "https://craftstore.example.com/roles"

	cases := []struct {
		name   string
		claims jwt.MapClaims
		want   bool
	}{
		{
			name:   "role list with admin",
			claims: jwt.MapClaims{claim: []interface{}{"editor", "admin"}},
			want:   true,
		},
		{
			name:   "role list without admin",
			claims: jwt.MapClaims{claim: []interface{}{"editor", "viewer"}},
			want:   false,
		},
		{
			name:   "single role string",
			claims: jwt.MapClaims{claim: "admin"},
			want:   true,
		},
		{
			name:   "single wrong role string",
			claims: jwt.MapClaims{claim: "viewer"},
			want:   false,
		},
		{
			name:   "string slice",
			claims: jwt.MapClaims{claim: []string{"admin"}},
			want:   true,
		},
		{
			name:   "claim missing",
			claims: jwt.MapClaims{"sub": "user-1"},
			want:   false,
		},
		{
			name:   "claim of unexpected type",
			claims: jwt.MapClaims{claim: 42},
			want:   false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HasAdminRole(tc.claims, claim))
		})
	}
}

func TestBearerToken(t *testing.T) {
	token, ok := bearerToken("Bearer abc.def.ghi")
	assert.True(t, ok)
	assert.Equal(t, "abc.def.ghi", token)

	_, ok = bearerToken("")
	assert.False(t, ok)

	_, ok = bearerToken("Basic dXNlcjpwYXNz")
	assert.False(t, ok)

	_, ok = bearerToken("Bearer ")
	assert.False(t, ok)
}

func TestRequireAdminDisabledModePassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)

	m, err := New(config.AuthConfig{Mode: config.AuthModeDisabled})
	require.NoError(t, err)

	router := gin.New()
	router.GET("/admin/ping", m.RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRequireAdminEnforcedRejectsMissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Enforced mode without a reachable JWKS still rejects before any key
	// lookup when the header is absent.
	m := &Middleware{
		mode:     config.AuthModeEnforced,
		audience: "https://api.craftstore.example.com",
		issuer:   "https://craftstore.example.com/",
	}

	router := gin.New()
	router.GET("/admin/ping", m.RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
