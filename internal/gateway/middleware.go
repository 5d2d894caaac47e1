package gateway

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arung-agamani/soundvault/internal/catalog"
)

const clientContextKey = "client"

// authMiddleware resolves the requesting Client from, in order: the
// Authorization: Bearer header, the ?_token= query parameter, or the
// _party_t cookie (set by the login-token exchange endpoint). Absence
// attaches nothing; downstream handlers decide whether anonymous
// access is permitted via requireUser/requireAdmin.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token = c.Query("_token")
		}
		if token == "" {
			if v, err := c.Cookie("_party_t"); err == nil {
				token = v
			}
		}
		if token == "" {
			c.Next()
			return
		}

		id, secret, ok := splitToken(token)
		if !ok {
			c.Next()
			return
		}
		client, err := s.store.Clients.FindByID(c.Request.Context(), id)
		if err != nil || !client.VerifySecret(secret) {
			c.Next()
			return
		}
		c.Set(clientContextKey, client)
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if strings.HasPrefix(header, prefix) {
		return strings.TrimPrefix(header, prefix)
	}
	return ""
}

// splitToken parses "{id}-{secret}" on the first '-'.
func splitToken(token string) (id, secret string, ok bool) {
	i := strings.Index(token, "-")
	if i < 0 {
		return "", "", false
	}
	return token[:i], token[i+1:], true
}

// currentClient returns the client attached by authMiddleware, if any.
func currentClient(c *gin.Context) (catalog.Client, bool) {
	v, exists := c.Get(clientContextKey)
	if !exists {
		return catalog.Client{}, false
	}
	client, ok := v.(catalog.Client)
	return client, ok
}

// requireUser gates a handler to any authenticated client (admin or user).
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		client, ok := currentClient(c)
		if !ok {
			failWith(c, http.StatusUnauthorized, "authentication required")
			c.Abort()
			return
		}
		if client.Role != catalog.RoleAdmin && client.Role != catalog.RoleUser {
			failWith(c, http.StatusForbidden, "insufficient role")
			c.Abort()
			return
		}
		c.Next()
	}
}

// requireAdmin gates a handler to clients holding the admin role.
func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		client, ok := currentClient(c)
		if !ok {
			failWith(c, http.StatusUnauthorized, "authentication required")
			c.Abort()
			return
		}
		if client.Role != catalog.RoleAdmin {
			failWith(c, http.StatusForbidden, "admin role required")
			c.Abort()
			return
		}
		c.Next()
	}
}
