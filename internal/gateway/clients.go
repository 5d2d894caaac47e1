package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arung-agamani/soundvault/internal/apperr"
	"github.com/arung-agamani/soundvault/internal/catalog"
)

type clientView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	LoginToken string `json:"login_token,omitempty"`
}

func toClientView(c catalog.Client) clientView {
	return clientView{ID: c.ID, Name: c.Name, Role: string(c.Role)}
}

func (s *Server) listClients(c *gin.Context) {
	cur := cursorFrom(c)
	items, err := s.store.Clients.List(c.Request.Context(), cur)
	if err != nil {
		fail(c, err)
		return
	}
	views := make([]clientView, len(items))
	for i, it := range items {
		views[i] = toClientView(it)
	}
	ok(c, pageResponse(views, cur, func(v clientView) string { return v.ID }))
}

func (s *Server) getSelf(c *gin.Context) {
	client, _ := currentClient(c)
	ok(c, toClientView(client))
}

type createClientRequest struct {
	Name string `json:"name" binding:"required"`
	Role string `json:"role"`
}

func (s *Server) createClient(c *gin.Context) {
	var req createClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failWith(c, http.StatusBadRequest, "invalid request body")
		return
	}
	role := catalog.RoleUser
	if req.Role == string(catalog.RoleAdmin) {
		role = catalog.RoleAdmin
	}
	client, err := s.store.Clients.Create(c.Request.Context(), catalog.NewClientParams{Name: req.Name, Role: role})
	if err != nil {
		fail(c, err)
		return
	}
	created(c, gin.H{"id": client.ID, "name": client.Name, "role": client.Role, "token": client.PlainToken})
}

func (s *Server) updateClient(c *gin.Context) {
	var req createClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failWith(c, http.StatusBadRequest, "invalid request body")
		return
	}
	role := catalog.RoleUser
	if req.Role == string(catalog.RoleAdmin) {
		role = catalog.RoleAdmin
	}
	client, err := s.store.Clients.Update(c.Request.Context(), c.Param("id"), catalog.NewClientParams{Name: req.Name, Role: role})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, toClientView(client))
}

func (s *Server) deleteClient(c *gin.Context) {
	if err := s.store.Clients.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"deleted": true})
}

func (s *Server) resetClientToken(c *gin.Context) {
	client, err := s.store.Clients.RotateSecret(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"id": client.ID, "token": client.PlainToken})
}

// exchangeLoginToken implements the login-token-for-API-token exchange:
// GET /open/api/v1/clients/auth/{login_token}. The login token stays
// valid; each exchange rotates the API secret. On success it
// sets the _party_t cookie so a browser session can ride on the cookie
// for subsequent requests.
func (s *Server) exchangeLoginToken(c *gin.Context) {
	client, err := s.store.Clients.FindByLoginToken(c.Request.Context(), c.Param("loginToken"))
	if err != nil {
		fail(c, apperr.Unauthorized("login token not recognized"))
		return
	}
	rotated, err := s.store.Clients.RotateSecret(c.Request.Context(), client.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie("_party_t", rotated.PlainToken, 0, "/", "", true, true)
	ok(c, gin.H{"id": rotated.ID, "role": string(rotated.Role)})
}
