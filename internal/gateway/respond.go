// Package gateway is the HTTP+WebSocket gateway: gin routes, auth
// middleware, and cursor pagination sitting in front of the catalog,
// the player facade, the search index, and the WS hub.
package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arung-agamani/soundvault/internal/apperr"
)

// envelope is the uniform `{success, data?, message?}` JSON wrapper every
// response in this package uses.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// ok writes a 200 success envelope carrying data.
func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

// created writes a 201 success envelope carrying data.
func created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, envelope{Success: true, Data: data})
}

// fail maps err through apperr.StatusFor and writes a failure envelope,
// so handlers never classify errors by sniffing message text.
func fail(c *gin.Context, err error) {
	c.JSON(apperr.StatusFor(err), envelope{Success: false, Message: err.Error()})
}

// failWith writes a failure envelope at an explicit status, for cases
// with no underlying apperr (malformed request bodies, etc.).
func failWith(c *gin.Context, status int, message string) {
	c.JSON(status, envelope{Success: false, Message: message})
}
