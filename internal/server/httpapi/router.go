// Package httpapi exposes the account service over HTTP with gin.
//
// Routes (under /api):
//
//	POST /register  {username,email,password} -> 201 {token}
//	POST /login     {username,password}       -> 200 {token}
//	GET  /user      Authorization: Bearer ... -> 200 {username,email}
//	GET  /ping                                -> 200 {status:"ok"}
//
// Errors are returned as {"error": message} with the fixed message for the
// error kind; causes only go to the log.
package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// Accounts is the part of the account service the handlers need.
type Accounts interface {
	Register(ctx context.Context, username, email, password string) (string, error)
	Login(ctx context.Context, username, password string) (string, error)
	Profile(ctx context.Context, token string) (*models.Profile, error)
}

// Prefix is where the API is mounted.
const Prefix = "/api"

// NewRouter builds the gin engine serving the API.
func NewRouter(accounts Accounts, logger logging.Logger) *gin.Engine {
	if logger == nil {
		logger = logging.Nop()
	}

	h := &handlers{accounts: accounts, logger: logger}

	r := gin.New()
	r.Use(requestID(), accessLog(logger), recovery(logger))

	api := r.Group(Prefix)
	api.POST(common.PathRegister, h.register)
	api.POST(common.PathLogin, h.login)
	api.GET(common.PathUser, bearerAuth(), h.user)
	api.GET(common.PathPing, h.ping)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, common.ErrorResponse{Error: "not found"})
	})

	return r
}
