package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
)

type handlers struct {
	accounts Accounts
	logger   logging.Logger
}

func (h *handlers) register(c *gin.Context) {
	var req common.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, common.ErrMissingFields)
		return
	}

	token, err := h.accounts.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, common.TokenResponse{Token: token})
}

func (h *handlers) login(c *gin.Context) {
	var req common.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, common.ErrMissingFields)
		return
	}

	token, err := h.accounts.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, common.TokenResponse{Token: token})
}

func (h *handlers) user(c *gin.Context) {
	profile, err := h.accounts.Profile(c.Request.Context(), c.GetString(tokenKey))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *handlers) ping(c *gin.Context) {
	c.JSON(http.StatusOK, common.PingResponse{Status: "ok"})
}

func (h *handlers) fail(c *gin.Context, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, common.ErrorResponse{Error: common.Message(err)})
}
